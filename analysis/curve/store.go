package curve

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/algo-fresp/dsp/core"
)

// ErrUnknownScale is wrapped in a FormatError for an unrecognised
// magnitude_scale value.
var ErrUnknownScale = errors.New("curve: unknown magnitude scale")

// FormatError reports a curve file that could be read but not understood.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("curve: malformed file %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

type fileFormat struct {
	Frequencies []float64 `json:"frequencies"`
	Magnitudes  []float64 `json:"magnitudes"`
	Metadata    Metadata  `json:"metadata"`
}

// Load reads a curve file. Magnitudes declared as dB are converted to
// linear amplitude; a missing magnitude_scale means linear. The returned
// metadata is never nil.
func Load(path string) (Curve, Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Curve{}, nil, fmt.Errorf("curve: load: %w", err)
	}

	c, meta, err := Decode(data)
	if err != nil {
		return Curve{}, nil, &FormatError{Path: path, Err: err}
	}

	return c, meta, nil
}

// Decode parses the file format from memory.
func Decode(data []byte) (Curve, Metadata, error) {
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return Curve{}, nil, err
	}

	c := Curve{Frequencies: f.Frequencies, Magnitudes: f.Magnitudes}
	if c.Frequencies == nil {
		c.Frequencies = []float64{}
	}
	if c.Magnitudes == nil {
		c.Magnitudes = []float64{}
	}
	if err := c.Validate(); err != nil {
		return Curve{}, nil, err
	}

	meta := f.Metadata
	if meta == nil {
		meta = Metadata{}
	}

	scale, err := magnitudeScale(meta)
	if err != nil {
		return Curve{}, nil, err
	}
	if scale == ScaleDB {
		c.Magnitudes = core.MagnitudesFromDB(c.Magnitudes)
	}

	return c, meta, nil
}

func magnitudeScale(meta Metadata) (string, error) {
	raw, ok := meta[KeyMagnitudeScale]
	if !ok || raw == nil {
		return ScaleLinear, nil
	}

	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrUnknownScale, raw)
	}

	switch {
	case strings.EqualFold(s, ScaleDB):
		return ScaleDB, nil
	case strings.EqualFold(s, ScaleLinear):
		return ScaleLinear, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScale, s)
	}
}

// Save writes c to path as indented JSON. Points are sorted by frequency
// and duplicate frequencies dropped (first wins). Magnitudes are stored in
// dB. meta is not modified; magnitude_scale and points_per_frequency are
// set in the written copy.
func Save(path string, c Curve, meta Metadata) error {
	data, err := Encode(c, meta)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("curve: save: %w", err)
	}

	return nil
}

// Encode renders the file format in memory.
func Encode(c Curve, meta Metadata) ([]byte, error) {
	norm, err := c.Normalized()
	if err != nil {
		return nil, err
	}

	out := meta.Clone()
	out[KeyMagnitudeScale] = ScaleDB
	out[KeyPointsPerFrequency] = 1

	data, err := json.MarshalIndent(fileFormat{
		Frequencies: norm.Frequencies,
		Magnitudes:  norm.DB(),
		Metadata:    out,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("curve: encode: %w", err)
	}

	return append(data, '\n'), nil
}
