package curve

import (
	"errors"
	"slices"

	"github.com/cwbudde/algo-fresp/dsp/core"
)

// ErrLengthMismatch is returned for curves whose frequency and magnitude
// slices differ in length.
var ErrLengthMismatch = errors.New("curve: frequencies and magnitudes differ in length")

// Curve is a magnitude response sampled at discrete frequencies.
// Magnitudes are linear amplitudes.
type Curve struct {
	Frequencies []float64 `json:"frequencies"`
	Magnitudes  []float64 `json:"magnitudes"`
}

// Metadata is the free-form metadata object stored next to a curve.
type Metadata map[string]any

// Well-known metadata keys.
const (
	KeyMagnitudeScale     = "magnitude_scale"
	KeyPointsPerFrequency = "points_per_frequency"
	KeyStartFreq          = "start_freq"
	KeyEndFreq            = "end_freq"
	KeyDuration           = "duration"
	KeySampleRate         = "sample_rate"
	KeyBufferSize         = "buffer_size"
	KeySmoothingMethod    = "smoothing_method"
	KeySmoothingWindow    = "smoothing_window"
	KeyDelay              = "delay"
	KeyMeasurementID      = "measurement_id"
	KeyMeasuredAt         = "measured_at"
)

// Magnitude scales accepted in files.
const (
	ScaleLinear = "linear"
	ScaleDB     = "dB"
)

// Len returns the number of points.
func (c Curve) Len() int { return len(c.Frequencies) }

// Validate checks that frequencies and magnitudes pair up.
func (c Curve) Validate() error {
	if len(c.Frequencies) != len(c.Magnitudes) {
		return ErrLengthMismatch
	}
	return nil
}

// DB returns the magnitudes in dB, floored at core.FloorDB.
func (c Curve) DB() []float64 {
	return core.MagnitudesToDB(c.Magnitudes)
}

// Normalized returns a copy sorted by ascending frequency with duplicate
// frequencies removed. Of several points at one frequency the first in
// input order is kept.
func (c Curve) Normalized() (Curve, error) {
	if err := c.Validate(); err != nil {
		return Curve{}, err
	}

	order := make([]int, c.Len())
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch fa, fb := c.Frequencies[a], c.Frequencies[b]; {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	})

	out := Curve{
		Frequencies: make([]float64, 0, len(order)),
		Magnitudes:  make([]float64, 0, len(order)),
	}
	for _, i := range order {
		f := c.Frequencies[i]
		if n := len(out.Frequencies); n > 0 && out.Frequencies[n-1] == f {
			continue
		}
		out.Frequencies = append(out.Frequencies, f)
		out.Magnitudes = append(out.Magnitudes, c.Magnitudes[i])
	}

	return out, nil
}

// Clone returns a copy of m, or an empty Metadata for nil.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m)+2)
	for k, v := range m {
		out[k] = v
	}
	return out
}
