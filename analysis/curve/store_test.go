package curve

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-fresp/dsp/core"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curve.json")
	in := Curve{
		Frequencies: []float64{20, 100, 1000, 10000, 20000},
		Magnitudes:  []float64{0.5, 1, 2, 0.001, 123.4},
	}
	meta := Metadata{KeyStartFreq: 20.0, KeySmoothingMethod: "ERB", "operator": "bench 3"}

	require.NoError(t, Save(path, in, meta))

	got, gotMeta, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in.Frequencies, got.Frequencies)

	require.Len(t, got.Magnitudes, len(in.Magnitudes))
	for i := range in.Magnitudes {
		assert.InDelta(t, core.MagnitudeToDB(in.Magnitudes[i]), core.MagnitudeToDB(got.Magnitudes[i]), 0.01)
	}

	assert.Equal(t, ScaleDB, gotMeta[KeyMagnitudeScale])
	assert.EqualValues(t, 1, gotMeta[KeyPointsPerFrequency])
	assert.Equal(t, "bench 3", gotMeta["operator"])
	assert.Equal(t, "ERB", gotMeta[KeySmoothingMethod])
	assert.EqualValues(t, 20, gotMeta[KeyStartFreq])

	// The caller's map is left alone.
	assert.NotContains(t, meta, KeyMagnitudeScale)
}

func TestSaveSortsAndDeduplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curve.json")
	in := Curve{
		Frequencies: []float64{300, 100, 200, 100, 300},
		Magnitudes:  []float64{3, 1, 2, 10, 30},
	}

	require.NoError(t, Save(path, in, nil))

	got, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 200, 300}, got.Frequencies)
	assert.InDeltaSlice(t, []float64{1, 2, 3}, got.Magnitudes, 1e-9)
}

func TestSaveStoresDecibels(t *testing.T) {
	in := Curve{Frequencies: []float64{1, 2, 3}, Magnitudes: []float64{1, 10, 0}}

	data, err := Encode(in, nil)
	require.NoError(t, err)

	var raw struct {
		Magnitudes []float64 `json:"magnitudes"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.InDeltaSlice(t, []float64{0, 20, core.FloorDB}, raw.Magnitudes, 1e-9)
}

func TestLoadLinearWhenScaleMissing(t *testing.T) {
	path := writeFile(t, `{"frequencies":[1,2],"magnitudes":[0.5,2],"metadata":{"note":"x"}}`)

	c, meta, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 2}, c.Magnitudes)
	assert.Equal(t, "x", meta["note"])

	path = writeFile(t, `{"frequencies":[1],"magnitudes":[3]}`)
	c, meta, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, c.Magnitudes)
	assert.NotNil(t, meta)
}

func TestLoadExplicitScales(t *testing.T) {
	path := writeFile(t, `{"frequencies":[1,2],"magnitudes":[0,-20],"metadata":{"magnitude_scale":"dB"}}`)
	c, _, err := Load(path)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 0.1}, c.Magnitudes, 1e-12)

	path = writeFile(t, `{"frequencies":[1,2],"magnitudes":[0,-20],"metadata":{"magnitude_scale":"linear"}}`)
	c, _, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, -20}, c.Magnitudes)
}

func TestLoadFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `frequencies: [1, 2]`},
		{"truncated", `{"frequencies":[1,2],"magnitudes":[1`},
		{"length mismatch", `{"frequencies":[1,2,3],"magnitudes":[1,2]}`},
		{"string magnitudes", `{"frequencies":[1],"magnitudes":["loud"]}`},
		{"unknown scale", `{"frequencies":[1],"magnitudes":[1],"metadata":{"magnitude_scale":"phon"}}`},
		{"scale not a string", `{"frequencies":[1],"magnitudes":[1],"metadata":{"magnitude_scale":3}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.body)

			_, _, err := Load(path)
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, path, fe.Path)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var fe *FormatError
	assert.NotErrorAs(t, err, &fe)
}

func TestSaveErrors(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "c.json"), Curve{Frequencies: []float64{1}}, nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	err = Save(filepath.Join(t.TempDir(), "missing", "c.json"), Curve{}, nil)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}
