package response

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-fresp/dsp/spectrum"
	"github.com/cwbudde/algo-fresp/internal/testutil"
	"github.com/cwbudde/algo-fresp/measure/sweep"
)

func testSweep(t *testing.T, duration float64) []float32 {
	t.Helper()
	stim, err := sweep.LogSweep{
		StartFreq:  20,
		EndFreq:    20000,
		Duration:   duration,
		SampleRate: 48000,
		BufferSize: 256,
	}.Generate()
	require.NoError(t, err)
	return stim
}

func TestEstimateLoopbackIdentity(t *testing.T) {
	stim := testSweep(t, 0.1)

	res, err := Estimate(stim, stim, 48000)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Delay.Samples)
	assert.Zero(t, res.Delay.Milliseconds)

	freqs, mags, err := spectrum.MagnitudeSpectrum(testutil.Float64(stim), 48000)
	require.NoError(t, err)
	assert.Equal(t, freqs, res.Curve.Frequencies)
	assert.Equal(t, mags, res.Curve.Magnitudes)

	assert.Len(t, res.Curve.Frequencies, len(stim)/2+1)
	assert.Equal(t, len(stim), res.Debug.RecordedLength)
	assert.Equal(t, len(stim), res.Debug.ExpectedLength)
}

func TestEstimateDelayShifted(t *testing.T) {
	stim := testSweep(t, 0.1)

	for _, d := range []int{1, 5, 37, 480, 1000} {
		delay, err := EstimateDelay(stim, testutil.Shift(stim, d), 48000)
		require.NoError(t, err)
		assert.InDelta(t, d, delay.Samples, 1, "shift %d", d)
		assert.InDelta(t, float64(d)/48, delay.Milliseconds, 1.0/48, "shift %d", d)
	}
}

func TestEstimateNegativeDelay(t *testing.T) {
	stim := testSweep(t, 0.1)
	rec := testutil.Shift(stim, -3)

	res, err := Estimate(stim, rec, 48000)
	require.NoError(t, err)
	assert.Equal(t, -3, res.Delay.Samples)
	assert.Less(t, res.Delay.Milliseconds, 0.0)
	assert.Len(t, res.Curve.Magnitudes, len(stim)/2+1)
}

func TestEstimateDifferentLengths(t *testing.T) {
	stim := testSweep(t, 0.1)

	long := append(testutil.Shift(stim, 10), make([]float32, 500)...)
	res, err := Estimate(stim, long, 48000)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Delay.Samples)
	assert.Equal(t, len(stim)+500, res.Debug.RecordedLength)
	assert.Len(t, res.Curve.Magnitudes, len(stim)/2+1)

	short := testutil.Shift(stim, 10)[:len(stim)/2]
	res, err = Estimate(stim, short, 48000)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Delay.Samples)
}

func TestEstimateEndToEndNoisyDelay(t *testing.T) {
	stim := testSweep(t, 1)

	clean, err := Estimate(stim, stim, 48000)
	require.NoError(t, err)

	noise := testutil.DeterministicNoise(42, 0.01, len(stim))
	rec := testutil.Shift(stim, 5)
	for i := range rec {
		rec[i] += float32(noise[i])
	}

	noisy, err := Estimate(stim, rec, 48000)
	require.NoError(t, err)
	assert.InDelta(t, 5, noisy.Delay.Samples, 1)
	require.Len(t, noisy.Curve.Magnitudes, len(clean.Curve.Magnitudes))

	assert.InEpsilon(t, maxOf(clean.Curve.Magnitudes), maxOf(noisy.Curve.Magnitudes), 0.05)

	// Inside the swept band the curves agree closely.
	var sum float64
	var n int
	for k, f := range clean.Curve.Frequencies {
		if f < 100 || f > 10000 {
			continue
		}
		a := 20 * math.Log10(clean.Curve.Magnitudes[k])
		b := 20 * math.Log10(noisy.Curve.Magnitudes[k])
		sum += math.Abs(a - b)
		n++
	}
	assert.Less(t, sum/float64(n), 0.5)
}

func TestCompensate(t *testing.T) {
	rec := []float32{1, 2, 3, 4, 5}

	tests := []struct {
		name  string
		delay int
		n     int
		want  []float64
	}{
		{"none", 0, 5, []float64{1, 2, 3, 4, 5}},
		{"late", 2, 5, []float64{3, 4, 5, 0, 0}},
		{"early", -2, 5, []float64{0, 0, 1, 2, 3}},
		{"truncate", 0, 3, []float64{1, 2, 3}},
		{"pad", 0, 7, []float64{1, 2, 3, 4, 5, 0, 0}},
		{"beyond end", 9, 3, []float64{0, 0, 0}},
		{"beyond start", -9, 3, []float64{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compensate(rec, tt.delay, tt.n))
		})
	}
}

func TestEstimateErrors(t *testing.T) {
	_, err := Estimate(nil, []float32{1}, 48000)
	assert.ErrorIs(t, err, ErrEmptyStimulus)

	_, err = Estimate([]float32{1}, nil, 48000)
	assert.ErrorIs(t, err, ErrEmptyRecording)

	_, err = Estimate([]float32{1}, []float32{1}, 0)
	assert.ErrorIs(t, err, ErrInvalidSampleRate)
}

func maxOf(x []float64) float64 {
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	return s[len(s)-1]
}
