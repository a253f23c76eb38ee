package response

import (
	"errors"
	"fmt"
	"time"

	"github.com/cwbudde/algo-fresp/analysis/curve"
	"github.com/cwbudde/algo-fresp/dsp/conv"
	"github.com/cwbudde/algo-fresp/dsp/spectrum"
)

// Errors returned by response estimation.
var (
	ErrEmptyStimulus     = errors.New("response: stimulus is empty")
	ErrEmptyRecording    = errors.New("response: recording is empty")
	ErrInvalidSampleRate = errors.New("response: sample rate must be positive")
)

// Delay is the estimated round-trip delay of the recording against the
// stimulus. Positive values mean the recording started late.
type Delay struct {
	Samples      int     `json:"samples"`
	Milliseconds float64 `json:"milliseconds"`
}

// DebugInfo collects diagnostics of one measurement.
type DebugInfo struct {
	TotalDuration  time.Duration `json:"total_duration"`
	DelaySamples   int           `json:"delay_samples"`
	DelayMS        float64       `json:"delay_ms"`
	RecordedLength int           `json:"recorded_length"`
	ExpectedLength int           `json:"expected_length"`
	StatusEvents   int           `json:"status_events"`
}

// Result is the outcome of Estimate. Curve magnitudes are linear.
type Result struct {
	Curve curve.Curve `json:"curve"`
	Delay Delay       `json:"delay"`
	Debug DebugInfo   `json:"debug"`
}

// EstimateDelay locates the cross-correlation peak of recording against
// stimulus. Of equal peaks the smallest lag wins.
func EstimateDelay(stimulus, recording []float32, sampleRate float64) (Delay, error) {
	if err := checkInputs(stimulus, recording, sampleRate); err != nil {
		return Delay{}, err
	}

	corr, err := conv.CorrelateFFT(widen(recording), widen(stimulus))
	if err != nil {
		return Delay{}, fmt.Errorf("response: correlate: %w", err)
	}

	peak, _ := conv.FindPeak(corr)
	lag := conv.LagFromIndex(peak, len(stimulus))

	return Delay{
		Samples:      lag,
		Milliseconds: float64(lag) / sampleRate * 1000,
	}, nil
}

// Compensate removes delay samples from the front of recording (or, for a
// negative delay, prepends zeros) and returns exactly n samples.
func Compensate(recording []float32, delay, n int) []float64 {
	out := make([]float64, n)

	src := 0
	dst := 0
	if delay > 0 {
		src = delay
	} else {
		dst = -delay
	}

	for ; dst < n && src < len(recording); dst, src = dst+1, src+1 {
		out[dst] = float64(recording[src])
	}

	return out
}

// Estimate computes the delay-compensated magnitude response of recording
// for the given stimulus. The curve has len(stimulus)/2 + 1 points at
// k*sampleRate/len(stimulus) Hz.
func Estimate(stimulus, recording []float32, sampleRate float64) (*Result, error) {
	delay, err := EstimateDelay(stimulus, recording, sampleRate)
	if err != nil {
		return nil, err
	}

	aligned := Compensate(recording, delay.Samples, len(stimulus))

	freqs, mags, err := spectrum.MagnitudeSpectrum(aligned, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("response: spectrum: %w", err)
	}

	return &Result{
		Curve: curve.Curve{Frequencies: freqs, Magnitudes: mags},
		Delay: delay,
		Debug: DebugInfo{
			DelaySamples:   delay.Samples,
			DelayMS:        delay.Milliseconds,
			RecordedLength: len(recording),
			ExpectedLength: len(stimulus),
		},
	}, nil
}

func checkInputs(stimulus, recording []float32, sampleRate float64) error {
	switch {
	case len(stimulus) == 0:
		return ErrEmptyStimulus
	case len(recording) == 0:
		return ErrEmptyRecording
	case !(sampleRate > 0):
		return ErrInvalidSampleRate
	}
	return nil
}

func widen(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}
