package sweep

import (
	"errors"
	"math"
)

// Audible range and duration limits accepted for a measurement sweep.
const (
	MinFrequency = 20.0
	MaxFrequency = 20000.0
	MinDuration  = 0.1
	MaxDuration  = 10.0
)

// Errors returned by sweep functions.
var (
	ErrInvalidFrequency  = errors.New("sweep: frequency must be within 20-20000 Hz")
	ErrInvalidDuration   = errors.New("sweep: duration must be within 0.1-10 s")
	ErrInvalidSampleRate = errors.New("sweep: sample rate must be positive")
	ErrInvalidBufferSize = errors.New("sweep: buffer size must be positive")
	ErrAboveNyquist      = errors.New("sweep: frequency must be below the Nyquist frequency")
)

// LogSweep describes a logarithmic sine sweep and the device block size it
// is played with.
//
// A logarithmic sweep spends the same time on every octave. The
// instantaneous frequency moves exponentially from StartFreq to EndFreq
// over Duration seconds. Descending sweeps (StartFreq > EndFreq) and
// constant tones (StartFreq == EndFreq) are valid.
//
// A LogSweep is a value; it is not modified by any method.
type LogSweep struct {
	StartFreq  float64 `json:"start_freq"`  // start frequency in Hz
	EndFreq    float64 `json:"end_freq"`    // end frequency in Hz
	Duration   float64 `json:"duration"`    // sweep duration in seconds
	SampleRate float64 `json:"sample_rate"` // sample rate in Hz
	BufferSize int     `json:"buffer_size"` // frames per device block
}

// Validate checks that the LogSweep parameters are valid.
func (s LogSweep) Validate() error {
	if !inAudibleRange(s.StartFreq) || !inAudibleRange(s.EndFreq) {
		return ErrInvalidFrequency
	}

	if !(s.Duration >= MinDuration && s.Duration <= MaxDuration) {
		return ErrInvalidDuration
	}

	if !(s.SampleRate > 0) {
		return ErrInvalidSampleRate
	}

	if s.BufferSize <= 0 {
		return ErrInvalidBufferSize
	}

	nyquist := s.SampleRate / 2
	if s.StartFreq >= nyquist || s.EndFreq >= nyquist {
		return ErrAboveNyquist
	}

	return nil
}

func inAudibleRange(f float64) bool {
	return f >= MinFrequency && f <= MaxFrequency
}

// Samples returns the stimulus length, round(SampleRate * Duration).
func (s LogSweep) Samples() int {
	return int(math.Round(s.Duration * s.SampleRate))
}

// InstantaneousFrequency returns the sweep frequency in Hz at time t seconds:
//
//	f(t) = f1 * (f2/f1)^(t/T)
func (s LogSweep) InstantaneousFrequency(t float64) float64 {
	return s.StartFreq * math.Pow(s.EndFreq/s.StartFreq, t/s.Duration)
}

// Generate creates the logarithmic sweep as single-precision samples in
// [-1, 1]. The phase is the integral of InstantaneousFrequency:
//
//	x(t) = cos(2π * f1 * T / ln(f2/f1) * ((f2/f1)^(t/T) - 1))
//
// so the first sample is 1. Output is deterministic for a given LogSweep.
func (s LogSweep) Generate() ([]float32, error) {
	err := s.Validate()
	if err != nil {
		return nil, err
	}

	out := make([]float32, s.Samples())

	T := s.Duration
	lnRatio := math.Log(s.EndFreq / s.StartFreq)

	for i := range out {
		t := float64(i) / s.SampleRate

		var phase float64
		if lnRatio == 0 {
			phase = 2 * math.Pi * s.StartFreq * t
		} else {
			phase = 2 * math.Pi * s.StartFreq * T / lnRatio * (math.Exp(t/T*lnRatio) - 1)
		}

		out[i] = float32(math.Cos(phase))
	}

	return out, nil
}
