package smooth

import (
	"fmt"

	"github.com/cwbudde/algo-fresp/dsp/conv"
)

// ProgressFunc receives the completed share of an ERB pass in percent.
type ProgressFunc func(percent int)

// Smooth applies cfg to magsDB sampled at freqs and returns a new slice of
// the same length. The configuration is validated before any work is
// done. progress may be nil and is only called by ERB, which is quadratic
// in the worst case; its last call reports 100.
func Smooth(freqs, magsDB []float64, cfg Config, progress ProgressFunc) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(freqs) != len(magsDB) {
		return nil, ErrLengthMismatch
	}
	if cfg.Method == SavitzkyGolay && len(magsDB) > 0 && len(magsDB) < cfg.Window {
		return nil, fmt.Errorf("%w: window %d, %d points", ErrWindowTooLarge, cfg.Window, len(magsDB))
	}

	if len(magsDB) == 0 {
		if cfg.Method == ERB && progress != nil {
			progress(100)
		}
		return []float64{}, nil
	}

	switch cfg.Method {
	case MovingAverage:
		return movingAverage(magsDB, cfg.Window)
	case SavitzkyGolay:
		return savitzkyGolay(magsDB, cfg.Window)
	case Gaussian:
		return gaussian(magsDB, float64(cfg.Window)/5)
	case ERB:
		return erb(freqs, magsDB, progress), nil
	default:
		return append([]float64(nil), magsDB...), nil
	}
}

// movingAverage is a centered box filter with zero padding.
func movingAverage(x []float64, window int) ([]float64, error) {
	kernel := make([]float64, window)
	for i := range kernel {
		kernel[i] = 1 / float64(window)
	}

	out, err := conv.ConvolveMode(x, kernel, conv.ModeSame)
	if err != nil {
		return nil, fmt.Errorf("smooth: moving average: %w", err)
	}

	return out, nil
}
