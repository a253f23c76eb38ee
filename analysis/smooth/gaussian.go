package smooth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fresp/dsp/conv"
)

// gaussianTruncate is the kernel half-width in standard deviations.
const gaussianTruncate = 4.0

// gaussian convolves x with a sampled, normalized Gaussian of the given
// standard deviation. Samples beyond the ends are mirrored about the
// half-sample point (d c b a | a b c d | d c b a).
func gaussian(x []float64, sigma float64) ([]float64, error) {
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	ext := make([]float64, len(x)+2*radius)
	for i := range ext {
		ext[i] = x[reflectIndex(i-radius, len(x))]
	}

	out, err := conv.ConvolveMode(ext, kernel, conv.ModeValid)
	if err != nil {
		return nil, fmt.Errorf("smooth: gaussian: %w", err)
	}

	return out, nil
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(gaussianTruncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)

	sum := 0.0
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-0.5 * d * d / (sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	return kernel
}

// reflectIndex folds i into [0, n) by half-sample symmetric reflection.
func reflectIndex(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}
