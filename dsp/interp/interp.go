package interp

import (
	"errors"

	gonuminterp "gonum.org/v1/gonum/interp"
)

// Errors returned by curve interpolation.
var (
	ErrLengthMismatch = errors.New("interp: x and y lengths differ")
	ErrNoPoints       = errors.New("interp: at least one point is required")
	ErrNotIncreasing  = errors.New("interp: x values must be strictly increasing")
)

// Linear2 interpolates from x0 to x1 at frac in [0,1]. Values of frac
// outside [0,1] extrapolate along the same line.
func Linear2(frac, x0, x1 float64) float64 {
	return x0 + frac*(x1-x0)
}

// Linear is a piecewise-linear interpolator over tabulated points.
// Inside the tabulated range it follows the segments; outside it
// continues the first or last segment. A single point gives a constant.
type Linear struct {
	xs, ys []float64
	pl     gonuminterp.PiecewiseLinear
}

// NewLinear fits xs/ys. xs must be strictly increasing. The slices are
// copied.
func NewLinear(xs, ys []float64) (*Linear, error) {
	if len(xs) != len(ys) {
		return nil, ErrLengthMismatch
	}
	if len(xs) == 0 {
		return nil, ErrNoPoints
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return nil, ErrNotIncreasing
		}
	}

	l := &Linear{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
	}
	if len(xs) > 1 {
		if err := l.pl.Fit(l.xs, l.ys); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// At returns the interpolated (or extrapolated) value at x.
func (l *Linear) At(x float64) float64 {
	n := len(l.xs)
	if n == 1 {
		return l.ys[0]
	}

	switch {
	case x < l.xs[0]:
		return l.extend(0, 1, x)
	case x > l.xs[n-1]:
		return l.extend(n-2, n-1, x)
	default:
		return l.pl.Predict(x)
	}
}

// AtAll evaluates At for every x.
func (l *Linear) AtAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = l.At(x)
	}
	return out
}

// extend continues the segment (i, j) to x.
func (l *Linear) extend(i, j int, x float64) float64 {
	frac := (x - l.xs[i]) / (l.xs[j] - l.xs[i])
	return Linear2(frac, l.ys[i], l.ys[j])
}
