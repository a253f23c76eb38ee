package smooth

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// savgolOrder is the degree of the fitted polynomial.
const savgolOrder = 3

// savitzkyGolay fits a cubic over every window of the given odd length and
// keeps its value at the window center. The first and last window/2
// samples take their values from the cubic fitted to the first and last
// full window. len(x) must be at least window.
func savitzkyGolay(x []float64, window int) ([]float64, error) {
	pinv, err := savgolProjection(window)
	if err != nil {
		return nil, err
	}

	n := len(x)
	half := window / 2
	out := make([]float64, n)

	center := pinv.RawRowView(0)
	for i := half; i < n-half; i++ {
		acc := 0.0
		for j, c := range center {
			acc += c * x[i-half+j]
		}
		out[i] = acc
	}

	fitEdge(out, x[:window], pinv, 0, half, half)
	fitEdge(out, x[n-window:], pinv, n-half, n, n-window+half)

	return out, nil
}

// savgolProjection returns the pseudo-inverse of the Vandermonde matrix
// for positions -half..half. Row k maps a window to its k-th polynomial
// coefficient.
func savgolProjection(window int) (*mat.Dense, error) {
	half := window / 2
	a := mat.NewDense(window, savgolOrder+1, nil)
	for i := range window {
		x := float64(i - half)
		p := 1.0
		for j := 0; j <= savgolOrder; j++ {
			a.Set(i, j, p)
			p *= x
		}
	}

	eye := mat.NewDiagDense(window, nil)
	for i := range window {
		eye.SetDiag(i, 1)
	}

	var pinv mat.Dense
	if err := pinv.Solve(a, eye); err != nil {
		return nil, fmt.Errorf("smooth: savitzky-golay fit: %w", err)
	}

	return &pinv, nil
}

// fitEdge evaluates the cubic fitted to seg at out[from:to]. origin is the
// output index of the segment's center.
func fitEdge(out, seg []float64, pinv *mat.Dense, from, to, origin int) {
	var coef mat.VecDense
	coef.MulVec(pinv, mat.NewVecDense(len(seg), seg))

	for i := from; i < to; i++ {
		x := float64(i - origin)
		y := 0.0
		for k := savgolOrder; k >= 0; k-- {
			y = y*x + coef.AtVec(k)
		}
		out[i] = y
	}
}
