package smooth_test

import (
	"fmt"

	"github.com/cwbudde/algo-fresp/analysis/smooth"
)

func ExampleSmooth() {
	freqs := []float64{100, 200, 300, 400, 500}
	magsDB := []float64{0, 0, 9, 0, 0}

	cfg := smooth.Config{Method: smooth.MovingAverage, Window: 3}
	out, err := smooth.Smooth(freqs, magsDB, cfg, nil)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%.1f\n", out)
	// Output:
	// [0.0 3.0 3.0 3.0 0.0]
}
