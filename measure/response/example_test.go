package response_test

import (
	"fmt"

	"github.com/cwbudde/algo-fresp/measure/response"
	"github.com/cwbudde/algo-fresp/measure/sweep"
)

func ExampleEstimate() {
	stimulus, err := sweep.LogSweep{
		StartFreq:  20,
		EndFreq:    20000,
		Duration:   0.5,
		SampleRate: 48000,
		BufferSize: 256,
	}.Generate()
	if err != nil {
		panic(err)
	}

	// A recording that arrived 48 samples late.
	recording := make([]float32, len(stimulus))
	copy(recording[48:], stimulus)

	res, err := response.Estimate(stimulus, recording, 48000)
	if err != nil {
		panic(err)
	}

	fmt.Printf("delay: %d samples (%.1f ms)\n", res.Delay.Samples, res.Delay.Milliseconds)
	fmt.Printf("bins: %d, spacing %.0f Hz\n", len(res.Curve.Frequencies), res.Curve.Frequencies[1])
	// Output:
	// delay: 48 samples (1.0 ms)
	// bins: 12001, spacing 2 Hz
}
