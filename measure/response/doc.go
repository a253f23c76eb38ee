// Package response turns a swept-sine recording into a magnitude response.
//
// The round-trip delay is the peak of the full cross-correlation between
// recording and stimulus. The recording is shifted by that delay, cut or
// padded to the stimulus length, and its one-sided magnitude spectrum is
// reported as the response. No deconvolution against the stimulus
// spectrum is done; the curve is the spectral envelope of the excited
// system.
//
// # Usage
//
//	m := response.NewMeasurer(backend, response.WithLogger(log))
//	res, err := m.Measure(ctx, sweep.LogSweep{...}, in, out, progress)
//	fmt.Printf("delay %.2f ms\n", res.Delay.Milliseconds)
package response
