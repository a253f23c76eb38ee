// Package conv provides the convolution and correlation routines used by
// the measurement and smoothing code.
//
//   - Direct convolution: simple O(N*M) time-domain convolution, used for
//     short smoothing kernels
//   - FFT convolution and correlation: zero-padded power-of-two transforms
//     for long signals such as a full sweep recording
//
// # Usage
//
//	result, err := conv.ConvolveMode(signal, kernel, conv.ModeSame)
//	corr, err := conv.CorrelateFFT(recording, stimulus)
//	idx, _ := conv.FindPeak(corr)
//	lag := conv.LagFromIndex(idx, len(stimulus))
//
// Correlation output index k corresponds to lag k - (len(b) - 1).
package conv
