// Package smooth smooths magnitude responses given in dB.
//
// Five methods are available: None, MovingAverage, SavitzkyGolay, Gaussian
// and ERB. The first four act on the sample index and use Config.Window;
// ERB averages over one equivalent rectangular bandwidth around each
// frequency and ignores the window.
//
// The output always has the length of the input. MovingAverage treats the
// samples beyond either end as zero, so the outermost window/2 values lean
// toward 0 dB.
package smooth
