// Package spectrum computes one-sided magnitude spectra of real signals.
//
// The real DFT is taken from gonum's dsp/fourier, which handles any length,
// and magnitudes are extracted with algo-vecmath kernels.
package spectrum
