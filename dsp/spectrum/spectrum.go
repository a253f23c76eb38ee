package spectrum

import (
	"errors"
	"sync"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Errors returned by spectrum functions.
var (
	ErrEmptyInput        = errors.New("spectrum: empty input")
	ErrLengthMismatch    = errors.New("spectrum: input length does not match transform length")
	ErrInvalidSampleRate = errors.New("spectrum: sample rate must be positive")
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// Magnitude returns |X[k]| for each complex spectrum bin.
//
// Scratch buffers are pooled, so in steady state this allocates only the
// output slice.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	MagnitudeTo(out, in)
	return out
}

// MagnitudeTo writes |in[k]| into dst, which must be at least len(in) long.
func MagnitudeTo(dst []float64, in []complex128) {
	re, im, buf := getScratch(len(in))
	defer putScratch(buf)

	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	vecmath.Magnitude(dst[:len(in)], re, im)
}

// Real computes one-sided spectra of real signals of a fixed length N.
// Any N > 0 is supported; N need not be a power of two.
//
// A Real is not safe for concurrent use.
type Real struct {
	fft   *fourier.FFT
	n     int
	coeff []complex128
}

// NewReal prepares a transform for signals of length n.
func NewReal(n int) (*Real, error) {
	if n <= 0 {
		return nil, ErrEmptyInput
	}
	return &Real{fft: fourier.NewFFT(n), n: n}, nil
}

// Len returns the signal length N.
func (r *Real) Len() int { return r.n }

// Bins returns the number of one-sided bins, N/2 + 1.
func (r *Real) Bins() int { return r.n/2 + 1 }

// Coefficients returns the unnormalized DFT coefficients X[0..N/2] of x.
// The returned slice is reused by the next call.
func (r *Real) Coefficients(x []float64) ([]complex128, error) {
	if len(x) != r.n {
		return nil, ErrLengthMismatch
	}
	r.coeff = r.fft.Coefficients(r.coeff, x)
	return r.coeff, nil
}

// Frequencies returns the bin center frequencies k*sampleRate/N in Hz.
func (r *Real) Frequencies(sampleRate float64) []float64 {
	out := make([]float64, r.Bins())
	for k := range out {
		out[k] = r.fft.Freq(k) * sampleRate
	}
	return out
}

// MagnitudeSpectrum returns the bin frequencies and |X[k]| of the real DFT
// of x, for k = 0..len(x)/2.
func MagnitudeSpectrum(x []float64, sampleRate float64) (freqs, mags []float64, err error) {
	if len(x) == 0 {
		return nil, nil, ErrEmptyInput
	}
	if !(sampleRate > 0) {
		return nil, nil, ErrInvalidSampleRate
	}

	r, err := NewReal(len(x))
	if err != nil {
		return nil, nil, err
	}

	coeff, err := r.Coefficients(x)
	if err != nil {
		return nil, nil, err
	}

	return r.Frequencies(sampleRate), Magnitude(coeff), nil
}
