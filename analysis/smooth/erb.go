package smooth

import (
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Bandwidth returns the equivalent rectangular bandwidth in Hz of the
// auditory filter centered at f Hz (Glasberg and Moore).
func Bandwidth(f float64) float64 {
	return 24.7 * (4.37*f/1000 + 1)
}

// erb replaces every value by the mean of all values whose frequency lies
// within [f-B/2, f+B/2], B = Bandwidth(f). A band with no points keeps the
// original value.
func erb(freqs, magsDB []float64, progress ProgressFunc) []float64 {
	n := len(freqs)
	out := make([]float64, n)
	rep := newProgress(progress, n)

	sorted := slices.IsSorted(freqs)
	var band []float64

	for i, f := range freqs {
		half := Bandwidth(f) / 2
		lo, hi := f-half, f+half

		if sorted {
			j0 := sort.SearchFloat64s(freqs, lo)
			j1 := sort.Search(n, func(k int) bool { return freqs[k] > hi })
			band = magsDB[j0:max(j0, j1)]
		} else {
			band = band[:0]
			for k, fk := range freqs {
				if fk >= lo && fk <= hi {
					band = append(band, magsDB[k])
				}
			}
		}

		if len(band) == 0 {
			out[i] = magsDB[i]
		} else {
			out[i] = stat.Mean(band, nil)
		}

		rep.step(i + 1)
	}

	rep.done()
	return out
}

// progress reports roughly every percent of n steps.
type progress struct {
	fn     ProgressFunc
	n      int
	stride int
	last   int
}

func newProgress(fn ProgressFunc, n int) *progress {
	return &progress{fn: fn, n: n, stride: max(1, n/100), last: -1}
}

func (p *progress) step(done int) {
	if p.fn == nil || done%p.stride != 0 || done == p.n {
		return
	}
	if pct := 100 * done / p.n; pct > p.last && pct < 100 {
		p.last = pct
		p.fn(pct)
	}
}

func (p *progress) done() {
	if p.fn != nil {
		p.fn(100)
	}
}
