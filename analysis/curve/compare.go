package curve

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-fresp/dsp/interp"
)

// Errors returned by comparison functions.
var (
	ErrEmptyTarget      = errors.New("curve: target curve is empty")
	ErrInvalidTolerance = errors.New("curve: tolerance must be a non-negative number")
)

// Comparison is a measured curve evaluated against a target.
type Comparison struct {
	Frequencies  []float64 `json:"frequencies"`
	DifferenceDB []float64 `json:"difference_db"`
	ToleranceDB  float64   `json:"tolerance_db"`
	Passed       bool      `json:"passed"`
}

// Compare returns measured - target in dB at every measured frequency.
// The target is interpolated linearly in dB over frequency, and beyond
// its range the first or last segment is extended. The target need not
// be sorted.
func Compare(measured, target Curve) (freqs, diffDB []float64, err error) {
	if err := measured.Validate(); err != nil {
		return nil, nil, err
	}

	norm, err := target.Normalized()
	if err != nil {
		return nil, nil, err
	}
	if norm.Len() == 0 {
		return nil, nil, ErrEmptyTarget
	}

	lin, err := interp.NewLinear(norm.Frequencies, norm.DB())
	if err != nil {
		return nil, nil, fmt.Errorf("curve: target: %w", err)
	}

	freqs = append([]float64(nil), measured.Frequencies...)
	diffDB = measured.DB()
	for i, t := range lin.AtAll(freqs) {
		diffDB[i] -= t
	}

	return freqs, diffDB, nil
}

// CheckPassFail reports whether every difference is within ±toleranceDB.
// NaN differences fail.
func CheckPassFail(diffDB []float64, toleranceDB float64) bool {
	for _, d := range diffDB {
		if !(math.Abs(d) <= toleranceDB) {
			return false
		}
	}
	return true
}

// Evaluate compares measured against target and applies the tolerance.
func Evaluate(measured, target Curve, toleranceDB float64) (Comparison, error) {
	if !(toleranceDB >= 0) || math.IsInf(toleranceDB, 0) {
		return Comparison{}, ErrInvalidTolerance
	}

	freqs, diff, err := Compare(measured, target)
	if err != nil {
		return Comparison{}, err
	}

	return Comparison{
		Frequencies:  freqs,
		DifferenceDB: diff,
		ToleranceDB:  toleranceDB,
		Passed:       CheckPassFail(diff, toleranceDB),
	}, nil
}
