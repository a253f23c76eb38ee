// Package core holds the level conversions shared by the measurement,
// smoothing and curve code.
package core

import "math"

// FloorDB is the level reported for zero (or non-finite-in-dB) magnitudes.
// JSON has no encoding for -Inf, so curves on disk never go below it.
const FloorDB = -300.0

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// MagnitudeToDB converts |linear| to dB, never returning less than FloorDB.
func MagnitudeToDB(linear float64) float64 {
	db := LinearToDB(math.Abs(linear))
	if math.IsNaN(db) || db < FloorDB {
		return FloorDB
	}

	return db
}

// MagnitudesToDB converts a magnitude slice with MagnitudeToDB.
func MagnitudesToDB(linear []float64) []float64 {
	out := make([]float64, len(linear))
	for i, v := range linear {
		out[i] = MagnitudeToDB(v)
	}

	return out
}

// MagnitudesFromDB converts a dB slice back to linear amplitude.
func MagnitudesFromDB(db []float64) []float64 {
	out := make([]float64, len(db))
	for i, v := range db {
		out[i] = DBToLinear(v)
	}

	return out
}
