package models

import "math"

// Round2 rounds a dollar amount to 2 decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Cents converts a dollar amount to minor currency units.
func Cents(v float64) int64 {
	return int64(math.Round(v * 100))
}
