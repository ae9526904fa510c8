package normalize

import "math"

// FTE converts a claim count to full-time equivalents by dividing by the
// per-FTE claim volume, rounded to one decimal. A non-positive divisor yields 0.
func FTE(claims int64, perFTE float64) float64 {
	if perFTE <= 0 {
		return 0
	}
	return math.Round(float64(claims)/perFTE*10) / 10
}
