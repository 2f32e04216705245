package money

import "math"

// ApplyRate multiplies an amount in cents by a fractional rate and rounds
// to the nearest cent.
func ApplyRate(cents int64, rate float64) int64 {
	return int64(math.Round(float64(cents) * rate))
}
