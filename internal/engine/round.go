// Package engine holds the derived-metrics calculators: energy, exercise burn,
// nutrition rollups, progress tracking and ranking. Every function is pure and
// works on plain domain records; persistence and transport live elsewhere.
package engine

import "math"

// roundTo rounds half away from zero to the given number of decimal places
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// clampPercentage returns current/target as a percentage in [0, 100]. A
// non-positive target yields 0.
func clampPercentage(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	pct := current / target * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
