package moodlexml

import "math"

// grades are the answer fractions Moodle accepts, negatives excluded.
var grades = []float64{
	1, 0.9, 0.8333333, 0.8, 0.75, 0.7, 0.6666667, 0.6, 0.5, 0.4,
	0.3333333, 0.3, 0.25, 0.2, 0.1666667, 0.1428571, 0.125, 0.1111111,
	0.1, 0.05, 0,
}

// tolerance below which a fraction counts as already allowed.
const tolerance = 1e-5

// snap returns the allowed grade nearest to fraction and whether it differs
// from the input.
func snap(fraction float64) (float64, bool) {
	sign := 1.0
	v := fraction
	if v < 0 {
		sign, v = -1, -v
	}
	best := grades[0]
	for _, g := range grades[1:] {
		if math.Abs(g-v) < math.Abs(best-v) {
			best = g
		}
	}
	changed := math.Abs(best-v) > tolerance
	if !changed {
		return fraction, false
	}
	return sign * best, true
}
