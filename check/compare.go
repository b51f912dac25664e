package check

import "math"

// RelDiff is |expected - actual| / max(|expected|, 1) as a percentage.
func RelDiff(expected, actual float64) float64 {
	return math.Abs(expected-actual) / math.Max(math.Abs(expected), 1) * 100
}

// WithinTolerance reports whether actual is within tolerance percent of
// expected. The comparison is done without dividing so that a difference
// landing exactly on the boundary passes.
func WithinTolerance(expected, actual, tolerance float64) bool {
	return math.Abs(expected-actual)*100 <= tolerance*math.Max(math.Abs(expected), 1)
}

// Compare returns the absolute and relative difference of a pair of values
// and whether they are within tolerance.
func Compare(expected, actual, tolerance float64) (absDiff, relDiff float64, pass bool) {
	return math.Abs(expected - actual), RelDiff(expected, actual), WithinTolerance(expected, actual, tolerance)
}
