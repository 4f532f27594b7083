package stats

import "math"

// DefaultConfidence is the confidence level used for arm intervals and for
// declaring a winner.
const DefaultConfidence = 0.95

// WilsonInterval returns the Wilson score interval for conversions out of
// sessions. It stays inside [0, 1] and behaves at 0% and 100% conversion,
// where the normal approximation collapses to a point.
func WilsonInterval(conversions, sessions int, confidence float64) (lower, upper float64) {
	if sessions <= 0 {
		return 0, 0
	}

	z := ZScore(confidence)
	z2 := z * z
	n := float64(sessions)
	p := float64(conversions) / n

	denom := 1 + z2/n
	center := (p + z2/(2*n)) / denom
	margin := z / denom * math.Sqrt(p*(1-p)/n+z2/(4*n*n))

	return math.Max(0, center-margin), math.Min(1, center+margin)
}

// ZScore returns the two-sided critical value for a confidence level in
// (0, 1): 1.645 for 0.90, 1.96 for 0.95, 2.576 for 0.99.
func ZScore(confidence float64) float64 {
	switch confidence {
	case 0.90:
		return 1.645
	case 0.95:
		return 1.96
	case 0.99:
		return 2.576
	}
	if confidence <= 0 {
		return 0
	}
	if confidence >= 1 {
		return math.Inf(1)
	}
	return math.Sqrt2 * math.Erfinv(confidence)
}
