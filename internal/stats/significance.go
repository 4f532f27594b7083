package stats

import (
	"math"

	"github.com/apilon/apilon-landing/internal/experiment"
	"github.com/apilon/apilon-landing/internal/store"
)

// Result is the analysis of one experiment dimension.
type Result struct {
	Dimension       experiment.Dimension
	Arms            []ArmResult
	Confident       bool    // >= 95% confidence
	ConfidenceLevel float64 // 0-1
	LeadingArm      int
}

// ArmResult contains statistics for a single arm
type ArmResult struct {
	Index       int
	Name        string
	Sessions    int
	Conversions int
	Rate        float64
	CILower     float64
	CIUpper     float64
}

// SignificanceTest runs a two-proportion z-test and returns the confidence
// (0-1) that arm A converts better than arm B. Without sessions on both
// sides the answer is 0.5.
func SignificanceTest(aConv, aSessions, bConv, bSessions int) float64 {
	if aSessions == 0 || bSessions == 0 {
		return 0.5
	}

	nA, nB := float64(aSessions), float64(bSessions)
	pA := float64(aConv) / nA
	pB := float64(bConv) / nB

	// pooled rate under the null hypothesis pA == pB
	pooled := float64(aConv+bConv) / (nA + nB)
	se := math.Sqrt(pooled * (1 - pooled) * (1/nA + 1/nB))

	if se == 0 {
		switch {
		case pA > pB:
			return 1
		case pA < pB:
			return 0
		}
		return 0.5
	}

	return normalCDF((pA - pB) / se)
}

// normalCDF is the standard normal cumulative distribution function.
func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// Analyze calculates statistics for every arm of d. The first arm is the
// control; arms with no sessions are reported with zero counts.
func Analyze(d experiment.Dimension, armStats []store.ArmStats) *Result {
	statsMap := make(map[string]store.ArmStats)
	for _, s := range armStats {
		statsMap[s.Arm] = s
	}

	names := d.Arms()
	arms := make([]ArmResult, len(names))
	maxRate := 0.0
	leading := 0

	for i, name := range names {
		stat := statsMap[name]

		rate := 0.0
		if stat.Sessions > 0 {
			rate = float64(stat.Conversions) / float64(stat.Sessions)
		}

		ciLower, ciUpper := WilsonInterval(stat.Conversions, stat.Sessions, DefaultConfidence)

		arms[i] = ArmResult{
			Index:       i,
			Name:        name,
			Sessions:    stat.Sessions,
			Conversions: stat.Conversions,
			Rate:        rate,
			CILower:     ciLower,
			CIUpper:     ciUpper,
		}

		if rate > maxRate {
			maxRate = rate
			leading = i
		}
	}

	var confidence float64
	if len(arms) >= 2 {
		if leading == 0 {
			// Control leads: compare against the best challenger
			best := 1
			bestRate := 0.0
			for i := 1; i < len(arms); i++ {
				if arms[i].Rate > bestRate {
					bestRate = arms[i].Rate
					best = i
				}
			}
			confidence = SignificanceTest(
				arms[0].Conversions, arms[0].Sessions,
				arms[best].Conversions, arms[best].Sessions,
			)
		} else {
			confidence = SignificanceTest(
				arms[leading].Conversions, arms[leading].Sessions,
				arms[0].Conversions, arms[0].Sessions,
			)
		}
	}

	return &Result{
		Dimension:       d,
		Arms:            arms,
		Confident:       confidence >= DefaultConfidence,
		ConfidenceLevel: confidence,
		LeadingArm:      leading,
	}
}
