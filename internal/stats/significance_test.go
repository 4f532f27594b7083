package stats_test

import (
	"testing"

	"github.com/apilon/apilon-landing/internal/experiment"
	"github.com/apilon/apilon-landing/internal/stats"
	"github.com/apilon/apilon-landing/internal/store"
)

func TestSignificanceTest_ClearWinner(t *testing.T) {
	// A: 10% (100/1000), B: 5% (50/1000)
	confidence := stats.SignificanceTest(100, 1000, 50, 1000)

	if confidence < 0.95 {
		t.Errorf("expected high confidence (>0.95), got %f", confidence)
	}
}

func TestSignificanceTest_NoSignificance(t *testing.T) {
	confidence := stats.SignificanceTest(50, 1000, 50, 1000)

	if confidence > 0.60 {
		t.Errorf("expected low confidence (<0.60) for equal rates, got %f", confidence)
	}
}

func TestSignificanceTest_SmallSample(t *testing.T) {
	confidence := stats.SignificanceTest(5, 20, 2, 20)

	if confidence > 0.95 {
		t.Errorf("expected lower confidence for small sample, got %f", confidence)
	}
}

func TestSignificanceTest_ZeroSessions(t *testing.T) {
	confidence := stats.SignificanceTest(0, 0, 0, 0)

	if confidence != 0.5 {
		t.Errorf("expected 0.5 for zero sessions, got %f", confidence)
	}
}

func TestSignificanceTest_OnlyOneArmHasSessions(t *testing.T) {
	confidence := stats.SignificanceTest(10, 100, 0, 0)

	if confidence > 0.6 || confidence < 0.4 {
		t.Errorf("expected ~0.5 when only one arm has data, got %f", confidence)
	}
}

func TestAnalyze_HeroHeadline(t *testing.T) {
	armStats := []store.ArmStats{
		{Arm: "A", Sessions: 100, Conversions: 10},
		{Arm: "B", Sessions: 100, Conversions: 20},
	}

	result := stats.Analyze(experiment.DimensionHeroHeadline, armStats)

	if len(result.Arms) != 2 {
		t.Fatalf("expected 2 arms, got %d", len(result.Arms))
	}
	if result.Arms[0].Rate < 0.09 || result.Arms[0].Rate > 0.11 {
		t.Errorf("arm A rate %f not ~0.10", result.Arms[0].Rate)
	}
	if result.Arms[1].Rate < 0.19 || result.Arms[1].Rate > 0.21 {
		t.Errorf("arm B rate %f not ~0.20", result.Arms[1].Rate)
	}
	if result.LeadingArm != 1 {
		t.Errorf("expected arm B to be leading, got %d", result.LeadingArm)
	}
	if result.Dimension != experiment.DimensionHeroHeadline {
		t.Errorf("got dimension %s", result.Dimension)
	}
}

func TestAnalyze_ThreeArmsControlLeading(t *testing.T) {
	armStats := []store.ArmStats{
		{Arm: "blue", Sessions: 1000, Conversions: 150},
		{Arm: "green", Sessions: 1000, Conversions: 100},
		{Arm: "purple", Sessions: 1000, Conversions: 120},
	}

	result := stats.Analyze(experiment.DimensionCTAColor, armStats)

	if result.LeadingArm != 0 {
		t.Errorf("expected control to lead, got %d", result.LeadingArm)
	}
	// blue vs purple (best challenger)
	want := stats.SignificanceTest(150, 1000, 120, 1000)
	if result.ConfidenceLevel != want {
		t.Errorf("got confidence %f, want %f", result.ConfidenceLevel, want)
	}
}

func TestAnalyze_WithConfidenceIntervals(t *testing.T) {
	armStats := []store.ArmStats{
		{Arm: "original", Sessions: 1000, Conversions: 100},
		{Arm: "reversed", Sessions: 1000, Conversions: 150},
	}

	result := stats.Analyze(experiment.DimensionFeatureOrder, armStats)

	for i, a := range result.Arms {
		if a.CILower >= a.Rate {
			t.Errorf("arm %d: CI lower %f should be < rate %f", i, a.CILower, a.Rate)
		}
		if a.CIUpper <= a.Rate {
			t.Errorf("arm %d: CI upper %f should be > rate %f", i, a.CIUpper, a.Rate)
		}
	}
	if !result.Confident {
		t.Errorf("expected confident result, got %f", result.ConfidenceLevel)
	}
}

func TestAnalyze_EmptyStats(t *testing.T) {
	result := stats.Analyze(experiment.DimensionSocialProofPosition, nil)

	if len(result.Arms) != 2 {
		t.Fatalf("expected 2 arms even with empty stats, got %d", len(result.Arms))
	}
	if result.Arms[0].Name != "before" || result.Arms[1].Name != "after" {
		t.Errorf("unexpected arm names: %s, %s", result.Arms[0].Name, result.Arms[1].Name)
	}
	for _, a := range result.Arms {
		if a.Sessions != 0 || a.Conversions != 0 {
			t.Errorf("expected zero sessions/conversions for empty stats")
		}
	}
}
