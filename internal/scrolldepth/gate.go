// Package scrolldepth reports scroll depth milestones at most once per page.
package scrolldepth

import (
	"context"
	"math"

	"github.com/apilon/apilon-landing/internal/analytics"
)

// Thresholds are the reported depth milestones, ascending.
var Thresholds = [...]int{25, 50, 75, 100}

// BottomTolerance is how close to the end of the page counts as reaching
// 100%. Footers and browser chrome often keep the last few percent out of
// reach.
const BottomTolerance = 10.0

func triggerAt(threshold int) float64 {
	if threshold == 100 {
		return 100 - BottomTolerance
	}
	return float64(threshold)
}

// Gate remembers which thresholds have been reported for one page lifetime.
// It is not safe for concurrent use.
type Gate struct {
	tracker *analytics.Tracker
	fired   [len(Thresholds)]bool
}

func NewGate(tracker *analytics.Tracker) *Gate {
	return &Gate{tracker: tracker}
}

// Observe reports every unfired threshold at or below percent, lowest first,
// and returns the thresholds it reported. The 100% milestone triggers within
// BottomTolerance of the end.
func (g *Gate) Observe(ctx context.Context, percent float64) []int {
	// overscroll past 100 still counts; NaN and negatives do not
	if math.IsNaN(percent) || percent < 0 {
		return nil
	}

	var fired []int
	for i, th := range Thresholds {
		if g.fired[i] || triggerAt(th) > percent {
			continue
		}
		g.fired[i] = true
		g.tracker.TrackScrollDepth(ctx, float64(th))
		fired = append(fired, th)
	}
	return fired
}

// Fired returns the thresholds reported so far.
func (g *Gate) Fired() []int {
	var out []int
	for i, th := range Thresholds {
		if g.fired[i] {
			out = append(out, th)
		}
	}
	return out
}

// Done reports whether all thresholds have fired.
func (g *Gate) Done() bool {
	for _, f := range g.fired {
		if !f {
			return false
		}
	}
	return true
}

// Percent converts a scroll position into a percentage of the scrollable
// height. A page shorter than the viewport counts as fully scrolled.
func Percent(scrollTop, viewportHeight, documentHeight float64) float64 {
	scrollable := documentHeight - viewportHeight
	if scrollable <= 0 {
		return 100
	}
	p := scrollTop / scrollable * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
