package scrolldepth_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apilon/apilon-landing/internal/analytics"
	"github.com/apilon/apilon-landing/internal/scrolldepth"
)

type depthRecorder struct {
	labels []string
}

func (d *depthRecorder) Tag(_ context.Context, _ analytics.Command, _ string, params analytics.Params) error {
	d.labels = append(d.labels, params[analytics.ParamEventLabel].(string))
	return nil
}

func newGate() (*scrolldepth.Gate, *depthRecorder) {
	rec := &depthRecorder{}
	return scrolldepth.NewGate(analytics.NewTracker(rec, "", nil)), rec
}

func TestGate_FiresEachThresholdOnceInOrder(t *testing.T) {
	g, rec := newGate()
	ctx := context.Background()

	for _, p := range []float64{10, 26, 40, 51, 80, 92} {
		g.Observe(ctx, p)
	}
	assert.Equal(t, []string{"25%", "50%", "75%", "100%"}, rec.labels)
	assert.True(t, g.Done())

	g.Observe(ctx, 100)
	assert.Len(t, rec.labels, 4)
}

func TestGate_ManyEventsBetweenCrossings(t *testing.T) {
	g, rec := newGate()
	ctx := context.Background()

	for p := 0.0; p <= 100; p += 0.5 {
		g.Observe(ctx, p)
		g.Observe(ctx, p)
	}

	assert.Equal(t, []string{"25%", "50%", "75%", "100%"}, rec.labels)
}

func TestGate_ScrollBackDoesNotRefire(t *testing.T) {
	g, rec := newGate()
	ctx := context.Background()

	for _, p := range []float64{30, 5, 30, 0, 60, 20, 60} {
		g.Observe(ctx, p)
	}

	assert.Equal(t, []string{"25%", "50%"}, rec.labels)
	assert.Equal(t, []int{25, 50}, g.Fired())
	assert.False(t, g.Done())
}

func TestGate_LoadedAlreadyScrolled(t *testing.T) {
	g, rec := newGate()

	// synthetic call made at mount for a page opened via an anchor link
	fired := g.Observe(context.Background(), 77)

	assert.Equal(t, []int{25, 50, 75}, fired)
	assert.Equal(t, []string{"25%", "50%", "75%"}, rec.labels)
}

func TestGate_BottomTolerance(t *testing.T) {
	g, _ := newGate()

	assert.Equal(t, []int{25, 50, 75}, g.Observe(context.Background(), 89.9))
	assert.Equal(t, []int{100}, g.Observe(context.Background(), 90))
}

func TestGate_IgnoresInvalid(t *testing.T) {
	g, rec := newGate()

	assert.Nil(t, g.Observe(context.Background(), -5))
	assert.Nil(t, g.Observe(context.Background(), math.NaN()))
	assert.Empty(t, rec.labels)
}

func TestGate_Overscroll(t *testing.T) {
	g, _ := newGate()

	assert.Equal(t, []int{25, 50, 75, 100}, g.Observe(context.Background(), 104))
}

func TestGate_WithoutTracker(t *testing.T) {
	g := scrolldepth.NewGate(nil)

	assert.Equal(t, []int{25}, g.Observe(context.Background(), 30))
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name                  string
		top, viewport, height float64
		want                  float64
	}{
		{"top", 0, 800, 4800, 0},
		{"half", 2000, 800, 4800, 50},
		{"bottom", 4000, 800, 4800, 100},
		{"short page", 0, 800, 600, 100},
		{"bounce past bottom", 4100, 800, 4800, 100},
		{"bounce above top", -40, 800, 4800, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scrolldepth.Percent(tt.top, tt.viewport, tt.height), 1e-9)
		})
	}
}
