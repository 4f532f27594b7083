package analytics_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apilon/apilon-landing/internal/analytics"
)

type call struct {
	cmd    analytics.Command
	target string
	params analytics.Params
}

type recordingTagger struct {
	calls []call
	err   error
}

func (r *recordingTagger) Tag(_ context.Context, cmd analytics.Command, target string, params analytics.Params) error {
	r.calls = append(r.calls, call{cmd, target, params})
	return r.err
}

func newTracker(tg analytics.Tagger) (*analytics.Tracker, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	return analytics.NewTracker(tg, "G-TEST123", log), &buf
}

func TestTrackEvent_ForwardsToTagger(t *testing.T) {
	rec := &recordingTagger{}
	tr, _ := newTracker(rec)

	tr.TrackEvent(context.Background(), analytics.Event{
		Action:   analytics.ActionSubmit,
		Category: analytics.CategoryConversion,
		Label:    "newsletter",
		Value:    analytics.Float(3),
	})

	require.Len(t, rec.calls, 1)
	c := rec.calls[0]
	assert.Equal(t, analytics.CommandEvent, c.cmd)
	assert.Equal(t, "submit", c.target)
	assert.Equal(t, analytics.Params{
		"event_category": "conversion",
		"event_label":    "newsletter",
		"value":          3.0,
	}, c.params)
}

func TestTrackEvent_OmitsEmptyOptionalFields(t *testing.T) {
	rec := &recordingTagger{}
	tr, _ := newTracker(rec)

	tr.TrackEvent(context.Background(), analytics.Event{Action: analytics.ActionView, Category: analytics.CategoryFeature})

	require.Len(t, rec.calls, 1)
	assert.Equal(t, analytics.Params{"event_category": "feature"}, rec.calls[0].params)
}

func TestTrackEvent_NoTaggerIsNoop(t *testing.T) {
	tr, buf := newTracker(nil)

	assert.False(t, tr.Enabled())
	assert.NotPanics(t, func() {
		tr.TrackEvent(context.Background(), analytics.Event{Action: analytics.ActionClick, Category: analytics.CategoryCTA})
		tr.TrackCTAClick(context.Background(), analytics.CTATrial, "hero")
		tr.TrackScrollDepth(context.Background(), 50)
		tr.TrackPageView(context.Background(), "/")
	})
	assert.Empty(t, buf.String())
}

func TestTrackEvent_ErrorIsLoggedNotReturned(t *testing.T) {
	rec := &recordingTagger{err: errors.New("blocked by client")}
	tr, buf := newTracker(rec)

	tr.TrackCTAClick(context.Background(), analytics.CTADemo, "hero")

	assert.Len(t, rec.calls, 1)
	assert.Contains(t, buf.String(), "level=warning")
	assert.Contains(t, buf.String(), "blocked by client")
}

func TestTrackEvent_PanicIsRecovered(t *testing.T) {
	tg := analytics.TaggerFunc(func(context.Context, analytics.Command, string, analytics.Params) error {
		panic("gtag is not a function")
	})
	tr, buf := newTracker(tg)

	assert.NotPanics(t, func() {
		tr.TrackEvent(context.Background(), analytics.Event{Action: analytics.ActionClick, Category: analytics.CategoryLogo})
	})
	assert.Contains(t, buf.String(), "gtag is not a function")
}

func TestTrackCTAClick(t *testing.T) {
	rec := &recordingTagger{}
	tr, _ := newTracker(rec)

	tr.TrackCTAClick(context.Background(), analytics.CTATrial, "hero")

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "click", rec.calls[0].target)
	assert.Equal(t, analytics.Params{"event_category": "cta", "event_label": "trial_hero"}, rec.calls[0].params)
}

func TestTrackScrollDepth_ValidRange(t *testing.T) {
	for _, d := range []float64{0, 25, 33.5, 50, 99.9, 100} {
		rec := &recordingTagger{}
		tr, _ := newTracker(rec)

		tr.TrackScrollDepth(context.Background(), d)

		require.Len(t, rec.calls, 1, "depth %v", d)
		assert.Equal(t, "scroll", rec.calls[0].target)
		assert.Equal(t, "engagement", rec.calls[0].params["event_category"])
		assert.Equal(t, analytics.DepthLabel(d), rec.calls[0].params["event_label"])
		assert.Equal(t, d, rec.calls[0].params["value"])
	}
}

func TestTrackScrollDepth_OutOfRange(t *testing.T) {
	rec := &recordingTagger{}
	tr, _ := newTracker(rec)

	for _, d := range []float64{-1, -0.01, 100.01, 150} {
		tr.TrackScrollDepth(context.Background(), d)
	}

	assert.Empty(t, rec.calls)
}

func TestDepthLabel(t *testing.T) {
	assert.Equal(t, "25%", analytics.DepthLabel(25))
	assert.Equal(t, "0%", analytics.DepthLabel(0))
	assert.Equal(t, "33.5%", analytics.DepthLabel(33.5))
}

func TestTrackPageView(t *testing.T) {
	rec := &recordingTagger{}
	tr, _ := newTracker(rec)

	tr.TrackPageView(context.Background(), "/pricing")

	require.Len(t, rec.calls, 1)
	assert.Equal(t, analytics.CommandConfig, rec.calls[0].cmd)
	assert.Equal(t, "G-TEST123", rec.calls[0].target)
	assert.Equal(t, analytics.Params{"page_path": "/pricing"}, rec.calls[0].params)
}

func TestTrackPageView_RequiresMeasurementID(t *testing.T) {
	rec := &recordingTagger{}
	tr := analytics.NewTracker(rec, "", nil)

	tr.TrackPageView(context.Background(), "/")

	assert.Empty(t, rec.calls)
}

func TestFanout(t *testing.T) {
	a, b := &recordingTagger{}, &recordingTagger{err: errors.New("down")}

	assert.Nil(t, analytics.Fanout())
	assert.Nil(t, analytics.Fanout(nil, nil))
	assert.Same(t, a, analytics.Fanout(nil, a))

	err := analytics.Fanout(a, b).Tag(context.Background(), analytics.CommandEvent, "click", nil)
	assert.EqualError(t, err, "down")
	assert.Len(t, a.calls, 1)
	assert.Len(t, b.calls, 1)
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, analytics.ActionSignUp.Valid())
	assert.False(t, analytics.Action("hover").Valid())
	assert.True(t, analytics.CategoryABTest.Valid())
	assert.False(t, analytics.Category("misc").Valid())
	assert.True(t, analytics.CTASignIn.Valid())
	assert.False(t, analytics.CTAType("buy").Valid())
}
