package analytics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Tracker emits analytics events through an optional Tagger. Failures of the
// underlying tagger are logged and never reach the caller.
type Tracker struct {
	tagger        Tagger
	measurementID string
	log           logrus.FieldLogger
}

// NewTracker returns a Tracker. A nil tagger means tracking is unavailable and
// every call becomes a no-op.
func NewTracker(tagger Tagger, measurementID string, log logrus.FieldLogger) *Tracker {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Tracker{
		tagger:        tagger,
		measurementID: measurementID,
		log:           log,
	}
}

// Enabled reports whether a tagger is wired in.
func (t *Tracker) Enabled() bool {
	return t != nil && t.tagger != nil
}

// WithTagger returns a copy of t sending to tagger instead.
func (t *Tracker) WithTagger(tagger Tagger) *Tracker {
	return &Tracker{tagger: tagger, measurementID: t.measurementID, log: t.log}
}

func (t *Tracker) TrackEvent(ctx context.Context, ev Event) {
	if !t.Enabled() {
		return
	}

	params := Params{ParamEventCategory: string(ev.Category)}
	if ev.Label != "" {
		params[ParamEventLabel] = ev.Label
	}
	if ev.Value != nil {
		params[ParamValue] = *ev.Value
	}

	if err := t.call(ctx, CommandEvent, string(ev.Action), params); err != nil {
		t.log.WithFields(logrus.Fields{
			"action":   ev.Action,
			"category": ev.Category,
			"label":    ev.Label,
		}).WithError(err).Warn("analytics tracking failed")
	}
}

func (t *Tracker) TrackCTAClick(ctx context.Context, cta CTAType, location string) {
	t.TrackEvent(ctx, Event{
		Action:   ActionClick,
		Category: CategoryCTA,
		Label:    fmt.Sprintf("%s_%s", cta, location),
	})
}

// TrackScrollDepth reports a scroll depth percentage. Depths outside [0,100]
// are dropped.
func (t *Tracker) TrackScrollDepth(ctx context.Context, depth float64) {
	if !ValidDepth(depth) {
		return
	}
	t.TrackEvent(ctx, Event{
		Action:   ActionScroll,
		Category: CategoryEngagement,
		Label:    DepthLabel(depth),
		Value:    Float(depth),
	})
}

// TrackPageView updates the page path on the backend's configuration. It needs
// a measurement id as well as a tagger.
func (t *Tracker) TrackPageView(ctx context.Context, url string) {
	if !t.Enabled() || t.measurementID == "" {
		return
	}
	if err := t.call(ctx, CommandConfig, t.measurementID, Params{ParamPagePath: url}); err != nil {
		t.log.WithField("url", url).WithError(err).Warn("page view tracking failed")
	}
}

// call invokes the tagger and turns a panic into an error.
func (t *Tracker) call(ctx context.Context, cmd Command, target string, params Params) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tagger panic: %v", r)
		}
	}()
	return t.tagger.Tag(ctx, cmd, target, params)
}

func ValidDepth(depth float64) bool {
	return !math.IsNaN(depth) && depth >= 0 && depth <= 100
}

// DepthLabel formats a depth as "<depth>%" using the shortest decimal form.
func DepthLabel(depth float64) string {
	return strconv.FormatFloat(depth, 'f', -1, 64) + "%"
}

// Fanout sends every call to all non-nil taggers. It returns nil when no
// taggers remain, so callers can treat the result as "tracking absent".
func Fanout(taggers ...Tagger) Tagger {
	var live multiTagger
	for _, tg := range taggers {
		if tg == nil {
			continue
		}
		if tf, ok := tg.(TaggerFunc); ok && tf == nil {
			continue
		}
		live = append(live, tg)
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return live
}

type multiTagger []Tagger

func (m multiTagger) Tag(ctx context.Context, cmd Command, target string, params Params) error {
	var errs []error
	for _, tg := range m {
		if err := tg.Tag(ctx, cmd, target, params); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
