package server

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/apilon/apilon-landing/internal/analytics"
	"github.com/apilon/apilon-landing/internal/content"
	"github.com/apilon/apilon-landing/internal/experiment"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type landingData struct {
	content.Page
	SessionID string
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	assignment := s.assign(ctx, newCookieStorage(w, r))

	// Persist on every render so sessions survive a database reset
	if err := s.store.SaveAssignment(ctx, assignment); err != nil {
		s.log.WithError(err).WithField("session", assignment.SessionID).Warn("failed to save assignment")
	}

	data := landingData{
		Page:      content.Compose(assignment, time.Now().Year()),
		SessionID: assignment.SessionID,
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "landing.html", data); err != nil {
		s.log.WithError(err).Error("failed to render landing page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	pageViewsTotal.Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// assign runs the assignor for one request. The session id is only known once
// the assignor creates it, so the tracker's tagger resolves it lazily.
func (s *Server) assign(ctx context.Context, storage experiment.SessionStorage) experiment.Assignment {
	var generated string
	newID := func() string {
		generated = uuid.NewString()
		return generated
	}

	var tagger analytics.Tagger
	if s.trackingEnabled() {
		tagger = analytics.TaggerFunc(func(ctx context.Context, cmd analytics.Command, target string, params analytics.Params) error {
			tg := analytics.Fanout(s.sessionTaggers(generated)...)
			if tg == nil {
				return nil
			}
			return tg.Tag(ctx, cmd, target, params)
		})
	}

	tracker := analytics.NewTracker(tagger, s.opts.MeasurementID, s.log)
	assignor := experiment.NewAssignor(storage, tracker,
		experiment.WithIDGenerator(newID),
		experiment.WithLogger(s.log),
	)
	assignor.OnAssign = func(_ context.Context, a experiment.Assignment) {
		assignmentsTotal.WithLabelValues(a.HeroHeadline).Inc()
	}

	return assignor.Assign(ctx)
}

func (s *Server) sessionTaggers(sessionID string) []analytics.Tagger {
	var out []analytics.Tagger
	if s.opts.GA != nil {
		out = append(out, s.opts.GA.ForClient(sessionID))
	}
	if s.opts.RecordEvents {
		out = append(out, s.store.Recorder(sessionID))
	}
	return out
}
