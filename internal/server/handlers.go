package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/apilon/apilon-landing/internal/analytics"
	"github.com/apilon/apilon-landing/internal/experiment"
)

type HealthResponse struct {
	Status        string `json:"status"`
	SessionsCount int    `json:"sessions_count"`
	DBSizeBytes   int64  `json:"db_size_bytes"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	GAEnabled     bool   `json:"ga_enabled"`
	RecordEvents  bool   `json:"record_events"`
	ActiveGates   int    `json:"active_scroll_gates"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	sessions, err := s.store.CountSessions(ctx)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	dbSize, err := s.store.SizeBytes(ctx)
	if err != nil {
		s.log.WithError(err).Debug("failed to read database size")
	}

	response := HealthResponse{
		Status:        "ok",
		SessionsCount: sessions,
		DBSizeBytes:   dbSize,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		GAEnabled:     s.opts.GA != nil,
		RecordEvents:  s.opts.RecordEvents,
		ActiveGates:   s.gates.len(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// BeaconRequest represents an interaction posted by landing.js
type BeaconRequest struct {
	Action    string   `json:"a"`
	Category  string   `json:"c"`
	Label     string   `json:"l"`
	Value     *float64 `json:"v"`
	Percent   *float64 `json:"pct"`
	PageView  string   `json:"pv"`
	URL       string   `json:"url"`
	SessionID string   `json:"sid"`
}

func (s *Server) handleBeacon(w http.ResponseWriter, r *http.Request) {
	// Set CORS headers for all responses
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	// Handle preflight
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !s.limiters.allow(clientAddr(r)) {
		beaconTotal.WithLabelValues("other", "rate_limited").Inc()
		http.Error(w, "Too many requests", http.StatusTooManyRequests)
		return
	}

	var req BeaconRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	// The cookie wins over the body so a page cannot report for another session
	if c, err := r.Cookie(experiment.SessionKey); err == nil && c.Value != "" {
		req.SessionID = c.Value
	}
	if req.SessionID == "" {
		http.Error(w, "Missing session", http.StatusBadRequest)
		return
	}

	action := analytics.Action(req.Action)
	category := analytics.Category(req.Category)
	ctx := r.Context()
	tracker := s.trackerFor(req.SessionID)

	switch {
	case action == analytics.ActionClick && category == analytics.CategoryCTA:
		cta, location, ok := parseCTALabel(req.Label)
		if !ok {
			s.reject(w, req.Action, "Invalid CTA label")
			return
		}
		tracker.TrackCTAClick(ctx, cta, location)

	case action == analytics.ActionScroll:
		if req.PageView == "" || req.Percent == nil {
			s.reject(w, req.Action, "Missing page view or percent")
			return
		}
		fired, err := s.gates.observe(ctx, req.SessionID, req.PageView, *req.Percent, tracker)
		if err != nil {
			beaconTotal.WithLabelValues(metricAction(req.Action), "rate_limited").Inc()
			http.Error(w, "Too many page views", http.StatusTooManyRequests)
			return
		}
		observeMilestones(fired)

	case action == analytics.ActionView:
		if req.URL == "" || !strings.HasPrefix(req.URL, "/") {
			s.reject(w, req.Action, "Invalid page path")
			return
		}
		tracker.TrackPageView(ctx, req.URL)

	case action == analytics.ActionAssigned || category == analytics.CategoryABTest:
		// assignments are only ever emitted by the server
		s.reject(w, req.Action, "Assignment events are server-side")
		return

	case action.Valid() && category.Valid():
		tracker.TrackEvent(ctx, analytics.Event{
			Action:   action,
			Category: category,
			Label:    req.Label,
			Value:    req.Value,
		})

	default:
		s.reject(w, req.Action, "Invalid event")
		return
	}

	beaconTotal.WithLabelValues(metricAction(req.Action), "ok").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reject(w http.ResponseWriter, action, msg string) {
	beaconTotal.WithLabelValues(metricAction(action), "rejected").Inc()
	http.Error(w, msg, http.StatusBadRequest)
}

// parseCTALabel splits "<type>_<location>".
func parseCTALabel(label string) (analytics.CTAType, string, bool) {
	typ, location, ok := strings.Cut(label, "_")
	if !ok || location == "" {
		return "", "", false
	}
	cta := analytics.CTAType(typ)
	if !cta.Valid() {
		return "", "", false
	}
	return cta, location, true
}

// metricAction keeps client supplied strings out of metric labels.
func metricAction(a string) string {
	if analytics.Action(a).Valid() {
		return a
	}
	return "other"
}
