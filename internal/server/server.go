package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/apilon/apilon-landing/internal/analytics"
	"github.com/apilon/apilon-landing/internal/gtag"
	"github.com/apilon/apilon-landing/internal/logging"
	"github.com/apilon/apilon-landing/internal/store"
)

// Options configures a Server.
type Options struct {
	Port      int
	TokenFile string

	// GA is nil when Google Analytics is disabled.
	GA            *gtag.Client
	MeasurementID string
	// RecordEvents writes tracked events into the local store.
	RecordEvents bool

	// Beacon rate limit per client address.
	BeaconRPS   float64
	BeaconBurst int

	Logger logrus.FieldLogger
}

type Server struct {
	store     *store.SQLiteStore
	opts      Options
	token     string
	router    *http.ServeMux
	startTime time.Time
	log       logrus.FieldLogger
	gates     *gateRegistry
	limiters  *clientLimiters
}

func New(s *store.SQLiteStore, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Null()
	}
	if opts.BeaconRPS <= 0 {
		opts.BeaconRPS = 50
	}
	if opts.BeaconBurst <= 0 {
		opts.BeaconBurst = 100
	}

	srv := &Server{
		store:     s,
		opts:      opts,
		token:     generateToken(),
		router:    http.NewServeMux(),
		startTime: time.Now(),
		log:       opts.Logger,
		gates:     newGateRegistry(gateIdleTimeout),
		limiters:  newClientLimiters(opts.BeaconRPS, opts.BeaconBurst),
	}

	srv.setupRoutes()
	return srv
}

func (s *Server) setupRoutes() {
	// Public endpoints
	s.router.HandleFunc("/", s.handleLanding)
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/b", s.handleBeacon)
	s.router.HandleFunc("/landing.js", s.handleLandingJS)
	s.router.Handle("/metrics", promhttp.Handler())

	// Dashboard endpoints (protected)
	s.router.Handle("/dashboard", s.authMiddleware(http.HandlerFunc(s.handleDashboard)))
	s.router.Handle("/dashboard/api/results", s.authMiddleware(http.HandlerFunc(s.handleDashboardAPI)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	// Write token to file for the token command
	if s.opts.TokenFile != "" {
		if err := os.WriteFile(s.opts.TokenFile, []byte(s.token), 0600); err != nil {
			s.log.WithError(err).Warn("failed to write token file")
		}
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.pruneGates(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	s.log.WithFields(logrus.Fields{
		"port":          s.opts.Port,
		"ga":            s.opts.GA != nil,
		"record_events": s.opts.RecordEvents,
	}).Info("landing server started")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if s.opts.GA != nil {
		if err := s.opts.GA.Flush(shutdownCtx); err != nil {
			s.log.WithError(err).Warn("pending analytics sends abandoned")
		}
	}
	s.log.Info("landing server stopped")
	return nil
}

func (s *Server) pruneGates(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.gates.prune(); n > 0 {
				s.log.WithField("pruned", n).Debug("dropped idle scroll gates")
			}
			s.limiters.prune()
		}
	}
}

// trackerFor builds the tracker for one session. Backends are resolved from
// Options; with none enabled the tracker is a no-op.
func (s *Server) trackerFor(sessionID string) *analytics.Tracker {
	tagger := analytics.Fanout(s.sessionTaggers(sessionID)...)
	return analytics.NewTracker(tagger, s.opts.MeasurementID, s.log.WithField("session", sessionID))
}

func (s *Server) trackingEnabled() bool {
	return s.opts.GA != nil || s.opts.RecordEvents
}

func (s *Server) Token() string {
	return s.token
}

func (s *Server) Store() *store.SQLiteStore {
	return s.store
}

func (s *Server) StartTime() time.Time {
	return s.startTime
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func generateToken() string {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a simple token if crypto/rand fails
		return "a1b2c3d4"
	}
	return hex.EncodeToString(bytes)
}
