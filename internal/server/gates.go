package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/apilon/apilon-landing/internal/analytics"
	"github.com/apilon/apilon-landing/internal/scrolldepth"
)

const (
	gateIdleTimeout = 30 * time.Minute

	maxGatesPerSession = 32
	maxGates           = 50000
)

var errTooManyGates = errors.New("too many open page views")

// gateRegistry keeps one scroll-depth gate per page view.
type gateRegistry struct {
	mu            sync.Mutex
	entries       map[gateKey]*gateEntry
	perSession    map[string]int
	idle          time.Duration
	now           func() time.Time
	maxPerSession int
	maxTotal      int
}

type gateKey struct {
	session  string
	pageView string
}

type gateEntry struct {
	mu       sync.Mutex // serializes Observe on gate
	gate     *scrolldepth.Gate
	lastSeen time.Time // guarded by the registry mutex
}

func newGateRegistry(idle time.Duration) *gateRegistry {
	return &gateRegistry{
		entries:       make(map[gateKey]*gateEntry),
		perSession:    make(map[string]int),
		idle:          idle,
		now:           time.Now,
		maxPerSession: maxGatesPerSession,
		maxTotal:      maxGates,
	}
}

// observe feeds percent into the gate for the session's page view, creating
// it with tracker on first sight, and returns the thresholds fired. New gates
// are refused once the session or the registry is full.
func (r *gateRegistry) observe(ctx context.Context, session, pageView string, percent float64, tracker *analytics.Tracker) ([]int, error) {
	key := gateKey{session: session, pageView: pageView}

	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		if r.perSession[session] >= r.maxPerSession || len(r.entries) >= r.maxTotal {
			r.mu.Unlock()
			return nil, errTooManyGates
		}
		e = &gateEntry{gate: scrolldepth.NewGate(tracker)}
		r.entries[key] = e
		r.perSession[session]++
	}
	e.lastSeen = r.now()
	r.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gate.Observe(ctx, percent), nil
}

// prune drops gates idle for longer than the registry timeout.
func (r *gateRegistry) prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idle)
	n := 0
	for key, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, key)
			r.perSession[key.session]--
			if r.perSession[key.session] <= 0 {
				delete(r.perSession, key.session)
			}
			n++
		}
	}
	return n
}

func (r *gateRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
