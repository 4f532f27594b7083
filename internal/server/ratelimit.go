package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTimeout = 10 * time.Minute
	maxClientLimiters  = 10000
)

// clientLimiters hands out one token bucket per client address. Once
// maxClientLimiters addresses are tracked, unknown addresses share a single
// overflow bucket until idle entries are pruned.
type clientLimiters struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	entries  map[string]*limiterEntry
	overflow *rate.Limiter
	idle     time.Duration
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(rps float64, burst int) *clientLimiters {
	return &clientLimiters{
		limit:    rate.Limit(rps),
		burst:    burst,
		entries:  make(map[string]*limiterEntry),
		overflow: rate.NewLimiter(rate.Limit(rps), burst),
		idle:     limiterIdleTimeout,
		now:      time.Now,
	}
}

func (c *clientLimiters) allow(key string) bool {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		if len(c.entries) >= maxClientLimiters {
			c.mu.Unlock()
			return c.overflow.Allow()
		}
		e = &limiterEntry{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.entries[key] = e
	}
	e.lastSeen = c.now()
	c.mu.Unlock()

	return e.limiter.Allow()
}

// prune drops buckets not used within the idle timeout.
func (c *clientLimiters) prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-c.idle)
	n := 0
	for key, e := range c.entries {
		if e.lastSeen.Before(cutoff) {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

func (c *clientLimiters) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// clientAddr is the remote IP without port. Forwarding headers are not
// trusted; behind a proxy all clients share the proxy's bucket.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
