package experiment

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/apilon/apilon-landing/internal/analytics"
)

// SessionKey is the storage key holding the session id.
const SessionKey = "apilon_session_id"

// SessionStorage is a session-scoped string key-value store.
type SessionStorage interface {
	// Get returns ok=false when key has never been set.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// MemoryStorage is a SessionStorage backed by a map.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Assignor assigns the current session to experiment arms. One Assignor
// serves one page lifetime.
type Assignor struct {
	storage SessionStorage
	tracker *analytics.Tracker
	newID   func() string
	log     logrus.FieldLogger

	// fallback holds the id when storage is unusable
	fallback string
	// OnAssign, when set, is called with every freshly created assignment.
	OnAssign func(ctx context.Context, a Assignment)
}

type Option func(*Assignor)

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(fn func() string) Option {
	return func(a *Assignor) { a.newID = fn }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Assignor) { a.log = log }
}

func NewAssignor(storage SessionStorage, tracker *analytics.Tracker, opts ...Option) *Assignor {
	a := &Assignor{
		storage: storage,
		tracker: tracker,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		a.log = l
	}
	return a
}

// Assign returns the session's assignment, creating and persisting a session
// id on first use. The "assigned" event is emitted only when the id is new.
func (a *Assignor) Assign(ctx context.Context) Assignment {
	id, created := a.sessionID()
	assignment := Derive(id)
	if created {
		a.tracker.TrackEvent(ctx, analytics.Event{
			Action:   analytics.ActionAssigned,
			Category: analytics.CategoryABTest,
			Label:    fmt.Sprintf("session_%s", id),
		})
		if a.OnAssign != nil {
			a.OnAssign(ctx, assignment)
		}
	}
	return assignment
}

func (a *Assignor) sessionID() (string, bool) {
	if a.fallback != "" {
		return a.fallback, false
	}

	if a.storage != nil {
		id, ok, err := a.storage.Get(SessionKey)
		if err == nil && ok && id != "" {
			return id, false
		}
		if err == nil {
			id = a.newID()
			if err = a.storage.Set(SessionKey, id); err == nil {
				return id, true
			}
		}
		a.log.WithError(err).Debug("session storage unavailable, using page-lifetime id")
	}

	a.fallback = a.newID()
	return a.fallback, true
}
