package store

import (
	"context"

	"github.com/apilon/apilon-landing/internal/experiment"
)

// Store defines the interface for assignment and event storage
type Store interface {
	// Session operations
	SaveAssignment(ctx context.Context, a experiment.Assignment) error
	GetAssignment(ctx context.Context, sessionID string) (*Session, error)
	ListAssignments(ctx context.Context, limit int) ([]*Session, error)
	CountSessions(ctx context.Context) (int, error)

	// Event operations
	RecordEvent(ctx context.Context, e Event) error
	GetEvents(ctx context.Context, limit int) ([]*Event, error)
	ArmStats(ctx context.Context, d experiment.Dimension, conversionLabelPrefix string) ([]ArmStats, error)

	// Lifecycle
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
