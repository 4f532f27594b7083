package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/apilon/apilon-landing/internal/experiment"
)

var ErrNotFound = errors.New("not found")

type SQLiteStore struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    hero_headline TEXT NOT NULL,
    cta_color TEXT NOT NULL,
    feature_order TEXT NOT NULL,
    social_proof_position TEXT NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);

CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    action TEXT NOT NULL,
    category TEXT NOT NULL,
    label TEXT NOT NULL DEFAULT '',
    value REAL,
    created_at INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id);
CREATE INDEX IF NOT EXISTS idx_events_action ON events(action, category);
`

// dimension -> sessions column
var dimensionColumns = map[experiment.Dimension]string{
	experiment.DimensionHeroHeadline:        "hero_headline",
	experiment.DimensionCTAColor:            "cta_color",
	experiment.DimensionFeatureOrder:        "feature_order",
	experiment.DimensionSocialProofPosition: "social_proof_position",
}

func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveAssignment stores a. An existing row for the same session is kept.
func (s *SQLiteStore) SaveAssignment(ctx context.Context, a experiment.Assignment) error {
	if a.SessionID == "" {
		return fmt.Errorf("assignment has no session id")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (session_id, hero_headline, cta_color, feature_order, social_proof_position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.SessionID, a.HeroHeadline, a.CTAColor, a.FeatureOrder, a.SocialProofPosition, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save assignment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetAssignment(ctx context.Context, sessionID string) (*Session, error) {
	var sess Session
	var createdAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, hero_headline, cta_color, feature_order, social_proof_position, created_at
		 FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&sess.SessionID, &sess.HeroHeadline, &sess.CTAColor, &sess.FeatureOrder, &sess.SocialProofPosition, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	sess.CreatedAt = time.Unix(createdAt, 0)
	return &sess, nil
}

// ListAssignments returns the newest sessions first. limit <= 0 means no limit.
func (s *SQLiteStore) ListAssignments(ctx context.Context, limit int) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, hero_headline, cta_color, feature_order, social_proof_position, created_at
		 FROM sessions ORDER BY created_at DESC, rowid DESC LIMIT ?`, sqlLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var sess Session
		var createdAt int64
		if err := rows.Scan(&sess.SessionID, &sess.HeroHeadline, &sess.CTAColor, &sess.FeatureOrder, &sess.SocialProofPosition, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sess.CreatedAt = time.Unix(createdAt, 0)
		sessions = append(sessions, &sess)
	}

	return sessions, rows.Err()
}

func (s *SQLiteStore) CountSessions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) RecordEvent(ctx context.Context, e Event) error {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	var value sql.NullFloat64
	if e.Value != nil {
		value = sql.NullFloat64{Float64: *e.Value, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (session_id, action, category, label, value, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Action, e.Category, e.Label, value, created.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// GetEvents returns the newest events first. limit <= 0 means no limit.
func (s *SQLiteStore) GetEvents(ctx context.Context, limit int) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, action, category, label, value, created_at
		 FROM events ORDER BY created_at DESC, id DESC LIMIT ?`, sqlLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		var value sql.NullFloat64
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Action, &e.Category, &e.Label, &value, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if value.Valid {
			v := value.Float64
			e.Value = &v
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		events = append(events, &e)
	}

	return events, rows.Err()
}

// ArmStats counts, per arm of d, the assigned sessions and the sessions with
// at least one CTA click whose label starts with conversionLabelPrefix.
func (s *SQLiteStore) ArmStats(ctx context.Context, d experiment.Dimension, conversionLabelPrefix string) ([]ArmStats, error) {
	col, ok := dimensionColumns[d]
	if !ok {
		return nil, fmt.Errorf("unknown dimension %q", d)
	}

	// col comes from dimensionColumns, never from input
	query := fmt.Sprintf(`
		SELECT
			s.%[1]s,
			COUNT(DISTINCT s.session_id) AS sessions,
			COUNT(DISTINCT CASE WHEN e.id IS NOT NULL THEN s.session_id END) AS conversions
		FROM sessions s
		LEFT JOIN events e
			ON e.session_id = s.session_id
			AND e.action = 'click'
			AND e.category = 'cta'
			AND substr(e.label, 1, length(?)) = ?
		GROUP BY s.%[1]s
		ORDER BY s.%[1]s
	`, col)

	rows, err := s.db.QueryContext(ctx, query, conversionLabelPrefix, conversionLabelPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get arm stats: %w", err)
	}
	defer rows.Close()

	var stats []ArmStats
	for rows.Next() {
		var a ArmStats
		if err := rows.Scan(&a.Arm, &a.Sessions, &a.Conversions); err != nil {
			return nil, fmt.Errorf("failed to scan arm stats: %w", err)
		}
		stats = append(stats, a)
	}

	return stats, rows.Err()
}

// SizeBytes reports the database size from SQLite's page accounting.
func (s *SQLiteStore) SizeBytes(ctx context.Context) (int64, error) {
	var size int64
	row := s.db.QueryRowContext(ctx, "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	if err := row.Scan(&size); err != nil {
		return 0, fmt.Errorf("failed to get database size: %w", err)
	}
	return size, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// DB returns the underlying database connection for health checks
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
