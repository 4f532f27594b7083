package store

import "time"

// Session is a stored experiment assignment.
type Session struct {
	SessionID           string
	HeroHeadline        string
	CTAColor            string
	FeatureOrder        string
	SocialProofPosition string
	CreatedAt           time.Time
}

type Event struct {
	ID        int64
	SessionID string
	Action    string
	Category  string
	Label     string
	Value     *float64
	CreatedAt time.Time
}

// ArmStats counts sessions and converted sessions for one experiment arm.
type ArmStats struct {
	Arm         string
	Sessions    int
	Conversions int
}
