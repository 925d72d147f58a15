package models

import "time"

// Position is one reported fix. Session-scoped samples carry
// ParticipantID; durable samples carry UserID.
type Position struct {
	ID            int64
	ParticipantID string
	UserID        string
	Latitude      float64
	Longitude     float64
	Accuracy      *float64
	RecordedAt    time.Time
}

// RosterEntry is one line of the roster view every participant polls.
type RosterEntry struct {
	ParticipantID string
	DisplayName   string
	IsGuest       bool
	IsOwner       bool
	IsOnline      bool
	LastKnown     bool // Position comes from the durable trail
	Position      *Position
	JoinedAt      time.Time
}
