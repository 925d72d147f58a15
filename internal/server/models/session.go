package models

import "time"

type Session struct {
	ID        string
	Code      string
	OwnerID   string
	Name      string
	PlaceName string
	Latitude  *float64
	Longitude *float64
	IsActive  bool
	CreatedAt time.Time
	EndedAt   *time.Time
}

// SessionSummary is a session row as listed to one caller.
type SessionSummary struct {
	Session
	OwnerName          string
	TotalParticipants  int
	ActiveParticipants int
	IsOwner            bool
	CallerActive       bool
}
