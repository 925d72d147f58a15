// Package events publishes domain events (sessions, roster changes and
// alerts) to an external stream. Publishing is best-effort: callers log
// failures and carry on.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	SessionCreated     = "session_created"
	SessionEnded       = "session_ended"
	SessionRenamed     = "session_renamed"
	ParticipantJoined  = "participant_joined"
	ParticipantLeft    = "participant_left"
	ParticipantRemoved = "participant_removed"
	AlertSent          = "alert_sent"
)

type Event struct {
	Type          string         `json:"type"`
	SessionID     string         `json:"session_id"`
	SessionCode   string         `json:"session_code,omitempty"`
	ParticipantID string         `json:"participant_id,omitempty"`
	UserID        string         `json:"user_id,omitempty"`
	At            time.Time      `json:"at"`
	Data          map[string]any `json:"data,omitempty"`
}

// Publisher emits events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
