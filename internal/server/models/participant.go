package models

import "time"

// Deactivation reasons stored on roster rows.
const (
	ReasonLeft         = "left"
	ReasonRemoved      = "removed"
	ReasonSessionEnded = "session_ended"
)

// Identity is who occupies a roster row: a registered user or a guest name.
type Identity struct {
	UserID    string
	GuestName string
}

func (i Identity) IsGuest() bool { return i.UserID == "" }

// Key is the identity used for distinct counting.
func (i Identity) Key() string {
	if i.UserID != "" {
		return i.UserID
	}
	return "guest:" + i.GuestName
}

type Participant struct {
	ID        string
	SessionID string
	Identity
	IsActive bool
	JoinedAt time.Time
	LeftAt   *time.Time
	Reason   string

	// Filled by read queries.
	DisplayName string
	SessionCode string
}

// JoinResult tells how a join was resolved.
type JoinResult string

const (
	JoinResultJoined        JoinResult = "joined"
	JoinResultRejoined      JoinResult = "rejoined"
	JoinResultAlreadyJoined JoinResult = "already_joined"
)
