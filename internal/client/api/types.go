package api

import "time"

type User struct {
	ID        string `json:"id"`
	UserName  string `json:"username"`
	Email     string `json:"email"`
	Provider  string `json:"auth_provider"`
	AvatarURL string `json:"avatar_url"`
}

type Session struct {
	ID                 string     `json:"id"`
	Code               string     `json:"session_code"`
	Name               string     `json:"session_name"`
	PlaceName          string     `json:"place_name"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
	EndedAt            *time.Time `json:"ended_at"`
	OwnerName          string     `json:"creator_name"`
	TotalParticipants  int        `json:"total_participants"`
	ActiveParticipants int        `json:"active_participants"`
	IsOwner            bool       `json:"is_creator"`
}

type Participant struct {
	ID          string `json:"participant_id"`
	SessionCode string `json:"session_code"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
	IsActive    bool   `json:"is_active"`
}

type Position struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   *float64  `json:"accuracy"`
	RecordedAt time.Time `json:"timestamp"`
}

type RosterEntry struct {
	ParticipantID string    `json:"participant_id"`
	DisplayName   string    `json:"display_name"`
	IsGuest       bool      `json:"is_guest"`
	IsOwner       bool      `json:"is_creator"`
	IsOnline      bool      `json:"is_online"`
	LastKnown     bool      `json:"is_last_known"`
	Location      *Position `json:"location"`
}

type Roster struct {
	Session      Session       `json:"session"`
	IsActive     bool          `json:"is_active"`
	Participants []RosterEntry `json:"participants"`
}

type Alert struct {
	ID         int64     `json:"id"`
	SenderName string    `json:"sender_name"`
	Message    string    `json:"message"`
	Latitude   *float64  `json:"sender_latitude"`
	Longitude  *float64  `json:"sender_longitude"`
	CreatedAt  time.Time `json:"created_at"`
}

type Identity struct {
	Authenticated bool         `json:"authenticated"`
	User          *User        `json:"user"`
	Participant   *Participant `json:"participant"`
}
