package http

import (
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/server/models"
)

type userJSON struct {
	ID          string     `json:"id"`
	UserName    string     `json:"username"`
	Email       string     `json:"email"`
	Provider    string     `json:"auth_provider"`
	HasPassword bool       `json:"has_password"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func toUser(u *models.User, avatarURL string) userJSON {
	return userJSON{
		ID:          u.ID,
		UserName:    u.UserName,
		Email:       u.Email,
		Provider:    u.Provider,
		HasPassword: u.HasPassword(),
		AvatarURL:   avatarURL,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

type sessionJSON struct {
	ID                 string     `json:"id"`
	Code               string     `json:"session_code"`
	Name               string     `json:"session_name"`
	PlaceName          string     `json:"place_name,omitempty"`
	Latitude           *float64   `json:"latitude,omitempty"`
	Longitude          *float64   `json:"longitude,omitempty"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
	OwnerName          string     `json:"creator_name,omitempty"`
	TotalParticipants  int        `json:"total_participants"`
	ActiveParticipants int        `json:"active_participants"`
	IsOwner            bool       `json:"is_creator"`
	CallerActive       bool       `json:"is_active_participant"`
}

func toSession(s models.Session) sessionJSON {
	return sessionJSON{
		ID:        s.ID,
		Code:      s.Code,
		Name:      s.Name,
		PlaceName: s.PlaceName,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		EndedAt:   s.EndedAt,
	}
}

func toSummary(s models.SessionSummary) sessionJSON {
	out := toSession(s.Session)
	out.OwnerName = s.OwnerName
	out.TotalParticipants = s.TotalParticipants
	out.ActiveParticipants = s.ActiveParticipants
	out.IsOwner = s.IsOwner
	out.CallerActive = s.CallerActive
	return out
}

func toSummaries(in []models.SessionSummary) []sessionJSON {
	out := make([]sessionJSON, 0, len(in))
	for _, s := range in {
		out = append(out, toSummary(s))
	}
	return out
}

type participantJSON struct {
	ID          string     `json:"participant_id"`
	SessionCode string     `json:"session_code"`
	DisplayName string     `json:"display_name"`
	IsGuest     bool       `json:"is_guest"`
	IsActive    bool       `json:"is_active"`
	JoinedAt    time.Time  `json:"joined_at"`
	LeftAt      *time.Time `json:"left_at,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

func toParticipant(p *models.Participant) participantJSON {
	return participantJSON{
		ID:          p.ID,
		SessionCode: p.SessionCode,
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest(),
		IsActive:    p.IsActive,
		JoinedAt:    p.JoinedAt,
		LeftAt:      p.LeftAt,
		Reason:      p.Reason,
	}
}

type positionJSON struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   *float64  `json:"accuracy,omitempty"`
	RecordedAt time.Time `json:"timestamp"`
}

func toPosition(p *models.Position) *positionJSON {
	if p == nil {
		return nil
	}
	return &positionJSON{
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		Accuracy:   p.Accuracy,
		RecordedAt: p.RecordedAt,
	}
}

func toPositions(in []models.Position) []positionJSON {
	out := make([]positionJSON, 0, len(in))
	for i := range in {
		out = append(out, *toPosition(&in[i]))
	}
	return out
}

type rosterEntryJSON struct {
	ParticipantID string        `json:"participant_id"`
	DisplayName   string        `json:"display_name"`
	IsGuest       bool          `json:"is_guest"`
	IsOwner       bool          `json:"is_creator"`
	IsOnline      bool          `json:"is_online"`
	LastKnown     bool          `json:"is_last_known"`
	Location      *positionJSON `json:"location"`
	JoinedAt      time.Time     `json:"joined_at"`
}

func toRoster(in []models.RosterEntry) []rosterEntryJSON {
	out := make([]rosterEntryJSON, 0, len(in))
	for _, e := range in {
		out = append(out, rosterEntryJSON{
			ParticipantID: e.ParticipantID,
			DisplayName:   e.DisplayName,
			IsGuest:       e.IsGuest,
			IsOwner:       e.IsOwner,
			IsOnline:      e.IsOnline,
			LastKnown:     e.LastKnown,
			Location:      toPosition(e.Position),
			JoinedAt:      e.JoinedAt,
		})
	}
	return out
}

type alertJSON struct {
	ID                  int64     `json:"id"`
	SenderParticipantID string    `json:"sender_participant_id"`
	SenderName          string    `json:"sender_name"`
	Message             string    `json:"message"`
	Latitude            *float64  `json:"sender_latitude,omitempty"`
	Longitude           *float64  `json:"sender_longitude,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

func toAlert(n *models.Notification) alertJSON {
	return alertJSON{
		ID:                  n.ID,
		SenderParticipantID: n.SenderParticipantID,
		SenderName:          n.SenderName,
		Message:             n.Message,
		Latitude:            n.Latitude,
		Longitude:           n.Longitude,
		CreatedAt:           n.CreatedAt,
	}
}

func toAlerts(in []models.Notification) []alertJSON {
	out := make([]alertJSON, 0, len(in))
	for i := range in {
		out = append(out, toAlert(&in[i]))
	}
	return out
}
