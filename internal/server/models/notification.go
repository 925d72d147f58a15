package models

import "time"

type Notification struct {
	ID                  int64
	SessionID           string
	SenderParticipantID string
	SenderName          string
	Message             string
	Latitude            *float64
	Longitude           *float64
	CreatedAt           time.Time
	IsRead              bool
}
