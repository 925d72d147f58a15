// Package notifications stores alert pings broadcast inside a session.
package notifications

import (
	"context"

	"github.com/dmitrijs2005/huntplanur/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	// ListUnread returns unread alerts of the session not sent by
	// excludeParticipantID, newest first.
	ListUnread(ctx context.Context, sessionID, excludeParticipantID string) ([]models.Notification, error)
	// MarkRead flags the given alerts of the session as read and reports
	// how many rows changed. Ids from other sessions are ignored.
	MarkRead(ctx context.Context, sessionID string, ids []int64) (int64, error)
}
