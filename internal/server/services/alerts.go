package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/dmitrijs2005/huntplanur/internal/dbx"
	"github.com/dmitrijs2005/huntplanur/internal/logging"
	"github.com/dmitrijs2005/huntplanur/internal/server/events"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/repomanager"
)

// AlertService broadcasts pings between participants of a session.
type AlertService struct {
	deps
}

func NewAlertService(tx dbx.TxRunner, rm repomanager.RepositoryManager, pub events.Publisher, log logging.Logger) *AlertService {
	return &AlertService{deps: newDeps(tx, rm, pub, log)}
}

// Send stores an alert from the roster row, stamped with the sender's
// newest live position if there is one. An empty message gets a default.
func (s *AlertService) Send(ctx context.Context, senderParticipantID, message string) (*models.Notification, error) {
	message = strings.TrimSpace(message)
	if len([]rune(message)) > MaxAlertLen {
		return nil, fmt.Errorf("%w: message must be at most %d characters", common.ErrorValidation, MaxAlertLen)
	}

	var n *models.Notification
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		p, sess, err := loadActive(ctx, s.rm, tx, senderParticipantID)
		if err != nil {
			return err
		}

		pos, err := latest(s.rm.Positions(tx).LatestSession(ctx, p.ID))
		if err != nil {
			return err
		}

		if message == "" {
			message = p.DisplayName + " sent an alert"
		}
		n = &models.Notification{
			SessionID:           sess.ID,
			SenderParticipantID: p.ID,
			SenderName:          p.DisplayName,
			Message:             message,
			CreatedAt:           s.now(),
		}
		if pos != nil {
			n.Latitude, n.Longitude = &pos.Latitude, &pos.Longitude
		}
		_, err = s.rm.Notifications(tx).Create(ctx, n)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:          events.AlertSent,
		SessionID:     n.SessionID,
		ParticipantID: n.SenderParticipantID,
		Data:          map[string]any{"id": n.ID, "message": n.Message},
	})
	return n, nil
}

// PollUnread lists unread alerts of the caller's session sent by others,
// newest first.
func (s *AlertService) PollUnread(ctx context.Context, participantID string) ([]models.Notification, error) {
	conn := s.tx.Conn()
	p, err := s.rm.Participants(conn).GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	out, err := s.rm.Notifications(conn).ListUnread(ctx, p.SessionID, p.ID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Notification{}
	}
	return out, nil
}

// MarkRead flags alerts of the caller's session as read. The read flag is
// shared by every participant of the session. Ids that are unknown or
// belong to another session are skipped.
func (s *AlertService) MarkRead(ctx context.Context, participantID string, ids []int64) (int64, error) {
	var n int64
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		p, err := s.rm.Participants(tx).GetByID(ctx, participantID)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		n, err = s.rm.Notifications(tx).MarkRead(ctx, p.SessionID, ids)
		return err
	})
	return n, err
}
