package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/dmitrijs2005/huntplanur/internal/dbx"
	"github.com/dmitrijs2005/huntplanur/internal/logging"
	"github.com/dmitrijs2005/huntplanur/internal/server/events"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// RosterService manages who is in a session.
type RosterService struct {
	deps
}

func NewRosterService(tx dbx.TxRunner, rm repomanager.RepositoryManager, pub events.Publisher, log logging.Logger) *RosterService {
	return &RosterService{deps: newDeps(tx, rm, pub, log)}
}

// Join attaches the identity to the session with the given code. An
// authenticated identity joins as itself and its guest name is ignored.
// A previous row of the same identity is reused: an active one is returned
// unchanged, an inactive one is reactivated.
func (s *RosterService) Join(ctx context.Context, code string, id models.Identity) (*models.Participant, models.JoinResult, error) {
	if id.UserID != "" {
		id.GuestName = ""
	} else {
		id.GuestName = strings.TrimSpace(id.GuestName)
		if id.GuestName == "" {
			return nil, "", common.ErrorGuestNameRequired
		}
		if len([]rune(id.GuestName)) > MaxGuestNameLen {
			return nil, "", fmt.Errorf("%w: guest name must be at most %d characters", common.ErrorValidation, MaxGuestNameLen)
		}
	}

	var (
		p      *models.Participant
		result models.JoinResult
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		sess, err := s.rm.Sessions(tx).LockByCode(ctx, normalizeCode(code))
		if err != nil {
			return err
		}
		if !sess.IsActive {
			return fmt.Errorf("%w: session has ended", common.ErrorInactive)
		}

		repo := s.rm.Participants(tx)
		existing, err := repo.FindForIdentity(ctx, sess.ID, id)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			created, err := repo.Create(ctx, &models.Participant{
				ID:        uuid.NewString(),
				SessionID: sess.ID,
				Identity:  id,
				JoinedAt:  s.now(),
			})
			if err != nil {
				return err
			}
			p, result = created, models.JoinResultJoined
		case err != nil:
			return err
		case existing.IsActive:
			p, result = existing, models.JoinResultAlreadyJoined
			return nil
		default:
			if err := repo.Reactivate(ctx, existing.ID, s.now()); err != nil {
				return err
			}
			p, result = existing, models.JoinResultRejoined
		}

		// Re-read for the derived display fields.
		p, err = repo.GetByID(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, "", err
	}

	if result != models.JoinResultAlreadyJoined {
		s.log.Info(ctx, "participant joined", "session", p.SessionCode, "participant", p.ID, "result", result)
		s.publish(ctx, events.Event{
			Type:          events.ParticipantJoined,
			SessionID:     p.SessionID,
			SessionCode:   p.SessionCode,
			ParticipantID: p.ID,
			UserID:        p.UserID,
			Data:          map[string]any{"result": string(result), "name": p.DisplayName},
		})
	}
	return p, result, nil
}

// Leave deactivates the row with reason left and drops its live feed.
// An inactive row is left untouched, so leaving twice is harmless and a
// frozen roster keeps its last positions.
func (s *RosterService) Leave(ctx context.Context, participantID string) error {
	var (
		p   *models.Participant
		was bool
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Participants(tx)
		var err error
		p, err = repo.GetByID(ctx, participantID)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return nil
		}
		was = true
		if err := s.rm.Positions(tx).PurgeSession(ctx, p.ID); err != nil {
			return err
		}
		return repo.Deactivate(ctx, p.ID, models.ReasonLeft, s.now())
	})
	if err != nil {
		return err
	}

	if was {
		s.publish(ctx, events.Event{
			Type:          events.ParticipantLeft,
			SessionID:     p.SessionID,
			SessionCode:   p.SessionCode,
			ParticipantID: p.ID,
			UserID:        p.UserID,
		})
	}
	return nil
}

// Remove lets the session owner, acting through their own active roster
// row, take another participant out of the session.
func (s *RosterService) Remove(ctx context.Context, callerParticipantID, targetParticipantID string) error {
	var target *models.Participant
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Participants(tx)

		caller, err := repo.GetByID(ctx, callerParticipantID)
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: not a participant", common.ErrorForbidden)
		}
		if err != nil {
			return err
		}
		if !caller.IsActive {
			return fmt.Errorf("%w: not an active participant", common.ErrorForbidden)
		}

		sess, err := s.rm.Sessions(tx).ShareLockByID(ctx, caller.SessionID)
		if err != nil {
			return err
		}
		if caller.UserID == "" || caller.UserID != sess.OwnerID {
			return fmt.Errorf("%w: only the session owner can remove participants", common.ErrorForbidden)
		}

		if _, err := uuid.Parse(targetParticipantID); err != nil {
			return fmt.Errorf("%w: participant is not in this session", common.ErrorNotFound)
		}
		target, err = repo.GetByID(ctx, targetParticipantID)
		if err != nil {
			return err
		}
		if target.SessionID != sess.ID {
			return fmt.Errorf("%w: participant is not in this session", common.ErrorNotFound)
		}
		if target.UserID == sess.OwnerID {
			return fmt.Errorf("%w: the owner cannot be removed", common.ErrorInvalidTarget)
		}
		if !sess.IsActive {
			return fmt.Errorf("%w: session has ended", common.ErrorInactive)
		}

		if err := s.rm.Positions(tx).PurgeSession(ctx, target.ID); err != nil {
			return err
		}
		return repo.Deactivate(ctx, target.ID, models.ReasonRemoved, s.now())
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "participant removed", "session", target.SessionCode, "participant", target.ID)
	s.publish(ctx, events.Event{
		Type:          events.ParticipantRemoved,
		SessionID:     target.SessionID,
		SessionCode:   target.SessionCode,
		ParticipantID: target.ID,
		UserID:        target.UserID,
	})
	return nil
}

// Participants is the roster view every client polls. An active session
// lists its active rows; an ended one lists the rows closed by the end.
func (s *RosterService) Participants(ctx context.Context, code string) (*models.Session, []models.RosterEntry, error) {
	conn := s.tx.Conn()
	sess, err := s.rm.Sessions(conn).GetByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, nil, err
	}

	var rows []models.Participant
	if sess.IsActive {
		rows, err = s.rm.Participants(conn).ListActive(ctx, sess.ID)
	} else {
		rows, err = s.rm.Participants(conn).ListDeactivated(ctx, sess.ID, models.ReasonSessionEnded)
	}
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	posRepo := s.rm.Positions(conn)
	out := make([]models.RosterEntry, 0, len(rows))
	for _, p := range rows {
		e, err := locate(ctx, posRepo, p, now)
		if err != nil {
			return nil, nil, err
		}
		e.IsOwner = p.UserID != "" && p.UserID == sess.OwnerID
		out = append(out, e)
	}
	return sess, out, nil
}

// Me returns the caller's own roster row.
func (s *RosterService) Me(ctx context.Context, participantID string) (*models.Participant, error) {
	return s.rm.Participants(s.tx.Conn()).GetByID(ctx, participantID)
}
