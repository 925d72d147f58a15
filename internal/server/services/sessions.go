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
	"github.com/dmitrijs2005/huntplanur/internal/server/geocode"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/sessions"
	"github.com/google/uuid"
)

// SessionService is the session registry: creation, code allocation,
// renaming, ending and the per-user listings.
type SessionService struct {
	deps
	geo     geocode.Geocoder
	newCode func() (string, error)
}

func NewSessionService(tx dbx.TxRunner, rm repomanager.RepositoryManager, geo geocode.Geocoder,
	pub events.Publisher, log logging.Logger) *SessionService {
	if geo == nil {
		geo = geocode.Nop{}
	}
	return &SessionService{
		deps: newDeps(tx, rm, pub, log),
		geo:  geo,
		newCode: func() (string, error) {
			return common.RandomCode(common.SessionCodeAlphabet, common.SessionCodeLength)
		},
	}
}

// Create opens a session owned by ownerID and enrolls the owner as its
// first participant. Coordinates are optional; when both are present and
// valid they are stored and used to look up a place name.
func (s *SessionService) Create(ctx context.Context, ownerID, name string, lat, lon *float64) (*models.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrorEmptyName
	}

	sess := &models.Session{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    name,
	}
	if lat != nil && lon != nil && ValidCoordinates(*lat, *lon) {
		sess.Latitude, sess.Longitude = lat, lon
		if place, ok := s.geo.Reverse(ctx, *lat, *lon); ok {
			sess.PlaceName = place
		}
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Sessions(tx)

		code, err := s.allocateCode(ctx, repo)
		if err != nil {
			return err
		}
		sess.Code = code
		if _, err := repo.Create(ctx, sess); err != nil {
			return err
		}

		_, err = s.rm.Participants(tx).Create(ctx, &models.Participant{
			ID:        uuid.NewString(),
			SessionID: sess.ID,
			Identity:  models.Identity{UserID: ownerID},
			JoinedAt:  s.now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "session created", "code", sess.Code, "owner", ownerID)
	s.publish(ctx, events.Event{
		Type:        events.SessionCreated,
		SessionID:   sess.ID,
		SessionCode: sess.Code,
		UserID:      ownerID,
		Data:        map[string]any{"name": sess.Name, "place": sess.PlaceName},
	})
	return sess, nil
}

func (s *SessionService) allocateCode(ctx context.Context, repo sessions.Repository) (string, error) {
	for range codeAttempts {
		code, err := s.newCode()
		if err != nil {
			return "", err
		}
		taken, err := repo.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", common.ErrorCodeExhausted
}

// End closes the session and deactivates every active roster row with
// reason session_ended. Ending an ended session succeeds without changes.
func (s *SessionService) End(ctx context.Context, code, callerID string) error {
	var (
		sess  *models.Session
		ended bool
		count int64
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		sess, err = s.rm.Sessions(tx).LockByCode(ctx, normalizeCode(code))
		if err != nil {
			return err
		}
		if sess.OwnerID != callerID {
			return fmt.Errorf("%w: only the owner can end a session", common.ErrorUnauthorized)
		}
		if !sess.IsActive {
			return nil
		}

		now := s.now()
		if err := s.rm.Sessions(tx).End(ctx, sess.ID, now); err != nil {
			return err
		}
		count, err = s.rm.Participants(tx).DeactivateAll(ctx, sess.ID, models.ReasonSessionEnded, now)
		ended = err == nil
		return err
	})
	if err != nil {
		return err
	}

	if ended {
		s.log.Info(ctx, "session ended", "code", code, "deactivated", count)
		s.publish(ctx, events.Event{
			Type:        events.SessionEnded,
			SessionID:   sess.ID,
			SessionCode: sess.Code,
			UserID:      callerID,
			Data:        map[string]any{"deactivated": count},
		})
	}
	return nil
}

// Rename changes the session's display name. Owner only.
func (s *SessionService) Rename(ctx context.Context, code, callerID, name string) (*models.Session, error) {
	var sess *models.Session
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Sessions(tx)
		var err error
		sess, err = repo.LockByCode(ctx, normalizeCode(code))
		if err != nil {
			return err
		}
		if sess.OwnerID != callerID {
			return fmt.Errorf("%w: only the owner can rename a session", common.ErrorUnauthorized)
		}
		name = strings.TrimSpace(name)
		if len([]rune(name)) < MinNameLen {
			return fmt.Errorf("%w: session name must be at least %d characters", common.ErrorTooShort, MinNameLen)
		}
		if err := repo.Rename(ctx, sess.ID, name); err != nil {
			return err
		}
		sess.Name = name
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.SessionRenamed,
		SessionID:   sess.ID,
		SessionCode: sess.Code,
		UserID:      callerID,
		Data:        map[string]any{"name": name},
	})
	return sess, nil
}

// Owned lists the caller's active sessions, newest first.
func (s *SessionService) Owned(ctx context.Context, userID string) ([]models.SessionSummary, error) {
	return s.rm.Sessions(s.tx.Conn()).ListOwnedActive(ctx, userID)
}

// Joined lists sessions the caller has a roster row in but does not own.
func (s *SessionService) Joined(ctx context.Context, userID string) ([]models.SessionSummary, error) {
	return s.rm.Sessions(s.tx.Conn()).ListJoined(ctx, userID)
}

// History lists every session the caller owns or joined, including ended
// ones, newest first.
func (s *SessionService) History(ctx context.Context, userID string) ([]models.SessionSummary, error) {
	return s.rm.Sessions(s.tx.Conn()).ListHistory(ctx, userID)
}

// Info describes one session. callerID may be empty.
func (s *SessionService) Info(ctx context.Context, code, callerID string) (*models.SessionSummary, error) {
	sum, err := s.rm.Sessions(s.tx.Conn()).Summary(ctx, normalizeCode(code), callerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: session %s", common.ErrorNotFound, code)
		}
		return nil, err
	}
	return sum, nil
}
