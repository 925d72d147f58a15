package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/dmitrijs2005/huntplanur/internal/dbx"
	"github.com/dmitrijs2005/huntplanur/internal/logging"
	"github.com/dmitrijs2005/huntplanur/internal/server/events"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/positions"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/repomanager"
)

// ValidCoordinates reports whether lat/lon are finite and in range.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// IsOnline applies the staleness rule to the newest session sample.
func IsOnline(latest *models.Position, now time.Time) bool {
	return latest != nil && now.Sub(latest.RecordedAt) <= OnlineWindow
}

// PresenceService records positions and derives what others see.
type PresenceService struct {
	deps
}

func NewPresenceService(tx dbx.TxRunner, rm repomanager.RepositoryManager, pub events.Publisher, log logging.Logger) *PresenceService {
	return &PresenceService{deps: newDeps(tx, rm, pub, log)}
}

// Record stores a fix for the roster row and, for registered users, in
// their durable trail. Both stores are pruned in the same transaction.
// An accuracy that is negative or not finite is dropped.
func (s *PresenceService) Record(ctx context.Context, participantID string, lat, lon float64, accuracy *float64) (*models.Position, error) {
	if !ValidCoordinates(lat, lon) {
		return nil, fmt.Errorf("%w: latitude must be within [-90, 90] and longitude within [-180, 180]", common.ErrorInvalidCoordinates)
	}
	if accuracy != nil && (math.IsNaN(*accuracy) || math.IsInf(*accuracy, 0) || *accuracy < 0) {
		accuracy = nil
	}

	var pos *models.Position
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		p, _, err := loadActive(ctx, s.rm, tx, participantID)
		if err != nil {
			return err
		}

		repo := s.rm.Positions(tx)
		now := s.now()
		pos = &models.Position{
			ParticipantID: p.ID,
			Latitude:      lat,
			Longitude:     lon,
			Accuracy:      accuracy,
			RecordedAt:    now,
		}
		if err := repo.AddSessionSample(ctx, pos); err != nil {
			return err
		}
		if err := repo.PruneSession(ctx, p.ID, SessionSampleCap); err != nil {
			return err
		}

		if p.IsGuest() {
			return nil
		}
		durable := *pos
		durable.ParticipantID = ""
		durable.UserID = p.UserID
		if err := repo.AddUserSample(ctx, &durable); err != nil {
			return err
		}
		return repo.PruneUser(ctx, p.UserID, UserSampleCap)
	})
	if err != nil {
		return nil, err
	}
	return pos, nil
}

// StopSharing drops the row's live feed. The durable trail stays. Rows of
// an ended session are frozen and refuse it.
func (s *PresenceService) StopSharing(ctx context.Context, participantID string) error {
	return s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, _, err := loadActive(ctx, s.rm, tx, participantID); err != nil {
			return err
		}
		return s.rm.Positions(tx).PurgeSession(ctx, participantID)
	})
}

// History returns the durable trail of the user bound to the roster row
// over the trailing window, oldest first. Guests have no trail.
func (s *PresenceService) History(ctx context.Context, participantID string, hours int) ([]models.Position, error) {
	if err := validWindow(hours); err != nil {
		return nil, err
	}
	p, err := s.rm.Participants(s.tx.Conn()).GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if p.IsGuest() {
		return []models.Position{}, nil
	}
	return s.trail(ctx, p.UserID, hours)
}

// UserTrail is History for an authenticated user directly.
func (s *PresenceService) UserTrail(ctx context.Context, userID string, hours int) ([]models.Position, error) {
	if err := validWindow(hours); err != nil {
		return nil, err
	}
	return s.trail(ctx, userID, hours)
}

func (s *PresenceService) trail(ctx context.Context, userID string, hours int) ([]models.Position, error) {
	since := s.now().Add(-time.Duration(hours) * time.Hour)
	out, err := s.rm.Positions(s.tx.Conn()).UserTrail(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Position{}
	}
	return out, nil
}

func validWindow(hours int) error {
	if hours < 1 || hours > MaxHistoryHours {
		return fmt.Errorf("%w: hours must be between 1 and %d", common.ErrorValidation, MaxHistoryHours)
	}
	return nil
}

// locate applies the display rule to one roster row: the newest live
// sample while online, otherwise a registered user's newest durable
// sample marked as last known, otherwise nothing.
func locate(ctx context.Context, repo positions.Repository, p models.Participant, now time.Time) (models.RosterEntry, error) {
	e := models.RosterEntry{
		ParticipantID: p.ID,
		DisplayName:   p.DisplayName,
		IsGuest:       p.IsGuest(),
		JoinedAt:      p.JoinedAt,
	}

	live, err := latest(repo.LatestSession(ctx, p.ID))
	if err != nil {
		return e, err
	}
	if IsOnline(live, now) {
		e.IsOnline = true
		e.Position = live
		return e, nil
	}
	if p.IsGuest() {
		return e, nil
	}

	durable, err := latest(repo.LatestUser(ctx, p.UserID))
	if err != nil {
		return e, err
	}
	if durable != nil {
		e.Position = durable
		e.LastKnown = true
	}
	return e, nil
}

// latest turns a not-found lookup into a nil sample.
func latest(p *models.Position, err error) (*models.Position, error) {
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	return p, err
}

// loadActive loads a roster row that may still produce data: it and its
// session must be active. The session row is share-locked so a concurrent
// end waits for the caller's transaction.
func loadActive(ctx context.Context, rm repomanager.RepositoryManager, tx dbx.DBTX, id string) (*models.Participant, *models.Session, error) {
	p, err := rm.Participants(tx).GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !p.IsActive {
		return nil, nil, fmt.Errorf("%w: participant is no longer in the session", common.ErrorInactive)
	}
	sess, err := rm.Sessions(tx).ShareLockByID(ctx, p.SessionID)
	if err != nil {
		return nil, nil, err
	}
	if !sess.IsActive {
		return nil, nil, fmt.Errorf("%w: session has ended", common.ErrorInactive)
	}
	return p, sess, nil
}
