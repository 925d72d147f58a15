// Package participants stores roster rows. Rows are never deleted: they
// are deactivated with a reason and reactivated on rejoin.
package participants

import (
	"context"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Participant) (*models.Participant, error)
	GetByID(ctx context.Context, id string) (*models.Participant, error)
	// FindForIdentity returns the identity's active row in the session,
	// otherwise its most recently joined one.
	FindForIdentity(ctx context.Context, sessionID string, identity models.Identity) (*models.Participant, error)
	Reactivate(ctx context.Context, id string, at time.Time) error
	Deactivate(ctx context.Context, id, reason string, at time.Time) error
	DeactivateAll(ctx context.Context, sessionID, reason string, at time.Time) (int64, error)
	ListActive(ctx context.Context, sessionID string) ([]models.Participant, error)
	// ListDeactivated lists rows closed with reason, oldest join first.
	ListDeactivated(ctx context.Context, sessionID, reason string) ([]models.Participant, error)
}
