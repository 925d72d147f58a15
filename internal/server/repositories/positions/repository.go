// Package positions stores reported fixes in two places: a disposable
// per-roster-row feed and a durable per-user trail.
package positions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/server/models"
)

type Repository interface {
	AddSessionSample(ctx context.Context, p *models.Position) error
	AddUserSample(ctx context.Context, p *models.Position) error

	// PruneSession and PruneUser keep the newest keep samples by
	// (recorded_at, id) and delete the rest.
	PruneSession(ctx context.Context, participantID string, keep int) error
	PruneUser(ctx context.Context, userID string, keep int) error

	LatestSession(ctx context.Context, participantID string) (*models.Position, error)
	LatestUser(ctx context.Context, userID string) (*models.Position, error)

	PurgeSession(ctx context.Context, participantID string) error

	// UserTrail lists durable samples recorded at or after since, oldest first.
	UserTrail(ctx context.Context, userID string, since time.Time) ([]models.Position, error)
}
