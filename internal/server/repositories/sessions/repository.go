// Package sessions stores hunt sessions and answers the per-user listings.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Session) (*models.Session, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	GetByCode(ctx context.Context, code string) (*models.Session, error)
	GetByID(ctx context.Context, id string) (*models.Session, error)

	// LockByCode reads the row FOR UPDATE; join and end both go through it.
	LockByCode(ctx context.Context, code string) (*models.Session, error)
	// ShareLockByID reads the row FOR SHARE so an end cannot commit while
	// a sample or alert is written against it.
	ShareLockByID(ctx context.Context, id string) (*models.Session, error)

	End(ctx context.Context, id string, at time.Time) error
	Rename(ctx context.Context, id, name string) error

	// Summary describes one session as seen by callerID (may be empty).
	Summary(ctx context.Context, code, callerID string) (*models.SessionSummary, error)
	ListOwnedActive(ctx context.Context, userID string) ([]models.SessionSummary, error)
	ListJoined(ctx context.Context, userID string) ([]models.SessionSummary, error)
	ListHistory(ctx context.Context, userID string) ([]models.SessionSummary, error)
}
