// Package users stores accounts: local credentials, federated links and
// profile fields.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByLogin matches either the username or the email address.
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	UpdateUsername(ctx context.Context, id, username string) error
	UpdateAvatar(ctx context.Context, id, key string) error
	LinkGoogle(ctx context.Context, id, googleID string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
