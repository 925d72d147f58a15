package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/dmitrijs2005/huntplanur/internal/dbx"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const selectUser = `SELECT id, username, email, password_hash, google_id, avatar_key, auth_provider, created_at, last_login_at
		 FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, username, email, password_hash, google_id, auth_provider)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.UserName, user.Email,
		dbx.NullString(user.PasswordHash), dbx.NullString(user.GoogleID), user.Provider,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE username = $1 OR lower(email) = lower($1) LIMIT 1`, login)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE lower(email) = lower($1)`, email)
}

func (r *PostgresRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE google_id = $1`, googleID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		u                           models.User
		password, google, avatarKey sql.NullString
		lastLogin                   sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.UserName, &u.Email, &password, &google, &avatarKey, &u.Provider, &u.CreatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	u.PasswordHash = password.String
	u.GoogleID = google.String
	u.AvatarKey = avatarKey.String
	u.LastLoginAt = dbx.TimePtr(lastLogin)
	return &u, nil
}

func (r *PostgresRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return taken, nil
}

func (r *PostgresRepository) UpdateUsername(ctx context.Context, id, username string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET username = $2 WHERE id = $1`, id, username)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateAvatar(ctx context.Context, id, key string) error {
	return r.exec(ctx, `UPDATE users SET avatar_key = $2 WHERE id = $1`, id, dbx.NullString(key))
}

func (r *PostgresRepository) LinkGoogle(ctx context.Context, id, googleID string) error {
	return r.exec(ctx, `UPDATE users SET google_id = $2 WHERE id = $1`, id, googleID)
}

func (r *PostgresRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
