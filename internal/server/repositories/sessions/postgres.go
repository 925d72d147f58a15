package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/dmitrijs2005/huntplanur/internal/dbx"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
)

const selectSession = `SELECT id, code, owner_id, name, place_name, latitude, longitude, is_active, created_at, ended_at
		 FROM sessions`

// distinctIdentity counts a registered user once and a guest name once.
const distinctIdentity = `COUNT(DISTINCT COALESCE(p.user_id::text, 'guest:' || p.guest_name))`

const selectSummary = `SELECT s.id, s.code, s.owner_id, s.name, s.place_name, s.latitude, s.longitude, s.is_active, s.created_at, s.ended_at,
		        u.username,
		        (SELECT ` + distinctIdentity + ` FROM participants p WHERE p.session_id = s.id),
		        (SELECT ` + distinctIdentity + ` FROM participants p WHERE p.session_id = s.id AND p.is_active),
		        EXISTS (SELECT 1 FROM participants p WHERE p.session_id = s.id AND p.user_id = $1 AND p.is_active)
		 FROM sessions s
		 JOIN users u ON u.id = s.owner_id`

type rowScanner interface {
	Scan(dest ...any) error
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Session) (*models.Session, error) {
	query :=
		`INSERT INTO sessions (id, code, owner_id, name, place_name, latitude, longitude)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING is_active, created_at`

	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.Code, s.OwnerID, s.Name, dbx.NullString(s.PlaceName), dbx.NullFloat(s.Latitude), dbx.NullFloat(s.Longitude),
	).Scan(&s.IsActive, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*models.Session, error) {
	return r.getOne(ctx, selectSession+` WHERE code = $1`, code)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	return r.getOne(ctx, selectSession+` WHERE id = $1`, id)
}

func (r *PostgresRepository) LockByCode(ctx context.Context, code string) (*models.Session, error) {
	return r.getOne(ctx, selectSession+` WHERE code = $1 FOR UPDATE`, code)
}

func (r *PostgresRepository) ShareLockByID(ctx context.Context, id string) (*models.Session, error) {
	return r.getOne(ctx, selectSession+` WHERE id = $1 FOR SHARE`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func scanSession(row rowScanner, extra ...any) (*models.Session, error) {
	var (
		s        models.Session
		place    sql.NullString
		lat, lon sql.NullFloat64
		ended    sql.NullTime
	)
	dest := append([]any{&s.ID, &s.Code, &s.OwnerID, &s.Name, &place, &lat, &lon, &s.IsActive, &s.CreatedAt, &ended}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	s.PlaceName = place.String
	s.Latitude = dbx.FloatPtr(lat)
	s.Longitude = dbx.FloatPtr(lon)
	s.EndedAt = dbx.TimePtr(ended)
	return &s, nil
}

func (r *PostgresRepository) End(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET is_active = FALSE, ended_at = $2 WHERE id = $1 AND is_active`, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Rename(ctx context.Context, id, name string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE sessions SET name = $2 WHERE id = $1`, id, name); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Summary(ctx context.Context, code, callerID string) (*models.SessionSummary, error) {
	row := r.db.QueryRowContext(ctx, selectSummary+` WHERE s.code = $2`, dbx.NullString(callerID), code)
	sum, err := scanSummary(row, callerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sum, nil
}

func (r *PostgresRepository) ListOwnedActive(ctx context.Context, userID string) ([]models.SessionSummary, error) {
	return r.list(ctx, selectSummary+`
		 WHERE s.owner_id = $1 AND s.is_active
		 ORDER BY s.created_at DESC`, userID)
}

func (r *PostgresRepository) ListJoined(ctx context.Context, userID string) ([]models.SessionSummary, error) {
	return r.list(ctx, selectSummary+`
		 WHERE s.owner_id <> $1
		   AND EXISTS (SELECT 1 FROM participants p WHERE p.session_id = s.id AND p.user_id = $1)
		 ORDER BY s.created_at DESC`, userID)
}

func (r *PostgresRepository) ListHistory(ctx context.Context, userID string) ([]models.SessionSummary, error) {
	return r.list(ctx, selectSummary+`
		 WHERE s.owner_id = $1
		    OR EXISTS (SELECT 1 FROM participants p WHERE p.session_id = s.id AND p.user_id = $1)
		 ORDER BY s.created_at DESC`, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query, userID string) ([]models.SessionSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.SessionSummary
	for rows.Next() {
		sum, err := scanSummary(rows, userID)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func scanSummary(row rowScanner, callerID string) (*models.SessionSummary, error) {
	var sum models.SessionSummary
	s, err := scanSession(row, &sum.OwnerName, &sum.TotalParticipants, &sum.ActiveParticipants, &sum.CallerActive)
	if err != nil {
		return nil, err
	}
	sum.Session = *s
	sum.IsOwner = callerID != "" && s.OwnerID == callerID
	return &sum, nil
}
