package participants

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

const selectParticipant = `SELECT p.id, p.session_id, p.user_id, p.guest_name, p.is_active, p.joined_at, p.left_at,
		        p.deactivation_reason, COALESCE(u.username, p.guest_name), s.code
		 FROM participants p
		 JOIN sessions s ON s.id = p.session_id
		 LEFT JOIN users u ON u.id = p.user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Participant) (*models.Participant, error) {
	query :=
		`INSERT INTO participants (id, session_id, user_id, guest_name, is_active, joined_at)
		 VALUES ($1, $2, $3, $4, TRUE, $5)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.SessionID, dbx.NullString(p.UserID), dbx.NullString(p.GuestName), p.JoinedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	p.IsActive = true
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Participant, error) {
	return r.getOne(ctx, selectParticipant+` WHERE p.id = $1`, id)
}

func (r *PostgresRepository) FindForIdentity(ctx context.Context, sessionID string, identity models.Identity) (*models.Participant, error) {
	if identity.IsGuest() {
		return r.getOne(ctx, selectParticipant+`
		 WHERE p.session_id = $1 AND p.user_id IS NULL AND p.guest_name = $2
		 ORDER BY p.is_active DESC, p.joined_at DESC
		 LIMIT 1`, sessionID, identity.GuestName)
	}
	return r.getOne(ctx, selectParticipant+`
		 WHERE p.session_id = $1 AND p.user_id = $2
		 ORDER BY p.is_active DESC, p.joined_at DESC
		 LIMIT 1`, sessionID, identity.UserID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Participant, error) {
	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	var (
		p                         models.Participant
		userID, guestName, reason sql.NullString
		leftAt                    sql.NullTime
	)
	err := row.Scan(&p.ID, &p.SessionID, &userID, &guestName, &p.IsActive, &p.JoinedAt, &leftAt,
		&reason, &p.DisplayName, &p.SessionCode)
	if err != nil {
		return nil, err
	}
	p.UserID = userID.String
	p.GuestName = guestName.String
	p.Reason = reason.String
	p.LeftAt = dbx.TimePtr(leftAt)
	return &p, nil
}

func (r *PostgresRepository) Reactivate(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE participants
		 SET is_active = TRUE, joined_at = $2, left_at = NULL, deactivation_reason = NULL
		 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id, reason string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE participants
		 SET is_active = FALSE, left_at = $3, deactivation_reason = $2
		 WHERE id = $1 AND is_active`, id, reason, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeactivateAll(ctx context.Context, sessionID, reason string, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE participants
		 SET is_active = FALSE, left_at = $3, deactivation_reason = $2
		 WHERE session_id = $1 AND is_active`, sessionID, reason, at)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context, sessionID string) ([]models.Participant, error) {
	return r.list(ctx, selectParticipant+`
		 WHERE p.session_id = $1 AND p.is_active
		 ORDER BY p.joined_at, p.id`, sessionID)
}

func (r *PostgresRepository) ListDeactivated(ctx context.Context, sessionID, reason string) ([]models.Participant, error) {
	return r.list(ctx, selectParticipant+`
		 WHERE p.session_id = $1 AND NOT p.is_active AND p.deactivation_reason = $2
		 ORDER BY p.joined_at, p.id`, sessionID, reason)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
