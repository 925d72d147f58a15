package positions

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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) AddSessionSample(ctx context.Context, p *models.Position) error {
	query :=
		`INSERT INTO session_positions (participant_id, latitude, longitude, accuracy, recorded_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		p.ParticipantID, p.Latitude, p.Longitude, dbx.NullFloat(p.Accuracy), p.RecordedAt).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AddUserSample(ctx context.Context, p *models.Position) error {
	query :=
		`INSERT INTO user_positions (user_id, latitude, longitude, accuracy, recorded_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		p.UserID, p.Latitude, p.Longitude, dbx.NullFloat(p.Accuracy), p.RecordedAt).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) PruneSession(ctx context.Context, participantID string, keep int) error {
	return r.exec(ctx,
		`DELETE FROM session_positions
		 WHERE participant_id = $1
		   AND id NOT IN (
		       SELECT id FROM session_positions
		       WHERE participant_id = $1
		       ORDER BY recorded_at DESC, id DESC
		       LIMIT $2)`, participantID, keep)
}

func (r *PostgresRepository) PruneUser(ctx context.Context, userID string, keep int) error {
	return r.exec(ctx,
		`DELETE FROM user_positions
		 WHERE user_id = $1
		   AND id NOT IN (
		       SELECT id FROM user_positions
		       WHERE user_id = $1
		       ORDER BY recorded_at DESC, id DESC
		       LIMIT $2)`, userID, keep)
}

func (r *PostgresRepository) LatestSession(ctx context.Context, participantID string) (*models.Position, error) {
	p := &models.Position{ParticipantID: participantID}
	err := r.latest(ctx, p,
		`SELECT id, latitude, longitude, accuracy, recorded_at
		 FROM session_positions
		 WHERE participant_id = $1
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT 1`, participantID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) LatestUser(ctx context.Context, userID string) (*models.Position, error) {
	p := &models.Position{UserID: userID}
	err := r.latest(ctx, p,
		`SELECT id, latitude, longitude, accuracy, recorded_at
		 FROM user_positions
		 WHERE user_id = $1
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT 1`, userID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) latest(ctx context.Context, p *models.Position, query, key string) error {
	var acc sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query, key).Scan(&p.ID, &p.Latitude, &p.Longitude, &acc, &p.RecordedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	p.Accuracy = dbx.FloatPtr(acc)
	return nil
}

func (r *PostgresRepository) PurgeSession(ctx context.Context, participantID string) error {
	return r.exec(ctx, `DELETE FROM session_positions WHERE participant_id = $1`, participantID)
}

func (r *PostgresRepository) UserTrail(ctx context.Context, userID string, since time.Time) ([]models.Position, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, latitude, longitude, accuracy, recorded_at
		 FROM user_positions
		 WHERE user_id = $1 AND recorded_at >= $2
		 ORDER BY recorded_at, id`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Position
	for rows.Next() {
		p := models.Position{UserID: userID}
		var acc sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.Latitude, &p.Longitude, &acc, &p.RecordedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		p.Accuracy = dbx.FloatPtr(acc)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
