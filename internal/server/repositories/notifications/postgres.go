package notifications

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/huntplanur/internal/dbx"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	query :=
		`INSERT INTO notifications (session_id, sender_participant_id, message, sender_latitude, sender_longitude, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		n.SessionID, n.SenderParticipantID, n.Message, dbx.NullFloat(n.Latitude), dbx.NullFloat(n.Longitude), n.CreatedAt,
	).Scan(&n.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListUnread(ctx context.Context, sessionID, excludeParticipantID string) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT n.id, n.sender_participant_id, COALESCE(u.username, p.guest_name), n.message,
		        n.sender_latitude, n.sender_longitude, n.created_at
		 FROM notifications n
		 JOIN participants p ON p.id = n.sender_participant_id
		 LEFT JOIN users u ON u.id = p.user_id
		 WHERE n.session_id = $1 AND n.sender_participant_id <> $2 AND NOT n.is_read
		 ORDER BY n.created_at DESC, n.id DESC`, sessionID, excludeParticipantID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		n := models.Notification{SessionID: sessionID}
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&n.ID, &n.SenderParticipantID, &n.SenderName, &n.Message, &lat, &lon, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		n.Latitude = dbx.FloatPtr(lat)
		n.Longitude = dbx.FloatPtr(lon)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// MarkRead flags the unread ids of the session in one statement; ids of
// other sessions and unknown ids are skipped.
func (r *PostgresRepository) MarkRead(ctx context.Context, sessionID string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = ANY($1) AND session_id = $2 AND NOT is_read`, ids, sessionID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
