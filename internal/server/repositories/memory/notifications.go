package memory

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/huntplanur/internal/server/models"
)

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	r.s.write(func(st *state) {
		st.nextAlertID++
		n.ID = st.nextAlertID
		st.notifications = append(st.notifications, *n)
	})
	return n, nil
}

func (r *notificationRepo) ListUnread(_ context.Context, sessionID, excludeParticipantID string) ([]models.Notification, error) {
	var out []models.Notification
	r.s.read(func(st *state) {
		for _, n := range st.notifications {
			if n.SessionID != sessionID || n.SenderParticipantID == excludeParticipantID || n.IsRead {
				continue
			}
			if sender, ok := st.participants[n.SenderParticipantID]; ok {
				n.SenderName = decorate(st, sender).DisplayName
			}
			out = append(out, n)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *notificationRepo) MarkRead(_ context.Context, sessionID string, ids []int64) (int64, error) {
	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var n int64
	r.s.write(func(st *state) {
		for i := range st.notifications {
			note := &st.notifications[i]
			if _, ok := wanted[note.ID]; ok && note.SessionID == sessionID && !note.IsRead {
				note.IsRead = true
				n++
			}
		}
	})
	return n, nil
}
