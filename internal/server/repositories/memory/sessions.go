package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
)

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Create(_ context.Context, sess *models.Session) (*models.Session, error) {
	r.s.write(func(st *state) {
		sess.IsActive = true
		if sess.CreatedAt.IsZero() {
			sess.CreatedAt = time.Now()
		}
		st.sessions[sess.ID] = *sess
	})
	return sess, nil
}

func (r *sessionRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	_, err := r.GetByCode(ctx, code)
	return err == nil, nil
}

func (r *sessionRepo) GetByCode(_ context.Context, code string) (*models.Session, error) {
	var found *models.Session
	r.s.read(func(st *state) { found = sessionByCode(st, code) })
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func sessionByCode(st *state, code string) *models.Session {
	for _, sess := range st.sessions {
		if sess.Code == code {
			return &sess
		}
	}
	return nil
}

func (r *sessionRepo) GetByID(_ context.Context, id string) (*models.Session, error) {
	var (
		sess models.Session
		ok   bool
	)
	r.s.read(func(st *state) { sess, ok = st.sessions[id] })
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &sess, nil
}

// Transactions are already serialized, so the locking reads are plain reads.
func (r *sessionRepo) LockByCode(ctx context.Context, code string) (*models.Session, error) {
	return r.GetByCode(ctx, code)
}

func (r *sessionRepo) ShareLockByID(ctx context.Context, id string) (*models.Session, error) {
	return r.GetByID(ctx, id)
}

func (r *sessionRepo) End(_ context.Context, id string, at time.Time) error {
	r.s.write(func(st *state) {
		sess, ok := st.sessions[id]
		if !ok || !sess.IsActive {
			return
		}
		sess.IsActive = false
		sess.EndedAt = &at
		st.sessions[id] = sess
	})
	return nil
}

func (r *sessionRepo) Rename(_ context.Context, id, name string) error {
	r.s.write(func(st *state) {
		if sess, ok := st.sessions[id]; ok {
			sess.Name = name
			st.sessions[id] = sess
		}
	})
	return nil
}

func (r *sessionRepo) Summary(_ context.Context, code, callerID string) (*models.SessionSummary, error) {
	var sum *models.SessionSummary
	r.s.read(func(st *state) {
		if sess := sessionByCode(st, code); sess != nil {
			s := summarize(st, *sess, callerID)
			sum = &s
		}
	})
	if sum == nil {
		return nil, common.ErrorNotFound
	}
	return sum, nil
}

func (r *sessionRepo) ListOwnedActive(_ context.Context, userID string) ([]models.SessionSummary, error) {
	return r.list(userID, func(st *state, sess models.Session) bool {
		return sess.OwnerID == userID && sess.IsActive
	}), nil
}

func (r *sessionRepo) ListJoined(_ context.Context, userID string) ([]models.SessionSummary, error) {
	return r.list(userID, func(st *state, sess models.Session) bool {
		return sess.OwnerID != userID && hasRow(st, sess.ID, userID)
	}), nil
}

func (r *sessionRepo) ListHistory(_ context.Context, userID string) ([]models.SessionSummary, error) {
	return r.list(userID, func(st *state, sess models.Session) bool {
		return sess.OwnerID == userID || hasRow(st, sess.ID, userID)
	}), nil
}

func (r *sessionRepo) list(userID string, keep func(st *state, sess models.Session) bool) []models.SessionSummary {
	var out []models.SessionSummary
	r.s.read(func(st *state) {
		for _, sess := range st.sessions {
			if keep(st, sess) {
				out = append(out, summarize(st, sess, userID))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func hasRow(st *state, sessionID, userID string) bool {
	for _, p := range st.participants {
		if p.SessionID == sessionID && p.UserID == userID {
			return true
		}
	}
	return false
}

func summarize(st *state, sess models.Session, callerID string) models.SessionSummary {
	total := map[string]struct{}{}
	active := map[string]struct{}{}
	callerActive := false
	for _, p := range st.participants {
		if p.SessionID != sess.ID {
			continue
		}
		total[p.Key()] = struct{}{}
		if p.IsActive {
			active[p.Key()] = struct{}{}
			if callerID != "" && p.UserID == callerID {
				callerActive = true
			}
		}
	}
	return models.SessionSummary{
		Session:            sess,
		OwnerName:          st.users[sess.OwnerID].UserName,
		TotalParticipants:  len(total),
		ActiveParticipants: len(active),
		IsOwner:            callerID != "" && sess.OwnerID == callerID,
		CallerActive:       callerActive,
	}
}
