package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
)

type participantRepo struct{ s *Store }

func (r *participantRepo) Create(_ context.Context, p *models.Participant) (*models.Participant, error) {
	r.s.write(func(st *state) {
		p.IsActive = true
		st.participants[p.ID] = stripDerived(*p)
	})
	return p, nil
}

// stripDerived drops the fields that reads compute.
func stripDerived(p models.Participant) models.Participant {
	p.DisplayName = ""
	p.SessionCode = ""
	return p
}

func decorate(st *state, p models.Participant) models.Participant {
	if p.UserID != "" {
		p.DisplayName = st.users[p.UserID].UserName
	} else {
		p.DisplayName = p.GuestName
	}
	p.SessionCode = st.sessions[p.SessionID].Code
	return p
}

func (r *participantRepo) GetByID(_ context.Context, id string) (*models.Participant, error) {
	var (
		p  models.Participant
		ok bool
	)
	r.s.read(func(st *state) {
		p, ok = st.participants[id]
		if ok {
			p = decorate(st, p)
		}
	})
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r *participantRepo) FindForIdentity(_ context.Context, sessionID string, identity models.Identity) (*models.Participant, error) {
	var best *models.Participant
	r.s.read(func(st *state) {
		for _, p := range st.participants {
			if p.SessionID != sessionID || !sameIdentity(p.Identity, identity) {
				continue
			}
			if best == nil || better(p, *best) {
				d := decorate(st, p)
				best = &d
			}
		}
	})
	if best == nil {
		return nil, common.ErrorNotFound
	}
	return best, nil
}

func sameIdentity(a, b models.Identity) bool {
	if b.IsGuest() {
		return a.IsGuest() && a.GuestName == b.GuestName
	}
	return a.UserID == b.UserID
}

// better orders rows active first, then by most recent join.
func better(a, b models.Participant) bool {
	if a.IsActive != b.IsActive {
		return a.IsActive
	}
	return a.JoinedAt.After(b.JoinedAt)
}

func (r *participantRepo) Reactivate(_ context.Context, id string, at time.Time) error {
	r.s.write(func(st *state) {
		if p, ok := st.participants[id]; ok {
			p.IsActive = true
			p.JoinedAt = at
			p.LeftAt = nil
			p.Reason = ""
			st.participants[id] = p
		}
	})
	return nil
}

func (r *participantRepo) Deactivate(_ context.Context, id, reason string, at time.Time) error {
	r.s.write(func(st *state) {
		if p, ok := st.participants[id]; ok && p.IsActive {
			st.participants[id] = deactivated(p, reason, at)
		}
	})
	return nil
}

func deactivated(p models.Participant, reason string, at time.Time) models.Participant {
	p.IsActive = false
	p.LeftAt = &at
	p.Reason = reason
	return p
}

func (r *participantRepo) DeactivateAll(_ context.Context, sessionID, reason string, at time.Time) (int64, error) {
	var n int64
	r.s.write(func(st *state) {
		for id, p := range st.participants {
			if p.SessionID == sessionID && p.IsActive {
				st.participants[id] = deactivated(p, reason, at)
				n++
			}
		}
	})
	return n, nil
}

func (r *participantRepo) ListActive(_ context.Context, sessionID string) ([]models.Participant, error) {
	return r.list(func(p models.Participant) bool { return p.SessionID == sessionID && p.IsActive }), nil
}

func (r *participantRepo) ListDeactivated(_ context.Context, sessionID, reason string) ([]models.Participant, error) {
	return r.list(func(p models.Participant) bool {
		return p.SessionID == sessionID && !p.IsActive && p.Reason == reason
	}), nil
}

func (r *participantRepo) list(keep func(p models.Participant) bool) []models.Participant {
	var out []models.Participant
	r.s.read(func(st *state) {
		for _, p := range st.participants {
			if keep(p) {
				out = append(out, decorate(st, p))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
