package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
)

type positionRepo struct{ s *Store }

func (r *positionRepo) AddSessionSample(_ context.Context, p *models.Position) error {
	r.s.write(func(st *state) {
		st.nextSampleID++
		p.ID = st.nextSampleID
		st.sessionSamples = append(st.sessionSamples, *p)
	})
	return nil
}

func (r *positionRepo) AddUserSample(_ context.Context, p *models.Position) error {
	r.s.write(func(st *state) {
		st.nextSampleID++
		p.ID = st.nextSampleID
		st.userSamples = append(st.userSamples, *p)
	})
	return nil
}

// newer orders samples by (recorded_at, id) descending.
func newer(a, b models.Position) bool {
	if !a.RecordedAt.Equal(b.RecordedAt) {
		return a.RecordedAt.After(b.RecordedAt)
	}
	return a.ID > b.ID
}

func prune(samples []models.Position, match func(models.Position) bool, keep int) []models.Position {
	var owned []models.Position
	for _, s := range samples {
		if match(s) {
			owned = append(owned, s)
		}
	}
	if len(owned) <= keep {
		return samples
	}
	sort.Slice(owned, func(i, j int) bool { return newer(owned[i], owned[j]) })
	retained := make(map[int64]struct{}, keep)
	for _, s := range owned[:keep] {
		retained[s.ID] = struct{}{}
	}

	out := samples[:0]
	for _, s := range samples {
		if _, ok := retained[s.ID]; ok || !match(s) {
			out = append(out, s)
		}
	}
	return out
}

func (r *positionRepo) PruneSession(_ context.Context, participantID string, keep int) error {
	r.s.write(func(st *state) {
		st.sessionSamples = prune(st.sessionSamples, func(p models.Position) bool { return p.ParticipantID == participantID }, keep)
	})
	return nil
}

func (r *positionRepo) PruneUser(_ context.Context, userID string, keep int) error {
	r.s.write(func(st *state) {
		st.userSamples = prune(st.userSamples, func(p models.Position) bool { return p.UserID == userID }, keep)
	})
	return nil
}

func latest(samples []models.Position, match func(models.Position) bool) (*models.Position, error) {
	var best *models.Position
	for _, s := range samples {
		if match(s) && (best == nil || newer(s, *best)) {
			s := s
			best = &s
		}
	}
	if best == nil {
		return nil, common.ErrorNotFound
	}
	return best, nil
}

func (r *positionRepo) LatestSession(_ context.Context, participantID string) (p *models.Position, err error) {
	r.s.read(func(st *state) {
		p, err = latest(st.sessionSamples, func(s models.Position) bool { return s.ParticipantID == participantID })
	})
	return p, err
}

func (r *positionRepo) LatestUser(_ context.Context, userID string) (p *models.Position, err error) {
	r.s.read(func(st *state) {
		p, err = latest(st.userSamples, func(s models.Position) bool { return s.UserID == userID })
	})
	return p, err
}

func (r *positionRepo) PurgeSession(_ context.Context, participantID string) error {
	r.s.write(func(st *state) {
		out := st.sessionSamples[:0]
		for _, s := range st.sessionSamples {
			if s.ParticipantID != participantID {
				out = append(out, s)
			}
		}
		st.sessionSamples = out
	})
	return nil
}

func (r *positionRepo) UserTrail(_ context.Context, userID string, since time.Time) ([]models.Position, error) {
	var out []models.Position
	r.s.read(func(st *state) {
		for _, s := range st.userSamples {
			if s.UserID == userID && !s.RecordedAt.Before(since) {
				out = append(out, s)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return newer(out[j], out[i]) })
	return out, nil
}
