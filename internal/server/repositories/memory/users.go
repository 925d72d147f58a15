package memory

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	var err error
	r.s.write(func(st *state) {
		for _, u := range st.users {
			if u.UserName == user.UserName || strings.EqualFold(u.Email, user.Email) ||
				(user.GoogleID != "" && u.GoogleID == user.GoogleID) {
				err = common.ErrorAlreadyExists
				return
			}
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = time.Now()
		}
		st.users[user.ID] = *user
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) find(match func(u models.User) bool) (*models.User, error) {
	var found *models.User
	r.s.read(func(st *state) {
		for _, u := range st.users {
			if match(u) {
				u := u
				found = &u
				return
			}
		}
	})
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *userRepo) GetByLogin(_ context.Context, login string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.UserName == login || strings.EqualFold(u.Email, login) })
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepo) GetByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.GoogleID != "" && u.GoogleID == googleID })
}

func (r *userRepo) UsernameTaken(_ context.Context, username string) (bool, error) {
	_, err := r.find(func(u models.User) bool { return u.UserName == username })
	return err == nil, nil
}

func (r *userRepo) update(id string, fn func(u *models.User) error) error {
	var err error
	r.s.write(func(st *state) {
		u, ok := st.users[id]
		if !ok {
			err = common.ErrorNotFound
			return
		}
		if err = fn(&u); err == nil {
			st.users[id] = u
		}
	})
	return err
}

func (r *userRepo) UpdateUsername(ctx context.Context, id, username string) error {
	if taken, _ := r.UsernameTaken(ctx, username); taken {
		if u, _ := r.GetByID(ctx, id); u == nil || u.UserName != username {
			return common.ErrorAlreadyExists
		}
	}
	return r.update(id, func(u *models.User) error { u.UserName = username; return nil })
}

func (r *userRepo) UpdateAvatar(_ context.Context, id, key string) error {
	return r.update(id, func(u *models.User) error { u.AvatarKey = key; return nil })
}

func (r *userRepo) LinkGoogle(_ context.Context, id, googleID string) error {
	return r.update(id, func(u *models.User) error { u.GoogleID = googleID; return nil })
}

func (r *userRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	return r.update(id, func(u *models.User) error { u.LastLoginAt = &at; return nil })
}
