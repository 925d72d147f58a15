// Package memory is an in-process implementation of every repository,
// selected with the "memory://" DSN and used by service tests.
//
// Transactions are serialized by a single mutex; a failed transaction
// restores the snapshot taken when it began. Reads outside a transaction
// may observe the writes of one still in flight.
package memory

import (
	"context"
	"database/sql"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrijs2005/huntplanur/internal/dbx"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/participants"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/positions"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/users"
)

type state struct {
	users          map[string]models.User
	sessions       map[string]models.Session
	participants   map[string]models.Participant
	sessionSamples []models.Position
	userSamples    []models.Position
	notifications  []models.Notification
	nextSampleID   int64
	nextAlertID    int64
}

func (s state) clone() state {
	c := s
	c.users = maps.Clone(s.users)
	c.sessions = maps.Clone(s.sessions)
	c.participants = maps.Clone(s.participants)
	c.sessionSamples = slices.Clone(s.sessionSamples)
	c.userSamples = slices.Clone(s.userSamples)
	c.notifications = slices.Clone(s.notifications)
	return c
}

// Store holds all data and doubles as the RepositoryManager and the
// TxRunner for services.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   state
}

func NewStore() *Store {
	return &Store{st: state{
		users:        map[string]models.User{},
		sessions:     map[string]models.Session{},
		participants: map[string]models.Participant{},
	}}
}

func (s *Store) RunMigrations(context.Context, *sql.DB) error { return nil }

func (s *Store) Users(dbx.DBTX) users.Repository               { return &userRepo{s} }
func (s *Store) Sessions(dbx.DBTX) sessions.Repository         { return &sessionRepo{s} }
func (s *Store) Participants(dbx.DBTX) participants.Repository { return &participantRepo{s} }
func (s *Store) Positions(dbx.DBTX) positions.Repository       { return &positionRepo{s} }
func (s *Store) Notifications(dbx.DBTX) notifications.Repository {
	return &notificationRepo{s}
}

// Conn returns nil: memory repositories ignore the handle.
func (s *Store) Conn() dbx.DBTX { return nil }

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	return fn(ctx, nil)
}

func (s *Store) restore(snapshot state) {
	s.mu.Lock()
	s.st = snapshot
	s.mu.Unlock()
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.st)
}

func (s *Store) write(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.st)
}

// CountSessionSamples reports how many live samples a roster row holds.
func (s *Store) CountSessionSamples(participantID string) int {
	n := 0
	s.read(func(st *state) {
		for _, p := range st.sessionSamples {
			if p.ParticipantID == participantID {
				n++
			}
		}
	})
	return n
}
