package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/logging"
	"github.com/dmitrijs2005/huntplanur/internal/server/auth"
	"github.com/dmitrijs2005/huntplanur/internal/server/config"
	"github.com/dmitrijs2005/huntplanur/internal/server/events"
	"github.com/dmitrijs2005/huntplanur/internal/server/geocode"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/memory"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakeGeocoder struct {
	name  string
	calls int
}

func (g *fakeGeocoder) Reverse(context.Context, float64, float64) (string, bool) {
	g.calls++
	return g.name, g.name != ""
}

type fakeVerifier struct {
	id  *auth.GoogleIdentity
	err error
}

func (f *fakeVerifier) Verify(context.Context, string) (*auth.GoogleIdentity, error) {
	return f.id, f.err
}

type fixture struct {
	store    *memory.Store
	clock    *testClock
	events   *recorder
	geo      *fakeGeocoder
	google   *fakeVerifier
	users    *UserService
	sessions *SessionService
	roster   *RosterService
	presence *PresenceService
	alerts   *AlertService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.NewStore(),
		clock:  &testClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
		events: &recorder{},
		geo:    &fakeGeocoder{},
		google: &fakeVerifier{},
	}
	cfg := &config.Config{SecretKey: "test-secret", TokenValidityDuration: time.Hour}
	log := logging.Nop{}

	f.users = NewUserService(f.store, f.store, auth.NewHasher(bcrypt.MinCost), f.google, cfg, log)
	f.sessions = NewSessionService(f.store, f.store, f.geo, f.events, log)
	f.roster = NewRosterService(f.store, f.store, f.events, log)
	f.presence = NewPresenceService(f.store, f.store, f.events, log)
	f.alerts = NewAlertService(f.store, f.store, f.events, log)

	for _, d := range []*deps{&f.users.deps, &f.sessions.deps, &f.roster.deps, &f.presence.deps, &f.alerts.deps} {
		d.now = f.clock.now
	}
	return f
}

func (f *fixture) register(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), name, name+"@example.com", "secret123")
	require.NoError(t, err)
	return u
}

// hunt registers an owner and opens a session, returning both and the
// owner's roster row.
func (f *fixture) hunt(t *testing.T, owner, name string) (*models.User, *models.Session, *models.Participant) {
	t.Helper()
	ctx := context.Background()
	u := f.register(t, owner)
	sess, err := f.sessions.Create(ctx, u.ID, name, nil, nil)
	require.NoError(t, err)
	p, res, err := f.roster.Join(ctx, sess.Code, models.Identity{UserID: u.ID})
	require.NoError(t, err)
	require.Equal(t, models.JoinResultAlreadyJoined, res)
	return u, sess, p
}

func (f *fixture) guest(t *testing.T, code, name string) *models.Participant {
	t.Helper()
	p, _, err := f.roster.Join(context.Background(), code, models.Identity{GuestName: name})
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T { return &v }

var _ geocode.Geocoder = (*fakeGeocoder)(nil)

func userIdentity(id string) models.Identity { return models.Identity{UserID: id} }
