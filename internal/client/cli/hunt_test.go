package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/client/api"
	"github.com/dmitrijs2005/huntplanur/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toString(v any) string { return fmt.Sprint(v) }

func newTestApp(f *fakeAPI) *App {
	return &App{
		config: &config.Config{RequestTimeout: time.Second},
		api:    f,
		reader: bufio.NewReader(strings.NewReader("")),
	}
}

func TestLogin_SetsUser(t *testing.T) {
	silence(t)
	origST, origGP := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = origST, origGP })
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) { return "alice", nil }
	pw := []byte("secret123")
	getPassword = func(io.Writer) ([]byte, error) { return pw, nil }

	f := &fakeAPI{user: &api.User{UserName: "alice"}}
	a := newTestApp(f)
	require.NoError(t, a.Login(context.Background()))

	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(alice)", a.getStatus())
	assert.Equal(t, make([]byte, len(pw)), pw, "password must be wiped")
}

func TestLogin_Failure(t *testing.T) {
	silence(t)
	origST, origGP := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = origST, origGP })
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) { return "alice", nil }
	getPassword = func(io.Writer) ([]byte, error) { return []byte("x"), nil }

	f := &fakeAPI{err: &api.Error{Status: 401, Message: "invalid credentials"}}
	a := newTestApp(f)
	assert.Error(t, a.Login(context.Background()))
	assert.False(t, a.isLoggedIn())
}

func TestCreate_JoinsAndRemembersCode(t *testing.T) {
	silence(t)
	f := &fakeAPI{
		session: &api.Session{Code: "ABC123", Name: "Big Hunt"},
		joined:  &api.Participant{SessionCode: "ABC123"},
		result:  "already_joined",
	}
	a := newTestApp(f)
	a.userName = "alice"

	require.NoError(t, a.Create(context.Background(), []string{"Big", "Hunt"}))
	assert.Equal(t, []string{"create:Big Hunt", "join:ABC123"}, f.calls)
	assert.Equal(t, "ABC123", a.currentCode())

	assert.ErrorIs(t, a.Create(context.Background(), nil), errUsage)
}

func TestJoin_GuestNeedsName(t *testing.T) {
	silence(t)
	f := &fakeAPI{joined: &api.Participant{SessionCode: "ABC123", DisplayName: "Bob"}, result: "joined"}
	a := newTestApp(f)

	assert.ErrorIs(t, a.Join(context.Background(), []string{"abc123"}), errUsage)
	assert.Empty(t, f.calls)

	require.NoError(t, a.Join(context.Background(), []string{"abc123", "Bob", "Jr"}))
	assert.Equal(t, "Bob Jr", f.lastGuest)
	assert.Equal(t, "ABC123", a.currentCode())
}

func TestWhere(t *testing.T) {
	silence(t)
	f := &fakeAPI{}
	a := newTestApp(f)
	ctx := context.Background()

	assert.ErrorIs(t, a.Where(ctx, []string{"1", "2"}), errNotInHunt)

	a.code = "ABC123"
	assert.ErrorIs(t, a.Where(ctx, []string{"1"}), errUsage)
	assert.ErrorIs(t, a.Where(ctx, []string{"north", "2"}), errUsage)

	require.NoError(t, a.Where(ctx, []string{"51.5", "-0.1", "8"}))
	assert.Equal(t, []float64{51.5, -0.1}, f.lastPos)
	require.NotNil(t, f.lastAcc)
	assert.Equal(t, 8.0, *f.lastAcc)

	require.NoError(t, a.Where(ctx, []string{"off"}))
	assert.Contains(t, f.calls, "stop")
}

func TestWho_PrintsRoster(t *testing.T) {
	lines := silence(t)
	f := &fakeAPI{roster: &api.Roster{
		Session:  api.Session{Name: "Hunt1"},
		IsActive: true,
		Participants: []api.RosterEntry{
			{DisplayName: "alice", IsOwner: true, IsOnline: true, Location: &api.Position{Latitude: 1, Longitude: 2}},
			{DisplayName: "Bob", IsGuest: true},
		},
	}}
	a := newTestApp(f)
	a.code = "ABC123"

	require.NoError(t, a.Who(context.Background()))
	out := strings.Join(*lines, "\n")
	assert.Contains(t, out, "Hunt1 (ABC123), active")
	assert.Contains(t, out, "alice [owner]  1.00000, 2.00000  online")
	assert.Contains(t, out, "Bob [guest]  no location")
}

func TestRosterLine_LastKnown(t *testing.T) {
	e := api.RosterEntry{DisplayName: "carol", LastKnown: true, Location: &api.Position{Latitude: 3, Longitude: 4}}
	assert.Contains(t, rosterLine(e), "last known")
}

func TestAlerts_MarksShownRead(t *testing.T) {
	lines := silence(t)
	lat, lon := 1.0, 2.0
	f := &fakeAPI{alerts: []api.Alert{
		{ID: 7, SenderName: "Bob", Message: "here", Latitude: &lat, Longitude: &lon},
		{ID: 9, SenderName: "Eve", Message: "help"},
	}}
	a := newTestApp(f)
	a.code = "ABC123"

	require.NoError(t, a.Alerts(context.Background()))
	assert.Equal(t, []int64{7, 9}, f.marked)
	assert.Contains(t, strings.Join(*lines, "\n"), "Bob: here (at 1.00000, 2.00000)")
}

func TestAlert_SendsJoinedMessage(t *testing.T) {
	silence(t)
	f := &fakeAPI{}
	a := newTestApp(f)
	a.code = "ABC123"

	require.NoError(t, a.Alert(context.Background(), []string{"over", "here"}))
	assert.Equal(t, "over here", f.lastAlert)
}

func TestLeaveAndEnd_ClearCode(t *testing.T) {
	silence(t)
	f := &fakeAPI{}
	a := newTestApp(f)
	ctx := context.Background()

	assert.ErrorIs(t, a.Leave(ctx), errNotInHunt)

	a.code = "ABC123"
	require.NoError(t, a.Leave(ctx))
	assert.Empty(t, a.currentCode())

	a.code = "ABC123"
	require.NoError(t, a.End(ctx))
	assert.Contains(t, f.calls, "end:ABC123")
	assert.Empty(t, a.currentCode())
}

func TestEnd_KeepsCodeOnFailure(t *testing.T) {
	silence(t)
	f := &fakeAPI{err: &api.Error{Status: 403, Message: "unauthorized"}}
	a := newTestApp(f)
	a.code = "ABC123"

	assert.Error(t, a.End(context.Background()))
	assert.Equal(t, "ABC123", a.currentCode())
}

func TestExport_WritesFile(t *testing.T) {
	silence(t)
	f := &fakeAPI{trail: []byte("csv data")}
	a := newTestApp(f)
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, a.Export(context.Background(), []string{"csv", "48", path}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "csv data", string(data))

	assert.ErrorIs(t, a.Export(context.Background(), []string{"csv", "many"}), errUsage)
}

func TestAvatar_RejectsNonImage(t *testing.T) {
	silence(t)
	f := &fakeAPI{}
	a := newTestApp(f)
	path := filepath.Join(t.TempDir(), "x.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))

	assert.Error(t, a.Avatar(context.Background(), []string{path}))
	assert.Empty(t, f.calls)
}

func TestPollAlerts_TracksMode(t *testing.T) {
	silence(t)
	f := &fakeAPI{err: fmt.Errorf("%w: refused", api.ErrUnavailable)}
	a := newTestApp(f)
	a.code = "ABC123"

	a.pollAlerts(context.Background())
	assert.Equal(t, ModeOffline, a.Mode)
	assert.Contains(t, a.getStatus(), "offline")

	f.err = nil
	f.alerts = []api.Alert{{ID: 3, SenderName: "Bob", Message: "hi"}}
	a.pollAlerts(context.Background())
	assert.Equal(t, ModeOnline, a.Mode)
	assert.Equal(t, []int64{3}, f.marked)
}

func TestLogout_ClearsState(t *testing.T) {
	silence(t)
	f := &fakeAPI{}
	a := newTestApp(f)
	a.userName, a.code = "alice", "ABC123"

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Empty(t, a.getStatus())

	f.err = errors.New("boom")
	a.userName = "alice"
	assert.Error(t, a.Logout(context.Background()))
	assert.True(t, a.isLoggedIn())
}
