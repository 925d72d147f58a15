package cli

import (
	"context"

	"github.com/dmitrijs2005/huntplanur/internal/client/api"
)

// fakeAPI records calls and returns canned results.
type fakeAPI struct {
	calls []string

	user      *api.User
	session   *api.Session
	joined    *api.Participant
	result    string
	roster    *api.Roster
	alerts    []api.Alert
	sessions  []api.Session
	marked    []int64
	lastPos   []float64
	lastAcc   *float64
	lastAlert string
	lastGuest string
	trail     []byte
	err       error
}

func (f *fakeAPI) record(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeAPI) Register(_ context.Context, _, _ string, _ []byte) (*api.User, error) {
	return f.user, f.record("register")
}
func (f *fakeAPI) Login(_ context.Context, _ string, _ []byte) (*api.User, error) {
	return f.user, f.record("login")
}
func (f *fakeAPI) Logout(context.Context) error { return f.record("logout") }
func (f *fakeAPI) WhoAmI(context.Context) (*api.Identity, error) {
	return &api.Identity{}, f.record("whoami")
}
func (f *fakeAPI) CreateSession(_ context.Context, name string) (*api.Session, error) {
	return f.session, f.record("create:" + name)
}
func (f *fakeAPI) Sessions(context.Context) ([]api.Session, error) {
	return f.sessions, f.record("sessions")
}
func (f *fakeAPI) EndSession(_ context.Context, code string) error { return f.record("end:" + code) }
func (f *fakeAPI) Join(_ context.Context, code, guest string) (*api.Participant, string, error) {
	f.lastGuest = guest
	return f.joined, f.result, f.record("join:" + code)
}
func (f *fakeAPI) Participants(_ context.Context, code string) (*api.Roster, error) {
	return f.roster, f.record("participants:" + code)
}
func (f *fakeAPI) Leave(context.Context) error { return f.record("leave") }
func (f *fakeAPI) ReportPosition(_ context.Context, lat, lon float64, acc *float64) error {
	f.lastPos, f.lastAcc = []float64{lat, lon}, acc
	return f.record("position")
}
func (f *fakeAPI) StopSharing(context.Context) error { return f.record("stop") }
func (f *fakeAPI) SendAlert(_ context.Context, msg string) error {
	f.lastAlert = msg
	return f.record("alert")
}
func (f *fakeAPI) Alerts(context.Context) ([]api.Alert, error) {
	return f.alerts, f.record("alerts")
}
func (f *fakeAPI) MarkRead(_ context.Context, ids []int64) error {
	f.marked = append(f.marked, ids...)
	return f.record("read")
}
func (f *fakeAPI) AvatarUploadURL(context.Context) (string, error) { return "", f.record("avatar") }
func (f *fakeAPI) ExportTrail(_ context.Context, format string, _ int) ([]byte, error) {
	return f.trail, f.record("export:" + format)
}

// silence swaps printlnFn for a collector.
func silence(t interface{ Cleanup(func()) }) *[]string {
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		s := ""
		for i, v := range a {
			if i > 0 {
				s += " "
			}
			s += toString(v)
		}
		lines = append(lines, s)
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}
