package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	args     [][]string
	fail     bool
}

func (f *fakeExec) hit(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	if f.fail {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeExec) isLoggedIn() bool                           { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error             { return f.hit("register", nil) }
func (f *fakeExec) Login(context.Context) error                { f.loggedIn = true; return f.hit("login", nil) }
func (f *fakeExec) Logout(context.Context) error               { f.loggedIn = false; return f.hit("logout", nil) }
func (f *fakeExec) Who(context.Context) error                  { return f.hit("who", nil) }
func (f *fakeExec) Alerts(context.Context) error               { return f.hit("alerts", nil) }
func (f *fakeExec) Leave(context.Context) error                { return f.hit("leave", nil) }
func (f *fakeExec) End(context.Context) error                  { return f.hit("end", nil) }
func (f *fakeExec) Sessions(context.Context) error             { return f.hit("sessions", nil) }
func (f *fakeExec) Create(_ context.Context, a []string) error { return f.hit("create", a) }
func (f *fakeExec) Join(_ context.Context, a []string) error   { return f.hit("join", a) }
func (f *fakeExec) Where(_ context.Context, a []string) error  { return f.hit("where", a) }
func (f *fakeExec) Alert(_ context.Context, a []string) error  { return f.hit("alert", a) }
func (f *fakeExec) Avatar(_ context.Context, a []string) error { return f.hit("avatar", a) }
func (f *fakeExec) Export(_ context.Context, a []string) error { return f.hit("export", a) }

func TestRunREPL_DispatchesCommands(t *testing.T) {
	silence(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"create Big Hunt",
		"",
		"where 1.5 2.5",
		"who",
		"alert come here",
		"alerts",
		"foobar",
		"leave",
		"exit",
		"who",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"login", "create", "where", "who", "alert", "alerts", "leave"}, exec.calls)
	assert.Equal(t, []string{"Big", "Hunt"}, exec.args[1])
	assert.Equal(t, []string{"1.5", "2.5"}, exec.args[2])
}

func TestRunREPL_ReportsErrorsAndContinues(t *testing.T) {
	lines := silence(t)

	exec := &fakeExec{fail: true}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("who\nend\nquit\n")))

	assert.Equal(t, []string{"who", "end"}, exec.calls)
	assert.Contains(t, strings.Join(*lines, "\n"), "Error: boom")
	assert.Contains(t, *lines, "Bye!")
}

func TestRunREPL_StopsAtEOF(t *testing.T) {
	silence(t)
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("sessions")))
	assert.Equal(t, []string{"sessions"}, exec.calls)
}
