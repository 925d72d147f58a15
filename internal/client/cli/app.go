package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/client/api"
	"github.com/dmitrijs2005/huntplanur/internal/client/config"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// huntAPI is the slice of api.Client the commands use.
type huntAPI interface {
	Register(ctx context.Context, userName, email string, password []byte) (*api.User, error)
	Login(ctx context.Context, login string, password []byte) (*api.User, error)
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*api.Identity, error)
	CreateSession(ctx context.Context, name string) (*api.Session, error)
	Sessions(ctx context.Context) ([]api.Session, error)
	EndSession(ctx context.Context, code string) error
	Join(ctx context.Context, code, guestName string) (*api.Participant, string, error)
	Participants(ctx context.Context, code string) (*api.Roster, error)
	Leave(ctx context.Context) error
	ReportPosition(ctx context.Context, lat, lon float64, accuracy *float64) error
	StopSharing(ctx context.Context) error
	SendAlert(ctx context.Context, message string) error
	Alerts(ctx context.Context) ([]api.Alert, error)
	MarkRead(ctx context.Context, ids []int64) error
	AvatarUploadURL(ctx context.Context) (string, error)
	ExportTrail(ctx context.Context, format string, hours int) ([]byte, error)
}

type App struct {
	config *config.Config
	api    huntAPI
	reader *bufio.Reader

	mu       sync.Mutex
	userName string
	code     string // hunt the client is in
	Mode     Mode
}

func NewApp(c *config.Config) (*App, error) {
	client, err := api.New(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return &App{config: c, api: client, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartAlertWatcher(ctx, a.config.AlertPollInterval)

	printlnFn("Welcome to huntctl (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName != ""
}

func (a *App) currentCode() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.code
}

func (a *App) setCode(code string) {
	a.mu.Lock()
	a.code = code
	a.mu.Unlock()
}

func (a *App) setUser(name string) {
	a.mu.Lock()
	a.userName = name
	a.mu.Unlock()
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()
	if changed {
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.userName
	if a.code != "" {
		if s != "" {
			s += "@"
		}
		s += a.code
	}
	if a.Mode == ModeOffline {
		s += " offline"
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// StartAlertWatcher polls for alerts while the client is in a hunt and
// tracks server reachability.
func (a *App) StartAlertWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if a.currentCode() == "" {
				continue
			}
			a.pollAlerts(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) pollAlerts(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	alerts, err := a.api.Alerts(ctx)
	if errors.Is(err, api.ErrUnavailable) {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
	if err != nil || len(alerts) == 0 {
		return
	}
	printAlerts(alerts)
	ids := make([]int64, 0, len(alerts))
	for _, al := range alerts {
		ids = append(ids, al.ID)
	}
	if err := a.api.MarkRead(ctx, ids); err != nil {
		log.Printf("mark read: %v", err)
	}
}
