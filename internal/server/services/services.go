// Package services contains the hunt server's business logic: accounts,
// the session registry, the participant roster, position tracking and
// alerts. Every mutating operation runs inside one transaction obtained
// from a dbx.TxRunner; repositories come from a RepositoryManager bound
// to either the pool or the open transaction.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/dbx"
	"github.com/dmitrijs2005/huntplanur/internal/logging"
	"github.com/dmitrijs2005/huntplanur/internal/server/events"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/repomanager"
)

const (
	// SessionSampleCap and UserSampleCap bound the two position stores.
	SessionSampleCap = 100
	UserSampleCap    = 1000

	// OnlineWindow is how fresh the newest sample must be to count as online.
	OnlineWindow = 30 * time.Second

	DefaultHistoryHours = 24
	MaxHistoryHours     = 720

	MaxGuestNameLen  = 50
	MaxAlertLen      = 500
	MinNameLen       = 3
	MinPasswordLen   = 6
	MaxPasswordLen   = 72 // bcrypt input limit, in bytes
	codeAttempts     = 10
	eventPublishWait = 5 * time.Second
)

// deps is what every service needs.
type deps struct {
	tx     dbx.TxRunner
	rm     repomanager.RepositoryManager
	events events.Publisher
	log    logging.Logger
	now    func() time.Time
}

func newDeps(tx dbx.TxRunner, rm repomanager.RepositoryManager, pub events.Publisher, log logging.Logger) deps {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = logging.Nop{}
	}
	return deps{
		tx:     tx,
		rm:     rm,
		events: pub,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// publish emits ev after a commit. The request may already be cancelled by
// the time the stream is reached, so it gets its own deadline.
func (d *deps) publish(ctx context.Context, ev events.Event) {
	if ev.At.IsZero() {
		ev.At = d.now()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishWait)
	defer cancel()
	if err := d.events.Publish(ctx, ev); err != nil {
		d.log.Warn(ctx, "event publish failed", "type", ev.Type, "session", ev.SessionID, "error", err)
	}
}

// normalizeCode accepts codes typed in any case with stray whitespace.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
