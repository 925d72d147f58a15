package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/huntplanur/internal/dbx"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/participants"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/positions"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DB handle, which is
// either the connection pool or an open transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Participants(db dbx.DBTX) participants.Repository
	Positions(db dbx.DBTX) positions.Repository
	Notifications(db dbx.DBTX) notifications.Repository
}
