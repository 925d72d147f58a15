// Package repomanager provides the RepositoryManager contract and its
// PostgreSQL implementation, which also applies goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/huntplanur/internal/dbx"
	"github.com/dmitrijs2005/huntplanur/internal/server/migrations"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/participants"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/positions"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Participants(db dbx.DBTX) participants.Repository {
	return participants.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Positions(db dbx.DBTX) positions.Repository {
	return positions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Notifications(db dbx.DBTX) notifications.Repository {
	return notifications.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations with the pgx dialect.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// OpenPostgres opens a pgx-backed *sql.DB and checks it is reachable.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
