// Package server wires configuration, storage, telemetry and the hunt
// services together and runs the HTTP API and the gRPC health listener
// until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/dbx"
	"github.com/dmitrijs2005/huntplanur/internal/logging"
	"github.com/dmitrijs2005/huntplanur/internal/server/auth"
	"github.com/dmitrijs2005/huntplanur/internal/server/config"
	"github.com/dmitrijs2005/huntplanur/internal/server/events"
	"github.com/dmitrijs2005/huntplanur/internal/server/geocode"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/memory"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/huntplanur/internal/server/services"
	"github.com/dmitrijs2005/huntplanur/internal/server/telemetry"

	gs "github.com/dmitrijs2005/huntplanur/internal/server/grpc"
	hs "github.com/dmitrijs2005/huntplanur/internal/server/http"
)

// MemoryDSN selects the in-process store instead of PostgreSQL.
const MemoryDSN = "memory://"

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	events    events.Publisher
	telemetry *telemetry.Providers
	services  hs.Services
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	providers, err := telemetry.NewProviders(ctx, c.OTLPEndpoint, telemetry.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}
	providers.SetGlobal()

	app := &App{config: c, logger: logger, telemetry: providers}

	tx, rm, err := app.openStore(ctx)
	if err != nil {
		return nil, err
	}

	var geo geocode.Geocoder = geocode.Nop{}
	if c.GeocoderURL != "" {
		geo = geocode.NewNominatim(c.GeocoderURL, c.GeocoderUserAgent, c.GeocoderTimeout, logger)
	}

	var pub events.Publisher = events.Nop{}
	if brokers := c.Brokers(); len(brokers) > 0 {
		pub = events.NewKafkaPublisher(brokers, c.KafkaTopic, logger)
	}
	app.events = pub

	hasher := auth.NewHasher(c.BcryptCost)
	google := auth.NewGoogleVerifier(c.GoogleClientID, c.GoogleCertsURL)

	app.services = hs.Services{
		Users:    services.NewUserService(tx, rm, hasher, google, c, logger),
		Sessions: services.NewSessionService(tx, rm, geo, pub, logger),
		Roster:   services.NewRosterService(tx, rm, pub, logger),
		Presence: services.NewPresenceService(tx, rm, pub, logger),
		Alerts:   services.NewAlertService(tx, rm, pub, logger),
		Avatars:  services.NewAvatarService(tx, rm, c, logger),
	}

	return app, nil
}

// openStore connects to PostgreSQL and applies migrations, or builds the
// in-memory store for MemoryDSN.
func (app *App) openStore(ctx context.Context) (dbx.TxRunner, repomanager.RepositoryManager, error) {
	if strings.HasPrefix(app.config.DatabaseDSN, MemoryDSN) {
		app.logger.Warn(ctx, "using in-memory store; data is lost on exit")
		store := memory.NewStore()
		return store, store, nil
	}

	db, err := repomanager.OpenPostgres(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}
	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations error: %w", err)
	}
	app.db = db
	return dbx.NewSQLRunner(db), rm, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := hs.NewHandler(app.services, app.config.PublicBaseURL, app.logger)
	s := hs.NewHTTPServer(app.config.EndpointAddrHTTP, h, app.config.GinMode, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	var pinger gs.Pinger
	if app.db != nil {
		pinger = app.db
	}
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, pinger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
}

// close releases what NewApp opened, with a fresh deadline since ctx is
// already cancelled.
func (app *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.events.Close(); err != nil {
		app.logger.Warn(ctx, "event stream close", "error", err)
	}
	if err := app.telemetry.Shutdown(ctx); err != nil {
		app.logger.Warn(ctx, "telemetry shutdown", "error", err)
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn(ctx, "db close", "error", err)
		}
	}
	app.logger.Info(ctx, "App stopped")
}
