// Package server initializes and runs the API server application.
// It selects the records storage backend, applies database migrations,
// wires the services, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mpetrenko/shiftnotes/internal/logging"
	"github.com/mpetrenko/shiftnotes/internal/server/config"
	"github.com/mpetrenko/shiftnotes/internal/server/httpapi"
	"github.com/mpetrenko/shiftnotes/internal/server/migrations"
	"github.com/mpetrenko/shiftnotes/internal/server/services"
	"github.com/mpetrenko/shiftnotes/internal/server/store"
	"github.com/mpetrenko/shiftnotes/internal/server/users"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	userService    *users.Service
	shiftService   *services.ShiftService
	patientService *services.PatientService
	noteService    *services.NoteService
	db             *sql.DB
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	app := &App{config: c, logger: logger}

	var recordStore store.RecordStore
	var userRepo users.Repository

	switch c.StorageBackend {
	case config.StorageMemory:
		recordStore = store.NewMemoryStore()
		userRepo = users.NewMemoryRepository()

	case config.StoragePostgres:
		db, err := app.openPostgres()
		if err != nil {
			return nil, err
		}
		recordStore = store.NewPostgresStore(db)
		userRepo = users.NewPostgresRepository(db)

	case config.StorageDynamo:
		ds, err := store.NewDynamoStore(ctx, store.DynamoConfig{
			Table:     c.DynamoTable,
			Region:    c.DynamoRegion,
			Endpoint:  c.DynamoEndpoint,
			AccessKey: c.DynamoAccessKey,
			SecretKey: c.DynamoSecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("dynamo init error: %w", err)
		}
		recordStore = ds

		// User accounts always live in Postgres; Dynamo holds records only.
		db, err := app.openPostgres()
		if err != nil {
			return nil, err
		}
		userRepo = users.NewPostgresRepository(db)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", c.StorageBackend)
	}

	app.userService = users.NewService(userRepo, c.SecretKey, c.AccessTokenValidityDuration)
	app.shiftService = services.NewShiftService(recordStore, logger)
	app.patientService = services.NewPatientService(recordStore, logger)
	app.noteService = services.NewNoteService(recordStore, logger)

	return app, nil
}

// openPostgres opens the configured DSN and applies embedded goose
// migrations. The handle is kept on the App for shutdown.
func (app *App) openPostgres() (*sql.DB, error) {

	db, err := sql.Open("pgx", app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	app.db = db
	return db, nil
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

	s, err := httpapi.NewServer(app.config.EndpointAddr, app.logger,
		app.userService, app.shiftService, app.patientService, app.noteService,
		app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "backend", app.config.StorageBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, err.Error())
		}
	}
}
