// Package server wires configuration, storage, the account service and the
// HTTP API together and runs them until a stop signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/config"
	"github.com/dmitrijs2005/gophaccount/internal/server/httpapi"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophaccount/internal/server/services"
)

// seams for tests
var (
	openDB               = repomanager.OpenPostgres
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config *config.Config
	logger logging.Logger
	sync   func() error
	db     *sql.DB
	server *httpapi.HTTPServer
}

// NewApp connects to the database, applies migrations and builds the HTTP
// server. Any failure here is fatal for the process.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	zl, err := logging.New(c.LogLevel)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, c, zl, zl.Sync)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, sync func() error) (*App, error) {

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	us := services.NewUserService(db, rm, c, logger)
	srv := httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, us, c.AllowedOrigins, c.ShutdownTimeout)

	return &App{config: c, logger: logger, sync: sync, db: db, server: srv}, nil
}

// initSignalHandler cancels on SIGINT, SIGTERM or SIGQUIT. The returned stop
// unregisters the signals and waits for the watcher goroutine to exit.
func (app *App) initSignalHandler(cancelFunc context.CancelFunc) (stop func()) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-sigs:
			cancelFunc()
		case <-quit:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(quit)
		<-done
	}
}

// Run serves until ctx is cancelled or a stop signal arrives. The HTTP server
// drains first, then the database pool is closed.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	stopSignals := app.initSignalHandler(cancelFunc)
	defer stopSignals()

	runErr := app.server.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "http server stopped with error", "error", runErr)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database failed", "error", err)
	}

	app.logger.Info(ctx, "App stopped")

	if app.sync != nil {
		_ = app.sync()
	}

	return runErr
}
