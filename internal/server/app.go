// Package server initializes and runs the record service: it opens and
// migrates PostgreSQL, then serves gRPC and Prometheus metrics until it is
// told to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/stampcard/internal/logging"
	"github.com/dmitrijs2005/stampcard/internal/server/config"
	"github.com/dmitrijs2005/stampcard/internal/server/metrics"
	"github.com/dmitrijs2005/stampcard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/stampcard/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/stampcard/internal/server/grpc"
)

// seams for tests
var (
	openDB         = repomanager.OpenDB
	newRepoManager = repomanager.NewPostgresRepositoryManager
	logOutput      io.Writer = os.Stdout
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	metrics     *metrics.Metrics
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(logOutput, level)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	logger.Info(ctx, "Database ready")

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		userService: services.NewUserService(db, rm),
		metrics:     metrics.New(),
	}, nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then waits up
// to ShutdownTimeout for the servers to stop.
func (app *App) Run(ctx context.Context) error {

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Warn(context.Background(), "closing database", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.metrics)
		return s.Run(gctx)
	})

	if app.config.MetricsAddr != "" {
		g.Go(func() error {
			return app.metrics.Serve(gctx, app.config.MetricsAddr, app.logger)
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-gctx.Done():
	}

	select {
	case err := <-done:
		app.logger.Info(context.Background(), "App stopped")
		return err
	case <-time.After(app.config.ShutdownTimeout):
		return errors.New("shutdown timed out")
	}
}
