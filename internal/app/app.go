package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/bookshelf-labs/bookshelf-api/internal/config"
	"github.com/bookshelf-labs/bookshelf-api/internal/health"
	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	DB            *gorm.DB
	Redis         redis.UniversalClient
	Readiness     *health.ProbeRunner
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	readiness *health.ProbeRunner,
) *App {
	return &App{
		Config:        cfg,
		Logger:        logger,
		Server:        server,
		Observability: runtime,
		DB:            db,
		Redis:         redisClient,
		Readiness:     readiness,
	}
}

// Run serves until ctx is cancelled or the listener fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return err
	}
	a.Logger.Info("server starting", "addr", ln.Addr().String(), "env", a.Config.Env)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.Server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return errors.Join(err, a.Shutdown(context.Background()))
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received")
		return a.Shutdown(context.Background())
	}
}

// Shutdown drains HTTP first, then flushes telemetry, then closes Redis and the database.
func (a *App) Shutdown(ctx context.Context) error {
	totalCtx, totalCancel := context.WithTimeout(ctx, orDefault(a.Config.ShutdownTimeout, 20*time.Second))
	defer totalCancel()

	var errs []error
	httpCtx, httpCancel := context.WithTimeout(totalCtx, orDefault(a.Config.ShutdownHTTPDrainTimeout, 10*time.Second))
	if err := a.Server.Shutdown(httpCtx); err != nil {
		a.Logger.Error("failed to shutdown http server", "error", err)
		errs = append(errs, err)
	}
	httpCancel()

	if a.Observability != nil {
		obsCtx, obsCancel := context.WithTimeout(totalCtx, orDefault(a.Config.ShutdownObservabilityTimeout, 8*time.Second))
		if err := a.Observability.Shutdown(obsCtx); err != nil {
			a.Logger.Error("failed to shutdown observability", "error", err)
			errs = append(errs, err)
		}
		obsCancel()
	}

	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("failed to close redis client", "error", err)
			errs = append(errs, err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.Logger.Error("failed to close database connection", "error", err)
				errs = append(errs, err)
			}
		}
	}
	a.Logger.Info("shutdown complete")
	return errors.Join(errs...)
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
