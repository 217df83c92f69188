// Package server wires storage, services and HTTP handlers together and runs
// the API server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayush/greenprompt/backend/internal/auth"
	"github.com/ayush/greenprompt/backend/internal/config"
	"github.com/ayush/greenprompt/backend/internal/logging"
	"github.com/ayush/greenprompt/backend/internal/optimize"
	"github.com/ayush/greenprompt/backend/internal/savings"
	"github.com/ayush/greenprompt/backend/internal/stats"
	"github.com/ayush/greenprompt/backend/internal/store"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg    *config.Config
	logger logging.Logger
	db     *store.DB
	rdb    *redis.Client
	agg    *stats.Aggregator
	router http.Handler
}

// NewApp opens the database, applies migrations, connects to Redis when
// configured and builds the router.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := store.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.Migrate(ctx, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migrate: %w", err)
	}

	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	if rdb == nil {
		logger.Info(ctx, "redis not configured, login throttling disabled")
	}

	users := store.NewUserStore(db, db.Dialect)
	opts := store.NewOptimizationStore(db, db.Dialect)
	calc := savings.NewCalculator(cfg.GridIntensity)

	authSvc := auth.NewService(users, 0)
	tokens := auth.NewTokenIssuer(cfg.SessionSecret, cfg.SessionTTL)
	throttle := auth.NewThrottle(rdb, cfg.LoginMaxAttempts, cfg.LoginWindow)
	agg := stats.NewAggregator(users, opts, calc)

	router := NewRouter(RouterDeps{
		Logger:     logger,
		CORSOrigin: cfg.CORSOrigin,
		Tokens:     tokens,
		Users:      authSvc,
		Auth:       auth.NewHandler(authSvc, tokens, throttle, logger, cfg.CookieSecure),
		Optimize:   optimize.NewHandler(optimize.NewService(opts, calc, cfg.StrictTokens, logger), logger),
		Stats:      stats.NewHandler(agg, logger),
	})

	return &App{cfg: cfg, logger: logger, db: db, rdb: rdb, agg: agg, router: router}, nil
}

func (a *App) Handler() http.Handler { return a.router }

// Aggregator exposes the stats rollup for the publish-stats command.
func (a *App) Aggregator() *stats.Aggregator { return a.agg }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "backend listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info(context.Background(), "shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	errs = append(errs, a.db.Close())
	return errors.Join(errs...)
}
