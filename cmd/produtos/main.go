package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/luizgft/produtos-api/internal/app"
	"github.com/luizgft/produtos-api/internal/i18n"
	"github.com/luizgft/produtos-api/internal/observability"
	"github.com/luizgft/produtos-api/internal/platform/db"
	"github.com/luizgft/produtos-api/internal/platform/httpx"
	"github.com/luizgft/produtos-api/internal/platform/redisclient"
	"github.com/luizgft/produtos-api/internal/products"
	"github.com/luizgft/produtos-api/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("produtos api", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	checks := map[string]app.Check{}

	var repo products.Repository
	switch cfg.StorageDriver {
	case app.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		repo = products.NewMemoryRepository()
	default:
		pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{
			MaxConns:        cfg.PGMaxConns,
			MaxConnIdleTime: cfg.PGMaxIdle,
		})
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		if cfg.DBAutoMigrate {
			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		repo = products.NewRepository(pool)
		checks["postgres"] = pool.Ping
	}

	metrics := observability.NewMetrics()

	serviceCfg := products.ServiceConfig{Logger: logger, Metrics: metrics}
	var jobHandler *jobs.Handler
	if cfg.EventsEnabled {
		redisOpts := redisclient.Options{URL: cfg.RedisURL, Addr: cfg.RedisAddr, DialTimeout: 5 * time.Second}
		redisClient, err := redisclient.New(ctx, redisOpts)
		if err != nil {
			logger.Warn("redis unavailable, change events disabled", slog.Any("error", err))
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }

			asynqOpt, err := redisOpts.AsynqOpt()
			if err != nil {
				return fmt.Errorf("asynq options: %w", err)
			}
			publisher := jobs.NewClient(asynqOpt)
			defer func() {
				if err := publisher.Close(); err != nil {
					logger.Warn("asynq client close", slog.Any("error", err))
				}
			}()
			serviceCfg.Publisher = publisher

			inspector := asynq.NewInspector(asynqOpt)
			defer func() {
				if err := inspector.Close(); err != nil {
					logger.Warn("inspector close", slog.Any("error", err))
				}
			}()
			jobHandler = jobs.NewHandler(inspector, logger)
		}
	}

	service := products.NewService(repo, serviceCfg)
	responder := httpx.ErrorResponder{Logger: logger, Localize: products.LocalizeError(i18n.New())}
	productsHandler := products.NewHandler(logger, service, responder)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		ProductsHandler: productsHandler,
		JobHandler:      jobHandler,
		HealthHandler:   app.NewHealthHandler(logger, checks),
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("storage", cfg.StorageDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
