package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/instamunch/instamunch-api/internal/app"
	"github.com/instamunch/instamunch-api/internal/auth"
	"github.com/instamunch/instamunch-api/internal/authz"
	"github.com/instamunch/instamunch-api/internal/inventory"
	"github.com/instamunch/instamunch-api/internal/observability"
	"github.com/instamunch/instamunch-api/internal/ops"
	"github.com/instamunch/instamunch-api/internal/platform/cache"
	"github.com/instamunch/instamunch-api/internal/platform/db"
	"github.com/instamunch/instamunch-api/internal/users"
	"github.com/instamunch/instamunch-api/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if cfg.DBAutoMigrate {
		applied, err := db.Migrate(ctx, dbpool)
		if err != nil {
			logger.Error("apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("migrations applied", slog.Any("versions", applied))
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	var auditPort inventory.AuditPort
	if cfg.AuditEnabled {
		jobClient := jobs.NewClient(redisOpts)
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		auditPort = jobClient
	}

	identityCache := auth.NewIdentityCache(redisClient, cfg.AuthCacheTTL)

	usersService := users.NewService(users.NewRepository(dbpool), auditPort, logger)
	usersService.SetInvalidator(identityCache)
	inventoryService := inventory.NewService(inventory.NewRepository(dbpool), auditPort, logger)

	metrics := observability.NewMetrics()
	registry := ops.NewRegistry(
		ops.Observe(metrics),
		ops.Logging(logger),
		ops.RequirePermissions(authz.DefaultMatrix()),
	)
	if err := inventory.Register(registry, inventoryService); err != nil {
		logger.Error("register inventory operations", slog.Any("error", err))
		os.Exit(1)
	}
	if err := users.Register(registry, usersService); err != nil {
		logger.Error("register user operations", slog.Any("error", err))
		os.Exit(1)
	}

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:     logger,
		Config:     cfg,
		Verifier:   auth.NewVerifier(cfg.JWTSecret),
		Resolver:   auth.NewResolver(usersService, identityCache, logger),
		Operations: ops.NewHandler(registry, logger, cfg.AuthzExposeDetails),
		JobHandler: jobs.NewHandler(inspector, logger),
		Metrics:    metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
