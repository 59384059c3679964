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

	"github.com/lnk-io/lnk-console/internal/app"
	"github.com/lnk-io/lnk-console/internal/audit"
	"github.com/lnk-io/lnk-console/internal/catalog"
	"github.com/lnk-io/lnk-console/internal/observability"
	"github.com/lnk-io/lnk-console/internal/platform/cache"
	"github.com/lnk-io/lnk-console/internal/platform/db"
	"github.com/lnk-io/lnk-console/internal/roles"
	"github.com/lnk-io/lnk-console/internal/shared"
	"github.com/lnk-io/lnk-console/internal/teams"
	"github.com/lnk-io/lnk-console/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionTTL)
	authz := shared.Authorizer{Logger: logger}
	metrics := observability.NewMetrics()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	asynqClient := asynq.NewClient(redisOpts)
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()
	recorder := audit.NewPublisher(asynqClient, logger, metrics)

	catalogStore := catalog.NewStore(redisClient, logger, catalog.Default, cfg.CatalogCacheTTL)
	catalogHandler := catalog.NewHandler(logger, catalogStore)

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo, catalog.Default(), recorder, logger)
	teamRolesHandler := roles.NewTeamHandler(logger, rolesService, catalogStore, authz)
	adminRolesHandler := roles.NewAdminHandler(logger, rolesService, catalogStore, authz)

	teamsRepo := teams.NewRepository(pool)
	teamsService := teams.NewService(teamsRepo, rolesService, recorder, logger)
	teamsHandler := teams.NewHandler(logger, teamsService, authz)

	auditRepo := audit.NewRepository(pool)
	auditHandler := audit.NewHandler(logger, auditRepo, authz)

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CatalogHandler:    catalogHandler,
		TeamRolesHandler:  teamRolesHandler,
		AdminRolesHandler: adminRolesHandler,
		TeamsHandler:      teamsHandler,
		AuditHandler:      auditHandler,
		JobsHandler:       jobsHandler,
		Authz:             authz,
		Metrics:           metrics,
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
