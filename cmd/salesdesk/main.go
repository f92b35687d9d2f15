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

	"github.com/salesdesk-erp/salesdesk/internal/app"
	"github.com/salesdesk-erp/salesdesk/internal/customers"
	"github.com/salesdesk-erp/salesdesk/internal/draft"
	"github.com/salesdesk-erp/salesdesk/internal/platform/cache"
	"github.com/salesdesk-erp/salesdesk/internal/platform/db"
	"github.com/salesdesk-erp/salesdesk/internal/salesapi"
	"github.com/salesdesk-erp/salesdesk/jobs"
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	apiClient := salesapi.New(cfg.SalesAPIBaseURL, nil, cfg.SalesAPITimeout)

	customersRepo := customers.NewRepository(dbpool)
	addressCache := customers.NewAddressBookCache(redisClient)
	customersService := customers.NewService(customersRepo, addressCache)
	customersHandler := customers.NewHandler(logger, customersService)
	directory := customers.NewDirectory(customersService)

	notifier := jobs.NewNotifier(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := notifier.Close(); err != nil {
			logger.Warn("notifier close", slog.Any("error", err))
		}
	}()

	registry := draft.NewRegistry(draft.RegistryParams{
		API:       apiClient,
		Directory: directory,
		Notifier:  notifier,
		Logger:    logger,
		Config: draft.SessionConfig{
			ShortWindow:   cfg.AutosaveShortWindow,
			LongWindow:    cfg.AutosaveLongWindow,
			SummaryWindow: cfg.SummaryWindow,
		},
		Redis:   redisClient,
		IdleTTL: cfg.SessionIdleTTL,
	})
	go registry.RunJanitor(ctx, 10*time.Minute)

	draftHandler := draft.NewHandler(logger, registry)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CustomersHandler: customersHandler,
		DraftHandler:     draftHandler,
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
