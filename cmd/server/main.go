package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"finance-ledger-go/internal/auth"
	"finance-ledger-go/internal/config"
	"finance-ledger-go/internal/database"
	httpserver "finance-ledger-go/internal/http"
	"finance-ledger-go/internal/jobs"
	"finance-ledger-go/internal/ledger"
	"finance-ledger-go/internal/service"
	"finance-ledger-go/internal/store"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	if logLevel(cfg.LogLevel) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		logger.Error("invalid token configuration", "error", err)
		os.Exit(1)
	}

	st := store.New(db)
	engine := ledger.New(st, ledger.Options{StoreTimeout: cfg.StoreTimeout, LockRetries: cfg.LockRetries}, logger)

	var scheduler *jobs.Scheduler
	if cfg.ReconcileSchedule != "" {
		scheduler = jobs.NewScheduler(engine, logger, jobs.Options{
			Schedule: cfg.ReconcileSchedule,
			Repair:   cfg.ReconcileRepair,
		})
		if err := scheduler.Start(); err != nil {
			os.Exit(1)
		}
	}

	r := httpserver.NewServer(cfg, httpserver.Deps{
		Users:        service.NewUserService(st, engine, logger),
		Accounts:     service.NewAccountService(st, engine, logger),
		Transactions: service.NewTransactionService(st, engine, logger),
		Insights:     service.NewInsightsService(st),
		Tokens:       tokens,
		Logger:       logger,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	logger.Info("server stopped")
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
