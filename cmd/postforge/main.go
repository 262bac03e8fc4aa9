// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/postforge/postforge-go/internal/analytics"
	"github.com/postforge/postforge-go/internal/config"
	"github.com/postforge/postforge-go/internal/handler"
	"github.com/postforge/postforge-go/internal/ledger"
	"github.com/postforge/postforge-go/internal/logging"
	"github.com/postforge/postforge-go/internal/middleware"
	"github.com/postforge/postforge-go/internal/retention"
	"github.com/postforge/postforge-go/internal/scheduler"
	"github.com/postforge/postforge-go/internal/session"
	"github.com/postforge/postforge-go/internal/store"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db); err != nil {
		return err
	}

	securityLog := ledger.NewSecurityLog(db)

	// WARN+ records are mirrored into the security event log.
	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})
	logger := slog.New(logging.NewSecurityLogHandler(textHandler, securityLog))
	slog.SetDefault(logger)

	logger.Info("starting postforge",
		"version", appVersion,
		"commit", appGitCommit,
		"env", cfg.Env,
		"db", cfg.DBPath,
		"timezone", cfg.Timezone,
	)

	usageLedger := ledger.NewUsageLedger(db, loc)
	requestLedger := ledger.NewRequestLedger(db, loc)
	feedbackStore := ledger.NewFeedbackStore(db, loc)
	sessionStore := session.New(db, cfg.SessionIdleTimeout())
	analyticsSvc := analytics.New(db)

	janitor := retention.New(db, logger, retention.Windows{
		Requests: time.Duration(cfg.RetentionRequestDays) * 24 * time.Hour,
		Usage:    time.Duration(cfg.RetentionUsageDays) * 24 * time.Hour,
		Security: time.Duration(cfg.RetentionSecurityDays) * 24 * time.Hour,
		Sessions: time.Duration(cfg.RetentionSessionDays) * 24 * time.Hour,
	})

	sched := scheduler.New(janitor, logger, cfg.JanitorSchedule)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	h := handler.New(handler.Deps{
		Usage:     usageLedger,
		Requests:  requestLedger,
		Security:  securityLog,
		Feedback:  feedbackStore,
		Sessions:  sessionStore,
		Analytics: analyticsSvc,
		DB:        db,
		Location:  loc,
		AdminHash: cfg.AdminPasswordHash,
		Logger:    logger,
	})

	rateLimiter := middleware.NewRateLimiter(requestLedger, securityLog, loc, middleware.RateLimitConfig{
		PerHour: cfg.RateLimitPerHour,
		PerDay:  cfg.RateLimitPerDay,
		RPS:     cfg.RateLimitRPS,
		Burst:   cfg.RateLimitBurst,
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/health", h.Health)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.ServiceTokenAuth(cfg.ServiceToken, securityLog))
		api.Use(rateLimiter.Middleware())
		h.Routes(api)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ServerAddr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
