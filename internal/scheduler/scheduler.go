// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the retention janitor on a cron schedule.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/postforge/postforge-go/internal/retention"
)

// janitorTimeout bounds one janitor run; a full prune is a handful of
// range deletes and should finish well within this.
const janitorTimeout = 10 * time.Minute

// Scheduler triggers the retention janitor on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	janitor *retention.Janitor
	logger  *slog.Logger
	spec    string
}

// New creates a scheduler. spec is a standard five-field cron expression.
func New(janitor *retention.Janitor, logger *slog.Logger, spec string) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		janitor: janitor,
		logger:  logger,
		spec:    spec,
	}
}

// Start registers the janitor job and begins the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.runJanitor)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "janitor_schedule", s.spec)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunJanitorNow triggers one janitor run immediately, outside the schedule.
func (s *Scheduler) RunJanitorNow(ctx context.Context) (retention.Report, error) {
	return s.janitor.Run(ctx)
}

func (s *Scheduler) runJanitor() {
	ctx, cancel := context.WithTimeout(context.Background(), janitorTimeout)
	defer cancel()

	report, err := s.janitor.Run(ctx)
	if err != nil {
		s.logger.Error("scheduled retention run failed", "error", err, "deleted", report.Total())
		return
	}
	s.logger.Debug("scheduled retention run complete", "deleted", report.Total())
}
