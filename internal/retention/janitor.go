// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package retention implements the scheduled cleanup of expired ledger
// rows and stale sessions. User feedback is retained indefinitely and is
// never touched here.
package retention

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Windows holds the per-table retention windows. A row older than its
// table's window is eligible for deletion on the next run.
type Windows struct {
	Requests time.Duration
	Usage    time.Duration
	Security time.Duration
	Sessions time.Duration // applies to inactive sessions only, by last_activity
}

// DefaultWindows returns the stock retention policy: 90 days for the
// request and usage ledgers, 30 days for security events, 7 days for
// inactive sessions.
func DefaultWindows() Windows {
	return Windows{
		Requests: 90 * 24 * time.Hour,
		Usage:    90 * 24 * time.Hour,
		Security: 30 * 24 * time.Hour,
		Sessions: 7 * 24 * time.Hour,
	}
}

// Report holds per-table deletion counts for one janitor run.
type Report struct {
	RequestsDeleted int64
	UsageDeleted    int64
	SecurityDeleted int64
	SessionsDeleted int64
}

// Total returns the number of rows deleted across all tables.
func (r Report) Total() int64 {
	return r.RequestsDeleted + r.UsageDeleted + r.SecurityDeleted + r.SessionsDeleted
}

// Janitor prunes rows past their retention window.
type Janitor struct {
	db      *sql.DB
	logger  *slog.Logger
	windows Windows
}

// New creates a janitor with the given retention windows.
func New(db *sql.DB, logger *slog.Logger, windows Windows) *Janitor {
	return &Janitor{db: db, logger: logger, windows: windows}
}

// Run deletes expired rows from each table. Deletes are bounded by
// timestamp cutoffs computed at entry, so rows inserted while the run is
// in flight are never at risk. Failures are table-scoped: a failed prune
// of one table does not roll back the others; all failures are joined
// into the returned error. Re-running is idempotent.
func (j *Janitor) Run(ctx context.Context) (Report, error) {
	now := time.Now().UTC()
	var report Report
	var errs []error

	prune := func(name, query string, cutoff time.Time, deleted *int64) {
		res, err := j.db.ExecContext(ctx, query, cutoff)
		if err != nil {
			j.logger.Error("retention prune failed", "table", name, "error", err)
			errs = append(errs, fmt.Errorf("pruning %s: %w", name, err))
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			errs = append(errs, fmt.Errorf("pruning %s: %w", name, err))
			return
		}
		*deleted = n
	}

	prune("user_requests",
		"DELETE FROM user_requests WHERE timestamp < ?",
		now.Add(-j.windows.Requests), &report.RequestsDeleted)
	prune("api_usage",
		"DELETE FROM api_usage WHERE timestamp < ?",
		now.Add(-j.windows.Usage), &report.UsageDeleted)
	prune("security_events",
		"DELETE FROM security_events WHERE timestamp < ?",
		now.Add(-j.windows.Security), &report.SecurityDeleted)
	prune("admin_sessions",
		"DELETE FROM admin_sessions WHERE last_activity < ? AND is_active = 0",
		now.Add(-j.windows.Sessions), &report.SessionsDeleted)

	if report.Total() > 0 {
		j.logger.Info("retention cleanup complete",
			"requests_deleted", report.RequestsDeleted,
			"usage_deleted", report.UsageDeleted,
			"security_deleted", report.SecurityDeleted,
			"sessions_deleted", report.SessionsDeleted,
		)
	}

	return report, errors.Join(errs...)
}
