// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package ledger provides append-only event ledgers backing rate limiting,
// monitoring, and analytics. Rows are immutable after insert; destruction
// is solely the retention janitor's responsibility.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/postforge/postforge-go/internal/model"
	"github.com/postforge/postforge-go/internal/util"
)

// dateLayout is the calendar date format of the derived date column.
const dateLayout = "2006-01-02"

// UsageLedger records external API calls, one immutable row per call.
type UsageLedger struct {
	db  *sql.DB
	loc *time.Location
}

// NewUsageLedger creates a usage ledger. The location determines the
// calendar date derived from each event's timestamp.
func NewUsageLedger(db *sql.DB, loc *time.Location) *UsageLedger {
	return &UsageLedger{db: db, loc: loc}
}

// Record appends one usage event and returns its id. The writer never
// reads the row back; consumption happens through the analytics queries.
func (l *UsageLedger) Record(ctx context.Context, provider string, success bool, errorMessage string) (int64, error) {
	if provider == "" {
		return 0, model.NewValidationError("provider", "must not be empty")
	}

	now := time.Now()
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO api_usage (api_name, timestamp, success, error_message, date)
		VALUES (?, ?, ?, ?, ?)`,
		provider, now.UTC(), success,
		util.NullStringFromValue(errorMessage),
		now.In(l.loc).Format(dateLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("recording usage event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading usage event id: %w", err)
	}
	return id, nil
}

// ListByDate returns usage events for a calendar date, optionally filtered
// by provider (empty provider means all providers).
func (l *UsageLedger) ListByDate(ctx context.Context, provider, date string) ([]model.UsageEvent, error) {
	query := `
		SELECT id, api_name, timestamp, success, error_message, date
		FROM api_usage
		WHERE date = ?`
	args := []any{date}
	if provider != "" {
		query += " AND api_name = ?"
		args = append(args, provider)
	}
	query += " ORDER BY timestamp"

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing usage events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.UsageEvent
	for rows.Next() {
		var e model.UsageEvent
		if err := rows.Scan(&e.ID, &e.Provider, &e.Timestamp, &e.Success, &e.ErrorMessage, &e.Date); err != nil {
			return nil, fmt.Errorf("scanning usage event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating usage events: %w", err)
	}
	return events, nil
}

// DailyCounts returns the number of successful calls per provider for a
// calendar date. Used by the external caller to track provider quotas.
func (l *UsageLedger) DailyCounts(ctx context.Context, date string) (map[string]int64, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT api_name, COUNT(*)
		FROM api_usage
		WHERE date = ? AND success = 1
		GROUP BY api_name`, date)
	if err != nil {
		return nil, fmt.Errorf("counting daily usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int64)
	for rows.Next() {
		var provider string
		var n int64
		if err := rows.Scan(&provider, &n); err != nil {
			return nil, fmt.Errorf("scanning daily usage count: %w", err)
		}
		counts[provider] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily usage counts: %w", err)
	}
	return counts, nil
}
