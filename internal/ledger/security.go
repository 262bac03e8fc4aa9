// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/postforge/postforge-go/internal/model"
	"github.com/postforge/postforge-go/internal/util"
)

// SecurityLog records security-relevant incidents: failed admin logins,
// rate-limit violations, rejected service tokens. Purely observational.
type SecurityLog struct {
	db *sql.DB
}

// NewSecurityLog creates a security event log.
func NewSecurityLog(db *sql.DB) *SecurityLog {
	return &SecurityLog{db: db}
}

// Record appends one security event.
func (l *SecurityLog) Record(ctx context.Context, kind, clientID, details string) error {
	if kind == "" {
		return model.NewValidationError("event_type", "must not be empty")
	}
	if clientID == "" {
		clientID = "unknown"
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO security_events (event_type, client_id, details, timestamp)
		VALUES (?, ?, ?, ?)`,
		kind, clientID, util.NullStringFromValue(details), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording security event: %w", err)
	}
	return nil
}

// RecentEvents returns security events recorded since the given time,
// newest first.
func (l *SecurityLog) RecentEvents(ctx context.Context, since time.Time) ([]model.SecurityEvent, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, event_type, client_id, details, timestamp
		FROM security_events
		WHERE timestamp >= ?
		ORDER BY timestamp DESC`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("listing security events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.SecurityEvent
	for rows.Next() {
		var e model.SecurityEvent
		if err := rows.Scan(&e.ID, &e.Kind, &e.ClientID, &e.Details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning security event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating security events: %w", err)
	}
	return events, nil
}

// CountByKind returns the number of events of one kind since the given
// time. Used for health checks (failed logins, rate-limit hits).
func (l *SecurityLog) CountByKind(ctx context.Context, kind string, since time.Time) (int64, error) {
	var n int64
	err := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM security_events
		WHERE event_type = ? AND timestamp >= ?`,
		kind, since.UTC(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting security events: %w", err)
	}
	return n, nil
}
