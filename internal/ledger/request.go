// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/postforge/postforge-go/internal/model"
	"github.com/postforge/postforge-go/internal/util"
)

// RequestLedger records end-user requests. Its rows double as the data
// source for rate-limiting decisions made by the caller; the ledger only
// stores and serves trailing-window counts, it does not enforce limits.
type RequestLedger struct {
	db  *sql.DB
	loc *time.Location
}

// NewRequestLedger creates a request ledger.
func NewRequestLedger(db *sql.DB, loc *time.Location) *RequestLedger {
	return &RequestLedger{db: db, loc: loc}
}

// Record appends one request event and returns its id.
func (l *RequestLedger) Record(ctx context.Context, clientID, kind, topic, origin string, success bool) (int64, error) {
	if clientID == "" {
		return 0, model.NewValidationError("client_id", "must not be empty")
	}
	// Characters, not bytes, to match the schema's length() check.
	if utf8.RuneCountInString(topic) > model.MaxTopicLength {
		return 0, model.NewValidationError("topic", fmt.Sprintf("must be at most %d characters", model.MaxTopicLength))
	}

	now := time.Now()
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO user_requests (client_id, request_type, topic, ip_address, timestamp, success, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		clientID, kind,
		util.NullStringFromValue(topic),
		util.NullStringFromValue(origin),
		now.UTC(), success,
		now.In(l.loc).Format(dateLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("recording request event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading request event id: %w", err)
	}
	return id, nil
}

// CountSince returns the number of requests a client made since the given
// time. Rate-limit enforcement based on this count is the caller's job.
func (l *RequestLedger) CountSince(ctx context.Context, clientID string, since time.Time) (int64, error) {
	var n int64
	err := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_requests
		WHERE client_id = ? AND timestamp >= ?`,
		clientID, since.UTC(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting client requests: %w", err)
	}
	return n, nil
}

// RecentTopics returns the most requested topics since the given time,
// lower-cased and ordered by request count descending.
func (l *RequestLedger) RecentTopics(ctx context.Context, since time.Time, limit int) ([]model.TopicCount, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT LOWER(topic), COUNT(*) AS n
		FROM user_requests
		WHERE topic IS NOT NULL AND timestamp >= ?
		GROUP BY LOWER(topic)
		ORDER BY n DESC
		LIMIT ?`, since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent topics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var topics []model.TopicCount
	for rows.Next() {
		var tc model.TopicCount
		if err := rows.Scan(&tc.Topic, &tc.Count); err != nil {
			return nil, fmt.Errorf("scanning topic count: %w", err)
		}
		topics = append(topics, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating topic counts: %w", err)
	}
	return topics, nil
}
