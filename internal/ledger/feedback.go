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

// FeedbackStore records per-topic user ratings. Entries are retained
// indefinitely; the retention janitor never deletes them.
type FeedbackStore struct {
	db  *sql.DB
	loc *time.Location
}

// NewFeedbackStore creates a feedback store.
func NewFeedbackStore(db *sql.DB, loc *time.Location) *FeedbackStore {
	return &FeedbackStore{db: db, loc: loc}
}

// Record appends one feedback entry. The rating is validated before any
// write; out-of-range ratings are rejected with a ValidationError.
func (s *FeedbackStore) Record(ctx context.Context, clientID, topic string, rating int, feedbackText string, contentVariation *int64) (int64, error) {
	if clientID == "" {
		return 0, model.NewValidationError("client_id", "must not be empty")
	}
	if topic == "" {
		return 0, model.NewValidationError("topic", "must not be empty")
	}
	if rating < model.RatingMin || rating > model.RatingMax {
		return 0, model.NewValidationError("rating", fmt.Sprintf("must be between %d and %d", model.RatingMin, model.RatingMax))
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO user_feedback (client_id, topic, rating, feedback_text, content_variation, timestamp, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		clientID, topic, rating,
		util.NullStringFromValue(feedbackText),
		util.NullInt64FromPtr(contentVariation),
		now.UTC(),
		now.In(s.loc).Format(dateLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("recording feedback: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading feedback id: %w", err)
	}
	return id, nil
}

// Distribution returns per-rating counts for feedback recorded since the
// given time. Ratings with no entries are present with a zero count.
func (s *FeedbackStore) Distribution(ctx context.Context, since time.Time) (map[int]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rating, COUNT(*)
		FROM user_feedback
		WHERE timestamp >= ?
		GROUP BY rating`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("loading feedback distribution: %w", err)
	}
	defer func() { _ = rows.Close() }()

	dist := make(map[int]int64, model.RatingMax)
	for r := model.RatingMin; r <= model.RatingMax; r++ {
		dist[r] = 0
	}
	for rows.Next() {
		var rating int
		var n int64
		if err := rows.Scan(&rating, &n); err != nil {
			return nil, fmt.Errorf("scanning feedback distribution: %w", err)
		}
		dist[rating] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feedback distribution: %w", err)
	}
	return dist, nil
}
