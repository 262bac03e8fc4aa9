// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package analytics provides derived, read-only aggregations over the
// event ledgers. Every query recomputes from current ledger contents, so
// results are always consistent with the latest writes.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
)

// DailyUsageSummary aggregates one calendar day of user requests.
type DailyUsageSummary struct {
	Date               string  `json:"date"`
	TotalRequests      int64   `json:"total_requests"`
	UniqueUsers        int64   `json:"unique_users"`
	SuccessfulRequests int64   `json:"successful_requests"`
	SuccessRate        float64 `json:"success_rate"` // percentage, 0-100, two decimals
}

// APIUsageSummary aggregates one provider's calls for one calendar day.
type APIUsageSummary struct {
	Provider        string `json:"api_name"`
	Date            string `json:"date"`
	TotalCalls      int64  `json:"total_calls"`
	SuccessfulCalls int64  `json:"successful_calls"`
	FailedCalls     int64  `json:"failed_calls"`
}

// FeedbackSummary aggregates one calendar day of user feedback.
// Positive means rating >= 4, negative means rating <= 2; a rating of 3
// counts toward neither.
type FeedbackSummary struct {
	Date             string  `json:"date"`
	AverageRating    float64 `json:"average_rating"`
	TotalFeedback    int64   `json:"total_feedback"`
	PositiveFeedback int64   `json:"positive_feedback"`
	NegativeFeedback int64   `json:"negative_feedback"`
}

// Service computes the derived analytics views.
type Service struct {
	db *sql.DB
}

// New creates an analytics service.
func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// DailyUsage returns the daily usage summary for a calendar date.
// unique_users counts distinct client_id values; no deduplication beyond
// the identifier is attempted.
func (s *Service) DailyUsage(ctx context.Context, date string) (DailyUsageSummary, error) {
	summary := DailyUsageSummary{Date: date}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT client_id),
			COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0),
			CASE WHEN COUNT(*) = 0 THEN 0.0
			     ELSE ROUND(100.0 * SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) / COUNT(*), 2)
			END
		FROM user_requests
		WHERE date = ?`, date,
	).Scan(&summary.TotalRequests, &summary.UniqueUsers, &summary.SuccessfulRequests, &summary.SuccessRate)
	if err != nil {
		return DailyUsageSummary{}, fmt.Errorf("computing daily usage summary: %w", err)
	}
	return summary, nil
}

// APIUsage returns per-provider call summaries for a calendar date,
// ordered by provider name.
func (s *Service) APIUsage(ctx context.Context, date string) ([]APIUsageSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			api_name,
			COUNT(*),
			COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0)
		FROM api_usage
		WHERE date = ?
		GROUP BY api_name
		ORDER BY api_name`, date)
	if err != nil {
		return nil, fmt.Errorf("computing api usage summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []APIUsageSummary
	for rows.Next() {
		s := APIUsageSummary{Date: date}
		if err := rows.Scan(&s.Provider, &s.TotalCalls, &s.SuccessfulCalls); err != nil {
			return nil, fmt.Errorf("scanning api usage summary: %w", err)
		}
		s.FailedCalls = s.TotalCalls - s.SuccessfulCalls
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating api usage summary: %w", err)
	}
	return summaries, nil
}

// Feedback returns the feedback summary for a calendar date.
func (s *Service) Feedback(ctx context.Context, date string) (FeedbackSummary, error) {
	summary := FeedbackSummary{Date: date}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(AVG(rating), 0),
			COUNT(*),
			COALESCE(SUM(CASE WHEN rating >= 4 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN rating <= 2 THEN 1 ELSE 0 END), 0)
		FROM user_feedback
		WHERE date = ?`, date,
	).Scan(&summary.AverageRating, &summary.TotalFeedback, &summary.PositiveFeedback, &summary.NegativeFeedback)
	if err != nil {
		return FeedbackSummary{}, fmt.Errorf("computing feedback summary: %w", err)
	}
	return summary, nil
}
