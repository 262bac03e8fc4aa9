// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/postforge/postforge-go/internal/testutil"
)

const testDate = "2026-08-20"

func insertRequest(t *testing.T, db *sql.DB, clientID string, success bool) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO user_requests (client_id, request_type, timestamp, success, date)
		VALUES (?, 'content_generation', ?, ?, ?)`,
		clientID, time.Now().UTC(), success, testDate)
	if err != nil {
		t.Fatalf("inserting request: %v", err)
	}
}

func insertUsage(t *testing.T, db *sql.DB, provider string, success bool) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO api_usage (api_name, timestamp, success, date)
		VALUES (?, ?, ?, ?)`,
		provider, time.Now().UTC(), success, testDate)
	if err != nil {
		t.Fatalf("inserting usage: %v", err)
	}
}

func insertFeedback(t *testing.T, db *sql.DB, rating int) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO user_feedback (client_id, topic, rating, timestamp, date)
		VALUES ('client-1', 'topic', ?, ?, ?)`,
		rating, time.Now().UTC(), testDate)
	if err != nil {
		t.Fatalf("inserting feedback: %v", err)
	}
}

func TestDailyUsage(t *testing.T) {
	db := testutil.TestDB(t)
	svc := New(db)
	ctx := context.Background()

	// Three requests, two successful, from two distinct clients.
	insertRequest(t, db, "client-1", true)
	insertRequest(t, db, "client-1", false)
	insertRequest(t, db, "client-2", true)
	// A request on another date must not leak in.
	if _, err := db.Exec(`
		INSERT INTO user_requests (client_id, request_type, timestamp, success, date)
		VALUES ('client-3', 'content_generation', ?, 1, '2026-08-19')`, time.Now().UTC()); err != nil {
		t.Fatalf("inserting request: %v", err)
	}

	summary, err := svc.DailyUsage(ctx, testDate)
	if err != nil {
		t.Fatalf("DailyUsage error: %v", err)
	}

	if summary.Date != testDate {
		t.Errorf("Date = %q, want %q", summary.Date, testDate)
	}
	if summary.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", summary.TotalRequests)
	}
	if summary.UniqueUsers != 2 {
		t.Errorf("UniqueUsers = %d, want 2", summary.UniqueUsers)
	}
	if summary.SuccessfulRequests != 2 {
		t.Errorf("SuccessfulRequests = %d, want 2", summary.SuccessfulRequests)
	}
	if summary.SuccessRate != 66.67 {
		t.Errorf("SuccessRate = %v, want 66.67", summary.SuccessRate)
	}
}

func TestDailyUsage_EmptyDay(t *testing.T) {
	db := testutil.TestDB(t)
	svc := New(db)

	summary, err := svc.DailyUsage(context.Background(), testDate)
	if err != nil {
		t.Fatalf("DailyUsage error: %v", err)
	}
	if summary.TotalRequests != 0 || summary.UniqueUsers != 0 || summary.SuccessfulRequests != 0 {
		t.Errorf("empty day counts = %+v, want zeros", summary)
	}
	if summary.SuccessRate != 0 {
		t.Errorf("SuccessRate = %v on empty day, want 0", summary.SuccessRate)
	}
}

func TestAPIUsage(t *testing.T) {
	db := testutil.TestDB(t)
	svc := New(db)

	insertUsage(t, db, "gemini", true)
	insertUsage(t, db, "gemini", true)
	insertUsage(t, db, "gemini", false)
	insertUsage(t, db, "anthropic", true)

	summaries, err := svc.APIUsage(context.Background(), testDate)
	if err != nil {
		t.Fatalf("APIUsage error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("APIUsage returned %d summaries, want 2", len(summaries))
	}

	// Ordered by provider name.
	if summaries[0].Provider != "anthropic" {
		t.Errorf("first provider = %q, want anthropic", summaries[0].Provider)
	}
	if summaries[0].TotalCalls != 1 || summaries[0].SuccessfulCalls != 1 || summaries[0].FailedCalls != 0 {
		t.Errorf("anthropic = %+v, want 1 total, 1 success, 0 failed", summaries[0])
	}

	if summaries[1].Provider != "gemini" {
		t.Errorf("second provider = %q, want gemini", summaries[1].Provider)
	}
	if summaries[1].TotalCalls != 3 || summaries[1].SuccessfulCalls != 2 || summaries[1].FailedCalls != 1 {
		t.Errorf("gemini = %+v, want 3 total, 2 success, 1 failed", summaries[1])
	}
}

func TestAPIUsage_EmptyDay(t *testing.T) {
	db := testutil.TestDB(t)
	svc := New(db)

	summaries, err := svc.APIUsage(context.Background(), testDate)
	if err != nil {
		t.Fatalf("APIUsage error: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("APIUsage on empty day returned %d summaries, want 0", len(summaries))
	}
}

func TestFeedback(t *testing.T) {
	db := testutil.TestDB(t)
	svc := New(db)

	// One of each rating: average 3.0, two positive (>=4), two negative (<=2).
	for _, rating := range []int{5, 4, 3, 2, 1} {
		insertFeedback(t, db, rating)
	}

	summary, err := svc.Feedback(context.Background(), testDate)
	if err != nil {
		t.Fatalf("Feedback error: %v", err)
	}
	if summary.TotalFeedback != 5 {
		t.Errorf("TotalFeedback = %d, want 5", summary.TotalFeedback)
	}
	if summary.AverageRating != 3.0 {
		t.Errorf("AverageRating = %v, want 3.0", summary.AverageRating)
	}
	if summary.PositiveFeedback != 2 {
		t.Errorf("PositiveFeedback = %d, want 2", summary.PositiveFeedback)
	}
	if summary.NegativeFeedback != 2 {
		t.Errorf("NegativeFeedback = %d, want 2", summary.NegativeFeedback)
	}
}

func TestFeedback_EmptyDay(t *testing.T) {
	db := testutil.TestDB(t)
	svc := New(db)

	summary, err := svc.Feedback(context.Background(), testDate)
	if err != nil {
		t.Fatalf("Feedback error: %v", err)
	}
	if summary.AverageRating != 0 || summary.TotalFeedback != 0 {
		t.Errorf("empty day summary = %+v, want zeros", summary)
	}
}

func TestViews_RecomputeOnEveryRead(t *testing.T) {
	db := testutil.TestDB(t)
	svc := New(db)
	ctx := context.Background()

	insertRequest(t, db, "client-1", true)
	first, err := svc.DailyUsage(ctx, testDate)
	if err != nil {
		t.Fatalf("DailyUsage error: %v", err)
	}
	if first.TotalRequests != 1 {
		t.Fatalf("TotalRequests = %d, want 1", first.TotalRequests)
	}

	// A new write is visible on the very next read.
	insertRequest(t, db, "client-2", false)
	second, err := svc.DailyUsage(ctx, testDate)
	if err != nil {
		t.Fatalf("DailyUsage error: %v", err)
	}
	if second.TotalRequests != 2 {
		t.Errorf("TotalRequests after second write = %d, want 2", second.TotalRequests)
	}
	if second.SuccessRate != 50.0 {
		t.Errorf("SuccessRate = %v, want 50.0", second.SuccessRate)
	}
}
