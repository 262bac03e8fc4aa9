package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/postforge/postforge-go/internal/ledger"
	"github.com/postforge/postforge-go/internal/logging"
	"github.com/postforge/postforge-go/internal/model"
	"github.com/postforge/postforge-go/internal/testutil"
)

func newTestRateLimiter(t *testing.T, cfg RateLimitConfig) (*RateLimiter, *ledger.RequestLedger, *ledger.SecurityLog) {
	t.Helper()
	db := testutil.TestDB(t)
	requests := ledger.NewRequestLedger(db, time.UTC)
	security := ledger.NewSecurityLog(db)
	return NewRateLimiter(requests, security, time.UTC, cfg), requests, security
}

func doRequest(handler http.Handler, clientID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/requests", nil)
	req.Header.Set("X-Client-ID", clientID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl, _, _ := newTestRateLimiter(t, RateLimitConfig{PerHour: 10, PerDay: 50, RPS: 100, Burst: 100})
	handler := rl.Middleware()(okHandler())

	for i := 0; i < 5; i++ {
		if rec := doRequest(handler, "client-1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}

func TestRateLimiter_HourlyLimit(t *testing.T) {
	rl, requests, security := newTestRateLimiter(t, RateLimitConfig{PerHour: 2, PerDay: 50, RPS: 100, Burst: 100})
	handler := rl.Middleware()(okHandler())
	ctx := context.Background()

	// The ledger already holds this hour's quota for the client.
	for i := 0; i < 2; i++ {
		if _, err := requests.Record(ctx, "client-1", model.RequestKindContentGeneration, "topic", "", true); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}

	rec := doRequest(handler, "client-1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}

	if n := waitForEvent(t, security, model.SecurityEventRateLimitExceeded); n != 1 {
		t.Errorf("rate_limit_exceeded events = %d, want 1", n)
	}

	// Other clients are unaffected.
	if rec := doRequest(handler, "client-2"); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

func TestRateLimiter_SingleEventPerRejection(t *testing.T) {
	db := testutil.TestDB(t)
	requests := ledger.NewRequestLedger(db, time.UTC)
	security := ledger.NewSecurityLog(db)
	rl := NewRateLimiter(requests, security, time.UTC, RateLimitConfig{PerHour: 0, PerDay: 50, RPS: 100, Burst: 100})
	handler := rl.Middleware()(okHandler())

	// Install the production logger wiring: WARN records are mirrored
	// into the security log. A rejection both logs and records, which
	// must still produce exactly one event row.
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	prev := slog.Default()
	slog.SetDefault(slog.New(logging.NewSecurityLogHandler(inner, security)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	rec := doRequest(handler, "client-1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}

	if n := waitForEvent(t, security, model.SecurityEventRateLimitExceeded); n != 1 {
		t.Errorf("rate_limit_exceeded events = %d, want exactly 1", n)
	}
	total, err := security.CountByKind(context.Background(), model.SecurityEventSystemAlert, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("CountByKind error: %v", err)
	}
	if total != 0 {
		t.Errorf("system_alert events = %d, want 0 (rejection mirrored in addition to explicit record)", total)
	}
}

func TestRateLimiter_BurstLimit(t *testing.T) {
	rl, _, _ := newTestRateLimiter(t, RateLimitConfig{PerHour: 1000, PerDay: 1000, RPS: 1, Burst: 2})
	handler := rl.Middleware()(okHandler())

	// The in-process limiter trips before the ledger is consulted.
	got429 := false
	for i := 0; i < 5; i++ {
		if rec := doRequest(handler, "client-1"); rec.Code == http.StatusTooManyRequests {
			got429 = true
			break
		}
	}
	if !got429 {
		t.Error("burst of 5 requests never hit the burst limit of 2")
	}
}
