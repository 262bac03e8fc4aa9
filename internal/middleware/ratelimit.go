package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/postforge/postforge-go/internal/ledger"
	"github.com/postforge/postforge-go/internal/model"
)

// maxTrackedClients caps the in-process limiter cache before it is reset.
const maxTrackedClients = 10000

// RateLimitConfig holds per-client admission limits.
type RateLimitConfig struct {
	// PerHour is the maximum requests per client since the start of the
	// current hour; PerDay since the start of the current day.
	PerHour int
	PerDay  int
	// RPS and Burst configure the in-process limiter checked before the
	// ledger is consulted.
	RPS   float64
	Burst int
}

// RateLimiter admits or rejects requests per client. The request ledger
// stores and serves the trailing-window counts; the enforcement decision
// is made here, as the ledger's caller. Violations are recorded in the
// security event log and answered with 429.
type RateLimiter struct {
	burst    *limiterCache[string]
	requests *ledger.RequestLedger
	security *ledger.SecurityLog
	loc      *time.Location
	cfg      RateLimitConfig
}

// NewRateLimiter creates a rate limiter backed by the request ledger.
func NewRateLimiter(requests *ledger.RequestLedger, security *ledger.SecurityLog, loc *time.Location, cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		burst:    newLimiterCache[string](cfg.RPS, cfg.Burst),
		requests: requests,
		security: security,
		loc:      loc,
		cfg:      cfg,
	}
}

// Middleware returns the rate limiting middleware.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := ClientID(r)

			if !rl.burst.get(clientID).Allow() {
				rl.reject(w, r, clientID, "burst limit")
				return
			}

			allowed, window, err := rl.checkLedgerLimits(r, clientID)
			if err != nil {
				slog.Error("rate limit check failed", "client_id", clientID, "error", err)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to check rate limit", nil)
				return
			}
			if !allowed {
				rl.reject(w, r, clientID, window)
				return
			}

			if rl.burst.clearIfExceeds(maxTrackedClients) {
				slog.Info("cleared client rate limiters due to size")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// checkLedgerLimits consults the request ledger's trailing-window counts.
func (rl *RateLimiter) checkLedgerLimits(r *http.Request, clientID string) (allowed bool, window string, err error) {
	now := time.Now().In(rl.loc)
	hourStart := now.Truncate(time.Hour)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, rl.loc)

	hourly, err := rl.requests.CountSince(r.Context(), clientID, hourStart)
	if err != nil {
		return false, "", err
	}
	if hourly >= int64(rl.cfg.PerHour) {
		return false, "hourly limit", nil
	}

	daily, err := rl.requests.CountSince(r.Context(), clientID, dayStart)
	if err != nil {
		return false, "", err
	}
	if daily >= int64(rl.cfg.PerDay) {
		return false, "daily limit", nil
	}

	return true, "", nil
}

func (rl *RateLimiter) reject(w http.ResponseWriter, r *http.Request, clientID, window string) {
	slog.Warn("rate limit exceeded",
		"event_type", model.SecurityEventRateLimitExceeded,
		"client_id", clientID, "window", window, "path", r.URL.Path)
	recordAsync(rl.security, model.SecurityEventRateLimitExceeded, clientID,
		fmt.Sprintf("window=%s path=%s", window, r.URL.Path))
	WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please slow down.", nil)
}
