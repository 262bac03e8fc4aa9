package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/postforge/postforge-go/internal/ledger"
	"github.com/postforge/postforge-go/internal/model"
)

// ServiceTokenAuth creates middleware that validates the single trusted
// service credential. Every table mutation passes through this check; no
// end-user identity is ever granted direct access. Rejections are
// recorded in the security event log.
func ServiceTokenAuth(token string, security *ledger.SecurityLog) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented, ok := bearerToken(r)
			if !ok {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Missing or malformed Authorization header. Use: Bearer <service_token>", nil)
				return
			}

			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				slog.Warn("service token rejected",
					"event_type", model.SecurityEventInvalidServiceToken,
					"client_id", ClientID(r), "path", r.URL.Path)
				recordAsync(security, model.SecurityEventInvalidServiceToken, ClientID(r), "path="+r.URL.Path)
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid service token", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the bearer token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// recordAsync writes a security event in a background goroutine so the
// response is not held up by the ledger write.
func recordAsync(security *ledger.SecurityLog, kind, clientID, details string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = security.Record(ctx, kind, clientID, details)
	}()
}
