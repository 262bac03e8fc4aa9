// Package logging provides a custom slog handler that integrates with the
// security event log. Logs at WARN level and above are mirrored into the
// database so operational anomalies show up alongside the events the
// external collaborators write.
package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/postforge/postforge-go/internal/ledger"
	"github.com/postforge/postforge-go/internal/model"
)

// ParseLevel maps a config string to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SecurityLogHandler is a slog.Handler that wraps another handler and also
// writes WARN and ERROR level records to the security event log. Records
// tagged with an event_type attribute are assumed to be recorded in the
// event log by their emitter and are not mirrored.
type SecurityLogHandler struct {
	inner    slog.Handler
	security *ledger.SecurityLog
	level    slog.Level
}

// NewSecurityLogHandler creates a handler that forwards records to inner
// and mirrors those at WARN level and above into the security event log.
func NewSecurityLogHandler(inner slog.Handler, security *ledger.SecurityLog) *SecurityLogHandler {
	return &SecurityLogHandler{
		inner:    inner,
		security: security,
		level:    slog.LevelWarn,
	}
}

// Enabled implements slog.Handler.
func (h *SecurityLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *SecurityLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeToSecurityLog(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *SecurityLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SecurityLogHandler{
		inner:    h.inner.WithAttrs(attrs),
		security: h.security,
		level:    h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *SecurityLogHandler) WithGroup(name string) slog.Handler {
	return &SecurityLogHandler{
		inner:    h.inner.WithGroup(name),
		security: h.security,
		level:    h.level,
	}
}

// writeToSecurityLog records the log entry as a system alert. Records
// carrying an event_type attribute are skipped: the emitter writes those
// to the event log itself, and mirroring them again would double-count
// the incident. A background context is used so the event lands even if
// the request context is done.
func (h *SecurityLogHandler) writeToSecurityLog(r slog.Record) {
	clientID := "system"
	explicit := false
	var details strings.Builder
	details.WriteString(r.Message)

	r.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "event_type":
			explicit = true
			return false
		case "client_id":
			clientID = a.Value.String()
		default:
			details.WriteString(" ")
			details.WriteString(a.Key)
			details.WriteString("=")
			details.WriteString(a.Value.String())
		}
		return true
	})
	if explicit {
		return
	}

	_ = h.security.Record(context.Background(), model.SecurityEventSystemAlert, clientID, details.String())
}
