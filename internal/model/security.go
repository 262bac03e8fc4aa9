package model

import (
	"database/sql"
	"time"
)

// Security event kinds
const (
	SecurityEventFailedAdminLogin    = "failed_admin_login"
	SecurityEventRateLimitExceeded   = "rate_limit_exceeded"
	SecurityEventInvalidServiceToken = "invalid_service_token"
	SecurityEventSystemAlert         = "system_alert"
)

// SecurityEvent represents a security-relevant incident. Rows are
// immutable once written and pruned after a short retention window.
type SecurityEvent struct {
	ID        int64
	Kind      string
	ClientID  string
	Details   sql.NullString
	Timestamp time.Time
}
