package model

import (
	"time"

	"github.com/google/uuid"
)

// AdminSession represents an admin authentication session. LastActivity
// and IsActive are the only mutable fields in the entire data model.
type AdminSession struct {
	ID           int64
	SessionID    string
	ClientID     string
	LoginTime    time.Time
	LastActivity time.Time
	IsActive     bool
}

// GenerateSessionID returns a new globally unique, unguessable session
// identifier. Uniqueness is ultimately enforced by the store's unique
// index; collisions surface as ErrDuplicateKey and the caller retries.
func GenerateSessionID() string {
	return uuid.NewString()
}
