package model

import (
	"database/sql"
	"time"
)

// Known upstream API providers. The ledger accepts any non-empty name;
// these are the providers the generation agent currently calls.
const (
	ProviderGemini      = "gemini"
	ProviderHuggingFace = "huggingface"
	ProviderAnthropic   = "anthropic"
)

// UsageEvent represents a single external API call record.
type UsageEvent struct {
	ID           int64
	Provider     string
	Timestamp    time.Time
	Success      bool
	ErrorMessage sql.NullString
	Date         string // Calendar date of Timestamp in the configured timezone, YYYY-MM-DD
}
