package model

import (
	"database/sql"
	"time"
)

// Rating bounds for user feedback.
const (
	RatingMin = 1
	RatingMax = 5
)

// FeedbackEntry represents a per-topic user rating. Feedback is retained
// indefinitely and never touched by the retention janitor.
type FeedbackEntry struct {
	ID               int64
	ClientID         string
	Topic            string
	Rating           int
	FeedbackText     sql.NullString
	ContentVariation sql.NullInt64
	Timestamp        time.Time
	Date             string
}
