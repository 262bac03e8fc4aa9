package model

import (
	"database/sql"
	"time"
)

// Request kinds
const (
	RequestKindLiveResearch      = "live_research"
	RequestKindCachedResearch    = "cached_research"
	RequestKindContentGeneration = "content_generation"
	RequestKindFeedback          = "feedback"
)

// MaxTopicLength is the maximum accepted length for a request topic.
const MaxTopicLength = 200

// RequestEvent represents a single end-user request record.
type RequestEvent struct {
	ID        int64
	ClientID  string
	Kind      string
	Topic     sql.NullString
	Origin    sql.NullString // Originating address, if known
	Timestamp time.Time
	Success   bool
	Date      string
}

// TopicCount is a topic with its request count, used for popularity queries.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int64  `json:"count"`
}
