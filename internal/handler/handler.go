// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the HTTP surface consumed by the external
// application tier: ledger writes, session lifecycle, feedback, and the
// derived analytics summaries.
package handler

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/postforge/postforge-go/internal/analytics"
	"github.com/postforge/postforge-go/internal/ledger"
	"github.com/postforge/postforge-go/internal/session"
)

// Handler bundles the store components behind the HTTP API.
type Handler struct {
	usage     *ledger.UsageLedger
	requests  *ledger.RequestLedger
	security  *ledger.SecurityLog
	feedback  *ledger.FeedbackStore
	sessions  *session.Store
	analytics *analytics.Service
	db        *sql.DB
	loc       *time.Location
	adminHash string
	logger    *slog.Logger
}

// Deps holds the dependencies for a Handler.
type Deps struct {
	Usage     *ledger.UsageLedger
	Requests  *ledger.RequestLedger
	Security  *ledger.SecurityLog
	Feedback  *ledger.FeedbackStore
	Sessions  *session.Store
	Analytics *analytics.Service
	DB        *sql.DB
	Location  *time.Location
	AdminHash string
	Logger    *slog.Logger
}

// New creates a Handler.
func New(d Deps) *Handler {
	return &Handler{
		usage:     d.Usage,
		requests:  d.Requests,
		security:  d.Security,
		feedback:  d.Feedback,
		sessions:  d.Sessions,
		analytics: d.Analytics,
		db:        d.DB,
		loc:       d.Location,
		adminHash: d.AdminHash,
		logger:    d.Logger,
	}
}

// Routes registers the authenticated API routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/usage", h.recordUsage)
	r.Get("/usage/daily-counts", h.dailyUsageCounts)

	r.Post("/requests", h.recordRequest)
	r.Get("/requests/topics", h.recentTopics)

	r.Post("/security-events", h.recordSecurityEvent)
	r.Get("/security-events/recent", h.recentSecurityEvents)

	r.Post("/sessions", h.openSession)
	r.Get("/sessions/{sessionID}", h.sessionValidity)
	r.Post("/sessions/{sessionID}/touch", h.touchSession)
	r.Delete("/sessions/{sessionID}", h.closeSession)

	r.Post("/feedback", h.recordFeedback)
	r.Get("/feedback/distribution", h.feedbackDistribution)

	r.Get("/summary/daily", h.dailySummary)
	r.Get("/summary/api", h.apiSummary)
	r.Get("/summary/feedback", h.feedbackSummary)
}
