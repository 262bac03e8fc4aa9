// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
	"time"
)

type recordUsageRequest struct {
	Provider     string `json:"api_name"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// recordUsage appends one external API call record.
func (h *Handler) recordUsage(w http.ResponseWriter, r *http.Request) {
	var req recordUsageRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	id, err := h.usage.Record(r.Context(), req.Provider, req.Success, req.ErrorMessage)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// dailyUsageCounts returns successful calls per provider for a date.
func (h *Handler) dailyUsageCounts(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	counts, err := h.usage.DailyCounts(r.Context(), date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"date": date, "counts": counts})
}

type recordRequestRequest struct {
	ClientID string `json:"client_id"`
	Kind     string `json:"request_type"`
	Topic    string `json:"topic,omitempty"`
	Origin   string `json:"ip_address,omitempty"`
	Success  bool   `json:"success"`
}

// recordRequest appends one end-user request record.
func (h *Handler) recordRequest(w http.ResponseWriter, r *http.Request) {
	var req recordRequestRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	id, err := h.requests.Record(r.Context(), req.ClientID, req.Kind, req.Topic, req.Origin, req.Success)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// recentTopics returns the most requested topics over the trailing days.
func (h *Handler) recentTopics(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)
	limit := queryInt(r, "limit", 5)

	topics, err := h.requests.RecentTopics(r.Context(), time.Now().AddDate(0, 0, -days), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

type recordSecurityEventRequest struct {
	Kind     string `json:"event_type"`
	ClientID string `json:"client_id"`
	Details  string `json:"details,omitempty"`
}

// recordSecurityEvent appends one security incident record.
func (h *Handler) recordSecurityEvent(w http.ResponseWriter, r *http.Request) {
	var req recordSecurityEventRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.security.Record(r.Context(), req.Kind, req.ClientID, req.Details); err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// recentSecurityEvents returns security events over the trailing hours.
func (h *Handler) recentSecurityEvents(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24)

	events, err := h.security.RecentEvents(r.Context(), time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		h.writeError(w, err)
		return
	}

	type eventResponse struct {
		ID        int64     `json:"id"`
		Kind      string    `json:"event_type"`
		ClientID  string    `json:"client_id"`
		Details   string    `json:"details,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:        e.ID,
			Kind:      e.Kind,
			ClientID:  e.ClientID,
			Details:   e.Details.String,
			Timestamp: e.Timestamp,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"events": out})
}

type recordFeedbackRequest struct {
	ClientID         string `json:"client_id"`
	Topic            string `json:"topic"`
	Rating           int    `json:"rating"`
	FeedbackText     string `json:"feedback_text,omitempty"`
	ContentVariation *int64 `json:"content_variation,omitempty"`
}

// recordFeedback appends one user rating.
func (h *Handler) recordFeedback(w http.ResponseWriter, r *http.Request) {
	var req recordFeedbackRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	id, err := h.feedback.Record(r.Context(), req.ClientID, req.Topic, req.Rating, req.FeedbackText, req.ContentVariation)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// feedbackDistribution returns per-rating counts over the trailing days.
func (h *Handler) feedbackDistribution(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)

	dist, err := h.feedback.Distribution(r.Context(), time.Now().AddDate(0, 0, -days))
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"distribution": dist})
}

// queryInt parses a positive integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	if s := r.URL.Query().Get(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}
