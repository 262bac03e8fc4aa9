// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import "net/http"

// dailySummary serves the daily usage summary view.
func (h *Handler) dailySummary(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	summary, err := h.analytics.DailyUsage(r.Context(), date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// apiSummary serves the per-provider usage summary view.
func (h *Handler) apiSummary(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	summaries, err := h.analytics.APIUsage(r.Context(), date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"date": date, "apis": summaries})
}

// feedbackSummary serves the feedback summary view.
func (h *Handler) feedbackSummary(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	summary, err := h.analytics.Feedback(r.Context(), date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
