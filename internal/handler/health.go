// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import "net/http"

// Health reports database connectivity and table accessibility. It is the
// only unauthenticated endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"connected": false, "tables_accessible": false,
		})
		return
	}

	var n int
	if err := h.db.QueryRowContext(r.Context(), "SELECT COUNT(*) FROM api_usage").Scan(&n); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"connected": true, "tables_accessible": false,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"connected": true, "tables_accessible": true,
	})
}
