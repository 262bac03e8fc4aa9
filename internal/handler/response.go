// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/postforge/postforge-go/internal/middleware"
	"github.com/postforge/postforge-go/internal/model"
)

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps domain errors onto the API error envelope.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		middleware.WriteAPIError(w, http.StatusUnprocessableEntity, "validation_error", ve.Message,
			map[string]string{"field": ve.Field})
	case errors.Is(err, model.ErrNotFound):
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Record not found", nil)
	case errors.Is(err, model.ErrDuplicateKey):
		middleware.WriteAPIError(w, http.StatusConflict, "duplicate_key", "Identifier collision, retry", nil)
	default:
		h.logger.Error("request failed", "error", err)
		middleware.WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Internal error", nil)
	}
}

// decodeJSON decodes a request body, answering 400 on malformed input.
// Returns false if an error response was written.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "Malformed JSON body", nil)
		return false
	}
	return true
}

// dateParam returns the validated date query parameter, defaulting to
// today in the configured timezone.
func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return time.Now().In(h.loc).Format("2006-01-02"), true
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", "date must be YYYY-MM-DD", nil)
		return "", false
	}
	return date, true
}
