// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/postforge/postforge-go/internal/auth"
	"github.com/postforge/postforge-go/internal/middleware"
	"github.com/postforge/postforge-go/internal/model"
)

type openSessionRequest struct {
	ClientID string `json:"client_id"`
	Password string `json:"password"`
}

// openSession verifies the admin password and opens a new session.
// Failed attempts are recorded as failed_admin_login security events.
func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if h.adminHash == "" {
		middleware.WriteAPIError(w, http.StatusForbidden, "forbidden", "Admin login is not configured", nil)
		return
	}

	ok, err := auth.CheckPassword(req.Password, h.adminHash)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !ok {
		h.logger.Warn("failed admin login",
			"event_type", model.SecurityEventFailedAdminLogin,
			"client_id", req.ClientID)
		if err := h.security.Record(r.Context(), model.SecurityEventFailedAdminLogin, req.ClientID, ""); err != nil {
			h.logger.Error("failed to record security event", "error", err)
		}
		middleware.WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid password", nil)
		return
	}

	sessionID, err := h.sessions.Open(r.Context(), req.ClientID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"session_id": sessionID})
}

// sessionValidity reports whether a session is active and within its
// idle timeout.
func (h *Handler) sessionValidity(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	valid, err := h.sessions.IsValid(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "valid": valid})
}

// touchSession refreshes a session's last activity time.
func (h *Handler) touchSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessions.Touch(r.Context(), sessionID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// closeSession deactivates a session. Closing twice is a no-op.
func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessions.Close(r.Context(), sessionID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
