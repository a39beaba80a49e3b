// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/pressroom-go/internal/auth"
	"github.com/olegiv/pressroom-go/internal/middleware"
	"github.com/olegiv/pressroom-go/internal/model"
	"github.com/olegiv/pressroom-go/internal/store"
)

// loginInput is the request body for sign-in.
type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and starts a session. Failures use one
// shared message so the endpoint does not leak which emails exist.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := decodeBody(r, &in); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		WriteUnauthorized(w, "Invalid email or password")
		return
	}

	row, err := h.queries.GetUserByEmail(r.Context(), email)
	if errors.Is(err, sql.ErrNoRows) {
		WriteUnauthorized(w, "Invalid email or password")
		return
	}
	if err != nil {
		h.logger.Error("login lookup failed", "error", err)
		WriteInternalError(w, "Login failed")
		return
	}

	ok, err := auth.CheckPassword(in.Password, row.PasswordHash)
	if err != nil || !ok {
		h.logger.Warn("login failed", "email", email, "remote_addr", r.RemoteAddr)
		_ = h.events.LogAuthEvent(r.Context(), model.EventLevelWarning,
			"Failed login attempt", nil, r.RemoteAddr, map[string]any{"email": email})
		WriteUnauthorized(w, "Invalid email or password")
		return
	}

	// Upgrade hashes created with outdated parameters
	if auth.NeedsRehash(row.PasswordHash) {
		if newHash, err := auth.HashPassword(in.Password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
				ID:           row.ID,
				PasswordHash: newHash,
				UpdatedAt:    time.Now().UTC(),
			}); err != nil {
				h.logger.Warn("password rehash failed", "user_id", row.ID, "error", err)
			}
		}
	}

	// New session token on login prevents session fixation
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		h.logger.Error("session renewal failed", "error", err)
		WriteInternalError(w, "Login failed")
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyUserID, row.ID)

	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo,
		"User logged in", &row.ID, r.RemoteAddr, nil)

	WriteSuccess(w, userView(row), nil)
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDPtr(r)

	if err := h.sessions.Destroy(r.Context()); err != nil {
		h.logger.Error("session destroy failed", "error", err)
		WriteInternalError(w, "Logout failed")
		return
	}

	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo,
		"User logged out", userID, r.RemoteAddr, nil)
	WriteJSON(w, http.StatusNoContent, nil)
}

// Me returns the signed-in user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	WriteSuccess(w, user, nil)
}

// userView strips the password hash from a store row for responses.
func userView(row store.User) *model.User {
	return &model.User{
		ID:        row.ID,
		Email:     row.Email,
		Name:      row.Name,
		Role:      row.Role,
		AvatarURL: row.AvatarUrl,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
