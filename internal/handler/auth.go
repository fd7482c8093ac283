// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/service"
	"github.com/olegiv/blockcms/internal/session"
	"github.com/olegiv/blockcms/internal/store"
)

// AuthHandler handles JSON login and logout.
type AuthHandler struct {
	queries   *store.Queries
	sm        *scs.SessionManager
	events    *service.EventService
	protector *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, sm *scs.SessionManager, events *service.EventService, protector *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:   store.New(db),
		sm:        sm,
		events:    events,
		protector: protector,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func userView(u store.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		writeErrorBody(w, http.StatusUnprocessableEntity, ErrorBody{
			Code:    service.CodeValidationFailed,
			Message: "Email and password are required.",
		})
		return
	}
	ctx := r.Context()
	ip := middleware.ClientIP(r)

	if locked, remaining := h.protector.IsAccountLocked(email); locked {
		writeErrorBody(w, http.StatusTooManyRequests, ErrorBody{
			Code:    codeRateLimited,
			Message: "Too many failed attempts. Try again later.",
			Details: map[string]any{"retryAfterSeconds": int(remaining.Round(time.Second).Seconds())},
		})
		return
	}

	user, err := h.queries.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		writeError(w, r, &service.StoreUnavailableError{Op: "get user", Err: err})
		return
	}
	valid := false
	if err == nil {
		valid, err = auth.CheckPassword(req.Password, user.PasswordHash)
		if err != nil {
			slog.Warn("stored password hash unreadable", "user_id", user.ID, "error", err)
		}
	}
	if !valid {
		locked, _ := h.protector.RecordFailedAttempt(email)
		_ = h.events.LogAuthEvent(ctx, model.EventLevelWarning, "Login failed", 0, ip, map[string]any{"email": email, "locked": locked})
		writeErrorBody(w, http.StatusUnauthorized, ErrorBody{
			Code:    service.CodeUnauthorized,
			Message: "Invalid email or password.",
		})
		return
	}

	h.protector.RecordSuccessfulLogin(email)
	if err := session.Login(ctx, h.sm, user.ID); err != nil {
		writeError(w, r, &service.StoreUnavailableError{Op: "start session", Err: err})
		return
	}
	if err := h.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{ID: user.ID, LastLoginAt: time.Now().UTC()}); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}
	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(req.Password); err == nil {
			_ = h.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{ID: user.ID, PasswordHash: hash, UpdatedAt: time.Now().UTC()})
		}
	}
	_ = h.events.LogAuthEvent(ctx, model.EventLevelInfo, "User logged in", user.ID, ip, nil)

	writeOK(w, map[string]any{"user": userView(user)})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if err := session.Logout(r.Context(), h.sm); err != nil {
		writeError(w, r, &service.StoreUnavailableError{Op: "end session", Err: err})
		return
	}
	if userID != 0 {
		_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged out", userID, middleware.ClientIP(r), nil)
	}
	writeOK(w, nil)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		DenyJSON(w, r, http.StatusUnauthorized)
		return
	}
	writeOK(w, map[string]any{"user": userView(*user)})
}
