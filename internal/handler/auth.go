// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/psynverse/internal/auth"
	"github.com/olegiv/psynverse/internal/middleware"
	"github.com/olegiv/psynverse/internal/model"
	"github.com/olegiv/psynverse/internal/service"
	"github.com/olegiv/psynverse/internal/session"
)

// AuthHandler handles admin login, logout and session routes.
type AuthHandler struct {
	admin           auth.Admin
	codec           *session.Codec
	loginProtection *middleware.LoginProtection
	eventService    *service.EventService
	geo             auth.CountryResolver
	secureCookie    bool
}

// AuthConfig holds the dependencies of AuthHandler. LoginProtection,
// EventService and Geo may be nil.
type AuthConfig struct {
	Admin           auth.Admin
	Codec           *session.Codec
	LoginProtection *middleware.LoginProtection
	EventService    *service.EventService
	Geo             auth.CountryResolver
	SecureCookie    bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg AuthConfig) *AuthHandler {
	return &AuthHandler{
		admin:           cfg.Admin,
		codec:           cfg.Codec,
		loginProtection: cfg.LoginProtection,
		eventService:    cfg.EventService,
		geo:             cfg.Geo,
		secureCookie:    cfg.SecureCookie,
	}
}

// LoginRequest is the body of POST /api/admin/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse describes the current session.
type SessionResponse struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login handles POST /api/admin/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client := auth.DescribeClient(middleware.ClientIP(r), r.UserAgent(), h.geo)
	meta := client.Metadata()
	meta["username"] = req.Username

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(req.Username); locked {
			h.logAuth(r, model.EventLevelWarning, "Login attempt on locked account", meta)
			writeLocked(w, remaining)
			return
		}
	}

	ok, err := h.admin.Verify(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrNotConfigured) {
			slog.Error("admin login unavailable", "error", err)
			WriteInternalError(w, "admin login is not configured")
			return
		}
		slog.Error("verifying admin credentials", "error", err)
		WriteInternalError(w, "internal server error")
		return
	}

	if !ok {
		h.logAuth(r, model.EventLevelWarning, "Login failed: invalid credentials", meta)
		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(req.Username); locked {
				writeLocked(w, lockDuration)
				return
			}
			if remaining := h.loginProtection.GetRemainingAttempts(req.Username); remaining <= 2 {
				middleware.WriteJSONError(w, http.StatusUnauthorized, middleware.CodeUnauthorized,
					fmt.Sprintf("invalid credentials, %d attempts remaining", remaining))
				return
			}
		}
		middleware.WriteJSONError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "invalid credentials")
		return
	}

	token, err := h.codec.Create(h.admin.Username)
	if err != nil {
		slog.Error("creating session token", "error", err)
		WriteInternalError(w, "internal server error")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(req.Username)
	}
	h.logAuth(r, model.EventLevelInfo, "User logged in", meta)

	payload, _ := h.codec.Validate(token)
	http.SetCookie(w, session.Cookie(token, h.secureCookie))
	WriteSuccess(w, SessionResponse{Username: payload.Username, ExpiresAt: payload.ExpiresAt().UTC()})
}

// Logout handles POST /api/admin/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if payload, ok := h.codec.FromRequest(r); ok {
		h.logAuth(r, model.EventLevelInfo, "User logged out", map[string]any{
			"username": payload.Username,
			"ip":       middleware.ClientIP(r),
		})
	}
	http.SetCookie(w, session.ClearCookie(h.secureCookie))
	WriteSuccess(w, map[string]bool{"loggedOut": true})
}

// Session handles GET /api/admin/session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	payload, ok := middleware.GetSession(r)
	if !ok {
		middleware.WriteJSONError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "authentication required")
		return
	}
	WriteSuccess(w, SessionResponse{Username: payload.Username, ExpiresAt: payload.ExpiresAt().UTC()})
}

func (h *AuthHandler) logAuth(r *http.Request, level, message string, meta map[string]any) {
	if h.eventService == nil {
		return
	}
	if err := h.eventService.LogAuthEvent(r.Context(), level, message, meta); err != nil {
		slog.Debug("failed to record auth event", "error", err)
	}
}

func writeLocked(w http.ResponseWriter, remaining time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(remaining.Seconds())+1))
	middleware.WriteJSONError(w, http.StatusTooManyRequests, middleware.CodeRateLimited,
		fmt.Sprintf("account locked, try again in %s", remaining.Round(time.Second)))
}
