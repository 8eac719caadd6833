// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"

	"github.com/olegiv/psynverse/internal/session"
)

type sessionKey struct{}

// RequireSession rejects requests without a valid session cookie with 401.
// The session payload is stored in the request context.
func RequireSession(codec *session.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload, ok := codec.FromRequest(r)
			if !ok {
				WriteJSONError(w, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey{}, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession returns the session stored by RequireSession.
func GetSession(r *http.Request) (session.Payload, bool) {
	payload, ok := r.Context().Value(sessionKey{}).(session.Payload)
	return payload, ok
}
