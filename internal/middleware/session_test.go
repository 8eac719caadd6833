// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/psynverse/internal/session"
)

func TestRequireSession(t *testing.T) {
	codec, err := session.NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	token, err := codec.Create("admin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var seen string
	handler := RequireSession(codec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := GetSession(r)
		if !ok {
			t.Error("session missing from context")
		}
		seen = payload.Username
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/session", nil)
		req.AddCookie(session.Cookie(token, false))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rr.Code)
		}
		if seen != "admin" {
			t.Errorf("username = %q, want admin", seen)
		}
	})

	for name, cookie := range map[string]*http.Cookie{
		"no cookie":       nil,
		"tampered cookie": session.Cookie(token+"0", false),
		"garbage cookie":  {Name: session.CookieName, Value: "garbage"},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/session", nil)
			if cookie != nil {
				req.AddCookie(cookie)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rr.Code)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != CodeUnauthorized {
				t.Errorf("code = %q, want %q", body.Error.Code, CodeUnauthorized)
			}
		})
	}
}

func TestGetSessionWithoutMiddleware(t *testing.T) {
	if _, ok := GetSession(httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Error("GetSession() should report no session")
	}
}

func TestWriteJSONError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONError(rr, http.StatusConflict, CodeConflict, "slug taken")

	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	want := `{"error":{"code":"conflict","message":"slug taken"}}` + "\n"
	if rr.Body.String() != want {
		t.Errorf("body = %q, want %q", rr.Body.String(), want)
	}
}
