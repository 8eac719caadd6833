// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestLoginProtection returns protection with a manual clock and no
// cleanup goroutine.
func newTestLoginProtection(t *testing.T, maxAttempts int, lockout, window time.Duration) (*LoginProtection, *time.Time) {
	t.Helper()
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       10,
		IPBurst:           100,
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   lockout,
		AttemptWindow:     window,
		CleanupInterval:   -1,
	})
	t.Cleanup(lp.Stop)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	lp.now = func() time.Time { return now }
	return lp, &now
}

func TestDefaultLoginProtectionConfig(t *testing.T) {
	cfg := DefaultLoginProtectionConfig()

	if cfg.IPRateLimit != 0.5 {
		t.Errorf("IPRateLimit = %v, want 0.5", cfg.IPRateLimit)
	}
	if cfg.IPBurst != 5 {
		t.Errorf("IPBurst = %d, want 5", cfg.IPBurst)
	}
	if cfg.MaxFailedAttempts != 5 {
		t.Errorf("MaxFailedAttempts = %d, want 5", cfg.MaxFailedAttempts)
	}
	if cfg.LockoutDuration != 15*time.Minute {
		t.Errorf("LockoutDuration = %v, want 15m", cfg.LockoutDuration)
	}
}

func TestNewLoginProtectionDefaultValues(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})
	defer lp.Stop()

	if lp.maxFailedAttempts != 5 {
		t.Errorf("maxFailedAttempts = %d, want 5", lp.maxFailedAttempts)
	}
	if lp.lockoutDuration != 15*time.Minute {
		t.Errorf("lockoutDuration = %v, want 15m", lp.lockoutDuration)
	}
	lp.Stop() // idempotent
}

func TestLoginProtectionLockout(t *testing.T) {
	lp, now := newTestLoginProtection(t, 3, time.Minute, time.Hour)

	for i := 1; i < 3; i++ {
		if locked, _ := lp.RecordFailedAttempt("admin"); locked {
			t.Fatalf("attempt %d should not lock", i)
		}
	}
	if got := lp.GetRemainingAttempts("admin"); got != 1 {
		t.Errorf("remaining = %d, want 1", got)
	}

	locked, d := lp.RecordFailedAttempt("admin")
	if !locked || d != time.Minute {
		t.Fatalf("third attempt: locked=%v duration=%v", locked, d)
	}
	if locked, remaining := lp.IsAccountLocked("admin"); !locked || remaining != time.Minute {
		t.Errorf("IsAccountLocked() = %v, %v", locked, remaining)
	}
	if locked, _ := lp.IsAccountLocked("other"); locked {
		t.Error("other accounts must not be locked")
	}

	*now = now.Add(time.Minute + time.Second)
	if locked, _ := lp.IsAccountLocked("admin"); locked {
		t.Error("lock should expire")
	}
}

func TestLoginProtectionExponentialBackoff(t *testing.T) {
	lp, now := newTestLoginProtection(t, 1, time.Minute, time.Hour)

	want := []time.Duration{time.Minute, 2 * time.Minute, 4 * time.Minute}
	for i, w := range want {
		locked, d := lp.RecordFailedAttempt("admin")
		if !locked || d != w {
			t.Errorf("lockout %d: locked=%v duration=%v, want %v", i+1, locked, d, w)
		}
		*now = now.Add(d + time.Second)
	}
}

func TestLoginProtectionBackoffCap(t *testing.T) {
	lp, _ := newTestLoginProtection(t, 1, 10*time.Hour, time.Hour)

	var d time.Duration
	for range 4 {
		_, d = lp.RecordFailedAttempt("admin")
	}
	if d != maxLockout {
		t.Errorf("duration = %v, want %v", d, maxLockout)
	}
}

func TestLoginProtectionAttemptWindowReset(t *testing.T) {
	lp, now := newTestLoginProtection(t, 3, time.Minute, 10*time.Minute)

	lp.RecordFailedAttempt("admin")
	lp.RecordFailedAttempt("admin")
	*now = now.Add(11 * time.Minute)

	if got := lp.GetRemainingAttempts("admin"); got != 3 {
		t.Errorf("remaining after window = %d, want 3", got)
	}
	if locked, _ := lp.RecordFailedAttempt("admin"); locked {
		t.Error("window reset should restart the count")
	}
}

func TestLoginProtectionRecordSuccessfulLogin(t *testing.T) {
	lp, _ := newTestLoginProtection(t, 3, time.Minute, time.Hour)

	lp.RecordFailedAttempt("admin")
	lp.RecordSuccessfulLogin("admin")

	if got := lp.GetRemainingAttempts("admin"); got != 3 {
		t.Errorf("remaining = %d, want 3", got)
	}
}

func TestLoginProtectionCleanup(t *testing.T) {
	lp, now := newTestLoginProtection(t, 5, time.Minute, time.Minute)

	lp.RecordFailedAttempt("admin")
	*now = now.Add(2 * time.Minute)
	lp.cleanupStaleEntries()

	lp.attemptsMu.RLock()
	defer lp.attemptsMu.RUnlock()
	if len(lp.failedAttempts) != 0 {
		t.Errorf("stale entries left: %d", len(lp.failedAttempts))
	}
}

func TestLoginProtectionMiddleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 2, CleanupInterval: -1})
	defer lp.Stop()

	handler := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(method, remote string) int {
		req := httptest.NewRequest(method, "/api/admin/login", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := range 2 {
		if code := send(http.MethodPost, "10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: status %d", i+1, code)
		}
	}
	if code := send(http.MethodPost, "10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Errorf("burst exceeded: status %d, want 429", code)
	}
	if code := send(http.MethodPost, "10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("other IP: status %d, want 200", code)
	}
	if code := send(http.MethodGet, "10.0.0.1:1234"); code != http.StatusOK {
		t.Errorf("GET is not limited: status %d", code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.168.1.10:54321", "192.168.1.10"},
		{"[::1]:8080", "::1"},
		{"203.0.113.7", "203.0.113.7"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		if got := ClientIP(req); got != tt.want {
			t.Errorf("ClientIP(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}
