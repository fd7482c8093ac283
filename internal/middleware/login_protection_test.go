// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLoginProtection_Lockout(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{MaxFailedAttempts: 3, LockoutDuration: time.Minute, AttemptWindow: time.Hour})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lp.now = func() time.Time { return now }

	for i := range 2 {
		if locked, _ := lp.RecordFailedAttempt("User@Example.com"); locked {
			t.Fatalf("locked after %d attempts", i+1)
		}
	}
	locked, d := lp.RecordFailedAttempt("user@example.com ")
	if !locked || d != time.Minute {
		t.Fatalf("third attempt: locked=%v duration=%v", locked, d)
	}
	if locked, remaining := lp.IsAccountLocked("user@example.com"); !locked || remaining != time.Minute {
		t.Errorf("IsAccountLocked = %v, %v", locked, remaining)
	}

	now = now.Add(2 * time.Minute)
	if locked, _ := lp.IsAccountLocked("user@example.com"); locked {
		t.Error("lock did not expire")
	}

	// A second lockout doubles the duration.
	for range 2 {
		lp.RecordFailedAttempt("user@example.com")
	}
	if _, d := lp.RecordFailedAttempt("user@example.com"); d != 2*time.Minute {
		t.Errorf("second lockout = %v, want 2m", d)
	}

	lp.RecordSuccessfulLogin("USER@example.com")
	if locked, _ := lp.IsAccountLocked("user@example.com"); locked {
		t.Error("successful login did not clear the lock")
	}
}

func TestLoginProtection_WindowReset(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{MaxFailedAttempts: 2, AttemptWindow: time.Minute})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lp.now = func() time.Time { return now }

	lp.RecordFailedAttempt("a@example.com")
	now = now.Add(2 * time.Minute)
	if locked, _ := lp.RecordFailedAttempt("a@example.com"); locked {
		t.Error("attempts outside the window counted")
	}

	now = now.Add(time.Hour)
	lp.Cleanup()
	if len(lp.failedAttempts) != 0 {
		t.Errorf("stale attempts kept: %d", len(lp.failedAttempts))
	}
}

func TestLoginProtection_Middleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 2})
	h := lp.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(method, ip string) int {
		req := httptest.NewRequest(method, "/api/auth/login", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if do(http.MethodPost, "10.0.0.1") != http.StatusOK || do(http.MethodPost, "10.0.0.1") != http.StatusOK {
		t.Fatal("burst rejected")
	}
	if code := do(http.MethodPost, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("third POST = %d, want 429", code)
	}
	if code := do(http.MethodGet, "10.0.0.1"); code != http.StatusOK {
		t.Errorf("GET = %d, want 200", code)
	}
	if code := do(http.MethodPost, "10.0.0.2"); code != http.StatusOK {
		t.Errorf("other IP = %d, want 200", code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "192.0.2.1:4000", "192.0.2.1"},
		{"remote without port", nil, "192.0.2.1", "192.0.2.1"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.1:1", "198.51.100.4"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}, "10.0.0.1:1", "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
