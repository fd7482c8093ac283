// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteRateLimiter(t *testing.T) {
	wl := NewWriteRateLimiter(0.001, 1)
	h := wl.Middleware(nil)(okHandler)

	do := func(method, ip string) int {
		req := httptest.NewRequest(method, "/admin/api/pages/1/sections", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do(http.MethodPut, "10.0.0.1"); code != http.StatusOK {
		t.Fatalf("first PUT = %d", code)
	}
	if code := do(http.MethodPut, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("second PUT = %d, want 429", code)
	}
	if code := do(http.MethodGet, "10.0.0.1"); code != http.StatusOK {
		t.Errorf("GET = %d, want 200", code)
	}
	if code := do(http.MethodPatch, "10.0.0.2"); code != http.StatusOK {
		t.Errorf("other client = %d, want 200", code)
	}

	wl.Cleanup()
	if len(wl.limiters.limiters) != 2 {
		t.Errorf("cleanup dropped a small table: %d", len(wl.limiters.limiters))
	}
}
