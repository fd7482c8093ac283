// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
)

// WriteRateLimiter limits mutating admin API requests per user, falling
// back to the client IP for anonymous requests.
type WriteRateLimiter struct {
	limiters *limiterCache[string]
}

// NewWriteRateLimiter creates a limiter allowing rps writes per second
// with the given burst.
func NewWriteRateLimiter(rps float64, burst int) *WriteRateLimiter {
	return &WriteRateLimiter{limiters: newLimiterCache[string](rps, burst)}
}

// Cleanup resets the limiter table when it grew past 10000 keys.
func (wl *WriteRateLimiter) Cleanup() {
	if wl.limiters.clearIfExceeds(10000) {
		slog.Info("cleared write rate limiters due to size")
	}
}

// Middleware applies the limit to POST, PUT, PATCH and DELETE.
func (wl *WriteRateLimiter) Middleware(deny DenyFunc) func(http.Handler) http.Handler {
	if deny == nil {
		deny = defaultDeny
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			key := "ip:" + ClientIP(r)
			if id := GetUserID(r); id != 0 {
				key = "user:" + strconv.FormatInt(id, 10)
			}
			if !wl.limiters.get(key).Allow() {
				slog.Warn("write rate limit exceeded", "key", key, "path", r.URL.Path)
				deny(w, r, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
