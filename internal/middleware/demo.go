// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
)

// DemoModeMessage is shown when an action is blocked in demo mode.
const DemoModeMessage = "This action is disabled in demo mode"

// DemoRestriction is a request shape blocked in demo mode.
type DemoRestriction struct {
	Method     string
	PathSuffix string
}

// DefaultDemoRestrictions keeps the demo site publicly reachable: pages
// can be edited and published but not taken offline.
var DefaultDemoRestrictions = []DemoRestriction{
	{Method: http.MethodPost, PathSuffix: "/unpublish"},
}

// DemoGuard blocks restricted requests with 403 when enabled.
func DemoGuard(enabled bool, restrictions []DemoRestriction, deny DenyFunc) func(http.Handler) http.Handler {
	if deny == nil {
		deny = func(w http.ResponseWriter, _ *http.Request, status int) {
			http.Error(w, DemoModeMessage, status)
		}
	}

	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, rule := range restrictions {
				if r.Method == rule.Method && strings.HasSuffix(r.URL.Path, rule.PathSuffix) {
					slog.Info("demo mode blocked request", "method", r.Method, "path", r.URL.Path, "ip", ClientIP(r))
					deny(w, r, http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
