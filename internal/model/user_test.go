// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
)

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		name string
		role string
		want string
	}{
		{name: "admin role", role: RoleAdmin, want: RoleAdmin},
		{name: "editor role", role: "editor", want: RoleEditor},
		{name: "mixed case and spaces", role: " Publisher ", want: RolePublisher},
		{name: "legacy user role", role: "user", want: RoleNone},
		{name: "empty role", role: "", want: RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeRole(tt.role); got != tt.want {
				t.Errorf("NormalizeRole(%q) = %q, want %q", tt.role, got, tt.want)
			}
		})
	}
}
