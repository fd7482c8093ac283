// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared by the editor, the service
// layer and the HTTP boundary: roles, collections, revisions, snapshots and
// event log constants.
package model

import "strings"

// User roles, lowest to highest.
const (
	RoleNone      = "none"
	RoleReviewer  = "reviewer"
	RoleEditor    = "editor"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

// Roles lists every role in ascending order of capability.
var Roles = []string{RoleNone, RoleReviewer, RoleEditor, RolePublisher, RoleAdmin}

// NormalizeRole maps a stored role name to a known role. Unknown names
// resolve to RoleNone.
func NormalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	for _, r := range Roles {
		if r == role {
			return r
		}
	}
	return RoleNone
}
