// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"slices"

	"github.com/olegiv/blockcms/internal/model"
)

// Action is a capability checked against a role.
type Action string

// Actions.
const (
	ActionRead    Action = "read"
	ActionEdit    Action = "edit"
	ActionPublish Action = "publish"
	ActionRestore Action = "restore"
	ActionDelete  Action = "delete"
	ActionAdmin   Action = "admin"
)

// minimum role for each action
var actionRole = map[Action]string{
	ActionRead:    model.RoleReviewer,
	ActionEdit:    model.RoleEditor,
	ActionPublish: model.RolePublisher,
	ActionRestore: model.RolePublisher,
	ActionDelete:  model.RolePublisher,
	ActionAdmin:   model.RoleAdmin,
}

// RoleLevel returns the position of role in the hierarchy; unknown roles
// rank with RoleNone.
func RoleLevel(role string) int {
	return slices.Index(model.Roles, model.NormalizeRole(role))
}

// HasRole reports whether role is at least required.
func HasRole(role, required string) bool {
	return RoleLevel(role) >= RoleLevel(required)
}

// Can reports whether role may perform action. Unknown actions are denied.
func Can(role string, action Action) bool {
	required, ok := actionRole[action]
	if !ok {
		return false
	}
	return HasRole(role, required)
}
