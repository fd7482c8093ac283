// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/testutil"
)

func TestLogEvent(t *testing.T) {
	db := testutil.TestDB(t)
	user := testutil.CreateUser(t, db, "ed@example.com", model.RoleEditor)
	svc := NewEventService(db)
	ctx := context.Background()

	if err := svc.LogInfo(ctx, model.EventCategoryContent, "Sections saved", user.ID, "10.0.0.1", map[string]any{"collection": "page:1"}); err != nil {
		t.Fatalf("LogInfo: %v", err)
	}
	if err := svc.LogAuthEvent(ctx, model.EventLevelWarning, "Login failed", 0, "10.0.0.2", nil); err != nil {
		t.Fatalf("LogAuthEvent: %v", err)
	}

	all, err := svc.ListEvents(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d events, want 2", len(all))
	}

	content, err := svc.ListEvents(ctx, model.EventCategoryContent, 10)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(content) != 1 {
		t.Fatalf("got %d content events, want 1", len(content))
	}
	e := content[0]
	if !e.UserID.Valid || e.UserID.Int64 != user.ID {
		t.Errorf("user id = %v", e.UserID)
	}
	if e.IpAddress != "10.0.0.1" {
		t.Errorf("ip = %q", e.IpAddress)
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil || meta["collection"] != "page:1" {
		t.Errorf("metadata = %s", e.Metadata)
	}

	auth, err := svc.ListEvents(ctx, model.EventCategoryAuth, 10)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(auth) != 1 || auth[0].UserID.Valid || auth[0].Metadata != "{}" {
		t.Errorf("auth event = %+v", auth)
	}
}

func TestDeleteOldEvents(t *testing.T) {
	db := testutil.TestDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	now := time.Now().UTC()
	svc.now = func() time.Time { return now.Add(-100 * 24 * time.Hour) }
	_ = svc.LogError(ctx, model.EventCategorySystem, "old", 0, "", nil)
	svc.now = func() time.Time { return now }
	_ = svc.LogInfo(ctx, model.EventCategorySystem, "new", 0, "", nil)

	n, err := svc.DeleteOldEvents(ctx, 90*24*time.Hour)
	if err != nil {
		t.Fatalf("DeleteOldEvents: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1", n)
	}
	left, _ := svc.ListEvents(ctx, "", 10)
	if len(left) != 1 || left[0].Message != "new" {
		t.Errorf("remaining = %+v", left)
	}
}
