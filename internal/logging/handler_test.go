// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
	"github.com/olegiv/blockcms/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

// flushedEvents closes h and returns every stored event, newest first.
func flushedEvents(t *testing.T, h *EventLogHandler, db *sql.DB) []store.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	events, err := store.New(db).ListEvents(context.Background(), store.ListEventsParams{Limit: 50})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	return events
}

func TestEventLogHandler_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     slog.Leveler
		log       func(*slog.Logger)
		wantLevel string
	}{
		{"error captured", nil, func(l *slog.Logger) { l.Error("database connection failed", "port", 5432) }, model.EventLevelError},
		{"warn captured", nil, func(l *slog.Logger) { l.Warn("slow query detected", "duration_ms", 5000) }, model.EventLevelWarning},
		{"info skipped", nil, func(l *slog.Logger) { l.Info("server started") }, ""},
		{"debug skipped", nil, func(l *slog.Logger) { l.Debug("processing request") }, ""},
		{"info with custom level", slog.LevelInfo, func(l *slog.Logger) { l.Info("server started") }, model.EventLevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.TestDB(t)
			h := NewEventLogHandler(discardHandler{}, db, Options{Level: tt.level})
			tt.log(slog.New(h))

			events := flushedEvents(t, h, db)
			if tt.wantLevel == "" {
				if len(events) != 0 {
					t.Errorf("expected no events, got %d", len(events))
				}
				return
			}
			if len(events) != 1 || events[0].Level != tt.wantLevel {
				t.Errorf("events = %+v", events)
			}
		})
	}
}

func TestEventLogHandler_CategoryAndMetadata(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewEventLogHandler(discardHandler{}, db, Options{})
	logger := slog.New(h).With("request_id", "req-1").WithGroup("req")

	logger.Warn("custom", "category", model.EventCategoryCache, "path", "/")
	logger.Error("save failed", "error", errors.New("disk I/O error"), "ip", "192.0.2.7", "took", 2*time.Second)

	events := flushedEvents(t, h, db)
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	saveEv, customEv := events[0], events[1]
	if customEv.Category != model.EventCategoryCache {
		t.Errorf("explicit category = %q", customEv.Category)
	}
	if saveEv.Category != model.EventCategoryContent || saveEv.IpAddress != "192.0.2.7" {
		t.Errorf("save event = %+v", saveEv)
	}

	var meta map[string]any
	if err := json.Unmarshal([]byte(saveEv.Metadata), &meta); err != nil {
		t.Fatalf("metadata %q: %v", saveEv.Metadata, err)
	}
	want := map[string]any{
		"request_id": "req-1",
		"req.error":  "disk I/O error",
		"req.ip":     "192.0.2.7",
		"req.took":   "2s",
	}
	for k, v := range want {
		if meta[k] != v {
			t.Errorf("metadata[%q] = %v, want %v", k, meta[k], v)
		}
	}
	if strings.Contains(customEv.Metadata, "category") {
		t.Errorf("category kept in metadata: %s", customEv.Metadata)
	}
}

func TestEventLogHandler_InnerHandlerStillWrites(t *testing.T) {
	db := testutil.TestDB(t)
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	h := NewEventLogHandler(inner, db, Options{})
	logger := slog.New(h)

	logger.Debug("hidden")
	logger.Info("visible")
	logger.Warn("recorded")

	if !h.Enabled(context.Background(), slog.LevelWarn) || h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled mismatch")
	}
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "visible") || !strings.Contains(out, "recorded") {
		t.Errorf("inner output = %q", out)
	}
	if events := flushedEvents(t, h, db); len(events) != 1 {
		t.Errorf("events = %d, want 1", len(events))
	}
}

func TestEventLogHandler_AfterClose(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewEventLogHandler(discardHandler{}, db, Options{})
	_ = flushedEvents(t, h, db)

	// Logging after Close is dropped without panicking.
	slog.New(h).Error("late")
	if err := h.Close(context.Background()); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if events := flushedEvents(t, h, db); len(events) != 0 {
		t.Errorf("events = %d", len(events))
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"Login failed", model.EventCategoryAuth},
		{"access denied", model.EventCategoryAuth},
		{"revision history skipped", model.EventCategoryRevision},
		{"page cache invalidation failed", model.EventCategoryCache},
		{"scheduled job failed", model.EventCategoryScheduler},
		{"Sections saved", model.EventCategoryContent},
		{"server shutting down", model.EventCategorySystem},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := inferCategory(tt.msg); got != tt.want {
				t.Errorf("inferCategory(%q) = %q, want %q", tt.msg, got, tt.want)
			}
		})
	}
}
