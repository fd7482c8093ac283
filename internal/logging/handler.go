// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that also records WARN and
// ERROR logs in the events table.
//
// Events are written by a background goroutine. A log call made while a
// write transaction holds the SQLite lock therefore never blocks on it.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
)

// DefaultQueueSize is the number of events buffered before new ones are
// dropped.
const DefaultQueueSize = 256

// Options configures an EventLogHandler.
type Options struct {
	// Level is the minimum level recorded as an event (default WARN).
	Level slog.Leveler
	// QueueSize bounds the pending events (default DefaultQueueSize).
	QueueSize int
}

// EventLogHandler wraps another handler and forwards records at or above
// its level to the event log.
type EventLogHandler struct {
	inner  slog.Handler
	sink   *eventSink
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string // group prefix for attributes added later
}

// NewEventLogHandler creates an EventLogHandler writing to db. Call Close
// on shutdown to flush pending events.
func NewEventLogHandler(inner slog.Handler, db *sql.DB, opts Options) *EventLogHandler {
	if opts.Level == nil {
		opts.Level = slog.LevelWarn
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	s := &eventSink{
		queries: store.New(db),
		ch:      make(chan store.CreateEventParams, opts.QueueSize),
		done:    make(chan struct{}),
	}
	go s.run()
	return &EventLogHandler{inner: inner, sink: s, level: opts.Level}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level) || level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if h.inner.Enabled(ctx, r.Level) {
		err = h.inner.Handle(ctx, r)
	}
	if r.Level >= h.level.Level() {
		h.sink.enqueue(h.event(r))
	}
	return err
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)
	c.attrs = append(c.attrs[:len(c.attrs):len(c.attrs)], prefixed(h.prefix, attrs)...)
	return &c
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.inner = h.inner.WithGroup(name)
	c.prefix = h.prefix + name + "."
	return &c
}

// Dropped returns the number of events lost to a full queue.
func (h *EventLogHandler) Dropped() int64 {
	return h.sink.dropped.Load()
}

// Close stops accepting events and waits until pending ones are written
// or ctx is done.
func (h *EventLogHandler) Close(ctx context.Context) error {
	h.sink.close()
	select {
	case <-h.sink.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flushing event log: %w", ctx.Err())
	}
}

func (h *EventLogHandler) event(r slog.Record) store.CreateEventParams {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, prefixed(h.prefix, []slog.Attr{a})...)
		return true
	})

	var category, ip string
	metadata := make(map[string]any, len(attrs))
	for _, a := range attrs {
		switch baseKey(a.Key) {
		case "category":
			category = a.Value.String()
			continue
		case "ip":
			ip = a.Value.String()
		}
		metadata[a.Key] = attrValue(a.Value)
	}
	if category == "" {
		category = inferCategory(r.Message)
	}

	meta := "{}"
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			meta = string(b)
		}
	}
	at := r.Time
	if at.IsZero() {
		at = time.Now()
	}
	return store.CreateEventParams{
		Level:     eventLevel(r.Level),
		Category:  category,
		Message:   r.Message,
		Metadata:  meta,
		IpAddress: ip,
		CreatedAt: at.UTC(),
	}
}

// prefixed flattens group attributes into dotted keys.
func prefixed(prefix string, attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		a.Value = a.Value.Resolve()
		if a.Value.Kind() == slog.KindGroup {
			p := prefix
			if a.Key != "" {
				p += a.Key + "."
			}
			out = append(out, prefixed(p, a.Value.Group())...)
			continue
		}
		if a.Key == "" {
			continue
		}
		a.Key = prefix + a.Key
		out = append(out, a)
	}
	return out
}

func baseKey(key string) string {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[i+1:]
	}
	return key
}

func attrValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return x.Error()
		case fmt.Stringer:
			return x.String()
		}
		if _, err := json.Marshal(v.Any()); err != nil {
			return v.String()
		}
	}
	return v.Any()
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// inferCategory picks a category from keywords in the message.
func inferCategory(msg string) string {
	msg = strings.ToLower(msg)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(msg, w) {
				return true
			}
		}
		return false
	}
	switch {
	case has("auth", "login", "logout", "access denied", "csrf", "rate limit"):
		return model.EventCategoryAuth
	case has("revision", "history"):
		return model.EventCategoryRevision
	case has("cache"):
		return model.EventCategoryCache
	case has("scheduled", "scheduler", "job"):
		return model.EventCategoryScheduler
	case has("page", "section", "content", "save"):
		return model.EventCategoryContent
	default:
		return model.EventCategorySystem
	}
}

// eventSink writes queued events on one goroutine.
type eventSink struct {
	queries *store.Queries
	ch      chan store.CreateEventParams
	done    chan struct{}
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
}

func (s *eventSink) enqueue(ev store.CreateEventParams) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- ev:
	default:
		s.dropped.Add(1)
	}
}

func (s *eventSink) run() {
	defer close(s.done)
	for ev := range s.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, _ = s.queries.CreateEvent(ctx, ev)
		cancel()
	}
}

func (s *eventSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
