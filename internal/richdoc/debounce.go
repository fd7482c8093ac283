// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richdoc

import (
	"sync"
	"time"
)

// DebounceConfig holds change debouncer configuration.
type DebounceConfig struct {
	// Interval is the idle window. Changes within it are coalesced into a
	// single notification carrying the latest document.
	Interval time.Duration
	// MaxWait bounds how long a burst of changes may delay notification.
	MaxWait time.Duration
}

// DefaultDebounceConfig returns the default change debounce configuration.
func DefaultDebounceConfig() DebounceConfig {
	return DebounceConfig{
		Interval: 300 * time.Millisecond,
		MaxWait:  2 * time.Second,
	}
}

// ChangeDebouncer coalesces document-change notifications so the owning
// section is not updated on every keystroke. Flush delivers the pending
// document synchronously.
type ChangeDebouncer struct {
	config  DebounceConfig
	deliver func(doc *Node)

	mu        sync.Mutex
	pending   *Node
	timer     *time.Timer
	firstSeen time.Time
	stopped   bool

	// deliverMu serialises deliveries so a timer firing and an explicit
	// flush cannot hand out documents out of order.
	deliverMu sync.Mutex
}

// NewChangeDebouncer creates a debouncer calling deliver with the latest
// document.
func NewChangeDebouncer(config DebounceConfig, deliver func(doc *Node)) *ChangeDebouncer {
	return &ChangeDebouncer{config: config, deliver: deliver}
}

// Notify records doc as the latest document and (re)arms the timer.
func (d *ChangeDebouncer) Notify(doc *Node) {
	now := time.Now()

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.config.Interval <= 0 {
		d.pending = doc
		d.mu.Unlock()
		d.Flush()
		return
	}
	if d.pending == nil {
		d.firstSeen = now
	}
	d.pending = doc

	if d.config.MaxWait > 0 && now.Sub(d.firstSeen) >= d.config.MaxWait {
		d.mu.Unlock()
		d.Flush()
		return
	}
	if d.timer == nil {
		d.timer = time.AfterFunc(d.config.Interval, d.Flush)
	} else {
		d.timer.Reset(d.config.Interval)
	}
	d.mu.Unlock()
}

// Flush delivers the pending document, if any, immediately.
func (d *ChangeDebouncer) Flush() {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	d.mu.Lock()
	doc := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	if doc != nil && d.deliver != nil {
		d.deliver(doc)
	}
}

// Pending reports whether a notification is waiting.
func (d *ChangeDebouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop flushes pending changes and ignores later notifications.
func (d *ChangeDebouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.Flush()
}
