// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/olegiv/blockcms/internal/model"
)

const pagePrefix = "page:"

// PageCache stores rendered public pages keyed by locale and slug.
//
// Any saved collection drops every cached page: group sections appear on
// all pages and a page save can change its own slug.
type PageCache struct {
	backend Cacher
	ttl     time.Duration
	logger  *slog.Logger
}

// NewPageCache wraps backend. A zero ttl uses the backend default.
func NewPageCache(backend Cacher, ttl time.Duration, logger *slog.Logger) *PageCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageCache{backend: backend, ttl: ttl, logger: logger}
}

// PageKey returns the cache key of a public page.
func PageKey(locale, slug string) string {
	return pagePrefix + locale + ":" + slug
}

// Get returns the cached body of a page, if any.
func (p *PageCache) Get(ctx context.Context, locale, slug string) ([]byte, bool) {
	body, err := p.backend.Get(ctx, PageKey(locale, slug))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			p.logger.Warn("page cache read failed", "error", err, "locale", locale, "slug", slug)
		}
		return nil, false
	}
	return body, true
}

// Put caches the rendered body of a page. Failures are logged only.
func (p *PageCache) Put(ctx context.Context, locale, slug string, body []byte) {
	if err := p.backend.Set(ctx, PageKey(locale, slug), body, p.ttl); err != nil {
		p.logger.Warn("page cache write failed", "error", err, "locale", locale, "slug", slug)
	}
}

// InvalidateCollection drops all cached pages after ref changed.
func (p *PageCache) InvalidateCollection(ctx context.Context, ref model.CollectionRef) {
	if err := p.backend.DeleteByPrefix(ctx, pagePrefix); err != nil {
		p.logger.Warn("page cache invalidation failed", "error", err, "collection", ref.String())
		return
	}
	p.logger.Debug("page cache invalidated", "collection", ref.String())
}

// Stats returns backend statistics when the backend tracks them.
func (p *PageCache) Stats() (Stats, bool) {
	sp, ok := p.backend.(StatsProvider)
	if !ok {
		return Stats{}, false
	}
	return sp.Stats(), true
}
