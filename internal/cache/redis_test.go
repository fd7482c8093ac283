// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	opts := DefaultRedisCacheOptions()
	opts.URL = "redis://" + mr.Addr()
	opts.Prefix = "test:"
	c, err := NewRedisCache(opts)
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_Basic(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !mr.Exists("test:key") {
		t.Error("key not stored under prefix")
	}
	got, err := cache.Get(ctx, "key")
	if err != nil || string(got) != "value" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if has, _ := cache.Has(ctx, "key"); !has {
		t.Error("Has = false")
	}
	if err := cache.Delete(ctx, "key"); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Get(ctx, "key"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Delete error = %v", err)
	}
}

func TestRedisCache_TTL(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "short", []byte("x"), time.Second)
	_ = cache.Set(ctx, "default", []byte("y"), 0)
	if ttl := mr.TTL("test:default"); ttl != time.Hour {
		t.Errorf("default ttl = %v", ttl)
	}

	mr.FastForward(2 * time.Second)
	if _, err := cache.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired key returned, err = %v", err)
	}
}

func TestRedisCache_DeleteByPrefix(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	_ = mr.Set("foreign:page:en:home", "kept")
	for _, k := range []string{"page:en:home", "page:en:about", "stats"} {
		_ = cache.Set(ctx, k, []byte(k), 0)
	}
	if err := cache.DeleteByPrefix(ctx, "page:"); err != nil {
		t.Fatal(err)
	}
	if mr.Exists("test:page:en:home") || mr.Exists("test:page:en:about") {
		t.Error("prefixed keys survived")
	}
	if !mr.Exists("test:stats") || !mr.Exists("foreign:page:en:home") {
		t.Error("unrelated keys deleted")
	}
	if st := cache.Stats(); st.Items != 1 {
		t.Errorf("items = %d, want 1", st.Items)
	}

	_ = cache.Clear(ctx)
	if !mr.Exists("foreign:page:en:home") || mr.Exists("test:stats") {
		t.Error("Clear must only drop prefixed keys")
	}
}

func TestRedisCache_ConnectionErrors(t *testing.T) {
	if _, err := NewRedisCache(RedisCacheOptions{}); err == nil {
		t.Error("expected error without URL")
	}

	if _, err := NewRedisCache(RedisCacheOptions{URL: "redis://127.0.0.1:1", ConnectTimeout: time.Second}); err == nil {
		t.Error("expected error for unreachable server")
	}
}

func TestNewFactory(t *testing.T) {
	c, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c.Close() }()
	if Backend(c) != "memory" {
		t.Errorf("backend = %s", Backend(c))
	}

	mr := miniredis.RunT(t)
	rc, err := New(Config{RedisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = rc.Close() }()
	if Backend(rc) != "redis" {
		t.Errorf("backend = %s", Backend(rc))
	}
}
