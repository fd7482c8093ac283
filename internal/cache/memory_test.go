// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestMemoryCache(maxSize int) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: maxSize})
}

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := newTestMemoryCache(100)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	if err := cache.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, err := cache.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("expected value1, got %s", val)
	}

	// Returned slices are copies.
	val[0] = 'X'
	again, _ := cache.Get(ctx, "key1")
	if string(again) != "value1" {
		t.Errorf("cached value mutated: %s", again)
	}

	if has, _ := cache.Has(ctx, "key1"); !has {
		t.Error("expected key1 to exist")
	}
	if err := cache.Delete(ctx, "key1"); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Get(ctx, "key1"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Delete error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	cache := newTestMemoryCache(0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	_ = cache.Set(ctx, "short", []byte("x"), time.Second)
	_ = cache.Set(ctx, "long", []byte("y"), time.Minute)

	now = now.Add(2 * time.Second)
	if _, err := cache.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired entry returned, err = %v", err)
	}
	if has, _ := cache.Has(ctx, "long"); !has {
		t.Error("unexpired entry missing")
	}
}

func TestMemoryCache_DeleteByPrefixAndClear(t *testing.T) {
	cache := newTestMemoryCache(0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	for _, k := range []string{"page:en:home", "page:de:home", "other"} {
		_ = cache.Set(ctx, k, []byte(k), 0)
	}
	if err := cache.DeleteByPrefix(ctx, "page:"); err != nil {
		t.Fatal(err)
	}
	if st := cache.Stats(); st.Items != 1 || st.Size != int64(len("other")) {
		t.Errorf("stats after prefix delete = %+v", st)
	}
	_ = cache.Clear(ctx)
	if st := cache.Stats(); st.Items != 0 || st.Size != 0 {
		t.Errorf("stats after clear = %+v", st)
	}
}

func TestMemoryCache_MaxSize(t *testing.T) {
	cache := newTestMemoryCache(3)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	for i := range 5 {
		_ = cache.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Duration(i+1)*time.Minute)
	}
	if n := cache.Stats().Items; n != 3 {
		t.Errorf("items = %d, want 3", n)
	}
	if has, _ := cache.Has(ctx, "k4"); !has {
		t.Error("newest entry evicted")
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := newTestMemoryCache(0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "a", []byte("1"), 0)
	_, _ = cache.Get(ctx, "a")
	_, _ = cache.Get(ctx, "b")

	st := cache.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Sets != 1 || st.HitRate != 50 {
		t.Errorf("stats = %+v", st)
	}
	cache.ResetStats()
	if st := cache.Stats(); st.Hits != 0 || st.Misses != 0 {
		t.Errorf("stats after reset = %+v", st)
	}
}

func TestMemoryCache_Closed(t *testing.T) {
	cache := newTestMemoryCache(0)
	_ = cache.Close()
	_ = cache.Close()
	ctx := context.Background()

	if err := cache.Set(ctx, "a", nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set on closed cache = %v", err)
	}
	if _, err := cache.Get(ctx, "a"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get on closed cache = %v", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := newTestMemoryCache(0)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%5)
			_ = cache.Set(ctx, key, []byte("v"), 0)
			_, _ = cache.Get(ctx, key)
			_ = cache.DeleteByPrefix(ctx, "k")
		}(i)
	}
	wg.Wait()
}
