// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/testutil"
)

func TestPageCache(t *testing.T) {
	backend := newTestMemoryCache(0)
	defer func() { _ = backend.Close() }()
	pc := NewPageCache(backend, time.Minute, testutil.TestLoggerSilent())
	ctx := context.Background()

	if _, ok := pc.Get(ctx, "en", "home"); ok {
		t.Fatal("empty cache hit")
	}
	pc.Put(ctx, "en", "home", []byte("<html>home</html>"))
	pc.Put(ctx, "de", "home", []byte("<html>start</html>"))
	_ = backend.Set(ctx, "unrelated", []byte("x"), 0)

	body, ok := pc.Get(ctx, "en", "home")
	if !ok || string(body) != "<html>home</html>" {
		t.Fatalf("Get = %q, %v", body, ok)
	}

	pc.InvalidateCollection(ctx, model.GroupCollection(1))
	if _, ok := pc.Get(ctx, "de", "home"); ok {
		t.Error("page survived invalidation")
	}
	if has, _ := backend.Has(ctx, "unrelated"); !has {
		t.Error("invalidation dropped unrelated keys")
	}

	st, ok := pc.Stats()
	if !ok || st.Hits != 1 {
		t.Errorf("stats = %+v, %v", st, ok)
	}
}

func TestPageCacheOnClosedBackend(t *testing.T) {
	backend := newTestMemoryCache(0)
	_ = backend.Close()
	pc := NewPageCache(backend, 0, testutil.TestLoggerSilent())
	ctx := context.Background()

	pc.Put(ctx, "en", "home", []byte("x"))
	if _, ok := pc.Get(ctx, "en", "home"); ok {
		t.Error("closed backend returned a page")
	}
	pc.InvalidateCollection(ctx, model.PageCollection(1))
}
