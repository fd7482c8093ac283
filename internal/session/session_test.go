// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/olegiv/blockcms/internal/testutil"
)

func TestNew_DevMode(t *testing.T) {
	sm := New(testutil.TestDB(t), Options{IsDev: true})

	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false in dev mode")
	}
	if sm.Cookie.Name == "__Host-session" {
		t.Error("expected default cookie name in dev mode")
	}
	if sm.Lifetime != 24*time.Hour {
		t.Errorf("Lifetime = %v, want 24h", sm.Lifetime)
	}
}

func TestNew_ProductionMode(t *testing.T) {
	sm := New(testutil.TestDB(t), Options{Lifetime: time.Hour})

	if !sm.Cookie.Secure || sm.Cookie.Name != "__Host-session" || sm.Cookie.Path != "/" {
		t.Errorf("cookie = %+v", sm.Cookie)
	}
	if !sm.Cookie.HttpOnly || sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie flags = %+v", sm.Cookie)
	}
	if sm.Lifetime != time.Hour {
		t.Errorf("Lifetime = %v", sm.Lifetime)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	sm := New(testutil.TestDB(t), Options{IsDev: true})

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if err := Login(r.Context(), sm, 42); err != nil {
			t.Errorf("Login() error = %v", err)
		}
	})
	mux.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strconv.FormatInt(UserID(r.Context(), sm), 10)))
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := Logout(r.Context(), sm); err != nil {
			t.Errorf("Logout() error = %v", err)
		}
	})
	h := sm.LoadAndSave(mux)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login set no cookie")
	}

	whoami := func() string {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(cookies[0])
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Body.String()
	}
	if got := whoami(); got != "42" {
		t.Fatalf("whoami = %q, want 42", got)
	}

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookies[0])
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got := whoami(); got != "0" {
		t.Errorf("whoami after logout = %q, want 0", got)
	}
}
