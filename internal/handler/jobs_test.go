// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/scheduler"
	"github.com/olegiv/blockcms/internal/service"
	"github.com/olegiv/blockcms/internal/store"
	"github.com/olegiv/blockcms/internal/testutil"
)

func TestJobsHandler(t *testing.T) {
	db := testutil.TestDB(t)
	admin := testutil.CreateUser(t, db, "admin@example.com", model.RoleAdmin)
	publisher := testutil.CreateUser(t, db, "pub@example.com", model.RolePublisher)

	s := scheduler.New(testutil.TestLoggerSilent())
	runs := 0
	_ = s.Registry().Add(scheduler.Job{Name: "ok", Schedule: "@daily", Run: func(context.Context) error {
		runs++
		return nil
	}})
	_ = s.Registry().Add(scheduler.Job{Name: "broken", Schedule: "@daily", Run: func(context.Context) error {
		return errors.New("disk full")
	}})
	h := NewJobsHandler(s.Registry(), service.NewEventService(db))

	router := func(user *store.User) http.Handler {
		r := chi.NewRouter()
		r.Use(withUser(user))
		h.Routes(r)
		return r
	}
	asAdmin := router(&admin)

	tests := []struct {
		name     string
		h        http.Handler
		method   string
		path     string
		body     string
		wantCode int
	}{
		{"publisher denied", router(&publisher), http.MethodGet, "/jobs", "", http.StatusForbidden},
		{"anonymous denied", router(nil), http.MethodGet, "/jobs", "", http.StatusUnauthorized},
		{"list", asAdmin, http.MethodGet, "/jobs", "", http.StatusOK},
		{"run", asAdmin, http.MethodPost, "/jobs/ok/run", "", http.StatusOK},
		{"run failing", asAdmin, http.MethodPost, "/jobs/broken/run", "", http.StatusInternalServerError},
		{"run missing", asAdmin, http.MethodPost, "/jobs/nope/run", "", http.StatusNotFound},
		{"bad schedule", asAdmin, http.MethodPut, "/jobs/ok/schedule", `{"schedule":"sometimes"}`, http.StatusUnprocessableEntity},
		{"schedule", asAdmin, http.MethodPut, "/jobs/ok/schedule", `{"schedule":"@hourly"}`, http.StatusOK},
		{"reset", asAdmin, http.MethodDelete, "/jobs/ok/schedule", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := doJSON(t, tt.h, tt.method, tt.path, tt.body)
			if code != tt.wantCode {
				t.Errorf("status = %d, want %d (%+v)", code, tt.wantCode, resp.Error)
			}
			if (code == http.StatusOK) != resp.OK {
				t.Errorf("ok = %v for status %d", resp.OK, code)
			}
		})
	}
	if runs != 1 {
		t.Errorf("runs = %d", runs)
	}
	if jobs := s.Registry().List(); jobs[0].Name != "broken" || jobs[0].LastError != "disk full" {
		t.Errorf("jobs = %+v", jobs)
	}
}
