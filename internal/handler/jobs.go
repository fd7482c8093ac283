// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/scheduler"
	"github.com/olegiv/blockcms/internal/service"
)

// JobsHandler exposes the background job registry to administrators.
type JobsHandler struct {
	registry *scheduler.Registry
	events   *service.EventService
}

// NewJobsHandler creates a new JobsHandler.
func NewJobsHandler(registry *scheduler.Registry, events *service.EventService) *JobsHandler {
	return &JobsHandler{registry: registry, events: events}
}

// Routes mounts the job routes on r, restricted to admins.
func (h *JobsHandler) Routes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Use(middleware.RequireRole(model.RoleAdmin, h.events, DenyJSON))
		r.Get("/", h.List)
		r.Post("/{name}/run", h.Run)
		r.Put("/{name}/schedule", h.UpdateSchedule)
		r.Delete("/{name}/schedule", h.ResetSchedule)
	})
}

// List handles GET /jobs.
func (h *JobsHandler) List(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, map[string]any{"jobs": h.registry.List()})
}

// Run handles POST /jobs/{name}/run.
func (h *JobsHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.registry.TriggerNow(r.Context(), name); err != nil {
		h.writeJobError(w, name, err)
		return
	}
	writeOK(w, nil)
}

type scheduleRequest struct {
	Schedule string `json:"schedule"`
}

// UpdateSchedule handles PUT /jobs/{name}/schedule.
func (h *JobsHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := chi.URLParam(r, "name")
	if err := h.registry.UpdateSchedule(name, req.Schedule); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			h.writeJobError(w, name, err)
			return
		}
		writeErrorBody(w, http.StatusUnprocessableEntity, ErrorBody{
			Code:    service.CodeValidationFailed,
			Message: "Invalid cron expression.",
			Details: map[string]any{"fields": map[string]any{"schedule": err.Error()}},
		})
		return
	}
	writeOK(w, nil)
}

// ResetSchedule handles DELETE /jobs/{name}/schedule.
func (h *JobsHandler) ResetSchedule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.registry.ResetSchedule(name); err != nil {
		h.writeJobError(w, name, err)
		return
	}
	writeOK(w, nil)
}

func (h *JobsHandler) writeJobError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, scheduler.ErrJobNotFound) {
		writeErrorBody(w, http.StatusNotFound, ErrorBody{Code: service.CodeNotFound, Message: "Unknown job " + name + "."})
		return
	}
	slog.Warn("job run failed", "name", name, "error", err)
	writeErrorBody(w, http.StatusInternalServerError, ErrorBody{Code: codeJobFailed, Message: "The job failed. Details are in the job list and the server log."})
}
