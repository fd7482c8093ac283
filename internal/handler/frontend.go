// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blockcms/internal/cache"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/render"
	"github.com/olegiv/blockcms/internal/section"
	"github.com/olegiv/blockcms/internal/service"
)

// HomeSlug is the slug served at "/".
const HomeSlug = "home"

// FrontendHandler serves published pages.
type FrontendHandler struct {
	content  *service.ContentService
	renderer *render.PageRenderer
	pages    *cache.PageCache
	logger   *slog.Logger
}

// NewFrontendHandler creates a new FrontendHandler. pages may be nil to
// disable the rendered page cache.
func NewFrontendHandler(content *service.ContentService, renderer *render.PageRenderer, pages *cache.PageCache, logger *slog.Logger) *FrontendHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrontendHandler{content: content, renderer: renderer, pages: pages, logger: logger}
}

// Routes mounts the public routes on r.
func (h *FrontendHandler) Routes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/{slug}", h.Page)
	r.Get("/{locale}/{slug}", h.LocalePage)
}

// Home handles GET /.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "", HomeSlug)
}

// Page handles GET /{slug}.
func (h *FrontendHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "", chi.URLParam(r, "slug"))
}

// LocalePage handles GET /{locale}/{slug}.
func (h *FrontendHandler) LocalePage(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "locale"), chi.URLParam(r, "slug"))
}

func (h *FrontendHandler) serve(w http.ResponseWriter, r *http.Request, locale, slug string) {
	ctx := r.Context()
	if h.pages != nil {
		if body, ok := h.pages.Get(ctx, locale, slug); ok {
			writeHTML(w, http.StatusOK, body, "HIT")
			return
		}
	}

	p, sections, err := h.content.PublishedPage(ctx, locale, slug)
	if err != nil {
		if service.ErrorCode(err) == service.CodeNotFound {
			h.renderError(w, http.StatusNotFound, "Page not found", "The page you are looking for does not exist.")
			return
		}
		h.logger.Error("loading page", "locale", locale, "slug", slug, "error", err)
		h.renderError(w, http.StatusServiceUnavailable, "Temporarily unavailable", "Please try again in a moment.")
		return
	}

	page := render.Page{
		Title:           p.Title,
		Locale:          p.Locale,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		Sections:        sections,
	}
	page.Header = h.group(ctx, model.LocationHeader)
	page.Banner = h.group(ctx, model.LocationBanner)
	page.Footer = h.group(ctx, model.LocationFooter)

	var buf bytes.Buffer
	if err := h.renderer.WritePage(&buf, page); err != nil {
		h.logger.Error("rendering page", "page_id", p.ID, "error", err)
		h.renderError(w, http.StatusInternalServerError, "Something went wrong", "The page could not be displayed.")
		return
	}
	if h.pages != nil {
		h.pages.Put(ctx, locale, slug, buf.Bytes())
	}
	writeHTML(w, http.StatusOK, buf.Bytes(), "MISS")
}

// group loads the sections bound to a layout location. A failing group
// is left out rather than failing the page.
func (h *FrontendHandler) group(ctx context.Context, location string) []section.Section {
	sections, err := h.content.GroupSections(ctx, location)
	if err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Warn("loading section group", "location", location, "error", err)
	}
	return sections
}

func (h *FrontendHandler) renderError(w http.ResponseWriter, status int, title, message string) {
	var buf bytes.Buffer
	if err := h.renderer.WriteError(&buf, title, message); err != nil {
		h.logger.Error("rendering error page", "error", err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	writeHTML(w, status, buf.Bytes(), "")
}

func writeHTML(w http.ResponseWriter, status int, body []byte, cacheState string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if cacheState != "" {
		w.Header().Set("X-Cache", cacheState)
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
