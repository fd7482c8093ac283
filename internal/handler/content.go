// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/service"
	"github.com/olegiv/blockcms/internal/store"
)

// ContentHandler serves the admin JSON API used by the section editor.
type ContentHandler struct {
	content *service.ContentService
	refs    *service.ReferenceService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(content *service.ContentService, refs *service.ReferenceService) *ContentHandler {
	return &ContentHandler{content: content, refs: refs}
}

// Routes mounts the API on r. Authentication and CSRF are applied by the
// caller; capability checks happen in the service.
func (h *ContentHandler) Routes(r chi.Router) {
	r.Get("/section-types", h.SectionTypes)
	r.Get("/reference-data", h.ReferenceData)

	r.Post("/pages", h.CreatePage)
	r.Route("/pages/{id}", func(r chi.Router) {
		r.Get("/", h.GetPage)
		r.Patch("/", h.UpdatePage)
		r.Post("/publish", h.Publish)
		r.Post("/unpublish", h.Unpublish)
		h.collectionRoutes(r, model.CollectionPage)
	})
	r.Route("/groups/{id}", func(r chi.Router) {
		h.collectionRoutes(r, model.CollectionGroup)
	})
}

func (h *ContentHandler) collectionRoutes(r chi.Router, kind model.CollectionKind) {
	r.Get("/sections", h.withRef(kind, h.GetSections))
	r.Put("/sections", h.withRef(kind, h.PutSections))
	r.Get("/revisions", h.withRef(kind, h.ListRevisions))
	r.Get("/revisions/{revisionId}", h.withRef(kind, h.GetRevision))
	r.Post("/revisions/{revisionId}/restore", h.withRef(kind, h.RestoreRevision))
}

type refHandler func(w http.ResponseWriter, r *http.Request, ref model.CollectionRef)

func (h *ContentHandler) withRef(kind model.CollectionKind, next refHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		next(w, r, model.CollectionRef{Kind: kind, ID: id})
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// SectionTypes handles GET /section-types.
func (h *ContentHandler) SectionTypes(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, map[string]any{"types": h.content.Registry().Specs()})
}

// ReferenceData handles GET /reference-data.
func (h *ContentHandler) ReferenceData(w http.ResponseWriter, r *http.Request) {
	data, err := h.refs.Load(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"pages": data.Pages, "mediaUrls": data.MediaURLs})
}

// GetSections handles GET /{kind}/{id}/sections.
func (h *ContentHandler) GetSections(w http.ResponseWriter, r *http.Request, ref model.CollectionRef) {
	c, err := h.content.LoadSections(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{
		"collection":   c.Collection,
		"title":        c.Title,
		"lastModified": c.LastModified,
		"sections":     c.Sections,
	})
}

type saveSectionsRequest struct {
	Sections             *[]service.SectionInput `json:"sections"`
	ExpectedLastModified string                  `json:"expectedLastModified"`
	Note                 string                  `json:"note"`
}

// PutSections handles PUT /{kind}/{id}/sections.
func (h *ContentHandler) PutSections(w http.ResponseWriter, r *http.Request, ref model.CollectionRef) {
	var req saveSectionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	// An absent or null list is never read as "clear the collection".
	if req.Sections == nil {
		writeError(w, r, &service.ValidationError{
			Message: "sections list is required",
			Fields:  map[string]string{"sections": "must be a list"},
		})
		return
	}
	res, err := h.content.SaveSections(r.Context(), service.SaveRequest{
		Collection:           ref,
		Sections:             *req.Sections,
		ExpectedLastModified: req.ExpectedLastModified,
		Source:               model.SourceSections,
		Note:                 req.Note,
		Actor:                middleware.Actor(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSaveResult(w, res)
}

// ListRevisions handles GET /{kind}/{id}/revisions.
func (h *ContentHandler) ListRevisions(w http.ResponseWriter, r *http.Request, ref model.CollectionRef) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	revs, err := h.content.ListRevisions(r.Context(), ref, limit, middleware.Actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if revs == nil {
		revs = []model.Revision{}
	}
	writeOK(w, map[string]any{"revisions": revs})
}

// GetRevision handles GET /{kind}/{id}/revisions/{revisionId}.
func (h *ContentHandler) GetRevision(w http.ResponseWriter, r *http.Request, ref model.CollectionRef) {
	revID, ok := pathID(w, r, "revisionId")
	if !ok {
		return
	}
	rev, err := h.content.GetRevision(r.Context(), ref, revID, middleware.Actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"revision": rev})
}

type restoreRequest struct {
	ExpectedLastModified string `json:"expectedLastModified"`
}

// RestoreRevision handles POST /{kind}/{id}/revisions/{revisionId}/restore.
func (h *ContentHandler) RestoreRevision(w http.ResponseWriter, r *http.Request, ref model.CollectionRef) {
	revID, ok := pathID(w, r, "revisionId")
	if !ok {
		return
	}
	var req restoreRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.content.RestoreRevision(r.Context(), service.RestoreRequest{
		Collection:           ref,
		RevisionID:           revID,
		ExpectedLastModified: req.ExpectedLastModified,
		Actor:                middleware.Actor(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSaveResult(w, res)
}

// CreatePage handles POST /pages.
func (h *ContentHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var meta service.PageMeta
	if !decodeJSON(w, r, &meta) {
		return
	}
	p, err := h.content.CreatePage(r.Context(), meta, middleware.Actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"ok":           true,
		"id":           p.ID,
		"slug":         p.Slug,
		"lastModified": service.FormatToken(p.UpdatedAt),
	})
}

// GetPage handles GET /pages/{id}.
func (h *ContentHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.content.GetPage(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := pageResponse{ID: p.ID, PageMeta: pageView(p)}
	if p.PublishedAt.Valid {
		resp.PublishedAt = &p.PublishedAt.Time
	}
	writeOK(w, map[string]any{"page": resp, "lastModified": service.FormatToken(p.UpdatedAt)})
}

type pageResponse struct {
	ID int64 `json:"id"`
	service.PageMeta
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

func pageView(p store.Page) service.PageMeta {
	m := service.PageMeta{
		Title:           p.Title,
		Slug:            p.Slug,
		Locale:          p.Locale,
		Status:          p.Status,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
	}
	if p.ScheduledAt.Valid {
		at := p.ScheduledAt.Time
		m.ScheduledAt = &at
	}
	return m
}

type updatePageRequest struct {
	service.PageMeta
	ExpectedLastModified string `json:"expectedLastModified"`
	Note                 string `json:"note"`
}

// UpdatePage handles PATCH /pages/{id}. Omitted fields keep their
// current values.
func (h *ContentHandler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	current, err := h.content.GetPage(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req := updatePageRequest{PageMeta: pageView(current)}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.content.UpdatePageMeta(r.Context(), service.UpdatePageMetaRequest{
		PageID:               id,
		Meta:                 req.PageMeta,
		ExpectedLastModified: req.ExpectedLastModified,
		Note:                 req.Note,
		Actor:                middleware.Actor(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSaveResult(w, res)
}

// Publish handles POST /pages/{id}/publish.
func (h *ContentHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true)
}

// Unpublish handles POST /pages/{id}/unpublish.
func (h *ContentHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false)
}

func (h *ContentHandler) setPublished(w http.ResponseWriter, r *http.Request, publish bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var (
		res service.SaveResult
		err error
	)
	if publish {
		res, err = h.content.Publish(r.Context(), id, middleware.Actor(r))
	} else {
		res, err = h.content.Unpublish(r.Context(), id, middleware.Actor(r))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSaveResult(w, res)
}
