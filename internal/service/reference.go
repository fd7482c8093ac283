// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/section"
	"github.com/olegiv/blockcms/internal/store"
)

// ReferenceService loads the pick-list data offered by the editor: pages
// to link to and media already used by stored sections.
type ReferenceService struct {
	queries  *store.Queries
	registry *section.Registry
}

// NewReferenceService creates a ReferenceService.
func NewReferenceService(db *sql.DB, registry *section.Registry) *ReferenceService {
	if registry == nil {
		registry = section.Default()
	}
	return &ReferenceService{queries: store.New(db), registry: registry}
}

// Load returns every page and the deduplicated, sorted media URLs found in
// image fields and inline images of stored sections.
func (s *ReferenceService) Load(ctx context.Context) (model.ReferenceData, error) {
	pages, err := s.queries.ListPages(ctx)
	if err != nil {
		return model.ReferenceData{}, &StoreUnavailableError{Op: "list pages", Err: err}
	}
	rows, err := s.queries.ListAllSections(ctx)
	if err != nil {
		return model.ReferenceData{}, &StoreUnavailableError{Op: "list sections", Err: err}
	}

	data := model.ReferenceData{
		Pages:     make([]model.ReferencePage, 0, len(pages)),
		MediaURLs: []string{},
	}
	for _, p := range pages {
		data.Pages = append(data.Pages, model.ReferencePage{ID: p.ID, Title: p.Title, Slug: p.Slug, Locale: p.Locale})
	}

	seen := make(map[string]bool)
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] || strings.HasPrefix(strings.ToLower(u), "data:") {
			return
		}
		seen[u] = true
		data.MediaURLs = append(data.MediaURLs, u)
	}
	for _, sec := range decodeSections(rows) {
		spec, ok := s.registry.Lookup(sec.Type)
		if !ok {
			continue
		}
		harvestMedia(spec.Fields, sec.Props, add)
	}
	sort.Strings(data.MediaURLs)
	return data, nil
}

// LoadReference implements editor.ReferenceSource.
func (s *ReferenceService) LoadReference(ctx context.Context) (model.ReferenceData, error) {
	return s.Load(ctx)
}

func harvestMedia(fields []section.Field, props map[string]any, add func(string)) {
	for _, f := range fields {
		v, ok := props[f.Name]
		if !ok {
			continue
		}
		switch f.Kind {
		case section.KindImage:
			add(section.String(v, ""))
		case section.KindHTML:
			for _, src := range imageSources(section.String(v, "")) {
				add(src)
			}
		case section.KindItems:
			for _, item := range section.Items(v) {
				harvestMedia(f.Item, item, add)
			}
		}
	}
}

// imageSources returns the src of every img element in an HTML fragment.
func imageSources(fragment string) []string {
	if !strings.Contains(fragment, "<img") {
		return nil
	}
	var out []string
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "img" {
				continue
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "src" {
					out = append(out, string(val))
				}
			}
		}
	}
}
