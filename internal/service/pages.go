// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/section"
	"github.com/olegiv/blockcms/internal/store"
	"github.com/olegiv/blockcms/internal/util"
)

// PageMeta is the editable metadata of a page.
type PageMeta struct {
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Locale          string     `json:"locale"`
	Status          string     `json:"status"`
	MetaTitle       string     `json:"metaTitle"`
	MetaDescription string     `json:"metaDescription"`
	ScheduledAt     *time.Time `json:"scheduledAt,omitempty"`
}

// UpdatePageMetaRequest changes page metadata under the token check.
type UpdatePageMetaRequest struct {
	PageID               int64
	Meta                 PageMeta
	ExpectedLastModified string
	Note                 string
	Actor                Actor
}

// normalizeMeta trims and validates m. An empty slug is derived from the
// title.
func normalizeMeta(m PageMeta) (PageMeta, error) {
	m.Title = strings.TrimSpace(m.Title)
	m.Slug = strings.TrimSpace(m.Slug)
	m.Locale = strings.ToLower(strings.TrimSpace(m.Locale))
	m.Status = strings.TrimSpace(m.Status)
	m.MetaTitle = strings.TrimSpace(m.MetaTitle)
	m.MetaDescription = strings.TrimSpace(m.MetaDescription)
	if m.Slug == "" {
		m.Slug = util.Slugify(m.Title)
	}
	if m.Status == "" {
		m.Status = model.PageStatusDraft
	}
	if m.ScheduledAt != nil {
		at := m.ScheduledAt.UTC().Truncate(time.Microsecond)
		m.ScheduledAt = &at
	}

	fields := make(map[string]string)
	if m.Title == "" {
		fields["title"] = "Title is required"
	}
	if !util.IsValidSlug(m.Slug) {
		fields["slug"] = "Slug may only contain lowercase letters, digits and single hyphens"
	}
	if m.Locale != "" && !util.IsValidLocale(m.Locale) {
		fields["locale"] = "Locale must look like en or pt-br"
	}
	if !model.ValidPageStatus(m.Status) {
		fields["status"] = "Unknown status"
	}
	if m.Status == model.PageStatusScheduled && m.ScheduledAt == nil {
		fields["scheduledAt"] = "Scheduled pages need a publish time"
	}
	if len(m.MetaDescription) > 500 {
		fields["metaDescription"] = "Meta description is limited to 500 characters"
	}
	if len(fields) > 0 {
		return m, &ValidationError{Message: "invalid page metadata", Fields: fields}
	}
	return m, nil
}

// CreatePage creates an empty draft page.
func (s *ContentService) CreatePage(ctx context.Context, meta PageMeta, actor Actor) (store.Page, error) {
	meta.Status = model.PageStatusDraft
	meta, err := normalizeMeta(meta)
	if err != nil {
		return store.Page{}, err
	}
	if err := authorize(actor, auth.ActionEdit); err != nil {
		return store.Page{}, err
	}
	now := s.now().UTC().Truncate(time.Microsecond)
	p, err := s.queries.CreatePage(ctx, store.CreatePageParams{
		Title:           meta.Title,
		Slug:            meta.Slug,
		Locale:          meta.Locale,
		Status:          meta.Status,
		MetaTitle:       meta.MetaTitle,
		MetaDescription: meta.MetaDescription,
		AuthorID:        util.NullInt64FromID(actor.UserID),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if store.IsUniqueViolation(err) {
		return store.Page{}, &ValidationError{Message: "slug taken", Fields: map[string]string{"slug": "Another page already uses this slug"}}
	}
	if err != nil {
		return store.Page{}, &StoreUnavailableError{Op: "create page", Err: err}
	}
	return p, nil
}

// GetPage returns a page.
func (s *ContentService) GetPage(ctx context.Context, id int64) (store.Page, error) {
	p, err := s.queries.GetPageByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, &NotFoundError{What: "page", ID: id}
	}
	if err != nil {
		return p, &StoreUnavailableError{Op: "get page", Err: err}
	}
	return p, nil
}

// updatePage writes page metadata, sections untouched, and appends a
// revision tagged source.
func (s *ContentService) updatePage(ctx context.Context, pageID int64, expected string, source model.RevisionSource, note string, actor Actor, apply func(p store.Page, at time.Time) (store.UpdatePageMetaParams, error)) (SaveResult, error) {
	ref := model.PageCollection(pageID)
	var (
		res     SaveResult
		skipped error
	)
	err := s.inTx(ctx, "update page", func(q *store.Queries) error {
		c, err := s.readCollection(ctx, q, ref)
		if err != nil {
			return err
		}
		if err := checkToken(c, expected); err != nil {
			return err
		}
		at := s.nextModified(c.updatedAt)
		arg, err := apply(c.page, at)
		if err != nil {
			return err
		}
		arg.ID, arg.UpdatedAt, arg.LockVersion = pageID, at, c.lockVersion
		n, err := q.UpdatePageMeta(ctx, arg)
		if store.IsUniqueViolation(err) {
			return &ValidationError{Message: "slug taken", Fields: map[string]string{"slug": "Another page already uses this slug"}}
		}
		if err != nil {
			return fmt.Errorf("updating page: %w", err)
		}
		if n == 0 {
			return &ConflictError{Collection: ref, Expected: expected, Current: c.token()}
		}

		rows, err := s.listSections(ctx, q, ref)
		if err != nil {
			return fmt.Errorf("listing sections: %w", err)
		}
		c.page.Title, c.page.Slug, c.page.Locale, c.page.Status = arg.Title, arg.Slug, arg.Locale, arg.Status
		c.page.MetaTitle, c.page.MetaDescription = arg.MetaTitle, arg.MetaDescription
		version, skip, err := s.writeRevision(ctx, q, c, source, note, actor, c.snapshot(decodeSections(rows)), at)
		if err != nil {
			return err
		}
		res = SaveResult{LastModified: FormatToken(at), Version: version}
		skipped = skip
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "update page", ref, actor, err)
		return SaveResult{}, err
	}
	msg := "Page metadata updated"
	if source == model.SourcePublish {
		msg = "Page publication changed"
	}
	s.afterWrite(ctx, ref, actor, msg, res, skipped)
	return res, nil
}

// UpdatePageMeta changes title, slug, locale, status and SEO fields.
// Changing the status needs publish rights.
func (s *ContentService) UpdatePageMeta(ctx context.Context, req UpdatePageMetaRequest) (SaveResult, error) {
	if req.PageID <= 0 {
		return SaveResult{}, invalid("page id is required")
	}
	meta, err := normalizeMeta(req.Meta)
	if err != nil {
		return SaveResult{}, err
	}
	if err := authorize(req.Actor, auth.ActionEdit); err != nil {
		return SaveResult{}, err
	}
	return s.updatePage(ctx, req.PageID, req.ExpectedLastModified, model.SourceMetadata, req.Note, req.Actor,
		func(p store.Page, at time.Time) (store.UpdatePageMetaParams, error) {
			if meta.Status != p.Status {
				if err := authorize(req.Actor, auth.ActionPublish); err != nil {
					return store.UpdatePageMetaParams{}, err
				}
			}
			published := p.PublishedAt
			if meta.Status == model.PageStatusPublished && !published.Valid {
				published = sql.NullTime{Time: at, Valid: true}
			}
			scheduled := sql.NullTime{}
			if meta.Status == model.PageStatusScheduled {
				scheduled = util.NullTimeFromPtr(meta.ScheduledAt)
			}
			return store.UpdatePageMetaParams{
				Title:           meta.Title,
				Slug:            meta.Slug,
				Locale:          meta.Locale,
				Status:          meta.Status,
				MetaTitle:       meta.MetaTitle,
				MetaDescription: meta.MetaDescription,
				ScheduledAt:     scheduled,
				PublishedAt:     published,
			}, nil
		})
}

// Publish makes a page public. It writes a publish revision.
func (s *ContentService) Publish(ctx context.Context, pageID int64, actor Actor) (SaveResult, error) {
	return s.setPublished(ctx, pageID, actor, true)
}

// Unpublish returns a page to draft.
func (s *ContentService) Unpublish(ctx context.Context, pageID int64, actor Actor) (SaveResult, error) {
	return s.setPublished(ctx, pageID, actor, false)
}

func (s *ContentService) setPublished(ctx context.Context, pageID int64, actor Actor, publish bool) (SaveResult, error) {
	if pageID <= 0 {
		return SaveResult{}, invalid("page id is required")
	}
	if err := authorize(actor, auth.ActionPublish); err != nil {
		return SaveResult{}, err
	}
	note := "Unpublished"
	if publish {
		note = "Published"
	}
	return s.updatePage(ctx, pageID, "", model.SourcePublish, note, actor,
		func(p store.Page, at time.Time) (store.UpdatePageMetaParams, error) {
			arg := store.UpdatePageMetaParams{
				Title:           p.Title,
				Slug:            p.Slug,
				Locale:          p.Locale,
				Status:          model.PageStatusDraft,
				MetaTitle:       p.MetaTitle,
				MetaDescription: p.MetaDescription,
				PublishedAt:     p.PublishedAt,
			}
			if publish {
				arg.Status = model.PageStatusPublished
				arg.PublishedAt = sql.NullTime{Time: at, Valid: true}
			}
			return arg, nil
		})
}

// PublishDue publishes scheduled pages whose time has come and returns how
// many were published. A failing page does not stop the others.
func (s *ContentService) PublishDue(ctx context.Context) (int, error) {
	due, err := s.queries.ListDueScheduledPages(ctx, s.now().UTC())
	if err != nil {
		return 0, &StoreUnavailableError{Op: "list scheduled pages", Err: err}
	}
	var (
		published int
		errs      []error
	)
	for _, p := range due {
		if _, err := s.Publish(ctx, p.ID, SystemActor); err != nil {
			errs = append(errs, fmt.Errorf("publishing page %d: %w", p.ID, err))
			continue
		}
		published++
	}
	return published, errors.Join(errs...)
}

// PublishedPage returns a published page by locale and slug with its raw
// stored sections. Rendering re-validates every value.
func (s *ContentService) PublishedPage(ctx context.Context, locale, slug string) (store.Page, []section.Section, error) {
	p, err := s.queries.GetPageBySlug(ctx, store.GetPageBySlugParams{Locale: locale, Slug: slug})
	if errors.Is(err, sql.ErrNoRows) || (err == nil && p.Status != model.PageStatusPublished) {
		return store.Page{}, nil, &NotFoundError{What: "page"}
	}
	if err != nil {
		return store.Page{}, nil, &StoreUnavailableError{Op: "get page", Err: err}
	}
	rows, err := s.queries.ListSectionsByPage(ctx, p.ID)
	if err != nil {
		return store.Page{}, nil, &StoreUnavailableError{Op: "list sections", Err: err}
	}
	return p, decodeSections(rows), nil
}

// GroupSections returns the raw sections of the group bound to location,
// or none when no group is bound.
func (s *ContentService) GroupSections(ctx context.Context, location string) ([]section.Section, error) {
	g, err := s.queries.GetSectionGroupByLocation(ctx, location)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreUnavailableError{Op: "get section group", Err: err}
	}
	rows, err := s.queries.ListSectionsByGroup(ctx, g.ID)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "list sections", Err: err}
	}
	return decodeSections(rows), nil
}
