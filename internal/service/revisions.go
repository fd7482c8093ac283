// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/section"
	"github.com/olegiv/blockcms/internal/store"
)

// errNoRestorableContent is returned by the snapshot extractors when none
// of them recognises the payload.
var errNoRestorableContent = errors.New("no restorable content")

// RestoreRequest restores a collection to the content of one revision.
type RestoreRequest struct {
	Collection model.CollectionRef
	RevisionID int64
	// ExpectedLastModified is optional, as for SaveRequest.
	ExpectedLastModified string
	Actor                Actor
}

// snapshotExtractor pulls a section list out of a stored snapshot.
type snapshotExtractor func(raw json.RawMessage) ([]json.RawMessage, bool)

// snapshotExtractors are tried in order; the first match wins.
var snapshotExtractors = []snapshotExtractor{
	extractRawList,
	extractSectionsKey,
	extractNumericKeys,
}

func extractRawList(raw json.RawMessage) ([]json.RawMessage, bool) {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil || list == nil {
		return nil, false
	}
	return list, true
}

func extractSectionsKey(raw json.RawMessage) ([]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	inner, ok := obj["sections"]
	if !ok {
		return nil, false
	}
	if list, ok := extractRawList(inner); ok {
		return list, true
	}
	return extractNumericKeys(inner)
}

func extractNumericKeys(raw json.RawMessage) ([]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || len(obj) == 0 {
		return nil, false
	}
	keys := make([]int, 0, len(obj))
	for k := range obj {
		n, err := strconv.Atoi(k)
		if err != nil {
			return nil, false
		}
		keys = append(keys, n)
	}
	sort.Ints(keys)
	list := make([]json.RawMessage, len(keys))
	for i, k := range keys {
		list[i] = obj[strconv.Itoa(k)]
	}
	return list, true
}

// extractSnapshotSections returns the sections stored in a snapshot
// payload, in stored order. Entries that are not objects with a type are
// dropped.
func extractSnapshotSections(raw json.RawMessage) ([]section.Section, error) {
	var entries []json.RawMessage
	found := false
	for _, extract := range snapshotExtractors {
		if entries, found = extract(raw); found {
			break
		}
	}
	if !found {
		return nil, errNoRestorableContent
	}

	out := make([]section.Section, 0, len(entries))
	for _, e := range entries {
		var loose struct {
			ID      json.RawMessage `json:"id"`
			Type    string          `json:"type"`
			Order   *int            `json:"order"`
			Enabled *bool           `json:"enabled"`
			Props   section.Props   `json:"props"`
		}
		if err := json.Unmarshal(e, &loose); err != nil || loose.Type == "" {
			continue
		}
		s := section.Section{
			ID:      looseID(loose.ID),
			Type:    section.Type(loose.Type),
			Order:   len(out),
			Enabled: loose.Enabled == nil || *loose.Enabled,
			Props:   loose.Props,
		}
		if t, ok := section.ParseType(loose.Type); ok {
			s.Type = t
		}
		if loose.Order != nil {
			s.Order = *loose.Order
		}
		if s.Props == nil {
			s.Props = section.Props{}
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// looseID accepts ids stored as strings or numbers.
func looseID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// decodeSnapshot reads snapshot metadata when the payload is an object and
// the sections through the extractor chain.
func decodeSnapshot(payload string) (*model.Snapshot, error) {
	raw := json.RawMessage(payload)
	sections, err := extractSnapshotSections(raw)
	if err != nil {
		return nil, err
	}
	var snap model.Snapshot
	var meta struct {
		model.Snapshot
		Sections json.RawMessage `json:"sections"`
	}
	if err := json.Unmarshal(raw, &meta); err == nil {
		snap = meta.Snapshot
	}
	snap.Sections = sections
	return &snap, nil
}

func revisionFromRow(r store.Revision) model.Revision {
	return model.Revision{
		ID:         r.ID,
		Collection: model.CollectionRef{Kind: model.CollectionKind(r.CollectionKind), ID: r.CollectionID},
		Version:    int(r.Version),
		Source:     model.RevisionSource(r.Source),
		Note:       r.Note,
		CreatedBy:  r.CreatedBy.Int64,
		CreatedAt:  r.CreatedAt,
	}
}

// ListRevisions returns the most recent revisions of a collection, newest
// first, without snapshots. Missing history tables give an empty list
// unless history is required.
func (s *ContentService) ListRevisions(ctx context.Context, ref model.CollectionRef, limit int, actor Actor) ([]model.Revision, error) {
	if !ref.Valid() {
		return nil, invalid("collection is required")
	}
	if err := authorize(actor, auth.ActionRead); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.revisionListLimit {
		limit = s.revisionListLimit
	}
	rows, err := s.queries.ListRevisions(ctx, store.ListRevisionsParams{Kind: string(ref.Kind), ID: ref.ID, Limit: int64(limit)})
	if store.IsSchemaDrift(err) && !s.requireHistory {
		s.logger.Warn("revision history unavailable", "category", model.EventCategoryRevision, "error", err)
		return []model.Revision{}, nil
	}
	if err != nil {
		return nil, &StoreUnavailableError{Op: "list revisions", Err: err}
	}
	out := make([]model.Revision, len(rows))
	for i, r := range rows {
		out[i] = revisionFromRow(r)
	}
	return out, nil
}

// GetRevision returns one revision of ref with its snapshot.
func (s *ContentService) GetRevision(ctx context.Context, ref model.CollectionRef, id int64, actor Actor) (model.Revision, error) {
	if err := authorize(actor, auth.ActionRead); err != nil {
		return model.Revision{}, err
	}
	row, err := s.getRevision(ctx, s.queries, ref, id)
	if err != nil {
		return model.Revision{}, classify("get revision", err)
	}
	rev := revisionFromRow(row)
	if snap, err := decodeSnapshot(row.Snapshot); err == nil {
		rev.Snapshot = snap
	}
	return rev, nil
}

func (s *ContentService) getRevision(ctx context.Context, q *store.Queries, ref model.CollectionRef, id int64) (store.Revision, error) {
	row, err := q.GetRevision(ctx, id)
	if errors.Is(err, sql.ErrNoRows) || store.IsSchemaDrift(err) ||
		(err == nil && (row.CollectionKind != string(ref.Kind) || row.CollectionID != ref.ID)) {
		return store.Revision{}, &NotFoundError{What: "revision", ID: id}
	}
	if err != nil {
		return store.Revision{}, fmt.Errorf("reading revision: %w", err)
	}
	return row, nil
}

// RestoreRevision replaces the collection's sections, and for pages the
// title, slug, locale and SEO fields, with the content of a revision. The
// publication status is left alone. A new restore revision is appended.
func (s *ContentService) RestoreRevision(ctx context.Context, req RestoreRequest) (SaveResult, error) {
	if !req.Collection.Valid() {
		return SaveResult{}, invalid("collection is required")
	}
	if req.RevisionID <= 0 {
		return SaveResult{}, invalid("revision id is required")
	}
	if req.ExpectedLastModified != "" {
		if _, err := ParseToken(req.ExpectedLastModified); err != nil {
			return SaveResult{}, &ValidationError{Message: "invalid token", Fields: map[string]string{"expectedLastModified": "not a timestamp"}}
		}
	}
	if err := authorize(req.Actor, auth.ActionRestore); err != nil {
		return SaveResult{}, err
	}

	ref := req.Collection
	var (
		res     SaveResult
		skipped error
	)
	err := s.inTx(ctx, "restore revision", func(q *store.Queries) error {
		c, err := s.readCollection(ctx, q, ref)
		if err != nil {
			return err
		}
		if err := checkToken(c, req.ExpectedLastModified); err != nil {
			return err
		}
		row, err := s.getRevision(ctx, q, ref, req.RevisionID)
		if err != nil {
			return err
		}
		snap, err := decodeSnapshot(row.Snapshot)
		if err != nil {
			return invalid(err.Error())
		}
		sections := snap.Sections
		for i := range sections {
			sections[i].Order = i
			if sections[i].Type.Valid() {
				sections[i] = s.normalizer.Section(sections[i])
			}
		}

		at := s.nextModified(c.updatedAt)
		ids, stored, err := s.replaceSections(ctx, q, c, sections, at)
		if err != nil {
			return err
		}
		if ref.IsPage() {
			if err := restorePageMeta(ctx, q, &c, snap, at); err != nil {
				return err
			}
		} else if err := touch(ctx, q, c, at); err != nil {
			return err
		}

		note := fmt.Sprintf("Restored from version %d", row.Version)
		version, skip, err := s.writeRevision(ctx, q, c, model.SourceRestore, note, req.Actor, c.snapshot(stored), at)
		if err != nil {
			return err
		}
		res = SaveResult{LastModified: FormatToken(at), Version: version, IDs: ids}
		skipped = skip
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "restore revision", ref, req.Actor, err)
		return SaveResult{}, err
	}
	s.afterWrite(ctx, ref, req.Actor, "Revision restored", res, skipped)
	return res, nil
}

// restorePageMeta writes the snapshot's page metadata, keeping fields the
// snapshot leaves empty, and updates c to match.
func restorePageMeta(ctx context.Context, q *store.Queries, c *collection, snap *model.Snapshot, at time.Time) error {
	p := c.page
	if snap.Title != "" {
		p.Title = snap.Title
	}
	if snap.Slug != "" {
		p.Slug = snap.Slug
	}
	if snap.Locale != "" {
		p.Locale = snap.Locale
	}
	p.MetaTitle, p.MetaDescription = snap.MetaTitle, snap.MetaDescription

	n, err := q.UpdatePageMeta(ctx, store.UpdatePageMetaParams{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Locale:          p.Locale,
		Status:          p.Status,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		ScheduledAt:     p.ScheduledAt,
		PublishedAt:     p.PublishedAt,
		UpdatedAt:       at,
		LockVersion:     c.lockVersion,
	})
	if store.IsUniqueViolation(err) {
		return &ValidationError{Message: "slug taken", Fields: map[string]string{"slug": "Another page now uses the restored slug"}}
	}
	if err != nil {
		return fmt.Errorf("restoring page metadata: %w", err)
	}
	if n == 0 {
		return &ConflictError{Collection: c.ref, Current: c.token()}
	}
	c.page = p
	return nil
}
