// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the content operations behind the admin API:
// the optimistic-concurrency section save, page metadata and publishing,
// revision history and restore, reference data and the event log.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/sanitize"
	"github.com/olegiv/blockcms/internal/section"
	"github.com/olegiv/blockcms/internal/store"
	"github.com/olegiv/blockcms/internal/util"
)

// DefaultSaveTimeout bounds a whole save transaction, including the wait
// for the write lock.
const DefaultSaveTimeout = 10 * time.Second

// Invalidator drops cached output derived from a collection.
type Invalidator interface {
	InvalidateCollection(ctx context.Context, ref model.CollectionRef)
}

// Options configures a ContentService.
type Options struct {
	Normalizer *sanitize.Normalizer
	// SaveTimeout bounds every write transaction.
	SaveTimeout time.Duration
	// RequireHistory makes revision logging failures abort the write
	// instead of being skipped.
	RequireHistory bool
	// RevisionListLimit caps ListRevisions.
	RevisionListLimit int
	Events            *EventService
	Invalidator       Invalidator
	Logger            *slog.Logger
	// Now is the clock; tests replace it.
	Now func() time.Time
}

// ContentService owns every write to sections, collection metadata and
// revisions.
type ContentService struct {
	db                *sql.DB
	queries           *store.Queries
	normalizer        *sanitize.Normalizer
	saveTimeout       time.Duration
	requireHistory    bool
	revisionListLimit int
	events            *EventService
	invalidator       Invalidator
	logger            *slog.Logger
	now               func() time.Time
}

// NewContentService creates a ContentService.
func NewContentService(db *sql.DB, opts Options) *ContentService {
	s := &ContentService{
		db:                db,
		queries:           store.New(db),
		normalizer:        opts.Normalizer,
		saveTimeout:       opts.SaveTimeout,
		requireHistory:    opts.RequireHistory,
		revisionListLimit: opts.RevisionListLimit,
		events:            opts.Events,
		invalidator:       opts.Invalidator,
		logger:            opts.Logger,
		now:               opts.Now,
	}
	if s.normalizer == nil {
		s.normalizer = sanitize.NewNormalizer(nil)
	}
	if s.saveTimeout <= 0 {
		s.saveTimeout = DefaultSaveTimeout
	}
	if s.revisionListLimit <= 0 {
		s.revisionListLimit = 50
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// SetInvalidator sets the cache invalidator after construction.
func (s *ContentService) SetInvalidator(inv Invalidator) {
	s.invalidator = inv
}

// Registry returns the section registry used for normalisation.
func (s *ContentService) Registry() *section.Registry {
	return s.normalizer.Registry()
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID int64
	Role   string
	IP     string
}

// SystemActor is used by background jobs.
var SystemActor = Actor{Role: model.RoleAdmin}

func authorize(a Actor, action auth.Action) error {
	if !auth.Can(a.Role, action) {
		return &AuthorizationError{Role: model.NormalizeRole(a.Role), Action: action}
	}
	return nil
}

// FormatToken renders a last-modified time as a concurrency token.
func FormatToken(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseToken parses a token produced by FormatToken.
func ParseToken(token string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, token)
}

// SectionInput is one section as submitted by a client. An empty or
// temporary ID means the section is new.
type SectionInput struct {
	ID      string         `json:"id,omitempty"`
	Type    string         `json:"type"`
	Enabled *bool          `json:"enabled,omitempty"`
	Props   map[string]any `json:"props,omitempty"`
}

// SaveRequest replaces the sections of a collection.
type SaveRequest struct {
	Collection model.CollectionRef
	Sections   []SectionInput
	// ExpectedLastModified is the token the client loaded. When empty the
	// token check is skipped.
	ExpectedLastModified string
	Source               model.RevisionSource
	Note                 string
	Actor                Actor
}

// SaveResult is returned by every successful write.
type SaveResult struct {
	LastModified string `json:"lastModified"`
	// Version is the revision written, or 0 when history was skipped.
	Version int `json:"version"`
	// IDs maps submitted ids of new sections to their stored ids.
	IDs map[string]string `json:"ids,omitempty"`
}

// CollectionContent is a collection's sections with its current token.
type CollectionContent struct {
	Collection   model.CollectionRef `json:"collection"`
	Title        string              `json:"title"`
	LastModified string              `json:"lastModified"`
	Sections     []section.Section   `json:"sections"`
}

// collection is the state of a page or group read inside a transaction.
type collection struct {
	ref         model.CollectionRef
	updatedAt   time.Time
	lockVersion int64
	page        store.Page
	group       store.SectionGroup
}

func (c collection) token() string {
	return FormatToken(c.updatedAt)
}

func (c collection) title() string {
	if c.ref.IsPage() {
		return c.page.Title
	}
	return c.group.Name
}

func (c collection) snapshot(sections []section.Section) model.Snapshot {
	if sections == nil {
		sections = []section.Section{}
	}
	if c.ref.IsPage() {
		return model.Snapshot{
			Title:           c.page.Title,
			Slug:            c.page.Slug,
			Locale:          c.page.Locale,
			Status:          c.page.Status,
			MetaTitle:       c.page.MetaTitle,
			MetaDescription: c.page.MetaDescription,
			Sections:        sections,
		}
	}
	return model.Snapshot{
		Title:    c.group.Name,
		Slug:     c.group.Slug,
		Name:     c.group.Name,
		Location: c.group.Location,
		Sections: sections,
	}
}

func (s *ContentService) readCollection(ctx context.Context, q *store.Queries, ref model.CollectionRef) (collection, error) {
	c := collection{ref: ref}
	switch ref.Kind {
	case model.CollectionPage:
		p, err := q.GetPageByID(ctx, ref.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return c, &NotFoundError{What: "page", ID: ref.ID}
		}
		if err != nil {
			return c, fmt.Errorf("reading page: %w", err)
		}
		c.page, c.updatedAt, c.lockVersion = p, p.UpdatedAt, p.LockVersion
	case model.CollectionGroup:
		g, err := q.GetSectionGroupByID(ctx, ref.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return c, &NotFoundError{What: "section group", ID: ref.ID}
		}
		if err != nil {
			return c, fmt.Errorf("reading section group: %w", err)
		}
		c.group, c.updatedAt, c.lockVersion = g, g.UpdatedAt, g.LockVersion
	default:
		return c, invalid("unknown collection kind")
	}
	return c, nil
}

func (s *ContentService) listSections(ctx context.Context, q *store.Queries, ref model.CollectionRef) ([]store.Section, error) {
	if ref.IsPage() {
		return q.ListSectionsByPage(ctx, ref.ID)
	}
	return q.ListSectionsByGroup(ctx, ref.ID)
}

// decodeSections converts stored rows. Undecodable props become empty and
// unknown types are kept verbatim for the renderer's placeholder.
func decodeSections(rows []store.Section) []section.Section {
	out := make([]section.Section, 0, len(rows))
	for _, r := range rows {
		props := section.Props{}
		if err := json.Unmarshal([]byte(r.Props), &props); err != nil || props == nil {
			props = section.Props{}
		}
		t, ok := section.ParseType(r.Type)
		if !ok {
			t = section.Type(r.Type)
		}
		out = append(out, section.Section{
			ID:      strconv.FormatInt(r.ID, 10),
			Type:    t,
			Order:   int(r.SortOrder),
			Enabled: r.Enabled,
			Props:   props,
		})
	}
	return out
}

// checkToken compares the expected token against the stored last-modified
// time as instants. An empty expectation skips the check.
func checkToken(c collection, expected string) error {
	if expected == "" {
		return nil
	}
	t, err := ParseToken(expected)
	if err != nil || !t.Equal(c.updatedAt) {
		return &ConflictError{Collection: c.ref, Expected: expected, Current: c.token()}
	}
	return nil
}

// nextModified returns a last-modified time strictly later than prev.
func (s *ContentService) nextModified(prev time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return now
}

// touch moves the collection's last-modified time to at, guarded by a
// compare-and-swap on lock_version.
func touch(ctx context.Context, q *store.Queries, c collection, at time.Time) error {
	var (
		n   int64
		err error
	)
	if c.ref.IsPage() {
		n, err = q.TouchPage(ctx, store.TouchPageParams{ID: c.ref.ID, UpdatedAt: at, LockVersion: c.lockVersion})
	} else {
		n, err = q.TouchSectionGroup(ctx, store.TouchSectionGroupParams{ID: c.ref.ID, UpdatedAt: at, LockVersion: c.lockVersion})
	}
	if err != nil {
		return fmt.Errorf("touching %s: %w", c.ref, err)
	}
	if n == 0 {
		return &ConflictError{Collection: c.ref, Current: c.token()}
	}
	return nil
}

// replaceSections deletes every section of the collection and inserts
// sections in order. Sections whose id names an existing section of this
// collection keep it; the others get new ids, reported in the returned
// map keyed by the submitted id.
func (s *ContentService) replaceSections(ctx context.Context, q *store.Queries, c collection, sections []section.Section, at time.Time) (map[string]string, []section.Section, error) {
	existing, err := s.listSections(ctx, q, c.ref)
	if err != nil {
		return nil, nil, fmt.Errorf("listing sections: %w", err)
	}
	known := make(map[int64]bool, len(existing))
	for _, r := range existing {
		known[r.ID] = true
	}

	if c.ref.IsPage() {
		err = q.DeleteSectionsByPage(ctx, c.ref.ID)
	} else {
		err = q.DeleteSectionsByGroup(ctx, c.ref.ID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("deleting sections: %w", err)
	}

	owner := util.NullInt64FromID(c.ref.ID)
	ids := make(map[string]string)
	stored := make([]section.Section, len(sections))
	for i, sec := range sections {
		props, err := json.Marshal(sec.Props)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding section %d props: %w", i, err)
		}
		arg := store.InsertSectionParams{
			Type:      string(sec.Type),
			SortOrder: int64(i),
			Enabled:   sec.Enabled,
			Props:     string(props),
			CreatedAt: at,
		}
		if c.ref.IsPage() {
			arg.PageID = owner
		} else {
			arg.GroupID = owner
		}
		if id := util.ParseNullInt64Positive(sec.ID); id.Valid && known[id.Int64] {
			arg.ID = id
			delete(known, id.Int64)
		}
		newID, err := q.InsertSection(ctx, arg)
		if err != nil {
			return nil, nil, fmt.Errorf("inserting section %d: %w", i, err)
		}
		stored[i] = sec.Clone()
		stored[i].ID = strconv.FormatInt(newID, 10)
		stored[i].Order = i
		if sec.ID != "" && sec.ID != stored[i].ID {
			ids[sec.ID] = stored[i].ID
		}
	}
	return ids, stored, nil
}

// writeRevision appends a revision with the next version of the
// collection. Schema drift and duplicate versions are ignorable unless
// history is required: they are returned as skipped for logging after the
// transaction ends. Any other failure aborts the transaction.
func (s *ContentService) writeRevision(ctx context.Context, q *store.Queries, c collection, source model.RevisionSource, note string, actor Actor, snap model.Snapshot, at time.Time) (version int, skipped error, err error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return 0, nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	coll := store.CollectionParams{Kind: string(c.ref.Kind), ID: c.ref.ID}
	last, err := q.GetMaxRevisionVersion(ctx, coll)
	if err != nil {
		return s.revisionFailure(err)
	}
	rev, err := q.CreateRevision(ctx, store.CreateRevisionParams{
		CollectionKind: coll.Kind,
		CollectionID:   coll.ID,
		Version:        last + 1,
		Source:         string(source),
		Note:           note,
		Snapshot:       string(payload),
		CreatedBy:      util.NullInt64FromID(actor.UserID),
		CreatedAt:      at,
	})
	if err != nil {
		return s.revisionFailure(err)
	}
	return int(rev.Version), nil, nil
}

func (s *ContentService) revisionFailure(err error) (int, error, error) {
	switch {
	case store.IsSchemaDrift(err):
		if s.requireHistory {
			return 0, nil, &SchemaDriftError{Err: err}
		}
		return 0, &SchemaDriftError{Err: err}, nil
	case store.IsUniqueViolation(err):
		if s.requireHistory {
			return 0, nil, fmt.Errorf("writing revision: %w", err)
		}
		return 0, fmt.Errorf("duplicate revision version: %w", err), nil
	default:
		return 0, nil, fmt.Errorf("writing revision: %w", err)
	}
}

// inTx runs fn in one write transaction bounded by the save timeout.
// Errors that are not already typed are reported as StoreUnavailable.
func (s *ContentService) inTx(ctx context.Context, op string, fn func(q *store.Queries) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StoreUnavailableError{Op: op, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(s.queries.WithTx(tx)); err != nil {
		return classify(op, err)
	}
	if err := tx.Commit(); err != nil {
		return &StoreUnavailableError{Op: op, Err: err}
	}
	return nil
}

func classify(op string, err error) error {
	var (
		verr *ValidationError
		aerr *AuthorizationError
		cerr *ConflictError
		nerr *NotFoundError
		serr *StoreUnavailableError
		derr *SchemaDriftError
	)
	if errors.As(err, &verr) || errors.As(err, &aerr) || errors.As(err, &cerr) ||
		errors.As(err, &nerr) || errors.As(err, &serr) || errors.As(err, &derr) {
		return err
	}
	return &StoreUnavailableError{Op: op, Err: err}
}

// LoadSections returns a collection's sections, normalised for editing,
// and its token.
func (s *ContentService) LoadSections(ctx context.Context, ref model.CollectionRef) (CollectionContent, error) {
	if !ref.Valid() {
		return CollectionContent{}, invalid("collection is required")
	}
	// The token is read before the sections. A concurrent save between the
	// two reads leaves the client with an older token, so its next save
	// conflicts instead of overwriting.
	c, err := s.readCollection(ctx, s.queries, ref)
	if err != nil {
		return CollectionContent{}, classify("load sections", err)
	}
	rows, err := s.listSections(ctx, s.queries, ref)
	if err != nil {
		return CollectionContent{}, &StoreUnavailableError{Op: "load sections", Err: err}
	}
	sections := decodeSections(rows)
	for i := range sections {
		if sections[i].Type.Valid() {
			sections[i] = s.normalizer.Section(sections[i])
		}
	}
	return CollectionContent{
		Collection:   ref,
		Title:        c.title(),
		LastModified: c.token(),
		Sections:     sections,
	}, nil
}

// prepareSections validates and normalises submitted sections, stamping
// dense orders by position.
func (s *ContentService) prepareSections(inputs []SectionInput) ([]section.Section, error) {
	fields := make(map[string]string)
	out := make([]section.Section, len(inputs))
	for i, in := range inputs {
		t, ok := section.ParseType(in.Type)
		if !ok {
			fields[fmt.Sprintf("sections[%d].type", i)] = fmt.Sprintf("unknown section type %q", in.Type)
			continue
		}
		enabled := true
		if in.Enabled != nil {
			enabled = *in.Enabled
		}
		out[i] = section.Section{
			ID:      in.ID,
			Type:    t,
			Order:   i,
			Enabled: enabled,
			Props:   s.normalizer.Normalize(t, in.Props),
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Message: "invalid sections", Fields: fields}
	}
	return out, nil
}

// SaveSections runs the save protocol: validate, authorize, normalise,
// then in one transaction check the token, replace the sections, append a
// revision and touch the collection.
func (s *ContentService) SaveSections(ctx context.Context, req SaveRequest) (SaveResult, error) {
	if !req.Collection.Valid() {
		return SaveResult{}, invalid("collection is required")
	}
	if req.Sections == nil {
		return SaveResult{}, &ValidationError{Message: "sections list is required", Fields: map[string]string{"sections": "must be a list"}}
	}
	if req.Source == "" {
		req.Source = model.SourceSections
	}
	if !req.Source.Valid() {
		return SaveResult{}, invalid("unknown revision source")
	}
	if req.ExpectedLastModified != "" {
		if _, err := ParseToken(req.ExpectedLastModified); err != nil {
			return SaveResult{}, &ValidationError{Message: "invalid token", Fields: map[string]string{"expectedLastModified": "not a timestamp"}}
		}
	}
	if err := authorize(req.Actor, auth.ActionEdit); err != nil {
		return SaveResult{}, err
	}
	sections, err := s.prepareSections(req.Sections)
	if err != nil {
		return SaveResult{}, err
	}

	var (
		res     SaveResult
		skipped error
	)
	err = s.inTx(ctx, "save sections", func(q *store.Queries) error {
		c, err := s.readCollection(ctx, q, req.Collection)
		if err != nil {
			return err
		}
		if err := checkToken(c, req.ExpectedLastModified); err != nil {
			return err
		}
		at := s.nextModified(c.updatedAt)
		ids, stored, err := s.replaceSections(ctx, q, c, sections, at)
		if err != nil {
			return err
		}
		version, skip, err := s.writeRevision(ctx, q, c, req.Source, req.Note, req.Actor, c.snapshot(stored), at)
		if err != nil {
			return err
		}
		if err := touch(ctx, q, c, at); err != nil {
			return err
		}
		res = SaveResult{LastModified: FormatToken(at), Version: version, IDs: ids}
		skipped = skip
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "save sections", req.Collection, req.Actor, err)
		return SaveResult{}, err
	}
	s.afterWrite(ctx, req.Collection, req.Actor, "Sections saved", res, skipped)
	return res, nil
}

// afterWrite logs and invalidates once the transaction has ended.
func (s *ContentService) afterWrite(ctx context.Context, ref model.CollectionRef, actor Actor, message string, res SaveResult, skipped error) {
	if skipped != nil {
		s.logger.Warn("revision history skipped",
			"category", model.EventCategoryRevision,
			"collection", ref.String(),
			"error", skipped)
	}
	if s.events != nil {
		_ = s.events.LogInfo(ctx, model.EventCategoryContent, message, actor.UserID, actor.IP, map[string]any{
			"collection": ref.String(),
			"version":    res.Version,
		})
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateCollection(ctx, ref)
	}
}

func (s *ContentService) logFailure(ctx context.Context, op string, ref model.CollectionRef, actor Actor, err error) {
	switch ErrorCode(err) {
	case CodeStale:
		s.logger.Info("write conflict", "op", op, "collection", ref.String(), "user_id", actor.UserID)
		if s.events != nil {
			_ = s.events.LogWarning(ctx, model.EventCategoryContent, "Write conflict", actor.UserID, actor.IP, map[string]any{
				"op":         op,
				"collection": ref.String(),
			})
		}
	case CodeStoreUnavailable:
		s.logger.Error("write failed", "op", op, "collection", ref.String(), "error", err)
	}
}
