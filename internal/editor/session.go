// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/richdoc"
	"github.com/olegiv/blockcms/internal/sanitize"
	"github.com/olegiv/blockcms/internal/section"
)

// Session errors.
var (
	// ErrStale is returned (possibly wrapped) by a Backend when the
	// collection changed since the session's token was issued.
	ErrStale = errors.New("collection changed since it was loaded")
	// ErrNeedsReload is returned by Save after a conflict until Reload.
	ErrNeedsReload = errors.New("session must be reloaded before saving")
	// ErrSaveInProgress is returned when Save is called during a save.
	ErrSaveInProgress = errors.New("save already in progress")
	// ErrClosed is returned by a closed session.
	ErrClosed = errors.New("session closed")
	// ErrNotRichText is returned by TextEditor for non-HTML fields.
	ErrNotRichText = errors.New("field does not hold rich text")
)

// Loaded is the server state of a collection.
type Loaded struct {
	Sections []section.Section
	Token    string
}

// SaveResult is returned by a successful save.
type SaveResult struct {
	Token   string
	Version int
	// IDs maps the temporary ids of saved sections to their stable ids.
	IDs map[string]string
}

// Backend loads and saves the sections of a collection.
type Backend interface {
	LoadSections(ctx context.Context, ref model.CollectionRef) (Loaded, error)
	SaveSections(ctx context.Context, ref model.CollectionRef, sections []section.Section, token string) (SaveResult, error)
}

// ReferenceSource provides pick-list data for the session.
type ReferenceSource interface {
	LoadReference(ctx context.Context) (model.ReferenceData, error)
}

// Option configures a Session.
type Option func(*Session)

// WithRegistry sets the section registry. The default registry is used
// otherwise.
func WithRegistry(r *section.Registry) Option {
	return func(s *Session) { s.registry = r }
}

// WithReferenceSource sets where reference data is loaded from.
func WithReferenceSource(src ReferenceSource) Option {
	return func(s *Session) { s.refs = src }
}

// WithTextDebounce sets how rich-text edits are coalesced before they
// reach the section list.
func WithTextDebounce(cfg richdoc.DebounceConfig) Option {
	return func(s *Session) { s.debounce = cfg }
}

// WithImageEncoder sets how images pasted into rich text are embedded.
func WithImageEncoder(enc richdoc.ImageEncoder) Option {
	return func(s *Session) { s.encoder = enc }
}

// textBinding ties a rich-text editor to one HTML field of a section.
type textBinding struct {
	sectionID string
	field     string
	editor    *richdoc.Editor
	detached  bool
}

// Session is the editing session for one collection. It owns the section
// list, the concurrency token, reference data and the rich-text editors of
// the sections being edited. After a conflict it refuses to save until
// reloaded.
type Session struct {
	ref      model.CollectionRef
	backend  Backend
	refs     ReferenceSource
	registry *section.Registry
	debounce richdoc.DebounceConfig
	encoder  richdoc.ImageEncoder

	mu          sync.Mutex
	list        List
	token       string
	version     int
	generation  int
	saved       int
	needsReload bool
	saving      bool
	closed      bool
	texts       map[string]*textBinding

	refMu     sync.Mutex
	reference *model.ReferenceData
}

// Open loads the collection and starts a session.
func Open(ctx context.Context, backend Backend, ref model.CollectionRef, opts ...Option) (*Session, error) {
	if !ref.Valid() {
		return nil, fmt.Errorf("invalid collection %v", ref)
	}
	s := &Session{
		ref:      ref,
		backend:  backend,
		registry: section.Default(),
		debounce: richdoc.DefaultDebounceConfig(),
		texts:    make(map[string]*textBinding),
	}
	for _, opt := range opts {
		opt(s)
	}
	loaded, err := backend.LoadSections(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", ref, err)
	}
	s.list = NewList(loaded.Sections)
	s.token = loaded.Token
	return s, nil
}

// Ref returns the collection being edited.
func (s *Session) Ref() model.CollectionRef {
	return s.ref
}

// List returns the current section list.
func (s *Session) List() List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list
}

// Token returns the concurrency token of the last load or save.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Version returns the revision version written by the last save.
func (s *Session) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Dirty reports whether there are unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation != s.saved
}

// NeedsReload reports whether a save conflicted.
func (s *Session) NeedsReload() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needsReload
}

// Update replaces the list with fn(list). Rich-text editors of sections
// that no longer exist are closed.
func (s *Session) Update(fn func(List) List) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	next := fn(s.list)
	s.list = next
	s.generation++
	var orphans []*textBinding
	for key, b := range s.texts {
		if next.Index(b.sectionID) < 0 {
			orphans = append(orphans, b)
			delete(s.texts, key)
		}
	}
	s.mu.Unlock()

	for _, b := range orphans {
		b.editor.Close()
	}
}

// Add appends or inserts a section of type t and returns its id.
func (s *Session) Add(t section.Type, at int) string {
	var id string
	s.Update(func(l List) List {
		var next List
		next, id = l.Add(s.registry, t, at)
		return next
	})
	return id
}

// Duplicate copies the section with id and returns the copy's id.
func (s *Session) Duplicate(id string) string {
	var dup string
	s.Update(func(l List) List {
		var next List
		next, dup = l.Duplicate(id)
		return next
	})
	return dup
}

// Remove deletes the section with id.
func (s *Session) Remove(id string) {
	s.Update(func(l List) List { return l.Remove(id) })
}

// PatchProps merges patch into a section's props.
func (s *Session) PatchProps(id string, patch section.Props) {
	s.Update(func(l List) List { return l.PatchProps(id, patch) })
}

func textKey(id, field string) string {
	return id + "\x00" + field
}

// TextEditor returns the rich-text editor for an HTML field of a section,
// creating it from the field's current HTML on first use. Document changes
// are written back to the field, sanitised, through the editor's
// debouncer.
func (s *Session) TextEditor(id, field string) (*richdoc.Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if b, ok := s.texts[textKey(id, field)]; ok {
		return b.editor, nil
	}
	sec, ok := s.list.Get(id)
	if !ok {
		return nil, fmt.Errorf("section %q not found", id)
	}
	spec, ok := s.registry.Lookup(sec.Type)
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q", ErrNotRichText, sec.Type)
	}
	f, ok := spec.Field(field)
	if !ok || f.Kind != section.KindHTML {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotRichText, sec.Type, field)
	}
	doc, err := richdoc.Parse(section.String(sec.Props[field], ""))
	if err != nil {
		return nil, fmt.Errorf("parsing %s.%s: %w", id, field, err)
	}

	b := &textBinding{sectionID: id, field: field}
	opts := []richdoc.Option{
		richdoc.WithDebounce(s.debounce),
		richdoc.WithChangeHandler(func(doc *richdoc.Node) { s.syncText(b, doc) }),
	}
	if s.encoder != nil {
		opts = append(opts, richdoc.WithImageEncoder(s.encoder))
	}
	b.editor = richdoc.NewEditor(doc, opts...)
	s.texts[textKey(id, field)] = b
	return b.editor, nil
}

func (s *Session) syncText(b *textBinding, doc *richdoc.Node) {
	html := sanitize.HTML(richdoc.Serialize(doc))
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || b.detached || s.list.Index(b.sectionID) < 0 {
		return
	}
	s.list = s.list.PatchProps(b.sectionID, section.Props{b.field: html})
	s.generation++
}

// flushText delivers pending rich-text changes. It must be called without
// holding mu.
func (s *Session) flushText() {
	s.mu.Lock()
	editors := make([]*richdoc.Editor, 0, len(s.texts))
	for _, b := range s.texts {
		editors = append(editors, b.editor)
	}
	s.mu.Unlock()
	for _, e := range editors {
		e.Blur()
	}
}

// Save sends the list to the backend with the session token. On success
// the token is replaced and temporary ids become stable. On a conflict the
// session needs a reload.
func (s *Session) Save(ctx context.Context) (SaveResult, error) {
	s.flushText()

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return SaveResult{}, ErrClosed
	case s.needsReload:
		s.mu.Unlock()
		return SaveResult{}, ErrNeedsReload
	case s.saving:
		s.mu.Unlock()
		return SaveResult{}, ErrSaveInProgress
	}
	if errs := s.list.Validate(s.registry); errs != nil {
		s.mu.Unlock()
		return SaveResult{}, &ValidationError{Sections: errs}
	}
	sections := s.list.Sections()
	token := s.token
	generation := s.generation
	s.saving = true
	s.mu.Unlock()

	res, err := s.backend.SaveSections(ctx, s.ref, sections, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		if errors.Is(err, ErrStale) {
			s.needsReload = true
		}
		return SaveResult{}, err
	}
	s.token = res.Token
	s.version = res.Version
	s.list = s.list.RenameIDs(res.IDs)
	for key, b := range s.texts {
		if id, ok := res.IDs[b.sectionID]; ok {
			delete(s.texts, key)
			b.sectionID = id
			s.texts[textKey(id, b.field)] = b
		}
	}
	if s.generation == generation {
		s.generation++
		s.saved = s.generation
	} else {
		s.generation++
	}
	return res, nil
}

// Reload discards local changes and reloads the collection from the
// backend, clearing a pending conflict.
func (s *Session) Reload(ctx context.Context) error {
	loaded, err := s.backend.LoadSections(ctx, s.ref)
	if err != nil {
		return fmt.Errorf("reloading %s: %w", s.ref, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	texts := s.texts
	for _, b := range texts {
		b.detached = true
	}
	s.texts = make(map[string]*textBinding)
	s.list = NewList(loaded.Sections)
	s.token = loaded.Token
	s.needsReload = false
	s.generation++
	s.saved = s.generation
	s.mu.Unlock()

	// Detached bindings drop the edits flushed by Close.
	for _, b := range texts {
		b.editor.Close()
	}
	return nil
}

// Reference returns the session's reference data, loading it on first use.
func (s *Session) Reference(ctx context.Context) (model.ReferenceData, error) {
	s.refMu.Lock()
	defer s.refMu.Unlock()
	if s.reference != nil {
		return *s.reference, nil
	}
	if s.refs == nil {
		return model.ReferenceData{}, nil
	}
	data, err := s.refs.LoadReference(ctx)
	if err != nil {
		return model.ReferenceData{}, fmt.Errorf("loading reference data: %w", err)
	}
	s.reference = &data
	return data, nil
}

// Close flushes and closes the rich-text editors and drops reference data.
// The session cannot be used afterwards.
func (s *Session) Close() {
	s.flushText()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	texts := s.texts
	s.texts = nil
	s.mu.Unlock()

	for _, b := range texts {
		b.editor.Close()
	}
	s.refMu.Lock()
	s.reference = nil
	s.refMu.Unlock()
}
