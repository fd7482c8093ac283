// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editor holds the client-side section list model and the editing
// session that loads, edits and saves one page or section group.
package editor

import (
	"cmp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/olegiv/blockcms/internal/section"
)

// TempPrefix marks ids of sections that have never been saved.
const TempPrefix = "tmp-"

// NewTempID returns a fresh temporary section id.
func NewTempID() string {
	return TempPrefix + uuid.NewString()
}

// IsTempID reports whether id denotes an unsaved section.
func IsTempID(id string) bool {
	return id == "" || strings.HasPrefix(id, TempPrefix)
}

// List is an immutable ordered section list. Every operation returns a new
// list whose orders are exactly 0..N-1 in list position. Operations naming
// an unknown id return the list unchanged.
type List struct {
	items []section.Section
}

// NewList builds a list from stored sections, sorted stably by their
// stored order. Sections without an id get a temporary one.
func NewList(sections []section.Section) List {
	items := make([]section.Section, len(sections))
	for i, s := range sections {
		items[i] = s.Clone()
		if items[i].ID == "" {
			items[i].ID = NewTempID()
		}
	}
	slices.SortStableFunc(items, func(a, b section.Section) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return reindex(items)
}

func reindex(items []section.Section) List {
	for i := range items {
		items[i].Order = i
	}
	return List{items: items}
}

// Len returns the number of sections.
func (l List) Len() int {
	return len(l.items)
}

// Sections returns a deep copy of the sections in order.
func (l List) Sections() []section.Section {
	out := make([]section.Section, len(l.items))
	for i, s := range l.items {
		out[i] = s.Clone()
	}
	return out
}

// At returns a copy of the section at position i.
func (l List) At(i int) (section.Section, bool) {
	if i < 0 || i >= len(l.items) {
		return section.Section{}, false
	}
	return l.items[i].Clone(), true
}

// Index returns the position of id, or -1.
func (l List) Index(id string) int {
	return slices.IndexFunc(l.items, func(s section.Section) bool { return s.ID == id })
}

// Get returns a copy of the section with id.
func (l List) Get(id string) (section.Section, bool) {
	return l.At(l.Index(id))
}

// IDs returns the section ids in order.
func (l List) IDs() []string {
	ids := make([]string, len(l.items))
	for i, s := range l.items {
		ids[i] = s.ID
	}
	return ids
}

// clone copies the item slice; section props are shared and must be
// replaced, not modified.
func (l List) clone() []section.Section {
	return slices.Clone(l.items)
}

// Add inserts a new enabled section of type t with registry defaults at
// position at. Out-of-range positions append. It returns the new list and
// the new section's temporary id.
func (l List) Add(reg *section.Registry, t section.Type, at int) (List, string) {
	s := reg.New(t)
	s.ID = NewTempID()
	return l.Insert(s, at), s.ID
}

// Insert places s at position at, appending when at is out of range.
func (l List) Insert(s section.Section, at int) List {
	if at < 0 || at > len(l.items) {
		at = len(l.items)
	}
	s = s.Clone()
	if s.ID == "" {
		s.ID = NewTempID()
	}
	return reindex(slices.Insert(l.clone(), at, s))
}

// Remove deletes the section with id.
func (l List) Remove(id string) List {
	i := l.Index(id)
	if i < 0 {
		return l
	}
	return reindex(slices.Delete(l.clone(), i, i+1))
}

// Duplicate inserts a deep copy of the section with id right after it.
// The copy gets a temporary id, which is returned.
func (l List) Duplicate(id string) (List, string) {
	i := l.Index(id)
	if i < 0 {
		return l, ""
	}
	dup := l.items[i].Clone()
	dup.ID = NewTempID()
	return reindex(slices.Insert(l.clone(), i+1, dup)), dup.ID
}

// Move relocates the section with id to position to, clamped to the list.
func (l List) Move(id string, to int) List {
	i := l.Index(id)
	if i < 0 {
		return l
	}
	to = max(0, min(to, len(l.items)-1))
	if to == i {
		return l
	}
	items := l.clone()
	s := items[i]
	items = slices.Delete(items, i, i+1)
	return reindex(slices.Insert(items, to, s))
}

// MoveUp moves the section with id one position towards the start.
func (l List) MoveUp(id string) List {
	i := l.Index(id)
	if i <= 0 {
		return l
	}
	return l.Move(id, i-1)
}

// MoveDown moves the section with id one position towards the end.
func (l List) MoveDown(id string) List {
	i := l.Index(id)
	if i < 0 {
		return l
	}
	return l.Move(id, i+1)
}

// Toggle flips the enabled flag of the section with id.
func (l List) Toggle(id string) List {
	i := l.Index(id)
	if i < 0 {
		return l
	}
	return l.SetEnabled(id, !l.items[i].Enabled)
}

// SetEnabled sets the enabled flag of the section with id.
func (l List) SetEnabled(id string, enabled bool) List {
	return l.update(id, func(s *section.Section) { s.Enabled = enabled })
}

// PatchProps merges patch into the props of the section with id.
func (l List) PatchProps(id string, patch section.Props) List {
	return l.update(id, func(s *section.Section) { s.Props = s.Props.Merge(patch) })
}

// ReplaceProps sets the props of the section with id.
func (l List) ReplaceProps(id string, props section.Props) List {
	return l.update(id, func(s *section.Section) { s.Props = props.Clone() })
}

func (l List) update(id string, fn func(*section.Section)) List {
	i := l.Index(id)
	if i < 0 {
		return l
	}
	items := l.clone()
	fn(&items[i])
	return reindex(items)
}

// RenameIDs replaces section ids found in mapping, used after a save
// assigns stable ids to temporary ones.
func (l List) RenameIDs(mapping map[string]string) List {
	if len(mapping) == 0 {
		return l
	}
	items := l.clone()
	for i := range items {
		if id, ok := mapping[items[i].ID]; ok && id != "" {
			items[i].ID = id
		}
	}
	return reindex(items)
}
