// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"

	"github.com/olegiv/blockcms/internal/editor"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/section"
)

// EditorBackend connects an editor.Session running in-process to the
// content service, acting as one user.
type EditorBackend struct {
	content *ContentService
	actor   Actor
	note    string
}

// NewEditorBackend creates an EditorBackend saving as actor.
func NewEditorBackend(content *ContentService, actor Actor) *EditorBackend {
	return &EditorBackend{content: content, actor: actor}
}

// WithNote returns a copy of b that attaches note to every revision.
func (b *EditorBackend) WithNote(note string) *EditorBackend {
	c := *b
	c.note = note
	return &c
}

// LoadSections implements editor.Backend.
func (b *EditorBackend) LoadSections(ctx context.Context, ref model.CollectionRef) (editor.Loaded, error) {
	c, err := b.content.LoadSections(ctx, ref)
	if err != nil {
		return editor.Loaded{}, err
	}
	return editor.Loaded{Sections: c.Sections, Token: c.LastModified}, nil
}

// SaveSections implements editor.Backend. Conflicts match editor.ErrStale.
func (b *EditorBackend) SaveSections(ctx context.Context, ref model.CollectionRef, sections []section.Section, token string) (editor.SaveResult, error) {
	inputs := make([]SectionInput, len(sections))
	for i, s := range sections {
		enabled := s.Enabled
		inputs[i] = SectionInput{ID: s.ID, Type: string(s.Type), Enabled: &enabled, Props: s.Props}
	}
	res, err := b.content.SaveSections(ctx, SaveRequest{
		Collection:           ref,
		Sections:             inputs,
		ExpectedLastModified: token,
		Source:               model.SourceSections,
		Note:                 b.note,
		Actor:                b.actor,
	})
	if err != nil {
		return editor.SaveResult{}, err
	}
	return editor.SaveResult{Token: res.LastModified, Version: res.Version, IDs: res.IDs}, nil
}
