// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/section"
	"github.com/olegiv/blockcms/internal/testutil"
)

func TestExtractSnapshotSections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []section.Type
		wantErr bool
	}{
		{
			name:    "raw list",
			payload: `[{"id":"1","type":"text","props":{"html":"<p>a</p>"}},{"type":"hero"}]`,
			want:    []section.Type{section.TypeText, section.TypeHero},
		},
		{
			name:    "sections key",
			payload: `{"title":"Home","sections":[{"type":"faq","order":1},{"type":"callout","order":0}]}`,
			want:    []section.Type{section.TypeCallout, section.TypeFAQ},
		},
		{
			name:    "numeric keys",
			payload: `{"1":{"type":"hero"},"0":{"type":"text"},"10":{"type":"faq"}}`,
			want:    []section.Type{section.TypeText, section.TypeHero, section.TypeFAQ},
		},
		{
			name:    "numeric keys under sections",
			payload: `{"sections":{"0":{"type":"image"}}}`,
			want:    []section.Type{section.TypeImage},
		},
		{
			name:    "entries without type are dropped",
			payload: `[{"props":{}},"junk",{"type":"text"}]`,
			want:    []section.Type{section.TypeText},
		},
		{name: "metadata only", payload: `{"title":"Home"}`, wantErr: true},
		{name: "empty object", payload: `{}`, wantErr: true},
		{name: "null", payload: `null`, wantErr: true},
		{name: "string", payload: `"sections"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractSnapshotSections(json.RawMessage(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, errNoRestorableContent)
				return
			}
			require.NoError(t, err)
			types := make([]section.Type, len(got))
			for i, s := range got {
				types[i] = s.Type
			}
			assert.Equal(t, tt.want, types)
		})
	}
}

func TestExtractSnapshotSectionsIDs(t *testing.T) {
	got, err := extractSnapshotSections(json.RawMessage(`[{"id":12,"type":"text","enabled":false},{"id":"7","type":"text"}]`))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "12", got[0].ID)
	assert.False(t, got[0].Enabled)
	assert.Equal(t, "7", got[1].ID)
	assert.True(t, got[1].Enabled)
}

func TestRestoreRevisionReproducesContent(t *testing.T) {
	db := testutil.TestDB(t)
	s := newTestService(t, db, Options{})
	page := testutil.CreatePage(t, db, "Home", "home")
	ref := model.PageCollection(page.ID)
	ctx := context.Background()

	v1, err := s.SaveSections(ctx, SaveRequest{
		Collection: ref,
		Sections: []SectionInput{
			{Type: "hero", Props: map[string]any{"title": "Original"}},
			{Type: "text", Enabled: boolPtr(false), Props: map[string]any{"html": "<p>hidden</p>"}},
		},
		Actor: editorActor,
	})
	require.NoError(t, err)
	original := load(t, s, ref)

	v2, err := s.UpdatePageMeta(ctx, UpdatePageMetaRequest{
		PageID:               page.ID,
		Meta:                 PageMeta{Title: "Renamed", Slug: "renamed", Locale: "en", Status: model.PageStatusDraft},
		ExpectedLastModified: v1.LastModified,
		Actor:                editorActor,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)

	for i := 0; i < 3; i++ {
		c := load(t, s, ref)
		_, err = s.SaveSections(ctx, SaveRequest{
			Collection:           ref,
			Sections:             []SectionInput{{Type: "faq"}},
			ExpectedLastModified: c.LastModified,
			Actor:                editorActor,
		})
		require.NoError(t, err)
	}

	revs, err := s.ListRevisions(ctx, ref, 10, reviewerActor)
	require.NoError(t, err)
	require.Len(t, revs, 5)
	first := revs[len(revs)-1]
	require.Equal(t, 1, first.Version)

	res, err := s.RestoreRevision(ctx, RestoreRequest{Collection: ref, RevisionID: first.ID, Actor: publisherActor})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Version)

	restored := load(t, s, ref)
	assert.Equal(t, "Home", restored.Title)
	require.Len(t, restored.Sections, len(original.Sections))
	for i := range original.Sections {
		assert.Equal(t, original.Sections[i].Type, restored.Sections[i].Type)
		assert.Equal(t, original.Sections[i].Enabled, restored.Sections[i].Enabled)
		assert.Equal(t, original.Sections[i].Props, restored.Sections[i].Props)
	}

	p, err := s.GetPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, "home", p.Slug)
	assert.Equal(t, model.PageStatusDraft, p.Status)

	latest, err := s.ListRevisions(ctx, ref, 1, reviewerActor)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, model.SourceRestore, latest[0].Source)
	assert.Equal(t, "Restored from version 1", latest[0].Note)

	full, err := s.GetRevision(ctx, ref, latest[0].ID, reviewerActor)
	require.NoError(t, err)
	require.NotNil(t, full.Snapshot)
	assert.Len(t, full.Snapshot.Sections, 2)
	assert.Equal(t, "Home", full.Snapshot.Title)
}

func TestRestoreRevisionErrors(t *testing.T) {
	db := testutil.TestDB(t)
	s := newTestService(t, db, Options{})
	page := testutil.CreatePage(t, db, "Home", "home")
	group := testutil.CreateGroup(t, db, "Header", model.LocationHeader)
	ctx := context.Background()

	_, err := s.SaveSections(ctx, SaveRequest{Collection: model.GroupCollection(group.ID), Sections: []SectionInput{{Type: "text"}}, Actor: editorActor})
	require.NoError(t, err)
	revs, err := s.ListRevisions(ctx, model.GroupCollection(group.ID), 1, reviewerActor)
	require.NoError(t, err)
	require.Len(t, revs, 1)

	// Editors may not restore.
	_, err = s.RestoreRevision(ctx, RestoreRequest{Collection: model.GroupCollection(group.ID), RevisionID: revs[0].ID, Actor: editorActor})
	assert.Equal(t, CodeUnauthorized, ErrorCode(err))

	// A revision of another collection is not found.
	_, err = s.RestoreRevision(ctx, RestoreRequest{Collection: model.PageCollection(page.ID), RevisionID: revs[0].ID, Actor: publisherActor})
	assert.Equal(t, CodeNotFound, ErrorCode(err))

	_, err = s.GetRevision(ctx, model.PageCollection(page.ID), revs[0].ID, reviewerActor)
	assert.Equal(t, CodeNotFound, ErrorCode(err))

	// A stale token is a conflict.
	_, err = s.RestoreRevision(ctx, RestoreRequest{
		Collection:           model.GroupCollection(group.ID),
		RevisionID:           revs[0].ID,
		ExpectedLastModified: "2000-01-01T00:00:00Z",
		Actor:                publisherActor,
	})
	assert.Equal(t, CodeStale, ErrorCode(err))

	// An unreadable snapshot has no restorable content.
	_, err = db.ExecContext(ctx, `UPDATE revisions SET snapshot = '{"title":"x"}' WHERE id = ?`, revs[0].ID)
	require.NoError(t, err)
	_, err = s.RestoreRevision(ctx, RestoreRequest{Collection: model.GroupCollection(group.ID), RevisionID: revs[0].ID, Actor: publisherActor})
	assert.Equal(t, CodeValidationFailed, ErrorCode(err))
}
