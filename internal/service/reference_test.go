// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/editor"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/richdoc"
	"github.com/olegiv/blockcms/internal/section"
	"github.com/olegiv/blockcms/internal/testutil"
)

func TestImageSources(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"<p>no images</p>", nil},
		{`<p><img src="/a.png" alt="a"><img alt="none"></p>`, []string{"/a.png"}},
		{`<img src="https://cdn.example.com/b.jpg"/>`, []string{"https://cdn.example.com/b.jpg"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, imageSources(tt.in), tt.in)
	}
}

func TestReferenceServiceLoad(t *testing.T) {
	db := testutil.TestDB(t)
	content := newTestService(t, db, Options{})
	page := testutil.CreatePage(t, db, "Home", "home")
	testutil.CreatePage(t, db, "About", "about")
	ctx := context.Background()

	_, err := content.SaveSections(ctx, SaveRequest{
		Collection: model.PageCollection(page.ID),
		Sections: []SectionInput{
			{Type: "hero", Props: map[string]any{"title": "Hi", "backgroundImage": "/uploads/hero.jpg"}},
			{Type: "image", Props: map[string]any{"src": "/uploads/b.png"}},
			{Type: "text", Props: map[string]any{"html": `<p><img src="/uploads/a.png"><img src="data:image/png;base64,AAAA"></p>`}},
			{Type: "faq", Props: map[string]any{"items": []any{map[string]any{"question": "Q", "answer": `<p><img src="/uploads/b.png"></p>`}}}},
		},
		Actor: editorActor,
	})
	require.NoError(t, err)

	data, err := NewReferenceService(db, nil).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/a.png", "/uploads/b.png", "/uploads/hero.jpg"}, data.MediaURLs)
	require.Len(t, data.Pages, 2)
	assert.Equal(t, "About", data.Pages[0].Title)
	assert.Equal(t, "home", data.Pages[1].Slug)
}

func TestEditorBackendDrivesSession(t *testing.T) {
	db := testutil.TestDB(t)
	content := newTestService(t, db, Options{})
	page := testutil.CreatePage(t, db, "Home", "home")
	ref := model.PageCollection(page.ID)
	ctx := context.Background()

	opts := []editor.Option{
		editor.WithReferenceSource(NewReferenceService(db, nil)),
		editor.WithTextDebounce(richdoc.DebounceConfig{Interval: time.Hour}),
	}
	a, err := editor.Open(ctx, NewEditorBackend(content, editorActor), ref, opts...)
	require.NoError(t, err)
	defer a.Close()
	b, err := editor.Open(ctx, NewEditorBackend(content, editorActor), ref, opts...)
	require.NoError(t, err)
	defer b.Close()

	id := a.Add(section.TypeText, -1)
	te, err := a.TextEditor(id, "html")
	require.NoError(t, err)
	te.InsertText("from a")
	res, err := a.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Version)
	stable := res.IDs[id]
	require.NotEmpty(t, stable)
	assert.Equal(t, []string{stable}, a.List().IDs())

	ref1, err := a.Reference(ctx)
	require.NoError(t, err)
	assert.Len(t, ref1.Pages, 1)

	// b still holds the token from before a's save.
	b.Add(section.TypeHero, 0)
	_, err = b.Save(ctx)
	require.True(t, errors.Is(err, editor.ErrStale))
	assert.True(t, b.NeedsReload())

	require.NoError(t, b.Reload(ctx))
	assert.Equal(t, []string{stable}, b.List().IDs())
	sec, _ := b.List().Get(stable)
	assert.Equal(t, "<p>from a</p>", sec.Props["html"])
}
