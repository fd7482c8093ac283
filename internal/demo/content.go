// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package demo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/blockcms/internal/editor"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/section"
	"github.com/olegiv/blockcms/internal/service"
	"github.com/olegiv/blockcms/internal/store"
)

// Populate writes sample sections to the seeded home page and header
// group through an editing session, then publishes the home page.
// Collections that already have sections are left alone.
func Populate(ctx context.Context, content *service.ContentService, seed store.SeedResult, actor service.Actor) error {
	backend := service.NewEditorBackend(content, actor).WithNote("Demo content")
	opts := []editor.Option{editor.WithRegistry(content.Registry())}

	if seed.HomePage.Valid {
		ref := model.PageCollection(seed.HomePage.Int64)
		written, err := populate(ctx, backend, ref, opts, homeSections)
		if err != nil {
			return fmt.Errorf("home page: %w", err)
		}
		if written {
			if _, err := content.Publish(ctx, seed.HomePage.Int64, actor); err != nil {
				return fmt.Errorf("publishing home page: %w", err)
			}
		}
	}
	if seed.HeaderBar.Valid {
		ref := model.GroupCollection(seed.HeaderBar.Int64)
		if _, err := populate(ctx, backend, ref, opts, headerSections); err != nil {
			return fmt.Errorf("header group: %w", err)
		}
	}
	return nil
}

func populate(ctx context.Context, backend editor.Backend, ref model.CollectionRef, opts []editor.Option, build func(*editor.Session) error) (bool, error) {
	s, err := editor.Open(ctx, backend, ref, opts...)
	if err != nil {
		return false, err
	}
	defer s.Close()

	if s.List().Len() > 0 {
		return false, nil
	}
	if err := build(s); err != nil {
		return false, err
	}
	res, err := s.Save(ctx)
	if err != nil {
		return false, err
	}
	slog.Info("demo content written", "collection", ref.String(), "version", res.Version)
	return true, nil
}

func homeSections(s *editor.Session) error {
	hero := s.Add(section.TypeHero, -1)
	s.PatchProps(hero, section.Props{
		"title":           "Build pages from sections",
		"subtitle":        "Every block on this page was added through the section editor.",
		"ctaLabel":        "Read the FAQ",
		"ctaHref":         "#faq",
		"backgroundColor": "#1f2937",
		"textColor":       "#ffffff",
	})

	text := s.Add(section.TypeText, -1)
	e, err := s.TextEditor(text, "html")
	if err != nil {
		return err
	}
	e.InsertText("Sections are saved together with a revision, so any earlier version can be restored.")
	if _, ok := e.InsertTable(3, 2, true); !ok {
		return fmt.Errorf("inserting table")
	}
	e.InsertText("Section")
	e.Blur()

	callout := s.Add(section.TypeCallout, -1)
	s.PatchProps(callout, section.Props{
		"title":   "Concurrent edits",
		"html":    "<p>When two people edit the same page, the second save is rejected until the editor reloads.</p>",
		"variant": "warning",
	})

	faq := s.Add(section.TypeFAQ, -1)
	s.PatchProps(faq, section.Props{
		"items": []any{
			map[string]any{"question": "Is pasted HTML safe?", "answer": "<p>Every HTML field is sanitised before it is stored.</p>"},
			map[string]any{"question": "Can I hide a section?", "answer": "<p>Disable it; it stays in the editor but is not rendered.</p>"},
		},
	})

	embed := s.Add(section.TypeEmbed, -1)
	s.PatchProps(embed, section.Props{"url": "https://www.youtube.com/watch?v=aqz-KE-bpKQ", "title": "Sample video"})
	return nil
}

func headerSections(s *editor.Session) error {
	text := s.Add(section.TypeText, -1)
	s.PatchProps(text, section.Props{
		"html":     `<p><strong>blockcms</strong> · <a href="/">Home</a></p>`,
		"maxWidth": "wide",
	})
	return nil
}
