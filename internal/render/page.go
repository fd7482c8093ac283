// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/olegiv/blockcms/internal/section"
)

// PageRenderer writes public pages from parsed layout templates.
type PageRenderer struct {
	templates map[string]*template.Template
	now       func() time.Time
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS fs.FS
}

// New creates a PageRenderer. It parses every template under public/
// together with layouts/base.html.
func New(cfg Config) (*PageRenderer, error) {
	r := &PageRenderer{
		templates: make(map[string]*template.Template),
		now:       time.Now,
	}
	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PageRenderer) parseTemplates(templatesFS fs.FS) error {
	entries, err := fs.ReadDir(templatesFS, "public")
	if err != nil {
		return fmt.Errorf("reading public templates: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		name := "public/" + strings.TrimSuffix(entry.Name(), ".html")
		tmpl, err := template.New("").ParseFS(templatesFS, "layouts/base.html", path.Join("public", entry.Name()))
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	if _, ok := r.templates["public/page"]; !ok {
		return fmt.Errorf("template public/page not found")
	}
	return nil
}

// Page is a page ready for rendering: its metadata, its own sections and
// the sections of the groups bound to the layout locations.
type Page struct {
	Title           string
	Locale          string
	MetaTitle       string
	MetaDescription string
	Sections        []section.Section
	Header          []section.Section
	Banner          []section.Section
	Footer          []section.Section
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title           string
	HeadTitle       string
	Locale          string
	MetaDescription string
	Message         string
	Blocks          []Block
	Header          []Block
	Banner          []Block
	Footer          []Block
	CurrentYear     int
}

// WritePage renders p into w. Nothing is written when rendering fails.
func (r *PageRenderer) WritePage(w io.Writer, p Page) error {
	head := p.MetaTitle
	if head == "" {
		head = p.Title
	}
	return r.execute(w, "public/page", TemplateData{
		Title:           p.Title,
		HeadTitle:       head,
		Locale:          localeOrDefault(p.Locale),
		MetaDescription: p.MetaDescription,
		Blocks:          Render(p.Sections, p.Title),
		Header:          Render(p.Header, p.Title),
		Banner:          Render(p.Banner, p.Title),
		Footer:          Render(p.Footer, p.Title),
	})
}

// WriteError renders the error page.
func (r *PageRenderer) WriteError(w io.Writer, title, message string) error {
	return r.execute(w, "public/error", TemplateData{
		Title:     title,
		HeadTitle: title,
		Locale:    localeOrDefault(""),
		Message:   message,
	})
}

func (r *PageRenderer) execute(w io.Writer, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	data.CurrentYear = r.now().Year()

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func localeOrDefault(locale string) string {
	if locale == "" {
		return "en"
	}
	return locale
}
