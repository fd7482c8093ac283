// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render turns stored sections into public HTML. Each section type
// has one rule; every prop is validated again on the way out.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"sort"
	"strings"

	"github.com/olegiv/blockcms/internal/section"
)

//go:embed templates/blocks.html
var blockFS embed.FS

var blockTemplates = template.Must(template.ParseFS(blockFS, "templates/blocks.html"))

// Block is the rendered output of one section.
type Block struct {
	ID   string
	Type section.Type
	HTML template.HTML
}

// rule builds the template data for one section type. ok=false renders
// nothing for the section.
type rule func(p section.Props, title string) (data any, ok bool)

var rules = map[section.Type]rule{
	section.TypeHero:      heroRule,
	section.TypeText:      textRule,
	section.TypeRichText:  richTextRule,
	section.TypeRawHTML:   rawHTMLRule,
	section.TypeColumns:   columnsRule,
	section.TypeImage:     imageRule,
	section.TypeFAQ:       faqRule,
	section.TypeAccordion: accordionRule,
	section.TypeEmbed:     embedRule,
	section.TypeCallout:   calloutRule,
	section.TypePageStyle: pageStyleRule,
}

var alignOptions = []string{"left", "center", "right"}

// Render renders the enabled sections in stored order. title is the
// collection title, used where a section has none of its own. Unknown
// types become an inert placeholder.
func Render(sections []section.Section, title string) []Block {
	enabled := make([]section.Section, 0, len(sections))
	for _, s := range sections {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool { return enabled[i].Order < enabled[j].Order })

	out := make([]Block, 0, len(enabled))
	for _, s := range enabled {
		html, ok := renderSection(s, title)
		if !ok {
			continue
		}
		out = append(out, Block{ID: s.ID, Type: s.Type, HTML: html})
	}
	return out
}

func renderSection(s section.Section, title string) (template.HTML, bool) {
	props := s.Props
	if props == nil {
		props = section.Props{}
	}
	name := string(s.Type)
	var data any = struct{ Type string }{Type: name}

	if r, known := rules[s.Type]; known {
		d, ok := r(props, title)
		if !ok {
			return "", false
		}
		data = d
	} else {
		name = "unknown"
	}

	var buf bytes.Buffer
	if err := blockTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("rendering section failed", "type", s.Type, "id", s.ID, "error", err)
		return "", false
	}
	return template.HTML(buf.String()), true
}

func heroRule(p section.Props, title string) (any, bool) {
	t := strings.TrimSpace(section.String(p["title"], ""))
	if t == "" {
		t = title
	}
	return struct {
		Title, Subtitle, CTALabel string
		CTAHref                   string
		Image                     template.URL
		Background, Color         template.CSS
		Align                     string
		FullHeight                bool
	}{
		Title:      t,
		Subtitle:   section.String(p["subtitle"], ""),
		CTALabel:   section.String(p["ctaLabel"], ""),
		CTAHref:    SafeURL(p["ctaHref"]),
		Image:      template.URL(SafeImageURL(p["backgroundImage"])),
		Background: css(SafeColor(p["backgroundColor"], "")),
		Color:      css(SafeColor(p["textColor"], "")),
		Align:      SafeSelect(p["align"], alignOptions, "center"),
		FullHeight: SafeBool(p["fullHeight"], false),
	}, true
}

func textRule(p section.Props, _ string) (any, bool) {
	return struct {
		HTML  template.HTML
		Width string
	}{
		HTML:  safeHTML(p["html"]),
		Width: SafeSelect(p["maxWidth"], []string{"narrow", "normal", "wide"}, "normal"),
	}, true
}

func richTextRule(p section.Props, _ string) (any, bool) {
	return struct {
		HTML       template.HTML
		Background template.CSS
		Padding    int
	}{
		HTML:       safeHTML(p["html"]),
		Background: css(SafeColor(p["backgroundColor"], "")),
		Padding:    SafeGap(p["padding"], 24),
	}, true
}

func rawHTMLRule(p section.Props, _ string) (any, bool) {
	html := safeHTML(p["html"])
	return struct{ HTML template.HTML }{html}, html != ""
}

func columnsRule(p section.Props, _ string) (any, bool) {
	return struct {
		Left, Right template.HTML
		Gap         int
		Ratio       string
		Stack       bool
	}{
		Left:  safeHTML(p["leftHtml"]),
		Right: safeHTML(p["rightHtml"]),
		Gap:   SafeGap(p["gap"], 24),
		Ratio: SafeSelect(p["ratio"], []string{"50-50", "33-67", "67-33"}, "50-50"),
		Stack: SafeBool(p["stackOnMobile"], true),
	}, true
}

func imageRule(p section.Props, _ string) (any, bool) {
	src := SafeImageURL(p["src"])
	if src == "" {
		return nil, false
	}
	return struct {
		Src          template.URL
		Alt, Caption string
		Link         string
		Width        int
		Align        string
	}{
		Src:     template.URL(src),
		Alt:     section.String(p["alt"], ""),
		Caption: section.String(p["caption"], ""),
		Link:    SafeURL(p["link"]),
		Width:   SafeInt(p["width"], 100, 5, 100),
		Align:   SafeSelect(p["align"], alignOptions, "center"),
	}, true
}

type qaItem struct {
	Question string
	Answer   template.HTML
	Open     bool
}

func qaItems(v any) []qaItem {
	var out []qaItem
	for _, item := range section.Items(v) {
		q := strings.TrimSpace(section.String(item["question"], ""))
		if q == "" {
			continue
		}
		out = append(out, qaItem{Question: q, Answer: safeHTML(item["answer"])})
	}
	return out
}

func faqRule(p section.Props, _ string) (any, bool) {
	items := qaItems(p["items"])
	return struct {
		Title string
		Items []qaItem
	}{section.String(p["title"], ""), items}, len(items) > 0
}

func accordionRule(p section.Props, _ string) (any, bool) {
	items := qaItems(p["items"])
	if len(items) == 0 {
		return nil, false
	}
	if SafeBool(p["openFirst"], false) {
		items[0].Open = true
	}
	// Details elements sharing a name open exclusively.
	name := ""
	if !SafeBool(p["allowMultiple"], false) {
		name = "accordion-" + strings.ToLower(strings.ReplaceAll(items[0].Question, " ", "-"))
	}
	return struct {
		Title string
		Name  string
		Items []qaItem
	}{section.String(p["title"], ""), name, items}, true
}

func embedRule(p section.Props, _ string) (any, bool) {
	src := EmbedURL(section.String(p["url"], ""))
	if src == "" {
		return nil, false
	}
	return struct {
		Src, Title string
		Ratio      string
		Map        bool
		Height     int
	}{
		Src:    src,
		Title:  section.String(p["title"], "Embedded content"),
		Ratio:  strings.ReplaceAll(SafeSelect(p["aspectRatio"], []string{"16:9", "4:3", "1:1"}, "16:9"), ":", "-"),
		Map:    strings.Contains(src, "google.com/maps"),
		Height: SafeInt(p["height"], 450, 100, 2000),
	}, true
}

func calloutRule(p section.Props, _ string) (any, bool) {
	return struct {
		Title   string
		HTML    template.HTML
		Variant string
		Icon    bool
	}{
		Title:   section.String(p["title"], ""),
		HTML:    safeHTML(p["html"]),
		Variant: SafeSelect(p["variant"], []string{"info", "success", "warning", "danger"}, "info"),
		Icon:    SafeBool(p["icon"], true),
	}, true
}

var fontStacks = map[string]string{
	"system": `system-ui, -apple-system, "Segoe UI", Roboto, sans-serif`,
	"serif":  `Georgia, "Times New Roman", serif`,
	"mono":   `ui-monospace, "SFMono-Regular", Menlo, monospace`,
}

func pageStyleRule(p section.Props, _ string) (any, bool) {
	font := SafeSelect(p["fontFamily"], []string{"system", "serif", "mono"}, "system")
	return struct {
		Background, Color, Accent template.CSS
		Font                      template.CSS
		Width                     int
	}{
		Background: css(SafeColor(p["backgroundColor"], "")),
		Color:      css(SafeColor(p["textColor"], "")),
		Accent:     css(SafeColor(p["accentColor"], "")),
		Font:       css(fontStacks[font]),
		Width:      SafeInt(p["contentWidth"], 1100, 480, 1920),
	}, true
}
