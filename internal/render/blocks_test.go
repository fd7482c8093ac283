// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"reflect"
	"strings"
	"testing"

	"github.com/olegiv/blockcms/internal/section"
)

func sec(id string, t section.Type, order int, enabled bool, props section.Props) section.Section {
	return section.Section{ID: id, Type: t, Order: order, Enabled: enabled, Props: props}
}

func blockIDs(blocks []Block) []string {
	var ids []string
	for _, b := range blocks {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestRenderFiltersAndOrders(t *testing.T) {
	sections := []section.Section{
		sec("c", section.TypeText, 2, true, section.Props{"html": "<p>c</p>"}),
		sec("a", section.TypeText, 0, true, section.Props{"html": "<p>a</p>"}),
		sec("hidden", section.TypeText, 1, false, section.Props{"html": "<p>secret</p>"}),
		sec("b", section.TypeText, 1, true, section.Props{"html": "<p>b</p>"}),
	}
	blocks := Render(sections, "Home")
	if got := blockIDs(blocks); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("ids = %v", got)
	}
	for _, b := range blocks {
		if strings.Contains(string(b.HTML), "secret") {
			t.Error("disabled section rendered")
		}
	}

	// Reordering changes order only, not content.
	sections[0].Order, sections[1].Order = 0, 2
	reordered := Render(sections, "Home")
	if got := blockIDs(reordered); !reflect.DeepEqual(got, []string{"c", "b", "a"}) {
		t.Fatalf("reordered ids = %v", got)
	}
	byID := map[string]Block{}
	for _, b := range blocks {
		byID[b.ID] = b
	}
	for _, b := range reordered {
		if b.HTML != byID[b.ID].HTML {
			t.Errorf("section %s output changed after reorder", b.ID)
		}
	}
}

func TestRenderUnknownType(t *testing.T) {
	blocks := Render([]section.Section{
		sec("1", "carousel", 0, true, section.Props{"slides": []any{"<script>"}}),
		sec("2", section.TypeText, 1, true, nil),
	}, "Home")
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks", len(blocks))
	}
	html := string(blocks[0].HTML)
	if !strings.Contains(html, `data-section-type="carousel"`) || !strings.Contains(html, "hidden") {
		t.Errorf("placeholder = %s", html)
	}
	if strings.Contains(html, "<script>") {
		t.Error("placeholder leaked props")
	}
}

func TestRenderRevalidatesProps(t *testing.T) {
	tests := []struct {
		name    string
		section section.Section
		want    []string
		reject  []string
	}{
		{
			name: "hero",
			section: sec("1", section.TypeHero, 0, true, section.Props{
				"title": "", "ctaLabel": "Go", "ctaHref": "javascript:alert(1)",
				"backgroundColor": "red;position:fixed", "textColor": "#ffffff", "align": "diagonal",
			}),
			want:   []string{"<h1>Home</h1>", "color: #ffffff", "align-center"},
			reject: []string{"javascript", "position:fixed", `class="button"`},
		},
		{
			name:    "text strips scripts",
			section: sec("1", section.TypeText, 0, true, section.Props{"html": `<p onclick="x()">hi</p><script>alert(1)</script>`, "maxWidth": "huge"}),
			want:    []string{"<p>hi</p>", "width-normal"},
			reject:  []string{"script", "onclick"},
		},
		{
			name:    "raw html is sanitised too",
			section: sec("1", section.TypeRawHTML, 0, true, section.Props{"html": `<div><iframe src="https://evil.example"></iframe><b>ok</b></div>`}),
			want:    []string{"<b>ok</b>"},
			reject:  []string{"iframe"},
		},
		{
			name:    "columns clamp gap",
			section: sec("1", section.TypeColumns, 0, true, section.Props{"leftHtml": "<p>L</p>", "rightHtml": "<p>R</p>", "gap": 5000, "stackOnMobile": "false"}),
			want:    []string{"gap: 200px", "<p>L</p>", "<p>R</p>", "ratio-50-50"},
			reject:  []string{"stack-mobile"},
		},
		{
			name:    "image",
			section: sec("1", section.TypeImage, 0, true, section.Props{"src": "/uploads/a.png", "alt": `a "quoted" alt`, "width": 250, "link": "vbscript:x"}),
			want:    []string{`src="/uploads/a.png"`, "width: 100%", "&#34;quoted&#34;"},
			reject:  []string{"vbscript", "<a "},
		},
		{
			name:    "image data uri",
			section: sec("1", section.TypeImage, 0, true, section.Props{"src": "data:image/png;base64,iVBORw0KGgo="}),
			want:    []string{`src="data:image/png;base64,iVBORw0KGgo="`},
		},
		{
			name: "faq",
			section: sec("1", section.TypeFAQ, 0, true, section.Props{"title": "Questions", "items": []any{
				map[string]any{"question": "Why?", "answer": "<p>Because<script>x</script></p>"},
				map[string]any{"question": "  ", "answer": "dropped"},
			}}),
			want:   []string{"<h2>Questions</h2>", "<summary>Why?</summary>", "<p>Because</p>"},
			reject: []string{"script", "dropped"},
		},
		{
			name: "accordion exclusive",
			section: sec("1", section.TypeAccordion, 0, true, section.Props{"openFirst": true, "items": []any{
				map[string]any{"question": "One", "answer": "<p>1</p>"},
				map[string]any{"question": "Two", "answer": "<p>2</p>"},
			}}),
			want: []string{`name="accordion-one" open`, "<summary>Two</summary>"},
		},
		{
			name:    "embed",
			section: sec("1", section.TypeEmbed, 0, true, section.Props{"url": "https://youtu.be/aqz-KE-bpKQ", "aspectRatio": "4:3"}),
			want:    []string{`src="https://www.youtube-nocookie.com/embed/aqz-KE-bpKQ"`, "ratio-4-3"},
		},
		{
			name:    "callout",
			section: sec("1", section.TypeCallout, 0, true, section.Props{"variant": "rainbow", "icon": false, "html": "<p>note</p>"}),
			want:    []string{"callout-info", "<p>note</p>"},
			reject:  []string{"with-icon"},
		},
		{
			name:    "page style",
			section: sec("1", section.TypePageStyle, 0, true, section.Props{"backgroundColor": "#fafafa", "accentColor": "url(x)", "fontFamily": "serif", "contentWidth": 10}),
			want:    []string{"--page-bg: #fafafa", "Georgia", "--page-width: 480px"},
			reject:  []string{"--page-accent", "url(x)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Render([]section.Section{tt.section}, "Home")
			if len(blocks) != 1 {
				t.Fatalf("got %d blocks", len(blocks))
			}
			html := string(blocks[0].HTML)
			for _, w := range tt.want {
				if !strings.Contains(html, w) {
					t.Errorf("output lacks %q:\n%s", w, html)
				}
			}
			for _, r := range tt.reject {
				if strings.Contains(html, r) {
					t.Errorf("output contains %q:\n%s", r, html)
				}
			}
		})
	}
}

func TestRenderSkipsUnsafeEmbedsAndEmptySections(t *testing.T) {
	sections := []section.Section{
		sec("embed", section.TypeEmbed, 0, true, section.Props{"url": "https://evil.example.com/video"}),
		sec("image", section.TypeImage, 1, true, section.Props{"src": "javascript:alert(1)"}),
		sec("faq", section.TypeFAQ, 2, true, section.Props{"items": []any{}}),
		sec("raw", section.TypeRawHTML, 3, true, section.Props{"html": "<script>only</script>"}),
	}
	if blocks := Render(sections, "Home"); len(blocks) != 0 {
		t.Errorf("expected nothing, got %v", blockIDs(blocks))
	}
}
