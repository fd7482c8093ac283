// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sanitize

import (
	"reflect"
	"strings"
	"testing"

	"github.com/olegiv/blockcms/internal/section"
)

func TestHTMLStripsDangerousContent(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		mustNot []string
		must    []string
	}{
		{
			name:    "script element",
			in:      `<p>Hello</p><script>alert(1)</script>`,
			mustNot: []string{"<script", "alert(1)"},
			must:    []string{"<p>Hello</p>"},
		},
		{
			name:    "event handler",
			in:      `<img src="/a.png" onerror="alert(1)" alt="a">`,
			mustNot: []string{"onerror"},
			must:    []string{`src="/a.png"`},
		},
		{
			name:    "javascript url",
			in:      `<a href="javascript:alert(1)">x</a><a href="/ok">y</a>`,
			mustNot: []string{"javascript:"},
			must:    []string{`<a href="/ok">y</a>`},
		},
		{
			name:    "style element and meta",
			in:      `<style>p{}</style><meta http-equiv="refresh"><p>t</p>`,
			mustNot: []string{"<style", "<meta", "p{}"},
			must:    []string{"<p>t</p>"},
		},
		{
			name:    "unsafe style value",
			in:      `<p style="color: red; position: fixed; text-align: center">t</p>`,
			mustNot: []string{"color: red", "position"},
			must:    []string{"text-align: center"},
		},
		{
			name:    "iframe",
			in:      `<iframe src="https://evil.example"></iframe><p>x</p>`,
			mustNot: []string{"iframe"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HTML(tt.in)
			for _, s := range tt.mustNot {
				if strings.Contains(got, s) {
					t.Errorf("HTML(%q) = %q; must not contain %q", tt.in, got, s)
				}
			}
			for _, s := range tt.must {
				if !strings.Contains(got, s) {
					t.Errorf("HTML(%q) = %q; must contain %q", tt.in, got, s)
				}
			}
		})
	}
}

func TestHTMLPreservesAllowListedMarkup(t *testing.T) {
	clean := []string{
		`<p><strong>Bold</strong> <em>it</em> <u>u</u> <span style="color: #ff0000">red</span></p>`,
		`<p><mark style="background-color: rgba(255, 255, 0, 0.5)">hl</mark></p>`,
		`<table data-align="center" style="margin-left: auto; margin-right: auto"><tbody><tr data-height="40" style="height: 40px"><td colwidth="120" style="width: 120px; background-color: #eee; border-color: #000; border-width: 2px; border-style: solid">a</td></tr></tbody></table>`,
		`<p><img src="/x.png" alt="x" data-align="left" style="width: 50%"/></p>`,
		`<ul><li>one</li></ul><ol start="3"><li>two</li></ol><blockquote><p>q</p></blockquote><hr/>`,
	}
	for _, in := range clean {
		once := HTML(in)
		if once != in {
			t.Errorf("allow-listed markup changed\n in  %s\n out %s", in, once)
		}
		if twice := HTML(once); twice != once {
			t.Errorf("HTML not idempotent\n once  %s\n twice %s", once, twice)
		}
	}
}

func TestHTMLDataURIImages(t *testing.T) {
	in := `<img src="data:image/png;base64,iVBORw0KGgo=" alt="p"/>`
	if got := HTML(in); got != in {
		t.Errorf("data image dropped: %q", got)
	}
	bad := `<img src="data:text/html;base64,PHNjcmlwdD4=" alt="p"/>`
	if got := HTML(bad); strings.Contains(got, "data:text") {
		t.Errorf("non-image data URI kept: %q", got)
	}
}

func TestColor(t *testing.T) {
	good := []string{"#fff", "#A0B1C2", "#11223344", "rgb(1, 2, 3)", "rgba(0,0,0,0.5)", "transparent"}
	for _, c := range good {
		if Color(c) != c {
			t.Errorf("Color(%q) rejected", c)
		}
	}
	bad := []string{"red;background:url(x)", "expression(1)", "#ggg", "url(javascript:x)", "rgb(1,2)"}
	for _, c := range bad {
		if got := Color(c); got != "" {
			t.Errorf("Color(%q) = %q, want empty", c, got)
		}
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/a?b=c", "https://example.com/a?b=c"},
		{" /about ", "/about"},
		{"#top", "#top"},
		{"mailto:a@b.c", "mailto:a@b.c"},
		{"tel:+123", "tel:+123"},
		{"javascript:alert(1)", ""},
		{"JaVaScRiPt:alert(1)", ""},
		{"java\tscript:alert(1)", ""},
		{"data:text/html,hi", ""},
		{"vbscript:x", ""},
		{"http://", ""},
		{"page:1/x", ""},
	}
	for _, tt := range tests {
		if got := URL(tt.in); got != tt.want {
			t.Errorf("URL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := ImageURL("data:image/png;base64,iVBORw0KGgo="); got == "" {
		t.Error("ImageURL rejected png data URI")
	}
	if got := ImageURL("data:image/svg+xml;base64,PHN2Zz4="); got != "" {
		t.Errorf("ImageURL accepted svg data URI: %q", got)
	}
}

func TestNormalizeSanitizesHTMLFields(t *testing.T) {
	got := Normalize(section.TypeText, section.Props{
		"html":  `<p>Hello</p><script>alert(1)</script>`,
		"bogus": true,
	})
	if got["html"] != "<p>Hello</p>" {
		t.Errorf("html = %q", got["html"])
	}
	if _, ok := got["bogus"]; ok {
		t.Error("unknown key survived")
	}

	faq := Normalize(section.TypeFAQ, section.Props{
		"items": []any{map[string]any{"question": "Q", "answer": `<p onclick="x()">A</p>`}},
	})
	items := section.Items(faq["items"])
	if len(items) != 1 || items[0]["answer"] != "<p>A</p>" {
		t.Errorf("faq items = %#v", faq["items"])
	}

	hero := Normalize(section.TypeHero, section.Props{
		"ctaHref":         "javascript:alert(1)",
		"backgroundColor": "red;x",
		"backgroundImage": "data:image/png;base64,iVBORw0KGgo=",
	})
	if hero["ctaHref"] != "" || hero["backgroundColor"] != "" {
		t.Errorf("unsafe hero values kept: %#v", hero)
	}
	if hero["backgroundImage"] == "" {
		t.Error("data image background dropped")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []section.Props{
		nil,
		{"html": `<p style="color:red;width:expression(1)">x<img src=x onerror=alert(1)></p><table><tr><td colspan="2">c</td></tr></table>`},
		{"leftHtml": `<div><a href="/x" target="_blank" rel="noopener">l</a></div>`, "gap": "12px"},
		{"faqs": []any{map[string]any{"q": "<b>q</b>", "a": "<p>a &amp; b</p><script>x</script>"}}},
		{"url": "https://www.youtube.com/watch?v=abc", "height": -1, "src": "javascript:x"},
		{"backgroundColor": "#ABC", "textColor": "rgb(0,0,0)", "accentColor": "blue"},
	}
	for _, typ := range section.AllTypes {
		for i, in := range inputs {
			once := Normalize(typ, in)
			twice := Normalize(typ, once)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("%s input %d not idempotent\nonce  %#v\ntwice %#v", typ, i, once, twice)
			}
		}
	}
}

func TestNormalizeUnknownType(t *testing.T) {
	if got := Normalize("carousel", section.Props{"a": 1}); len(got) != 0 {
		t.Errorf("unknown type props = %#v, want empty", got)
	}
}
