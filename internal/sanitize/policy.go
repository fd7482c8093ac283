// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sanitize turns untrusted section props into safe, schema-conformant
// props. Rich HTML is filtered through an allow-list policy; URLs and colors
// are checked against fixed patterns.
package sanitize

import (
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Style value patterns. bluemonday lowercases values before matching.
var (
	colorValue  = regexp.MustCompile(`^(#[0-9a-f]{3}|#[0-9a-f]{4}|#[0-9a-f]{6}|#[0-9a-f]{8}|rgba?\(\s*\d{1,3}%?\s*,\s*\d{1,3}%?\s*,\s*\d{1,3}%?\s*(,\s*(0|1|0?\.\d+|\d{1,3}%)\s*)?\)|transparent)$`)
	lengthValue = regexp.MustCompile(`^(\d{1,4}(\.\d+)?(px|%)|auto)$`)
	borderWidth = regexp.MustCompile(`^\d{1,2}px$`)
	marginValue = regexp.MustCompile(`^(0|0px|auto)$`)

	headingOrBlock = []string{"p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "blockquote", "div", "figure", "figcaption"}
	cells          = []string{"td", "th"}
)

var policy = sync.OnceValue(newPolicy)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "hr", "div", "span",
		"strong", "b", "em", "i", "u", "s", "strike", "sub", "sup", "mark",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "blockquote", "pre", "code",
		"figure", "figcaption",
		"table", "thead", "tbody", "tfoot", "tr", "th", "td", "colgroup", "col",
	)

	// Links
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^(_blank|_self)$`)).OnElements("a")
	p.AllowAttrs("rel").Matching(regexp.MustCompile(`^[a-z ]{1,64}$`)).OnElements("a")
	p.AllowAttrs("title").Matching(bluemonday.Paragraph).OnElements("a", "img")
	p.AllowURLSchemes("http", "https", "mailto", "tel")
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)

	// Images
	p.AllowAttrs("src").OnElements("img")
	p.AllowAttrs("alt").Matching(bluemonday.Paragraph).OnElements("img")
	p.AllowAttrs("width", "height").Matching(bluemonday.NumberOrPercent).OnElements("img", "col")
	p.AllowAttrs("data-align").Matching(regexp.MustCompile(`^(left|center|right)$`)).OnElements("img", "table")
	p.AllowAttrs("data-width-px", "data-width").Matching(bluemonday.Integer).OnElements("img")
	p.AllowDataURIImages()

	// Tables
	p.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements(cells...)
	p.AllowAttrs("colwidth").Matching(regexp.MustCompile(`^\d{1,4}(,\d{1,4})*$`)).OnElements(cells...)
	p.AllowAttrs("data-border-mode").Matching(regexp.MustCompile(`^(normal|transparent)$`)).OnElements(cells...)
	p.AllowAttrs("data-height").Matching(bluemonday.Integer).OnElements(append([]string{"tr"}, cells...)...)
	p.AllowAttrs("scope").Matching(regexp.MustCompile(`^(row|col)$`)).OnElements("th")
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[a-z0-9+#-]{1,32}$`)).OnElements("code")

	// Inline styles
	p.AllowStyles("color", "background-color").Matching(colorValue).Globally()
	p.AllowStyles("text-align").MatchingEnum("left", "center", "right", "justify").
		OnElements(append(headingOrBlock, cells...)...)
	p.AllowStyles("width", "height", "min-height", "max-width").Matching(lengthValue).
		OnElements("img", "table", "tr", "td", "th", "col", "figure")
	p.AllowStyles("border-color").Matching(colorValue).OnElements(cells...)
	p.AllowStyles("border-width").Matching(borderWidth).OnElements(cells...)
	p.AllowStyles("border-style").MatchingEnum("solid", "dashed", "dotted", "none").OnElements(cells...)
	p.AllowStyles("margin-left", "margin-right").Matching(marginValue).OnElements("table", "img", "figure")
	p.AllowStyles("vertical-align").MatchingEnum("top", "middle", "bottom").OnElements(cells...)

	return p
}

// HTML filters s through the allow-list policy. Disallowed elements are
// removed rather than escaped; script and style contents are dropped.
func HTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return policy().Sanitize(s)
}
