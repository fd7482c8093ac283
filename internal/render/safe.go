// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"html/template"
	"slices"

	"github.com/olegiv/blockcms/internal/sanitize"
	"github.com/olegiv/blockcms/internal/section"
)

// Stored props are validated again here whatever the normaliser did:
// rows may have been edited directly in the database.

// SafeColor returns v when it is a hex, rgb(), rgba() or transparent
// color, and def otherwise.
func SafeColor(v any, def string) string {
	if c := sanitize.Color(section.String(v, "")); c != "" {
		return c
	}
	return def
}

// SafeURL returns v when it is a relative URL or an http, https, mailto or
// tel URL, and "" otherwise.
func SafeURL(v any) string {
	return sanitize.URL(section.String(v, ""))
}

// SafeImageURL is SafeURL that also accepts base64 data:image URIs. It is
// only for img src.
func SafeImageURL(v any) string {
	return sanitize.ImageURL(section.String(v, ""))
}

// SafeBool reads booleans stored as bools, numbers or strings such as
// "true" and "0".
func SafeBool(v any, def bool) bool {
	return section.Bool(v, def)
}

// SafeGap returns v as a pixel gap clamped to 0..200.
func SafeGap(v any, def int) int {
	return SafeInt(v, def, 0, 200)
}

// SafeInt returns v as an integer clamped to lo..hi.
func SafeInt(v any, def, lo, hi int) int {
	return section.Clamp(section.Int(v, def), lo, hi)
}

// SafeSelect returns v when it is one of options, and def otherwise.
func SafeSelect(v any, options []string, def string) string {
	s := section.String(v, "")
	if slices.Contains(options, s) {
		return s
	}
	return def
}

// safeHTML sanitises a stored HTML fragment for output.
func safeHTML(v any) template.HTML {
	return template.HTML(sanitize.HTML(section.String(v, "")))
}

// css marks a validated value for use inside style attributes. Callers
// pass only values from the validators above.
func css(s string) template.CSS {
	return template.CSS(s)
}
