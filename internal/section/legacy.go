// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package section

import (
	"bytes"
	"maps"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Older text sections stored Markdown instead of HTML. Raw HTML inside the
// Markdown is not rendered; goldmark omits it unless WithUnsafe is set.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
)

// upgradeMarkdown converts a legacy "markdown" prop into "html" when no HTML
// is present under any accepted name.
func upgradeMarkdown(raw Props) Props {
	for _, key := range []string{"html", "body", "content"} {
		if v, ok := raw[key]; ok && v != nil {
			return raw
		}
	}
	src, ok := raw["markdown"].(string)
	if !ok || strings.TrimSpace(src) == "" {
		return raw
	}
	html, err := MarkdownToHTML(src)
	if err != nil {
		return raw
	}
	out := make(Props, len(raw)+1)
	maps.Copy(out, raw)
	out["html"] = html
	return out
}

// MarkdownToHTML renders Markdown source as HTML.
func MarkdownToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
