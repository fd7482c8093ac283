// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richdoc

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var slashTrigger = regexp.MustCompile(`^/(\S*)$`)

// SlashMatch is an active slash-command trigger: the paragraph at Path
// holds exactly "/" followed by Query, with the caret at its end.
type SlashMatch struct {
	Path  []int
	Query string
}

// FindSlash reports the slash trigger at the caret. The match disappears
// as soon as the query contains whitespace, the caret moves away from the
// end of the trigger, or the selection leaves the paragraph.
func FindSlash(st State) (SlashMatch, bool) {
	sel, ok := st.Selection.(TextSelection)
	if !ok || !sel.Empty() {
		return SlashMatch{}, false
	}
	block := nodeAt(st.Doc, sel.Head.Path)
	if block == nil || block.Type != TypeParagraph {
		return SlashMatch{}, false
	}
	for _, c := range block.Content {
		if c.Type != TypeText {
			return SlashMatch{}, false
		}
	}
	if sel.Head.Offset != block.ContentSize() {
		return SlashMatch{}, false
	}
	m := slashTrigger.FindStringSubmatch(block.TextContent())
	if m == nil {
		return SlashMatch{}, false
	}
	return SlashMatch{Path: slices.Clone(sel.Head.Path), Query: m[1]}, true
}

// SlashArgs carries optional parameters for palette commands, such as
// the image source picked in a follow-up dialog.
type SlashArgs map[string]string

// SlashCommand is one entry of the block-insertion palette.
type SlashCommand struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Keywords []string `json:"keywords,omitempty"`

	build func(SlashArgs) Command
}

// Command returns the document command the entry runs.
func (c SlashCommand) Command(args SlashArgs) Command {
	return c.build(args)
}

// SlashCommands is an ordered palette.
type SlashCommands []SlashCommand

// DefaultSlashCommands returns the built-in palette.
func DefaultSlashCommands() SlashCommands {
	block := func(t NodeType, attrs Attrs) func(SlashArgs) Command {
		return func(SlashArgs) Command { return SetBlockType(t, attrs) }
	}
	return SlashCommands{
		{ID: "paragraph", Label: "Text", Keywords: []string{"p", "text"}, build: block(TypeParagraph, nil)},
		{ID: "h1", Label: "Heading 1", Keywords: []string{"heading", "title"}, build: block(TypeHeading, Attrs{"level": 1})},
		{ID: "h2", Label: "Heading 2", Keywords: []string{"heading", "subtitle"}, build: block(TypeHeading, Attrs{"level": 2})},
		{ID: "h3", Label: "Heading 3", Keywords: []string{"heading"}, build: block(TypeHeading, Attrs{"level": 3})},
		{ID: "bullet", Label: "Bulleted list", Keywords: []string{"ul", "list"}, build: func(SlashArgs) Command {
			return WrapInList(TypeBulletList)
		}},
		{ID: "ordered", Label: "Numbered list", Keywords: []string{"ol", "list", "number"}, build: func(SlashArgs) Command {
			return WrapInList(TypeOrderedList)
		}},
		{ID: "quote", Label: "Quote", Keywords: []string{"blockquote"}, build: func(SlashArgs) Command {
			return WrapInBlockquote()
		}},
		{ID: "code", Label: "Code block", Keywords: []string{"pre"}, build: block(TypeCodeBlock, nil)},
		{ID: "divider", Label: "Divider", Keywords: []string{"hr", "line", "separator"}, build: func(SlashArgs) Command {
			return InsertHorizontalRule()
		}},
		{ID: "table", Label: "Table", Keywords: []string{"grid"}, build: func(args SlashArgs) Command {
			rows, cols, header := 3, 3, true
			if v, err := strconv.Atoi(args["rows"]); err == nil {
				rows = v
			}
			if v, err := strconv.Atoi(args["cols"]); err == nil {
				cols = v
			}
			if v, err := strconv.ParseBool(args["header"]); err == nil {
				header = v
			}
			return InsertTable(rows, cols, header)
		}},
		{ID: "image", Label: "Image", Keywords: []string{"picture", "photo", "img"}, build: func(args SlashArgs) Command {
			return InsertImage(args["src"], args["alt"])
		}},
	}
}

// Filter returns the commands matching query by id or keyword prefix or
// label substring, case-insensitively. An empty query matches all.
func (cs SlashCommands) Filter(query string) SlashCommands {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(cs)
	}
	var out SlashCommands
	for _, c := range cs {
		if strings.HasPrefix(c.ID, q) || strings.Contains(strings.ToLower(c.Label), q) ||
			slices.ContainsFunc(c.Keywords, func(k string) bool { return strings.HasPrefix(k, q) }) {
			out = append(out, c)
		}
	}
	return out
}

// Lookup finds a command by id.
func (cs SlashCommands) Lookup(id string) (SlashCommand, bool) {
	i := slices.IndexFunc(cs, func(c SlashCommand) bool { return c.ID == id })
	if i < 0 {
		return SlashCommand{}, false
	}
	return cs[i], true
}

// RunSlash removes the active trigger text and runs cmd in the emptied
// paragraph. If cmd does not apply there, only the trigger is removed.
func RunSlash(cmd SlashCommand, args SlashArgs) Command {
	return func(st State) (Transaction, bool) {
		m, ok := FindSlash(st)
		if !ok || cmd.build == nil {
			return Transaction{}, false
		}
		block := nodeAt(st.Doc, m.Path)
		cleared := st
		cleared.Doc = replaceAt(st.Doc, m.Path, block.withContent(nil))
		cleared.Selection = Caret(Pos{Path: m.Path})
		cleared.StoredMarks = nil

		tr, ok := cmd.build(args)(cleared)
		if !ok {
			return Transaction{State: cleared, DocChanged: true}, true
		}
		tr.DocChanged = true
		return tr, true
	}
}
