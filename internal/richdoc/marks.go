// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richdoc

import (
	"slices"
	"strings"
)

// MarkType names a character-level mark.
type MarkType string

// Mark types. Color, highlight and link carry a value.
const (
	MarkBold      MarkType = "bold"
	MarkItalic    MarkType = "italic"
	MarkUnderline MarkType = "underline"
	MarkStrike    MarkType = "strike"
	MarkCode      MarkType = "code"
	MarkColor     MarkType = "color"
	MarkHighlight MarkType = "highlight"
	MarkLink      MarkType = "link"
)

// markRank fixes the nesting order used when serialising. Links wrap
// everything so a single <a> spans differently formatted runs.
var markRank = map[MarkType]int{
	MarkLink:      0,
	MarkBold:      1,
	MarkItalic:    2,
	MarkUnderline: 3,
	MarkStrike:    4,
	MarkCode:      5,
	MarkHighlight: 6,
	MarkColor:     7,
}

// Mark is a character-level annotation on a text run.
type Mark struct {
	Type  MarkType `json:"type"`
	Value string   `json:"value,omitempty"`
}

// hasValue reports whether marks of this type carry a value.
func (t MarkType) hasValue() bool {
	return t == MarkColor || t == MarkHighlight || t == MarkLink
}

func validMarkType(t MarkType) bool {
	_, ok := markRank[t]
	return ok
}

func sortMarks(marks []Mark) []Mark {
	if len(marks) == 0 {
		return nil
	}
	out := slices.Clone(marks)
	slices.SortStableFunc(out, func(a, b Mark) int {
		return markRank[a.Type] - markRank[b.Type]
	})
	return out
}

func marksEqual(a, b []Mark) bool {
	return slices.Equal(sortMarks(a), sortMarks(b))
}

// findMark returns the mark of type t in marks.
func findMark(marks []Mark, t MarkType) (Mark, bool) {
	for _, m := range marks {
		if m.Type == t {
			return m, true
		}
	}
	return Mark{}, false
}

// addMark sets m in marks, replacing any mark of the same type.
func addMark(marks []Mark, m Mark) []Mark {
	out := removeMark(marks, m.Type)
	return sortMarks(append(out, m))
}

// removeMark drops marks of type t.
func removeMark(marks []Mark, t MarkType) []Mark {
	var out []Mark
	for _, m := range marks {
		if m.Type != t {
			out = append(out, m)
		}
	}
	return out
}

// ApplyMark toggles or sets a mark over the selection.
//
// Marks without a value toggle: if every selected character already has the
// mark it is removed, otherwise it is added. Value marks are set to value,
// or removed when value is empty or already present everywhere with the same
// value. With an empty selection the stored marks for the next input are
// toggled instead and the document is untouched.
func ApplyMark(t MarkType, value string) Command {
	return func(st State) (Transaction, bool) {
		if !validMarkType(t) {
			return Transaction{}, false
		}
		value := strings.TrimSpace(value)
		if !t.hasValue() {
			value = ""
		}

		ranges := selectedInlineRanges(st)
		if len(ranges) == 0 {
			return toggleStoredMark(st, t, value)
		}

		// Code blocks take no marks.
		var editable []inlineRange
		for _, r := range ranges {
			if nodeAt(st.Doc, r.path).Type != TypeCodeBlock && r.from < r.to {
				editable = append(editable, r)
			}
		}
		if len(editable) == 0 {
			return Transaction{}, false
		}

		remove := (t.hasValue() && value == "") || rangesHaveMark(st.Doc, editable, t, value)
		doc := st.Doc
		for _, r := range editable {
			block := nodeAt(doc, r.path)
			content := mapInlineRange(block.Content, r.from, r.to, func(n *Node) *Node {
				if n.Type != TypeText {
					return n
				}
				if remove {
					return n.withMarks(removeMark(n.Marks, t))
				}
				return n.withMarks(addMark(n.Marks, Mark{Type: t, Value: value}))
			})
			doc = replaceAt(doc, r.path, block.withContent(normalizeInline(content)))
		}
		next := st
		next.Doc = doc
		next.StoredMarks = nil
		return Transaction{State: next, DocChanged: true}, true
	}
}

func toggleStoredMark(st State, t MarkType, value string) (Transaction, bool) {
	sel, ok := st.Selection.(TextSelection)
	if !ok || !sel.Empty() {
		return Transaction{}, false
	}
	block := nodeAt(st.Doc, sel.Head.Path)
	if block == nil || !block.IsTextblock() || block.Type == TypeCodeBlock {
		return Transaction{}, false
	}
	current := st.StoredMarks
	if current == nil {
		current = marksAt(block.Content, sel.Head.Offset)
	}
	existing, has := findMark(current, t)
	var next []Mark
	switch {
	case t.hasValue() && value == "":
		next = removeMark(current, t)
	case has && existing.Value == value:
		next = removeMark(current, t)
	default:
		next = addMark(current, Mark{Type: t, Value: value})
	}
	if next == nil {
		next = []Mark{}
	}
	out := st
	out.StoredMarks = next
	return Transaction{State: out}, true
}

func rangesHaveMark(doc *Node, ranges []inlineRange, t MarkType, value string) bool {
	seen := false
	for _, r := range ranges {
		block := nodeAt(doc, r.path)
		pos := 0
		for _, c := range block.Content {
			size := c.InlineSize()
			start, end := pos, pos+size
			pos = end
			if c.Type != TypeText || end <= r.from || start >= r.to {
				continue
			}
			seen = true
			m, ok := findMark(c.Marks, t)
			if !ok || m.Value != value {
				return false
			}
		}
	}
	return seen
}

// marksAt returns the marks input at offset should inherit: those of the
// character before it, or of the first character when at the start.
func marksAt(inline []*Node, offset int) []Mark {
	if offset <= 0 {
		if len(inline) > 0 && inline[0].Type == TypeText {
			return slices.Clone(inline[0].Marks)
		}
		return nil
	}
	pos := 0
	for _, c := range inline {
		size := c.InlineSize()
		if offset <= pos+size {
			if c.Type == TypeText {
				return slices.Clone(c.Marks)
			}
			return nil
		}
		pos += size
	}
	return nil
}
