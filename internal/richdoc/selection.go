// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richdoc

import (
	"cmp"
	"slices"
)

// Pos addresses a point inside a textblock: Path leads from the document
// root to the textblock, Offset counts inline units from its start.
type Pos struct {
	Path   []int `json:"path"`
	Offset int   `json:"offset"`
}

// At builds a position.
func At(offset int, path ...int) Pos {
	return Pos{Path: path, Offset: offset}
}

// comparePos orders positions in document order.
func comparePos(a, b Pos) int {
	if c := slices.Compare(a.Path, b.Path); c != 0 {
		// A shorter path is a prefix only for malformed positions; treat
		// lexicographic order as document order.
		return c
	}
	return cmp.Compare(a.Offset, b.Offset)
}

// Selection is one of TextSelection, CellSelection or NodeSelection.
type Selection interface {
	isSelection()
}

// TextSelection is a caret or a range between two text positions.
type TextSelection struct {
	Anchor Pos `json:"anchor"`
	Head   Pos `json:"head"`
}

// Caret returns an empty text selection at p.
func Caret(p Pos) TextSelection {
	return TextSelection{Anchor: p, Head: p}
}

// Range returns a text selection from anchor to head.
func Range(anchor, head Pos) TextSelection {
	return TextSelection{Anchor: anchor, Head: head}
}

// Empty reports whether the selection is a caret.
func (s TextSelection) Empty() bool {
	return comparePos(s.Anchor, s.Head) == 0
}

// From returns the earlier end of the selection.
func (s TextSelection) From() Pos {
	if comparePos(s.Anchor, s.Head) <= 0 {
		return s.Anchor
	}
	return s.Head
}

// To returns the later end of the selection.
func (s TextSelection) To() Pos {
	if comparePos(s.Anchor, s.Head) <= 0 {
		return s.Head
	}
	return s.Anchor
}

// CellCoord is a row/column slot in a table's grid.
type CellCoord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// CellSelection is a rectangular selection of table cells, spanning the
// grid rectangle between Anchor and Head.
type CellSelection struct {
	Table  []int     `json:"table"`
	Anchor CellCoord `json:"anchor"`
	Head   CellCoord `json:"head"`
}

// NodeSelection selects a single node, such as an image.
type NodeSelection struct {
	Path []int `json:"path"`
}

func (TextSelection) isSelection() {}
func (CellSelection) isSelection() {}
func (NodeSelection) isSelection() {}

// inlineRange is the part of one textblock covered by a selection.
type inlineRange struct {
	path     []int
	from, to int
}

// selectedInlineRanges returns the textblock ranges covered by a non-empty
// selection, in document order.
func selectedInlineRanges(st State) []inlineRange {
	switch sel := st.Selection.(type) {
	case TextSelection:
		if sel.Empty() {
			return nil
		}
		return textRanges(st.Doc, sel.From(), sel.To())
	case CellSelection:
		table := nodeAt(st.Doc, sel.Table)
		if table == nil || table.Type != TypeTable {
			return nil
		}
		var out []inlineRange
		for _, cp := range BuildTableMap(table).CellsInRect(rectFrom(sel.Anchor, sel.Head)) {
			cellPath := appendPath(sel.Table, cp.Row, cp.Index)
			walk(nodeAt(st.Doc, cellPath), cellPath, func(n *Node, path []int) bool {
				if n.IsTextblock() {
					out = append(out, inlineRange{path: path, from: 0, to: n.ContentSize()})
					return false
				}
				return true
			})
		}
		return out
	case NodeSelection:
		n := nodeAt(st.Doc, sel.Path)
		if n == nil || !n.IsInline() || len(sel.Path) == 0 {
			return nil
		}
		parentPath := sel.Path[:len(sel.Path)-1]
		parent := nodeAt(st.Doc, parentPath)
		start := inlineOffsetOf(parent, sel.Path[len(sel.Path)-1])
		return []inlineRange{{path: slices.Clone(parentPath), from: start, to: start + n.InlineSize()}}
	}
	return nil
}

// textRanges lists the textblocks between from and to with the covered
// offsets of each.
func textRanges(doc *Node, from, to Pos) []inlineRange {
	var out []inlineRange
	walk(doc, nil, func(n *Node, path []int) bool {
		if !n.IsTextblock() {
			return true
		}
		start, end := 0, n.ContentSize()
		if slices.Compare(path, from.Path) < 0 || slices.Compare(path, to.Path) > 0 {
			return false
		}
		if slices.Equal(path, from.Path) {
			start = min(from.Offset, end)
		}
		if slices.Equal(path, to.Path) {
			end = min(to.Offset, end)
		}
		if start <= end {
			out = append(out, inlineRange{path: path, from: start, to: end})
		}
		return false
	})
	return out
}

// inlineOffsetOf returns the offset at which child index i starts.
func inlineOffsetOf(block *Node, i int) int {
	off := 0
	for j := 0; j < i && j < len(block.Content); j++ {
		off += block.Content[j].InlineSize()
	}
	return off
}

// inlineChildAt returns the index of the inline child covering offset.
func inlineChildAt(block *Node, offset int) int {
	pos := 0
	for i, c := range block.Content {
		size := c.InlineSize()
		if offset < pos+size {
			return i
		}
		pos += size
	}
	return -1
}

// splitInline cuts inline content at offset.
func splitInline(inline []*Node, offset int) (left, right []*Node) {
	pos := 0
	for i, c := range inline {
		size := c.InlineSize()
		switch {
		case offset <= pos:
			return left, append(right, inline[i:]...)
		case offset < pos+size:
			// Only text can be cut inside.
			runes := []rune(c.Text)
			cut := offset - pos
			l := c.copyNode()
			l.Text = string(runes[:cut])
			r := c.copyNode()
			r.Text = string(runes[cut:])
			left = append(left, l)
			right = append(right, r)
			return left, append(right, inline[i+1:]...)
		}
		left = append(left, c)
		pos += size
	}
	return left, right
}

// sliceInline returns the inline content between from and to.
func sliceInline(inline []*Node, from, to int) []*Node {
	_, rest := splitInline(inline, from)
	mid, _ := splitInline(rest, to-from)
	return mid
}

// mapInlineRange applies fn to every inline node between from and to,
// splitting text at the boundaries.
func mapInlineRange(inline []*Node, from, to int, fn func(*Node) *Node) []*Node {
	left, rest := splitInline(inline, from)
	mid, right := splitInline(rest, to-from)
	out := make([]*Node, 0, len(left)+len(mid)+len(right))
	out = append(out, left...)
	for _, n := range mid {
		out = append(out, fn(n))
	}
	return append(out, right...)
}

// normalizeInline joins adjacent text runs with equal marks and drops empty
// runs.
func normalizeInline(inline []*Node) []*Node {
	var out []*Node
	for _, n := range inline {
		if n.Type == TypeText && n.Text == "" {
			continue
		}
		if len(out) > 0 {
			last := out[len(out)-1]
			if n.Type == TypeText && last.Type == TypeText && marksEqual(n.Marks, last.Marks) {
				joined := last.copyNode()
				joined.Text = last.Text + n.Text
				out[len(out)-1] = joined
				continue
			}
		}
		out = append(out, n)
	}
	return out
}
