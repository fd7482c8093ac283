// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richdoc

import (
	"slices"
	"unicode/utf8"
)

// InsertText types s at the selection. A selection inside one textblock is
// replaced; selections spanning blocks or cells are left alone. The new text
// takes the stored marks if set, otherwise the marks before the caret.
func InsertText(s string) Command {
	return func(st State) (Transaction, bool) {
		sel, ok := st.Selection.(TextSelection)
		if !ok || s == "" {
			return Transaction{}, false
		}
		from, to := sel.From(), sel.To()
		if !slices.Equal(from.Path, to.Path) {
			return Transaction{}, false
		}
		block := nodeAt(st.Doc, from.Path)
		if block == nil || !block.IsTextblock() {
			return Transaction{}, false
		}
		marks := st.StoredMarks
		if marks == nil {
			marks = marksAt(block.Content, from.Offset)
		}
		if block.Type == TypeCodeBlock {
			marks = nil
		}
		left, rest := splitInline(block.Content, from.Offset)
		_, right := splitInline(rest, to.Offset-from.Offset)
		content := append(append(slices.Clone(left), Text(s, marks...)), right...)

		next := st
		next.Doc = replaceAt(st.Doc, from.Path, block.withContent(normalizeInline(content)))
		next.Selection = Caret(Pos{Path: from.Path, Offset: from.Offset + utf8.RuneCountInString(s)})
		next.StoredMarks = nil
		return Transaction{State: next, DocChanged: true}, true
	}
}

// DeleteRange removes inline content between from and to inside one
// textblock.
func DeleteRange(from, to Pos) Command {
	return func(st State) (Transaction, bool) {
		if !slices.Equal(from.Path, to.Path) || from.Offset >= to.Offset {
			return Transaction{}, false
		}
		block := nodeAt(st.Doc, from.Path)
		if block == nil || !block.IsTextblock() || to.Offset > block.ContentSize() {
			return Transaction{}, false
		}
		left, rest := splitInline(block.Content, from.Offset)
		_, right := splitInline(rest, to.Offset-from.Offset)
		next := st
		next.Doc = replaceAt(st.Doc, from.Path, block.withContent(normalizeInline(append(left, right...))))
		next.Selection = Caret(from)
		return Transaction{State: next, DocChanged: true}, true
	}
}

// headTextblock returns the textblock holding the selection head.
func headTextblock(st State) ([]int, *Node) {
	var path []int
	switch sel := st.Selection.(type) {
	case TextSelection:
		path = sel.Head.Path
	case NodeSelection:
		if len(sel.Path) > 0 {
			path = sel.Path[:len(sel.Path)-1]
		}
	case CellSelection:
		table := nodeAt(st.Doc, sel.Table)
		if table == nil {
			return nil, nil
		}
		m := BuildTableMap(table)
		cp, ok := m.CellAt(sel.Head.Row, sel.Head.Col)
		if !ok {
			return nil, nil
		}
		cellPath := appendPath(sel.Table, cp.Row, cp.Index)
		pos := firstTextPos(nodeAt(st.Doc, cellPath))
		path = appendPath(cellPath, pos.Path...)
	}
	n := nodeAt(st.Doc, path)
	if n == nil || !n.IsTextblock() {
		return nil, nil
	}
	return slices.Clone(path), n
}

// SetBlockType turns the textblock at the selection head into a paragraph,
// heading or code block. Code blocks drop marks and non-text inline nodes.
func SetBlockType(t NodeType, attrs Attrs) Command {
	return func(st State) (Transaction, bool) {
		if t != TypeParagraph && t != TypeHeading && t != TypeCodeBlock {
			return Transaction{}, false
		}
		path, block := headTextblock(st)
		if block == nil {
			return Transaction{}, false
		}
		n := &Node{Type: t, Content: block.Content}
		switch t {
		case TypeHeading:
			level, _ := attrs["level"].(int)
			n.Attrs = Attrs{"level": max(1, min(level, 6))}
		case TypeCodeBlock:
			if lang, ok := attrs["language"].(string); ok && lang != "" {
				n.Attrs = Attrs{"language": lang}
			}
			n.Content = nil
			if text := block.TextContent(); text != "" {
				n.Content = []*Node{Text(text)}
			}
		case TypeParagraph:
			if align := block.AttrString("textAlign"); align != "" && block.Type != TypeCodeBlock {
				n.Attrs = Attrs{"textAlign": align}
			}
		}
		next := st
		next.Doc = replaceAt(st.Doc, path, n)
		next.Selection = clampSelection(next.Doc, st.Selection)
		return Transaction{State: next, DocChanged: true}, true
	}
}

// WrapInList wraps the textblock at the head in a list of type t. If it is
// already in such a list it is lifted out; if it is in the other list type
// that list changes type.
func WrapInList(t NodeType) Command {
	return func(st State) (Transaction, bool) {
		if t != TypeBulletList && t != TypeOrderedList {
			return Transaction{}, false
		}
		path, block := headTextblock(st)
		if block == nil || len(path) == 0 {
			return Transaction{}, false
		}
		// Textblock directly inside a list item inside a list.
		if len(path) >= 2 {
			itemPath := path[:len(path)-1]
			listPath := itemPath[:len(itemPath)-1]
			item, list := nodeAt(st.Doc, itemPath), nodeAt(st.Doc, listPath)
			if item.Type == TypeListItem && (list.Type == TypeBulletList || list.Type == TypeOrderedList) {
				if list.Type != t {
					next := st
					next.Doc = replaceAt(st.Doc, listPath, &Node{Type: t, Attrs: list.Attrs, Content: list.Content})
					return Transaction{State: next, DocChanged: true}, true
				}
				return liftListItem(st, listPath, itemPath[len(itemPath)-1], path[len(path)-1])
			}
		}
		list := Block(t, Block(TypeListItem, block))
		next := st
		next.Doc = replaceAt(st.Doc, path, list)
		inner := appendPath(path, 0, 0)
		next.Selection = Caret(Pos{Path: inner, Offset: headOffset(st)})
		return Transaction{State: next, DocChanged: true}, true
	}
}

// liftListItem replaces the item at index i of the list with its blocks,
// splitting the list around it.
func liftListItem(st State, listPath []int, i, child int) (Transaction, bool) {
	list := nodeAt(st.Doc, listPath)
	item := list.Content[i]
	var repl []*Node
	if i > 0 {
		repl = append(repl, list.withContent(slices.Clone(list.Content[:i])))
	}
	repl = append(repl, item.Content...)
	if i < len(list.Content)-1 {
		repl = append(repl, list.withContent(slices.Clone(list.Content[i+1:])))
	}
	parentPath, idx := listPath[:len(listPath)-1], listPath[len(listPath)-1]
	next := st
	next.Doc = spliceAt(st.Doc, parentPath, idx, idx+1, repl...)
	first := idx + child
	if i > 0 {
		first++
	}
	next.Selection = Caret(Pos{Path: appendPath(parentPath, first), Offset: headOffset(st)})
	return Transaction{State: next, DocChanged: true}, true
}

// WrapInBlockquote wraps the textblock at the head in a blockquote, or
// lifts it out if it already is directly inside one.
func WrapInBlockquote() Command {
	return func(st State) (Transaction, bool) {
		path, block := headTextblock(st)
		if block == nil || len(path) == 0 {
			return Transaction{}, false
		}
		parentPath := path[:len(path)-1]
		parent := nodeAt(st.Doc, parentPath)
		next := st
		if parent.Type == TypeBlockquote && len(parentPath) > 0 {
			grand, idx := parentPath[:len(parentPath)-1], parentPath[len(parentPath)-1]
			next.Doc = spliceAt(st.Doc, grand, idx, idx+1, parent.Content...)
			next.Selection = Caret(Pos{Path: appendPath(grand, idx+path[len(path)-1]), Offset: headOffset(st)})
			return Transaction{State: next, DocChanged: true}, true
		}
		next.Doc = replaceAt(st.Doc, path, Block(TypeBlockquote, block))
		next.Selection = Caret(Pos{Path: appendPath(path, 0), Offset: headOffset(st)})
		return Transaction{State: next, DocChanged: true}, true
	}
}

// InsertHorizontalRule inserts a divider after the block at the head. An
// empty paragraph at the head is replaced.
func InsertHorizontalRule() Command {
	return func(st State) (Transaction, bool) {
		doc, after, ok := insertBlock(st, &Node{Type: TypeHorizontalRule})
		if !ok {
			return Transaction{}, false
		}
		next := st
		next.Doc = doc
		next.Selection = Caret(Pos{Path: after})
		return Transaction{State: next, DocChanged: true}, true
	}
}

// insertBlock places block next to the textblock at the head, replacing it
// when it is an empty paragraph. A paragraph is added after the new block
// when nothing editable follows it. It returns the new document and the
// path of the textblock following the block.
func insertBlock(st State, block *Node) (*Node, []int, bool) {
	path, tb := headTextblock(st)
	if tb == nil {
		return nil, nil, false
	}
	// Tables do not nest; blocks typed inside a cell go after the table.
	if block.Type == TypeTable {
		if tablePath, table := closest(st.Doc, path, isTable); table != nil {
			return insertAfter(st.Doc, tablePath, block, false)
		}
	}
	replace := tb.Type == TypeParagraph && len(tb.Content) == 0
	return insertAfter(st.Doc, path, block, replace)
}

func insertAfter(doc *Node, path []int, block *Node, replace bool) (*Node, []int, bool) {
	parentPath, idx := path[:len(path)-1], path[len(path)-1]
	parent := nodeAt(doc, parentPath)
	at, end := idx+1, idx+1
	if replace {
		at = idx
	}
	nodes := []*Node{block}
	if end >= len(parent.Content) || !hasTextblock(parent.Content[end]) {
		nodes = append(nodes, Paragraph())
	}
	doc = spliceAt(doc, parentPath, at, end, nodes...)
	followPath := appendPath(parentPath, at+1)
	if follower := nodeAt(doc, followPath); !follower.IsTextblock() {
		followPath = appendPath(followPath, firstTextPos(follower).Path...)
	}
	return doc, followPath, true
}

func hasTextblock(n *Node) bool {
	found := false
	walk(n, nil, func(c *Node, _ []int) bool {
		if c.IsTextblock() {
			found = true
		}
		return !found
	})
	return found
}

func headOffset(st State) int {
	if sel, ok := st.Selection.(TextSelection); ok {
		return sel.Head.Offset
	}
	return 0
}

// clampSelection keeps a text selection valid after its textblock changed
// size.
func clampSelection(doc *Node, sel Selection) Selection {
	ts, ok := sel.(TextSelection)
	if !ok {
		return sel
	}
	clamp := func(p Pos) Pos {
		n := nodeAt(doc, p.Path)
		if n == nil || !n.IsTextblock() {
			return Pos{Path: firstTextPos(doc).Path}
		}
		p.Offset = max(0, min(p.Offset, n.ContentSize()))
		return p
	}
	return TextSelection{Anchor: clamp(ts.Anchor), Head: clamp(ts.Head)}
}
