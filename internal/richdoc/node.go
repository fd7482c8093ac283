// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package richdoc implements the structured text model edited inside text
// sections: an immutable node tree, commands that produce new tree states,
// HTML serialisation, paste handling and the view layer that owns transient
// drag state for images and tables.
package richdoc

import (
	"slices"
	"unicode/utf8"
)

// NodeType names a node kind.
type NodeType string

// Node types.
const (
	TypeDoc            NodeType = "doc"
	TypeParagraph      NodeType = "paragraph"
	TypeHeading        NodeType = "heading"
	TypeBulletList     NodeType = "bulletList"
	TypeOrderedList    NodeType = "orderedList"
	TypeListItem       NodeType = "listItem"
	TypeBlockquote     NodeType = "blockquote"
	TypeCodeBlock      NodeType = "codeBlock"
	TypeHorizontalRule NodeType = "horizontalRule"
	TypeHardBreak      NodeType = "hardBreak"
	TypeImage          NodeType = "image"
	TypeTable          NodeType = "table"
	TypeTableRow       NodeType = "tableRow"
	TypeTableCell      NodeType = "tableCell"
	TypeTableHeader    NodeType = "tableHeader"
	TypeText           NodeType = "text"
)

// Attrs holds node attributes. A nil value means the attribute is unset.
type Attrs map[string]any

// Node is one element of the document tree. Nodes are never modified after
// construction; every edit copies the path from the root to the change.
type Node struct {
	Type    NodeType `json:"type"`
	Attrs   Attrs    `json:"attrs,omitempty"`
	Content []*Node  `json:"content,omitempty"`
	Text    string   `json:"text,omitempty"`
	Marks   []Mark   `json:"marks,omitempty"`
}

// IsTextblock reports whether n holds inline content directly.
func (n *Node) IsTextblock() bool {
	switch n.Type {
	case TypeParagraph, TypeHeading, TypeCodeBlock:
		return true
	}
	return false
}

// IsInline reports whether n lives inside a textblock.
func (n *Node) IsInline() bool {
	switch n.Type {
	case TypeText, TypeImage, TypeHardBreak:
		return true
	}
	return false
}

// IsCell reports whether n is a table cell or header cell.
func (n *Node) IsCell() bool {
	return n.Type == TypeTableCell || n.Type == TypeTableHeader
}

// InlineSize is the width n occupies inside a textblock: one per rune for
// text, one for every other inline node.
func (n *Node) InlineSize() int {
	if n.Type == TypeText {
		return utf8.RuneCountInString(n.Text)
	}
	return 1
}

// ContentSize is the total inline width of a textblock.
func (n *Node) ContentSize() int {
	size := 0
	for _, c := range n.Content {
		size += c.InlineSize()
	}
	return size
}

// TextContent concatenates all text below n.
func (n *Node) TextContent() string {
	if n.Type == TypeText {
		return n.Text
	}
	var out []byte
	for _, c := range n.Content {
		out = append(out, c.TextContent()...)
	}
	return string(out)
}

// Attr returns an attribute value.
func (n *Node) Attr(key string) any {
	if n.Attrs == nil {
		return nil
	}
	return n.Attrs[key]
}

// AttrString returns a string attribute or "".
func (n *Node) AttrString(key string) string {
	s, _ := n.Attr(key).(string)
	return s
}

// AttrInt returns an integer attribute and whether it is set.
func (n *Node) AttrInt(key string) (int, bool) {
	switch v := n.Attr(key).(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Ref returns the node's stable reference, if it has one.
func (n *Node) Ref() Ref {
	return Ref(n.AttrString(attrRef))
}

// copyNode returns a shallow copy of n whose slices and attrs may be replaced
// without touching n.
func (n *Node) copyNode() *Node {
	c := *n
	return &c
}

// withContent returns a copy of n with new children.
func (n *Node) withContent(content []*Node) *Node {
	c := n.copyNode()
	c.Content = content
	return c
}

// withAttrs returns a copy of n with patch merged into its attrs. Nil values
// in patch delete the attribute.
func (n *Node) withAttrs(patch Attrs) *Node {
	c := n.copyNode()
	c.Attrs = make(Attrs, len(n.Attrs)+len(patch))
	for k, v := range n.Attrs {
		c.Attrs[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(c.Attrs, k)
			continue
		}
		c.Attrs[k] = v
	}
	return c
}

// withMarks returns a copy of a text node with the given marks.
func (n *Node) withMarks(marks []Mark) *Node {
	c := n.copyNode()
	c.Marks = sortMarks(marks)
	return c
}

// Doc builds a document node.
func Doc(blocks ...*Node) *Node {
	if len(blocks) == 0 {
		blocks = []*Node{Paragraph()}
	}
	return &Node{Type: TypeDoc, Content: blocks}
}

// Paragraph builds a paragraph with inline children.
func Paragraph(inline ...*Node) *Node {
	return &Node{Type: TypeParagraph, Content: inline}
}

// Heading builds a heading of the given level (1-6).
func Heading(level int, inline ...*Node) *Node {
	return &Node{Type: TypeHeading, Attrs: Attrs{"level": max(1, min(level, 6))}, Content: inline}
}

// Text builds a text run.
func Text(s string, marks ...Mark) *Node {
	return &Node{Type: TypeText, Text: s, Marks: sortMarks(marks)}
}

// Block builds a container node.
func Block(t NodeType, children ...*Node) *Node {
	return &Node{Type: t, Content: children}
}

// nodeAt returns the node at path, or nil.
func nodeAt(root *Node, path []int) *Node {
	n := root
	for _, i := range path {
		if n == nil || i < 0 || i >= len(n.Content) {
			return nil
		}
		n = n.Content[i]
	}
	return n
}

// ancestry returns the nodes from root down to path, inclusive.
func ancestry(root *Node, path []int) []*Node {
	out := []*Node{root}
	n := root
	for _, i := range path {
		if i < 0 || i >= len(n.Content) {
			return nil
		}
		n = n.Content[i]
		out = append(out, n)
	}
	return out
}

// replaceAt returns a new root with the node at path replaced by repl.
func replaceAt(root *Node, path []int, repl *Node) *Node {
	if len(path) == 0 {
		return repl
	}
	child := root.Content[path[0]]
	content := slices.Clone(root.Content)
	content[path[0]] = replaceAt(child, path[1:], repl)
	return root.withContent(content)
}

// spliceAt replaces children [from, to) of the node at parentPath with nodes.
func spliceAt(root *Node, parentPath []int, from, to int, nodes ...*Node) *Node {
	parent := nodeAt(root, parentPath)
	content := make([]*Node, 0, len(parent.Content)-(to-from)+len(nodes))
	content = append(content, parent.Content[:from]...)
	content = append(content, nodes...)
	content = append(content, parent.Content[to:]...)
	return replaceAt(root, parentPath, parent.withContent(content))
}

// walk visits n and its descendants in document order. Returning false from
// fn skips the node's children.
func walk(n *Node, path []int, fn func(n *Node, path []int) bool) {
	if !fn(n, path) {
		return
	}
	for i, c := range n.Content {
		walk(c, appendPath(path, i), fn)
	}
}

// appendPath returns path+i without aliasing path's backing array.
func appendPath(path []int, i ...int) []int {
	out := make([]int, len(path), len(path)+len(i))
	copy(out, path)
	return append(out, i...)
}

// findRef locates the node carrying ref.
func findRef(root *Node, ref Ref) ([]int, *Node) {
	if ref == "" {
		return nil, nil
	}
	var foundPath []int
	var found *Node
	walk(root, nil, func(n *Node, path []int) bool {
		if found != nil {
			return false
		}
		if n.Ref() == ref {
			found, foundPath = n, path
			return false
		}
		return true
	})
	return foundPath, found
}

// closest returns the deepest ancestor of path (inclusive) matching pred.
func closest(root *Node, path []int, pred func(*Node) bool) ([]int, *Node) {
	chain := ancestry(root, path)
	for i := len(chain) - 1; i >= 0; i-- {
		if pred(chain[i]) {
			return slices.Clone(path[:i]), chain[i]
		}
	}
	return nil, nil
}

func isTable(n *Node) bool { return n.Type == TypeTable }
func isCell(n *Node) bool  { return n.IsCell() }
