// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richdoc

import (
	"slices"
	"strings"
)

// Image attribute names.
const (
	attrSrc     = "src"
	attrAlt     = "alt"
	attrWidth   = "width"   // percent of the flow width
	attrWidthPx = "widthPx" // absolute width, used inside table cells
	attrAlign   = "align"
	attrInTable = "inTable"
)

// Image width bounds.
const (
	MinImagePercent = 5
	MaxImagePercent = 100
	MinImagePx      = 16
	MaxImagePx      = 4000
)

// WidthUnit is the unit an image width is expressed in.
type WidthUnit string

// Width units.
const (
	UnitPercent WidthUnit = "%"
	UnitPixel   WidthUnit = "px"
)

// ImageAttrs is the typed view of an image node.
type ImageAttrs struct {
	Src     string
	Alt     string
	Width   *int
	WidthPx *int
	Align   string
	InTable bool
}

// ImageOf reads the image attributes of n.
func ImageOf(n *Node) ImageAttrs {
	a := ImageAttrs{
		Src:     n.AttrString(attrSrc),
		Alt:     n.AttrString(attrAlt),
		Align:   n.AttrString(attrAlign),
		InTable: n.Attr(attrInTable) == true,
	}
	if w, ok := n.AttrInt(attrWidth); ok {
		a.Width = &w
	}
	if w, ok := n.AttrInt(attrWidthPx); ok {
		a.WidthPx = &w
	}
	return a
}

// NewImage builds an image node with the default width of 100% and center
// alignment.
func NewImage(src, alt string) *Node {
	return &Node{Type: TypeImage, Attrs: Attrs{
		attrSrc:   src,
		attrAlt:   alt,
		attrWidth: MaxImagePercent,
		attrAlign: "center",
	}}
}

// InsertImage inserts an image at the caret, replacing any selected text in
// the same textblock. The transaction's Ref identifies the new image.
func InsertImage(src, alt string) Command {
	return func(st State) (Transaction, bool) {
		src := strings.TrimSpace(src)
		if src == "" {
			return Transaction{}, false
		}
		img := NewImage(src, alt)
		ref := st.newRef()
		img = img.withAttrs(Attrs{attrRef: string(ref)})

		sel, ok := st.Selection.(TextSelection)
		var path []int
		var from, to int
		if ok && slices.Equal(sel.From().Path, sel.To().Path) {
			path, from, to = sel.From().Path, sel.From().Offset, sel.To().Offset
		} else {
			path, _ = headTextblock(st)
			to = 0
		}
		block := nodeAt(st.Doc, path)
		if block == nil || !block.IsTextblock() || block.Type == TypeCodeBlock {
			return Transaction{}, false
		}
		left, rest := splitInline(block.Content, from)
		_, right := splitInline(rest, to-from)
		content := append(append(slices.Clone(left), img), right...)

		next := st
		next.Doc = replaceAt(st.Doc, path, block.withContent(normalizeInline(content)))
		next.Selection = Caret(Pos{Path: slices.Clone(path), Offset: from + 1})
		return Transaction{State: next, DocChanged: true, Ref: ref}, true
	}
}

// ImageWidthUnit reports which unit ResizeImage uses for the image: pixels
// when it currently sits inside a table cell, percent otherwise.
func ImageWidthUnit(doc *Node, ref Ref) (WidthUnit, bool) {
	path, n := findRef(doc, ref)
	if n == nil || n.Type != TypeImage {
		return "", false
	}
	if insideTable(doc, path) {
		return UnitPixel, true
	}
	return UnitPercent, true
}

// ResizeImage sets the image width. Inside a table cell width is a pixel
// value clamped to [MinImagePx, MaxImagePx]; elsewhere it is a percentage
// clamped to [MinImagePercent, MaxImagePercent]. A nil width resets the
// image to its natural size in both units.
func ResizeImage(ref Ref, width *int) Command {
	return func(st State) (Transaction, bool) {
		path, n := findRef(st.Doc, ref)
		if n == nil || n.Type != TypeImage {
			return Transaction{}, false
		}
		var patch Attrs
		switch {
		case width == nil:
			patch = Attrs{attrWidth: nil, attrWidthPx: nil}
		case insideTable(st.Doc, path):
			patch = Attrs{attrWidthPx: max(MinImagePx, min(*width, MaxImagePx))}
		default:
			patch = Attrs{attrWidth: max(MinImagePercent, min(*width, MaxImagePercent))}
		}
		next := st
		next.Doc = replaceAt(st.Doc, path, n.withAttrs(patch))
		return Transaction{State: next, DocChanged: true, Structural: true}, true
	}
}

// AlignImage sets image alignment to left, center or right.
func AlignImage(ref Ref, align string) Command {
	return func(st State) (Transaction, bool) {
		if !validAlign(align) {
			return Transaction{}, false
		}
		path, n := findRef(st.Doc, ref)
		if n == nil || n.Type != TypeImage {
			return Transaction{}, false
		}
		next := st
		next.Doc = replaceAt(st.Doc, path, n.withAttrs(Attrs{attrAlign: align}))
		return Transaction{State: next, DocChanged: true, Structural: true}, true
	}
}

func validAlign(a string) bool {
	return a == "left" || a == "center" || a == "right"
}

// insideTable reports whether any ancestor of path is a table cell.
func insideTable(doc *Node, path []int) bool {
	_, cell := closest(doc, path, isCell)
	return cell != nil
}

// syncImageFlags recomputes the inTable flag of every image from its
// current position. Untouched subtrees are shared with the input.
func syncImageFlags(doc *Node) *Node {
	return syncImages(doc, false)
}

func syncImages(n *Node, inCell bool) *Node {
	if n.Type == TypeImage {
		if (n.Attr(attrInTable) == true) == inCell {
			return n
		}
		if inCell {
			return n.withAttrs(Attrs{attrInTable: true})
		}
		return n.withAttrs(Attrs{attrInTable: nil})
	}
	if len(n.Content) == 0 {
		return n
	}
	childInCell := inCell || n.IsCell()
	var content []*Node
	for i, c := range n.Content {
		nc := syncImages(c, childInCell)
		if nc != c && content == nil {
			content = slices.Clone(n.Content)
		}
		if content != nil {
			content[i] = nc
		}
	}
	if content == nil {
		return n
	}
	return n.withContent(content)
}
