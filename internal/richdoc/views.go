// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richdoc

import "math"

// Drag is one resize interaction, from pointer-down to pointer-up. It holds
// only transient state; the document changes once, when the drag ends.
// After End or Cancel the drag is inert.
type Drag struct {
	origin  float64
	start   int
	scale   float64
	lo, hi  int
	value   int
	commit  func(value int) bool
	release func()
	done    bool
}

func newDrag(origin float64, start int, scale float64, lo, hi int, commit func(int) bool) *Drag {
	start = max(lo, min(start, hi))
	return &Drag{origin: origin, start: start, scale: scale, lo: lo, hi: hi, value: start, commit: commit}
}

// Move updates the preview value from the pointer coordinate and returns
// it. The document is not touched.
func (d *Drag) Move(pos float64) int {
	if d.done {
		return d.value
	}
	v := float64(d.start) + (pos-d.origin)*d.scale
	d.value = max(d.lo, min(int(math.Round(v)), d.hi))
	return d.value
}

// Value returns the current preview value.
func (d *Drag) Value() int {
	return d.value
}

// Active reports whether the drag is still in progress.
func (d *Drag) Active() bool {
	return !d.done
}

// End finishes the drag at pos and commits the final value.
func (d *Drag) End(pos float64) bool {
	if d.done {
		return false
	}
	d.Move(pos)
	d.finish()
	return d.commit(d.value)
}

// Cancel abandons the drag without touching the document.
func (d *Drag) Cancel() {
	if !d.done {
		d.finish()
	}
}

func (d *Drag) finish() {
	d.done = true
	if d.release != nil {
		d.release()
	}
}

// ImageView projects one image node. Hover and drag state live here; width
// and alignment are read back from the document on every update.
type ImageView struct {
	editor *Editor
	ref    Ref

	Present bool
	Attrs   ImageAttrs
	Unit    WidthUnit
	Hover   bool

	drag *Drag
}

// NewImageView attaches a view for the image ref to e.
func NewImageView(e *Editor, ref Ref) *ImageView {
	v := &ImageView{editor: e, ref: ref}
	e.AddView(v)
	return v
}

// Update implements View.
func (v *ImageView) Update(st State) {
	_, n := findRef(st.Doc, v.ref)
	if n == nil || n.Type != TypeImage {
		v.Present = false
		v.Attrs = ImageAttrs{}
		return
	}
	v.Present = true
	v.Attrs = ImageOf(n)
	v.Unit, _ = ImageWidthUnit(st.Doc, v.ref)
}

// Destroy implements View.
func (v *ImageView) Destroy() {
	if v.drag != nil {
		v.drag.Cancel()
	}
	v.Present = false
	v.Hover = false
}

// Dragging reports whether a resize is in progress.
func (v *ImageView) Dragging() bool {
	return v.drag != nil && v.drag.Active()
}

// StartResize begins a drag of the right-hand resize handle at pointer x.
// renderedPx is the image's current on-screen width and containerPx the
// width of the block it flows in; they seed the drag when the document has
// no explicit width.
func (v *ImageView) StartResize(x, renderedPx, containerPx float64) (*Drag, bool) {
	if !v.Present || v.Dragging() {
		return nil, false
	}
	ref := v.ref
	var d *Drag
	if v.Unit == UnitPixel {
		start := int(math.Round(renderedPx))
		if v.Attrs.WidthPx != nil {
			start = *v.Attrs.WidthPx
		}
		d = newDrag(x, start, 1, MinImagePx, MaxImagePx, func(w int) bool {
			return v.editor.Exec(ResizeImage(ref, &w))
		})
	} else {
		if containerPx <= 0 {
			return nil, false
		}
		start := MaxImagePercent
		if v.Attrs.Width != nil {
			start = *v.Attrs.Width
		}
		d = newDrag(x, start, 100/containerPx, MinImagePercent, MaxImagePercent, func(w int) bool {
			return v.editor.Exec(ResizeImage(ref, &w))
		})
	}
	d.release = func() { v.drag = nil }
	v.drag = d
	return d, true
}

// ResetWidth clears the image width back to auto.
func (v *ImageView) ResetWidth() bool {
	return v.editor.Exec(ResizeImage(v.ref, nil))
}

// TableView projects one table: its alignment margins, row heights and
// column widths. Because structural edits rebuild table nodes, the
// projection is recomputed after every transaction rather than only when
// an alignment command runs.
type TableView struct {
	editor *Editor
	ref    Ref

	Present      bool
	Align        string
	MarginLeft   string
	MarginRight  string
	RowRefs      []Ref
	RowHeights   []int
	ColumnWidths []int

	drag *Drag
}

// NewTableView attaches a view for the table ref to e.
func NewTableView(e *Editor, ref Ref) *TableView {
	v := &TableView{editor: e, ref: ref}
	e.AddView(v)
	return v
}

// Update implements View.
func (v *TableView) Update(st State) {
	_, t := findRef(st.Doc, v.ref)
	if t == nil || t.Type != TypeTable {
		*v = TableView{editor: v.editor, ref: v.ref, drag: v.drag}
		return
	}
	v.Present = true
	v.Align = t.AttrString(attrAlign)
	v.MarginLeft, v.MarginRight = TableMargins(v.Align)

	v.RowRefs = v.RowRefs[:0]
	v.RowHeights = v.RowHeights[:0]
	for _, row := range t.Content {
		h, _ := row.AttrInt(attrHeight)
		v.RowRefs = append(v.RowRefs, row.Ref())
		v.RowHeights = append(v.RowHeights, h)
	}
	m := BuildTableMap(t)
	v.ColumnWidths = make([]int, m.Width)
	for c := range m.Width {
		v.ColumnWidths[c] = columnWidth(t, m, c)
	}
}

// Destroy implements View.
func (v *TableView) Destroy() {
	if v.drag != nil {
		v.drag.Cancel()
	}
	v.Present = false
}

// Dragging reports whether a row or column resize is in progress.
func (v *TableView) Dragging() bool {
	return v.drag != nil && v.drag.Active()
}

// StartRowResize begins dragging the bottom edge of row at pointer y.
func (v *TableView) StartRowResize(row Ref, y, renderedPx float64) (*Drag, bool) {
	if !v.Present || v.Dragging() {
		return nil, false
	}
	i := -1
	for j, r := range v.RowRefs {
		if r == row {
			i = j
		}
	}
	if i < 0 {
		return nil, false
	}
	start := v.RowHeights[i]
	if start == 0 {
		start = int(math.Round(renderedPx))
	}
	d := newDrag(y, start, 1, MinRowHeight, MaxRowHeight, func(h int) bool {
		return v.editor.Exec(ResizeTableRow(row, h))
	})
	d.release = func() { v.drag = nil }
	v.drag = d
	return d, true
}

// StartColumnResize begins dragging the right edge of grid column col at
// pointer x.
func (v *TableView) StartColumnResize(col int, x, renderedPx float64) (*Drag, bool) {
	if !v.Present || v.Dragging() || col < 0 || col >= len(v.ColumnWidths) {
		return nil, false
	}
	start := v.ColumnWidths[col]
	if start == 0 {
		start = int(math.Round(renderedPx))
	}
	table := v.ref
	d := newDrag(x, start, 1, MinColumnWidth, MaxColumnWidth, func(w int) bool {
		return v.editor.Exec(ResizeColumn(table, col, w))
	})
	d.release = func() { v.drag = nil }
	v.drag = d
	return d, true
}
