// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richdoc

import (
	"slices"
	"strings"

	"github.com/olegiv/blockcms/internal/sanitize"
)

// Table layout bounds.
const (
	MinRowHeight   = 20
	MaxRowHeight   = 800
	MinColumnWidth = 20
	MaxColumnWidth = 4000
	MinBorderWidth = 1
	MaxBorderWidth = 12
	MaxTableRows   = 100
	MaxTableCols   = 20
)

// Table, row and cell attribute names.
const (
	attrHeight      = "height"
	attrColspan     = "colspan"
	attrRowspan     = "rowspan"
	attrColwidth    = "colwidth"
	attrBackground  = "backgroundColor"
	attrBorderColor = "borderColor"
	attrBorderWidth = "borderWidth"
	attrBorderMode  = "borderMode"
	attrTextAlign   = "textAlign"
)

// BorderTransparent hides cell borders while keeping their width.
const BorderTransparent = "transparent"

func newCell(t NodeType) *Node {
	return &Node{Type: t, Content: []*Node{Paragraph()}}
}

func newTable(rows, cols int, header bool, newRef func() Ref) *Node {
	table := &Node{Type: TypeTable}
	for r := range rows {
		cellType := TypeTableCell
		if header && r == 0 {
			cellType = TypeTableHeader
		}
		row := &Node{Type: TypeTableRow, Attrs: Attrs{attrRef: string(newRef())}}
		for range cols {
			row.Content = append(row.Content, newCell(cellType))
		}
		table.Content = append(table.Content, row)
	}
	return table
}

// InsertTable inserts a rows x cols table after the textblock at the head
// and puts the caret in its first cell. rows counts the header row when
// header is set, so a header table always has at least one body row.
func InsertTable(rows, cols int, header bool) Command {
	return func(st State) (Transaction, bool) {
		r := max(1, min(rows, MaxTableRows))
		if header {
			r = max(2, r)
		}
		c := max(1, min(cols, MaxTableCols))

		ref := st.newRef()
		table := newTable(r, c, header, st.newRef).withAttrs(Attrs{attrRef: string(ref)})
		doc, _, ok := insertBlock(st, table)
		if !ok {
			return Transaction{}, false
		}
		tablePath, _ := findRef(doc, ref)
		next := st
		next.Doc = doc
		next.Selection = Caret(Pos{Path: appendPath(tablePath, 0, 0, 0)})
		return Transaction{State: next, DocChanged: true, Ref: ref}, true
	}
}

// CellStyle is a partial update of cell presentation. Nil fields are left
// alone; empty strings and non-positive numbers clear the attribute.
type CellStyle struct {
	BackgroundColor *string `json:"backgroundColor,omitempty"`
	BorderColor     *string `json:"borderColor,omitempty"`
	BorderWidth     *int    `json:"borderWidthPx,omitempty"`
	BorderMode      *string `json:"borderMode,omitempty"`
	TextAlign       *string `json:"textAlign,omitempty"`
	Height          *int    `json:"heightPx,omitempty"`
}

// attrs converts the style into an attribute patch. Invalid values are
// dropped rather than clearing the existing attribute.
func (s CellStyle) attrs() Attrs {
	patch := Attrs{}
	color := func(key string, v *string) {
		if v == nil {
			return
		}
		c := strings.TrimSpace(*v)
		if c == "" {
			patch[key] = nil
			return
		}
		if c = sanitize.Color(c); c != "" {
			patch[key] = c
		}
	}
	color(attrBackground, s.BackgroundColor)
	color(attrBorderColor, s.BorderColor)

	if s.BorderWidth != nil {
		if *s.BorderWidth <= 0 {
			patch[attrBorderWidth] = nil
		} else {
			patch[attrBorderWidth] = max(MinBorderWidth, min(*s.BorderWidth, MaxBorderWidth))
		}
	}
	if s.BorderMode != nil {
		switch strings.ToLower(strings.TrimSpace(*s.BorderMode)) {
		case "", "normal":
			patch[attrBorderMode] = nil
		case BorderTransparent:
			patch[attrBorderMode] = BorderTransparent
		}
	}
	if s.TextAlign != nil {
		switch a := strings.ToLower(strings.TrimSpace(*s.TextAlign)); a {
		case "":
			patch[attrTextAlign] = nil
		case "left", "center", "right", "justify":
			patch[attrTextAlign] = a
		}
	}
	if s.Height != nil {
		if *s.Height <= 0 {
			patch[attrHeight] = nil
		} else {
			patch[attrHeight] = max(MinRowHeight, min(*s.Height, MaxRowHeight))
		}
	}
	return patch
}

// CellStrategy names how the target cells of a cell command were found.
type CellStrategy int

// Cell resolution strategies, in the order they are tried.
const (
	StrategyNone CellStrategy = iota
	// StrategyCellSelection: every cell touched by a rectangular cell
	// selection.
	StrategyCellSelection
	// StrategyCaretInCell: a caret whose textblock sits directly in a cell.
	StrategyCaretInCell
	// StrategyAncestorCell: the nearest cell above the selection head, for
	// text selections the cell selection logic does not recognise.
	StrategyAncestorCell
)

func (s CellStrategy) String() string {
	switch s {
	case StrategyCellSelection:
		return "cell-selection"
	case StrategyCaretInCell:
		return "caret-in-cell"
	case StrategyAncestorCell:
		return "ancestor-cell"
	}
	return "none"
}

// StyleTargets resolves the cells a cell command applies to. The first
// strategy that finds cells wins.
func StyleTargets(st State) ([][]int, CellStrategy) {
	if sel, ok := st.Selection.(CellSelection); ok {
		table := nodeAt(st.Doc, sel.Table)
		if table != nil && table.Type == TypeTable {
			var paths [][]int
			for _, cp := range BuildTableMap(table).CellsInRect(rectFrom(sel.Anchor, sel.Head)) {
				paths = append(paths, appendPath(sel.Table, cp.Row, cp.Index))
			}
			if len(paths) > 0 {
				return paths, StrategyCellSelection
			}
		}
		return nil, StrategyNone
	}

	sel, ok := st.Selection.(TextSelection)
	if !ok || len(sel.Head.Path) == 0 {
		return nil, StrategyNone
	}
	if sel.Empty() {
		parentPath := sel.Head.Path[:len(sel.Head.Path)-1]
		if parent := nodeAt(st.Doc, parentPath); parent != nil && parent.IsCell() {
			return [][]int{slices.Clone(parentPath)}, StrategyCaretInCell
		}
	}
	if path, cell := closest(st.Doc, sel.Head.Path, isCell); cell != nil {
		return [][]int{path}, StrategyAncestorCell
	}
	return nil, StrategyNone
}

// SetCellStyle applies style to the cells resolved by StyleTargets.
func SetCellStyle(style CellStyle) Command {
	return func(st State) (Transaction, bool) {
		patch := style.attrs()
		if len(patch) == 0 {
			return Transaction{}, false
		}
		paths, _ := StyleTargets(st)
		if len(paths) == 0 {
			return Transaction{}, false
		}
		doc := st.Doc
		for _, p := range paths {
			doc = replaceAt(doc, p, nodeAt(doc, p).withAttrs(patch))
		}
		next := st
		next.Doc = doc
		return Transaction{State: next, DocChanged: true, Structural: true}, true
	}
}

// ResizeTableRow sets an explicit row height, clamped to
// [MinRowHeight, MaxRowHeight].
func ResizeTableRow(row Ref, px int) Command {
	return func(st State) (Transaction, bool) {
		path, n := findRef(st.Doc, row)
		if n == nil || n.Type != TypeTableRow {
			return Transaction{}, false
		}
		next := st
		next.Doc = replaceAt(st.Doc, path, n.withAttrs(Attrs{attrHeight: max(MinRowHeight, min(px, MaxRowHeight))}))
		return Transaction{State: next, DocChanged: true, Structural: true}, true
	}
}

// ResizeColumn sets the width of grid column col, clamped to
// [MinColumnWidth, MaxColumnWidth]. The width is stored on every cell
// covering the column, at the cell's own column offset.
func ResizeColumn(table Ref, col, px int) Command {
	return func(st State) (Transaction, bool) {
		tablePath, t := findRef(st.Doc, table)
		if t == nil || t.Type != TypeTable {
			return Transaction{}, false
		}
		m := BuildTableMap(t)
		if col < 0 || col >= m.Width {
			return Transaction{}, false
		}
		width := max(MinColumnWidth, min(px, MaxColumnWidth))
		doc := st.Doc
		for _, cp := range m.CellsInRect(Rect{Top: 0, Left: col, Bottom: m.Height, Right: col + 1}) {
			cellPath := appendPath(tablePath, cp.Row, cp.Index)
			cell := nodeAt(doc, cellPath)
			colspan, _ := cellSpan(cell)
			widths := make([]int, colspan)
			copy(widths, colwidths(cell))
			widths[col-m.RectOf(cp).Left] = width
			doc = replaceAt(doc, cellPath, cell.withAttrs(Attrs{attrColwidth: widths}))
		}
		next := st
		next.Doc = doc
		return Transaction{State: next, DocChanged: true, Structural: true}, true
	}
}

// SetTableAlignment aligns the table around the selection.
func SetTableAlignment(align string) Command {
	return func(st State) (Transaction, bool) {
		if !validAlign(align) {
			return Transaction{}, false
		}
		path, table := selectedTable(st)
		if table == nil {
			return Transaction{}, false
		}
		next := st
		next.Doc = replaceAt(st.Doc, path, table.withAttrs(Attrs{attrAlign: align}))
		return Transaction{State: next, DocChanged: true, Structural: true}, true
	}
}

// TableMargins returns the left and right margins that express align.
func TableMargins(align string) (left, right string) {
	switch align {
	case "left":
		return "0", "auto"
	case "right":
		return "auto", "0"
	case "center":
		return "auto", "auto"
	}
	return "", ""
}

// MergeCells merges a rectangular cell selection into its top-left cell.
// It fails when the rectangle would cut through a spanning cell.
func MergeCells() Command {
	return func(st State) (Transaction, bool) {
		sel, ok := st.Selection.(CellSelection)
		if !ok {
			return Transaction{}, false
		}
		table := nodeAt(st.Doc, sel.Table)
		if table == nil || table.Type != TypeTable {
			return Transaction{}, false
		}
		m := BuildTableMap(table)
		rect := rectFrom(sel.Anchor, sel.Head)
		rect.Bottom, rect.Right = min(rect.Bottom, m.Height), min(rect.Right, m.Width)
		cells := m.CellsInRect(rect)
		if len(cells) < 2 {
			return Transaction{}, false
		}
		for _, cp := range cells {
			r := m.RectOf(cp)
			if r.Top < rect.Top || r.Left < rect.Left || r.Bottom > rect.Bottom || r.Right > rect.Right {
				return Transaction{}, false
			}
		}
		first, ok := m.CellAt(rect.Top, rect.Left)
		if !ok {
			return Transaction{}, false
		}

		var content []*Node
		for _, cp := range cells {
			if c := cellNode(table, cp); !cellIsEmpty(c) {
				content = append(content, c.Content...)
			}
		}
		target := cellNode(table, first)
		if len(content) == 0 {
			content = target.Content
		}
		merged := withSpan(target, rect.Right-rect.Left, rect.Bottom-rect.Top).withContent(content)
		merged = merged.withAttrs(Attrs{attrColwidth: mergedWidths(table, m, rect)})

		e := editTable(table)
		e.set(first, merged)
		for _, cp := range cells {
			if cp != first {
				e.remove(cp)
			}
		}
		next := st
		next.Doc = replaceAt(st.Doc, sel.Table, e.build())
		cellPath := appendPath(sel.Table, first.Row, first.Index)
		next.Selection = Caret(Pos{Path: appendPath(cellPath, firstTextPos(merged).Path...)})
		return Transaction{State: next, DocChanged: true, Structural: true}, true
	}
}

// SplitCell splits the spanning cell at the selection back into single
// cells. The original content stays in the top-left cell.
func SplitCell() Command {
	return func(st State) (Transaction, bool) {
		tablePath, table, m, rect, ok := selectedCells(st)
		if !ok {
			return Transaction{}, false
		}
		cp, ok := m.CellAt(rect.Top, rect.Left)
		if !ok {
			return Transaction{}, false
		}
		cell := cellNode(table, cp)
		colspan, rowspan := cellSpan(cell)
		if colspan == 1 && rowspan == 1 {
			return Transaction{}, false
		}
		area := m.RectOf(cp)
		widths := colwidths(cell)

		e := editTable(table)
		e.set(cp, withSpan(cell, 1, 1).withAttrs(Attrs{attrColwidth: widthAt(widths, 0)}))
		for r := area.Top; r < area.Bottom; r++ {
			var fresh []*Node
			for c := area.Left; c < area.Right; c++ {
				if r == area.Top && c == area.Left {
					continue
				}
				n := newCell(cell.Type)
				if w := widthAt(widths, c-area.Left); w != nil {
					n = n.withAttrs(Attrs{attrColwidth: w})
				}
				fresh = append(fresh, n)
			}
			at := m.insertIndex(r, area.Left)
			if r == area.Top {
				at = cp.Index + 1
			}
			e.insert(r, at, fresh...)
		}
		next := st
		next.Doc = replaceAt(st.Doc, tablePath, e.build())
		next.Selection = caretInCell(next.Doc, tablePath, area.Top, area.Left)
		return Transaction{State: next, DocChanged: true, Structural: true}, true
	}
}

// AddRowAfter inserts an empty row below the selected cells. Cells that
// span past the insertion point grow instead of getting a neighbour.
func AddRowAfter() Command {
	return func(st State) (Transaction, bool) {
		tablePath, table, m, rect, ok := selectedCells(st)
		if !ok || m.Height >= MaxTableRows {
			return Transaction{}, false
		}
		r := rect.Bottom - 1
		e := editTable(table)
		var cells []*Node
		grown := map[CellPos]bool{}
		for c := range m.Width {
			cp, ok := m.CellAt(r, c)
			if ok && m.RectOf(cp).Bottom > r+1 {
				if !grown[cp] {
					grown[cp] = true
					cell := e.get(cp)
					cs, rs := cellSpan(cell)
					e.set(cp, withSpan(cell, cs, rs+1))
				}
				continue
			}
			n := newCell(TypeTableCell)
			if w := columnWidth(table, m, c); w > 0 {
				n = n.withAttrs(Attrs{attrColwidth: []int{w}})
			}
			cells = append(cells, n)
		}
		row := &Node{Type: TypeTableRow, Attrs: Attrs{attrRef: string(st.newRef())}, Content: cells}
		e.insertRow(r+1, row)

		next := st
		next.Doc = replaceAt(st.Doc, tablePath, e.build())
		next.Selection = caretInCell(next.Doc, tablePath, r+1, rect.Left)
		return Transaction{State: next, DocChanged: true, Structural: true}, true
	}
}

// AddColumnAfter inserts an empty column right of the selected cells.
func AddColumnAfter() Command {
	return func(st State) (Transaction, bool) {
		tablePath, table, m, rect, ok := selectedCells(st)
		if !ok || m.Width >= MaxTableCols {
			return Transaction{}, false
		}
		col := rect.Right - 1
		e := editTable(table)
		grown := map[CellPos]bool{}
		for r := range m.Height {
			cp, ok := m.CellAt(r, col)
			if ok && m.RectOf(cp).Right > col+1 {
				if !grown[cp] {
					grown[cp] = true
					cell := e.get(cp)
					cs, rs := cellSpan(cell)
					widths := colwidths(cell)
					if len(widths) == cs {
						widths = slices.Insert(widths, col-m.RectOf(cp).Left+1, 0)
					} else {
						widths = nil
					}
					e.set(cp, withSpan(cell, cs+1, rs).withAttrs(Attrs{attrColwidth: intsOrNil(widths)}))
				}
				continue
			}
			cellType := TypeTableCell
			if ok && cellNode(table, cp).Type == TypeTableHeader {
				cellType = TypeTableHeader
			}
			e.insert(r, m.insertIndex(r, col+1), newCell(cellType))
		}
		next := st
		next.Doc = replaceAt(st.Doc, tablePath, e.build())
		next.Selection = caretInCell(next.Doc, tablePath, rect.Top, col+1)
		return Transaction{State: next, DocChanged: true, Structural: true}, true
	}
}

// DeleteRow removes the top row of the selection. Cells spanning into it
// shrink; cells starting in it and spanning down move to the next row.
func DeleteRow() Command {
	return func(st State) (Transaction, bool) {
		tablePath, table, m, rect, ok := selectedCells(st)
		if !ok || m.Height <= 1 {
			return Transaction{}, false
		}
		r := rect.Top
		e := editTable(table)
		type movedCell struct {
			col  int
			cell *Node
		}
		var moved []movedCell
		seen := map[CellPos]bool{}
		for c := range m.Width {
			cp, ok := m.CellAt(r, c)
			if !ok || seen[cp] {
				continue
			}
			seen[cp] = true
			cell := e.get(cp)
			cs, rs := cellSpan(cell)
			switch {
			case cp.Row < r:
				e.set(cp, withSpan(cell, cs, rs-1))
			case rs > 1:
				e.remove(cp)
				moved = append(moved, movedCell{col: m.RectOf(cp).Left, cell: withSpan(cell, cs, rs-1)})
			default:
				e.remove(cp)
			}
		}
		for i, mv := range moved {
			e.insert(r+1, m.insertIndex(r+1, mv.col)+i, mv.cell)
		}
		e.removeRow(r)

		next := st
		next.Doc = replaceAt(st.Doc, tablePath, e.build())
		next.Selection = caretInCell(next.Doc, tablePath, r, rect.Left)
		return Transaction{State: next, DocChanged: true, Structural: true}, true
	}
}

// DeleteColumn removes the leftmost column of the selection.
func DeleteColumn() Command {
	return func(st State) (Transaction, bool) {
		tablePath, table, m, rect, ok := selectedCells(st)
		if !ok || m.Width <= 1 {
			return Transaction{}, false
		}
		col := rect.Left
		e := editTable(table)
		seen := map[CellPos]bool{}
		for r := range m.Height {
			cp, ok := m.CellAt(r, col)
			if !ok || seen[cp] {
				continue
			}
			seen[cp] = true
			cell := e.get(cp)
			cs, rs := cellSpan(cell)
			if cs == 1 {
				e.remove(cp)
				continue
			}
			widths := colwidths(cell)
			if len(widths) == cs {
				at := col - m.RectOf(cp).Left
				widths = slices.Delete(widths, at, at+1)
			} else {
				widths = nil
			}
			e.set(cp, withSpan(cell, cs-1, rs).withAttrs(Attrs{attrColwidth: intsOrNil(widths)}))
		}
		next := st
		next.Doc = replaceAt(st.Doc, tablePath, e.build())
		next.Selection = caretInCell(next.Doc, tablePath, rect.Top, max(0, col-1))
		return Transaction{State: next, DocChanged: true, Structural: true}, true
	}
}

// selectedTable returns the table holding the selection.
func selectedTable(st State) ([]int, *Node) {
	switch sel := st.Selection.(type) {
	case CellSelection:
		if t := nodeAt(st.Doc, sel.Table); t != nil && t.Type == TypeTable {
			return slices.Clone(sel.Table), t
		}
	case TextSelection:
		return closest(st.Doc, sel.Head.Path, isTable)
	case NodeSelection:
		return closest(st.Doc, sel.Path, isTable)
	}
	return nil, nil
}

// selectedCells returns the table around the selection and the grid
// rectangle of the selected cells: the cell selection itself, or the cell
// holding the selection head.
func selectedCells(st State) ([]int, *Node, *TableMap, Rect, bool) {
	if sel, ok := st.Selection.(CellSelection); ok {
		table := nodeAt(st.Doc, sel.Table)
		if table == nil || table.Type != TypeTable {
			return nil, nil, nil, Rect{}, false
		}
		m := BuildTableMap(table)
		rect := rectFrom(sel.Anchor, sel.Head)
		if _, ok := m.CellAt(rect.Top, rect.Left); !ok {
			return nil, nil, nil, Rect{}, false
		}
		rect.Bottom, rect.Right = min(rect.Bottom, m.Height), min(rect.Right, m.Width)
		return slices.Clone(sel.Table), table, m, rect, true
	}
	var head []int
	switch sel := st.Selection.(type) {
	case TextSelection:
		head = sel.Head.Path
	case NodeSelection:
		head = sel.Path
	}
	cellPath, cell := closest(st.Doc, head, isCell)
	if cell == nil || len(cellPath) < 3 {
		return nil, nil, nil, Rect{}, false
	}
	tablePath := cellPath[:len(cellPath)-2]
	table := nodeAt(st.Doc, tablePath)
	m := BuildTableMap(table)
	rect := m.RectOf(CellPos{Row: cellPath[len(cellPath)-2], Index: cellPath[len(cellPath)-1]})
	if rect.Top < 0 {
		return nil, nil, nil, Rect{}, false
	}
	return slices.Clone(tablePath), table, m, rect, true
}

// caretInCell places the caret in the first textblock of the cell covering
// (row, col), clamped to the table bounds.
func caretInCell(doc *Node, tablePath []int, row, col int) Selection {
	table := nodeAt(doc, tablePath)
	m := BuildTableMap(table)
	cp, ok := m.CellAt(max(0, min(row, m.Height-1)), max(0, min(col, m.Width-1)))
	if !ok {
		return Caret(firstTextPos(doc))
	}
	cellPath := appendPath(tablePath, cp.Row, cp.Index)
	return Caret(Pos{Path: appendPath(cellPath, firstTextPos(nodeAt(doc, cellPath)).Path...)})
}

func cellNode(table *Node, cp CellPos) *Node {
	return table.Content[cp.Row].Content[cp.Index]
}

func cellIsEmpty(cell *Node) bool {
	for _, c := range cell.Content {
		if !c.IsTextblock() || len(c.Content) > 0 {
			return false
		}
	}
	return true
}

func withSpan(cell *Node, colspan, rowspan int) *Node {
	patch := Attrs{attrColspan: nil, attrRowspan: nil}
	if colspan > 1 {
		patch[attrColspan] = colspan
	}
	if rowspan > 1 {
		patch[attrRowspan] = rowspan
	}
	return cell.withAttrs(patch)
}

// colwidths reads a cell's column widths. Values decoded from JSON arrive
// as []any of float64.
func colwidths(cell *Node) []int {
	switch v := cell.Attr(attrColwidth).(type) {
	case []int:
		return slices.Clone(v)
	case []any:
		out := make([]int, len(v))
		for i, x := range v {
			switch n := x.(type) {
			case float64:
				out[i] = int(n)
			case int:
				out[i] = n
			}
		}
		return out
	}
	return nil
}

// intsOrNil returns ws as an attribute value, or nil when no width is set.
func intsOrNil(ws []int) any {
	for _, w := range ws {
		if w > 0 {
			return ws
		}
	}
	return nil
}

func widthAt(ws []int, i int) any {
	if i < len(ws) && ws[i] > 0 {
		return []int{ws[i]}
	}
	return nil
}

// columnWidth returns the first width recorded for grid column col.
func columnWidth(table *Node, m *TableMap, col int) int {
	for r := range m.Height {
		cp, ok := m.CellAt(r, col)
		if !ok {
			continue
		}
		ws := colwidths(cellNode(table, cp))
		if i := col - m.RectOf(cp).Left; i < len(ws) && ws[i] > 0 {
			return ws[i]
		}
	}
	return 0
}

func mergedWidths(table *Node, m *TableMap, rect Rect) any {
	ws := make([]int, 0, rect.Right-rect.Left)
	for c := rect.Left; c < rect.Right; c++ {
		w := columnWidth(table, m, c)
		if w == 0 {
			return nil
		}
		ws = append(ws, w)
	}
	return ws
}

// tableEdit batches cell edits addressed by positions in the original
// table. Removed cells are tombstoned until build.
type tableEdit struct {
	table *Node
	rows  []*Node
	cells [][]*Node
}

func editTable(table *Node) *tableEdit {
	e := &tableEdit{table: table, rows: slices.Clone(table.Content)}
	for _, row := range table.Content {
		e.cells = append(e.cells, slices.Clone(row.Content))
	}
	return e
}

func (e *tableEdit) get(cp CellPos) *Node {
	return e.cells[cp.Row][cp.Index]
}

func (e *tableEdit) set(cp CellPos, n *Node) {
	e.cells[cp.Row][cp.Index] = n
}

func (e *tableEdit) remove(cp CellPos) {
	e.cells[cp.Row][cp.Index] = nil
}

func (e *tableEdit) insert(row, at int, nodes ...*Node) {
	at = max(0, min(at, len(e.cells[row])))
	e.cells[row] = slices.Insert(e.cells[row], at, nodes...)
}

func (e *tableEdit) insertRow(at int, row *Node) {
	e.rows = slices.Insert(e.rows, at, row)
	e.cells = slices.Insert(e.cells, at, slices.Clone(row.Content))
}

func (e *tableEdit) removeRow(at int) {
	e.rows = slices.Delete(e.rows, at, at+1)
	e.cells = slices.Delete(e.cells, at, at+1)
}

func (e *tableEdit) build() *Node {
	rows := make([]*Node, len(e.rows))
	for i, row := range e.rows {
		var cells []*Node
		for _, c := range e.cells[i] {
			if c != nil {
				cells = append(cells, c)
			}
		}
		rows[i] = row.withContent(cells)
	}
	return dropEmptyRows(e.table.withContent(rows))
}

// dropEmptyRows removes rows left without cells and shrinks the cells
// spanning over them.
func dropEmptyRows(table *Node) *Node {
	for {
		r := slices.IndexFunc(table.Content, func(row *Node) bool { return len(row.Content) == 0 })
		if r < 0 || len(table.Content) == 1 {
			return table
		}
		m := BuildTableMap(table)
		rows := slices.Clone(table.Content)
		seen := map[CellPos]bool{}
		for c := range m.Width {
			cp, ok := m.CellAt(r, c)
			if !ok || seen[cp] {
				continue
			}
			seen[cp] = true
			cells := slices.Clone(rows[cp.Row].Content)
			cs, rs := cellSpan(cells[cp.Index])
			cells[cp.Index] = withSpan(cells[cp.Index], cs, rs-1)
			rows[cp.Row] = rows[cp.Row].withContent(cells)
		}
		table = table.withContent(slices.Delete(rows, r, r+1))
	}
}
