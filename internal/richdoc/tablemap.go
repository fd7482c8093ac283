// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richdoc

// CellPos addresses a cell node by row index and index within the row.
type CellPos struct {
	Row   int
	Index int
}

// Rect is a half-open rectangle of grid slots.
type Rect struct {
	Top, Left, Bottom, Right int
}

func rectFrom(a, b CellCoord) Rect {
	return Rect{
		Top:    min(a.Row, b.Row),
		Left:   min(a.Col, b.Col),
		Bottom: max(a.Row, b.Row) + 1,
		Right:  max(a.Col, b.Col) + 1,
	}
}

// TableMap resolves the grid layout of a table, accounting for cells that
// span several rows or columns.
type TableMap struct {
	Width, Height int
	// slots[row][col] is the cell covering that slot; Row is -1 for holes
	// left by irregular tables.
	slots [][]CellPos
}

// BuildTableMap computes the grid of table.
func BuildTableMap(table *Node) *TableMap {
	height := len(table.Content)
	m := &TableMap{Height: height}
	grid := make([][]CellPos, height)

	place := func(r, c int, cp CellPos) {
		for len(grid[r]) <= c {
			grid[r] = append(grid[r], CellPos{Row: -1, Index: -1})
		}
		grid[r][c] = cp
	}
	occupied := func(r, c int) bool {
		return c < len(grid[r]) && grid[r][c].Row >= 0
	}

	for r, row := range table.Content {
		col := 0
		for i, cell := range row.Content {
			for occupied(r, col) {
				col++
			}
			colspan, rowspan := cellSpan(cell)
			for dr := 0; dr < rowspan && r+dr < height; dr++ {
				for dc := 0; dc < colspan; dc++ {
					place(r+dr, col+dc, CellPos{Row: r, Index: i})
				}
			}
			col += colspan
		}
	}
	for _, row := range grid {
		m.Width = max(m.Width, len(row))
	}
	for r := range grid {
		for len(grid[r]) < m.Width {
			grid[r] = append(grid[r], CellPos{Row: -1, Index: -1})
		}
	}
	m.slots = grid
	return m
}

func cellSpan(cell *Node) (colspan, rowspan int) {
	colspan, rowspan = 1, 1
	if v, ok := cell.AttrInt("colspan"); ok && v > 1 {
		colspan = v
	}
	if v, ok := cell.AttrInt("rowspan"); ok && v > 1 {
		rowspan = v
	}
	return colspan, rowspan
}

// CellAt returns the cell covering grid slot (row, col).
func (m *TableMap) CellAt(row, col int) (CellPos, bool) {
	if row < 0 || row >= m.Height || col < 0 || col >= m.Width {
		return CellPos{}, false
	}
	cp := m.slots[row][col]
	return cp, cp.Row >= 0
}

// RectOf returns the slots covered by the cell at cp.
func (m *TableMap) RectOf(cp CellPos) Rect {
	r := Rect{Top: -1}
	for row := range m.slots {
		for col, s := range m.slots[row] {
			if s != cp {
				continue
			}
			if r.Top < 0 {
				r = Rect{Top: row, Left: col, Bottom: row + 1, Right: col + 1}
				continue
			}
			r.Left = min(r.Left, col)
			r.Right = max(r.Right, col+1)
			r.Bottom = max(r.Bottom, row+1)
		}
	}
	return r
}

// CoordOf returns the top-left slot of the cell at cp.
func (m *TableMap) CoordOf(cp CellPos) (CellCoord, bool) {
	r := m.RectOf(cp)
	if r.Top < 0 {
		return CellCoord{}, false
	}
	return CellCoord{Row: r.Top, Col: r.Left}, true
}

// CellsInRect lists the distinct cells overlapping rect in grid order.
func (m *TableMap) CellsInRect(rect Rect) []CellPos {
	seen := map[CellPos]bool{}
	var out []CellPos
	for row := max(0, rect.Top); row < min(rect.Bottom, m.Height); row++ {
		for col := max(0, rect.Left); col < min(rect.Right, m.Width); col++ {
			cp := m.slots[row][col]
			if cp.Row < 0 || seen[cp] {
				continue
			}
			seen[cp] = true
			out = append(out, cp)
		}
	}
	return out
}

// insertIndex returns the child index a new cell placed at grid column col
// of row must take so that row order follows grid order.
func (m *TableMap) insertIndex(row, col int) int {
	idx := 0
	seen := map[int]bool{}
	for c := 0; c < col && c < m.Width; c++ {
		cp := m.slots[row][c]
		if cp.Row == row && !seen[cp.Index] {
			seen[cp.Index] = true
			idx++
		}
	}
	return idx
}
