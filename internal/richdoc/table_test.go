// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func cellTexts(table *Node) [][]string {
	var out [][]string
	for _, row := range table.Content {
		var texts []string
		for _, cell := range row.Content {
			texts = append(texts, cell.TextContent())
		}
		out = append(out, texts)
	}
	return out
}

func TestBuildTableMap(t *testing.T) {
	table := textTable([]string{"a", "b", "c"}, []string{"d", "e"}, []string{"f", "g", "h"})
	table.Content[0].Content[0] = withSpan(table.Content[0].Content[0], 1, 2)

	m := BuildTableMap(table)
	assert.Equal(t, 3, m.Width)
	assert.Equal(t, 3, m.Height)

	cp, ok := m.CellAt(1, 0)
	require.True(t, ok)
	assert.Equal(t, CellPos{Row: 0, Index: 0}, cp, "rowspan covers the slot below")

	cp, ok = m.CellAt(1, 1)
	require.True(t, ok)
	assert.Equal(t, CellPos{Row: 1, Index: 0}, cp)

	assert.Equal(t, Rect{Top: 0, Left: 0, Bottom: 2, Right: 1}, m.RectOf(CellPos{Row: 0, Index: 0}))
	assert.Len(t, m.CellsInRect(Rect{Top: 0, Left: 0, Bottom: 2, Right: 2}), 3)

	_, ok = m.CellAt(5, 0)
	assert.False(t, ok)
}

func TestInsertTable(t *testing.T) {
	tests := []struct {
		name           string
		rows, cols     int
		header         bool
		wantRows       int
		wantCols       int
		wantHeaderType NodeType
	}{
		{"plain", 2, 3, false, 2, 3, TypeTableCell},
		{"header counts toward rows", 3, 2, true, 3, 2, TypeTableHeader},
		{"header forces a body row", 1, 2, true, 2, 2, TypeTableHeader},
		{"clamped", 0, 99, false, 1, MaxTableCols, TypeTableCell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t, Doc(Paragraph()))
			ref, ok := e.InsertTable(tt.rows, tt.cols, tt.header)
			require.True(t, ok)

			path, table := findRef(e.Doc(), ref)
			require.NotNil(t, table)
			assert.Equal(t, []int{0}, path, "empty paragraph is replaced")
			require.Len(t, table.Content, tt.wantRows)
			for _, row := range table.Content {
				assert.Len(t, row.Content, tt.wantCols)
				assert.NotEmpty(t, row.Ref())
			}
			assert.Equal(t, tt.wantHeaderType, table.Content[0].Content[0].Type)
			assert.Equal(t, TypeTableCell, table.Content[len(table.Content)-1].Content[0].Type)

			assert.Equal(t, TypeParagraph, e.Doc().Content[1].Type, "a paragraph follows the table")
			assert.Equal(t, Caret(At(0, 0, 0, 0, 0)), e.State().Selection)
		})
	}
}

func TestInsertTableInsideCellGoesAfterTable(t *testing.T) {
	e := newTestEditor(t, Doc(textTable([]string{"a"}), Paragraph(Text("after"))))
	e.SetSelection(Caret(At(1, 0, 0, 0, 0)))
	ref, ok := e.InsertTable(2, 2, false)
	require.True(t, ok)

	path, _ := findRef(e.Doc(), ref)
	assert.Equal(t, []int{1}, path)
	assert.Len(t, e.Doc().Content, 3)
}

func TestStyleTargetsStrategies(t *testing.T) {
	doc := Doc(textTable([]string{"a", "b"}, []string{"c", "d"}), Paragraph(Text("outside")))

	tests := []struct {
		name      string
		sel       Selection
		wantPaths [][]int
		want      CellStrategy
	}{
		{
			name:      "rectangular cell selection",
			sel:       CellSelection{Table: []int{0}, Anchor: CellCoord{0, 0}, Head: CellCoord{1, 0}},
			wantPaths: [][]int{{0, 0, 0}, {0, 1, 0}},
			want:      StrategyCellSelection,
		},
		{
			name:      "caret in cell",
			sel:       Caret(At(1, 0, 1, 1, 0)),
			wantPaths: [][]int{{0, 1, 1}},
			want:      StrategyCaretInCell,
		},
		{
			name:      "text range across cells",
			sel:       Range(At(0, 0, 0, 0, 0), At(1, 0, 0, 1, 0)),
			wantPaths: [][]int{{0, 0, 1}},
			want:      StrategyAncestorCell,
		},
		{
			name: "caret outside table",
			sel:  Caret(At(0, 1)),
			want: StrategyNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewState(doc).WithSelection(tt.sel)
			paths, strategy := StyleTargets(st)
			assert.Equal(t, tt.want, strategy)
			assert.Equal(t, tt.wantPaths, paths)
		})
	}
}

func TestStyleTargetsCaretInNestedBlock(t *testing.T) {
	table := textTable([]string{"a", "b"})
	table.Content[0].Content[1] = Block(TypeTableCell, Block(TypeBulletList, Block(TypeListItem, Paragraph(Text("x")))))
	st := NewState(Doc(table)).WithSelection(Caret(At(0, 0, 0, 1, 0, 0, 0)))

	paths, strategy := StyleTargets(st)
	assert.Equal(t, StrategyAncestorCell, strategy)
	assert.Equal(t, [][]int{{0, 0, 1}}, paths)
}

func TestSetCellStyleTouchesOnlyTargets(t *testing.T) {
	t.Run("caret affects exactly one cell", func(t *testing.T) {
		e := newTestEditor(t, Doc(textTable([]string{"a", "b"}, []string{"c", "d"})))
		e.SetSelection(Caret(At(0, 0, 1, 0, 0)))
		require.True(t, e.SetCellStyle(CellStyle{BackgroundColor: ptr("#ff0000")}))

		table := e.Doc().Content[0]
		var styled int
		for _, row := range table.Content {
			for _, cell := range row.Content {
				if cell.AttrString(attrBackground) != "" {
					styled++
				}
			}
		}
		assert.Equal(t, 1, styled)
		assert.Equal(t, "#ff0000", table.Content[1].Content[0].AttrString(attrBackground))
	})

	t.Run("cell selection affects the rectangle", func(t *testing.T) {
		e := newTestEditor(t, Doc(textTable([]string{"a", "b", "c"}, []string{"d", "e", "f"}, []string{"g", "h", "i"})))
		e.SetSelection(CellSelection{Table: []int{0}, Anchor: CellCoord{1, 2}, Head: CellCoord{0, 1}})
		require.True(t, e.SetCellStyle(CellStyle{BorderWidth: ptr(3)}))

		table := e.Doc().Content[0]
		for r, row := range table.Content {
			for c, cell := range row.Content {
				_, has := cell.AttrInt(attrBorderWidth)
				inside := r <= 1 && c >= 1
				assert.Equal(t, inside, has, "cell (%d,%d)", r, c)
			}
		}
	})

	t.Run("outside a table is a no-op", func(t *testing.T) {
		e := newTestEditor(t, Doc(Paragraph(Text("x"))))
		assert.False(t, e.SetCellStyle(CellStyle{BackgroundColor: ptr("#000")}))
	})
}

func TestCellStyleValues(t *testing.T) {
	e := newTestEditor(t, Doc(textTable([]string{"a"})))
	e.SetSelection(Caret(At(0, 0, 0, 0, 0)))
	require.True(t, e.SetCellStyle(CellStyle{
		BackgroundColor: ptr("#abc"),
		BorderColor:     ptr("rgb(0, 0, 0)"),
		BorderWidth:     ptr(40),
		BorderMode:      ptr("transparent"),
		TextAlign:       ptr("Center"),
		Height:          ptr(5),
	}))
	cell := e.Doc().Content[0].Content[0].Content[0]
	assert.Equal(t, "#abc", cell.AttrString(attrBackground))
	assert.Equal(t, "rgb(0, 0, 0)", cell.AttrString(attrBorderColor))
	w, _ := cell.AttrInt(attrBorderWidth)
	assert.Equal(t, MaxBorderWidth, w)
	assert.Equal(t, BorderTransparent, cell.AttrString(attrBorderMode))
	assert.Equal(t, "center", cell.AttrString(attrTextAlign))
	h, _ := cell.AttrInt(attrHeight)
	assert.Equal(t, MinRowHeight, h)

	// Invalid values are ignored, empty values clear.
	require.True(t, e.SetCellStyle(CellStyle{BackgroundColor: ptr("url(evil)"), BorderColor: ptr(""), BorderMode: ptr("normal")}))
	cell = e.Doc().Content[0].Content[0].Content[0]
	assert.Equal(t, "#abc", cell.AttrString(attrBackground))
	assert.Nil(t, cell.Attr(attrBorderColor))
	assert.Nil(t, cell.Attr(attrBorderMode))

	assert.False(t, e.SetCellStyle(CellStyle{}), "empty style does nothing")
}

func TestResizeTableRow(t *testing.T) {
	doc := Doc(textTable([]string{"a"}, []string{"b"}))
	e := newTestEditor(t, doc)
	row := e.Doc().Content[0].Content[1].Ref()

	tests := []struct {
		px   int
		want int
	}{
		{120, 120},
		{1, MinRowHeight},
		{10_000, MaxRowHeight},
	}
	for _, tt := range tests {
		tr, ok := ResizeTableRow(row, tt.px)(e.State())
		require.True(t, ok)
		assert.True(t, tr.Structural)
		h, _ := tr.State.Doc.Content[0].Content[1].AttrInt(attrHeight)
		assert.Equal(t, tt.want, h)
	}

	_, ok := ResizeTableRow("missing", 40)(e.State())
	assert.False(t, ok)
}

func TestResizeColumn(t *testing.T) {
	table := textTable([]string{"a", "b", "c"}, []string{"d", "e", "f"})
	table.Content[1].Content[0] = withSpan(table.Content[1].Content[0], 2, 1)
	table.Content[1].Content = table.Content[1].Content[:2]
	e := newTestEditor(t, Doc(table))
	ref := e.Doc().Content[0].Ref()

	require.True(t, e.ResizeColumn(ref, 1, 5))
	got := e.Doc().Content[0]
	assert.Equal(t, []int{MinColumnWidth}, colwidths(got.Content[0].Content[1]))
	assert.Nil(t, got.Content[0].Content[0].Attr(attrColwidth))
	assert.Equal(t, []int{0, MinColumnWidth}, colwidths(got.Content[1].Content[0]), "spanning cell stores width at its offset")

	require.True(t, e.ResizeColumn(ref, 0, 9000))
	got = e.Doc().Content[0]
	assert.Equal(t, []int{MaxColumnWidth, MinColumnWidth}, colwidths(got.Content[1].Content[0]))

	assert.False(t, e.ResizeColumn(ref, 3, 100))
}

func TestSetTableAlignment(t *testing.T) {
	e := newTestEditor(t, Doc(textTable([]string{"a"}), Paragraph()))
	e.SetSelection(Caret(At(0, 0, 0, 0, 0)))

	require.True(t, e.SetTableAlignment("right"))
	assert.Equal(t, "right", e.Doc().Content[0].AttrString(attrAlign))
	assert.False(t, e.SetTableAlignment("middle"))

	e.SetSelection(Caret(At(0, 1)))
	assert.False(t, e.SetTableAlignment("left"), "selection outside any table")

	left, right := TableMargins("center")
	assert.Equal(t, "auto", left)
	assert.Equal(t, "auto", right)
	left, right = TableMargins("left")
	assert.Equal(t, "0", left)
	assert.Equal(t, "auto", right)
}

func TestMergeAndSplitCells(t *testing.T) {
	e := newTestEditor(t, Doc(textTable([]string{"a", "b"}, []string{"c", "d"})))

	e.SetSelection(CellSelection{Table: []int{0}, Anchor: CellCoord{0, 0}, Head: CellCoord{0, 1}})
	require.True(t, e.Exec(MergeCells()))
	table := e.Doc().Content[0]
	require.Len(t, table.Content[0].Content, 1)
	merged := table.Content[0].Content[0]
	colspan, rowspan := cellSpan(merged)
	assert.Equal(t, 2, colspan)
	assert.Equal(t, 1, rowspan)
	assert.Equal(t, "ab", merged.TextContent())
	assert.Equal(t, 2, BuildTableMap(table).Width)

	require.True(t, e.Exec(SplitCell()))
	table = e.Doc().Content[0]
	assert.Equal(t, [][]string{{"ab", ""}, {"c", "d"}}, cellTexts(table))
	colspan, _ = cellSpan(table.Content[0].Content[0])
	assert.Equal(t, 1, colspan)
}

func TestMergeWholeTableDropsEmptyRows(t *testing.T) {
	e := newTestEditor(t, Doc(textTable([]string{"a", "b"}, []string{"c", ""})))
	e.SetSelection(CellSelection{Table: []int{0}, Anchor: CellCoord{0, 0}, Head: CellCoord{1, 1}})
	require.True(t, e.Exec(MergeCells()))

	table := e.Doc().Content[0]
	require.Len(t, table.Content, 1)
	require.Len(t, table.Content[0].Content, 1)
	cell := table.Content[0].Content[0]
	colspan, rowspan := cellSpan(cell)
	assert.Equal(t, 2, colspan)
	assert.Equal(t, 1, rowspan)
	assert.Equal(t, "abc", cell.TextContent())
}

func TestMergeRejectsCutSpans(t *testing.T) {
	table := textTable([]string{"a", "b"}, []string{"c", "d"})
	table.Content[0].Content = []*Node{withSpan(table.Content[0].Content[0], 2, 1)}
	e := newTestEditor(t, Doc(table))
	e.SetSelection(CellSelection{Table: []int{0}, Anchor: CellCoord{0, 0}, Head: CellCoord{1, 0}})
	assert.False(t, e.Exec(MergeCells()))
}

func TestSplitRowspanCell(t *testing.T) {
	table := textTable([]string{"a", "b"}, []string{"d"})
	table.Content[0].Content[0] = withSpan(table.Content[0].Content[0], 1, 2)
	e := newTestEditor(t, Doc(table))
	e.SetSelection(Caret(At(0, 0, 0, 0, 0)))

	require.True(t, e.Exec(SplitCell()))
	got := e.Doc().Content[0]
	assert.Equal(t, [][]string{{"a", "b"}, {"", "d"}}, cellTexts(got))
	assert.Equal(t, 2, BuildTableMap(got).Width)
}

func TestRowAndColumnEdits(t *testing.T) {
	t.Run("add row after", func(t *testing.T) {
		e := newTestEditor(t, Doc(textTable([]string{"a", "b"}, []string{"c", "d"})))
		e.SetSelection(Caret(At(0, 0, 0, 0, 0)))
		require.True(t, e.Exec(AddRowAfter()))
		table := e.Doc().Content[0]
		assert.Equal(t, [][]string{{"a", "b"}, {"", ""}, {"c", "d"}}, cellTexts(table))
		assert.NotEmpty(t, table.Content[1].Ref())
		assert.Equal(t, Caret(At(0, 0, 1, 0, 0)), e.State().Selection)
	})

	t.Run("add row grows spanning cells", func(t *testing.T) {
		table := textTable([]string{"a", "b"}, []string{"c"})
		table.Content[0].Content[0] = withSpan(table.Content[0].Content[0], 1, 2)
		e := newTestEditor(t, Doc(table))
		e.SetSelection(Caret(At(0, 0, 0, 1, 0)))
		require.True(t, e.Exec(AddRowAfter()))
		got := e.Doc().Content[0]
		_, rowspan := cellSpan(got.Content[0].Content[0])
		assert.Equal(t, 3, rowspan)
		assert.Len(t, got.Content[1].Content, 1)
		assert.Equal(t, 2, BuildTableMap(got).Width)
	})

	t.Run("add column after", func(t *testing.T) {
		e := newTestEditor(t, Doc(textTable([]string{"a", "b"}, []string{"c", "d"})))
		e.SetSelection(Caret(At(0, 0, 0, 0, 0)))
		require.True(t, e.Exec(AddColumnAfter()))
		assert.Equal(t, [][]string{{"a", "", "b"}, {"c", "", "d"}}, cellTexts(e.Doc().Content[0]))
	})

	t.Run("delete row", func(t *testing.T) {
		e := newTestEditor(t, Doc(textTable([]string{"a", "b"}, []string{"c", "d"})))
		e.SetSelection(Caret(At(0, 0, 1, 1, 0)))
		require.True(t, e.Exec(DeleteRow()))
		assert.Equal(t, [][]string{{"a", "b"}}, cellTexts(e.Doc().Content[0]))
		assert.False(t, e.Exec(DeleteRow()), "last row stays")
	})

	t.Run("delete row moves spanning cell down", func(t *testing.T) {
		table := textTable([]string{"a", "b"}, []string{"d"})
		table.Content[0].Content[0] = withSpan(table.Content[0].Content[0], 1, 2)
		e := newTestEditor(t, Doc(table))
		e.SetSelection(Caret(At(0, 0, 0, 1, 0)))
		require.True(t, e.Exec(DeleteRow()))
		got := e.Doc().Content[0]
		assert.Equal(t, [][]string{{"a", "d"}}, cellTexts(got))
		_, rowspan := cellSpan(got.Content[0].Content[0])
		assert.Equal(t, 1, rowspan)
	})

	t.Run("delete column", func(t *testing.T) {
		e := newTestEditor(t, Doc(textTable([]string{"a", "b"}, []string{"c", "d"})))
		e.SetSelection(Caret(At(0, 0, 0, 1, 0)))
		require.True(t, e.Exec(DeleteColumn()))
		assert.Equal(t, [][]string{{"a"}, {"c"}}, cellTexts(e.Doc().Content[0]))
		assert.False(t, e.Exec(DeleteColumn()), "last column stays")
	})

	t.Run("delete column shrinks spanning cell", func(t *testing.T) {
		table := textTable([]string{"a"}, []string{"c", "d"})
		table.Content[0].Content[0] = withSpan(table.Content[0].Content[0], 2, 1).withAttrs(Attrs{attrColwidth: []int{100, 50}})
		e := newTestEditor(t, Doc(table))
		e.SetSelection(Caret(At(0, 0, 1, 1, 0)))
		require.True(t, e.Exec(DeleteColumn()))
		got := e.Doc().Content[0]
		colspan, _ := cellSpan(got.Content[0].Content[0])
		assert.Equal(t, 1, colspan)
		assert.Equal(t, []int{100}, colwidths(got.Content[0].Content[0]))
		assert.Equal(t, [][]string{{"a"}, {"c"}}, cellTexts(got))
	})
}
