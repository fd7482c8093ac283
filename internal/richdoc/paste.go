// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richdoc

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// ClipboardFile is a file carried by a paste or drop.
type ClipboardFile struct {
	Name string
	MIME string
	Data []byte
}

// Clipboard is the content of a paste or drop event.
type Clipboard struct {
	Files []ClipboardFile
	HTML  string
	Text  string
}

// ImageEncoder turns pasted image bytes into an embeddable image source.
type ImageEncoder func(data []byte, mime string) (string, error)

// ErrUnsupportedImage is returned by DataURI for non-raster input.
var ErrUnsupportedImage = errors.New("unsupported image type")

// DataURI encodes a raster image as a base64 data URI without altering it.
func DataURI(data []byte, mime string) (string, error) {
	if len(data) == 0 {
		return "", ErrUnsupportedImage
	}
	mime, _, _ = strings.Cut(strings.ToLower(strings.TrimSpace(mime)), ";")
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	switch mime {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// PasteKind reports which branch claimed a paste.
type PasteKind int

// Paste branches, in the order they are tried.
const (
	PasteNone PasteKind = iota
	PasteImage
	PasteHTMLTable
	PasteTSV
)

var tableOrRowMarkup = regexp.MustCompile(`(?i)<(table|tr)[\s>/]`)

// HandlePaste claims a paste that carries an image file, an HTML table or
// tab-separated text, in that order. Anything else, including clipboard
// data that fails to convert, is left to the default text paste.
func HandlePaste(cb Clipboard) Command {
	return func(st State) (Transaction, bool) {
		tr, kind := pasteTransaction(st, cb)
		return tr, kind != PasteNone
	}
}

// ClassifyPaste reports which branch HandlePaste would take in st.
func ClassifyPaste(st State, cb Clipboard) PasteKind {
	_, kind := pasteTransaction(st, cb)
	return kind
}

func pasteTransaction(st State, cb Clipboard) (Transaction, PasteKind) {
	if tr, ok := pasteImage(st, cb.Files); ok {
		return tr, PasteImage
	}
	hasTable := tableOrRowMarkup.MatchString(cb.HTML)
	if hasTable {
		if tr, ok := pasteHTMLTable(st, cb.HTML); ok {
			return tr, PasteHTMLTable
		}
	}
	if !hasTable && strings.Contains(cb.Text, "\t") {
		if tr, ok := pasteTSV(st, cb.Text); ok {
			return tr, PasteTSV
		}
	}
	return Transaction{}, PasteNone
}

func pasteImage(st State, files []ClipboardFile) (Transaction, bool) {
	encode := DataURI
	if st.env != nil && st.env.encode != nil {
		encode = st.env.encode
	}
	for _, f := range files {
		mime := strings.ToLower(f.MIME)
		if mime == "" && len(f.Data) > 0 {
			mime = http.DetectContentType(f.Data)
		}
		if !strings.HasPrefix(mime, "image/") {
			continue
		}
		src, err := encode(f.Data, mime)
		if err != nil {
			continue
		}
		return InsertImage(src, altFromName(f.Name))(st)
	}
	return Transaction{}, false
}

func altFromName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(name))
}

var tableOpen = regexp.MustCompile(`(?i)<table[\s>]`)

func pasteHTMLTable(st State, src string) (Transaction, bool) {
	// Spreadsheets put bare rows on the clipboard; the HTML parser drops
	// rows outside a table.
	if !tableOpen.MatchString(src) {
		src = "<table>" + src + "</table>"
	}
	doc, err := Parse(src)
	if err != nil {
		return Transaction{}, false
	}
	var table *Node
	walk(doc, nil, func(n *Node, _ []int) bool {
		if table == nil && n.Type == TypeTable {
			table = n
		}
		return table == nil
	})
	if table == nil {
		return Transaction{}, false
	}
	return insertPastedTable(st, capTable(table))
}

// capTable clips a table to MaxTableRows by MaxTableCols grid slots.
// Spans crossing the edge are shortened.
func capTable(table *Node) *Node {
	rows := table.Content
	if len(rows) > MaxTableRows {
		rows = rows[:MaxTableRows]
	}
	occupied := make([][]bool, len(rows))
	for r := range occupied {
		occupied[r] = make([]bool, MaxTableCols)
	}
	out := make([]*Node, len(rows))
	for r, row := range rows {
		var cells []*Node
		col := 0
		for _, cell := range row.Content {
			for col < MaxTableCols && occupied[r][col] {
				col++
			}
			if col >= MaxTableCols {
				break
			}
			colspan, rowspan := cellSpan(cell)
			colspan = min(colspan, MaxTableCols-col)
			rowspan = min(rowspan, len(rows)-r)
			for dr := range rowspan {
				for dc := range colspan {
					occupied[r+dr][col+dc] = true
				}
			}
			if ws := colwidths(cell); len(ws) > colspan {
				cell = cell.withAttrs(Attrs{attrColwidth: ws[:colspan]})
			}
			cells = append(cells, withSpan(cell, colspan, rowspan))
			col += colspan
		}
		out[r] = row.withContent(cells)
	}
	return dropEmptyRows(table.withContent(out))
}

func pasteTSV(st State, text string) (Transaction, bool) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > MaxTableRows {
		lines = lines[:MaxTableRows]
	}
	width := 0
	grid := make([][]string, len(lines))
	for i, line := range lines {
		grid[i] = strings.Split(line, "\t")
		width = max(width, len(grid[i]))
	}
	width = min(width, MaxTableCols)
	if width < 2 && len(grid) < 2 {
		return Transaction{}, false
	}

	table := &Node{Type: TypeTable}
	for _, cells := range grid {
		row := &Node{Type: TypeTableRow}
		for c := range width {
			cell := newCell(TypeTableCell)
			if c < len(cells) {
				if v := strings.TrimSpace(cells[c]); v != "" {
					cell = Block(TypeTableCell, Paragraph(Text(v)))
				}
			}
			row.Content = append(row.Content, cell)
		}
		table.Content = append(table.Content, row)
	}
	return insertPastedTable(st, table)
}

func insertPastedTable(st State, table *Node) (Transaction, bool) {
	ref := st.newRef()
	table = assignRefs(table.withAttrs(Attrs{attrRef: string(ref)}), func() string { return string(st.newRef()) })
	doc, _, ok := insertBlock(st, table)
	if !ok {
		return Transaction{}, false
	}
	tablePath, _ := findRef(doc, ref)
	next := st
	next.Doc = doc
	next.Selection = caretInCell(doc, tablePath, 0, 0)
	return Transaction{State: next, DocChanged: true, Ref: ref}, true
}
