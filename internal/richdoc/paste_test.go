// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richdoc

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestDataURI(t *testing.T) {
	data := pngBytes(t)

	uri, err := DataURI(data, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	uri, err = DataURI(data, "IMAGE/PNG; charset=binary")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	_, err = DataURI([]byte("<svg/>"), "image/svg+xml")
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	_, err = DataURI(nil, "image/png")
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestPasteImageWins(t *testing.T) {
	e := newTestEditor(t, Doc(Paragraph()))
	cb := Clipboard{
		Files: []ClipboardFile{{Name: "my_photo.png", MIME: "image/png", Data: pngBytes(t)}},
		HTML:  "<table><tr><td>a</td></tr></table>",
		Text:  "a\tb",
	}
	assert.Equal(t, PasteImage, ClassifyPaste(e.State(), cb))
	require.True(t, e.Paste(cb))

	require.Len(t, e.Doc().Content, 1)
	p := e.Doc().Content[0]
	require.Len(t, p.Content, 1)
	img := ImageOf(p.Content[0])
	assert.True(t, strings.HasPrefix(img.Src, "data:image/png;base64,"))
	assert.Equal(t, "my photo", img.Alt)
}

func TestPasteImageEncoderFailureFallsThrough(t *testing.T) {
	failing := func([]byte, string) (string, error) { return "", errors.New("decode failed") }
	e := newTestEditor(t, Doc(Paragraph()), WithImageEncoder(failing))
	file := ClipboardFile{Name: "x.png", MIME: "image/png", Data: pngBytes(t)}

	plain := Clipboard{Files: []ClipboardFile{file}, Text: "plain"}
	assert.Equal(t, PasteNone, ClassifyPaste(e.State(), plain))
	assert.False(t, e.Paste(plain))

	tsv := Clipboard{Files: []ClipboardFile{file}, Text: "a\tb"}
	assert.Equal(t, PasteTSV, ClassifyPaste(e.State(), tsv))
}

func TestPasteHTMLTable(t *testing.T) {
	e := newTestEditor(t, Doc(Paragraph()))
	cb := Clipboard{
		HTML: `<meta charset="utf-8"><style>td{color:red}</style>` +
			`<table><tr><td>a</td><td><script>alert(1)</script>b</td></tr></table>`,
		Text: "a\tb",
	}
	assert.Equal(t, PasteHTMLTable, ClassifyPaste(e.State(), cb))
	require.True(t, e.Paste(cb))

	table := e.Doc().Content[0]
	require.Equal(t, TypeTable, table.Type)
	assert.Equal(t, [][]string{{"a", "b"}}, cellTexts(table))
	assert.NotEmpty(t, table.Ref())

	out := e.HTML()
	assert.NotContains(t, out, "alert")
	assert.NotContains(t, out, "color:red")

	sel, ok := e.State().Selection.(TextSelection)
	require.True(t, ok)
	assert.Equal(t, []int{0, 0, 0, 0}, sel.Head.Path)
}

func TestPasteBareRows(t *testing.T) {
	e := newTestEditor(t, Doc(Paragraph()))
	require.True(t, e.Paste(Clipboard{HTML: "<tr><td>1</td><td>2</td></tr><tr><td>3</td><td>4</td></tr>"}))
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, cellTexts(e.Doc().Content[0]))
}

func TestPasteHTMLTableIsCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString("<table>")
	for r := range MaxTableRows + 50 {
		b.WriteString("<tr>")
		for c := range MaxTableCols + 10 {
			switch {
			case r == 0 && c == MaxTableCols-2:
				b.WriteString(`<td colspan="5">wide</td>`)
			case r == MaxTableRows-2 && c == 0:
				b.WriteString(`<td rowspan="10">tall</td>`)
			default:
				b.WriteString("<td>x</td>")
			}
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")

	e := newTestEditor(t, Doc(Paragraph()))
	require.True(t, e.Paste(Clipboard{HTML: b.String()}))

	table := e.Doc().Content[0]
	require.Equal(t, TypeTable, table.Type)
	m := BuildTableMap(table)
	assert.Equal(t, MaxTableRows, m.Height)
	assert.Equal(t, MaxTableCols, m.Width)

	first := table.Content[0].Content
	require.Len(t, first, MaxTableCols-1)
	colspan, _ := cellSpan(first[MaxTableCols-2])
	assert.Equal(t, 2, colspan)

	_, rowspan := cellSpan(table.Content[MaxTableRows-2].Content[0])
	assert.Equal(t, 2, rowspan)
	assert.Len(t, table.Content[MaxTableRows-1].Content, MaxTableCols-1)
}

func TestPasteTSV(t *testing.T) {
	e := newTestEditor(t, Doc(Paragraph()))
	cb := Clipboard{Text: "name\tqty\r\napple\t3\npear\n"}
	assert.Equal(t, PasteTSV, ClassifyPaste(e.State(), cb))
	require.True(t, e.Paste(cb))

	doc := e.Doc()
	require.Len(t, doc.Content, 2, "the empty paragraph is replaced and one follows the table")
	assert.Equal(t, [][]string{{"name", "qty"}, {"apple", "3"}, {"pear", ""}}, cellTexts(doc.Content[0]))
	assert.Equal(t, TypeParagraph, doc.Content[1].Type)
}

func TestPasteNotClaimed(t *testing.T) {
	e := newTestEditor(t, Doc(Paragraph(Text("x"))))
	before := e.Doc()

	for _, cb := range []Clipboard{
		{Text: "just text"},
		{HTML: "<p>hi</p>", Text: "hi"},
		{Files: []ClipboardFile{{Name: "notes.txt", MIME: "text/plain", Data: []byte("hello")}}},
	} {
		assert.Equal(t, PasteNone, ClassifyPaste(e.State(), cb))
		assert.False(t, e.Paste(cb))
	}
	assert.Same(t, before, e.Doc())
}
