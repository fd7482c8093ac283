// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richdoc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/olegiv/blockcms/internal/sanitize"
)

// defaultHighlight is used for <mark> elements without a color.
const defaultHighlight = "#fff59d"

// Serialize renders doc as HTML. Layout attributes are written both as
// semantic data attributes and as inline styles, so Parse can rebuild the
// same tree from the output.
func Serialize(doc *Node) string {
	if doc == nil {
		return ""
	}
	doc = syncImageFlags(doc)
	var b strings.Builder
	for _, c := range doc.Content {
		writeBlock(&b, c)
	}
	return b.String()
}

func writeBlock(b *strings.Builder, n *Node) {
	switch n.Type {
	case TypeParagraph:
		writeOpen(b, "p", "style", textAlignStyle(n))
		writeInline(b, n.Content)
		b.WriteString("</p>")
	case TypeHeading:
		level, _ := n.AttrInt("level")
		tag := "h" + strconv.Itoa(max(1, min(level, 6)))
		writeOpen(b, tag, "style", textAlignStyle(n))
		writeInline(b, n.Content)
		b.WriteString("</" + tag + ">")
	case TypeCodeBlock:
		class := ""
		if lang := n.AttrString("language"); lang != "" {
			class = "language-" + lang
		}
		b.WriteString("<pre>")
		writeOpen(b, "code", "class", class)
		b.WriteString(html.EscapeString(n.TextContent()))
		b.WriteString("</code></pre>")
	case TypeBulletList, TypeOrderedList:
		tag, start := "ul", ""
		if n.Type == TypeOrderedList {
			tag = "ol"
			if s, ok := n.AttrInt("start"); ok && s > 1 {
				start = strconv.Itoa(s)
			}
		}
		writeOpen(b, tag, "start", start)
		for _, c := range n.Content {
			writeBlock(b, c)
		}
		b.WriteString("</" + tag + ">")
	case TypeListItem:
		b.WriteString("<li>")
		for _, c := range n.Content {
			writeBlock(b, c)
		}
		b.WriteString("</li>")
	case TypeBlockquote:
		b.WriteString("<blockquote>")
		for _, c := range n.Content {
			writeBlock(b, c)
		}
		b.WriteString("</blockquote>")
	case TypeHorizontalRule:
		b.WriteString("<hr>")
	case TypeTable:
		writeTable(b, n)
	default:
		if n.IsInline() {
			writeInline(b, []*Node{n})
		}
	}
}

func textAlignStyle(n *Node) string {
	switch a := n.AttrString(attrTextAlign); a {
	case "left", "center", "right", "justify":
		return "text-align: " + a
	}
	return ""
}

// writeInline writes inline content, keeping marks shared by neighbouring
// runs open across them.
func writeInline(b *strings.Builder, inline []*Node) {
	var open []Mark
	closeTo := func(depth int) {
		for len(open) > depth {
			_, end := markTags(open[len(open)-1])
			b.WriteString(end)
			open = open[:len(open)-1]
		}
	}
	for _, n := range inline {
		marks := sortMarks(n.Marks)
		keep := 0
		for keep < len(open) && keep < len(marks) && open[keep] == marks[keep] {
			keep++
		}
		closeTo(keep)
		for _, m := range marks[keep:] {
			start, _ := markTags(m)
			b.WriteString(start)
			open = append(open, m)
		}
		switch n.Type {
		case TypeText:
			b.WriteString(html.EscapeString(n.Text))
		case TypeHardBreak:
			b.WriteString("<br>")
		case TypeImage:
			writeImage(b, n)
		}
	}
	closeTo(0)
}

// markTags returns the opening and closing tags for m. Marks with an
// unusable value produce no tags.
func markTags(m Mark) (string, string) {
	switch m.Type {
	case MarkBold:
		return "<strong>", "</strong>"
	case MarkItalic:
		return "<em>", "</em>"
	case MarkUnderline:
		return "<u>", "</u>"
	case MarkStrike:
		return "<s>", "</s>"
	case MarkCode:
		return "<code>", "</code>"
	case MarkLink:
		if href := sanitize.URL(m.Value); href != "" {
			return `<a href="` + html.EscapeString(href) + `">`, "</a>"
		}
	case MarkHighlight:
		if c := sanitize.Color(m.Value); c != "" {
			return `<mark style="background-color: ` + html.EscapeString(c) + `">`, "</mark>"
		}
	case MarkColor:
		if c := sanitize.Color(m.Value); c != "" {
			return `<span style="color: ` + html.EscapeString(c) + `">`, "</span>"
		}
	}
	return "", ""
}

func writeImage(b *strings.Builder, n *Node) {
	a := ImageOf(n)
	src := sanitize.ImageURL(a.Src)
	if src == "" {
		return
	}
	attrs := []string{"src", src, "alt", a.Alt}
	if validAlign(a.Align) {
		attrs = append(attrs, "data-align", a.Align)
	}
	if a.Width != nil {
		attrs = append(attrs, "data-width", strconv.Itoa(*a.Width))
	}
	if a.WidthPx != nil {
		attrs = append(attrs, "data-width-px", strconv.Itoa(*a.WidthPx))
	}
	switch {
	case a.InTable && a.WidthPx != nil:
		attrs = append(attrs, "style", fmt.Sprintf("width: %dpx", *a.WidthPx))
	case !a.InTable && a.Width != nil:
		attrs = append(attrs, "style", fmt.Sprintf("width: %d%%", *a.Width))
	}
	writeOpen(b, "img", attrs...)
}

func writeTable(b *strings.Builder, n *Node) {
	var attrs []string
	if align := n.AttrString(attrAlign); validAlign(align) {
		left, right := TableMargins(align)
		attrs = append(attrs, "data-align", align, "style", "margin-left: "+left+"; margin-right: "+right)
	}
	writeOpen(b, "table", attrs...)
	b.WriteString("<tbody>")
	for _, row := range n.Content {
		var rowAttrs []string
		if h, ok := row.AttrInt(attrHeight); ok && h > 0 {
			rowAttrs = append(rowAttrs, "data-height", strconv.Itoa(h), "style", fmt.Sprintf("height: %dpx", h))
		}
		writeOpen(b, "tr", rowAttrs...)
		for _, cell := range row.Content {
			writeCell(b, cell)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
}

func writeCell(b *strings.Builder, cell *Node) {
	tag := "td"
	if cell.Type == TypeTableHeader {
		tag = "th"
	}
	colspan, rowspan := cellSpan(cell)
	var attrs []string
	if colspan > 1 {
		attrs = append(attrs, "colspan", strconv.Itoa(colspan))
	}
	if rowspan > 1 {
		attrs = append(attrs, "rowspan", strconv.Itoa(rowspan))
	}

	var style []string
	if ws, ok := intsOrNil(colwidths(cell)).([]int); ok {
		parts := make([]string, len(ws))
		total, complete := 0, true
		for i, w := range ws {
			parts[i] = strconv.Itoa(w)
			total += w
			complete = complete && w > 0
		}
		attrs = append(attrs, "colwidth", strings.Join(parts, ","))
		if complete {
			style = append(style, fmt.Sprintf("width: %dpx", total))
		}
	}
	if h, ok := cell.AttrInt(attrHeight); ok && h > 0 {
		attrs = append(attrs, "data-height", strconv.Itoa(h))
		style = append(style, fmt.Sprintf("height: %dpx", h))
	}
	if c := sanitize.Color(cell.AttrString(attrBackground)); c != "" {
		style = append(style, "background-color: "+c)
	}
	transparent := cell.AttrString(attrBorderMode) == BorderTransparent
	if transparent {
		attrs = append(attrs, "data-border-mode", BorderTransparent)
		style = append(style, "border-color: transparent")
	} else if c := sanitize.Color(cell.AttrString(attrBorderColor)); c != "" {
		style = append(style, "border-color: "+c)
	}
	if w, ok := cell.AttrInt(attrBorderWidth); ok && w > 0 {
		style = append(style, fmt.Sprintf("border-width: %dpx", w), "border-style: solid")
	}
	if a := textAlignStyle(cell); a != "" {
		style = append(style, a)
	}
	if len(style) > 0 {
		attrs = append(attrs, "style", strings.Join(style, "; "))
	}
	writeOpen(b, tag, attrs...)
	for _, c := range cell.Content {
		writeBlock(b, c)
	}
	b.WriteString("</" + tag + ">")
}

// writeOpen writes an opening tag. attrs alternate names and values;
// attributes with empty values are skipped except alt.
func writeOpen(b *strings.Builder, tag string, attrs ...string) {
	b.WriteString("<" + tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" && attrs[i] != "alt" {
			continue
		}
		b.WriteString(" " + attrs[i] + `="` + html.EscapeString(attrs[i+1]) + `"`)
	}
	b.WriteString(">")
}

// Parse builds a document from HTML. Unknown elements are unwrapped,
// script-like elements are dropped and stray inline content is wrapped in
// paragraphs.
func Parse(src string) (*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	blocks := parseBlocks(nodes)
	if len(blocks) == 0 {
		return Doc(), nil
	}
	return syncImageFlags(Doc(blocks...)), nil
}

var whitespace = regexp.MustCompile(`[ \t\n\r\f]+`)

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func intAttr(n *html.Node, key string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(attr(n, key)))
	return v, err == nil
}

// parseStyle splits an inline style into lowercased properties.
func parseStyle(s string) map[string]string {
	out := map[string]string{}
	for _, decl := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(prop))] = strings.TrimSpace(val)
	}
	return out
}

// parseLength reads "120px" or "50%" and reports the unit.
func parseLength(v string) (int, WidthUnit, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	unit := UnitPixel
	switch {
	case strings.HasSuffix(v, "px"):
		v = strings.TrimSuffix(v, "px")
	case strings.HasSuffix(v, "%"):
		v, unit = strings.TrimSuffix(v, "%"), UnitPercent
	default:
		return 0, "", false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f <= 0 {
		return 0, "", false
	}
	return int(f + 0.5), unit, true
}

func pixels(v string) (int, bool) {
	n, unit, ok := parseLength(v)
	return n, ok && unit == UnitPixel
}

var skipped = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Meta: true, atom.Link: true,
	atom.Title: true, atom.Noscript: true, atom.Template: true, atom.Iframe: true,
	atom.Object: true, atom.Embed: true, atom.Head: true,
}

func isBlockElement(n *html.Node) bool {
	switch n.DataAtom {
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Li, atom.Blockquote, atom.Pre, atom.Hr, atom.Table,
		atom.Div, atom.Figure, atom.Figcaption, atom.Section, atom.Article,
		atom.Header, atom.Footer, atom.Main, atom.Aside, atom.Nav,
		atom.Thead, atom.Tbody, atom.Tfoot, atom.Tr, atom.Td, atom.Th:
		return true
	}
	return false
}

// parseBlocks converts sibling HTML nodes into block nodes.
func parseBlocks(nodes []*html.Node) []*Node {
	var out, inline []*Node
	flush := func() {
		if content := finishInline(inline); len(content) > 0 {
			out = append(out, Paragraph(content...))
		}
		inline = nil
	}
	for _, n := range nodes {
		switch {
		case n.Type == html.TextNode:
			inline = append(inline, parseInline(n, nil)...)
		case n.Type != html.ElementNode || skipped[n.DataAtom]:
		case isBlockElement(n):
			flush()
			out = append(out, parseBlock(n)...)
		default:
			inline = append(inline, parseInline(n, nil)...)
		}
	}
	flush()
	return out
}

func parseBlock(n *html.Node) []*Node {
	switch n.DataAtom {
	case atom.P:
		return []*Node{textblock(Paragraph(), n)}
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		return []*Node{textblock(Heading(level), n)}
	case atom.Pre:
		code := &Node{Type: TypeCodeBlock}
		for _, c := range children(n) {
			if c.DataAtom == atom.Code {
				if lang, ok := strings.CutPrefix(attr(c, "class"), "language-"); ok && lang != "" {
					code.Attrs = Attrs{"language": lang}
				}
			}
		}
		if text := rawText(n); text != "" {
			code.Content = []*Node{Text(text)}
		}
		return []*Node{code}
	case atom.Ul, atom.Ol:
		return []*Node{parseList(n)}
	case atom.Blockquote:
		return []*Node{Block(TypeBlockquote, orEmpty(parseBlocks(children(n)))...)}
	case atom.Hr:
		return []*Node{{Type: TypeHorizontalRule}}
	case atom.Table:
		if t := parseTable(n); t != nil {
			return []*Node{t}
		}
		return nil
	}
	return parseBlocks(children(n))
}

func orEmpty(blocks []*Node) []*Node {
	if len(blocks) == 0 {
		return []*Node{Paragraph()}
	}
	return blocks
}

func textblock(block *Node, n *html.Node) *Node {
	var inline []*Node
	for _, c := range children(n) {
		inline = append(inline, parseInline(c, nil)...)
	}
	block.Content = finishInline(inline)
	switch a := strings.ToLower(parseStyle(attr(n, "style"))["text-align"]); a {
	case "left", "center", "right", "justify":
		block = block.withAttrs(Attrs{attrTextAlign: a})
	}
	return block
}

func rawText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.DataAtom == atom.Br {
		return "\n"
	}
	var b strings.Builder
	for _, c := range children(n) {
		b.WriteString(rawText(c))
	}
	return b.String()
}

func parseList(n *html.Node) *Node {
	t := TypeBulletList
	if n.DataAtom == atom.Ol {
		t = TypeOrderedList
	}
	list := &Node{Type: t}
	if start, ok := intAttr(n, "start"); ok && start > 1 && t == TypeOrderedList {
		list.Attrs = Attrs{"start": start}
	}
	var stray []*html.Node
	flushStray := func() {
		if blocks := parseBlocks(stray); len(blocks) > 0 {
			list.Content = append(list.Content, Block(TypeListItem, blocks...))
		}
		stray = nil
	}
	for _, c := range children(n) {
		if c.Type == html.ElementNode && c.DataAtom == atom.Li {
			flushStray()
			list.Content = append(list.Content, Block(TypeListItem, orEmpty(parseBlocks(children(c)))...))
			continue
		}
		stray = append(stray, c)
	}
	flushStray()
	if len(list.Content) == 0 {
		list.Content = []*Node{Block(TypeListItem, Paragraph())}
	}
	return list
}

// parseInline converts an HTML node in inline context, adding the marks
// its element implies.
func parseInline(n *html.Node, marks []Mark) []*Node {
	switch n.Type {
	case html.TextNode:
		text := whitespace.ReplaceAllString(n.Data, " ")
		if text == "" {
			return nil
		}
		return []*Node{Text(text, marks...)}
	case html.ElementNode:
	default:
		return nil
	}
	if skipped[n.DataAtom] {
		return nil
	}
	switch n.DataAtom {
	case atom.Br:
		return []*Node{{Type: TypeHardBreak}}
	case atom.Img:
		if img := parseImage(n); img != nil {
			return []*Node{img}
		}
		return nil
	}

	marks = addMarks(n, marks)
	var out []*Node
	for _, c := range children(n) {
		out = append(out, parseInline(c, marks)...)
	}
	return out
}

func addMarks(n *html.Node, marks []Mark) []Mark {
	add := func(m Mark) { marks = addMark(marks, m) }
	style := parseStyle(attr(n, "style"))
	switch n.DataAtom {
	case atom.Strong, atom.B:
		add(Mark{Type: MarkBold})
	case atom.Em, atom.I:
		add(Mark{Type: MarkItalic})
	case atom.U:
		add(Mark{Type: MarkUnderline})
	case atom.S, atom.Strike, atom.Del:
		add(Mark{Type: MarkStrike})
	case atom.Code:
		add(Mark{Type: MarkCode})
	case atom.A:
		if href := sanitize.URL(attr(n, "href")); href != "" {
			add(Mark{Type: MarkLink, Value: href})
		}
	case atom.Mark:
		c := sanitize.Color(style["background-color"])
		if c == "" {
			c = defaultHighlight
		}
		add(Mark{Type: MarkHighlight, Value: c})
		return marks
	}
	if c := sanitize.Color(style["color"]); c != "" {
		add(Mark{Type: MarkColor, Value: c})
	}
	if n.DataAtom == atom.Span {
		if c := sanitize.Color(style["background-color"]); c != "" {
			add(Mark{Type: MarkHighlight, Value: c})
		}
	}
	return marks
}

// finishInline trims whitespace at the edges of a textblock and merges
// runs.
func finishInline(inline []*Node) []*Node {
	inline = normalizeInline(inline)
	if len(inline) == 0 {
		return nil
	}
	trim := func(i int, fn func(string) string) {
		if n := inline[i]; n.Type == TypeText {
			c := n.copyNode()
			c.Text = fn(n.Text)
			inline[i] = c
		}
	}
	trim(0, func(s string) string { return strings.TrimLeft(s, " ") })
	trim(len(inline)-1, func(s string) string { return strings.TrimRight(s, " ") })
	return normalizeInline(inline)
}

func parseImage(n *html.Node) *Node {
	src := sanitize.ImageURL(attr(n, "src"))
	if src == "" {
		return nil
	}
	img := NewImage(src, attr(n, "alt"))
	patch := Attrs{attrWidth: nil}
	if a := strings.ToLower(attr(n, "data-align")); validAlign(a) {
		patch[attrAlign] = a
	}
	styleWidth, unit, hasStyle := parseLength(parseStyle(attr(n, "style"))["width"])

	if w, ok := intAttr(n, "data-width"); ok && w > 0 {
		patch[attrWidth] = max(MinImagePercent, min(w, MaxImagePercent))
	} else if hasStyle && unit == UnitPercent {
		patch[attrWidth] = max(MinImagePercent, min(styleWidth, MaxImagePercent))
	}
	if w, ok := intAttr(n, "data-width-px"); ok && w > 0 {
		patch[attrWidthPx] = max(MinImagePx, min(w, MaxImagePx))
	} else if hasStyle && unit == UnitPixel {
		patch[attrWidthPx] = max(MinImagePx, min(styleWidth, MaxImagePx))
	} else if w, ok := intAttr(n, "width"); ok && w > 0 {
		patch[attrWidthPx] = max(MinImagePx, min(w, MaxImagePx))
	}
	return img.withAttrs(patch)
}

func parseTable(n *html.Node) *Node {
	table := &Node{Type: TypeTable}
	style := parseStyle(attr(n, "style"))
	align := strings.ToLower(attr(n, "data-align"))
	if !validAlign(align) {
		align = alignFromMargins(style["margin-left"], style["margin-right"])
	}
	if align != "" {
		table.Attrs = Attrs{attrAlign: align}
	}
	for _, tr := range tableRows(n) {
		if row := parseRow(tr); row != nil {
			table.Content = append(table.Content, row)
		}
	}
	if len(table.Content) == 0 {
		return nil
	}
	return padTable(table)
}

func alignFromMargins(left, right string) string {
	left, right = strings.ToLower(left), strings.ToLower(right)
	isZero := func(s string) bool { return s == "0" || s == "0px" }
	switch {
	case left == "auto" && right == "auto":
		return "center"
	case left == "auto" && isZero(right):
		return "right"
	case isZero(left) && right == "auto":
		return "left"
	}
	return ""
}

// tableRows collects the rows of a table in document order without
// descending into nested tables.
func tableRows(n *html.Node) []*html.Node {
	var rows []*html.Node
	for _, c := range children(n) {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Tr:
			rows = append(rows, c)
		case atom.Thead, atom.Tbody, atom.Tfoot:
			rows = append(rows, tableRows(c)...)
		}
	}
	return rows
}

func parseRow(tr *html.Node) *Node {
	row := &Node{Type: TypeTableRow}
	h, ok := intAttr(tr, "data-height")
	if !ok {
		h, ok = pixels(parseStyle(attr(tr, "style"))["height"])
	}
	if ok && h > 0 {
		row.Attrs = Attrs{attrHeight: max(MinRowHeight, min(h, MaxRowHeight))}
	}
	for _, c := range children(tr) {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			row.Content = append(row.Content, parseCell(c))
		}
	}
	if len(row.Content) == 0 {
		return nil
	}
	return row
}

func parseCell(n *html.Node) *Node {
	cell := &Node{Type: TypeTableCell, Attrs: Attrs{}}
	if n.DataAtom == atom.Th {
		cell.Type = TypeTableHeader
	}
	colspan := 1
	if v, ok := intAttr(n, "colspan"); ok && v > 1 {
		colspan = min(v, MaxTableCols)
		cell.Attrs[attrColspan] = colspan
	}
	if v, ok := intAttr(n, "rowspan"); ok && v > 1 {
		cell.Attrs[attrRowspan] = min(v, MaxTableRows)
	}
	style := parseStyle(attr(n, "style"))

	if ws := parseColwidth(attr(n, "colwidth")); ws != nil {
		cell.Attrs[attrColwidth] = ws
	} else if w, ok := pixels(style["width"]); ok && colspan == 1 {
		cell.Attrs[attrColwidth] = []int{max(MinColumnWidth, min(w, MaxColumnWidth))}
	}
	h, ok := intAttr(n, "data-height")
	if !ok {
		h, ok = pixels(style["height"])
	}
	if ok && h > 0 {
		cell.Attrs[attrHeight] = max(MinRowHeight, min(h, MaxRowHeight))
	}
	if c := sanitize.Color(style["background-color"]); c != "" {
		cell.Attrs[attrBackground] = c
	}
	if strings.EqualFold(attr(n, "data-border-mode"), BorderTransparent) {
		cell.Attrs[attrBorderMode] = BorderTransparent
	} else if c := sanitize.Color(style["border-color"]); c != "" {
		cell.Attrs[attrBorderColor] = c
	}
	if w, ok := pixels(style["border-width"]); ok {
		cell.Attrs[attrBorderWidth] = max(MinBorderWidth, min(w, MaxBorderWidth))
	}
	switch a := strings.ToLower(style["text-align"]); a {
	case "left", "center", "right", "justify":
		cell.Attrs[attrTextAlign] = a
	}
	if len(cell.Attrs) == 0 {
		cell.Attrs = nil
	}
	cell.Content = orEmpty(parseBlocks(children(n)))
	return cell
}

func parseColwidth(v string) []int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		w, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil
		}
		if w > 0 {
			w = max(MinColumnWidth, min(w, MaxColumnWidth))
		}
		out = append(out, max(0, w))
	}
	if intsOrNil(out) == nil {
		return nil
	}
	return out
}

// padTable appends empty cells to rows that end short of the table width.
func padTable(table *Node) *Node {
	m := BuildTableMap(table)
	rows := table.Content
	var padded []*Node
	for r, row := range rows {
		missing := 0
		for c := m.Width - 1; c >= 0; c-- {
			if _, ok := m.CellAt(r, c); ok {
				break
			}
			missing++
		}
		if missing == 0 {
			padded = append(padded, row)
			continue
		}
		cells := append([]*Node(nil), row.Content...)
		for range missing {
			cells = append(cells, newCell(TypeTableCell))
		}
		padded = append(padded, row.withContent(cells))
	}
	return table.withContent(padded)
}
