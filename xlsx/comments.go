package xlsx

import (
	"archive/zip"
	"fmt"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"xlc/document"
)

// Cell note geometry in points. Legacy drawing anchors are expressed in
// column/row spans over these averages, with remainders in 256ths.
const (
	defaultCommentWidth  = 96.0
	defaultCommentHeight = 55.5
	avgColWidthPt        = 48.0
	avgRowHeightPt       = 15.0
)

// writeComments emits both comment parts for one sheet: the comments XML
// with authors and rich text, and the legacy VML drawing that carries shape
// placement. Strict readers require both or the notes stay invisible.
func (s *saver) writeComments(zw *zip.Writer, ws *document.Worksheet, n int) error {
	comments := orderedComments(ws)

	doc := newPartDoc()
	root := doc.CreateElement("comments")
	root.CreateAttr("xmlns", nsMain)

	var authorList []string
	authorIdx := make(map[string]int)
	for _, c := range comments {
		if _, ok := authorIdx[c.Author]; !ok {
			authorIdx[c.Author] = len(authorList)
			authorList = append(authorList, c.Author)
		}
	}
	authors := root.CreateElement("authors")
	for _, a := range authorList {
		authors.CreateElement("author").SetText(a)
	}

	list := root.CreateElement("commentList")
	for _, c := range comments {
		el := list.CreateElement("comment")
		el.CreateAttr("ref", c.Ref)
		el.CreateAttr("authorId", fmt.Sprintf("%d", authorIdx[c.Author]))
		el.CreateAttr("shapeId", "0")
		text := el.CreateElement("text")
		if c.Author != "" {
			run := text.CreateElement("r")
			pr := run.CreateElement("rPr")
			pr.CreateElement("b")
			appendRunProps(pr)
			run.CreateElement("t").SetText(c.Author + ":")
		}
		run := text.CreateElement("r")
		appendRunProps(run.CreateElement("rPr"))
		t := run.CreateElement("t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(c.Text)
	}

	if err := writeXMLToZip(zw, fmt.Sprintf("xl/comments%d.xml", n), doc); err != nil {
		return err
	}
	return writeDataToZip(zw, fmt.Sprintf("xl/drawings/vmlDrawing%d.vml", n), buildVMLDrawing(comments))
}

func appendRunProps(pr *etree.Element) {
	pr.CreateElement("sz").CreateAttr("val", "9")
	pr.CreateElement("color").CreateAttr("indexed", "81")
	pr.CreateElement("rFont").CreateAttr("val", "Tahoma")
	pr.CreateElement("family").CreateAttr("val", "2")
}

func orderedComments(ws *document.Worksheet) []*document.Comment {
	out := make([]*document.Comment, len(ws.Comments))
	copy(out, ws.Comments)
	sort.SliceStable(out, func(i, j int) bool {
		ri, ci, _ := document.ParseRef(out[i].Ref)
		rj, cj, _ := document.ParseRef(out[j].Ref)
		if ri != rj {
			return ri < rj
		}
		return ci < cj
	})
	return out
}

// buildVMLDrawing renders the legacy drawing part as text. The shape markup
// predates OPC and does not survive a round trip through an XML writer, so
// it is assembled directly.
func buildVMLDrawing(comments []*document.Comment) []byte {
	var b strings.Builder
	b.WriteString("<xml xmlns:v=\"urn:schemas-microsoft-com:vml\"\n")
	b.WriteString(" xmlns:o=\"urn:schemas-microsoft-com:office:office\"\n")
	b.WriteString(" xmlns:x=\"urn:schemas-microsoft-com:office:excel\">\n")
	b.WriteString(" <o:shapelayout v:ext=\"edit\">\n")
	b.WriteString("  <o:idmap v:ext=\"edit\" data=\"1\"/>\n")
	b.WriteString(" </o:shapelayout>\n")
	b.WriteString(" <v:shapetype id=\"_x0000_t202\" coordsize=\"21600,21600\" o:spt=\"202\"\n")
	b.WriteString("  path=\"m,l,21600r21600,l21600,xe\">\n")
	b.WriteString("  <v:stroke joinstyle=\"miter\"/>\n")
	b.WriteString("  <v:path gradientshapeok=\"t\" o:connecttype=\"rect\"/>\n")
	b.WriteString(" </v:shapetype>\n")

	shapeID := 1025
	for _, c := range comments {
		row, col, err := document.ParseRef(c.Ref)
		if err != nil {
			continue
		}
		w, h := c.Width, c.Height
		if w <= 0 {
			w = defaultCommentWidth
		}
		if h <= 0 {
			h = defaultCommentHeight
		}
		fmt.Fprintf(&b, " <v:shape id=\"_x0000_s%d\" type=\"#_x0000_t202\"\n", shapeID)
		fmt.Fprintf(&b, "  style=\"position:absolute;margin-left:59.25pt;margin-top:1.5pt;width:%gpt;height:%gpt;z-index:%d;visibility:hidden\"\n", w, h, shapeID-1024)
		b.WriteString("  fillcolor=\"infoBackground [80]\" strokecolor=\"none [81]\"\n")
		b.WriteString("  o:insetmode=\"auto\">\n")
		b.WriteString("  <v:fill color2=\"infoBackground [80]\"/>\n")
		b.WriteString("  <v:shadow color=\"none [81]\"/>\n")
		b.WriteString("  <v:textbox>\n")
		b.WriteString("   <div style=\"text-align:left\"></div>\n")
		b.WriteString("  </v:textbox>\n")
		b.WriteString("  <x:ClientData ObjectType=\"Note\">\n")
		b.WriteString("   <x:MoveWithCells/>\n")
		b.WriteString("   <x:SizeWithCells/>\n")
		fmt.Fprintf(&b, "   <x:Anchor>%s</x:Anchor>\n", anchorFor(row, col, w, h))
		fmt.Fprintf(&b, "   <x:Row>%d</x:Row>\n", row-1)
		fmt.Fprintf(&b, "   <x:Column>%d</x:Column>\n", col-1)
		b.WriteString("  </x:ClientData>\n")
		b.WriteString(" </v:shape>\n")
		shapeID++
	}
	b.WriteString("</xml>\n")
	return []byte(b.String())
}

// anchorFor produces the eight anchor values: colStart, xOffset, rowStart,
// yOffset, colEnd, xOffsetEnd, rowEnd, yOffsetEnd. The note box is anchored
// two rows above its cell, spanning per the average column and row sizes.
func anchorFor(row, col int, width, height float64) string {
	colSpan := int(width / avgColWidthPt)
	rowSpan := int(height / avgRowHeightPt)
	xOffEnd := int(remainderFrac(width, avgColWidthPt) * 256)
	yOffEnd := int(remainderFrac(height, avgRowHeightPt) * 256)

	colStart := col - 1
	rowStart := row - 3
	if rowStart < 0 {
		rowStart = 0
	}
	return fmt.Sprintf("%d, 12, %d, 4, %d, %d, %d, %d",
		colStart, rowStart, colStart+colSpan, xOffEnd, rowStart+rowSpan, yOffEnd)
}

func remainderFrac(v, unit float64) float64 {
	whole := float64(int(v / unit))
	return (v - whole*unit) / unit
}

// parseComments restores notes from a comments part. Rich text runs are
// concatenated and the conventional author prefix is stripped back off.
func parseComments(data []byte, ws *document.Worksheet) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return fmt.Errorf("malformed comments part: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil
	}

	var authors []string
	if el := root.SelectElement("authors"); el != nil {
		for _, a := range el.SelectElements("author") {
			authors = append(authors, a.Text())
		}
	}
	list := root.SelectElement("commentList")
	if list == nil {
		return nil
	}
	for _, el := range list.SelectElements("comment") {
		ref := el.SelectAttrValue("ref", "")
		if ref == "" {
			continue
		}
		author := ""
		if i := atoiDefault(el.SelectAttrValue("authorId", "0"), 0); i >= 0 && i < len(authors) {
			author = authors[i]
		}
		var text strings.Builder
		if t := el.SelectElement("text"); t != nil {
			for _, run := range t.SelectElements("r") {
				if tt := run.SelectElement("t"); tt != nil {
					text.WriteString(tt.Text())
				}
			}
			if tt := t.SelectElement("t"); tt != nil {
				text.WriteString(tt.Text())
			}
		}
		body := text.String()
		if author != "" && strings.HasPrefix(body, author+":") {
			body = strings.TrimLeft(body[len(author)+1:], " \n")
		}
		if err := ws.SetComment(ref, body, author); err != nil {
			return err
		}
	}
	return nil
}

// parseVMLSizes recovers note box sizes from the legacy drawing anchors.
func parseVMLSizes(data []byte, ws *document.Worksheet) {
	text := string(data)
	for {
		start := strings.Index(text, "<x:ClientData")
		if start < 0 {
			return
		}
		end := strings.Index(text[start:], "</x:ClientData>")
		if end < 0 {
			return
		}
		block := text[start : start+end]
		text = text[start+end:]

		anchor := extractTag(block, "x:Anchor")
		rowStr := extractTag(block, "x:Row")
		colStr := extractTag(block, "x:Column")
		if anchor == "" || rowStr == "" || colStr == "" {
			continue
		}
		row := atoiDefault(rowStr, -1) + 1
		col := atoiDefault(colStr, -1) + 1
		if row < 1 || col < 1 {
			continue
		}

		parts := strings.Split(anchor, ",")
		if len(parts) != 8 {
			continue
		}
		vals := make([]int, 8)
		ok := true
		for i, p := range parts {
			v := atoiDefault(strings.TrimSpace(p), -1)
			if v < 0 {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		width := float64(vals[4]-vals[0])*avgColWidthPt + float64(vals[5])/256*avgColWidthPt
		height := float64(vals[6]-vals[2])*avgRowHeightPt + float64(vals[7])/256*avgRowHeightPt

		ref, err := document.FormatRef(row, col)
		if err != nil {
			continue
		}
		for _, c := range ws.Comments {
			if c.Ref == ref {
				c.Width, c.Height = width, height
				break
			}
		}
	}
}

func extractTag(s, tag string) string {
	open, close := "<"+tag+">", "</"+tag+">"
	i := strings.Index(s, open)
	if i < 0 {
		return ""
	}
	j := strings.Index(s[i+len(open):], close)
	if j < 0 {
		return ""
	}
	return strings.TrimSpace(s[i+len(open) : i+len(open)+j])
}
