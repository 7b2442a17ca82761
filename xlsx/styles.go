package xlsx

import (
	"sort"
	"strconv"

	"github.com/beevik/etree"

	"xlc/document"
)

// cellStyleKey identifies one cellXfs entry by its component table indices.
type cellStyleKey struct {
	font   int
	fill   int
	border int
	numFmt int
	align  int
	prot   int
}

// dxfRecord is a differential format referenced by conditional formatting.
type dxfRecord struct {
	font *document.Font
	fill *document.Fill
}

// styleSheet is the per-workbook style interning engine. Every component
// table is an append-only arena paired with a map from the comparable record
// to its position, so repeated interning of equal records is a single lookup.
// Index 0 of each table is the reserved default; cellXf 0 is the implicit
// default style and is never stored in xfs.
type styleSheet struct {
	fonts     []document.Font
	fontIdx   map[document.Font]int
	fills     []document.Fill
	fillIdx   map[document.Fill]int
	borders   []document.Borders
	borderIdx map[document.Borders]int
	aligns    []document.Alignment
	alignIdx  map[document.Alignment]int
	prots     []document.Protection
	protIdx   map[document.Protection]int

	numFmts   map[int]string // custom id -> code
	numFmtIdx map[string]int // custom code -> id

	xfs   []cellStyleKey // position i holds cellXf i+1
	xfIdx map[cellStyleKey]int

	dxfs []dxfRecord

	// load side: cellXf position -> resolved style
	loaded []document.Style
}

func newStyleSheet() *styleSheet {
	ss := &styleSheet{
		fontIdx:   make(map[document.Font]int),
		fillIdx:   make(map[document.Fill]int),
		borderIdx: make(map[document.Borders]int),
		alignIdx:  make(map[document.Alignment]int),
		protIdx:   make(map[document.Protection]int),
		numFmts:   make(map[int]string),
		numFmtIdx: make(map[string]int),
		xfIdx:     make(map[cellStyleKey]int),
	}
	ss.internFont(document.DefaultFont())
	ss.internFill(document.DefaultFill())
	ss.internFill(document.Gray125Fill())
	ss.internBorders(document.DefaultBorders())
	ss.internAlignment(document.DefaultAlignment())
	ss.internProtection(document.DefaultProtection())
	return ss
}

func (ss *styleSheet) internFont(f document.Font) int {
	if idx, ok := ss.fontIdx[f]; ok {
		return idx
	}
	idx := len(ss.fonts)
	ss.fonts = append(ss.fonts, f)
	ss.fontIdx[f] = idx
	return idx
}

func (ss *styleSheet) internFill(f document.Fill) int {
	if idx, ok := ss.fillIdx[f]; ok {
		return idx
	}
	idx := len(ss.fills)
	ss.fills = append(ss.fills, f)
	ss.fillIdx[f] = idx
	return idx
}

func (ss *styleSheet) internBorders(b document.Borders) int {
	if idx, ok := ss.borderIdx[b]; ok {
		return idx
	}
	idx := len(ss.borders)
	ss.borders = append(ss.borders, b)
	ss.borderIdx[b] = idx
	return idx
}

func (ss *styleSheet) internAlignment(a document.Alignment) int {
	if idx, ok := ss.alignIdx[a]; ok {
		return idx
	}
	idx := len(ss.aligns)
	ss.aligns = append(ss.aligns, a)
	ss.alignIdx[a] = idx
	return idx
}

func (ss *styleSheet) internProtection(p document.Protection) int {
	if idx, ok := ss.protIdx[p]; ok {
		return idx
	}
	idx := len(ss.prots)
	ss.prots = append(ss.prots, p)
	ss.protIdx[p] = idx
	return idx
}

// internNumberFormat maps a format code to its id: builtin codes resolve to
// their fixed ids, custom codes mint sequential ids from the custom base.
func (ss *styleSheet) internNumberFormat(code string) int {
	if id, ok := document.LookupBuiltinFormat(code); ok {
		return id
	}
	if id, ok := ss.numFmtIdx[code]; ok {
		return id
	}
	id := document.CustomNumFmtBase + len(ss.numFmts)
	ss.numFmts[id] = code
	ss.numFmtIdx[code] = id
	return id
}

// internStyle resolves a full style to its cellXf index. The all-default
// style short-circuits to the reserved xf 0.
func (ss *styleSheet) internStyle(st document.Style) int {
	key := cellStyleKey{
		font:   ss.internFont(st.Font),
		fill:   ss.internFill(st.Fill),
		border: ss.internBorders(st.Borders),
		numFmt: ss.internNumberFormat(st.NumberFormat),
		align:  ss.internAlignment(st.Alignment),
		prot:   ss.internProtection(st.Protection),
	}
	if key == (cellStyleKey{}) {
		return 0
	}
	if idx, ok := ss.xfIdx[key]; ok {
		return idx
	}
	idx := len(ss.xfs) + 1
	ss.xfs = append(ss.xfs, key)
	ss.xfIdx[key] = idx
	return idx
}

// internDxf registers the differential format of a conditional rule and
// returns its dxfId.
func (ss *styleSheet) internDxf(font *document.Font, fill *document.Fill) int {
	id := len(ss.dxfs)
	ss.dxfs = append(ss.dxfs, dxfRecord{font: font, fill: fill})
	return id
}

// resolveNumberFormat maps an id back to its code, falling back through the
// builtin table for anything unknown.
func (ss *styleSheet) resolveNumberFormat(id int) string {
	if code, ok := ss.numFmts[id]; ok {
		return code
	}
	return document.BuiltinFormatCode(id)
}

// styleAt resolves a loaded cellXf position into a full style. Index 0 and
// anything out of range are the default style.
func (ss *styleSheet) styleAt(idx int) document.Style {
	if idx <= 0 || idx > len(ss.loaded) {
		return document.DefaultStyle()
	}
	return ss.loaded[idx-1]
}

func (ss *styleSheet) buildDoc() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("styleSheet")
	root.CreateAttr("xmlns", nsMain)

	numFmts := root.CreateElement("numFmts")
	numFmts.CreateAttr("count", strconv.Itoa(len(ss.numFmts)))
	ids := make([]int, 0, len(ss.numFmts))
	for id := range ss.numFmts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		nf := numFmts.CreateElement("numFmt")
		nf.CreateAttr("numFmtId", strconv.Itoa(id))
		nf.CreateAttr("formatCode", ss.numFmts[id])
	}

	fonts := root.CreateElement("fonts")
	fonts.CreateAttr("count", strconv.Itoa(len(ss.fonts)))
	for _, f := range ss.fonts {
		appendFontXML(fonts, f)
	}

	fills := root.CreateElement("fills")
	fills.CreateAttr("count", strconv.Itoa(len(ss.fills)))
	for _, f := range ss.fills {
		appendFillXML(fills, f)
	}

	borders := root.CreateElement("borders")
	borders.CreateAttr("count", strconv.Itoa(len(ss.borders)))
	for _, b := range ss.borders {
		appendBorderXML(borders, b)
	}

	cellXfs := root.CreateElement("cellXfs")
	cellXfs.CreateAttr("count", strconv.Itoa(len(ss.xfs)+1))
	def := cellXfs.CreateElement("xf")
	def.CreateAttr("numFmtId", "0")
	def.CreateAttr("fontId", "0")
	def.CreateAttr("fillId", "0")
	def.CreateAttr("borderId", "0")
	def.CreateAttr("xfId", "0")
	for _, key := range ss.xfs {
		xf := cellXfs.CreateElement("xf")
		xf.CreateAttr("numFmtId", strconv.Itoa(key.numFmt))
		xf.CreateAttr("fontId", strconv.Itoa(key.font))
		xf.CreateAttr("fillId", strconv.Itoa(key.fill))
		xf.CreateAttr("borderId", strconv.Itoa(key.border))
		xf.CreateAttr("xfId", "0")
		if key.numFmt != 0 {
			xf.CreateAttr("applyNumberFormat", "1")
		}
		if key.prot != 0 {
			xf.CreateAttr("applyProtection", "1")
		}
		if key.align > 0 {
			appendAlignmentXML(xf, ss.aligns[key.align])
		}
		if key.prot > 0 {
			appendProtectionXML(xf, ss.prots[key.prot])
		}
	}

	dxfs := root.CreateElement("dxfs")
	dxfs.CreateAttr("count", strconv.Itoa(len(ss.dxfs)))
	for _, d := range ss.dxfs {
		appendDxfXML(dxfs, d)
	}
	return doc
}

func appendFontXML(parent *etree.Element, f document.Font) {
	font := parent.CreateElement("font")
	if f.Bold {
		font.CreateElement("b")
	}
	if f.Italic {
		font.CreateElement("i")
	}
	if f.Underline {
		font.CreateElement("u")
	}
	if f.Strikethrough {
		font.CreateElement("strike")
	}
	font.CreateElement("sz").CreateAttr("val", formatFloat(f.Size))
	font.CreateElement("color").CreateAttr("rgb", f.Color)
	font.CreateElement("name").CreateAttr("val", f.Name)
}

func appendFillXML(parent *etree.Element, f document.Fill) {
	pf := parent.CreateElement("fill").CreateElement("patternFill")
	pf.CreateAttr("patternType", f.Pattern)
	if f.Pattern != "none" && f.Pattern != "gray125" {
		pf.CreateElement("fgColor").CreateAttr("rgb", f.ForegroundColor)
		pf.CreateElement("bgColor").CreateAttr("rgb", f.BackgroundColor)
	}
}

func appendBorderXML(parent *etree.Element, b document.Borders) {
	border := parent.CreateElement("border")
	for _, side := range []struct {
		name string
		edge document.BorderEdge
	}{
		{"left", b.Left}, {"right", b.Right}, {"top", b.Top}, {"bottom", b.Bottom},
	} {
		if side.edge.Style == "none" {
			continue
		}
		el := border.CreateElement(side.name)
		el.CreateAttr("style", side.edge.Style)
		el.CreateElement("color").CreateAttr("rgb", side.edge.Color)
	}
}

func appendAlignmentXML(parent *etree.Element, a document.Alignment) {
	al := parent.CreateElement("alignment")
	if a.Horizontal != "general" {
		al.CreateAttr("horizontal", a.Horizontal)
	}
	if a.Vertical != "bottom" {
		al.CreateAttr("vertical", a.Vertical)
	}
	if a.WrapText {
		al.CreateAttr("wrapText", "1")
	}
	if a.Indent != 0 {
		al.CreateAttr("indent", strconv.Itoa(a.Indent))
	}
	if a.TextRotation != 0 {
		al.CreateAttr("textRotation", strconv.Itoa(a.TextRotation))
	}
	if a.ShrinkToFit {
		al.CreateAttr("shrinkToFit", "1")
	}
	if a.ReadingOrder != 0 {
		al.CreateAttr("readingOrder", strconv.Itoa(a.ReadingOrder))
	}
}

func appendProtectionXML(parent *etree.Element, p document.Protection) {
	if p.Locked && !p.Hidden {
		return
	}
	el := parent.CreateElement("protection")
	if !p.Locked {
		el.CreateAttr("locked", "0")
	}
	if p.Hidden {
		el.CreateAttr("hidden", "1")
	}
}

func appendDxfXML(parent *etree.Element, d dxfRecord) {
	dxf := parent.CreateElement("dxf")
	if d.font != nil {
		font := dxf.CreateElement("font")
		if d.font.Bold {
			font.CreateElement("b").CreateAttr("val", "1")
		}
		if d.font.Italic {
			font.CreateElement("i").CreateAttr("val", "1")
		}
		if d.font.Underline {
			font.CreateElement("u")
		}
		if d.font.Strikethrough {
			font.CreateElement("strike")
		}
		if d.font.Color != "" {
			font.CreateElement("color").CreateAttr("rgb", d.font.Color)
		}
	}
	if d.fill != nil {
		pf := dxf.CreateElement("fill").CreateElement("patternFill")
		pattern := d.fill.Pattern
		if pattern == "" {
			pattern = "solid"
		}
		pf.CreateAttr("patternType", pattern)
		if d.fill.ForegroundColor != "" {
			pf.CreateElement("fgColor").CreateAttr("rgb", d.fill.ForegroundColor)
		}
		if d.fill.BackgroundColor != "" {
			pf.CreateElement("bgColor").CreateAttr("rgb", d.fill.BackgroundColor)
		}
	}
}

// parseStyles reconstructs the component tables and the xf resolution array
// from a styles part. Broken indices never fail the load: anything out of
// range collapses to the record default.
func parseStyles(doc *etree.Document) *styleSheet {
	ss := newStyleSheet()
	root := doc.Root()
	if root == nil {
		return ss
	}

	if numFmts := root.SelectElement("numFmts"); numFmts != nil {
		for _, nf := range numFmts.SelectElements("numFmt") {
			id, err := strconv.Atoi(nf.SelectAttrValue("numFmtId", ""))
			if err != nil {
				continue
			}
			code := nf.SelectAttrValue("formatCode", "General")
			if id >= document.CustomNumFmtBase {
				ss.numFmts[id] = code
				ss.numFmtIdx[code] = id
			}
		}
	}

	var fonts []document.Font
	if el := root.SelectElement("fonts"); el != nil {
		for _, f := range el.SelectElements("font") {
			fonts = append(fonts, parseFont(f))
		}
	}
	var fills []document.Fill
	if el := root.SelectElement("fills"); el != nil {
		for _, f := range el.SelectElements("fill") {
			fills = append(fills, parseFill(f))
		}
	}
	var borders []document.Borders
	if el := root.SelectElement("borders"); el != nil {
		for _, b := range el.SelectElements("border") {
			borders = append(borders, parseBorders(b))
		}
	}

	fontAt := func(i int) document.Font {
		if i < 0 || i >= len(fonts) {
			return document.DefaultFont()
		}
		return fonts[i]
	}
	fillAt := func(i int) document.Fill {
		if i < 0 || i >= len(fills) {
			return document.DefaultFill()
		}
		return fills[i]
	}
	borderAt := func(i int) document.Borders {
		if i < 0 || i >= len(borders) {
			return document.DefaultBorders()
		}
		return borders[i]
	}

	cellXfs := root.SelectElement("cellXfs")
	if cellXfs == nil {
		return ss
	}
	xfEls := cellXfs.SelectElements("xf")
	for i, xf := range xfEls {
		if i == 0 {
			// reserved default
			continue
		}
		st := document.DefaultStyle()
		st.Font = fontAt(atoiDefault(xf.SelectAttrValue("fontId", "0"), 0))
		st.Fill = fillAt(atoiDefault(xf.SelectAttrValue("fillId", "0"), 0))
		st.Borders = borderAt(atoiDefault(xf.SelectAttrValue("borderId", "0"), 0))
		st.NumberFormat = ss.resolveNumberFormat(atoiDefault(xf.SelectAttrValue("numFmtId", "0"), 0))
		if al := xf.SelectElement("alignment"); al != nil {
			st.Alignment = parseAlignment(al)
		}
		if pr := xf.SelectElement("protection"); pr != nil {
			st.Protection = document.Protection{
				Locked: pr.SelectAttrValue("locked", "1") != "0",
				Hidden: pr.SelectAttrValue("hidden", "0") == "1",
			}
		}
		ss.loaded = append(ss.loaded, st)
	}
	return ss
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseFont(el *etree.Element) document.Font {
	f := document.DefaultFont()
	if sz := el.SelectElement("sz"); sz != nil {
		if v, err := strconv.ParseFloat(sz.SelectAttrValue("val", ""), 64); err == nil {
			f.Size = v
		}
	}
	if c := el.SelectElement("color"); c != nil {
		if rgb := c.SelectAttrValue("rgb", ""); rgb != "" {
			f.Color = rgb
		}
	}
	if n := el.SelectElement("name"); n != nil {
		if name := n.SelectAttrValue("val", ""); name != "" {
			f.Name = name
		}
	}
	f.Bold = el.SelectElement("b") != nil
	f.Italic = el.SelectElement("i") != nil
	f.Underline = el.SelectElement("u") != nil
	f.Strikethrough = el.SelectElement("strike") != nil
	return f
}

func parseFill(el *etree.Element) document.Fill {
	f := document.DefaultFill()
	pf := el.SelectElement("patternFill")
	if pf == nil {
		return f
	}
	f.Pattern = pf.SelectAttrValue("patternType", "none")
	if fg := pf.SelectElement("fgColor"); fg != nil {
		if rgb := fg.SelectAttrValue("rgb", ""); rgb != "" {
			f.ForegroundColor = rgb
		}
	}
	if bg := pf.SelectElement("bgColor"); bg != nil {
		if rgb := bg.SelectAttrValue("rgb", ""); rgb != "" {
			f.BackgroundColor = rgb
		}
	}
	return f
}

func parseBorders(el *etree.Element) document.Borders {
	b := document.DefaultBorders()
	parseEdge := func(name string, edge *document.BorderEdge) {
		side := el.SelectElement(name)
		if side == nil {
			return
		}
		if style := side.SelectAttrValue("style", ""); style != "" {
			edge.Style = style
		}
		if c := side.SelectElement("color"); c != nil {
			if rgb := c.SelectAttrValue("rgb", ""); rgb != "" {
				edge.Color = rgb
			}
		}
	}
	parseEdge("left", &b.Left)
	parseEdge("right", &b.Right)
	parseEdge("top", &b.Top)
	parseEdge("bottom", &b.Bottom)
	return b
}

func parseAlignment(el *etree.Element) document.Alignment {
	a := document.DefaultAlignment()
	if v := el.SelectAttrValue("horizontal", ""); v != "" {
		a.Horizontal = v
	}
	if v := el.SelectAttrValue("vertical", ""); v != "" {
		a.Vertical = v
	}
	a.WrapText = el.SelectAttrValue("wrapText", "0") == "1"
	a.Indent = atoiDefault(el.SelectAttrValue("indent", "0"), 0)
	a.TextRotation = atoiDefault(el.SelectAttrValue("textRotation", "0"), 0)
	a.ShrinkToFit = el.SelectAttrValue("shrinkToFit", "0") == "1"
	a.ReadingOrder = atoiDefault(el.SelectAttrValue("readingOrder", "0"), 0)
	return a
}
