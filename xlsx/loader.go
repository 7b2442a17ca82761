package xlsx

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"xlc/cfb"
	"xlc/document"
)

// LoadOptions control package parsing. Password is required when the file
// is an encrypted CFB container.
type LoadOptions struct {
	Password string
}

// loader carries the parsed package parts while the model is rebuilt.
type loader struct {
	parts map[string][]byte
	ss    *styleSheet
	sst   *SharedStrings
	log   *zap.Logger

	dxfs []dxfRecord
}

// Load parses a workbook package from data. Encrypted containers are
// detected and decrypted transparently when a password is supplied.
func Load(ctx context.Context, data []byte, opts LoadOptions, log *zap.Logger) (*document.Workbook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfb.IsEncrypted(data) {
		if opts.Password == "" {
			return nil, fmt.Errorf("workbook is encrypted and no password was given")
		}
		log.Info("Decrypting workbook package")
		dec, err := cfb.DecryptPackage(data, opts.Password)
		if err != nil {
			return nil, fmt.Errorf("unable to decrypt package: %w", err)
		}
		data = dec
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("not a workbook package: %w", err)
	}

	l := &loader{
		parts: make(map[string][]byte, len(zr.File)),
		sst:   NewSharedStrings(),
		log:   log,
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("unable to open part %s: %w", f.Name, err)
		}
		buf, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("unable to read part %s: %w", f.Name, err)
		}
		l.parts[f.Name] = buf
	}

	wbData, ok := l.parts["xl/workbook.xml"]
	if !ok {
		return nil, fmt.Errorf("package has no workbook part")
	}

	if sstData, ok := l.parts["xl/sharedStrings.xml"]; ok {
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(sstData); err != nil {
			return nil, fmt.Errorf("malformed shared strings part: %w", err)
		}
		l.sst = parseSharedStrings(doc)
	}
	if styleData, ok := l.parts["xl/styles.xml"]; ok {
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(styleData); err != nil {
			return nil, fmt.Errorf("malformed styles part: %w", err)
		}
		l.ss = parseStyles(doc)
		l.dxfs = parseDxfs(doc)
	} else {
		l.ss = newStyleSheet()
	}

	wb, err := l.parseWorkbook(ctx, wbData)
	if err != nil {
		return nil, err
	}

	if core, ok := l.parts["docProps/core.xml"]; ok {
		if err := parseCoreProps(core, &wb.DocProps); err != nil {
			log.Warn("Skipping malformed core properties", zap.Error(err))
		}
	}
	if app, ok := l.parts["docProps/app.xml"]; ok {
		if err := parseAppProps(app, &wb.DocProps); err != nil {
			log.Warn("Skipping malformed app properties", zap.Error(err))
		}
	}
	return wb, nil
}

// parseWorkbook reads the sheet roster and workbook properties, then loads
// every referenced sheet part through the workbook relationships.
func (l *loader) parseWorkbook(ctx context.Context, data []byte) (*document.Workbook, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("malformed workbook part: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "workbook" {
		return nil, fmt.Errorf("workbook part has no workbook element")
	}

	targets := parseRels(l.parts["xl/_rels/workbook.xml.rels"])

	wb := document.New()
	parseWorkbookProps(root, &wb.Props)

	sheetsEl := root.SelectElement("sheets")
	if sheetsEl == nil {
		return nil, fmt.Errorf("workbook part has no sheets element")
	}
	for i, el := range sheetsEl.SelectElements("sheet") {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := el.SelectAttrValue("name", "")
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		ws, err := wb.AddWorksheet(name)
		if err != nil {
			return nil, fmt.Errorf("unable to add worksheet %q: %w", name, err)
		}
		if state := el.SelectAttrValue("state", ""); state != "" {
			if vis, err := document.ParseSheetVisibility(state); err == nil {
				ws.Visibility = vis
			}
		}

		target := targets[el.SelectAttrValue("r:id", "")]
		if target == "" {
			target = fmt.Sprintf("worksheets/sheet%d.xml", i+1)
		}
		partName := path.Join("xl", target)
		sheetData, ok := l.parts[partName]
		if !ok {
			l.log.Warn("Worksheet part missing, loading empty sheet",
				zap.String("sheet", name), zap.String("part", partName))
			continue
		}
		if err := l.parseWorksheet(sheetData, ws, partName); err != nil {
			return nil, fmt.Errorf("unable to parse worksheet %q: %w", name, err)
		}
	}
	return wb, nil
}

// parseWorksheet rebuilds one sheet: properties, column and row metrics,
// the cell grid, and the feature collections around it.
func (l *loader) parseWorksheet(data []byte, ws *document.Worksheet, partName string) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return fmt.Errorf("malformed sheet part: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("sheet part has no root element")
	}

	parseWorksheetProps(root, ws)
	parseCols(root, ws)
	if err := l.parseSheetData(root, ws); err != nil {
		return err
	}
	parseAutoFilterXML(root, ws)
	l.parseConditionalFormattingXML(root, ws)
	parseDataValidationsXML(root, ws)

	rels := parseRels(l.parts[relsPartFor(partName)])
	parseHyperlinksXML(root, ws, rels)
	l.loadComments(ws, rels, partName)
	return nil
}

// relsPartFor maps xl/worksheets/sheet1.xml to its relationship part name.
func relsPartFor(partName string) string {
	dir, file := path.Split(partName)
	return dir + "_rels/" + file + ".rels"
}

// parseRels returns the Id to Target mapping of a relationship part.
// Missing or broken parts yield an empty map.
func parseRels(data []byte) map[string]string {
	out := make(map[string]string)
	if len(data) == 0 {
		return out
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return out
	}
	root := doc.Root()
	if root == nil {
		return out
	}
	for _, el := range root.SelectElements("Relationship") {
		id := el.SelectAttrValue("Id", "")
		target := el.SelectAttrValue("Target", "")
		if id != "" && target != "" {
			out[id] = target
		}
	}
	return out
}

func parseCols(root *etree.Element, ws *document.Worksheet) {
	cols := root.SelectElement("cols")
	if cols == nil {
		return
	}
	for _, col := range cols.SelectElements("col") {
		min := atoiDefault(col.SelectAttrValue("min", "0"), 0)
		max := atoiDefault(col.SelectAttrValue("max", "0"), 0)
		if min < 1 || max < min {
			continue
		}
		hidden := col.SelectAttrValue("hidden", "0") == "1"
		width, wErr := strconv.ParseFloat(col.SelectAttrValue("width", ""), 64)
		for c := min; c <= max && c <= document.MaxColumns; c++ {
			if wErr == nil {
				ws.SetColumnWidth(c, width)
			}
			if hidden {
				ws.HideColumn(c, true)
			}
		}
	}
}

func (l *loader) parseSheetData(root *etree.Element, ws *document.Worksheet) error {
	sheetData := root.SelectElement("sheetData")
	if sheetData == nil {
		return nil
	}
	for rowNum, rowEl := range sheetData.SelectElements("row") {
		r := atoiDefault(rowEl.SelectAttrValue("r", ""), rowNum+1)
		if ht, err := strconv.ParseFloat(rowEl.SelectAttrValue("ht", ""), 64); err == nil {
			if rowEl.SelectAttrValue("customHeight", "0") == "1" {
				ws.SetRowHeight(r, ht)
			}
		}
		if rowEl.SelectAttrValue("hidden", "0") == "1" {
			ws.HideRow(r, true)
		}
		for colNum, cEl := range rowEl.SelectElements("c") {
			ref := cEl.SelectAttrValue("r", "")
			row, col := r, colNum+1
			if ref != "" {
				pr, pc, err := document.ParseRef(ref)
				if err != nil {
					return fmt.Errorf("bad cell reference %q: %w", ref, err)
				}
				row, col = pr, pc
			}

			var raw string
			if v := cEl.SelectElement("v"); v != nil {
				raw = v.Text()
			}
			var formula string
			if f := cEl.SelectElement("f"); f != nil && f.Text() != "" {
				formula = "=" + f.Text()
			}
			style := l.ss.styleAt(atoiDefault(cEl.SelectAttrValue("s", "0"), 0))

			if raw == "" && formula == "" && style.IsDefault() {
				continue
			}
			cell, err := ws.Cells.Cell(row, col)
			if err != nil {
				return err
			}
			cell.Value = DecodeValue(raw, CellType(cEl.SelectAttrValue("t", "")), l.sst)
			if cell.Value.Kind() == document.ValueKindNumber && IsDateFormatCode(style.NumberFormat) {
				cell.Value = document.TimeValue(SerialToTime(cell.Value.Float()))
			}
			cell.Formula = formula
			cell.Style = style
		}
	}
	return nil
}

func parseAutoFilterXML(root *etree.Element, ws *document.Worksheet) {
	el := root.SelectElement("autoFilter")
	if el == nil {
		return
	}
	ws.AutoFilter.Range = el.SelectAttrValue("ref", "")
	for _, fcEl := range el.SelectElements("filterColumn") {
		fc := ws.AutoFilter.Column(atoiDefault(fcEl.SelectAttrValue("colId", "0"), 0))
		fc.ShowButton = fcEl.SelectAttrValue("hiddenButton", "0") != "1"

		if filters := fcEl.SelectElement("filters"); filters != nil {
			for _, f := range filters.SelectElements("filter") {
				fc.Values = append(fc.Values, f.SelectAttrValue("val", ""))
			}
		}
		if custom := fcEl.SelectElement("customFilters"); custom != nil {
			fc.CustomAnd = custom.SelectAttrValue("and", "0") == "1"
			for _, f := range custom.SelectElements("customFilter") {
				fc.CustomFilters = append(fc.CustomFilters, document.CustomFilter{
					Operator: f.SelectAttrValue("operator", "equal"),
					Value:    f.SelectAttrValue("val", ""),
				})
			}
		}
		if dyn := fcEl.SelectElement("dynamicFilter"); dyn != nil {
			fc.DynamicType = dyn.SelectAttrValue("type", "")
		}
		if top := fcEl.SelectElement("top10"); top != nil {
			t10 := &document.Top10Filter{
				Top:     top.SelectAttrValue("top", "1") != "0",
				Percent: top.SelectAttrValue("percent", "0") == "1",
			}
			if v, err := strconv.ParseFloat(top.SelectAttrValue("val", ""), 64); err == nil {
				t10.Value = v
			}
			fc.Top10 = t10
		}
	}
}

func (l *loader) parseConditionalFormattingXML(root *etree.Element, ws *document.Worksheet) {
	for _, cfEl := range root.SelectElements("conditionalFormatting") {
		rng := cfEl.SelectAttrValue("sqref", "")
		for _, ruleEl := range cfEl.SelectElements("cfRule") {
			cf := &document.ConditionalFormat{
				Range:      rng,
				Type:       ruleEl.SelectAttrValue("type", ""),
				Operator:   ruleEl.SelectAttrValue("operator", ""),
				Text:       ruleEl.SelectAttrValue("text", ""),
				Priority:   atoiDefault(ruleEl.SelectAttrValue("priority", "0"), 0),
				StopIfTrue: ruleEl.SelectAttrValue("stopIfTrue", "0") == "1",
				Rank:       atoiDefault(ruleEl.SelectAttrValue("rank", "0"), 0),
				Percent:    ruleEl.SelectAttrValue("percent", "0") == "1",
				Bottom:     ruleEl.SelectAttrValue("bottom", "0") == "1",
			}

			formulas := ruleEl.SelectElements("formula")
			if len(formulas) > 0 {
				cf.Formula1 = formulas[0].Text()
			}
			if len(formulas) > 1 {
				cf.Formula2 = formulas[1].Text()
			}

			if dxfID, err := strconv.Atoi(ruleEl.SelectAttrValue("dxfId", "")); err == nil {
				if dxfID >= 0 && dxfID < len(l.dxfs) {
					cf.DxfFont = l.dxfs[dxfID].font
					cf.DxfFill = l.dxfs[dxfID].fill
				}
			}

			if cs := ruleEl.SelectElement("colorScale"); cs != nil {
				scale := &document.ColorScale{}
				colors := cs.SelectElements("color")
				switch len(colors) {
				case 2:
					scale.MinColor = colors[0].SelectAttrValue("rgb", "")
					scale.MaxColor = colors[1].SelectAttrValue("rgb", "")
				case 3:
					scale.MinColor = colors[0].SelectAttrValue("rgb", "")
					scale.MidColor = colors[1].SelectAttrValue("rgb", "")
					scale.MaxColor = colors[2].SelectAttrValue("rgb", "")
				}
				cf.ColorScale = scale
			}
			if db := ruleEl.SelectElement("dataBar"); db != nil {
				bar := &document.DataBar{}
				if c := db.SelectElement("color"); c != nil {
					bar.Color = c.SelectAttrValue("rgb", "")
				}
				cf.DataBar = bar
			}
			if is := ruleEl.SelectElement("iconSet"); is != nil {
				cf.IconSet = &document.IconSet{
					Type:      is.SelectAttrValue("iconSet", "3TrafficLights1"),
					Reverse:   is.SelectAttrValue("reverse", "0") == "1",
					IconsOnly: is.SelectAttrValue("showValue", "1") == "0",
				}
			}

			ws.ConditionalFormats = append(ws.ConditionalFormats, cf)
		}
	}
}

func parseDataValidationsXML(root *etree.Element, ws *document.Worksheet) {
	dvs := root.SelectElement("dataValidations")
	if dvs == nil {
		return
	}
	for _, el := range dvs.SelectElements("dataValidation") {
		dv := document.NewDataValidation(el.SelectAttrValue("sqref", ""))
		if t := el.SelectAttrValue("type", ""); t != "" {
			dv.Type = t
		}
		if op := el.SelectAttrValue("operator", ""); op != "" {
			dv.Operator = op
		}
		if st := el.SelectAttrValue("errorStyle", ""); st != "" {
			dv.AlertStyle = st
		}
		dv.AllowBlank = el.SelectAttrValue("allowBlank", "0") == "1"
		// the attribute is inverted: showDropDown="1" hides the dropdown
		dv.ShowDropdown = el.SelectAttrValue("showDropDown", "0") != "1"
		dv.ShowInputMessage = el.SelectAttrValue("showInputMessage", "0") == "1"
		dv.ShowErrorMessage = el.SelectAttrValue("showErrorMessage", "0") == "1"
		dv.ErrorTitle = el.SelectAttrValue("errorTitle", "")
		dv.ErrorMessage = el.SelectAttrValue("error", "")
		dv.InputTitle = el.SelectAttrValue("promptTitle", "")
		dv.InputMessage = el.SelectAttrValue("prompt", "")
		if f := el.SelectElement("formula1"); f != nil {
			dv.Formula1 = f.Text()
		}
		if f := el.SelectElement("formula2"); f != nil {
			dv.Formula2 = f.Text()
		}
		ws.DataValidations = append(ws.DataValidations, dv)
	}
}

func parseHyperlinksXML(root *etree.Element, ws *document.Worksheet, rels map[string]string) {
	links := root.SelectElement("hyperlinks")
	if links == nil {
		return
	}
	for _, el := range links.SelectElements("hyperlink") {
		h := &document.Hyperlink{
			Ref:      el.SelectAttrValue("ref", ""),
			Location: el.SelectAttrValue("location", ""),
			Display:  el.SelectAttrValue("display", ""),
			Tooltip:  el.SelectAttrValue("tooltip", ""),
		}
		if id := el.SelectAttrValue("r:id", ""); id != "" {
			h.Target = rels[id]
		}
		if h.Ref == "" || (h.Target == "" && h.Location == "") {
			continue
		}
		ws.Hyperlinks = append(ws.Hyperlinks, h)
	}
}

// loadComments follows the comments relationship of a sheet and restores
// notes plus their box sizes from the paired legacy drawing.
func (l *loader) loadComments(ws *document.Worksheet, rels map[string]string, partName string) {
	var commentsPart, vmlPart string
	for _, target := range rels {
		resolved := path.Join(path.Dir(partName), target)
		switch {
		case strings.Contains(path.Base(resolved), "comments"):
			commentsPart = resolved
		case strings.HasSuffix(resolved, ".vml"):
			vmlPart = resolved
		}
	}
	if commentsPart == "" {
		return
	}
	data, ok := l.parts[commentsPart]
	if !ok {
		return
	}
	if err := parseComments(data, ws); err != nil {
		l.log.Warn("Skipping malformed comments part",
			zap.String("part", commentsPart), zap.Error(err))
		return
	}
	if vml, ok := l.parts[vmlPart]; ok {
		parseVMLSizes(vml, ws)
	}
}

// parseDxfs reads the differential format table from a styles document.
func parseDxfs(doc *etree.Document) []dxfRecord {
	root := doc.Root()
	if root == nil {
		return nil
	}
	el := root.SelectElement("dxfs")
	if el == nil {
		return nil
	}
	var out []dxfRecord
	for _, dxf := range el.SelectElements("dxf") {
		var rec dxfRecord
		if f := dxf.SelectElement("font"); f != nil {
			font := parseFont(f)
			rec.font = &font
		}
		if f := dxf.SelectElement("fill"); f != nil {
			fill := parseFill(f)
			rec.fill = &fill
		}
		out = append(out, rec)
	}
	return out
}

// LoadFile reads and parses a workbook package from disk.
func LoadFile(ctx context.Context, filePath string, opts LoadOptions, log *zap.Logger) (*document.Workbook, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read workbook file: %w", err)
	}
	return Load(ctx, data, opts, log)
}
