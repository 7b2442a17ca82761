package xlsx

import (
	"archive/zip"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"xlc/document"
)

// writeWorksheet emits one sheet part. Child elements of worksheet follow
// the schema sequence: sheetViews, sheetFormatPr, cols, sheetData,
// sheetProtection, autoFilter, conditionalFormatting, hyperlinks,
// dataValidations, printOptions, pageMargins, pageSetup, headerFooter,
// legacyDrawing.
func (s *saver) writeWorksheet(zw *zip.Writer, ws *document.Worksheet, n int) error {
	doc := newPartDoc()
	root := doc.CreateElement("worksheet")
	root.CreateAttr("xmlns", nsMain)
	root.CreateAttr("xmlns:r", nsRelationships)

	appendSheetViewsXML(root, ws, n == 1)
	appendSheetFormatPrXML(root, ws.Props.Format)
	appendColsXML(root, ws)

	if err := s.appendSheetData(root, ws); err != nil {
		return err
	}

	appendSheetProtectionXML(root, ws.Props.Protection)
	if ws.AutoFilter.Range != "" {
		appendAutoFilterXML(root, &ws.AutoFilter)
	}
	if len(ws.ConditionalFormats) > 0 {
		s.appendConditionalFormattingXML(root, ws)
	}
	if len(ws.Hyperlinks) > 0 {
		appendHyperlinksXML(root, ws)
	}
	if len(ws.DataValidations) > 0 {
		appendDataValidationsXML(root, ws.DataValidations)
	}
	appendPrintOptionsXML(root, ws.Props.PrintOptions)
	appendPageMarginsXML(root, ws.Props.PageMargins)
	appendPageSetupXML(root, ws.Props.PageSetup)
	appendHeaderFooterXML(root, ws.Props.HeaderFooter)
	if len(ws.Comments) > 0 {
		root.CreateElement("legacyDrawing").CreateAttr("r:id", "rId1")
	}

	return writeXMLToZip(zw, fmt.Sprintf("xl/worksheets/sheet%d.xml", n), doc)
}

// appendSheetData writes the row/cell grid. Rows that only carry a custom
// height or hidden flag are emitted empty.
func (s *saver) appendSheetData(root *etree.Element, ws *document.Worksheet) error {
	sheetData := root.CreateElement("sheetData")

	rows := ws.Cells.Rows()
	byNum := make(map[int][]*document.Cell, len(rows))
	nums := make([]int, 0, len(rows))
	for _, row := range rows {
		byNum[row[0].Row] = row
		nums = append(nums, row[0].Row)
	}
	for r := range ws.RowHeights {
		if _, ok := byNum[r]; !ok {
			byNum[r] = nil
			nums = append(nums, r)
		}
	}
	for r := range ws.HiddenRows {
		if _, ok := byNum[r]; !ok {
			byNum[r] = nil
			nums = append(nums, r)
		}
	}
	sort.Ints(nums)

	for _, num := range nums {
		rowEl := sheetData.CreateElement("row")
		rowEl.CreateAttr("r", strconv.Itoa(num))
		if ht, ok := ws.RowHeights[num]; ok {
			rowEl.CreateAttr("ht", formatFloat(ht))
			rowEl.CreateAttr("customHeight", "1")
		}
		if ws.HiddenRows[num] {
			rowEl.CreateAttr("hidden", "1")
		}
		for _, cell := range byNum[num] {
			if err := s.appendCell(rowEl, cell); err != nil {
				return err
			}
		}
	}
	return nil
}

// appendCell writes one c element: reference, style index when non-default,
// type tag when non-numeric, formula before value.
func (s *saver) appendCell(rowEl *etree.Element, cell *document.Cell) error {
	ref, err := document.FormatRef(cell.Row, cell.Col)
	if err != nil {
		return err
	}
	raw, t, hasValue := EncodeValue(cell.Value)
	if t == CellTypeSharedString && hasValue {
		raw = strconv.Itoa(s.sst.Add(raw))
	}

	style := cell.Style
	if cell.Value.Kind() == document.ValueKindDateTime && !IsDateFormatCode(style.NumberFormat) {
		style.NumberFormat = defaultDateTimeFormat
	}

	c := rowEl.CreateElement("c")
	c.CreateAttr("r", ref)
	if idx := s.ss.internStyle(style); idx > 0 {
		c.CreateAttr("s", strconv.Itoa(idx))
	}
	if t != CellTypeNumber {
		c.CreateAttr("t", string(t))
	}
	if cell.Formula != "" {
		c.CreateElement("f").SetText(strings.TrimPrefix(cell.Formula, "="))
	}
	if hasValue {
		c.CreateElement("v").SetText(raw)
	}
	return nil
}

func appendColsXML(root *etree.Element, ws *document.Worksheet) {
	if len(ws.ColumnWidths) == 0 && len(ws.HiddenColumns) == 0 {
		return
	}
	seen := make(map[int]bool)
	var all []int
	for c := range ws.ColumnWidths {
		if !seen[c] {
			seen[c] = true
			all = append(all, c)
		}
	}
	for c := range ws.HiddenColumns {
		if !seen[c] {
			seen[c] = true
			all = append(all, c)
		}
	}
	sort.Ints(all)

	cols := root.CreateElement("cols")
	for _, c := range all {
		col := cols.CreateElement("col")
		col.CreateAttr("min", strconv.Itoa(c))
		col.CreateAttr("max", strconv.Itoa(c))
		if w, ok := ws.ColumnWidths[c]; ok {
			col.CreateAttr("width", formatFloat(w))
			col.CreateAttr("customWidth", "1")
		}
		if ws.HiddenColumns[c] {
			col.CreateAttr("hidden", "1")
		}
	}
}

func appendAutoFilterXML(root *etree.Element, af *document.AutoFilter) {
	el := root.CreateElement("autoFilter")
	el.CreateAttr("ref", af.Range)

	cols := make([]*document.FilterColumn, len(af.Columns))
	copy(cols, af.Columns)
	sort.Slice(cols, func(i, j int) bool { return cols[i].ColID < cols[j].ColID })

	for _, fc := range cols {
		fcEl := el.CreateElement("filterColumn")
		fcEl.CreateAttr("colId", strconv.Itoa(fc.ColID))
		if !fc.ShowButton {
			fcEl.CreateAttr("hiddenButton", "1")
		}
		if len(fc.Values) > 0 {
			filters := fcEl.CreateElement("filters")
			for _, v := range fc.Values {
				filters.CreateElement("filter").CreateAttr("val", v)
			}
		}
		if len(fc.CustomFilters) > 0 {
			custom := fcEl.CreateElement("customFilters")
			if fc.CustomAnd {
				custom.CreateAttr("and", "1")
			}
			for _, cf := range fc.CustomFilters {
				f := custom.CreateElement("customFilter")
				f.CreateAttr("operator", cf.Operator)
				f.CreateAttr("val", cf.Value)
			}
		}
		if fc.DynamicType != "" {
			fcEl.CreateElement("dynamicFilter").CreateAttr("type", fc.DynamicType)
		}
		if fc.Top10 != nil {
			top := fcEl.CreateElement("top10")
			if fc.Top10.Top {
				top.CreateAttr("top", "1")
			} else {
				top.CreateAttr("top", "0")
			}
			if fc.Top10.Percent {
				top.CreateAttr("percent", "1")
			} else {
				top.CreateAttr("percent", "0")
			}
			top.CreateAttr("val", formatFloat(fc.Top10.Value))
		}
	}
}

// appendConditionalFormattingXML groups rules by their range, keeping the
// first-seen range order stable.
func (s *saver) appendConditionalFormattingXML(root *etree.Element, ws *document.Worksheet) {
	grouped := make(map[string][]*document.ConditionalFormat)
	var order []string
	for _, cf := range ws.ConditionalFormats {
		if cf.Range == "" {
			continue
		}
		if _, ok := grouped[cf.Range]; !ok {
			order = append(order, cf.Range)
		}
		grouped[cf.Range] = append(grouped[cf.Range], cf)
	}
	for _, rng := range order {
		el := root.CreateElement("conditionalFormatting")
		el.CreateAttr("sqref", rng)
		for _, cf := range grouped[rng] {
			s.appendCfRuleXML(el, cf, rng)
		}
	}
}

func firstCellOfRange(rng string) string {
	if first, _, found := strings.Cut(rng, ":"); found {
		return first
	}
	return rng
}

// textRuleFormula builds the comparison formula the format requires for
// text-match rule types.
func textRuleFormula(ruleType, text, firstCell string) string {
	quoted := `"` + strings.ReplaceAll(text, `"`, `""`) + `"`
	switch ruleType {
	case "containsText":
		return fmt.Sprintf("NOT(ISERROR(SEARCH(%s,%s)))", quoted, firstCell)
	case "notContainsText":
		return fmt.Sprintf("ISERROR(SEARCH(%s,%s))", quoted, firstCell)
	case "beginsWith":
		return fmt.Sprintf("LEFT(%s,LEN(%s))=%s", firstCell, quoted, quoted)
	case "endsWith":
		return fmt.Sprintf("RIGHT(%s,LEN(%s))=%s", firstCell, quoted, quoted)
	}
	return ""
}

func (s *saver) appendCfRuleXML(parent *etree.Element, cf *document.ConditionalFormat, rng string) {
	rule := parent.CreateElement("cfRule")
	rule.CreateAttr("type", cf.Type)
	if id, ok := s.dxfIDs[cf]; ok {
		rule.CreateAttr("dxfId", strconv.Itoa(id))
	}
	rule.CreateAttr("priority", strconv.Itoa(cf.Priority))
	if cf.StopIfTrue {
		rule.CreateAttr("stopIfTrue", "1")
	}

	switch cf.Type {
	case "cellIs":
		if cf.Operator != "" {
			rule.CreateAttr("operator", cf.Operator)
		}
		if cf.Formula1 != "" {
			rule.CreateElement("formula").SetText(strings.TrimPrefix(cf.Formula1, "="))
		}
		if cf.Formula2 != "" {
			rule.CreateElement("formula").SetText(strings.TrimPrefix(cf.Formula2, "="))
		}
	case "containsText", "notContainsText", "beginsWith", "endsWith":
		rule.CreateAttr("text", cf.Text)
		rule.CreateElement("formula").SetText(textRuleFormula(cf.Type, cf.Text, firstCellOfRange(rng)))
	case "expression":
		if cf.Formula1 != "" {
			rule.CreateElement("formula").SetText(strings.TrimPrefix(cf.Formula1, "="))
		}
	case "top10":
		if cf.Bottom {
			rule.CreateAttr("bottom", "1")
		}
		if cf.Percent {
			rule.CreateAttr("percent", "1")
		}
		if cf.Rank > 0 {
			rule.CreateAttr("rank", strconv.Itoa(cf.Rank))
		}
	case "colorScale":
		cs := cf.ColorScale
		if cs == nil {
			cs = &document.ColorScale{MinColor: "FFF8696B", MidColor: "", MaxColor: "FF63BE7B"}
		}
		el := rule.CreateElement("colorScale")
		el.CreateElement("cfvo").CreateAttr("type", "min")
		if cs.MidColor != "" {
			mid := el.CreateElement("cfvo")
			mid.CreateAttr("type", "percentile")
			mid.CreateAttr("val", "50")
		}
		el.CreateElement("cfvo").CreateAttr("type", "max")
		el.CreateElement("color").CreateAttr("rgb", cs.MinColor)
		if cs.MidColor != "" {
			el.CreateElement("color").CreateAttr("rgb", cs.MidColor)
		}
		el.CreateElement("color").CreateAttr("rgb", cs.MaxColor)
	case "dataBar":
		color := "FF638EC6"
		if cf.DataBar != nil && cf.DataBar.Color != "" {
			color = cf.DataBar.Color
		}
		el := rule.CreateElement("dataBar")
		el.CreateElement("cfvo").CreateAttr("type", "min")
		el.CreateElement("cfvo").CreateAttr("type", "max")
		el.CreateElement("color").CreateAttr("rgb", color)
	case "iconSet":
		setType := "3TrafficLights1"
		var reverse, iconsOnly bool
		if cf.IconSet != nil {
			if cf.IconSet.Type != "" {
				setType = cf.IconSet.Type
			}
			reverse = cf.IconSet.Reverse
			iconsOnly = cf.IconSet.IconsOnly
		}
		el := rule.CreateElement("iconSet")
		el.CreateAttr("iconSet", setType)
		if reverse {
			el.CreateAttr("reverse", "1")
		}
		if iconsOnly {
			el.CreateAttr("showValue", "0")
		}
		n := 3
		switch setType[0] {
		case '4':
			n = 4
		case '5':
			n = 5
		}
		for i := 0; i < n; i++ {
			cfvo := el.CreateElement("cfvo")
			cfvo.CreateAttr("type", "percent")
			cfvo.CreateAttr("val", strconv.Itoa(100*i/n))
		}
	}
}

// appendHyperlinksXML writes the hyperlinks collection. External targets get
// per-sheet relationship ids; when the sheet also carries comments the first
// two ids belong to the VML and comments parts.
func appendHyperlinksXML(root *etree.Element, ws *document.Worksheet) {
	el := root.CreateElement("hyperlinks")
	nextID := hyperlinkRelBase(ws)
	for _, h := range ws.Hyperlinks {
		link := el.CreateElement("hyperlink")
		link.CreateAttr("ref", h.Ref)
		if h.IsExternal() {
			link.CreateAttr("r:id", fmt.Sprintf("rId%d", nextID))
			nextID++
		}
		if h.Location != "" {
			link.CreateAttr("location", h.Location)
		}
		if h.Display != "" {
			link.CreateAttr("display", h.Display)
		}
		if h.Tooltip != "" {
			link.CreateAttr("tooltip", h.Tooltip)
		}
	}
}

func hyperlinkRelBase(ws *document.Worksheet) int {
	if len(ws.Comments) > 0 {
		return 3
	}
	return 1
}

func appendDataValidationsXML(root *etree.Element, dvs []*document.DataValidation) {
	el := root.CreateElement("dataValidations")
	el.CreateAttr("count", strconv.Itoa(len(dvs)))
	for _, dv := range dvs {
		dvEl := el.CreateElement("dataValidation")
		if dv.SQRef != "" {
			dvEl.CreateAttr("sqref", dv.SQRef)
		}
		if dv.Type != "" && dv.Type != "none" {
			dvEl.CreateAttr("type", dv.Type)
		}
		switch dv.Type {
		case "whole", "decimal", "date", "time", "textLength":
			if dv.Operator != "" && dv.Operator != "between" {
				dvEl.CreateAttr("operator", dv.Operator)
			}
		}
		if dv.AlertStyle != "" && dv.AlertStyle != "stop" {
			dvEl.CreateAttr("errorStyle", dv.AlertStyle)
		}
		if dv.AllowBlank {
			dvEl.CreateAttr("allowBlank", "1")
		}
		// the attribute is inverted: showDropDown="1" hides the dropdown
		if !dv.ShowDropdown {
			dvEl.CreateAttr("showDropDown", "1")
		}
		if dv.ShowInputMessage {
			dvEl.CreateAttr("showInputMessage", "1")
		}
		if dv.ShowErrorMessage {
			dvEl.CreateAttr("showErrorMessage", "1")
		}
		if dv.ErrorTitle != "" {
			dvEl.CreateAttr("errorTitle", dv.ErrorTitle)
		}
		if dv.ErrorMessage != "" {
			dvEl.CreateAttr("error", dv.ErrorMessage)
		}
		if dv.InputTitle != "" {
			dvEl.CreateAttr("promptTitle", dv.InputTitle)
		}
		if dv.InputMessage != "" {
			dvEl.CreateAttr("prompt", dv.InputMessage)
		}
		if dv.Formula1 != "" {
			dvEl.CreateElement("formula1").SetText(dv.Formula1)
		}
		if dv.Formula2 != "" {
			dvEl.CreateElement("formula2").SetText(dv.Formula2)
		}
	}
}

// writeWorksheetRels emits the sheet relationship part when the sheet has
// comments or external hyperlinks. Nothing is written otherwise.
func (s *saver) writeWorksheetRels(zw *zip.Writer, ws *document.Worksheet, n int) error {
	hasComments := len(ws.Comments) > 0
	var external []*document.Hyperlink
	for _, h := range ws.Hyperlinks {
		if h.IsExternal() {
			external = append(external, h)
		}
	}
	if !hasComments && len(external) == 0 {
		return nil
	}

	doc := newPartDoc()
	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", nsPackageRels)

	if hasComments {
		el := rels.CreateElement("Relationship")
		el.CreateAttr("Id", "rId1")
		el.CreateAttr("Type", relTypeVMLDrawing)
		el.CreateAttr("Target", fmt.Sprintf("../drawings/vmlDrawing%d.vml", n))
		el = rels.CreateElement("Relationship")
		el.CreateAttr("Id", "rId2")
		el.CreateAttr("Type", relTypeComments)
		el.CreateAttr("Target", fmt.Sprintf("../comments%d.xml", n))
	}
	nextID := hyperlinkRelBase(ws)
	for _, h := range external {
		el := rels.CreateElement("Relationship")
		el.CreateAttr("Id", fmt.Sprintf("rId%d", nextID))
		el.CreateAttr("Type", relTypeHyperlink)
		el.CreateAttr("Target", h.Target)
		el.CreateAttr("TargetMode", "External")
		nextID++
	}
	return writeXMLToZip(zw, fmt.Sprintf("xl/worksheets/_rels/sheet%d.xml.rels", n), doc)
}
