package xlsx

import (
	"strconv"

	"github.com/beevik/etree"

	"xlc/document"
)

// Workbook-level property elements. Attributes are emitted only when they
// differ from the format defaults, matching what strict readers expect.

func appendFileVersionXML(parent *etree.Element, fv document.FileVersion) {
	if fv == (document.FileVersion{}) {
		return
	}
	el := parent.CreateElement("fileVersion")
	if fv.AppName != "" {
		el.CreateAttr("appName", fv.AppName)
	}
	if fv.LastEdited != "" {
		el.CreateAttr("lastEdited", fv.LastEdited)
	}
	if fv.LowestEdited != "" {
		el.CreateAttr("lowestEdited", fv.LowestEdited)
	}
	if fv.RupBuild != "" {
		el.CreateAttr("rupBuild", fv.RupBuild)
	}
}

func appendWorkbookPrXML(parent *etree.Element, pr document.WorkbookPr) {
	if pr == (document.WorkbookPr{}) {
		return
	}
	el := parent.CreateElement("workbookPr")
	if pr.Date1904 {
		el.CreateAttr("date1904", "1")
	}
	if pr.CodeName != "" {
		el.CreateAttr("codeName", pr.CodeName)
	}
	if pr.FilterPrivacy {
		el.CreateAttr("filterPrivacy", "1")
	}
	if pr.BackupFile {
		el.CreateAttr("backupFile", "1")
	}
}

func appendWorkbookProtectionXML(parent *etree.Element, p document.WorkbookProtection) {
	if !p.LockStructure && !p.LockWindows && !p.LockRevision {
		return
	}
	el := parent.CreateElement("workbookProtection")
	if p.LockStructure {
		el.CreateAttr("lockStructure", "1")
	}
	if p.LockWindows {
		el.CreateAttr("lockWindows", "1")
	}
	if p.LockRevision {
		el.CreateAttr("lockRevision", "1")
	}
	if p.WorkbookPassword != "" {
		el.CreateAttr("workbookPassword", p.WorkbookPassword)
	}
}

func appendBookViewsXML(parent *etree.Element, v document.WorkbookView) {
	views := parent.CreateElement("bookViews")
	el := views.CreateElement("workbookView")
	el.CreateAttr("xWindow", strconv.Itoa(v.XWindow))
	el.CreateAttr("yWindow", strconv.Itoa(v.YWindow))
	el.CreateAttr("windowWidth", strconv.Itoa(v.WindowWidth))
	el.CreateAttr("windowHeight", strconv.Itoa(v.WindowHeight))
	if v.ActiveTab != 0 {
		el.CreateAttr("activeTab", strconv.Itoa(v.ActiveTab))
	}
	if v.FirstSheet != 0 {
		el.CreateAttr("firstSheet", strconv.Itoa(v.FirstSheet))
	}
	if v.TabRatio != 600 {
		el.CreateAttr("tabRatio", strconv.Itoa(v.TabRatio))
	}
	if v.Visibility != "" && v.Visibility != "visible" {
		el.CreateAttr("visibility", v.Visibility)
	}
	if v.Minimized {
		el.CreateAttr("minimized", "1")
	}
}

func appendDefinedNamesXML(parent *etree.Element, names []document.DefinedName) {
	if len(names) == 0 {
		return
	}
	el := parent.CreateElement("definedNames")
	for _, dn := range names {
		name := el.CreateElement("definedName")
		name.CreateAttr("name", dn.Name)
		if dn.LocalSheetID >= 0 {
			name.CreateAttr("localSheetId", strconv.Itoa(dn.LocalSheetID))
		}
		if dn.Hidden {
			name.CreateAttr("hidden", "1")
		}
		if dn.Comment != "" {
			name.CreateAttr("comment", dn.Comment)
		}
		name.SetText(dn.RefersTo)
	}
}

func appendCalcPrXML(parent *etree.Element, c document.Calculation) {
	def := document.DefaultCalculation()
	if c == def {
		return
	}
	el := parent.CreateElement("calcPr")
	if c.CalcID != "" {
		el.CreateAttr("calcId", c.CalcID)
	}
	if c.CalcMode != "" && c.CalcMode != "auto" {
		el.CreateAttr("calcMode", c.CalcMode)
	}
	if c.FullCalcOnLoad {
		el.CreateAttr("fullCalcOnLoad", "1")
	}
	if c.Iterate {
		el.CreateAttr("iterate", "1")
		if c.IterateCount != 100 {
			el.CreateAttr("iterateCount", strconv.Itoa(c.IterateCount))
		}
		if c.IterateDelta != 0.001 {
			el.CreateAttr("iterateDelta", formatFloat(c.IterateDelta))
		}
	}
}

// Worksheet-level property elements.

func appendSheetViewsXML(parent *etree.Element, ws *document.Worksheet, first bool) {
	v := ws.Props.View
	sel := ws.Props.Selection
	pane := ws.Props.Pane

	views := parent.CreateElement("sheetViews")
	el := views.CreateElement("sheetView")
	if v.ShowFormulas {
		el.CreateAttr("showFormulas", "1")
	}
	if !v.ShowGridLines {
		el.CreateAttr("showGridLines", "0")
	}
	if !v.ShowRowColHeader {
		el.CreateAttr("showRowColHeaders", "0")
	}
	if !v.ShowZeros {
		el.CreateAttr("showZeros", "0")
	}
	if v.RightToLeft {
		el.CreateAttr("rightToLeft", "1")
	}
	if first || v.TabSelected {
		el.CreateAttr("tabSelected", "1")
	}
	if v.View != "" && v.View != "normal" {
		el.CreateAttr("view", v.View)
	}
	if v.TopLeftCell != "" {
		el.CreateAttr("topLeftCell", v.TopLeftCell)
	}
	if v.ZoomScale != 0 && v.ZoomScale != 100 {
		el.CreateAttr("zoomScale", strconv.Itoa(v.ZoomScale))
	}
	el.CreateAttr("workbookViewId", strconv.Itoa(v.WorkbookViewID))

	hasPane := pane != nil && pane.State != ""
	hasSelection := sel.ActiveCell != "A1" || sel.SQRef != "A1"
	if !hasPane && !hasSelection {
		return
	}
	if hasPane {
		p := el.CreateElement("pane")
		if pane.XSplit > 0 {
			p.CreateAttr("xSplit", formatFloat(pane.XSplit))
		}
		if pane.YSplit > 0 {
			p.CreateAttr("ySplit", formatFloat(pane.YSplit))
		}
		if pane.TopLeftCell != "" {
			p.CreateAttr("topLeftCell", pane.TopLeftCell)
		}
		if pane.ActivePane != "" {
			p.CreateAttr("activePane", pane.ActivePane)
		}
		p.CreateAttr("state", pane.State)
	}
	s := el.CreateElement("selection")
	if hasPane && pane.ActivePane != "" {
		s.CreateAttr("pane", pane.ActivePane)
	}
	s.CreateAttr("activeCell", sel.ActiveCell)
	s.CreateAttr("sqref", sel.SQRef)
}

func appendSheetFormatPrXML(parent *etree.Element, f document.SheetFormat) {
	el := parent.CreateElement("sheetFormatPr")
	if f.BaseColWidth != 8 && f.BaseColWidth != 0 {
		el.CreateAttr("baseColWidth", strconv.Itoa(f.BaseColWidth))
	}
	if f.DefaultColWidth > 0 {
		el.CreateAttr("defaultColWidth", formatFloat(f.DefaultColWidth))
	}
	h := f.DefaultRowHeight
	if h == 0 {
		h = 15
	}
	el.CreateAttr("defaultRowHeight", formatFloat(h))
	if f.CustomHeight {
		el.CreateAttr("customHeight", "1")
	}
	if f.ZeroHeight {
		el.CreateAttr("zeroHeight", "1")
	}
	if f.OutlineLevelRow > 0 {
		el.CreateAttr("outlineLevelRow", strconv.Itoa(f.OutlineLevelRow))
	}
	if f.OutlineLevelCol > 0 {
		el.CreateAttr("outlineLevelCol", strconv.Itoa(f.OutlineLevelCol))
	}
}

func appendSheetProtectionXML(parent *etree.Element, p document.SheetProtection) {
	if !p.Sheet {
		return
	}
	el := parent.CreateElement("sheetProtection")
	el.CreateAttr("sheet", "1")
	if p.Objects {
		el.CreateAttr("objects", "1")
	}
	if p.Scenarios {
		el.CreateAttr("scenarios", "1")
	}
	if !p.FormatCells {
		el.CreateAttr("formatCells", "0")
	}
	if !p.FormatColumns {
		el.CreateAttr("formatColumns", "0")
	}
	if !p.FormatRows {
		el.CreateAttr("formatRows", "0")
	}
	if !p.InsertColumns {
		el.CreateAttr("insertColumns", "0")
	}
	if !p.InsertRows {
		el.CreateAttr("insertRows", "0")
	}
	if !p.InsertHyperlinks {
		el.CreateAttr("insertHyperlinks", "0")
	}
	if !p.DeleteColumns {
		el.CreateAttr("deleteColumns", "0")
	}
	if !p.DeleteRows {
		el.CreateAttr("deleteRows", "0")
	}
	if p.SelectLockedCells {
		el.CreateAttr("selectLockedCells", "1")
	}
	if !p.Sort {
		el.CreateAttr("sort", "0")
	}
	if !p.AutoFilter {
		el.CreateAttr("autoFilter", "0")
	}
	if !p.PivotTables {
		el.CreateAttr("pivotTables", "0")
	}
	if p.SelectUnlockedCells {
		el.CreateAttr("selectUnlockedCells", "1")
	}
	if p.Password != "" {
		el.CreateAttr("password", p.Password)
	}
}

func appendPrintOptionsXML(parent *etree.Element, p document.PrintOptions) {
	if p == (document.PrintOptions{}) {
		return
	}
	el := parent.CreateElement("printOptions")
	if p.Headings {
		el.CreateAttr("headings", "1")
	}
	if p.GridLines {
		el.CreateAttr("gridLines", "1")
	}
	if p.HorizontalCentered {
		el.CreateAttr("horizontalCentered", "1")
	}
	if p.VerticalCentered {
		el.CreateAttr("verticalCentered", "1")
	}
}

func appendPageMarginsXML(parent *etree.Element, m document.PageMargins) {
	if m == (document.PageMargins{}) {
		m = document.DefaultPageMargins()
	}
	el := parent.CreateElement("pageMargins")
	el.CreateAttr("left", formatFloat(m.Left))
	el.CreateAttr("right", formatFloat(m.Right))
	el.CreateAttr("top", formatFloat(m.Top))
	el.CreateAttr("bottom", formatFloat(m.Bottom))
	el.CreateAttr("header", formatFloat(m.Header))
	el.CreateAttr("footer", formatFloat(m.Footer))
}

func appendPageSetupXML(parent *etree.Element, ps document.PageSetup) {
	def := document.DefaultPageSetup()
	if ps == def || ps == (document.PageSetup{}) {
		return
	}
	el := parent.CreateElement("pageSetup")
	if ps.PaperSize != 0 && ps.PaperSize != 1 {
		el.CreateAttr("paperSize", strconv.Itoa(ps.PaperSize))
	}
	if ps.Scale != 0 && ps.Scale != 100 {
		el.CreateAttr("scale", strconv.Itoa(ps.Scale))
	}
	if ps.FitToWidth > 0 {
		el.CreateAttr("fitToWidth", strconv.Itoa(ps.FitToWidth))
	}
	if ps.FitToHeight > 0 {
		el.CreateAttr("fitToHeight", strconv.Itoa(ps.FitToHeight))
	}
	if ps.PageOrder != "" && ps.PageOrder != "downThenOver" {
		el.CreateAttr("pageOrder", ps.PageOrder)
	}
	if ps.Orientation != "" && ps.Orientation != "portrait" {
		el.CreateAttr("orientation", ps.Orientation)
	}
	if ps.Draft {
		el.CreateAttr("draft", "1")
	}
	if ps.Copies > 1 {
		el.CreateAttr("copies", strconv.Itoa(ps.Copies))
	}
}

func appendHeaderFooterXML(parent *etree.Element, hf document.HeaderFooter) {
	if hf == (document.HeaderFooter{}) {
		return
	}
	el := parent.CreateElement("headerFooter")
	if hf.DifferentFirst {
		el.CreateAttr("differentFirst", "1")
	}
	if hf.DifferentOddEven {
		el.CreateAttr("differentOddEven", "1")
	}
	if hf.OddHeader != "" {
		el.CreateElement("oddHeader").SetText(hf.OddHeader)
	}
	if hf.OddFooter != "" {
		el.CreateElement("oddFooter").SetText(hf.OddFooter)
	}
	if hf.EvenHeader != "" {
		el.CreateElement("evenHeader").SetText(hf.EvenHeader)
	}
	if hf.EvenFooter != "" {
		el.CreateElement("evenFooter").SetText(hf.EvenFooter)
	}
	if hf.FirstHeader != "" {
		el.CreateElement("firstHeader").SetText(hf.FirstHeader)
	}
	if hf.FirstFooter != "" {
		el.CreateElement("firstFooter").SetText(hf.FirstFooter)
	}
}

// Parsers for the same elements, used on load. Missing elements leave the
// defaults in place.

func parseWorkbookProps(root *etree.Element, props *document.WorkbookProperties) {
	if el := root.SelectElement("fileVersion"); el != nil {
		props.FileVersion = document.FileVersion{
			AppName:      el.SelectAttrValue("appName", ""),
			LastEdited:   el.SelectAttrValue("lastEdited", ""),
			LowestEdited: el.SelectAttrValue("lowestEdited", ""),
			RupBuild:     el.SelectAttrValue("rupBuild", ""),
		}
	}
	if el := root.SelectElement("workbookPr"); el != nil {
		props.Pr = document.WorkbookPr{
			Date1904:      el.SelectAttrValue("date1904", "0") == "1",
			CodeName:      el.SelectAttrValue("codeName", ""),
			FilterPrivacy: el.SelectAttrValue("filterPrivacy", "0") == "1",
			BackupFile:    el.SelectAttrValue("backupFile", "0") == "1",
		}
	}
	if el := root.SelectElement("workbookProtection"); el != nil {
		props.Protection = document.WorkbookProtection{
			LockStructure:    el.SelectAttrValue("lockStructure", "0") == "1",
			LockWindows:      el.SelectAttrValue("lockWindows", "0") == "1",
			LockRevision:     el.SelectAttrValue("lockRevision", "0") == "1",
			WorkbookPassword: el.SelectAttrValue("workbookPassword", ""),
		}
	}
	if views := root.SelectElement("bookViews"); views != nil {
		if el := views.SelectElement("workbookView"); el != nil {
			v := document.DefaultWorkbookView()
			v.XWindow = atoiDefault(el.SelectAttrValue("xWindow", "0"), 0)
			v.YWindow = atoiDefault(el.SelectAttrValue("yWindow", "0"), 0)
			v.WindowWidth = atoiDefault(el.SelectAttrValue("windowWidth", "22260"), 22260)
			v.WindowHeight = atoiDefault(el.SelectAttrValue("windowHeight", "12645"), 12645)
			v.ActiveTab = atoiDefault(el.SelectAttrValue("activeTab", "0"), 0)
			v.FirstSheet = atoiDefault(el.SelectAttrValue("firstSheet", "0"), 0)
			v.TabRatio = atoiDefault(el.SelectAttrValue("tabRatio", "600"), 600)
			v.Visibility = el.SelectAttrValue("visibility", "visible")
			v.Minimized = el.SelectAttrValue("minimized", "0") == "1"
			props.View = v
		}
	}
	if el := root.SelectElement("calcPr"); el != nil {
		c := document.DefaultCalculation()
		c.CalcID = el.SelectAttrValue("calcId", "")
		c.CalcMode = el.SelectAttrValue("calcMode", "auto")
		c.FullCalcOnLoad = el.SelectAttrValue("fullCalcOnLoad", "0") == "1"
		c.Iterate = el.SelectAttrValue("iterate", "0") == "1"
		c.IterateCount = atoiDefault(el.SelectAttrValue("iterateCount", "100"), 100)
		props.Calculation = c
	}
	if names := root.SelectElement("definedNames"); names != nil {
		for _, el := range names.SelectElements("definedName") {
			dn := document.DefinedName{
				Name:         el.SelectAttrValue("name", ""),
				RefersTo:     el.Text(),
				LocalSheetID: atoiDefault(el.SelectAttrValue("localSheetId", "-1"), -1),
				Comment:      el.SelectAttrValue("comment", ""),
				Hidden:       el.SelectAttrValue("hidden", "0") == "1",
			}
			if dn.Name != "" {
				props.DefinedNames = append(props.DefinedNames, dn)
			}
		}
	}
}

func parseWorksheetProps(root *etree.Element, ws *document.Worksheet) {
	if views := root.SelectElement("sheetViews"); views != nil {
		if el := views.SelectElement("sheetView"); el != nil {
			v := document.DefaultSheetView()
			v.ShowFormulas = el.SelectAttrValue("showFormulas", "0") == "1"
			v.ShowGridLines = el.SelectAttrValue("showGridLines", "1") != "0"
			v.ShowRowColHeader = el.SelectAttrValue("showRowColHeaders", "1") != "0"
			v.ShowZeros = el.SelectAttrValue("showZeros", "1") != "0"
			v.RightToLeft = el.SelectAttrValue("rightToLeft", "0") == "1"
			v.TabSelected = el.SelectAttrValue("tabSelected", "0") == "1"
			v.View = el.SelectAttrValue("view", "normal")
			v.TopLeftCell = el.SelectAttrValue("topLeftCell", "")
			v.ZoomScale = atoiDefault(el.SelectAttrValue("zoomScale", "100"), 100)
			v.WorkbookViewID = atoiDefault(el.SelectAttrValue("workbookViewId", "0"), 0)
			ws.Props.View = v

			if p := el.SelectElement("pane"); p != nil {
				pane := &document.Pane{
					TopLeftCell: p.SelectAttrValue("topLeftCell", ""),
					ActivePane:  p.SelectAttrValue("activePane", ""),
					State:       p.SelectAttrValue("state", ""),
				}
				if f, err := strconv.ParseFloat(p.SelectAttrValue("xSplit", "0"), 64); err == nil {
					pane.XSplit = f
				}
				if f, err := strconv.ParseFloat(p.SelectAttrValue("ySplit", "0"), 64); err == nil {
					pane.YSplit = f
				}
				ws.Props.Pane = pane
			}
			if s := el.SelectElement("selection"); s != nil {
				ws.Props.Selection = document.Selection{
					ActiveCell: s.SelectAttrValue("activeCell", "A1"),
					SQRef:      s.SelectAttrValue("sqref", "A1"),
					PaneID:     s.SelectAttrValue("pane", ""),
				}
			}
		}
	}
	if el := root.SelectElement("sheetFormatPr"); el != nil {
		f := document.DefaultSheetFormat()
		f.BaseColWidth = atoiDefault(el.SelectAttrValue("baseColWidth", "8"), 8)
		if w, err := strconv.ParseFloat(el.SelectAttrValue("defaultColWidth", "0"), 64); err == nil {
			f.DefaultColWidth = w
		}
		if h, err := strconv.ParseFloat(el.SelectAttrValue("defaultRowHeight", "15"), 64); err == nil {
			f.DefaultRowHeight = h
		}
		f.CustomHeight = el.SelectAttrValue("customHeight", "0") == "1"
		f.ZeroHeight = el.SelectAttrValue("zeroHeight", "0") == "1"
		f.OutlineLevelRow = atoiDefault(el.SelectAttrValue("outlineLevelRow", "0"), 0)
		f.OutlineLevelCol = atoiDefault(el.SelectAttrValue("outlineLevelCol", "0"), 0)
		ws.Props.Format = f
	}
	if el := root.SelectElement("sheetProtection"); el != nil {
		p := document.DefaultSheetProtection()
		p.Sheet = el.SelectAttrValue("sheet", "0") == "1"
		p.Objects = el.SelectAttrValue("objects", "0") == "1"
		p.Scenarios = el.SelectAttrValue("scenarios", "0") == "1"
		p.FormatCells = el.SelectAttrValue("formatCells", "1") != "0"
		p.FormatColumns = el.SelectAttrValue("formatColumns", "1") != "0"
		p.FormatRows = el.SelectAttrValue("formatRows", "1") != "0"
		p.InsertColumns = el.SelectAttrValue("insertColumns", "1") != "0"
		p.InsertRows = el.SelectAttrValue("insertRows", "1") != "0"
		p.InsertHyperlinks = el.SelectAttrValue("insertHyperlinks", "1") != "0"
		p.DeleteColumns = el.SelectAttrValue("deleteColumns", "1") != "0"
		p.DeleteRows = el.SelectAttrValue("deleteRows", "1") != "0"
		p.Sort = el.SelectAttrValue("sort", "1") != "0"
		p.AutoFilter = el.SelectAttrValue("autoFilter", "1") != "0"
		p.PivotTables = el.SelectAttrValue("pivotTables", "1") != "0"
		p.SelectLockedCells = el.SelectAttrValue("selectLockedCells", "0") == "1"
		p.SelectUnlockedCells = el.SelectAttrValue("selectUnlockedCells", "0") == "1"
		p.Password = el.SelectAttrValue("password", "")
		ws.Props.Protection = p
	}
	if el := root.SelectElement("printOptions"); el != nil {
		ws.Props.PrintOptions = document.PrintOptions{
			Headings:           el.SelectAttrValue("headings", "0") == "1",
			GridLines:          el.SelectAttrValue("gridLines", "0") == "1",
			HorizontalCentered: el.SelectAttrValue("horizontalCentered", "0") == "1",
			VerticalCentered:   el.SelectAttrValue("verticalCentered", "0") == "1",
		}
	}
	if el := root.SelectElement("pageMargins"); el != nil {
		m := document.DefaultPageMargins()
		attr := func(name string, def float64) float64 {
			if f, err := strconv.ParseFloat(el.SelectAttrValue(name, ""), 64); err == nil {
				return f
			}
			return def
		}
		m.Left = attr("left", m.Left)
		m.Right = attr("right", m.Right)
		m.Top = attr("top", m.Top)
		m.Bottom = attr("bottom", m.Bottom)
		m.Header = attr("header", m.Header)
		m.Footer = attr("footer", m.Footer)
		ws.Props.PageMargins = m
	}
	if el := root.SelectElement("pageSetup"); el != nil {
		ps := document.DefaultPageSetup()
		ps.PaperSize = atoiDefault(el.SelectAttrValue("paperSize", "1"), 1)
		ps.Scale = atoiDefault(el.SelectAttrValue("scale", "100"), 100)
		ps.FitToWidth = atoiDefault(el.SelectAttrValue("fitToWidth", "0"), 0)
		ps.FitToHeight = atoiDefault(el.SelectAttrValue("fitToHeight", "0"), 0)
		ps.PageOrder = el.SelectAttrValue("pageOrder", "downThenOver")
		ps.Orientation = el.SelectAttrValue("orientation", "portrait")
		ps.Draft = el.SelectAttrValue("draft", "0") == "1"
		ps.Copies = atoiDefault(el.SelectAttrValue("copies", "1"), 1)
		ws.Props.PageSetup = ps
	}
	if el := root.SelectElement("headerFooter"); el != nil {
		hf := document.HeaderFooter{
			DifferentFirst:   el.SelectAttrValue("differentFirst", "0") == "1",
			DifferentOddEven: el.SelectAttrValue("differentOddEven", "0") == "1",
		}
		if h := el.SelectElement("oddHeader"); h != nil {
			hf.OddHeader = h.Text()
		}
		if h := el.SelectElement("oddFooter"); h != nil {
			hf.OddFooter = h.Text()
		}
		if h := el.SelectElement("evenHeader"); h != nil {
			hf.EvenHeader = h.Text()
		}
		if h := el.SelectElement("evenFooter"); h != nil {
			hf.EvenFooter = h.Text()
		}
		if h := el.SelectElement("firstHeader"); h != nil {
			hf.FirstHeader = h.Text()
		}
		if h := el.SelectElement("firstFooter"); h != nil {
			hf.FirstFooter = h.Text()
		}
		ws.Props.HeaderFooter = hf
	}
}
