package document

import "time"

// FileVersion mirrors the workbook.xml fileVersion element.
type FileVersion struct {
	AppName      string
	LastEdited   string
	LowestEdited string
	RupBuild     string
}

func DefaultFileVersion() FileVersion {
	return FileVersion{AppName: "xl", LastEdited: "7", LowestEdited: "0", RupBuild: "12345"}
}

// WorkbookPr mirrors workbookPr. The codec only emits attributes that differ
// from defaults.
type WorkbookPr struct {
	Date1904      bool
	CodeName      string
	FilterPrivacy bool
	BackupFile    bool
}

// WorkbookProtection mirrors workbookProtection. Passwords are stored as the
// legacy 16-bit hex hash produced by HashPassword.
type WorkbookProtection struct {
	LockStructure    bool
	LockWindows      bool
	LockRevision     bool
	WorkbookPassword string
}

// WorkbookView mirrors a single bookViews/workbookView.
type WorkbookView struct {
	XWindow      int
	YWindow      int
	WindowWidth  int
	WindowHeight int
	ActiveTab    int
	FirstSheet   int
	TabRatio     int
	Visibility   string
	Minimized    bool
}

func DefaultWorkbookView() WorkbookView {
	return WorkbookView{WindowWidth: 22260, WindowHeight: 12645, TabRatio: 600, Visibility: "visible"}
}

// Calculation mirrors calcPr.
type Calculation struct {
	CalcID         string
	CalcMode       string
	FullCalcOnLoad bool
	Iterate        bool
	IterateCount   int
	IterateDelta   float64
}

func DefaultCalculation() Calculation {
	return Calculation{CalcMode: "auto", IterateCount: 100, IterateDelta: 0.001}
}

// DefinedName is one definedNames entry. LocalSheetID below zero means the
// name has workbook scope.
type DefinedName struct {
	Name         string
	RefersTo     string
	LocalSheetID int
	Comment      string
	Hidden       bool
}

// WorkbookProperties aggregates all workbook.xml level settings.
type WorkbookProperties struct {
	FileVersion  FileVersion
	Pr           WorkbookPr
	Protection   WorkbookProtection
	View         WorkbookView
	Calculation  Calculation
	DefinedNames []DefinedName
}

func DefaultWorkbookProperties() WorkbookProperties {
	return WorkbookProperties{
		FileVersion: DefaultFileVersion(),
		View:        DefaultWorkbookView(),
		Calculation: DefaultCalculation(),
	}
}

// SheetView mirrors sheetViews/sheetView.
type SheetView struct {
	ShowFormulas     bool
	ShowGridLines    bool
	ShowRowColHeader bool
	ShowZeros        bool
	RightToLeft      bool
	TabSelected      bool
	View             string // normal, pageBreakPreview, pageLayout
	TopLeftCell      string
	ZoomScale        int
	WorkbookViewID   int
}

func DefaultSheetView() SheetView {
	return SheetView{ShowGridLines: true, ShowRowColHeader: true, ShowZeros: true, View: "normal", ZoomScale: 100}
}

// Pane mirrors the frozen/split pane of a sheet view.
type Pane struct {
	XSplit      float64
	YSplit      float64
	TopLeftCell string
	ActivePane  string
	State       string // frozen, split, frozenSplit
}

// Selection mirrors sheetView/selection.
type Selection struct {
	ActiveCell string
	SQRef      string
	PaneID     string
}

func DefaultSelection() Selection {
	return Selection{ActiveCell: "A1", SQRef: "A1"}
}

// SheetFormat mirrors sheetFormatPr.
type SheetFormat struct {
	BaseColWidth     int
	DefaultColWidth  float64
	DefaultRowHeight float64
	CustomHeight     bool
	ZeroHeight       bool
	OutlineLevelRow  int
	OutlineLevelCol  int
}

func DefaultSheetFormat() SheetFormat {
	return SheetFormat{BaseColWidth: 8, DefaultRowHeight: 15}
}

// SheetProtection mirrors sheetProtection. Password keeps the legacy hash.
type SheetProtection struct {
	Sheet               bool
	Objects             bool
	Scenarios           bool
	FormatCells         bool
	FormatColumns       bool
	FormatRows          bool
	InsertColumns       bool
	InsertRows          bool
	InsertHyperlinks    bool
	DeleteColumns       bool
	DeleteRows          bool
	Sort                bool
	AutoFilter          bool
	PivotTables         bool
	SelectLockedCells   bool
	SelectUnlockedCells bool
	Password            string
}

func DefaultSheetProtection() SheetProtection {
	return SheetProtection{
		FormatCells: true, FormatColumns: true, FormatRows: true,
		InsertColumns: true, InsertRows: true, InsertHyperlinks: true,
		DeleteColumns: true, DeleteRows: true,
		Sort: true, AutoFilter: true, PivotTables: true,
	}
}

// PrintOptions mirrors printOptions.
type PrintOptions struct {
	Headings           bool
	GridLines          bool
	HorizontalCentered bool
	VerticalCentered   bool
}

// PageMargins mirrors pageMargins, values in inches.
type PageMargins struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
	Header float64
	Footer float64
}

func DefaultPageMargins() PageMargins {
	return PageMargins{Left: 0.7, Right: 0.7, Top: 0.75, Bottom: 0.75, Header: 0.3, Footer: 0.3}
}

// PageSetup mirrors pageSetup.
type PageSetup struct {
	PaperSize   int
	Scale       int
	FitToWidth  int
	FitToHeight int
	Orientation string // portrait, landscape
	PageOrder   string
	Draft       bool
	Copies      int
}

func DefaultPageSetup() PageSetup {
	return PageSetup{PaperSize: 1, Scale: 100, Orientation: "portrait", PageOrder: "downThenOver", Copies: 1}
}

// HeaderFooter mirrors headerFooter.
type HeaderFooter struct {
	DifferentFirst   bool
	DifferentOddEven bool
	OddHeader        string
	OddFooter        string
	EvenHeader       string
	EvenFooter       string
	FirstHeader      string
	FirstFooter      string
}

// WorksheetProperties aggregates all per-sheet settings outside sheetData.
type WorksheetProperties struct {
	View         SheetView
	Selection    Selection
	Pane         *Pane
	Format       SheetFormat
	Protection   SheetProtection
	PrintOptions PrintOptions
	PageMargins  PageMargins
	PageSetup    PageSetup
	HeaderFooter HeaderFooter
}

func DefaultWorksheetProperties() WorksheetProperties {
	return WorksheetProperties{
		View:        DefaultSheetView(),
		Selection:   DefaultSelection(),
		Format:      DefaultSheetFormat(),
		Protection:  DefaultSheetProtection(),
		PageMargins: DefaultPageMargins(),
		PageSetup:   DefaultPageSetup(),
	}
}

// DocumentProperties carries docProps/core.xml and docProps/app.xml fields.
type DocumentProperties struct {
	Title          string
	Subject        string
	Creator        string
	Keywords       string
	Description    string
	LastModifiedBy string
	Revision       string
	Category       string
	ContentStatus  string
	Language       string
	Version        string
	Created        time.Time
	Modified       time.Time

	Application string
	AppVersion  string
	Company     string
	Manager     string
	DocSecurity int
}

func DefaultDocumentProperties() DocumentProperties {
	return DocumentProperties{Application: "Microsoft Excel"}
}
