package document

// Style components are plain comparable value types so the codec can use them
// directly as map keys when interning. All color values are 8-digit ARGB hex.

// Font describes character formatting of a cell.
type Font struct {
	Name          string
	Size          float64
	Color         string
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
}

func DefaultFont() Font {
	return Font{Name: "Calibri", Size: 11, Color: "FF000000"}
}

// Fill describes the cell background pattern.
type Fill struct {
	Pattern         string
	ForegroundColor string
	BackgroundColor string
}

func DefaultFill() Fill {
	return Fill{Pattern: "none", ForegroundColor: "FFFFFFFF", BackgroundColor: "FFFFFFFF"}
}

// Gray125Fill is the fixed second fill every stylesheet carries.
func Gray125Fill() Fill {
	return Fill{Pattern: "gray125", ForegroundColor: "FFFFFFFF", BackgroundColor: "FFFFFFFF"}
}

// SolidFill returns a solid fill of the given color.
func SolidFill(color string) Fill {
	return Fill{Pattern: "solid", ForegroundColor: color, BackgroundColor: color}
}

// BorderEdge describes a single border line.
type BorderEdge struct {
	Style string
	Color string
}

func DefaultBorderEdge() BorderEdge {
	return BorderEdge{Style: "none", Color: "FF000000"}
}

// Borders describes the four sides of a cell plus the diagonal line.
type Borders struct {
	Left         BorderEdge
	Right        BorderEdge
	Top          BorderEdge
	Bottom       BorderEdge
	Diagonal     BorderEdge
	DiagonalUp   bool
	DiagonalDown bool
}

func DefaultBorders() Borders {
	e := DefaultBorderEdge()
	return Borders{Left: e, Right: e, Top: e, Bottom: e, Diagonal: e}
}

// Alignment describes text placement within a cell.
type Alignment struct {
	Horizontal   string // general, left, center, right, fill, justify, centerContinuous, distributed
	Vertical     string // top, center, bottom, justify, distributed
	WrapText     bool
	Indent       int
	TextRotation int
	ShrinkToFit  bool
	ReadingOrder int
}

func DefaultAlignment() Alignment {
	return Alignment{Horizontal: "general", Vertical: "bottom"}
}

// Protection describes cell behavior when the sheet is protected.
type Protection struct {
	Locked bool
	Hidden bool
}

func DefaultProtection() Protection {
	return Protection{Locked: true}
}

// Style aggregates all formatting of a single cell. Styles are value types;
// assigning one to a cell takes a copy.
type Style struct {
	Font         Font
	Fill         Fill
	Borders      Borders
	Alignment    Alignment
	Protection   Protection
	NumberFormat string
}

func DefaultStyle() Style {
	return Style{
		Font:         DefaultFont(),
		Fill:         DefaultFill(),
		Borders:      DefaultBorders(),
		Alignment:    DefaultAlignment(),
		Protection:   DefaultProtection(),
		NumberFormat: "General",
	}
}

// IsDefault reports whether the style is byte-for-byte the default style.
// Cells carrying it map to the reserved cellXf 0 without any table lookups.
func (s Style) IsDefault() bool {
	return s == DefaultStyle()
}

// CustomNumFmtBase is the first number format id available for custom codes.
// Ids below it are reserved for the builtin table.
const CustomNumFmtBase = 164

// builtinFormats holds the ECMA-376 implied number formats. Ids 50-82 repeat
// codes of lower ids and exist only for forward resolution.
var builtinFormats = map[int]string{
	0:  "General",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	5:  "$#,##0_);($#,##0)",
	6:  "$#,##0_);[Red]($#,##0)",
	7:  "$#,##0.00_);($#,##0.00)",
	8:  "$#,##0.00_);[Red]($#,##0.00)",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	12: "# ?/?",
	13: "# ??/??",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	37: "#,##0_);(#,##0)",
	38: "#,##0_);[Red](#,##0)",
	39: "#,##0.00_);(#,##0.00)",
	40: "#,##0.00_);[Red](#,##0.00)",
	41: `_(* #,##0_);_(* (#,##0);_(* "-"_);_(@_)`,
	42: `_($* #,##0_);_($* (#,##0);_($* "-"_);_(@_)`,
	43: `_(* #,##0.00_);_(* (#,##0.00);_(* "-"??_);_(@_)`,
	44: `_($* #,##0.00_);_($* (#,##0.00);_($* "-"??_);_(@_)`,
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mm:ss.0",
	48: "##0.0E+0",
	49: "@",
}

// builtinByCode maps format code back to the lowest id carrying it.
var builtinByCode = func() map[string]int {
	m := make(map[string]int, len(builtinFormats))
	for id := 0; id <= 49; id++ {
		code, ok := builtinFormats[id]
		if !ok {
			continue
		}
		if _, dup := m[code]; !dup {
			m[code] = id
		}
	}
	return m
}()

// BuiltinFormatCode resolves a builtin number format id to its code.
// Unknown ids resolve to General, matching tolerant load behavior.
func BuiltinFormatCode(id int) string {
	if code, ok := builtinFormats[id]; ok {
		return code
	}
	if id >= 50 && id <= 82 {
		// Repeated accounting pair pattern.
		switch {
		case id == 50:
			return "General"
		case id%2 == 0:
			return "0_);[Red](0)"
		default:
			return "0_);(0)"
		}
	}
	return "General"
}

// LookupBuiltinFormat returns the builtin id for a format code, if any.
func LookupBuiltinFormat(code string) (int, bool) {
	id, ok := builtinByCode[code]
	return id, ok
}
