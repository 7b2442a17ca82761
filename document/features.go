package document

import "fmt"

// Hyperlink attaches a link to a cell reference. Target is the external URL
// (written through a worksheet relationship), Location an in-document anchor
// like "Sheet2!A1". Exactly one of the two is normally set.
type Hyperlink struct {
	Ref      string
	Target   string
	Location string
	Display  string
	Tooltip  string
}

// IsExternal reports whether the link needs a relationship entry.
func (h *Hyperlink) IsExternal() bool { return h.Target != "" }

// CustomFilter is one customFilters criterion.
type CustomFilter struct {
	Operator string // equal, notEqual, greaterThan, greaterThanOrEqual, lessThan, lessThanOrEqual
	Value    string
}

// Top10Filter mirrors the top10 filter element.
type Top10Filter struct {
	Top     bool
	Percent bool
	Value   float64
}

// FilterColumn holds the criteria applied to one auto-filter column.
// ColID is zero-based relative to the filter range.
type FilterColumn struct {
	ColID         int
	Values        []string
	CustomFilters []CustomFilter
	CustomAnd     bool
	Top10         *Top10Filter
	DynamicType   string
	ShowButton    bool
}

// AutoFilter is the sheet auto-filter. A nil Range means no filter.
type AutoFilter struct {
	Range   string
	Columns []*FilterColumn
}

// Column returns the filter column for colID, creating it on first use.
func (af *AutoFilter) Column(colID int) *FilterColumn {
	for _, fc := range af.Columns {
		if fc.ColID == colID {
			return fc
		}
	}
	fc := &FilterColumn{ColID: colID, ShowButton: true}
	af.Columns = append(af.Columns, fc)
	return fc
}

// DataValidation is one dataValidation rule. ShowDropdown follows the model
// meaning (true = dropdown visible); the codec inverts it into the
// showDropDown attribute per ECMA-376.
type DataValidation struct {
	SQRef            string
	Type             string // none, whole, decimal, list, date, time, textLength, custom
	Operator         string // between, notBetween, equal, notEqual, lessThan, lessThanOrEqual, greaterThan, greaterThanOrEqual
	Formula1         string
	Formula2         string
	AlertStyle       string // stop, warning, information
	AllowBlank       bool
	ShowDropdown     bool
	ShowInputMessage bool
	ShowErrorMessage bool
	InputTitle       string
	InputMessage     string
	ErrorTitle       string
	ErrorMessage     string
}

// NewDataValidation returns a rule with the model defaults applied.
func NewDataValidation(sqref string) *DataValidation {
	return &DataValidation{
		SQRef:            sqref,
		Type:             "none",
		Operator:         "between",
		AlertStyle:       "stop",
		AllowBlank:       true,
		ShowDropdown:     true,
		ShowErrorMessage: true,
	}
}

// ColorScale is the colorScale rule payload. MidColor is empty for two-color
// scales.
type ColorScale struct {
	MinColor string
	MidColor string
	MaxColor string
}

// DataBar is the dataBar rule payload.
type DataBar struct {
	Color string
}

// IconSet is the iconSet rule payload.
type IconSet struct {
	Type      string
	Reverse   bool
	IconsOnly bool
}

// ConditionalFormat is a single conditional formatting rule over Range.
// Dxf* fields carry the differential formatting written into the styles part
// for rule types that highlight cells.
type ConditionalFormat struct {
	Range      string
	Type       string // cellIs, containsText, notContainsText, beginsWith, endsWith, expression, duplicateValues, uniqueValues, top10, aboveAverage, colorScale, dataBar, iconSet
	Operator   string
	Formula1   string
	Formula2   string
	Text       string
	Priority   int
	StopIfTrue bool

	Rank    int
	Percent bool
	Bottom  bool

	ColorScale *ColorScale
	DataBar    *DataBar
	IconSet    *IconSet

	DxfFont *Font
	DxfFill *Fill
}

// NeedsDxf reports whether the rule references a differential format record.
func (cf *ConditionalFormat) NeedsDxf() bool {
	return cf.DxfFont != nil || cf.DxfFill != nil
}

// Comment is a cell note rendered through the legacy comments + VML parts.
// Width and Height are in points; zero means the default box size.
type Comment struct {
	Ref    string
	Author string
	Text   string
	Width  float64
	Height float64
}

// HashPassword computes the legacy 16-bit ECMA-376 protection hash used by
// sheet and workbook protection elements. Characters are folded last to
// first with a 15-bit rotate, then mixed with the length and a constant.
func HashPassword(password string) string {
	if password == "" {
		return ""
	}
	h := 0
	runes := []rune(password)
	for i := len(runes) - 1; i >= 0; i-- {
		h ^= int(runes[i])
		h = ((h << 1) | (h >> 14)) & 0x7FFF
	}
	h ^= len(runes)
	h ^= 0xCE4B
	return fmt.Sprintf("%04X", h)
}
