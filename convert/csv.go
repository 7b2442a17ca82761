package convert

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"xlc/document"
)

// CSVLoadOptions controls delimited text import.
type CSVLoadOptions struct {
	Comma           rune
	HasHeader       bool
	SkipRows        int
	AutoDetectTypes bool
	DateLayouts     []string
	TrueValues      []string
	FalseValues     []string
}

// defaultDateLayouts lists the layouts tried during typed import, date-only
// forms first. A layout containing a clock produces a timestamp with time of
// day preserved.
var defaultDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"02-01-2006 15:04:05",
	"02/01/2006 15:04:05",
	"01-02-2006 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"01-02-2006",
	"01/02/2006",
}

func DefaultCSVLoadOptions() CSVLoadOptions {
	return CSVLoadOptions{
		Comma:           ',',
		AutoDetectTypes: true,
		DateLayouts:     defaultDateLayouts,
		TrueValues:      []string{"TRUE", "True", "true", "YES", "Yes", "yes", "1"},
		FalseValues:     []string{"FALSE", "False", "false", "NO", "No", "no", "0"},
	}
}

// LoadCSV reads delimited text into a fresh single-sheet workbook. Ragged
// rows are accepted, every field lands in its own cell.
func LoadCSV(r io.Reader, opts CSVLoadOptions) (*document.Workbook, error) {
	wb := document.New()
	ws, err := wb.AddWorksheet("Sheet1")
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	for skip := 0; skip < opts.SkipRows; skip++ {
		if _, err := cr.Read(); err == io.EOF {
			return wb, nil
		} else if err != nil {
			return nil, fmt.Errorf("unable to skip row %d: %w", skip+1, err)
		}
	}

	row := 0
	if opts.HasHeader {
		record, err := cr.Read()
		if err == io.EOF {
			return wb, nil
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read header row: %w", err)
		}
		row = 1
		for col, field := range record {
			if err := ws.Cells.SetValue(row, col+1, document.TextValue(field)); err != nil {
				return nil, err
			}
		}
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read row %d: %w", row+1, err)
		}
		row++
		for col, field := range record {
			v := document.TextValue(field)
			if opts.AutoDetectTypes {
				v = parseTypedValue(field, &opts)
			}
			if v.IsNil() {
				continue
			}
			if err := ws.Cells.SetValue(row, col+1, v); err != nil {
				return nil, err
			}
		}
	}
	return wb, nil
}

// parseTypedValue infers a cell value from its text form. Recognition order
// is boolean, integer, float, date, falling back to text.
func parseTypedValue(s string, opts *CSVLoadOptions) document.Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return document.Value{}
	}
	for _, t := range opts.TrueValues {
		if trimmed == t {
			return document.BoolValue(true)
		}
	}
	for _, f := range opts.FalseValues {
		if trimmed == f {
			return document.BoolValue(false)
		}
	}
	if !strings.ContainsAny(trimmed, ".eE") {
		if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return document.IntValue(i)
		}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return document.NumberValue(f)
	}
	for _, layout := range opts.DateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return document.TimeValue(t)
		}
	}
	return document.TextValue(s)
}

// CSVSaveOptions controls delimited text export.
type CSVSaveOptions struct {
	Comma          rune
	UseCRLF        bool
	WriteBOM       bool
	SheetIndex     int
	DateLayout     string
	DateTimeLayout string
	TimeLayout     string
}

func DefaultCSVSaveOptions() CSVSaveOptions {
	return CSVSaveOptions{
		Comma:          ',',
		UseCRLF:        true,
		DateLayout:     "2006-01-02",
		DateTimeLayout: "2006-01-02 15:04:05",
		TimeLayout:     "15:04:05",
	}
}

// SaveCSV writes one worksheet as delimited text. The used range is emitted
// densely, untouched positions become empty fields.
func SaveCSV(w io.Writer, wb *document.Workbook, opts CSVSaveOptions) error {
	ws, err := wb.Worksheet(opts.SheetIndex)
	if err != nil {
		return err
	}
	if opts.WriteBOM {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(w)
	if opts.Comma != 0 {
		cw.Comma = opts.Comma
	}
	cw.UseCRLF = opts.UseCRLF

	maxRow, maxCol, ok := ws.Cells.Bounds()
	if !ok {
		cw.Flush()
		return cw.Error()
	}
	record := make([]string, maxCol)
	for row := 1; row <= maxRow; row++ {
		for col := 1; col <= maxCol; col++ {
			record[col-1] = ""
			if cell, ok := ws.Cells.Lookup(row, col); ok {
				record[col-1] = formatCellText(cell, &opts)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCellText(cell *document.Cell, opts *CSVSaveOptions) string {
	v := cell.Value
	switch v.Kind() {
	case document.ValueKindNil:
		return ""
	case document.ValueKindBool:
		if v.Bool() {
			return "TRUE"
		}
		return "FALSE"
	case document.ValueKindText, document.ValueKindError:
		return v.Text()
	case document.ValueKindDateTime:
		return renderTime(v.Time(), opts.DateLayout, opts.DateTimeLayout, opts.TimeLayout)
	case document.ValueKindNumber:
		if s, ok := formatNumberWithCode(v.Float(), cell.Style.NumberFormat); ok {
			return s
		}
		if v.IsInt() {
			return strconv.FormatInt(v.Int(), 10)
		}
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	}
	return ""
}

// renderTime picks the layout by the shape of the timestamp: a clock on the
// serial epoch day is time of day only, a zero clock is a bare date.
func renderTime(t time.Time, dateLayout, datetimeLayout, timeLayout string) string {
	h, m, s := t.Clock()
	if t.Year() <= 1899 {
		return t.Format(timeLayout)
	}
	if h == 0 && m == 0 && s == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(datetimeLayout)
}
