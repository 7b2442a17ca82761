package convert

import (
	"encoding/json"
	"io"
	"strings"

	"xlc/document"
)

// JSONSaveOptions controls JSON export.
type JSONSaveOptions struct {
	Indent            int
	IncludeSheetNames bool
	SkipEmptyRows     bool
	SheetIndex        int // -1 exports all worksheets
	DateLayout        string
	DateTimeLayout    string
	TimeLayout        string
}

func DefaultJSONSaveOptions() JSONSaveOptions {
	return JSONSaveOptions{
		Indent:            2,
		IncludeSheetNames: true,
		SheetIndex:        -1,
		DateLayout:        "2006-01-02",
		DateTimeLayout:    "2006-01-02 15:04:05",
		TimeLayout:        "15:04:05",
	}
}

type jsonSheet struct {
	Name string  `json:"name,omitempty"`
	Data [][]any `json:"data"`
}

type jsonWorkbook struct {
	Worksheets []jsonSheet `json:"worksheets"`
}

// SaveJSON writes worksheet data as a two dimensional value array per sheet.
// Untouched cells come out as null.
func SaveJSON(w io.Writer, wb *document.Workbook, opts JSONSaveOptions) error {
	sheets := wb.Worksheets
	if opts.SheetIndex >= 0 {
		ws, err := wb.Worksheet(opts.SheetIndex)
		if err != nil {
			return err
		}
		sheets = []*document.Worksheet{ws}
	}

	out := jsonWorkbook{Worksheets: make([]jsonSheet, 0, len(sheets))}
	for _, ws := range sheets {
		entry := jsonSheet{Data: sheetValues(ws, &opts)}
		if opts.IncludeSheetNames {
			entry.Name = ws.Name
		}
		out.Worksheets = append(out.Worksheets, entry)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if opts.Indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", opts.Indent))
	}
	return enc.Encode(out)
}

func sheetValues(ws *document.Worksheet, opts *JSONSaveOptions) [][]any {
	maxRow, maxCol, ok := ws.Cells.Bounds()
	if !ok {
		return [][]any{}
	}
	rows := make([][]any, 0, maxRow)
	for row := 1; row <= maxRow; row++ {
		data := make([]any, maxCol)
		empty := true
		for col := 1; col <= maxCol; col++ {
			cell, found := ws.Cells.Lookup(row, col)
			if !found {
				continue
			}
			if v := jsonValue(cell.Value, opts); v != nil {
				data[col-1] = v
				empty = false
			}
		}
		if opts.SkipEmptyRows && empty {
			continue
		}
		rows = append(rows, data)
	}
	return rows
}

// jsonValue maps a cell value to its JSON shape: booleans and numbers keep
// their types, dates become formatted strings, the absent value is null.
func jsonValue(v document.Value, opts *JSONSaveOptions) any {
	switch v.Kind() {
	case document.ValueKindBool:
		return v.Bool()
	case document.ValueKindNumber:
		if v.IsInt() {
			return v.Int()
		}
		return v.Float()
	case document.ValueKindText, document.ValueKindError:
		return v.Text()
	case document.ValueKindDateTime:
		return renderTime(v.Time(), opts.DateLayout, opts.DateTimeLayout, opts.TimeLayout)
	}
	return nil
}
