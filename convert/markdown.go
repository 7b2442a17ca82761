package convert

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"xlc/config"
	"xlc/document"
)

// MarkdownSaveOptions controls markdown table export.
type MarkdownSaveOptions struct {
	DefaultAlignment  config.MdAlignment
	HeaderLevel       int
	IncludeSheetNames bool
	FirstRowAsHeader  bool
	EscapePipes       bool
	CompactFormat     bool
	SimpleSeparators  bool
	SkipEmptyRows     bool
	DetectTitleRows   bool
	SheetIndex        int // -1 exports all worksheets
	DateLayout        string
	DateTimeLayout    string
	TimeLayout        string
}

func DefaultMarkdownSaveOptions() MarkdownSaveOptions {
	return MarkdownSaveOptions{
		HeaderLevel:       2,
		IncludeSheetNames: true,
		FirstRowAsHeader:  true,
		EscapePipes:       true,
		CompactFormat:     true,
		SheetIndex:        -1,
		DateLayout:        "2006-01-02",
		DateTimeLayout:    "2006-01-02 15:04:05",
		TimeLayout:        "15:04:05",
	}
}

// SaveMarkdown writes worksheet data as markdown tables. Column alignment
// follows explicit cell alignment of the header row when present, the
// configured default otherwise.
func SaveMarkdown(w io.Writer, wb *document.Workbook, opts MarkdownSaveOptions) error {
	sheets := wb.Worksheets
	if opts.SheetIndex >= 0 {
		ws, err := wb.Worksheet(opts.SheetIndex)
		if err != nil {
			return err
		}
		sheets = []*document.Worksheet{ws}
	}

	var out strings.Builder
	for i, ws := range sheets {
		if i > 0 {
			out.WriteString("\n\n")
		}
		if opts.IncludeSheetNames {
			fmt.Fprintf(&out, "%s %s\n\n", strings.Repeat("#", opts.HeaderLevel), ws.Name)
		}
		rows, aligns := sheetTable(ws, &opts)
		if len(rows) == 0 {
			out.WriteString("*No data*\n")
			continue
		}
		if opts.DetectTitleRows {
			writeTablesWithTitles(&out, rows, aligns, &opts)
		} else {
			writeTable(&out, rows, aligns, &opts)
		}
	}
	_, err := io.WriteString(w, out.String())
	return err
}

// sheetTable renders the used range into formatted strings and derives the
// per-column alignment.
func sheetTable(ws *document.Worksheet, opts *MarkdownSaveOptions) ([][]string, []config.MdAlignment) {
	maxRow, maxCol, ok := ws.Cells.Bounds()
	if !ok {
		return nil, nil
	}
	aligns := make([]config.MdAlignment, maxCol)
	for col := 1; col <= maxCol; col++ {
		aligns[col-1] = opts.DefaultAlignment
		if cell, found := ws.Cells.Lookup(1, col); found {
			switch cell.Style.Alignment.Horizontal {
			case "center":
				aligns[col-1] = config.MdAlignmentCenter
			case "right":
				aligns[col-1] = config.MdAlignmentRight
			case "left":
				aligns[col-1] = config.MdAlignmentLeft
			}
		}
	}
	rows := make([][]string, 0, maxRow)
	for row := 1; row <= maxRow; row++ {
		data := make([]string, maxCol)
		for col := 1; col <= maxCol; col++ {
			if cell, found := ws.Cells.Lookup(row, col); found {
				data[col-1] = markdownCellText(cell, opts)
			}
		}
		rows = append(rows, data)
	}
	return rows, aligns
}

func isEmptyTextRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// isTitleTextRow reports a row where only the first cell carries data.
func isTitleTextRow(row []string) bool {
	if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
		return false
	}
	for _, v := range row[1:] {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// writeTablesWithTitles converts single-cell rows into headings one level
// below the sheet heading and renders the rows between them as tables.
func writeTablesWithTitles(out *strings.Builder, rows [][]string, aligns []config.MdAlignment, opts *MarkdownSaveOptions) {
	var pending [][]string
	flush := func() {
		for len(pending) > 0 && isEmptyTextRow(pending[0]) {
			pending = pending[1:]
		}
		if len(pending) > 0 {
			writeTable(out, pending, aligns, opts)
		}
		pending = nil
	}
	for _, row := range rows {
		switch {
		case isEmptyTextRow(row):
			if !opts.SkipEmptyRows {
				pending = append(pending, row)
			}
		case isTitleTextRow(row):
			flush()
			fmt.Fprintf(out, "\n%s %s\n\n", strings.Repeat("#", opts.HeaderLevel+1), strings.TrimSpace(row[0]))
		default:
			pending = append(pending, row)
		}
	}
	flush()
}

func writeTable(out *strings.Builder, rows [][]string, aligns []config.MdAlignment, opts *MarkdownSaveOptions) {
	if opts.SkipEmptyRows {
		kept := rows[:0:0]
		for i, row := range rows {
			if i > 0 && isEmptyTextRow(row) {
				continue
			}
			kept = append(kept, row)
		}
		rows = kept
	}
	if len(rows) == 0 {
		return
	}
	numCols := len(aligns)

	widths := make([]int, numCols)
	for i := range widths {
		widths[i] = 3
	}
	for _, row := range rows {
		for i, v := range row {
			if len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}

	header := rows[0]
	data := rows[1:]
	if !opts.FirstRowAsHeader {
		header = make([]string, numCols)
		for i := range header {
			header[i] = "Column " + strconv.Itoa(i+1)
			if len(header[i]) > widths[i] {
				widths[i] = len(header[i])
			}
		}
		data = rows
	}

	writeRow := func(row []string) {
		out.WriteString("|")
		for i, v := range row {
			if !opts.CompactFormat {
				v = padCell(v, widths[i], aligns[i])
			}
			out.WriteString(" " + v + " |")
		}
		out.WriteString("\n")
	}
	writeRow(header)

	out.WriteString("|")
	for i := range aligns {
		out.WriteString(" " + separatorCell(widths[i], aligns[i], opts) + " |")
	}
	out.WriteString("\n")

	for _, row := range data {
		writeRow(row)
	}
}

func separatorCell(width int, align config.MdAlignment, opts *MarkdownSaveOptions) string {
	if opts.SimpleSeparators {
		return "---"
	}
	if opts.CompactFormat {
		switch align {
		case config.MdAlignmentCenter:
			return ":---:"
		case config.MdAlignmentRight:
			return "---:"
		default:
			return "---"
		}
	}
	switch align {
	case config.MdAlignmentCenter:
		return ":" + strings.Repeat("-", width) + ":"
	case config.MdAlignmentRight:
		return strings.Repeat("-", width+1) + ":"
	default:
		return ":" + strings.Repeat("-", width+1)
	}
}

func padCell(v string, width int, align config.MdAlignment) string {
	if len(v) >= width {
		return v
	}
	gap := width - len(v)
	switch align {
	case config.MdAlignmentCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + v + strings.Repeat(" ", gap-left)
	case config.MdAlignmentRight:
		return strings.Repeat(" ", gap) + v
	default:
		return v + strings.Repeat(" ", gap)
	}
}

// markdownCellText renders a value for a table cell: newlines collapse to
// spaces and pipes are escaped so the table structure survives.
func markdownCellText(cell *document.Cell, opts *MarkdownSaveOptions) string {
	var result string
	v := cell.Value
	switch v.Kind() {
	case document.ValueKindNil:
		return ""
	case document.ValueKindBool:
		if v.Bool() {
			result = "Yes"
		} else {
			result = "No"
		}
	case document.ValueKindText, document.ValueKindError:
		result = v.Text()
	case document.ValueKindDateTime:
		result = renderTime(v.Time(), opts.DateLayout, opts.DateTimeLayout, opts.TimeLayout)
	case document.ValueKindNumber:
		if v.IsInt() {
			result = strconv.FormatInt(v.Int(), 10)
		} else {
			result = strconv.FormatFloat(v.Float(), 'g', 10, 64)
		}
	}

	result = strings.ReplaceAll(result, "\r\n", " ")
	result = strings.ReplaceAll(result, "\n", " ")
	result = strings.ReplaceAll(result, "\r", " ")
	result = strings.TrimSpace(result)
	if opts.EscapePipes {
		result = strings.ReplaceAll(result, "|", `\|`)
	}
	return result
}
