package convert

import (
	"sort"

	"github.com/maruel/natural"

	"xlc/utils/debug"
)

// String returns a readable tree of the parsed input. It exists solely for
// manual inspection during debugging.
func (in *input) String() string {
	if in == nil || in.wb == nil {
		return "<nil input>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Workbook[%s] ref[%s] sheets[%d]", in.srcName, in.refID, len(in.wb.Worksheets))
	if in.wb.DocProps.Title != "" {
		tw.TextBlock(1, "Title", in.wb.DocProps.Title)
	}
	if in.wb.DocProps.Creator != "" {
		tw.TextBlock(1, "Creator", in.wb.DocProps.Creator)
	}

	names := make([]string, 0, len(in.wb.Worksheets))
	for _, ws := range in.wb.Worksheets {
		names = append(names, ws.Name)
	}
	sort.Sort(natural.StringSlice(names))

	for _, name := range names {
		ws, _ := in.wb.WorksheetByName(name)
		maxRow, maxCol, used := ws.Cells.Bounds()
		if !used {
			tw.Line(1, "Sheet[%q] empty", name)
			continue
		}
		tw.Line(1, "Sheet[%q] rows[%d] cols[%d] cells[%d]", name, maxRow, maxCol, ws.Cells.Len())
		if len(ws.Hyperlinks) > 0 {
			tw.Line(2, "hyperlinks: %d", len(ws.Hyperlinks))
		}
		if len(ws.Comments) > 0 {
			tw.Line(2, "comments: %d", len(ws.Comments))
		}
		if len(ws.ConditionalFormats) > 0 {
			tw.Line(2, "conditional formats: %d", len(ws.ConditionalFormats))
		}
		if len(ws.DataValidations) > 0 {
			tw.Line(2, "data validations: %d", len(ws.DataValidations))
		}
		if ws.AutoFilter.Range != "" {
			tw.Line(2, "autofilter: %s", ws.AutoFilter.Range)
		}
	}
	return tw.String()
}
