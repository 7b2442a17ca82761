package document

import "fmt"

// Specification of sheet tab visibility.
// ENUM(visible, hidden, veryHidden)
type SheetVisibility int

// Worksheet is one sheet of a workbook: a sparse cell grid plus the feature
// collections serialized around sheetData.
type Worksheet struct {
	Name       string
	Visibility SheetVisibility
	TabColor   string
	Cells      *Cells
	Props      WorksheetProperties

	AutoFilter         AutoFilter
	ConditionalFormats []*ConditionalFormat
	DataValidations    []*DataValidation
	Hyperlinks         []*Hyperlink
	Comments           []*Comment

	ColumnWidths  map[int]float64
	RowHeights    map[int]float64
	HiddenColumns map[int]bool
	HiddenRows    map[int]bool
}

func newWorksheet(name string) *Worksheet {
	return &Worksheet{
		Name:          name,
		Cells:         newCells(),
		Props:         DefaultWorksheetProperties(),
		ColumnWidths:  make(map[int]float64),
		RowHeights:    make(map[int]float64),
		HiddenColumns: make(map[int]bool),
		HiddenRows:    make(map[int]bool),
	}
}

// SetColumnWidth sets a custom width (in characters) for a 1-based column.
func (ws *Worksheet) SetColumnWidth(col int, width float64) error {
	if col < 1 || col > MaxColumns {
		return fmt.Errorf("column index out of range: %d", col)
	}
	if width < 0 {
		return fmt.Errorf("negative column width: %v", width)
	}
	ws.ColumnWidths[col] = width
	return nil
}

// SetRowHeight sets a custom height (in points) for a 1-based row.
func (ws *Worksheet) SetRowHeight(row int, height float64) error {
	if row < 1 || row > MaxRows {
		return fmt.Errorf("row index out of range: %d", row)
	}
	if height < 0 {
		return fmt.Errorf("negative row height: %v", height)
	}
	ws.RowHeights[row] = height
	return nil
}

// HideColumn hides or shows a 1-based column.
func (ws *Worksheet) HideColumn(col int, hidden bool) error {
	if col < 1 || col > MaxColumns {
		return fmt.Errorf("column index out of range: %d", col)
	}
	if hidden {
		ws.HiddenColumns[col] = true
	} else {
		delete(ws.HiddenColumns, col)
	}
	return nil
}

// HideRow hides or shows a 1-based row.
func (ws *Worksheet) HideRow(row int, hidden bool) error {
	if row < 1 || row > MaxRows {
		return fmt.Errorf("row index out of range: %d", row)
	}
	if hidden {
		ws.HiddenRows[row] = true
	} else {
		delete(ws.HiddenRows, row)
	}
	return nil
}

// AddHyperlink attaches a hyperlink after validating its anchor reference.
func (ws *Worksheet) AddHyperlink(h *Hyperlink) error {
	if _, _, err := ParseRef(h.Ref); err != nil {
		return err
	}
	if h.Target == "" && h.Location == "" {
		return fmt.Errorf("hyperlink at %s has neither target nor location", h.Ref)
	}
	ws.Hyperlinks = append(ws.Hyperlinks, h)
	return nil
}

// SetComment places a note on a cell, replacing any previous one there.
func (ws *Worksheet) SetComment(ref, text, author string) error {
	if _, _, err := ParseRef(ref); err != nil {
		return err
	}
	for _, c := range ws.Comments {
		if c.Ref == ref {
			c.Text, c.Author = text, author
			return nil
		}
	}
	ws.Comments = append(ws.Comments, &Comment{Ref: ref, Author: author, Text: text})
	return nil
}

// AddConditionalFormat appends a rule, assigning the next priority when the
// rule carries none.
func (ws *Worksheet) AddConditionalFormat(cf *ConditionalFormat) error {
	if _, _, _, _, err := ParseRange(cf.Range); err != nil {
		return err
	}
	if cf.Priority == 0 {
		cf.Priority = len(ws.ConditionalFormats) + 1
	}
	ws.ConditionalFormats = append(ws.ConditionalFormats, cf)
	return nil
}

// AddDataValidation appends a validation rule after checking its range.
func (ws *Worksheet) AddDataValidation(dv *DataValidation) error {
	if _, _, _, _, err := ParseRange(dv.SQRef); err != nil {
		return err
	}
	ws.DataValidations = append(ws.DataValidations, dv)
	return nil
}

// Protect enables sheet protection with an optional password.
func (ws *Worksheet) Protect(password string) {
	ws.Props.Protection.Sheet = true
	ws.Props.Protection.Password = HashPassword(password)
}
