package document

import (
	"fmt"
	"strings"
)

// Characters forbidden in sheet names by the file format.
const badSheetNameChars = `:\/?*[]`

// MaxSheetNameLen is the format limit on sheet name length.
const MaxSheetNameLen = 31

// Workbook is the root of the object model. A new workbook has no sheets;
// AddWorksheet creates them.
type Workbook struct {
	Worksheets []*Worksheet
	Props      WorkbookProperties
	DocProps   DocumentProperties
}

// New returns an empty workbook with default properties.
func New() *Workbook {
	return &Workbook{
		Props:    DefaultWorkbookProperties(),
		DocProps: DefaultDocumentProperties(),
	}
}

func validSheetName(name string) error {
	if name == "" {
		return fmt.Errorf("empty sheet name")
	}
	if len([]rune(name)) > MaxSheetNameLen {
		return fmt.Errorf("sheet name longer than %d characters: %q", MaxSheetNameLen, name)
	}
	if strings.ContainsAny(name, badSheetNameChars) {
		return fmt.Errorf("sheet name contains forbidden character: %q", name)
	}
	return nil
}

// AddWorksheet creates and appends a sheet. An empty name picks the first
// free SheetN name. Duplicate names fail.
func (wb *Workbook) AddWorksheet(name string) (*Worksheet, error) {
	if name == "" {
		for n := len(wb.Worksheets) + 1; ; n++ {
			candidate := fmt.Sprintf("Sheet%d", n)
			if _, ok := wb.WorksheetByName(candidate); !ok {
				name = candidate
				break
			}
		}
	}
	if err := validSheetName(name); err != nil {
		return nil, err
	}
	if _, ok := wb.WorksheetByName(name); ok {
		return nil, fmt.Errorf("duplicate sheet name: %q", name)
	}
	ws := newWorksheet(name)
	wb.Worksheets = append(wb.Worksheets, ws)
	return ws, nil
}

// WorksheetByName finds a sheet by its exact name.
func (wb *Workbook) WorksheetByName(name string) (*Worksheet, bool) {
	for _, ws := range wb.Worksheets {
		if ws.Name == name {
			return ws, true
		}
	}
	return nil, false
}

// Worksheet returns the sheet at a zero-based position.
func (wb *Workbook) Worksheet(i int) (*Worksheet, error) {
	if i < 0 || i >= len(wb.Worksheets) {
		return nil, fmt.Errorf("worksheet index out of range: %d", i)
	}
	return wb.Worksheets[i], nil
}

// RemoveWorksheet deletes a sheet by name. Removing the last sheet fails,
// a workbook package must keep at least one.
func (wb *Workbook) RemoveWorksheet(name string) error {
	if len(wb.Worksheets) == 1 {
		return fmt.Errorf("cannot remove the only worksheet")
	}
	for i, ws := range wb.Worksheets {
		if ws.Name == name {
			wb.Worksheets = append(wb.Worksheets[:i], wb.Worksheets[i+1:]...)
			if wb.Props.View.ActiveTab >= len(wb.Worksheets) {
				wb.Props.View.ActiveTab = len(wb.Worksheets) - 1
			}
			return nil
		}
	}
	return fmt.Errorf("no such worksheet: %q", name)
}

// RenameWorksheet renames a sheet, enforcing name validity and uniqueness.
func (wb *Workbook) RenameWorksheet(oldName, newName string) error {
	ws, ok := wb.WorksheetByName(oldName)
	if !ok {
		return fmt.Errorf("no such worksheet: %q", oldName)
	}
	if err := validSheetName(newName); err != nil {
		return err
	}
	if _, dup := wb.WorksheetByName(newName); dup && newName != oldName {
		return fmt.Errorf("duplicate sheet name: %q", newName)
	}
	ws.Name = newName
	return nil
}

// Protect locks workbook structure with an optional password.
func (wb *Workbook) Protect(password string) {
	wb.Props.Protection.LockStructure = true
	wb.Props.Protection.WorkbookPassword = HashPassword(password)
}
