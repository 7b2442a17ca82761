package document

import (
	"fmt"
	"sort"
	"strings"
)

// Sheet dimension limits of the SpreadsheetML grid.
const (
	MaxRows    = 1048576
	MaxColumns = 16384
)

// ColumnName converts a 1-based column index to its letter form (1 -> "A").
func ColumnName(col int) (string, error) {
	if col < 1 || col > MaxColumns {
		return "", fmt.Errorf("column index out of range: %d", col)
	}
	var b [3]byte
	i := len(b)
	for col > 0 {
		col--
		i--
		b[i] = byte('A' + col%26)
		col /= 26
	}
	return string(b[i:]), nil
}

// ColumnIndex converts a column letter form to its 1-based index ("A" -> 1).
func ColumnIndex(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	col := 0
	for _, r := range name {
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("bad column name: %q", name)
		}
		col = col*26 + int(r-'A') + 1
	}
	if col > MaxColumns {
		return 0, fmt.Errorf("column name out of range: %q", name)
	}
	return col, nil
}

// ParseRef splits an A1 reference into 1-based row and column indices.
// Absolute markers ($) are accepted and ignored.
func ParseRef(ref string) (row, col int, err error) {
	s := strings.ReplaceAll(ref, "$", "")
	i := 0
	for i < len(s) && ((s[i] >= 'A' && s[i] <= 'Z') || (s[i] >= 'a' && s[i] <= 'z')) {
		i++
	}
	if i == 0 || i == len(s) {
		return 0, 0, fmt.Errorf("bad cell reference: %q", ref)
	}
	col, err = ColumnIndex(s[:i])
	if err != nil {
		return 0, 0, fmt.Errorf("bad cell reference %q: %w", ref, err)
	}
	for _, c := range s[i:] {
		if c < '0' || c > '9' {
			return 0, 0, fmt.Errorf("bad cell reference: %q", ref)
		}
		row = row*10 + int(c-'0')
		if row > MaxRows {
			return 0, 0, fmt.Errorf("row out of range in reference: %q", ref)
		}
	}
	if row < 1 {
		return 0, 0, fmt.Errorf("bad cell reference: %q", ref)
	}
	return row, col, nil
}

// FormatRef builds an A1 reference from 1-based row and column indices.
func FormatRef(row, col int) (string, error) {
	if row < 1 || row > MaxRows {
		return "", fmt.Errorf("row index out of range: %d", row)
	}
	name, err := ColumnName(col)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", name, row), nil
}

// ParseRange splits an A1:B2 range into its corner references. A single cell
// reference is a valid degenerate range.
func ParseRange(rng string) (r1, c1, r2, c2 int, err error) {
	first, second, found := strings.Cut(rng, ":")
	r1, c1, err = ParseRef(first)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if !found {
		return r1, c1, r1, c1, nil
	}
	r2, c2, err = ParseRef(second)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if r2 < r1 || c2 < c1 {
		return 0, 0, 0, 0, fmt.Errorf("inverted range: %q", rng)
	}
	return r1, c1, r2, c2, nil
}

// Cell is a single grid position with a typed value, an optional formula and
// a style. Cells exist only once touched; empty positions have no Cell.
type Cell struct {
	Row     int
	Col     int
	Value   Value
	Formula string
	Style   Style
}

// Ref returns the A1 reference of the cell.
func (c *Cell) Ref() string {
	ref, _ := FormatRef(c.Row, c.Col)
	return ref
}

type cellKey struct{ row, col int }

// Cells is a sparse cell collection of one worksheet. Traversal helpers
// return cells in row-major order, which is also the serialization order.
type Cells struct {
	m map[cellKey]*Cell
}

func newCells() *Cells {
	return &Cells{m: make(map[cellKey]*Cell)}
}

// Cell returns the cell at (row, col), creating it with a nil value and the
// default style on first access.
func (cs *Cells) Cell(row, col int) (*Cell, error) {
	if row < 1 || row > MaxRows {
		return nil, fmt.Errorf("row index out of range: %d", row)
	}
	if col < 1 || col > MaxColumns {
		return nil, fmt.Errorf("column index out of range: %d", col)
	}
	k := cellKey{row, col}
	if c, ok := cs.m[k]; ok {
		return c, nil
	}
	c := &Cell{Row: row, Col: col, Style: DefaultStyle()}
	cs.m[k] = c
	return c, nil
}

// At returns the cell at an A1 reference, creating it on first access.
func (cs *Cells) At(ref string) (*Cell, error) {
	row, col, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	return cs.Cell(row, col)
}

// Lookup returns the cell at (row, col) without creating it.
func (cs *Cells) Lookup(row, col int) (*Cell, bool) {
	c, ok := cs.m[cellKey{row, col}]
	return c, ok
}

// SetValue stores a value at (row, col).
func (cs *Cells) SetValue(row, col int, v Value) error {
	c, err := cs.Cell(row, col)
	if err != nil {
		return err
	}
	c.Value = v
	return nil
}

// Delete removes the cell at (row, col) if present.
func (cs *Cells) Delete(row, col int) {
	delete(cs.m, cellKey{row, col})
}

// Len returns the number of materialized cells.
func (cs *Cells) Len() int { return len(cs.m) }

// Bounds returns the 1-based extent of the used area. Ok is false when the
// sheet has no cells.
func (cs *Cells) Bounds() (maxRow, maxCol int, ok bool) {
	for k := range cs.m {
		if k.row > maxRow {
			maxRow = k.row
		}
		if k.col > maxCol {
			maxCol = k.col
		}
	}
	return maxRow, maxCol, len(cs.m) > 0
}

// Ordered returns all cells sorted by row then column.
func (cs *Cells) Ordered() []*Cell {
	out := make([]*Cell, 0, len(cs.m))
	for _, c := range cs.m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// Rows groups the cells into rows sorted by row number, each row sorted by
// column.
func (cs *Cells) Rows() [][]*Cell {
	ordered := cs.Ordered()
	var rows [][]*Cell
	for _, c := range ordered {
		if n := len(rows); n == 0 || rows[n-1][0].Row != c.Row {
			rows = append(rows, []*Cell{c})
			continue
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], c)
	}
	return rows
}
