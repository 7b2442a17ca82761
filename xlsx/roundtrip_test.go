package xlsx

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap/zaptest"

	"xlc/document"
)

func saveToBytes(t *testing.T, wb *document.Workbook, opts SaveOptions) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := Save(context.Background(), wb, path, opts, zaptest.NewLogger(t)); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestRoundTripValues(t *testing.T) {
	wb := document.New()
	ws, err := wb.AddWorksheet("Values")
	if err != nil {
		t.Fatal(err)
	}
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	divErr, _ := document.ErrorValue(document.ErrDiv0)
	must(ws.Cells.SetValue(1, 1, document.TextValue("label")))
	must(ws.Cells.SetValue(1, 2, document.IntValue(42)))
	must(ws.Cells.SetValue(2, 1, document.BoolValue(true)))
	must(ws.Cells.SetValue(2, 2, document.NumberValue(2.5)))
	must(ws.Cells.SetValue(3, 1, divErr))
	must(ws.Cells.SetValue(3, 2, document.TextValue("#DIV/0!")))

	data := saveToBytes(t, wb, SaveOptions{})

	got, err := Load(context.Background(), data, LoadOptions{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	gws, err := got.Worksheet(0)
	if err != nil {
		t.Fatal(err)
	}
	if gws.Name != "Values" {
		t.Errorf("sheet name = %q, want Values", gws.Name)
	}

	checks := []struct {
		row, col int
		want     document.Value
	}{
		{1, 1, document.TextValue("label")},
		{1, 2, document.IntValue(42)},
		{2, 1, document.BoolValue(true)},
		{2, 2, document.NumberValue(2.5)},
		{3, 1, divErr},
		// a text cell spelling an error literal comes back as the error
		{3, 2, divErr},
	}
	for _, c := range checks {
		cell, ok := gws.Cells.Lookup(c.row, c.col)
		if !ok {
			t.Fatalf("cell (%d,%d) missing after reload", c.row, c.col)
		}
		if !cell.Value.Equal(c.want) {
			t.Errorf("cell (%d,%d) = %v, want %v", c.row, c.col, cell.Value, c.want)
		}
	}
}

func TestRoundTripDates(t *testing.T) {
	wb := document.New()
	ws, _ := wb.AddWorksheet("Dates")
	stamp := time.Date(2024, 6, 15, 13, 45, 12, 0, time.UTC)
	if err := ws.Cells.SetValue(1, 1, document.TimeValue(stamp)); err != nil {
		t.Fatal(err)
	}

	data := saveToBytes(t, wb, SaveOptions{})
	got, err := Load(context.Background(), data, LoadOptions{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	gws, _ := got.Worksheet(0)
	cell, ok := gws.Cells.Lookup(1, 1)
	if !ok {
		t.Fatal("date cell missing after reload")
	}
	if cell.Value.Kind() != document.ValueKindDateTime {
		t.Fatalf("reloaded kind = %v, want date", cell.Value.Kind())
	}
	if d := cell.Value.Time().Sub(stamp); d > time.Second || d < -time.Second {
		t.Errorf("reloaded time %v drifted from %v", cell.Value.Time(), stamp)
	}
}

func TestSharedStringsPartCounts(t *testing.T) {
	wb := document.New()
	ws, _ := wb.AddWorksheet("Cities")
	for row := 1; row <= 3; row++ {
		if err := ws.Cells.SetValue(row, 1, document.TextValue("Paris")); err != nil {
			t.Fatal(err)
		}
	}

	data := saveToBytes(t, wb, SaveOptions{})

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	part, err := zr.Open("xl/sharedStrings.xml")
	if err != nil {
		t.Fatal(err)
	}
	defer part.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(part); err != nil {
		t.Fatal(err)
	}
	root := doc.Root()
	if got := root.SelectAttrValue("count", ""); got != "3" {
		t.Errorf("count = %q, want 3", got)
	}
	if got := root.SelectAttrValue("uniqueCount", ""); got != "1" {
		t.Errorf("uniqueCount = %q, want 1", got)
	}
	if entries := root.SelectElements("si"); len(entries) != 1 {
		t.Errorf("si entries = %d, want 1", len(entries))
	}
}

func TestSharedStyleAcrossSheets(t *testing.T) {
	wb := document.New()
	bold := document.DefaultStyle()
	bold.Font.Bold = true

	for _, name := range []string{"First", "Second"} {
		ws, err := wb.AddWorksheet(name)
		if err != nil {
			t.Fatal(err)
		}
		cell, err := ws.Cells.Cell(1, 1)
		if err != nil {
			t.Fatal(err)
		}
		cell.Value = document.TextValue(name)
		cell.Style = bold
	}

	data := saveToBytes(t, wb, SaveOptions{})

	// equal styles on different sheets intern to a single extra font record
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	part, err := zr.Open("xl/styles.xml")
	if err != nil {
		t.Fatal(err)
	}
	defer part.Close()
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(part); err != nil {
		t.Fatal(err)
	}
	fonts := doc.Root().SelectElement("fonts")
	if got := fonts.SelectAttrValue("count", ""); got != "2" {
		t.Errorf("fonts count = %q, want 2", got)
	}
	cellXfs := doc.Root().SelectElement("cellXfs")
	if got := cellXfs.SelectAttrValue("count", ""); got != "2" {
		t.Errorf("cellXfs count = %q, want 2", got)
	}

	got, err := Load(context.Background(), data, LoadOptions{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		gws, _ := got.Worksheet(i)
		cell, ok := gws.Cells.Lookup(1, 1)
		if !ok {
			t.Fatalf("sheet %d cell missing", i)
		}
		if !cell.Style.Font.Bold {
			t.Errorf("sheet %d lost bold font", i)
		}
	}
}

func TestRoundTripDocumentProperties(t *testing.T) {
	wb := document.New()
	if _, err := wb.AddWorksheet("Data"); err != nil {
		t.Fatal(err)
	}
	wb.DocProps.Title = "Quarterly numbers"
	wb.DocProps.Creator = "reporting"
	wb.DocProps.Company = "ACME"

	data := saveToBytes(t, wb, SaveOptions{})
	got, err := Load(context.Background(), data, LoadOptions{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if got.DocProps.Title != "Quarterly numbers" {
		t.Errorf("title = %q", got.DocProps.Title)
	}
	if got.DocProps.Creator != "reporting" {
		t.Errorf("creator = %q", got.DocProps.Creator)
	}
	if got.DocProps.Company != "ACME" {
		t.Errorf("company = %q", got.DocProps.Company)
	}
}

func TestEncryptedRoundTrip(t *testing.T) {
	wb := document.New()
	ws, _ := wb.AddWorksheet("Secret")
	if err := ws.Cells.SetValue(1, 1, document.TextValue("classified")); err != nil {
		t.Fatal(err)
	}

	data := saveToBytes(t, wb, SaveOptions{Password: "hunter2"})

	if _, err := Load(context.Background(), data, LoadOptions{}, zaptest.NewLogger(t)); err == nil {
		t.Fatal("loading encrypted package without password must fail")
	}
	if _, err := Load(context.Background(), data, LoadOptions{Password: "wrong"}, zaptest.NewLogger(t)); err == nil {
		t.Fatal("loading encrypted package with wrong password must fail")
	}

	got, err := Load(context.Background(), data, LoadOptions{Password: "hunter2"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	gws, _ := got.Worksheet(0)
	cell, ok := gws.Cells.Lookup(1, 1)
	if !ok || !cell.Value.Equal(document.TextValue("classified")) {
		t.Error("cell content did not survive encryption round trip")
	}
}

func TestSaveFixZip(t *testing.T) {
	wb := document.New()
	ws, _ := wb.AddWorksheet("Data")
	if err := ws.Cells.SetValue(1, 1, document.IntValue(1)); err != nil {
		t.Fatal(err)
	}

	data := saveToBytes(t, wb, SaveOptions{FixZip: true})

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range zr.File {
		if f.Flags&0x8 != 0 {
			t.Errorf("part %s still carries the data descriptor flag", f.Name)
		}
	}

	if _, err := Load(context.Background(), data, LoadOptions{}, zaptest.NewLogger(t)); err != nil {
		t.Fatal(err)
	}
}

func TestSaveRefusesOverwrite(t *testing.T) {
	wb := document.New()
	if _, err := wb.AddWorksheet("Data"); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
		t.Fatal(err)
	}

	log := zaptest.NewLogger(t)
	if err := Save(context.Background(), wb, path, SaveOptions{}, log); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
	if err := Save(context.Background(), wb, path, SaveOptions{Overwrite: true}, log); err != nil {
		t.Fatal(err)
	}
}
