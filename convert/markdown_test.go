package convert

import (
	"bytes"
	"testing"

	"xlc/config"
	"xlc/document"
)

func mdWorkbook(t *testing.T, rows [][]document.Value) *document.Workbook {
	t.Helper()
	wb := document.New()
	ws, err := wb.AddWorksheet("Data")
	if err != nil {
		t.Fatal(err)
	}
	for r, row := range rows {
		for c, v := range row {
			if v.Kind() == document.ValueKindNil {
				continue
			}
			if err := ws.Cells.SetValue(r+1, c+1, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	return wb
}

func TestSaveMarkdownCompact(t *testing.T) {
	wb := mdWorkbook(t, [][]document.Value{
		{document.TextValue("name"), document.TextValue("n")},
		{document.TextValue("a"), document.IntValue(1)},
		{document.TextValue("b"), document.IntValue(2)},
	})

	opts := DefaultMarkdownSaveOptions()
	opts.IncludeSheetNames = false

	var buf bytes.Buffer
	if err := SaveMarkdown(&buf, wb, opts); err != nil {
		t.Fatal(err)
	}

	want := "| name | n |\n| --- | --- |\n| a | 1 |\n| b | 2 |\n"
	if got := buf.String(); got != want {
		t.Errorf("SaveMarkdown output:\n%q\nwant:\n%q", got, want)
	}
}

func TestSaveMarkdownSheetHeading(t *testing.T) {
	wb := mdWorkbook(t, [][]document.Value{{document.TextValue("x")}})

	opts := DefaultMarkdownSaveOptions()
	opts.HeaderLevel = 3

	var buf bytes.Buffer
	if err := SaveMarkdown(&buf, wb, opts); err != nil {
		t.Fatal(err)
	}
	want := "### Data\n\n| x |\n| --- |\n"
	if got := buf.String(); got != want {
		t.Errorf("SaveMarkdown output:\n%q\nwant:\n%q", got, want)
	}
}

func TestSaveMarkdownAlignmentFromStyles(t *testing.T) {
	wb := mdWorkbook(t, [][]document.Value{
		{document.TextValue("c"), document.TextValue("r")},
		{document.TextValue("1"), document.TextValue("2")},
	})
	ws, _ := wb.Worksheet(0)
	for col, horizontal := range map[int]string{1: "center", 2: "right"} {
		cell, err := ws.Cells.Cell(1, col)
		if err != nil {
			t.Fatal(err)
		}
		cell.Style.Alignment.Horizontal = horizontal
	}

	opts := DefaultMarkdownSaveOptions()
	opts.IncludeSheetNames = false

	var buf bytes.Buffer
	if err := SaveMarkdown(&buf, wb, opts); err != nil {
		t.Fatal(err)
	}
	want := "| c | r |\n| :---: | ---: |\n| 1 | 2 |\n"
	if got := buf.String(); got != want {
		t.Errorf("SaveMarkdown output:\n%q\nwant:\n%q", got, want)
	}
}

func TestSaveMarkdownSimpleSeparators(t *testing.T) {
	wb := mdWorkbook(t, [][]document.Value{
		{document.TextValue("a"), document.TextValue("b")},
	})

	opts := DefaultMarkdownSaveOptions()
	opts.IncludeSheetNames = false
	opts.SimpleSeparators = true
	opts.DefaultAlignment = config.MdAlignmentCenter

	var buf bytes.Buffer
	if err := SaveMarkdown(&buf, wb, opts); err != nil {
		t.Fatal(err)
	}
	want := "| a | b |\n| --- | --- |\n"
	if got := buf.String(); got != want {
		t.Errorf("SaveMarkdown output:\n%q\nwant:\n%q", got, want)
	}
}

func TestSaveMarkdownGeneratedHeader(t *testing.T) {
	wb := mdWorkbook(t, [][]document.Value{
		{document.IntValue(1), document.IntValue(2)},
	})

	opts := DefaultMarkdownSaveOptions()
	opts.IncludeSheetNames = false
	opts.FirstRowAsHeader = false

	var buf bytes.Buffer
	if err := SaveMarkdown(&buf, wb, opts); err != nil {
		t.Fatal(err)
	}
	want := "| Column 1 | Column 2 |\n| --- | --- |\n| 1 | 2 |\n"
	if got := buf.String(); got != want {
		t.Errorf("SaveMarkdown output:\n%q\nwant:\n%q", got, want)
	}
}

func TestSaveMarkdownTitleDetection(t *testing.T) {
	wb := mdWorkbook(t, [][]document.Value{
		{document.TextValue("Overview")},
		{document.TextValue("k"), document.TextValue("v")},
		{document.TextValue("a"), document.IntValue(1)},
		{},
		{document.TextValue("Details")},
		{document.TextValue("x"), document.TextValue("y")},
	})

	opts := DefaultMarkdownSaveOptions()
	opts.IncludeSheetNames = false
	opts.DetectTitleRows = true
	opts.SkipEmptyRows = true

	var buf bytes.Buffer
	if err := SaveMarkdown(&buf, wb, opts); err != nil {
		t.Fatal(err)
	}
	want := "\n### Overview\n\n" +
		"| k | v |\n| --- | --- |\n| a | 1 |\n" +
		"\n### Details\n\n" +
		"| x | y |\n| --- | --- |\n"
	if got := buf.String(); got != want {
		t.Errorf("SaveMarkdown output:\n%q\nwant:\n%q", got, want)
	}
}

func TestSaveMarkdownEmptySheet(t *testing.T) {
	wb := document.New()
	if _, err := wb.AddWorksheet("Empty"); err != nil {
		t.Fatal(err)
	}

	opts := DefaultMarkdownSaveOptions()

	var buf bytes.Buffer
	if err := SaveMarkdown(&buf, wb, opts); err != nil {
		t.Fatal(err)
	}
	want := "## Empty\n\n*No data*\n"
	if got := buf.String(); got != want {
		t.Errorf("SaveMarkdown output:\n%q\nwant:\n%q", got, want)
	}
}

func TestMarkdownCellText(t *testing.T) {
	opts := DefaultMarkdownSaveOptions()

	tests := []struct {
		name string
		in   document.Value
		want string
	}{
		{"nil", document.Value{}, ""},
		{"bool true", document.BoolValue(true), "Yes"},
		{"bool false", document.BoolValue(false), "No"},
		{"integer", document.IntValue(12), "12"},
		{"float", document.NumberValue(2.5), "2.5"},
		{"pipe escaped", document.TextValue("a|b"), `a\|b`},
		{"newline collapsed", document.TextValue("a\nb"), "a b"},
		{"crlf collapsed", document.TextValue("a\r\nb"), "a b"},
		{"trimmed", document.TextValue("  pad  "), "pad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := &document.Cell{Value: tt.in}
			if got := markdownCellText(cell, &opts); got != tt.want {
				t.Errorf("markdownCellText(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPadCell(t *testing.T) {
	tests := []struct {
		in    string
		width int
		align config.MdAlignment
		want  string
	}{
		{"ab", 6, config.MdAlignmentLeft, "ab    "},
		{"ab", 6, config.MdAlignmentRight, "    ab"},
		{"ab", 6, config.MdAlignmentCenter, "  ab  "},
		{"abc", 6, config.MdAlignmentCenter, " abc  "},
		{"toolong", 3, config.MdAlignmentLeft, "toolong"},
	}
	for _, tt := range tests {
		if got := padCell(tt.in, tt.width, tt.align); got != tt.want {
			t.Errorf("padCell(%q, %d, %v) = %q, want %q", tt.in, tt.width, tt.align, got, tt.want)
		}
	}
}
