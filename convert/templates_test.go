package convert

import (
	"testing"
	"time"

	"xlc/config"
	"xlc/document"
)

func templateInput(t *testing.T) *input {
	t.Helper()
	wb := document.New()
	wb.DocProps.Title = "Annual Report"
	wb.DocProps.Creator = "finance team"
	wb.DocProps.Company = "ACME"
	wb.DocProps.Created = time.Date(2024, 2, 3, 12, 0, 0, 0, time.UTC)
	for _, name := range []string{"Summary", "Detail"} {
		if _, err := wb.AddWorksheet(name); err != nil {
			t.Fatal(err)
		}
	}
	return &input{wb: wb, srcName: "reports/annual.xlsx", refID: "0194f0a2"}
}

func TestExpandTemplate(t *testing.T) {
	in := templateInput(t)

	tests := []struct {
		name  string
		field string
		want  string
	}{
		{"title", "{{ .Title }}", "Annual Report"},
		{"creator and company", "{{ .Creator }}-{{ .Company }}", "finance team-ACME"},
		{"created date", "{{ .Created }}", "2024-02-03"},
		{"format", "{{ .Format }}", "csv"},
		{"source file without extension", "{{ .SourceFile }}", "annual"},
		{"ref id", "{{ .RefID }}", "0194f0a2"},
		{"sheet names", `{{ join "," .Sheets }}`, "Summary,Detail"},
		{"sprig functions", "{{ .Title | lower | replace \" \" \"_\" }}", "annual_report"},
		{"subdirectories", "{{ .Company }}/{{ .Title }}", "ACME/Annual Report"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandTemplate(in, config.OutputNameTemplateFieldName, tt.field, config.OutputFmtCsv)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("expandTemplate(%q) = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestExpandTemplateBadField(t *testing.T) {
	in := templateInput(t)

	if _, err := expandTemplate(in, config.OutputNameTemplateFieldName, "{{ .Title", config.OutputFmtCsv); err == nil {
		t.Error("expected parse error for unterminated action")
	}
	if _, err := expandTemplate(in, config.OutputNameTemplateFieldName, "{{ .NoSuchField }}", config.OutputFmtCsv); err == nil {
		t.Error("expected execution error for unknown field")
	}
}

func TestBuildCreated(t *testing.T) {
	wb := document.New()
	wb.DocProps.Created = time.Time{}
	if got := buildCreated(wb); got != "" {
		t.Errorf("zero creation time = %q, want empty", got)
	}
	wb.DocProps.Created = time.Date(2023, 11, 7, 8, 0, 0, 0, time.UTC)
	if got := buildCreated(wb); got != "2023-11-07" {
		t.Errorf("buildCreated = %q, want 2023-11-07", got)
	}
}
