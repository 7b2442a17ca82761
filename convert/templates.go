package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"xlc/config"
	"xlc/document"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Title      string
	Creator    string
	Company    string
	Subject    string
	Category   string
	Created    string
	Format     string
	SourceFile string
	RefID      string
	Sheets     []string
}

func buildSheetNames(wb *document.Workbook) []string {
	result := make([]string, 0, len(wb.Worksheets))
	for _, ws := range wb.Worksheets {
		result = append(result, ws.Name)
	}
	return result
}

func buildCreated(wb *document.Workbook) string {
	if wb.DocProps.Created.IsZero() {
		return ""
	}
	return wb.DocProps.Created.Format("2006-01-02")
}

func expandTemplate(in *input, name config.TemplateFieldName, field string, format config.OutputFmt) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Title:      in.wb.DocProps.Title,
		Creator:    in.wb.DocProps.Creator,
		Company:    in.wb.DocProps.Company,
		Subject:    in.wb.DocProps.Subject,
		Category:   in.wb.DocProps.Category,
		Created:    buildCreated(in.wb),
		Format:     format.String(),
		SourceFile: strings.TrimSuffix(filepath.Base(in.srcName), filepath.Ext(in.srcName)),
		RefID:      in.refID,
		Sheets:     buildSheetNames(in.wb),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
