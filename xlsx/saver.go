package xlsx

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"xlc/cfb"
	"xlc/document"
)

// SaveOptions control package assembly. A non-empty Password wraps the
// finished package in an encrypted CFB container. FixZip rewrites the
// archive without data descriptors for strict consumers. WorkDir is where
// the temporary archive is staged; empty means the system temp dir.
type SaveOptions struct {
	Password  string
	FixZip    bool
	Overwrite bool
	WorkDir   string
}

// saver owns the per-call interning state. Styles and shared strings are
// populated while worksheet parts stream out, then written last.
type saver struct {
	wb  *document.Workbook
	ss  *styleSheet
	sst *SharedStrings
	log *zap.Logger

	dxfIDs map[*document.ConditionalFormat]int
}

// Save assembles the workbook package at outputPath.
func Save(ctx context.Context, wb *document.Workbook, outputPath string, opts SaveOptions, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(wb.Worksheets) == 0 {
		return fmt.Errorf("workbook has no worksheets")
	}

	if _, err := os.Stat(outputPath); err == nil {
		if !opts.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputPath)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputPath))
		if err = os.Remove(outputPath); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	log.Info("Generating workbook package",
		zap.String("output", outputPath),
		zap.Int("sheets", len(wb.Worksheets)),
		zap.Bool("encrypted", opts.Password != ""))

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	tmp, err := os.CreateTemp(workDir, "xlc-*.zip")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	s := &saver{
		wb:     wb,
		ss:     newStyleSheet(),
		sst:    NewSharedStrings(),
		log:    log,
		dxfIDs: make(map[*document.ConditionalFormat]int),
	}
	if err := s.writePackage(ctx, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to finalize temporary file: %w", err)
	}

	if opts.FixZip {
		fixed := tmpName + ".fixed"
		if err := copyZipWithoutDataDescriptors(tmpName, fixed); err != nil {
			return err
		}
		defer os.Remove(fixed)
		tmpName = fixed
	}

	if opts.Password != "" {
		pkg, err := os.ReadFile(tmpName)
		if err != nil {
			return fmt.Errorf("unable to read assembled package: %w", err)
		}
		enc, err := cfb.EncryptPackage(pkg, opts.Password)
		if err != nil {
			return fmt.Errorf("unable to encrypt package: %w", err)
		}
		if err := os.WriteFile(outputPath, enc, 0644); err != nil {
			return fmt.Errorf("unable to write encrypted package: %w", err)
		}
		return nil
	}
	return copyFile(tmpName, outputPath)
}

// writePackage streams all parts in their mandatory order: container
// skeleton, workbook, worksheet parts (interning styles and strings on the
// way), then the styles and shared-string tables those sheets populated,
// then document properties.
func (s *saver) writePackage(ctx context.Context, f *os.File) error {
	zw := zip.NewWriter(f)
	defer zw.Close()

	if err := s.writeContentTypes(zw); err != nil {
		return fmt.Errorf("unable to write content types: %w", err)
	}
	if err := s.writeRootRels(zw); err != nil {
		return fmt.Errorf("unable to write package relationships: %w", err)
	}
	if err := s.writeWorkbookRels(zw); err != nil {
		return fmt.Errorf("unable to write workbook relationships: %w", err)
	}
	if err := s.writeWorkbook(zw); err != nil {
		return fmt.Errorf("unable to write workbook part: %w", err)
	}

	// dxf records must exist before cfRule elements reference their ids
	s.registerDxfs()

	for i, ws := range s.wb.Worksheets {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := i + 1
		if err := s.writeWorksheet(zw, ws, n); err != nil {
			return fmt.Errorf("unable to write worksheet %q: %w", ws.Name, err)
		}
		if err := s.writeWorksheetRels(zw, ws, n); err != nil {
			return fmt.Errorf("unable to write worksheet relationships %q: %w", ws.Name, err)
		}
		if len(ws.Comments) > 0 {
			if err := s.writeComments(zw, ws, n); err != nil {
				return fmt.Errorf("unable to write comments for %q: %w", ws.Name, err)
			}
		}
	}

	if err := writeXMLToZip(zw, "xl/styles.xml", s.ss.buildDoc()); err != nil {
		return fmt.Errorf("unable to write styles part: %w", err)
	}
	if err := writeXMLToZip(zw, "xl/sharedStrings.xml", s.sst.buildDoc()); err != nil {
		return fmt.Errorf("unable to write shared strings part: %w", err)
	}
	if err := s.writeCoreProps(zw); err != nil {
		return fmt.Errorf("unable to write core properties: %w", err)
	}
	if err := s.writeAppProps(zw); err != nil {
		return fmt.Errorf("unable to write app properties: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("unable to close output archive: %w", err)
	}
	return nil
}

func (s *saver) registerDxfs() {
	for _, ws := range s.wb.Worksheets {
		for _, cf := range ws.ConditionalFormats {
			if cf.NeedsDxf() {
				s.dxfIDs[cf] = s.ss.internDxf(cf.DxfFont, cf.DxfFill)
			}
		}
	}
}

func (s *saver) writeContentTypes(zw *zip.Writer) error {
	doc := newPartDoc()
	types := doc.CreateElement("Types")
	types.CreateAttr("xmlns", nsContentTypes)

	def := types.CreateElement("Default")
	def.CreateAttr("Extension", "rels")
	def.CreateAttr("ContentType", ctRels)
	def = types.CreateElement("Default")
	def.CreateAttr("Extension", "xml")
	def.CreateAttr("ContentType", ctXML)

	override := func(part, ct string) {
		el := types.CreateElement("Override")
		el.CreateAttr("PartName", part)
		el.CreateAttr("ContentType", ct)
	}
	override("/xl/workbook.xml", ctWorkbook)
	override("/xl/styles.xml", ctStyles)
	override("/xl/sharedStrings.xml", ctSharedStrings)
	for i := range s.wb.Worksheets {
		override(fmt.Sprintf("/xl/worksheets/sheet%d.xml", i+1), ctWorksheet)
	}
	for i, ws := range s.wb.Worksheets {
		if len(ws.Comments) > 0 {
			override(fmt.Sprintf("/xl/comments%d.xml", i+1), ctComments)
			override(fmt.Sprintf("/xl/drawings/vmlDrawing%d.vml", i+1), ctVMLDrawing)
		}
	}
	override("/docProps/core.xml", ctCoreProps)
	override("/docProps/app.xml", ctExtendedProps)

	return writeXMLToZip(zw, "[Content_Types].xml", doc)
}

func (s *saver) writeRootRels(zw *zip.Writer) error {
	doc := newPartDoc()
	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", nsPackageRels)
	for _, r := range []struct{ id, t, target string }{
		{"rId1", relTypeOfficeDocument, "xl/workbook.xml"},
		{"rId2", relTypeCoreProps, "docProps/core.xml"},
		{"rId3", relTypeExtendedProps, "docProps/app.xml"},
	} {
		el := rels.CreateElement("Relationship")
		el.CreateAttr("Id", r.id)
		el.CreateAttr("Type", r.t)
		el.CreateAttr("Target", r.target)
	}
	return writeXMLToZip(zw, "_rels/.rels", doc)
}

// writeWorkbookRels maps sheet parts to rId1..N and parks the styles and
// shared-strings targets at fixed high ids clear of the sheet range.
func (s *saver) writeWorkbookRels(zw *zip.Writer) error {
	doc := newPartDoc()
	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", nsPackageRels)
	for i := range s.wb.Worksheets {
		el := rels.CreateElement("Relationship")
		el.CreateAttr("Id", fmt.Sprintf("rId%d", i+1))
		el.CreateAttr("Type", relTypeWorksheet)
		el.CreateAttr("Target", fmt.Sprintf("worksheets/sheet%d.xml", i+1))
	}
	el := rels.CreateElement("Relationship")
	el.CreateAttr("Id", "rId100")
	el.CreateAttr("Type", relTypeStyles)
	el.CreateAttr("Target", "styles.xml")
	el = rels.CreateElement("Relationship")
	el.CreateAttr("Id", "rId101")
	el.CreateAttr("Type", relTypeSharedStrings)
	el.CreateAttr("Target", "sharedStrings.xml")
	return writeXMLToZip(zw, "xl/_rels/workbook.xml.rels", doc)
}

func (s *saver) writeWorkbook(zw *zip.Writer) error {
	doc := newPartDoc()
	wb := doc.CreateElement("workbook")
	wb.CreateAttr("xmlns", nsMain)
	wb.CreateAttr("xmlns:r", nsRelationships)

	props := &s.wb.Props
	appendFileVersionXML(wb, props.FileVersion)
	appendWorkbookPrXML(wb, props.Pr)
	appendWorkbookProtectionXML(wb, props.Protection)
	appendBookViewsXML(wb, props.View)

	sheets := wb.CreateElement("sheets")
	for i, ws := range s.wb.Worksheets {
		sheet := sheets.CreateElement("sheet")
		sheet.CreateAttr("name", ws.Name)
		sheet.CreateAttr("sheetId", strconv.Itoa(i+1))
		if ws.Visibility != document.SheetVisibilityVisible {
			sheet.CreateAttr("state", ws.Visibility.String())
		}
		sheet.CreateAttr("r:id", fmt.Sprintf("rId%d", i+1))
	}

	appendDefinedNamesXML(wb, props.DefinedNames)
	appendCalcPrXML(wb, props.Calculation)

	return writeXMLToZip(zw, "xl/workbook.xml", doc)
}
