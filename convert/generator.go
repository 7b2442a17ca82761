package convert

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"xlc/config"
	"xlc/xlsx"
)

// WriteTo generates output in the specified format and writes it to the destination.
func (in *input) WriteTo(ctx context.Context, format config.OutputFmt, outputPath string, conf *config.ConversionConfig, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if format == config.OutputFmtXlsx {
		opts := xlsx.SaveOptions{
			Password: string(conf.Package.Password),
			FixZip:   conf.Package.FixZip,
		}
		if conf.Package.Application != "" {
			in.wb.DocProps.Application = conf.Package.Application
		}
		return xlsx.Save(ctx, in.wb, outputPath, opts, log)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer out.Close()

	var (
		w        io.Writer = out
		finalize func() error
	)
	switch format {
	case config.OutputFmtCsv:
		opts := CSVSaveOptions{
			Comma:          ',',
			UseCRLF:        conf.CSV.UseCRLF,
			WriteBOM:       conf.CSV.WriteBOM,
			DateLayout:     conf.Dates.Date,
			DateTimeLayout: conf.Dates.DateTime,
			TimeLayout:     conf.Dates.Time,
		}
		if conf.CSV.Delimiter != "" {
			opts.Comma = rune(conf.CSV.Delimiter[0])
		}
		if conf.CSV.Encoding != "" {
			enc, err := ianaindex.IANA.Encoding(conf.CSV.Encoding)
			if err != nil {
				return fmt.Errorf("unknown output character set %q: %w", conf.CSV.Encoding, err)
			}
			if enc != nil {
				tw := transform.NewWriter(out, enc.NewEncoder())
				w = tw
				finalize = tw.Close
				opts.WriteBOM = false
			}
		}
		if err := SaveCSV(w, in.wb, opts); err != nil {
			return err
		}
	case config.OutputFmtJson:
		opts := JSONSaveOptions{
			Indent:            conf.JSON.Indent,
			IncludeSheetNames: conf.JSON.IncludeSheetNames,
			SkipEmptyRows:     conf.JSON.SkipEmptyRows,
			SheetIndex:        -1,
			DateLayout:        conf.Dates.Date,
			DateTimeLayout:    conf.Dates.DateTime,
			TimeLayout:        conf.Dates.Time,
		}
		if err := SaveJSON(w, in.wb, opts); err != nil {
			return err
		}
	case config.OutputFmtMd:
		opts := MarkdownSaveOptions{
			DefaultAlignment:  conf.Markdown.DefaultAlignment,
			HeaderLevel:       conf.Markdown.HeaderLevel,
			IncludeSheetNames: conf.Markdown.IncludeSheetNames,
			FirstRowAsHeader:  conf.Markdown.FirstRowAsHeader,
			EscapePipes:       conf.Markdown.EscapePipes,
			CompactFormat:     conf.Markdown.CompactFormat,
			SimpleSeparators:  conf.Markdown.SimpleSeparators,
			SkipEmptyRows:     conf.Markdown.SkipEmptyRows,
			DetectTitleRows:   conf.Markdown.DetectTitleRows,
			SheetIndex:        -1,
			DateLayout:        conf.Dates.Date,
			DateTimeLayout:    conf.Dates.DateTime,
			TimeLayout:        conf.Dates.Time,
		}
		if err := SaveMarkdown(w, in.wb, opts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
	if finalize != nil {
		if err := finalize(); err != nil {
			return err
		}
	}
	return out.Close()
}
