package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xlc/config"
	"xlc/document"
	"xlc/misc"
	"xlc/state"
	"xlc/xlsx"
)

// input is a parsed source ready for output generation.
type input struct {
	wb      *document.Workbook
	srcName string
	refID   string
}

// prepareInput reads and parses a single source. Workbook packages go
// through the package loader (decrypting when a password is configured),
// delimited text goes through typed CSV import.
func prepareInput(ctx context.Context, r io.Reader, srcName string, workbook bool, log *zap.Logger) (*input, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read source: %w", err)
	}

	var wb *document.Workbook
	if workbook {
		opts := xlsx.LoadOptions{Password: string(env.Cfg.Conversion.Package.Password)}
		if wb, err = xlsx.Load(ctx, data, opts, log); err != nil {
			return nil, fmt.Errorf("unable to parse workbook package: %w", err)
		}
	} else {
		opts := csvLoadOptions(&env.Cfg.Conversion)
		if wb, err = LoadCSV(bytes.NewReader(data), opts); err != nil {
			return nil, fmt.Errorf("unable to parse delimited text: %w", err)
		}
	}

	// reference ID identifies one conversion in logs and debug artifacts
	refID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate reference UUID: %w", err)
	}

	in := &input{wb: wb, srcName: srcName, refID: refID.String()}

	// Save source and parsed overview for debugging
	if env.Rpt != nil {
		base := filepath.Base(srcName)
		env.Rpt.StoreData(fmt.Sprintf("%s-%s/%s", misc.GetAppName(), in.refID, base), data)
		env.Rpt.StoreData(fmt.Sprintf("%s-%s/%s_parsed", misc.GetAppName(), in.refID, base), []byte(in.String()))
	}
	return in, nil
}

// csvLoadOptions maps configuration onto CSV import options.
func csvLoadOptions(conf *config.ConversionConfig) CSVLoadOptions {
	opts := DefaultCSVLoadOptions()
	if conf.CSV.Delimiter != "" {
		opts.Comma = rune(conf.CSV.Delimiter[0])
	}
	opts.HasHeader = conf.CSV.HasHeader
	opts.SkipRows = conf.CSV.SkipRows
	opts.AutoDetectTypes = conf.CSV.AutoDetectTypes
	return opts
}

// saveDebugOutput stores the generated artifact in the debug report.
func saveDebugOutput(env *state.LocalEnv, in *input, outputName string) {
	if env.Rpt == nil {
		return
	}
	env.Rpt.Store(fmt.Sprintf("result-%s%s", in.refID, filepath.Ext(outputName)), outputName)
}
