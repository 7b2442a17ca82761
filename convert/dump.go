package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/maruel/natural"

	"xlc/cfb"
	"xlc/state"
	"xlc/xlsx"
)

// Dump lists parts of a workbook package and prints worksheet statistics.
// Encrypted packages are decrypted first when a password is available.
func Dump(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("dump")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, extra arguments", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read input file: %w", err)
	}

	password := string(env.Cfg.Conversion.Package.Password)
	if pwd := cmd.String("password"); len(pwd) > 0 {
		password = pwd
	}

	encrypted := cfb.IsEncrypted(data)
	if encrypted {
		if password == "" {
			return errors.New("package is encrypted and no password was provided")
		}
		if data, err = cfb.DecryptPackage(data, password); err != nil {
			return fmt.Errorf("unable to decrypt package: %w", err)
		}
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("input is not a workbook package: %w", err)
	}

	names := make([]string, 0, len(zr.File))
	sizes := make(map[string]uint64, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
		sizes[f.Name] = f.UncompressedSize64
	}
	sort.Sort(natural.StringSlice(names))

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Package:\t%s\n", src)
	fmt.Fprintf(w, "Encrypted:\t%v\n", encrypted)
	fmt.Fprintf(w, "Parts:\t%d\n\n", len(names))
	fmt.Fprintf(w, "PART\tSIZE\n")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%d\n", name, sizes[name])
	}

	wb, err := xlsx.Load(ctx, data, xlsx.LoadOptions{}, log)
	if err != nil {
		if werr := w.Flush(); werr != nil {
			return werr
		}
		return fmt.Errorf("unable to parse workbook: %w", err)
	}

	fmt.Fprintf(w, "\nSHEET\tROWS\tCOLS\tCELLS\n")
	for _, ws := range wb.Worksheets {
		maxRow, maxCol, _ := ws.Cells.Bounds()
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", ws.Name, maxRow, maxCol, ws.Cells.Len())
	}
	return w.Flush()
}
