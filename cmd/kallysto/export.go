package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kallysto/kallysto/pkg/cli"
	"github.com/kallysto/kallysto/pkg/export"
)

var exportFlags struct {
	csv     string
	image   string
	data    string
	caption string
	format  string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Transfer an export into the publication",
	Long: `Transfer a value, table or figure into the configured publication.

Subcommands:
  value   - a scalar, rendered as text
  table   - a CSV file whose first column is the row index
  figure  - a rendered image plus the CSV it was drawn from
  remove  - drop a fragment from the definitions file`,
}

var exportValueCmd = &cobra.Command{
	Use:   "value NAME CONTENT",
	Short: "Export a value",
	Example: `  kallysto export value TotalSales 5876.84 --title Report --source sales`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, err := export.NewValue(args[0], args[1], export.WithClock(current.clock.Now))
		if err != nil {
			return cli.NewCommandError("export value", err)
		}
		return transferExport(cmd, "export value", x)
	},
}

var exportTableCmd = &cobra.Command{
	Use:   "table NAME --csv FILE",
	Short: "Export a table",
	Example: `  kallysto export table SalesByRep --csv sales.csv --caption "Units by rep"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		frame, err := readFrame(exportFlags.csv)
		if err != nil {
			return cli.NewCommandError("export table", err)
		}
		x, err := export.NewTable(args[0], frame, exportFlags.caption, export.WithClock(current.clock.Now))
		if err != nil {
			return cli.NewCommandError("export table", err)
		}
		return transferExport(cmd, "export table", x)
	},
}

var exportFigureCmd = &cobra.Command{
	Use:   "figure NAME --image FILE --data FILE",
	Short: "Export a figure",
	Long: `Export a figure rendered elsewhere. The image is copied as is, so its
format is taken from the file extension unless --image-format is given.`,
	Example: `  kallysto export figure SalesChart --image chart.pdf --data monthly.csv --caption "Monthly sales"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := afero.ReadFile(current.fs, exportFlags.image)
		if err != nil {
			return cli.NewCommandError("export figure", fmt.Errorf("failed to read image: %w", err))
		}
		imageFormat := exportFlags.format
		if imageFormat == "" {
			imageFormat = strings.TrimPrefix(filepath.Ext(exportFlags.image), ".")
		}
		frame, err := readFrame(exportFlags.data)
		if err != nil {
			return cli.NewCommandError("export figure", err)
		}

		img := export.Encoded{Format: imageFormat, Data: data}
		x, err := export.NewFigure(args[0], img, frame, exportFlags.caption, imageFormat, export.WithClock(current.clock.Now))
		if err != nil {
			return cli.NewCommandError("export figure", err)
		}
		return transferExport(cmd, "export figure", x)
	},
}

var exportRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove an export's fragment from this source's definitions",
	Long: `Remove the fragment of NAME from the configured source's definitions file.
The audit log keeps its records; the data and image files become orphans
that "kallysto prune" removes.`,
	Example: `  kallysto export remove OldChart --title Report --source sales`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, err := current.publication(false)
		if err != nil {
			return cli.NewCommandError("export remove", err)
		}
		removed, err := pub.Definitions().Remove(args[0])
		if err != nil {
			return cli.NewCommandError("export remove", err)
		}
		if !removed {
			return cli.NewCommandError("export remove", fmt.Errorf("no export named %q in %s", args[0], pub))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s from %s\n", args[0], pub.Layout().DefinitionsFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportValueCmd, exportTableCmd, exportFigureCmd, exportRemoveCmd)

	exportTableCmd.Flags().StringVar(&exportFlags.csv, "csv", "", "CSV file with a header row")
	exportTableCmd.Flags().StringVar(&exportFlags.caption, "caption", "", "table caption")
	_ = exportTableCmd.MarkFlagRequired("csv")

	exportFigureCmd.Flags().StringVar(&exportFlags.image, "image", "", "rendered image file")
	exportFigureCmd.Flags().StringVar(&exportFlags.data, "data", "", "CSV of the plotted data")
	exportFigureCmd.Flags().StringVar(&exportFlags.caption, "caption", "", "figure caption")
	exportFigureCmd.Flags().StringVar(&exportFlags.format, "image-format", "", "image format (default: file extension)")
	_ = exportFigureCmd.MarkFlagRequired("image")
	_ = exportFigureCmd.MarkFlagRequired("data")
}

func readFrame(path string) (*export.Frame, error) {
	f, err := current.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()
	return export.ReadCSV(f)
}

// transferExport sends x to the configured publication and prints its UID.
func transferExport(cmd *cobra.Command, name string, x *export.Export) error {
	pub, err := current.publication(true)
	if err != nil {
		return cli.NewCommandError(name, err)
	}

	ledger, err := current.ledger(pub.Layout())
	if err != nil {
		return cli.NewCommandError(name, err)
	}
	if ledger != nil {
		defer ledger.Close()
	}

	engine, err := current.engine(ledger)
	if err != nil {
		return cli.NewCommandError(name, err)
	}
	entry, err := engine.Record(cmd.Context(), x, pub)
	if err != nil {
		return cli.NewCommandError(name, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s uid=%s defs=%s\n", x, entry.UID, pub.Layout().DefinitionsFile)
	return nil
}
