package main

import (
	"github.com/spf13/cobra"

	"github.com/kallysto/kallysto/pkg/cli"
	"github.com/kallysto/kallysto/pkg/publication"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a publication datastore",
	Long: `Create the datastore of a publication and its master include file.

The include file is written even when no source has exported yet, so the
document can reference it from the start. With --fresh-start the
publication log and this source's files are removed first.

Examples:
  kallysto init --title Report --source sales
  kallysto init --title Notes --source nb --format markdown`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// layoutTable prints a layout as name/path pairs.
type layoutTable publication.Layout

func (l layoutTable) Header() []string { return []string{"name", "path"} }

func (l layoutTable) Rows() [][]string {
	return [][]string{
		{"root", l.Root},
		{"data", l.DataDir},
		{"figures", l.FigsDir},
		{"definitions", l.DefinitionsFile},
		{"log", l.LogFile},
		{"include", l.IncludeFile},
	}
}

func runInit(cmd *cobra.Command, _ []string) error {
	pub, err := current.publication(true)
	if err != nil {
		return cli.NewCommandError("init", err)
	}

	layout := pub.Layout()
	if _, err := pub.Includes().Rebuild(layout.DefsRoot); err != nil {
		return cli.NewCommandError("init", err)
	}

	formatter := &cli.TextFormatter{}
	return formatter.FormatTo(cmd.OutOrStdout(), layoutTable(layout))
}
