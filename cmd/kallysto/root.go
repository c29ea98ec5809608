package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/kallysto/kallysto/pkg/cli"
)

// defaultConfigFile is used when --config is not given and the file exists.
const defaultConfigFile = "kallysto.yaml"

var (
	// Global flags
	cfgFile string
	verbose bool

	// Publication flags override the publication section of the config.
	pubFlags struct {
		title      string
		source     string
		sourcePath string
		root       string
		format     string
		freshStart bool
		overwrite  bool
	}
)

var rootCmd = &cobra.Command{
	Use:   "kallysto",
	Short: "Kallysto - move analysis results into documents",
	Long: `Kallysto records named exports (values, tables and figures) from notebooks
and scripts into a publication datastore, and materialises them as fragments
that LaTeX and Markdown documents include by name.

Every transfer:
  - writes the export's data and image files
  - replaces or appends its fragment in the source's definitions file
  - appends a line to the publication's audit log
  - makes sure the master include file lists the source`,
	Version:            Version,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file path (default: ./kallysto.yaml if present)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	flags.StringVar(&pubFlags.title, "title", "", "publication title")
	flags.StringVar(&pubFlags.source, "source", "", "source identifier (notebook or script name)")
	flags.StringVar(&pubFlags.sourcePath, "source-path", "", "path of the notebook or script")
	flags.StringVar(&pubFlags.root, "root", "", "directory holding publications")
	flags.StringVar(&pubFlags.format, "format", "", "document format: latex or markdown")
	flags.BoolVar(&pubFlags.freshStart, "fresh-start", false, "purge the log and this source's files first")
	flags.BoolVar(&pubFlags.overwrite, "overwrite", true, "allow re-exported names to replace their fragment")
}

// configPath returns the config file to load, or "" for defaults.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if _, err := os.Stat(defaultConfigFile); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return defaultConfigFile
}
