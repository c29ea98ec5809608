package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kallysto/kallysto/pkg/cli"
	"github.com/kallysto/kallysto/pkg/format"
	"github.com/kallysto/kallysto/pkg/markdown"
	"github.com/kallysto/kallysto/pkg/publication"
)

var mdFlags struct {
	includes string
}

var mdCmd = &cobra.Command{
	Use:   "md",
	Short: "Expand {Name} references in markdown documents",
	Long: `Expand {Name} references in a .kmd document using the definitions listed
in the publication's master include file (md/kallysto.kmd), and write the
result next to it with a .md extension.

Subcommands:
  expand  - convert once
  watch   - convert on every change until interrupted`,
}

var mdExpandCmd = &cobra.Command{
	Use:   "expand DOCUMENT.kmd",
	Short: "Convert a .kmd document once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		includeFile, err := markdownIncludeFile()
		if err != nil {
			return cli.NewCommandError("md expand", err)
		}
		out, err := markdown.NewConverter(current.fs, current.metrics).Convert(args[0], includeFile)
		if err != nil {
			return cli.NewCommandError("md expand", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var mdWatchCmd = &cobra.Command{
	Use:   "watch DOCUMENT.kmd",
	Short: "Convert a .kmd document whenever it or its definitions change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		includeFile, err := markdownIncludeFile()
		if err != nil {
			return cli.NewCommandError("md watch", err)
		}

		watcher, err := markdown.NewWatcher(markdown.NewConverter(current.fs, current.metrics), markdown.WatcherConfig{
			Document:    args[0],
			IncludeFile: includeFile,
			Debounce:    current.cfg.Markdown.Debounce,
			OnConvert: func(out string, err error) {
				if err == nil {
					fmt.Fprintln(cmd.OutOrStdout(), out)
				}
			},
		})
		if err != nil {
			return cli.NewCommandError("md watch", err)
		}

		ctx, stop := cli.SetupSignalHandler()
		defer stop()
		if err := watcher.Watch(ctx); err != nil {
			return cli.NewCommandError("md watch", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mdCmd)
	mdCmd.AddCommand(mdExpandCmd, mdWatchCmd)
	mdCmd.PersistentFlags().StringVar(&mdFlags.includes, "includes", "", "master include file (default: the publication's md/kallysto.kmd)")
}

// markdownIncludeFile returns --includes or the configured publication's
// markdown include file.
func markdownIncludeFile() (string, error) {
	if mdFlags.includes != "" {
		return mdFlags.includes, nil
	}
	if err := current.requireTitle(); err != nil {
		return "", err
	}
	pc := current.cfg.Publication
	return publication.NewLayout(pc.Root, pc.Title, pc.Source, format.MarkdownDialect()).IncludeFile, nil
}
