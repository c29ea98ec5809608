package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kallysto/kallysto/pkg/cli"
	"github.com/kallysto/kallysto/pkg/format"
	"github.com/kallysto/kallysto/pkg/includes"
)

var includesCmd = &cobra.Command{
	Use:   "includes",
	Short: "Inspect or rebuild the master include file",
}

var includesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the definitions files the include file references",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		inc, _, err := includeFile()
		if err != nil {
			return cli.NewCommandError("includes list", err)
		}
		entries, err := inc.Entries()
		if err != nil {
			return cli.NewCommandError("includes list", err)
		}
		for _, entry := range entries {
			fmt.Fprintln(cmd.OutOrStdout(), entry)
		}
		return nil
	},
}

var includesRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-derive the include file from the definitions files on disk",
	Long: `Re-derive the master include file from the definitions files present in
.kallysto/defs. Sources that still exist keep their position; new ones are
appended in name order; sources without a definitions file are dropped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		inc, defsRoot, err := includeFile()
		if err != nil {
			return cli.NewCommandError("includes rebuild", err)
		}
		entries, err := inc.Rebuild(defsRoot)
		if err != nil {
			return cli.NewCommandError("includes rebuild", err)
		}
		for _, entry := range entries {
			fmt.Fprintln(cmd.OutOrStdout(), entry)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(includesCmd)
	includesCmd.AddCommand(includesListCmd, includesRebuildCmd)
}

func includeFile() (*includes.File, string, error) {
	layout, err := current.layout()
	if err != nil {
		return nil, "", err
	}
	_, dialect, err := format.Lookup(current.cfg.Publication.Format)
	if err != nil {
		return nil, "", err
	}
	return includes.Open(current.fs, layout.IncludeFile, dialect), layout.DefsRoot, nil
}
