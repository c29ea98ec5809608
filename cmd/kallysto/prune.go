package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kallysto/kallysto/pkg/cli"
	"github.com/kallysto/kallysto/pkg/prune"
)

var pruneFlags struct {
	dryRun   bool
	schedule bool
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove side files no fragment references",
	Long: `Remove data and image files that no fragment in any definitions file of
the publication references, for example after an export was renamed.

With --schedule the command keeps running and prunes on the cron schedule
from prune.schedule (default "0 3 * * *") until interrupted.

Examples:
  kallysto prune --title Report --dry-run
  kallysto prune --title Report --schedule`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().BoolVar(&pruneFlags.dryRun, "dry-run", false, "report orphans without removing them")
	pruneCmd.Flags().BoolVar(&pruneFlags.schedule, "schedule", false, "prune on the configured cron schedule until interrupted")
}

func runPrune(cmd *cobra.Command, _ []string) error {
	layout, err := current.layout()
	if err != nil {
		return cli.NewCommandError("prune", err)
	}

	cfg := &prune.Config{
		Schedule: current.cfg.Prune.Schedule,
		DryRun:   current.cfg.Prune.DryRun || pruneFlags.dryRun,
	}
	pruner := prune.NewPruner(current.fs, layout, cfg, current.metrics)

	if pruneFlags.schedule {
		ctx, stop := cli.SetupSignalHandler()
		defer stop()

		scheduler := prune.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("prune", err)
		}
		if next := scheduler.NextRun(); next != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "next prune at %s\n", current.clock.Format(*next))
		}
		<-ctx.Done()
		scheduler.Stop()
		return nil
	}

	result, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("prune", err)
	}

	out := cmd.OutOrStdout()
	for _, path := range result.Orphans {
		fmt.Fprintln(out, path)
	}
	if cfg.DryRun {
		fmt.Fprintf(out, "%d orphaned, %d live (dry run)\n", len(result.Orphans), result.Live)
	} else {
		fmt.Fprintf(out, "%d removed, %d live\n", result.Removed, result.Live)
	}
	return nil
}
