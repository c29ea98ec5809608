/*
Package cli provides command-line helpers for the kallysto command.

Output Formatting:

Command results can be printed as text, JSON or CSV:

	formatter, err := cli.NewFormatter(cli.FormatJSON)
	if err != nil {
		return err
	}
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

CSV output needs data implementing Table.

Signal Handling:

Long-running commands (md watch, prune --schedule) stop on SIGINT or
SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
