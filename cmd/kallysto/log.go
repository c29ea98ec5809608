package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kallysto/kallysto/pkg/audit"
	"github.com/kallysto/kallysto/pkg/cli"
)

var logFlags struct {
	kind       string
	name       string
	source     string
	since      string
	until      string
	limit      int
	offset     int
	descending bool
	format     string
	ledger     bool
	count      bool
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Inspect the publication audit log",
}

var logQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query transfer records",
	Long: `Query the transfer records of a publication, oldest first.

Records are read from the audit log file, or from the SQLite ledger with
--ledger (requires ledger.enabled in the configuration).

Examples:
  kallysto log query --title Report --name TotalSales
  kallysto log query --title Report --kind Table --format csv
  kallysto log query --title Report --since 2017-10-26T00:00:00Z --desc --limit 5`,
	Args: cobra.NoArgs,
	RunE: runLogQuery,
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logQueryCmd)

	flags := logQueryCmd.Flags()
	flags.StringVar(&logFlags.kind, "kind", "", "filter by kind (Value, Table, Figure)")
	flags.StringVar(&logFlags.name, "name", "", "filter by export name")
	flags.StringVar(&logFlags.source, "by-source", "", "filter by source")
	flags.StringVar(&logFlags.since, "since", "", "only records exported at or after this RFC3339 time")
	flags.StringVar(&logFlags.until, "until", "", "only records exported at or before this RFC3339 time")
	flags.IntVar(&logFlags.limit, "limit", 0, "max results (0 = unlimited)")
	flags.IntVar(&logFlags.offset, "offset", 0, "pagination offset")
	flags.BoolVar(&logFlags.descending, "desc", false, "newest first")
	flags.StringVar(&logFlags.format, "output", "text", "output format: text, json, csv")
	flags.BoolVar(&logFlags.ledger, "ledger", false, "query the SQLite ledger instead of the log file")
	flags.BoolVar(&logFlags.count, "count", false, "print only the number of matching records")
}

// querier is satisfied by the audit log file and every ledger store.
type querier interface {
	Query(ctx context.Context, q *audit.Query) ([]*audit.Entry, error)
	Count(ctx context.Context, q *audit.Query) (int64, error)
}

func buildQuery() (*audit.Query, error) {
	q := &audit.Query{
		Kind:       logFlags.kind,
		Name:       logFlags.name,
		Source:     logFlags.source,
		Limit:      logFlags.limit,
		Offset:     logFlags.offset,
		Descending: logFlags.descending,
	}
	for _, bound := range []struct {
		flag  string
		value string
		dst   **time.Time
	}{{"since", logFlags.since, &q.Since}, {"until", logFlags.until, &q.Until}} {
		if bound.value == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, bound.value)
		if err != nil {
			return nil, cli.NewConfigError(bound.flag, fmt.Sprintf("invalid time %q: %v", bound.value, err))
		}
		*bound.dst = &t
	}
	return q, nil
}

func runLogQuery(cmd *cobra.Command, _ []string) error {
	layout, err := current.layout()
	if err != nil {
		return cli.NewCommandError("log query", err)
	}
	q, err := buildQuery()
	if err != nil {
		return err
	}

	var source querier = audit.OpenFileLog(current.fs, layout.LogFile)
	if logFlags.ledger {
		if !current.cfg.Ledger.Enabled {
			return cli.NewConfigError("ledger.enabled", "the ledger is disabled")
		}
		store, err := current.ledger(layout)
		if err != nil {
			return cli.NewCommandError("log query", err)
		}
		defer store.Close()
		source = store
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if logFlags.count {
		n, err := source.Count(ctx, q)
		if err != nil {
			return cli.NewCommandError("log query", err)
		}
		fmt.Fprintln(out, n)
		return nil
	}

	entries, err := source.Query(ctx, q)
	if err != nil {
		return cli.NewCommandError("log query", err)
	}

	if exporter, ok := audit.LookupExporter(logFlags.format); ok {
		return exporter.Export(ctx, entries, out)
	}
	if logFlags.format != "text" {
		return cli.NewConfigError("output", fmt.Sprintf("unknown output format %q (want text, json or csv)", logFlags.format))
	}
	for _, e := range entries {
		fmt.Fprintln(out, audit.FormatLine(e))
	}
	return nil
}
