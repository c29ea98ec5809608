// Package prune removes orphaned side files from a publication.
//
// A side file (CSV, text or image under .kallysto/data or .kallysto/figs)
// is live while some fragment in some source's definitions file names it
// in its "Data file" or "Image file" header. Files left behind by renamed
// exports, or by a transfer that failed after writing its side files, are
// orphans. Pruner finds and removes them; with DryRun it only reports.
//
// Scheduler runs a Pruner on a cron schedule for long-running sessions.
package prune
