// Package logging builds the process logger.
//
// Logger wraps log/slog with the level and format taken from
// configuration. Its handler also copies the publication, source and export
// stored in a context (see WithPublication, WithSource, WithExport) onto
// every record logged with a *Context method, so library packages that log
// through slog.Default() get those fields for free once the logger is
// installed with slog.SetDefault.
package logging
