package config

import "time"

// Config is the root configuration structure for kallysto.
type Config struct {
	// Publication selects the target publication and source.
	Publication PublicationConfig `yaml:"publication"`

	// Clock configures timestamps.
	Clock ClockConfig `yaml:"clock"`

	// Ledger configures the optional SQLite mirror of the audit log.
	Ledger LedgerConfig `yaml:"ledger"`

	// Prune configures removal of orphaned side files.
	Prune PruneConfig `yaml:"prune"`

	// Markdown configures the markdown preprocessor.
	Markdown MarkdownConfig `yaml:"markdown"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PublicationConfig describes the publication exports are sent to.
type PublicationConfig struct {
	// Title names the publication and its directory under Root.
	Title string `yaml:"title"`

	// Source identifies the exporting notebook or script.
	Source string `yaml:"source"`

	// SourcePath is the path of the notebook or script, recorded in
	// fragment headers.
	SourcePath string `yaml:"source_path"`

	// Root is the directory holding publications.
	// Default: "pubs"
	Root string `yaml:"root"`

	// Format is the document language.
	// Options: "latex", "markdown"
	// Default: "latex"
	Format string `yaml:"format"`

	// Overwrite lets a re-exported name replace its fragment.
	// Default: true
	Overwrite bool `yaml:"overwrite"`

	// FreshStart purges the log and this source's files when the
	// publication is opened.
	// Default: false
	FreshStart bool `yaml:"fresh_start"`

	// FigureWidth is the LaTeX figure width as a fraction of \textwidth.
	// Default: 0.8
	FigureWidth float64 `yaml:"figure_width"`
}

// ClockConfig configures the reference zone and display layout.
type ClockConfig struct {
	// Zone is an IANA zone name.
	// Default: "UTC"
	Zone string `yaml:"zone"`

	// Layout is a strftime layout for display timestamps.
	// Default: "%X %x %Z"
	Layout string `yaml:"layout"`
}

// LedgerConfig configures the SQLite audit ledger.
type LedgerConfig struct {
	// Enabled mirrors every audit entry into the ledger.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Driver is the database/sql driver name.
	// Options: "sqlite" (modernc.org/sqlite), "sqlite3" (mattn/go-sqlite3)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file. Relative paths are resolved against the
	// publication's .kallysto directory.
	// Default: "ledger.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// PruneConfig configures orphan pruning.
type PruneConfig struct {
	// Schedule is a cron expression for scheduled pruning.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`

	// DryRun reports orphans without removing them.
	// Default: false
	DryRun bool `yaml:"dry_run"`
}

// MarkdownConfig configures the markdown preprocessor.
type MarkdownConfig struct {
	// Debounce delays conversion after a change in watch mode.
	// Default: 200ms
	Debounce time.Duration `yaml:"debounce"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "kallysto"
	Namespace string `yaml:"namespace"`

	// Textfile is written in the Prometheus text format after each command,
	// for pickup by a node exporter textfile collector. Empty disables it.
	Textfile string `yaml:"textfile"`

	// TransferDurationBuckets defines histogram buckets for transfer
	// duration in seconds.
	// Default: [0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1]
	TransferDurationBuckets []float64 `yaml:"transfer_duration_buckets"`
}
