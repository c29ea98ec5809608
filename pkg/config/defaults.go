package config

import "time"

// Default values for configuration fields.
const (
	// Publication defaults
	DefaultPublicationRoot        = "pubs"
	DefaultPublicationFormat      = "latex"
	DefaultPublicationOverwrite   = true
	DefaultPublicationFigureWidth = 0.8

	// Clock defaults
	DefaultClockZone   = "UTC"
	DefaultClockLayout = "%X %x %Z"

	// Ledger defaults
	DefaultLedgerDriver      = "sqlite"
	DefaultLedgerPath        = "ledger.db"
	DefaultLedgerBusyTimeout = 5 * time.Second

	// Prune defaults
	DefaultPruneSchedule = "0 3 * * *"

	// Markdown defaults
	DefaultMarkdownDebounce = 200 * time.Millisecond

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "text"
	DefaultMetricsNamespace = "kallysto"
)

// DefaultTransferDurationBuckets are the default transfer duration buckets.
var DefaultTransferDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// NewDefaultConfig returns a configuration with every default applied,
// including the boolean defaults that ApplyDefaults cannot infer from a
// zero value.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Publication.Overwrite = DefaultPublicationOverwrite
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset field with its default value.
func ApplyDefaults(cfg *Config) {
	// Publication defaults
	if cfg.Publication.Root == "" {
		cfg.Publication.Root = DefaultPublicationRoot
	}
	if cfg.Publication.Format == "" {
		cfg.Publication.Format = DefaultPublicationFormat
	}
	if cfg.Publication.FigureWidth == 0 {
		cfg.Publication.FigureWidth = DefaultPublicationFigureWidth
	}

	// Clock defaults
	if cfg.Clock.Zone == "" {
		cfg.Clock.Zone = DefaultClockZone
	}
	if cfg.Clock.Layout == "" {
		cfg.Clock.Layout = DefaultClockLayout
	}

	// Ledger defaults
	if cfg.Ledger.Driver == "" {
		cfg.Ledger.Driver = DefaultLedgerDriver
	}
	if cfg.Ledger.Path == "" {
		cfg.Ledger.Path = DefaultLedgerPath
	}
	if cfg.Ledger.BusyTimeout == 0 {
		cfg.Ledger.BusyTimeout = DefaultLedgerBusyTimeout
	}

	// Prune defaults
	if cfg.Prune.Schedule == "" {
		cfg.Prune.Schedule = DefaultPruneSchedule
	}

	// Markdown defaults
	if cfg.Markdown.Debounce == 0 {
		cfg.Markdown.Debounce = DefaultMarkdownDebounce
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.TransferDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.TransferDurationBuckets = append([]float64(nil), DefaultTransferDurationBuckets...)
	}
}
