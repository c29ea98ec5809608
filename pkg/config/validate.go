package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the field (e.g., "ledger.driver").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every validation error in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All errors are collected
// and returned together as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validatePublication(&cfg.Publication)...)
	errs = append(errs, validateClock(&cfg.Clock)...)
	errs = append(errs, validateLedger(&cfg.Ledger)...)
	errs = append(errs, validatePrune(&cfg.Prune)...)
	errs = append(errs, validateMarkdown(&cfg.Markdown)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validatePublication(cfg *PublicationConfig) []FieldError {
	var errs []FieldError

	validFormats := map[string]bool{"latex": true, "tex": true, "markdown": true, "md": true}
	if !validFormats[strings.ToLower(cfg.Format)] {
		errs = append(errs, FieldError{
			Field:   "publication.format",
			Message: fmt.Sprintf("invalid format %q: must be 'latex' or 'markdown'", cfg.Format),
		})
	}

	for _, f := range []struct{ name, value string }{{"title", cfg.Title}, {"source", cfg.Source}} {
		if strings.ContainsAny(f.value, `/\`) {
			errs = append(errs, FieldError{
				Field:   "publication." + f.name,
				Message: "must not contain path separators",
			})
		}
	}

	if cfg.FigureWidth <= 0 || cfg.FigureWidth > 1 {
		errs = append(errs, FieldError{
			Field:   "publication.figure_width",
			Message: "figure width must be in (0, 1]",
		})
	}

	return errs
}

func validateClock(cfg *ClockConfig) []FieldError {
	var errs []FieldError

	if _, err := time.LoadLocation(cfg.Zone); err != nil {
		errs = append(errs, FieldError{
			Field:   "clock.zone",
			Message: fmt.Sprintf("unknown zone %q", cfg.Zone),
		})
	}
	if _, err := strftime.New(cfg.Layout); err != nil {
		errs = append(errs, FieldError{
			Field:   "clock.layout",
			Message: fmt.Sprintf("invalid strftime layout %q: %v", cfg.Layout, err),
		})
	}

	return errs
}

func validateLedger(cfg *LedgerConfig) []FieldError {
	var errs []FieldError

	if cfg.Driver != "sqlite" && cfg.Driver != "sqlite3" {
		errs = append(errs, FieldError{
			Field:   "ledger.driver",
			Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.Driver),
		})
	}
	if cfg.Enabled && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "ledger.path",
			Message: "path is required when the ledger is enabled",
		})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "ledger.busy_timeout",
			Message: "busy timeout must not be negative",
		})
	}

	return errs
}

func validatePrune(cfg *PruneConfig) []FieldError {
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return []FieldError{{
			Field:   "prune.schedule",
			Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Schedule, err),
		}}
	}
	return nil
}

func validateMarkdown(cfg *MarkdownConfig) []FieldError {
	if cfg.Debounce < 0 {
		return []FieldError{{
			Field:   "markdown.debounce",
			Message: "debounce must not be negative",
		}}
	}
	return nil
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text' or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Namespace == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.namespace",
			Message: "namespace is required when metrics are enabled",
		})
	}
	for i := 1; i < len(cfg.Metrics.TransferDurationBuckets); i++ {
		if cfg.Metrics.TransferDurationBuckets[i] <= cfg.Metrics.TransferDurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.transfer_duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}

	return errs
}
