package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "KALLYSTO_"

// LoadConfig loads configuration from a YAML file at path. It applies
// default values and validates the result. The environment is not
// consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies KALLYSTO_SECTION_FIELD environment overrides. An empty path
// starts from the defaults.
//
// The loading sequence is:
//  1. Load YAML from file (or defaults)
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path != "" {
		var err error
		cfg, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to cfg.
// Values that do not parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Publication overrides
	envString("PUBLICATION_TITLE", &cfg.Publication.Title)
	envString("PUBLICATION_SOURCE", &cfg.Publication.Source)
	envString("PUBLICATION_SOURCE_PATH", &cfg.Publication.SourcePath)
	envString("PUBLICATION_ROOT", &cfg.Publication.Root)
	envString("PUBLICATION_FORMAT", &cfg.Publication.Format)
	envBool("PUBLICATION_OVERWRITE", &cfg.Publication.Overwrite)
	envBool("PUBLICATION_FRESH_START", &cfg.Publication.FreshStart)
	envFloat("PUBLICATION_FIGURE_WIDTH", &cfg.Publication.FigureWidth)

	// Clock overrides
	envString("CLOCK_ZONE", &cfg.Clock.Zone)
	envString("CLOCK_LAYOUT", &cfg.Clock.Layout)

	// Ledger overrides
	envBool("LEDGER_ENABLED", &cfg.Ledger.Enabled)
	envString("LEDGER_DRIVER", &cfg.Ledger.Driver)
	envString("LEDGER_PATH", &cfg.Ledger.Path)
	envDuration("LEDGER_BUSY_TIMEOUT", &cfg.Ledger.BusyTimeout)

	// Prune overrides
	envString("PRUNE_SCHEDULE", &cfg.Prune.Schedule)
	envBool("PRUNE_DRY_RUN", &cfg.Prune.DryRun)

	// Markdown overrides
	envDuration("MARKDOWN_DEBOUNCE", &cfg.Markdown.Debounce)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_NAMESPACE", &cfg.Telemetry.Metrics.Namespace)
	envString("TELEMETRY_METRICS_TEXTFILE", &cfg.Telemetry.Metrics.Textfile)
}

func envString(key string, dst *string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envFloat(key string, dst *float64) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
