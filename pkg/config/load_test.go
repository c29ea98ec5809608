package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kallysto.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
publication:
  title: Report
  source: sales
  format: markdown
  overwrite: false
clock:
  zone: Europe/Dublin
ledger:
  enabled: true
  driver: sqlite3
markdown:
  debounce: 1s
telemetry:
  logging:
    level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Publication.Title != "Report" || cfg.Publication.Source != "sales" {
		t.Errorf("publication = %+v", cfg.Publication)
	}
	if cfg.Publication.Overwrite {
		t.Error("explicit overwrite: false was ignored")
	}
	if cfg.Publication.Root != DefaultPublicationRoot {
		t.Errorf("Root = %q, want default", cfg.Publication.Root)
	}
	if cfg.Ledger.Driver != "sqlite3" || !cfg.Ledger.Enabled {
		t.Errorf("ledger = %+v", cfg.Ledger)
	}
	if cfg.Markdown.Debounce != time.Second {
		t.Errorf("Debounce = %v", cfg.Markdown.Debounce)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Level = %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_OmittedOverwriteDefaultsTrue(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "publication:\n  title: Report\n"))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if !cfg.Publication.Overwrite {
		t.Error("Overwrite should default to true")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "publication: [unclosed"},
		{"invalid format", "publication:\n  format: rst\n"},
		{"invalid driver", "ledger:\n  driver: postgres\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "publication:\n  title: Report\n  source: sales\n")

	t.Setenv("KALLYSTO_PUBLICATION_TITLE", "Thesis")
	t.Setenv("KALLYSTO_PUBLICATION_OVERWRITE", "false")
	t.Setenv("KALLYSTO_LEDGER_BUSY_TIMEOUT", "2s")
	t.Setenv("KALLYSTO_PUBLICATION_FIGURE_WIDTH", "0.5")
	t.Setenv("KALLYSTO_PRUNE_DRY_RUN", "not-a-bool")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() failed: %v", err)
	}

	if cfg.Publication.Title != "Thesis" {
		t.Errorf("Title = %q, want Thesis", cfg.Publication.Title)
	}
	if cfg.Publication.Source != "sales" {
		t.Errorf("Source = %q, want sales", cfg.Publication.Source)
	}
	if cfg.Publication.Overwrite {
		t.Error("Overwrite override ignored")
	}
	if cfg.Ledger.BusyTimeout != 2*time.Second {
		t.Errorf("BusyTimeout = %v", cfg.Ledger.BusyTimeout)
	}
	if cfg.Publication.FigureWidth != 0.5 {
		t.Errorf("FigureWidth = %v", cfg.Publication.FigureWidth)
	}
	if cfg.Prune.DryRun {
		t.Error("unparsable override should be ignored")
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("KALLYSTO_PUBLICATION_FORMAT", "markdown")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() failed: %v", err)
	}
	if cfg.Publication.Format != "markdown" {
		t.Errorf("Format = %q", cfg.Publication.Format)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverride(t *testing.T) {
	t.Setenv("KALLYSTO_TELEMETRY_LOGGING_LEVEL", "verbose")

	if _, err := LoadConfigWithEnvOverrides(""); err == nil {
		t.Error("expected validation error")
	}
}
