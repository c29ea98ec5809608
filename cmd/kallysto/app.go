package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kallysto/kallysto/pkg/audit"
	"github.com/kallysto/kallysto/pkg/cli"
	"github.com/kallysto/kallysto/pkg/clock"
	"github.com/kallysto/kallysto/pkg/config"
	"github.com/kallysto/kallysto/pkg/format"
	"github.com/kallysto/kallysto/pkg/publication"
	"github.com/kallysto/kallysto/pkg/telemetry/logging"
	"github.com/kallysto/kallysto/pkg/telemetry/metrics"
	"github.com/kallysto/kallysto/pkg/transfer"
)

// app holds what every command shares once configuration is loaded.
type app struct {
	cfg     *config.Config
	fs      afero.Fs
	clock   *clock.Clock
	metrics *metrics.Collector
}

var current *app

// setup loads configuration, applies flag overrides and installs the
// logger. It runs before every command.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(configPath())
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}
	applyFlagOverrides(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("flags", err.Error())
	}

	logCfg := logging.FromConfig(cfg.Telemetry.Logging, os.Stderr)
	if verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())

	clk, err := clock.New(&clock.Config{Zone: cfg.Clock.Zone, Layout: cfg.Clock.Layout})
	if err != nil {
		return cli.NewConfigError("clock", err.Error())
	}

	current = &app{
		cfg:     cfg,
		fs:      afero.NewOsFs(),
		clock:   clk,
		metrics: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
	}
	return nil
}

// teardown writes the metrics textfile, if configured.
func teardown(_ *cobra.Command, _ []string) error {
	if current == nil {
		return nil
	}
	return current.metrics.WriteTextfile(current.cfg.Telemetry.Metrics.Textfile)
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	pc := &cfg.Publication
	if flags.Changed("title") {
		pc.Title = pubFlags.title
	}
	if flags.Changed("source") {
		pc.Source = pubFlags.source
	}
	if flags.Changed("source-path") {
		pc.SourcePath = pubFlags.sourcePath
	}
	if flags.Changed("root") {
		pc.Root = pubFlags.root
	}
	if flags.Changed("format") {
		pc.Format = pubFlags.format
	}
	if flags.Changed("fresh-start") {
		pc.FreshStart = pubFlags.freshStart
	}
	if flags.Changed("overwrite") {
		pc.Overwrite = pubFlags.overwrite
	}
}

// requireTitle checks that a publication title is configured.
func (a *app) requireTitle() error {
	if a.cfg.Publication.Title == "" {
		return cli.NewConfigError("publication.title", "a publication title is required (--title)")
	}
	return nil
}

// formatter returns the configured formatter and dialect.
func (a *app) formatter() (format.Formatter, format.Dialect, error) {
	f, dialect, err := format.Lookup(a.cfg.Publication.Format)
	if err != nil {
		return nil, format.Dialect{}, cli.NewConfigError("publication.format", err.Error())
	}
	if latex, ok := f.(*format.Latex); ok {
		latex.FigureWidth = a.cfg.Publication.FigureWidth
	}
	return f, dialect, nil
}

// layout returns the datastore paths without touching the filesystem.
func (a *app) layout() (publication.Layout, error) {
	if err := a.requireTitle(); err != nil {
		return publication.Layout{}, err
	}
	_, dialect, err := a.formatter()
	if err != nil {
		return publication.Layout{}, err
	}
	pc := a.cfg.Publication
	return publication.NewLayout(pc.Root, pc.Title, pc.Source, dialect), nil
}

// publication opens the configured publication. The fresh start setting
// applies only when honourFreshStart is true.
func (a *app) publication(honourFreshStart bool) (*publication.Publication, error) {
	if err := a.requireTitle(); err != nil {
		return nil, err
	}
	pc := a.cfg.Publication
	if pc.Source == "" {
		return nil, cli.NewConfigError("publication.source", "a source identifier is required (--source)")
	}
	f, _, err := a.formatter()
	if err != nil {
		return nil, err
	}

	return publication.New(a.fs, publication.Options{
		Title:      pc.Title,
		Source:     pc.Source,
		SourcePath: pc.SourcePath,
		Root:       pc.Root,
		Format:     pc.Format,
		Formatter:  f,
		Overwrite:  pc.Overwrite,
		FreshStart: honourFreshStart && pc.FreshStart,
	})
}

// ledger opens the SQLite ledger when enabled, or returns nil.
func (a *app) ledger(layout publication.Layout) (audit.Store, error) {
	lc := a.cfg.Ledger
	if !lc.Enabled {
		return nil, nil
	}
	path := lc.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(layout.Store, path)
	}
	store, err := audit.NewSQLiteStore(&audit.SQLiteConfig{
		Driver:      lc.Driver,
		Path:        path,
		BusyTimeout: lc.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return store, nil
}

// engine builds a transfer engine, mirroring into ledger when non-nil.
func (a *app) engine(ledger audit.Store) (*transfer.Engine, error) {
	opts := []transfer.Option{
		transfer.WithClock(a.clock),
		transfer.WithMetrics(a.metrics),
	}
	if ledger != nil {
		opts = append(opts, transfer.WithLedger(ledger))
	}
	return transfer.New(opts...)
}
