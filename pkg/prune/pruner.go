package prune

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/kallysto/kallysto/pkg/definitions"
	"github.com/kallysto/kallysto/pkg/format"
	"github.com/kallysto/kallysto/pkg/publication"
	"github.com/kallysto/kallysto/pkg/telemetry/metrics"
)

// Config contains configuration for the pruner.
type Config struct {
	// Schedule is a cron expression for scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM). Empty disables scheduling.
	Schedule string

	// DryRun reports orphans without removing them.
	DryRun bool
}

// Result describes one pruning pass.
type Result struct {
	Orphans []string // Orphaned files, sorted
	Removed int      // Files actually removed (0 in dry-run mode)
	Live    int      // Side files referenced by a fragment
}

// Pruner removes side files no fragment references.
type Pruner struct {
	fs      afero.Fs
	layout  publication.Layout
	config  *Config
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewPruner creates a pruner for the publication that layout belongs to.
// Every source of the publication is pruned, not only layout's.
func NewPruner(fsys afero.Fs, layout publication.Layout, cfg *Config, collector *metrics.Collector) *Pruner {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Pruner{
		fs:      fsys,
		layout:  layout,
		config:  cfg,
		metrics: collector,
		logger:  slog.Default().With("component", "prune"),
	}
}

// Config returns the pruner configuration.
func (p *Pruner) Config() *Config {
	return p.config
}

// Prune runs one pass.
func (p *Pruner) Prune(ctx context.Context) (*Result, error) {
	live, err := p.liveFiles(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Orphans: []string{}}
	for _, dir := range []string{"data", "figs"} {
		root := filepath.Join(p.layout.Store, dir)
		removed := 0
		err := afero.Walk(p.fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			if live[filepath.Clean(path)] {
				result.Live++
				return nil
			}

			result.Orphans = append(result.Orphans, path)
			if p.config.DryRun {
				p.logger.Info("orphaned side file", "path", path)
				return nil
			}
			if err := p.fs.Remove(path); err != nil {
				return publication.NewStorageError("remove", path, err)
			}
			removed++
			p.logger.Info("removed orphaned side file", "path", path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to prune %q: %w", root, err)
		}
		result.Removed += removed
		p.metrics.RecordPruned(dir, removed)
	}

	sort.Strings(result.Orphans)
	return result, nil
}

// liveFiles returns the side files referenced by any definitions file, in
// either document format. Fragment paths are relative to the document
// directory of the format that wrote them.
func (p *Pruner) liveFiles(ctx context.Context) (map[string]bool, error) {
	infos, err := afero.ReadDir(p.fs, p.layout.DefsRoot)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}

	dialects := []format.Dialect{format.LatexDialect(), format.MarkdownDialect()}
	live := make(map[string]bool)
	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !info.IsDir() {
			continue
		}
		for _, dialect := range dialects {
			frags, err := definitions.Open(p.fs, filepath.Join(p.layout.DefsRoot, info.Name(), dialect.DefinitionsFile)).Load()
			if err != nil {
				return nil, err
			}
			docDir := filepath.Join(p.layout.Root, dialect.SourceDir)
			for _, frag := range frags {
				for _, key := range []string{definitions.KeyDataFile, definitions.KeyImageFile} {
					if rel := frag.Header(key); rel != "" {
						live[filepath.Clean(filepath.Join(docDir, filepath.FromSlash(rel)))] = true
					}
				}
			}
		}
	}
	return live, nil
}
