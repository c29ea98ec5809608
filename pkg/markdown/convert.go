package markdown

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/kallysto/kallysto/internal/fsutil"
	"github.com/kallysto/kallysto/pkg/telemetry/metrics"
)

// OutputPath returns the .md path written for a .kmd document.
func OutputPath(kmdFile string) string {
	return strings.TrimSuffix(kmdFile, filepath.Ext(kmdFile)) + ".md"
}

// Converter turns .kmd documents into markdown.
type Converter struct {
	fs      afero.Fs
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewConverter creates a Converter on fsys. collector may be nil.
func NewConverter(fsys afero.Fs, collector *metrics.Collector) *Converter {
	return &Converter{
		fs:      fsys,
		metrics: collector,
		logger:  slog.Default().With("component", "markdown"),
	}
}

// Convert expands kmdFile with the definitions listed in includeFile and
// writes the result to OutputPath(kmdFile), which it returns. When
// references are unresolved nothing is written and the error is an
// *UnresolvedReferenceError.
func (c *Converter) Convert(kmdFile, includeFile string) (string, error) {
	source, err := afero.ReadFile(c.fs, kmdFile)
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", kmdFile, err)
	}
	defs, err := LoadIncludes(c.fs, includeFile)
	if err != nil {
		return "", err
	}

	expanded, err := Expand(string(source), defs)
	var unresolved *UnresolvedReferenceError
	if errors.As(err, &unresolved) {
		c.metrics.RecordExpansion(len(unresolved.Names))
		return "", err
	}
	if err != nil {
		return "", err
	}
	c.metrics.RecordExpansion(0)

	out := OutputPath(kmdFile)
	if err := fsutil.WriteFileAtomic(c.fs, out, []byte(expanded)); err != nil {
		return "", err
	}
	c.metrics.RecordBytesWritten("markdown", len(expanded))
	c.logger.Info("markdown converted", "input", kmdFile, "output", out, "definitions", len(defs))
	return out, nil
}

// Convert is NewConverter(fsys, nil).Convert(kmdFile, includeFile).
func Convert(fsys afero.Fs, kmdFile, includeFile string) (string, error) {
	return NewConverter(fsys, nil).Convert(kmdFile, includeFile)
}
