package markdown

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kallysto/kallysto/pkg/format"
	"github.com/kallysto/kallysto/pkg/includes"
)

// DefaultDebounce is the quiet period before a change triggers conversion.
const DefaultDebounce = 200 * time.Millisecond

// WatcherConfig contains configuration for a Watcher.
type WatcherConfig struct {
	// Document is the .kmd file to convert.
	Document string

	// IncludeFile is the master include file listing the definitions.
	IncludeFile string

	// Debounce is the quiet period before conversion (default: 200ms).
	Debounce time.Duration

	// OnConvert, when set, is called after every conversion attempt.
	OnConvert func(output string, err error)
}

// Watcher re-converts a document whenever it, the include file or any
// listed definitions file changes. It watches directories rather than
// files so that atomic replacements are seen.
type Watcher struct {
	watcher   *fsnotify.Watcher
	converter *Converter
	config    WatcherConfig
	debounce  *Debouncer
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	stop    sync.Once
}

// NewWatcher creates a Watcher that converts with converter.
func NewWatcher(converter *Converter, cfg WatcherConfig) (*Watcher, error) {
	if cfg.Document == "" || cfg.IncludeFile == "" {
		return nil, fmt.Errorf("watcher needs a document and an include file")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:   watcher,
		converter: converter,
		config:    cfg,
		debounce:  NewDebouncer(cfg.Debounce),
		logger:    slog.Default().With("component", "markdown.watcher"),
		stopCh:    make(chan struct{}),
	}, nil
}

// Watch converts the document once and then after every relevant change,
// until ctx is cancelled or Stop is called. Conversion errors are logged
// and reported to OnConvert; they do not stop the watcher.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.debounce.Stop()
		w.watcher.Close()
	}()

	if err := w.addDirs(); err != nil {
		return err
	}
	w.logger.Info("watching document",
		"document", w.config.Document,
		"include_file", w.config.IncludeFile,
		"debounce_ms", w.config.Debounce.Milliseconds(),
	)
	w.convert()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !shouldProcessEvent(event) {
				continue
			}
			w.logger.Debug("file event detected", "path", event.Name, "op", event.Op.String())
			w.debounce.Trigger(func() {
				if err := w.addDirs(); err != nil {
					w.logger.Warn("failed to refresh watched directories", "error", err)
				}
				w.convert()
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

// Stop ends Watch.
func (w *Watcher) Stop() {
	w.stop.Do(func() { close(w.stopCh) })
}

func (w *Watcher) convert() {
	out, err := w.converter.Convert(w.config.Document, w.config.IncludeFile)
	if err != nil {
		w.logger.Error("conversion failed", "document", w.config.Document, "error", err)
	}
	if w.config.OnConvert != nil {
		w.config.OnConvert(out, err)
	}
}

// addDirs watches the document directory, the include file directory and
// the directory of every listed definitions file.
func (w *Watcher) addDirs() error {
	dirs := []string{
		filepath.Dir(w.config.Document),
		filepath.Dir(w.config.IncludeFile),
	}

	inc := includes.Open(w.converter.fs, w.config.IncludeFile, format.MarkdownDialect())
	entries, err := inc.Entries()
	if err != nil {
		return err
	}
	for _, entry := range entries {
		dirs = append(dirs, filepath.Dir(inc.Resolve(entry)))
	}

	for _, dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", dir, err)
		}
	}
	return nil
}

// shouldProcessEvent reports whether event touches a .kmd file.
func shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(event.Name), ".kmd")
}
