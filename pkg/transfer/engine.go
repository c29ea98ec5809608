package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kallysto/kallysto/internal/fsutil"
	"github.com/kallysto/kallysto/pkg/audit"
	"github.com/kallysto/kallysto/pkg/clock"
	"github.com/kallysto/kallysto/pkg/definitions"
	"github.com/kallysto/kallysto/pkg/export"
	"github.com/kallysto/kallysto/pkg/format"
	"github.com/kallysto/kallysto/pkg/publication"
	"github.com/kallysto/kallysto/pkg/telemetry/logging"
	"github.com/kallysto/kallysto/pkg/telemetry/metrics"
)

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock that issues UIDs and timestamps.
func WithClock(c *clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLedger mirrors every audit entry into store.
func WithLedger(store audit.Store) Option {
	return func(e *Engine) {
		e.ledger = store
	}
}

// WithMetrics records transfer metrics in collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(e *Engine) {
		e.metrics = collector
	}
}

// WithLogger replaces the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine transfers exports into publications.
type Engine struct {
	clock   *clock.Clock
	ledger  audit.Store
	metrics *metrics.Collector
	logger  *slog.Logger
}

// New creates an Engine. Without WithClock it uses a UTC clock.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default().With("component", "transfer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		c, err := clock.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create clock: %w", err)
		}
		e.clock = c
	}
	return e, nil
}

// Clock returns the engine clock.
func (e *Engine) Clock() *clock.Clock {
	return e.clock
}

// Transfer publishes x into pub. Transferring the same export again is
// legal: it gets a new UID and log line and replaces its fragment in place.
// With overwriting disabled, or when the name is already used by a
// different kind, it fails with *definitions.DuplicateNameError and writes
// nothing.
func (e *Engine) Transfer(ctx context.Context, x *export.Export, pub *publication.Publication) error {
	_, err := e.Record(ctx, x, pub)
	return err
}

// Record is Transfer returning the audit entry that was written.
func (e *Engine) Record(ctx context.Context, x *export.Export, pub *publication.Publication) (*audit.Entry, error) {
	if x == nil {
		return nil, errors.New("transfer: nil export")
	}
	if pub == nil {
		return nil, errors.New("transfer: nil publication")
	}

	ctx = logging.WithPublication(ctx, pub.Title())
	ctx = logging.WithSource(ctx, pub.Source())
	ctx = logging.WithExport(ctx, x.Name())

	start := time.Now()
	entry, err := e.transfer(ctx, x, pub)
	elapsed := time.Since(start)

	kind := string(x.Kind())
	var dup *definitions.DuplicateNameError
	switch {
	case err == nil:
		e.metrics.RecordTransfer(kind, metrics.ResultSuccess, elapsed)
		e.logger.InfoContext(ctx, "export transferred",
			"kind", kind,
			"uid", entry.UID.String(),
			"duration", elapsed,
		)
	case errors.As(err, &dup):
		e.metrics.RecordTransfer(kind, metrics.ResultDuplicate, elapsed)
		e.logger.WarnContext(ctx, "export rejected", "kind", kind, "error", err)
	default:
		e.metrics.RecordTransfer(kind, metrics.ResultError, elapsed)
		e.logger.ErrorContext(ctx, "export transfer failed", "kind", kind, "error", err)
	}
	return entry, err
}

func (e *Engine) transfer(ctx context.Context, x *export.Export, pub *publication.Publication) (*audit.Entry, error) {
	if err := pub.Ensure(); err != nil {
		return nil, err
	}

	exported := e.clock.Now()
	uid := e.clock.NextUID()
	layout := pub.Layout()
	defs := pub.Definitions()

	// Everything that can reject the export runs before the first write.
	if err := defs.Check(x.Name(), string(x.Kind()), pub.Overwrite()); err != nil {
		return nil, err
	}
	if err := format.CheckName(pub.Formatter(), x.Name()); err != nil {
		return nil, err
	}

	files, err := sideFilePaths(x, layout)
	if err != nil {
		return nil, err
	}

	meta := format.Metadata{
		UID:        uid,
		Created:    e.clock.Format(x.CreatedAt()),
		Exported:   e.clock.Format(exported),
		Title:      pub.Title(),
		Source:     pub.Source(),
		SourceFile: pub.SourcePath(),
		DataFile:   layout.Rel(files.data),
		ImageFile:  layout.Rel(files.image),
	}

	text, err := pub.Formatter().Render(x, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", x, err)
	}
	frag, err := definitions.ParseFragment(text)
	if err != nil {
		return nil, fmt.Errorf("formatter produced an invalid fragment for %s: %w", x, err)
	}
	if frag.Name != x.Name() {
		return nil, fmt.Errorf("formatter produced fragment %q for %s", frag.Name, x)
	}

	if err := e.writeSideFiles(x, pub, files); err != nil {
		return nil, err
	}

	replaced, err := defs.Upsert(frag, pub.Overwrite())
	if err != nil {
		return nil, err
	}
	if replaced {
		e.metrics.RecordFragmentReplaced()
		e.logger.DebugContext(ctx, "fragment replaced", "path", defs.Path())
	}
	e.metrics.RecordBytesWritten("definitions", len(frag.Text))

	entry := &audit.Entry{
		UID:             uid,
		ID:              audit.NewEntryID(),
		Kind:            string(x.Kind()),
		Name:            x.Name(),
		Source:          pub.Source(),
		Title:           pub.Title(),
		CreatedAt:       x.CreatedAt().In(e.clock.Location()),
		ExportedAt:      exported,
		DataFile:        meta.DataFile,
		ImageFile:       meta.ImageFile,
		DefinitionsFile: layout.Rel(layout.DefinitionsFile),
	}

	log := audit.OpenFileLog(pub.FS(), layout.LogFile)
	if err := log.Append(entry); err != nil {
		return nil, err
	}
	e.metrics.RecordBytesWritten("log", len(audit.FormatLine(entry))+1)

	added, err := pub.Includes().Ensure(layout.DefinitionsFile)
	if err != nil {
		return nil, publication.NewStorageError("write", layout.IncludeFile, err)
	}
	if added {
		e.metrics.RecordIncludeAdded()
		e.logger.InfoContext(ctx, "source added to include file", "path", layout.IncludeFile)
	}

	// The log file is authoritative; a ledger that falls behind is
	// reported but does not fail a transfer that is already on disk.
	if e.ledger != nil {
		if err := e.ledger.Store(ctx, entry); err != nil {
			e.logger.WarnContext(ctx, "failed to mirror audit entry", "uid", uid.String(), "error", err)
		}
	}

	return entry, nil
}

type sideFiles struct {
	data  string
	image string
}

// sideFilePaths returns where the payload files of x go.
func sideFilePaths(x *export.Export, layout publication.Layout) (sideFiles, error) {
	switch x.Kind() {
	case export.KindValue:
		return sideFiles{data: layout.DataFile(x.Name(), "txt")}, nil
	case export.KindTable:
		return sideFiles{data: layout.DataFile(x.Name(), "csv")}, nil
	case export.KindFigure:
		return sideFiles{
			data:  layout.DataFile(x.Name(), "csv"),
			image: layout.ImageFile(x.Name(), x.Format()),
		}, nil
	default:
		return sideFiles{}, fmt.Errorf("unsupported export kind %q", x.Kind())
	}
}

// writeSideFiles writes the payload files of x. Existing files are
// overwritten.
func (e *Engine) writeSideFiles(x *export.Export, pub *publication.Publication, files sideFiles) error {
	switch x.Kind() {
	case export.KindValue:
		return e.write(pub, "data", files.data, []byte(x.Content()))
	case export.KindTable:
		return e.write(pub, "data", files.data, x.CSV())
	default:
		if err := e.write(pub, "image", files.image, x.Image()); err != nil {
			return err
		}
		return e.write(pub, "data", files.data, x.CSV())
	}
}

func (e *Engine) write(pub *publication.Publication, class, path string, data []byte) error {
	if err := fsutil.WriteFileAtomic(pub.FS(), path, data); err != nil {
		return publication.NewStorageError("write", path, err)
	}
	e.metrics.RecordBytesWritten(class, len(data))
	return nil
}
