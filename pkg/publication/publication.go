package publication

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/afero"

	"github.com/kallysto/kallysto/internal/fsutil"
	"github.com/kallysto/kallysto/pkg/definitions"
	"github.com/kallysto/kallysto/pkg/format"
	"github.com/kallysto/kallysto/pkg/includes"
)

// Options configures a Publication.
type Options struct {
	// Title names the publication and its root directory.
	Title string

	// Source identifies the exporting notebook or script.
	Source string

	// SourcePath is the optional path of the notebook or script file,
	// recorded in fragment headers.
	SourcePath string

	// Root is the directory that holds publications.
	// Default: "."
	Root string

	// Format selects the built-in formatter and dialect, "latex" or
	// "markdown".
	// Default: "latex"
	Format string

	// Formatter replaces the built-in formatter of Format. The dialect of
	// Format still applies.
	Formatter format.Formatter

	// Overwrite allows re-exporting a name to replace its fragment.
	Overwrite bool

	// FreshStart purges the log and this source's files at creation.
	FreshStart bool
}

// Publication is a target document project bound to one source.
type Publication struct {
	fs         afero.Fs
	title      string
	source     string
	sourcePath string
	formatter  format.Formatter
	dialect    format.Dialect
	overwrite  bool
	freshStart bool
	layout     Layout
	logger     *slog.Logger
}

// New opens the publication described by opts, creating its datastore.
// It fails with StorageError when the root is not writable. With
// FreshStart the publication log and this source's definitions, data and
// figure directories are removed first; other sources are left alone.
func New(fsys afero.Fs, opts Options) (*Publication, error) {
	if err := validateName("title", opts.Title); err != nil {
		return nil, err
	}
	if err := validateName("source", opts.Source); err != nil {
		return nil, err
	}

	root := opts.Root
	if root == "" {
		root = "."
	}
	formatName := opts.Format
	if formatName == "" {
		formatName = "latex"
	}
	formatter, dialect, err := format.Lookup(formatName)
	if err != nil {
		return nil, err
	}
	if opts.Formatter != nil {
		formatter = opts.Formatter
	}

	p := &Publication{
		fs:         fsys,
		title:      opts.Title,
		source:     opts.Source,
		sourcePath: opts.SourcePath,
		formatter:  formatter,
		dialect:    dialect,
		overwrite:  opts.Overwrite,
		freshStart: opts.FreshStart,
		layout:     NewLayout(root, opts.Title, opts.Source, dialect),
		logger: slog.Default().With(
			"component", "publication",
			"title", opts.Title,
			"source", opts.Source,
		),
	}

	if err := p.probe(); err != nil {
		return nil, err
	}
	if p.freshStart {
		if err := p.purge(); err != nil {
			return nil, err
		}
	}
	if err := p.Ensure(); err != nil {
		return nil, err
	}

	p.logger.Debug("publication opened", "root", p.layout.Root, "format", dialect.Name)
	return p, nil
}

func validateName(field, name string) error {
	switch {
	case name == "":
		return fmt.Errorf("publication %s is required", field)
	case name == "." || name == "..":
		return fmt.Errorf("publication %s %q is not a valid directory name", field, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("publication %s %q must not contain path separators", field, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("publication %s %q must not start with a dot", field, name)
	}
	return nil
}

// probe checks that the publication root is writable.
func (p *Publication) probe() error {
	if err := p.fs.MkdirAll(p.layout.Root, 0o755); err != nil {
		return NewStorageError("create", p.layout.Root, err)
	}
	f, err := afero.TempFile(p.fs, p.layout.Root, ".write-probe-*")
	if err != nil {
		return NewStorageError("write", p.layout.Root, err)
	}
	name := f.Name()
	closeErr := f.Close()
	if err := p.fs.Remove(name); err != nil {
		return NewStorageError("remove", name, err)
	}
	if closeErr != nil {
		return NewStorageError("write", name, closeErr)
	}
	return nil
}

// purge removes the log and this source's directories.
func (p *Publication) purge() error {
	if removed, err := fsutil.RemoveIfExists(p.fs, p.layout.LogFile); err != nil {
		return NewStorageError("remove", p.layout.LogFile, err)
	} else if removed {
		p.logger.Info("removed publication log", "path", p.layout.LogFile)
	}

	for _, dir := range []string{p.layout.DefsDir, p.layout.DataDir, p.layout.FigsDir} {
		if err := p.fs.RemoveAll(dir); err != nil {
			return NewStorageError("remove", dir, err)
		}
	}
	p.logger.Info("removed source files", "defs", p.layout.DefsDir)
	return nil
}

// Ensure creates any missing datastore directories and an empty
// definitions file for this source, so an include file that lists the
// source always resolves. It is idempotent.
func (p *Publication) Ensure() error {
	for _, dir := range p.layout.dirs() {
		if err := p.fs.MkdirAll(dir, 0o755); err != nil {
			return NewStorageError("create", dir, err)
		}
	}

	defsPath := p.layout.DefinitionsFile
	ok, err := afero.Exists(p.fs, defsPath)
	if err != nil {
		return NewStorageError("stat", defsPath, err)
	}
	if !ok {
		if err := fsutil.WriteFileAtomic(p.fs, defsPath, nil); err != nil {
			return NewStorageError("create", defsPath, err)
		}
	}
	return nil
}

// Delete removes this source's definitions, data and figures together with
// the publication log, and drops the source from the master include file.
func (p *Publication) Delete() error {
	if err := p.purge(); err != nil {
		return err
	}
	if _, err := p.Includes().Rebuild(p.layout.DefsRoot); err != nil {
		var storageErr *StorageError
		if errors.As(err, &storageErr) {
			return err
		}
		return NewStorageError("rebuild", p.layout.IncludeFile, err)
	}
	return nil
}

// Title returns the publication title.
func (p *Publication) Title() string { return p.title }

// Source returns the source identifier.
func (p *Publication) Source() string { return p.source }

// SourcePath returns the path of the source file, or "".
func (p *Publication) SourcePath() string { return p.sourcePath }

// Formatter returns the fragment formatter.
func (p *Publication) Formatter() format.Formatter { return p.formatter }

// Dialect returns the document dialect.
func (p *Publication) Dialect() format.Dialect { return p.dialect }

// Overwrite reports whether re-exporting a name replaces its fragment.
func (p *Publication) Overwrite() bool { return p.overwrite }

// FreshStart reports whether the publication was purged at creation.
func (p *Publication) FreshStart() bool { return p.freshStart }

// Layout returns the datastore paths.
func (p *Publication) Layout() Layout { return p.layout }

// FS returns the filesystem the datastore lives on.
func (p *Publication) FS() afero.Fs { return p.fs }

// Definitions returns this source's definitions file.
func (p *Publication) Definitions() *definitions.File {
	return definitions.Open(p.fs, p.layout.DefinitionsFile)
}

// Includes returns the master include file.
func (p *Publication) Includes() *includes.File {
	return includes.Open(p.fs, p.layout.IncludeFile, p.dialect)
}

// String implements fmt.Stringer.
func (p *Publication) String() string {
	return fmt.Sprintf("%s:%s", p.title, p.source)
}
