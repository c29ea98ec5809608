package includes

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/kallysto/kallysto/internal/fsutil"
	"github.com/kallysto/kallysto/pkg/format"
)

// File is a master include file.
type File struct {
	fs      afero.Fs
	path    string
	dialect format.Dialect
	logger  *slog.Logger
}

// Open returns a handle for the include file at path. The file is created
// lazily by Ensure or Rebuild.
func Open(fsys afero.Fs, path string, dialect format.Dialect) *File {
	return &File{
		fs:      fsys,
		path:    path,
		dialect: dialect,
		logger:  slog.Default().With("component", "includes"),
	}
}

// Path returns the include file path.
func (f *File) Path() string {
	return f.path
}

// Entries returns the definitions file paths listed in the include file,
// relative to its directory and slash-separated, in file order. Duplicate
// entries are reported once.
func (f *File) Entries() ([]string, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read include file %q: %w", f.path, err)
	}

	var entries []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		rel, ok := f.dialect.ParseDirective(scanner.Text())
		if !ok || seen[rel] {
			continue
		}
		seen[rel] = true
		entries = append(entries, rel)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan include file %q: %w", f.path, err)
	}
	return entries, nil
}

// Resolve returns the filesystem path of an entry.
func (f *File) Resolve(entry string) string {
	return filepath.Join(filepath.Dir(f.path), filepath.FromSlash(entry))
}

// Ensure makes sure the definitions file at defsPath is listed. It returns
// true when a directive was added.
func (f *File) Ensure(defsPath string) (bool, error) {
	rel, err := f.relative(defsPath)
	if err != nil {
		return false, err
	}

	entries, err := f.Entries()
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e == rel {
			return false, nil
		}
	}

	if err := f.write(append(entries, rel)); err != nil {
		return false, err
	}
	f.logger.Debug("added include directive", "include_file", f.path, "entry", rel)
	return true, nil
}

// Rebuild re-derives the include file from the definitions files found in
// defsRoot/<source>/<dialect definitions file>. Entries that still exist
// keep their order; new ones are appended sorted by source. It returns the
// resulting entries.
func (f *File) Rebuild(defsRoot string) ([]string, error) {
	infos, err := afero.ReadDir(f.fs, defsRoot)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to list definitions directory %q: %w", defsRoot, err)
	}

	present := make(map[string]bool)
	var found []string
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		defsPath := filepath.Join(defsRoot, info.Name(), f.dialect.DefinitionsFile)
		ok, err := afero.Exists(f.fs, defsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %q: %w", defsPath, err)
		}
		if !ok {
			continue
		}
		rel, err := f.relative(defsPath)
		if err != nil {
			return nil, err
		}
		present[rel] = true
		found = append(found, rel)
	}
	sort.Strings(found)

	existing, err := f.Entries()
	if err != nil {
		return nil, err
	}

	var entries []string
	listed := make(map[string]bool)
	for _, e := range existing {
		if present[e] {
			entries = append(entries, e)
			listed[e] = true
		}
	}
	for _, e := range found {
		if !listed[e] {
			entries = append(entries, e)
		}
	}

	if err := f.write(entries); err != nil {
		return nil, err
	}
	f.logger.Info("rebuilt include file", "include_file", f.path, "entries", len(entries))
	return entries, nil
}

func (f *File) relative(defsPath string) (string, error) {
	rel, err := filepath.Rel(filepath.Dir(f.path), defsPath)
	if err != nil {
		return "", fmt.Errorf("failed to relate %q to %q: %w", defsPath, f.path, err)
	}
	return filepath.ToSlash(rel), nil
}

func (f *File) write(entries []string) error {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(f.dialect.Directive(e))
		sb.WriteString("\n")
	}
	if err := fsutil.WriteFileAtomic(f.fs, f.path, []byte(sb.String())); err != nil {
		return fmt.Errorf("failed to write include file: %w", err)
	}
	return nil
}
