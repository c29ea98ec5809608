package definitions

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"

	"github.com/kallysto/kallysto/internal/fsutil"
)

// File is a definitions file on an afero filesystem.
type File struct {
	fs   afero.Fs
	path string
}

// Open returns a handle for the definitions file at path. The file need not
// exist yet.
func Open(fsys afero.Fs, path string) *File {
	return &File{
		fs:   fsys,
		path: path,
	}
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Load reads every fragment in file order. A missing file has no fragments.
func (f *File) Load() ([]Fragment, error) {
	_, frags, err := f.load()
	return frags, err
}

func (f *File) load() (string, []Fragment, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to read definitions file %q: %w", f.path, err)
	}

	preamble, frags, err := Parse(data)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse definitions file %q: %w", f.path, err)
	}
	return preamble, frags, nil
}

// Lookup returns the live fragment for name.
func (f *File) Lookup(name string) (Fragment, bool, error) {
	frags, err := f.Load()
	if err != nil {
		return Fragment{}, false, err
	}
	for _, frag := range frags {
		if frag.Name == name {
			return frag, true, nil
		}
	}
	return Fragment{}, false, nil
}

// Check reports whether a fragment of the given kind may be written under
// name. It returns a DuplicateNameError when the name is taken by another
// kind, or when it is taken at all and overwrite is false.
func (f *File) Check(name, kind string, overwrite bool) error {
	existing, ok, err := f.Lookup(name)
	if err != nil || !ok {
		return err
	}
	return checkReplace(f.path, existing, name, kind, overwrite)
}

func checkReplace(path string, existing Fragment, name, kind string, overwrite bool) error {
	if existing.Kind != "" && kind != "" && existing.Kind != kind {
		return NewDuplicateNameError(name, path, existing.Kind, kind)
	}
	if !overwrite {
		return NewDuplicateNameError(name, path, existing.Kind, kind)
	}
	return nil
}

// Upsert writes frag. An existing fragment with the same name is replaced
// at its original position; otherwise frag is appended. The file is
// rewritten through a temporary file and a rename.
func (f *File) Upsert(frag Fragment, overwrite bool) (bool, error) {
	preamble, frags, err := f.load()
	if err != nil {
		return false, err
	}

	replaced := false
	for i, existing := range frags {
		if existing.Name != frag.Name {
			continue
		}
		if err := checkReplace(f.path, existing, frag.Name, frag.Kind, overwrite); err != nil {
			return false, err
		}
		frags[i] = frag
		replaced = true
		break
	}
	if !replaced {
		frags = append(frags, frag)
	}

	if err := f.write(Encode(preamble, frags)); err != nil {
		return false, err
	}
	return replaced, nil
}

// Remove deletes the fragment for name, if present.
func (f *File) Remove(name string) (bool, error) {
	preamble, frags, err := f.load()
	if err != nil {
		return false, err
	}

	kept := frags[:0]
	removed := false
	for _, frag := range frags {
		if frag.Name == name {
			removed = true
			continue
		}
		kept = append(kept, frag)
	}
	if !removed {
		return false, nil
	}
	return true, f.write(Encode(preamble, kept))
}

func (f *File) write(data []byte) error {
	if err := fsutil.WriteFileAtomic(f.fs, f.path, data); err != nil {
		return fmt.Errorf("failed to write definitions file: %w", err)
	}
	return nil
}
