package definitions

import "fmt"

// DuplicateNameError is returned when a fragment name is already defined
// and may not be replaced, either because overwriting is disabled or because
// the existing fragment belongs to a different export kind.
type DuplicateNameError struct {
	Name         string // Fragment name
	Path         string // Definitions file
	ExistingKind string // Kind of the live fragment
	Kind         string // Kind being written
}

// Error implements the error interface.
func (e *DuplicateNameError) Error() string {
	if e.ExistingKind != "" && e.Kind != "" && e.ExistingKind != e.Kind {
		return fmt.Sprintf("duplicate name %q in %s: already defined as %s, cannot redefine as %s",
			e.Name, e.Path, e.ExistingKind, e.Kind)
	}
	return fmt.Sprintf("duplicate name %q in %s: already defined and overwrite is disabled", e.Name, e.Path)
}

// NewDuplicateNameError creates a new DuplicateNameError.
func NewDuplicateNameError(name, path, existingKind, kind string) *DuplicateNameError {
	return &DuplicateNameError{
		Name:         name,
		Path:         path,
		ExistingKind: existingKind,
		Kind:         kind,
	}
}
