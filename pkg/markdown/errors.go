package markdown

import (
	"fmt"
	"strings"
)

// UnresolvedReferenceError is returned when a document references names
// that no definitions file defines.
type UnresolvedReferenceError struct {
	Names []string // Unique names in order of first appearance
}

// Error implements the error interface.
func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved references: %s", strings.Join(e.Names, ", "))
}

// NewUnresolvedReferenceError creates a new UnresolvedReferenceError.
func NewUnresolvedReferenceError(names []string) *UnresolvedReferenceError {
	return &UnresolvedReferenceError{
		Names: names,
	}
}
