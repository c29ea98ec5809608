package export

import "fmt"

// InvalidNameError is returned when an export name is not a valid
// fragment/reference key.
type InvalidNameError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid export name %q: %s", e.Name, e.Reason)
}

// NewInvalidNameError creates a new InvalidNameError.
func NewInvalidNameError(name, reason string) *InvalidNameError {
	return &InvalidNameError{
		Name:   name,
		Reason: reason,
	}
}

// InvalidDataError is returned when table data cannot be serialised to
// delimited text.
type InvalidDataError struct {
	Name  string // Export name
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("invalid data for export %q: %v", e.Name, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *InvalidDataError) Unwrap() error {
	return e.Cause
}

// NewInvalidDataError creates a new InvalidDataError.
func NewInvalidDataError(name string, cause error) *InvalidDataError {
	return &InvalidDataError{
		Name:  name,
		Cause: cause,
	}
}

// InvalidImageError is returned when an image cannot be serialised to the
// requested format.
type InvalidImageError struct {
	Name   string // Export name
	Format string // Requested image format
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("invalid image for export %q [format=%s]: %v", e.Name, e.Format, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *InvalidImageError) Unwrap() error {
	return e.Cause
}

// NewInvalidImageError creates a new InvalidImageError.
func NewInvalidImageError(name, format string, cause error) *InvalidImageError {
	return &InvalidImageError{
		Name:   name,
		Format: format,
		Cause:  cause,
	}
}
