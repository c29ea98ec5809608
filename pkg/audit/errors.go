package audit

import (
	"errors"
	"fmt"
)

// StoreError represents an error from an audit backend.
type StoreError struct {
	Backend   string // "file", "memory", "sqlite"
	Operation string // "append", "read", "store", "query", ...
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("audit store error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreError creates a new StoreError.
func NewStoreError(backend, operation string, cause error) *StoreError {
	return &StoreError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// ParseError is returned when an audit log line cannot be parsed.
type ParseError struct {
	Line  int    // 1-based line number, 0 when unknown
	Text  string // Offending line
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("audit log line %d: %v", e.Line, e.Cause)
	}
	return fmt.Sprintf("audit log line: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new ParseError.
func NewParseError(line int, text string, cause error) *ParseError {
	return &ParseError{
		Line:  line,
		Text:  text,
		Cause: cause,
	}
}

// ExportError is returned when entries cannot be written by an Exporter.
type ExportError struct {
	Format string
	Count  int
	Cause  error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to export %d audit entries as %s: %v", e.Count, e.Format, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new ExportError.
func NewExportError(format string, count int, cause error) *ExportError {
	return &ExportError{
		Format: format,
		Count:  count,
		Cause:  cause,
	}
}

var errStoreClosed = errors.New("store is closed")
