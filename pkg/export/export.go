package export

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Kind identifies the variant of an Export.
type Kind string

const (
	// KindValue is a scalar rendered as text.
	KindValue Kind = "Value"
	// KindTable is a labelled table stored as CSV.
	KindTable Kind = "Table"
	// KindFigure is an image plus the table it was drawn from.
	KindFigure Kind = "Figure"
)

// ParseKind parses a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "value":
		return KindValue, nil
	case "table":
		return KindTable, nil
	case "figure":
		return KindFigure, nil
	default:
		return "", fmt.Errorf("unknown export kind %q", s)
	}
}

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// ValidateName reports whether name can be used as a fragment and reference
// key. Names start with a letter and contain only letters and digits.
func ValidateName(name string) error {
	if name == "" {
		return NewInvalidNameError(name, "name is empty")
	}
	if !namePattern.MatchString(name) {
		return NewInvalidNameError(name, "must start with a letter and contain only letters and digits")
	}
	return nil
}

type options struct {
	now func() time.Time
}

// Option configures export construction.
type Option func(*options)

// WithClock stamps CreatedAt from now instead of the wall clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) *options {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Export is an immutable description of one artifact pending inclusion in a
// publication.
type Export struct {
	kind      Kind
	name      string
	caption   string
	createdAt time.Time

	content string // Value
	grid    *Grid  // Table, Figure
	data    []byte // CSV of grid
	image   []byte // Figure
	format  string // Figure
}

// NewValue creates a Value export. Its payload is the textual rendering of
// content.
func NewValue(name string, content any, opts ...Option) (*Export, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	return &Export{
		kind:      KindValue,
		name:      name,
		createdAt: o.now(),
		content:   FormatCell(content),
	}, nil
}

// NewTable creates a Table export. It fails with InvalidDataError when data
// cannot be serialised to CSV.
func NewTable(name string, data Tabular, caption string, opts ...Option) (*Export, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	grid, csvData, err := snapshot(data)
	if err != nil {
		return nil, NewInvalidDataError(name, err)
	}

	return &Export{
		kind:      KindTable,
		name:      name,
		caption:   caption,
		createdAt: o.now(),
		grid:      grid,
		data:      csvData,
	}, nil
}

// NewFigure creates a Figure export. The image is encoded immediately in
// the requested format (DefaultFigureFormat when empty); failure yields
// InvalidImageError. The underlying data is kept as CSV for provenance.
func NewFigure(name string, img Image, data Tabular, caption, format string, opts ...Option) (*Export, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	if format == "" {
		format = DefaultFigureFormat
	}
	format = strings.ToLower(format)
	if !isSupportedFormat(format) {
		return nil, NewInvalidImageError(name, format,
			fmt.Errorf("unsupported format, want one of %s", strings.Join(SupportedFormats, ", ")))
	}
	if isNil(img) {
		return nil, NewInvalidImageError(name, format, errors.New("no image"))
	}

	var buf bytes.Buffer
	if err := img.Encode(&buf, format); err != nil {
		return nil, NewInvalidImageError(name, format, err)
	}
	if buf.Len() == 0 {
		return nil, NewInvalidImageError(name, format, errors.New("image encoded to zero bytes"))
	}

	grid, csvData, err := snapshot(data)
	if err != nil {
		return nil, NewInvalidDataError(name, err)
	}

	return &Export{
		kind:      KindFigure,
		name:      name,
		caption:   caption,
		createdAt: o.now(),
		grid:      grid,
		data:      csvData,
		image:     buf.Bytes(),
		format:    format,
	}, nil
}

// Kind returns the export variant.
func (e *Export) Kind() Kind { return e.kind }

// Name returns the export name.
func (e *Export) Name() string { return e.name }

// Caption returns the caption of a Table or Figure.
func (e *Export) Caption() string { return e.caption }

// CreatedAt returns the construction timestamp.
func (e *Export) CreatedAt() time.Time { return e.createdAt }

// Content returns the textual payload of a Value.
func (e *Export) Content() string { return e.content }

// Format returns the image format of a Figure.
func (e *Export) Format() string { return e.format }

// Grid returns a copy of the table snapshot, or nil for a Value.
func (e *Export) Grid() *Grid {
	if e.grid == nil {
		return nil
	}
	return e.grid.clone()
}

// CSV returns a copy of the CSV payload of a Table or Figure.
func (e *Export) CSV() []byte {
	return bytes.Clone(e.data)
}

// Image returns a copy of the encoded image of a Figure.
func (e *Export) Image() []byte {
	return bytes.Clone(e.image)
}

// String implements fmt.Stringer.
func (e *Export) String() string {
	return fmt.Sprintf("%s(%s)", e.kind, e.name)
}
