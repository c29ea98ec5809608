package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kallysto/kallysto/pkg/clock"
	"github.com/kallysto/kallysto/pkg/definitions"
	"github.com/kallysto/kallysto/pkg/export"
)

// Formatter renders an export as a self-contained document fragment.
type Formatter interface {
	// Render returns the fragment for x. The result must begin with the
	// provenance header produced by Header.
	Render(x *export.Export, meta Metadata) (string, error)
}

// NameChecker is implemented by formatters that accept only some of the
// names export.ValidateName allows.
type NameChecker interface {
	CheckName(name string) error
}

// CheckName reports whether f can render an export called name. Formatters
// that do not implement NameChecker accept every valid name.
func CheckName(f Formatter, name string) error {
	if c, ok := f.(NameChecker); ok {
		return c.CheckName(name)
	}
	return nil
}

// Metadata describes one transfer. File paths are relative to the author's
// document directory so the fragment can reference them directly.
type Metadata struct {
	UID        clock.UID
	Created    string // Display timestamp of export construction
	Exported   string // Display timestamp of the transfer
	Title      string // Publication title
	Source     string // Source identifier
	SourceFile string // Path to the notebook or script, if known
	DataFile   string
	ImageFile  string
}

// Header renders the provenance comment block that starts every fragment.
// Empty file references are omitted.
func Header(x *export.Export, meta Metadata) string {
	var sb strings.Builder
	line := func(key, value string) {
		fmt.Fprintf(&sb, "%s%s: %s\n", definitions.CommentPrefix, key, value)
	}

	line(definitions.KeyExport, x.Name())
	line(definitions.KeyKind, string(x.Kind()))
	line(definitions.KeyUID, meta.UID.String())
	line(definitions.KeyCreated, meta.Created)
	line(definitions.KeyExported, meta.Exported)
	line(definitions.KeyTitle, meta.Title)
	line(definitions.KeySource, meta.Source)
	if meta.SourceFile != "" {
		line(definitions.KeySourceFile, meta.SourceFile)
	}
	if meta.ImageFile != "" {
		line(definitions.KeyImageFile, meta.ImageFile)
	}
	if meta.DataFile != "" {
		line(definitions.KeyDataFile, meta.DataFile)
	}
	return sb.String()
}

// Lookup returns the built-in formatter and dialect registered under name.
// Accepted names are "latex" (or "tex") and "markdown" (or "md").
func Lookup(name string) (Formatter, Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "latex", "tex":
		return NewLatex(), LatexDialect(), nil
	case "markdown", "md":
		return Markdown{}, MarkdownDialect(), nil
	default:
		return nil, Dialect{}, fmt.Errorf("unknown format %q (want latex or markdown)", name)
	}
}

// isNumeric reports whether every non-empty cell in col parses as a number.
func isNumeric(cells [][]string, col int) bool {
	seen := false
	for _, row := range cells {
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}
