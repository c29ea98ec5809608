package format

import (
	"path"
	"strings"
)

// Dialect holds the document-language facts the datastore depends on.
type Dialect struct {
	// Name is the dialect name, "latex" or "markdown".
	Name string
	// SourceDir is the author-owned document directory under the
	// publication root.
	SourceDir string
	// IncludeFile is the master include file inside SourceDir.
	IncludeFile string
	// DefinitionsFile is the per-source definitions file name.
	DefinitionsFile string

	directive func(rel string) string
	parse     func(line string) (string, bool)
}

// Directive returns the include directive for a definitions file at rel,
// a slash-separated path relative to SourceDir.
func (d Dialect) Directive(rel string) string {
	return d.directive(path.Clean(rel))
}

// ParseDirective extracts the path from an include directive line.
func (d Dialect) ParseDirective(line string) (string, bool) {
	return d.parse(strings.TrimSpace(line))
}

// LatexDialect includes definitions files with \input.
func LatexDialect() Dialect {
	return Dialect{
		Name:            "latex",
		SourceDir:       "tex",
		IncludeFile:     "kallysto.tex",
		DefinitionsFile: "_definitions.tex",
		directive: func(rel string) string {
			return `\input{` + rel + `}`
		},
		parse: func(line string) (string, bool) {
			rest, ok := strings.CutPrefix(line, `\input{`)
			if !ok {
				return "", false
			}
			rel, ok := strings.CutSuffix(rest, "}")
			if !ok || rel == "" {
				return "", false
			}
			return rel, true
		},
	}
}

// MarkdownDialect lists definitions files as bare relative paths, one per
// line.
func MarkdownDialect() Dialect {
	return Dialect{
		Name:            "markdown",
		SourceDir:       "md",
		IncludeFile:     "kallysto.kmd",
		DefinitionsFile: "_definitions.kmd",
		directive: func(rel string) string {
			return rel
		},
		parse: func(line string) (string, bool) {
			if line == "" || strings.HasPrefix(line, "#") {
				return "", false
			}
			return line, true
		},
	}
}
