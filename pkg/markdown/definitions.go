package markdown

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/afero"

	"github.com/kallysto/kallysto/pkg/definitions"
	"github.com/kallysto/kallysto/pkg/format"
	"github.com/kallysto/kallysto/pkg/includes"
)

// ParseDefinitions reads the fragments of a markdown definitions file into
// into. Each fragment body must be {Name:value}. Leading and trailing
// newlines of value are dropped, so a table body sits on its own lines in
// the file but expands inline.
func ParseDefinitions(data []byte, into Definitions) error {
	_, frags, err := definitions.Parse(data)
	if err != nil {
		return err
	}
	for _, frag := range frags {
		value, err := fragmentValue(frag)
		if err != nil {
			return err
		}
		into[frag.Name] = value
	}
	return nil
}

func fragmentValue(frag definitions.Fragment) (string, error) {
	body := strings.TrimSpace(frag.Body())
	prefix := "{" + frag.Name + ":"
	if !strings.HasPrefix(body, prefix) || !strings.HasSuffix(body, "}") {
		return "", fmt.Errorf("fragment %q is not of the form {%s:value}", frag.Name, frag.Name)
	}
	value := body[len(prefix) : len(body)-1]
	return definitions.UnescapeBody(strings.Trim(value, "\n")), nil
}

// LoadIncludes reads every definitions file listed in the include file at
// includeFile. A name defined by more than one source takes the value from
// the file listed last.
func LoadIncludes(fsys afero.Fs, includeFile string) (Definitions, error) {
	inc := includes.Open(fsys, includeFile, format.MarkdownDialect())
	entries, err := inc.Entries()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "markdown")
	defs := make(Definitions)
	for _, entry := range entries {
		path := inc.Resolve(entry)
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read definitions %q: %w", path, err)
		}

		fileDefs := make(Definitions)
		if err := ParseDefinitions(data, fileDefs); err != nil {
			return nil, fmt.Errorf("failed to parse definitions %q: %w", path, err)
		}
		for name, value := range fileDefs {
			if _, ok := defs[name]; ok {
				logger.Warn("name defined by more than one source", "name", name, "path", path)
			}
			defs[name] = value
		}
	}
	return defs, nil
}
