package definitions

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// CommentPrefix starts every provenance header line.
	CommentPrefix = "% "

	// Marker is the first line prefix of every fragment.
	Marker = CommentPrefix + "Export: "

	// Header keys shared by all formatters.
	KeyExport     = "Export"
	KeyKind       = "Kind"
	KeyUID        = "Uid"
	KeyCreated    = "Created"
	KeyExported   = "Exported"
	KeyTitle      = "Title"
	KeySource     = "Source"
	KeySourceFile = "Source file"
	KeyDataFile   = "Data file"
	KeyImageFile  = "Image file"
)

// Fragment is the rendered definition of one export.
type Fragment struct {
	Name string
	Kind string
	Text string
}

// ParseFragment reads a single rendered fragment. The text must start with
// the Marker line and carry a Kind header.
func ParseFragment(text string) (Fragment, error) {
	text = strings.TrimRight(text, "\n")
	if !strings.HasPrefix(text, Marker) {
		return Fragment{}, fmt.Errorf("fragment does not start with %q", strings.TrimSpace(Marker))
	}

	frag := Fragment{Text: text}
	header := parseHeader(text)
	frag.Name = header[KeyExport]
	frag.Kind = header[KeyKind]

	if frag.Name == "" {
		return Fragment{}, errors.New("fragment has an empty name")
	}
	if strings.Contains(text[len(Marker):], "\n"+Marker) {
		return Fragment{}, fmt.Errorf("fragment %q contains a second marker line", frag.Name)
	}
	return frag, nil
}

// EscapeBody prefixes every body line that reads like a marker line, at
// any depth of leading '%', with one more '%'. A rendered body therefore
// never starts a new fragment. In LaTeX the escaped line is still a
// comment; markdown readers undo it with UnescapeBody.
func EscapeBody(body string) string {
	if !strings.Contains(body, "Export: ") {
		return body
	}
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if isMarkerLike(line) {
			lines[i] = "%" + line
		}
	}
	return strings.Join(lines, "\n")
}

// UnescapeBody reverses EscapeBody.
func UnescapeBody(body string) string {
	if !strings.Contains(body, "Export: ") {
		return body
	}
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "%%") && isMarkerLike(line) {
			lines[i] = line[1:]
		}
	}
	return strings.Join(lines, "\n")
}

func isMarkerLike(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, "%"), " Export: ") && strings.HasPrefix(line, "%")
}

// Header returns the value of a provenance header line, or "".
func (f Fragment) Header(key string) string {
	return parseHeader(f.Text)[key]
}

// Body returns the fragment text after the provenance header.
func (f Fragment) Body() string {
	lines := strings.Split(f.Text, "\n")
	i := 0
	for i < len(lines) && strings.HasPrefix(lines[i], CommentPrefix) {
		i++
	}
	return strings.Join(lines[i:], "\n")
}

// parseHeader reads the leading "% Key: value" lines.
func parseHeader(text string) map[string]string {
	header := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(line, CommentPrefix) {
			break
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(line, CommentPrefix), ": ")
		if !ok {
			continue
		}
		header[key] = strings.TrimSpace(value)
	}
	return header
}

// Parse splits the contents of a definitions file into fragments. Text
// before the first marker is returned as the preamble. If a name occurs more
// than once, the later fragment replaces the earlier one in place.
func Parse(data []byte) (string, []Fragment, error) {
	var (
		preamble strings.Builder
		chunks   []string
		current  *strings.Builder
	)

	for _, line := range strings.SplitAfter(string(data), "\n") {
		if strings.HasPrefix(line, Marker) {
			if current != nil {
				chunks = append(chunks, current.String())
			}
			current = &strings.Builder{}
		}
		if current == nil {
			preamble.WriteString(line)
			continue
		}
		current.WriteString(line)
	}
	if current != nil {
		chunks = append(chunks, current.String())
	}

	var frags []Fragment
	index := make(map[string]int)
	for _, chunk := range chunks {
		frag, err := ParseFragment(chunk)
		if err != nil {
			return "", nil, err
		}
		if i, ok := index[frag.Name]; ok {
			frags[i] = frag
			continue
		}
		index[frag.Name] = len(frags)
		frags = append(frags, frag)
	}

	return strings.TrimSpace(preamble.String()), frags, nil
}

// Encode renders a preamble and fragments back to file contents. Fragments
// are separated by a blank line.
func Encode(preamble string, frags []Fragment) []byte {
	var sb strings.Builder
	if preamble != "" {
		sb.WriteString(preamble)
		sb.WriteString("\n\n")
	}
	for i, frag := range frags {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.TrimRight(frag.Text, "\n"))
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}
