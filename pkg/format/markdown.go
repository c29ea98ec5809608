package format

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kallysto/kallysto/pkg/definitions"
	"github.com/kallysto/kallysto/pkg/export"
)

// Markdown renders exports as {Name:body} blocks for the markdown
// preprocessor.
type Markdown struct{}

// Render implements Formatter. Table bodies start and end with a newline
// so that the pipe table sits on lines of its own; the preprocessor trims
// them again.
func (Markdown) Render(x *export.Export, meta Metadata) (string, error) {
	var body string
	switch x.Kind() {
	case export.KindValue:
		body = definitions.EscapeBody(x.Content())
	case export.KindTable:
		body = "\n" + PipeTable(x.Grid()) + "\n"
	case export.KindFigure:
		body = fmt.Sprintf("![%s](%s %q)", x.Name(), meta.ImageFile, x.Caption())
	default:
		return "", fmt.Errorf("markdown: unsupported export kind %q", x.Kind())
	}

	var sb strings.Builder
	sb.WriteString(Header(x, meta))
	fmt.Fprintf(&sb, "{%s:%s}\n", x.Name(), body)
	return sb.String(), nil
}

var pipeEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

// PipeTable renders a grid as a GitHub-flavoured pipe table. The index is
// the first column; numeric columns are right aligned.
func PipeTable(grid *export.Grid) string {
	header := append([]string{grid.IndexName}, grid.Columns...)
	rows := make([][]string, len(grid.Labels))
	for i, label := range grid.Labels {
		rows[i] = append([]string{label}, grid.Cells[i]...)
	}

	right := make([]bool, len(header))
	for j := range grid.Columns {
		right[j+1] = isNumeric(grid.Cells, j)
	}

	widths := make([]int, len(header))
	measure := func(cells []string) {
		for j, c := range cells {
			widths[j] = max(widths[j], utf8.RuneCountInString(pipeEscaper.Replace(c)), 3)
		}
	}
	measure(header)
	for _, r := range rows {
		measure(r)
	}

	pad := func(s string, j int) string {
		s = pipeEscaper.Replace(s)
		gap := strings.Repeat(" ", widths[j]-utf8.RuneCountInString(s))
		if right[j] {
			return gap + s
		}
		return s + gap
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for j, c := range cells {
			sb.WriteString(" " + pad(c, j) + " |")
		}
		sb.WriteString("\n")
	}

	writeRow(header)
	sb.WriteString("|")
	for j, w := range widths {
		if right[j] {
			sb.WriteString(strings.Repeat("-", w+1) + ":|")
		} else {
			sb.WriteString(":" + strings.Repeat("-", w+1) + "|")
		}
	}
	sb.WriteString("\n")
	for _, r := range rows {
		writeRow(r)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
