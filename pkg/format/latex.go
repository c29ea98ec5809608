package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kallysto/kallysto/pkg/definitions"
	"github.com/kallysto/kallysto/pkg/export"
)

const (
	// DefaultFigureWidth is the figure width as a fraction of \textwidth.
	DefaultFigureWidth = 0.8

	// DefaultPlacement is the float placement specifier.
	DefaultPlacement = "htbp"
)

// Latex renders exports as LaTeX command definitions. Each export becomes a
// command named after it, declared with \providecommand and then set with
// \renewcommand, so the last definition wins when a name is exported more
// than once.
type Latex struct {
	FigureWidth float64
	Placement   string
}

// NewLatex returns a Latex formatter with default settings.
func NewLatex() *Latex {
	return &Latex{
		FigureWidth: DefaultFigureWidth,
		Placement:   DefaultPlacement,
	}
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// EscapeLatex escapes the LaTeX special characters in s.
func EscapeLatex(s string) string {
	return latexEscaper.Replace(s)
}

// Render implements Formatter. Value content is emitted verbatim so that
// values may carry LaTeX markup; table cells and captions are escaped.
func (l *Latex) Render(x *export.Export, meta Metadata) (string, error) {
	if err := l.CheckName(x.Name()); err != nil {
		return "", err
	}

	var body string
	switch x.Kind() {
	case export.KindValue:
		body = definitions.EscapeBody(x.Content())
	case export.KindTable:
		body = l.table(x)
	case export.KindFigure:
		body = l.figure(x, meta.ImageFile)
	default:
		return "", fmt.Errorf("latex: unsupported export kind %q", x.Kind())
	}

	var sb strings.Builder
	sb.WriteString(Header(x, meta))
	fmt.Fprintf(&sb, "\\providecommand{\\%s}{dummy}\n", x.Name())
	fmt.Fprintf(&sb, "\\renewcommand{\\%s}{%s}\n", x.Name(), body)
	return sb.String(), nil
}

// CheckName implements NameChecker. LaTeX control words are letters only.
func (l *Latex) CheckName(name string) error {
	if strings.ContainsAny(name, "0123456789") {
		return export.NewInvalidNameError(name, "LaTeX command names may contain letters only")
	}
	return nil
}

func (l *Latex) placement() string {
	if l.Placement == "" {
		return DefaultPlacement
	}
	return l.Placement
}

func (l *Latex) width() string {
	w := l.FigureWidth
	if w <= 0 {
		w = DefaultFigureWidth
	}
	return strconv.FormatFloat(w, 'f', -1, 64)
}

func (l *Latex) table(x *export.Export) string {
	grid := x.Grid()

	align := []byte{'l'}
	for j := range grid.Columns {
		if isNumeric(grid.Cells, j) {
			align = append(align, 'r')
		} else {
			align = append(align, 'l')
		}
	}

	row := func(cells []string) string {
		escaped := make([]string, len(cells))
		for i, c := range cells {
			escaped[i] = EscapeLatex(c)
		}
		return "    " + strings.Join(escaped, " & ") + ` \\`
	}

	lines := []string{
		"%",
		fmt.Sprintf(`\begin{table}[%s]`, l.placement()),
		`  \centering`,
		fmt.Sprintf(`  \begin{tabular}{%s}`, align),
		`    \toprule`,
		row(append([]string{grid.IndexName}, grid.Columns...)),
		`    \midrule`,
	}
	for i, label := range grid.Labels {
		lines = append(lines, row(append([]string{label}, grid.Cells[i]...)))
	}
	lines = append(lines,
		`    \bottomrule`,
		`  \end{tabular}`,
		fmt.Sprintf(`  \caption{%s}`, EscapeLatex(x.Caption())),
		fmt.Sprintf(`  \label{tab:%s}`, x.Name()),
		`\end{table}`,
	)
	return strings.Join(lines, "\n") + "\n"
}

func (l *Latex) figure(x *export.Export, image string) string {
	lines := []string{
		"%",
		fmt.Sprintf(`\begin{figure}[%s]`, l.placement()),
		`  \centering`,
		fmt.Sprintf(`  \includegraphics[width=%s\textwidth]{%s}`, l.width(), image),
		fmt.Sprintf(`  \caption{%s}`, EscapeLatex(x.Caption())),
		fmt.Sprintf(`  \label{fig:%s}`, x.Name()),
		`\end{figure}`,
	}
	return strings.Join(lines, "\n") + "\n"
}
