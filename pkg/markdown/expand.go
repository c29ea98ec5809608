package markdown

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Definitions maps reference names to their substitution text.
type Definitions map[string]string

var tokenPattern = regexp.MustCompile(`\{([A-Za-z][A-Za-z0-9]*)\}`)

var mdParser = goldmark.New().Parser()

// span is a half-open byte range of the source.
type span struct{ start, stop int }

// Expand substitutes every {Name} token in source with defs[Name]. It
// returns the expanded text even when some tokens are unresolved; those are
// left in place and reported by an *UnresolvedReferenceError.
func Expand(source string, defs Definitions) (string, error) {
	src := []byte(source)
	code := codeSpans(src)

	var (
		sb         strings.Builder
		last       int
		unresolved []string
		seen       = make(map[string]bool)
	)
	for _, m := range tokenPattern.FindAllStringSubmatchIndex(source, -1) {
		start, stop := m[0], m[1]
		if inSpans(code, start) {
			continue
		}
		name := source[m[2]:m[3]]
		value, ok := defs[name]
		if !ok {
			if !seen[name] {
				seen[name] = true
				unresolved = append(unresolved, name)
			}
			continue
		}
		sb.WriteString(source[last:start])
		sb.WriteString(value)
		last = stop
	}
	sb.WriteString(source[last:])

	if len(unresolved) > 0 {
		return sb.String(), NewUnresolvedReferenceError(unresolved)
	}
	return sb.String(), nil
}

// References returns the unique names referenced outside code, in order.
func References(source string) []string {
	code := codeSpans([]byte(source))
	var names []string
	seen := make(map[string]bool)
	for _, m := range tokenPattern.FindAllStringSubmatchIndex(source, -1) {
		if inSpans(code, m[0]) {
			continue
		}
		name := source[m[2]:m[3]]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// codeSpans returns the sorted byte ranges covered by code blocks and
// inline code.
func codeSpans(src []byte) []span {
	var spans []span
	doc := mdParser.Parse(text.NewReader(src))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				spans = append(spans, span{seg.Start, seg.Stop})
			}
			return ast.WalkSkipChildren, nil
		case ast.KindCodeSpan:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					spans = append(spans, span{t.Segment.Start, t.Segment.Stop})
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}

func inSpans(spans []span, pos int) bool {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].stop > pos })
	return i < len(spans) && spans[i].start <= pos
}
