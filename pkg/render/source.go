package render

import (
	"regexp"
	"strings"

	"github.com/matzehuels/docdiagrams/pkg/errors"
)

// Declarations accepted as the first content line of a diagram.
var Declarations = []string{
	"flowchart",
	"graph",
	"sequenceDiagram",
	"classDiagram",
	"classDiagram-v2",
	"stateDiagram",
	"stateDiagram-v2",
	"erDiagram",
	"journey",
	"gantt",
	"pie",
	"gitGraph",
	"mindmap",
	"timeline",
	"requirementDiagram",
}

var declarationSet = func() map[string]bool {
	m := make(map[string]bool, len(Declarations))
	for _, d := range Declarations {
		m[strings.ToLower(d)] = true
	}
	return m
}()

// Validate checks that source starts with a known diagram declaration.
// Blank lines and %% comments or directives before it are skipped. The
// returned error carries INVALID_SYNTAX.
func Validate(source string) error {
	if strings.TrimSpace(source) == "" {
		return errors.New(errors.ErrCodeInvalidSyntax, "empty diagram")
	}

	for _, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		token := strings.Fields(line)[0]
		token = strings.TrimRight(token, ":;")
		if !declarationSet[strings.ToLower(token)] {
			return errors.New(errors.ErrCodeInvalidSyntax, "unrecognized diagram declaration %q", line)
		}
		return nil
	}
	return errors.New(errors.ErrCodeInvalidSyntax, "no diagram content")
}

// label spans, in the order they are rewritten.
var (
	squareRe = regexp.MustCompile(`\[([^\]]*)\]`)
	braceRe  = regexp.MustCompile(`\{([^\}]*)\}`)
	parenRe  = regexp.MustCompile(`\(([^\)]*)\)`)
)

// Preprocess replaces line breaks inside [...], {...} and (...) spans
// with <br/>. Text outside those spans is left alone.
func Preprocess(source string) string {
	out := source
	for _, re := range []*regexp.Regexp{squareRe, braceRe, parenRe} {
		out = re.ReplaceAllStringFunc(out, func(span string) string {
			if !strings.Contains(span, "\n") {
				return span
			}
			return span[:1] + strings.ReplaceAll(span[1:len(span)-1], "\n", "<br/>") + span[len(span)-1:]
		})
	}
	return out
}

var parenEscaper = strings.NewReplacer("(", "&#40;", ")", "&#41;")

// SanitizeParentheses escapes ( and ) as &#40; and &#41; inside [...] and
// {...} labels. Round-bracket node shapes are not touched.
func SanitizeParentheses(source string) string {
	out := source
	for _, re := range []*regexp.Regexp{squareRe, braceRe} {
		out = re.ReplaceAllStringFunc(out, func(span string) string {
			return span[:1] + parenEscaper.Replace(span[1:len(span)-1]) + span[len(span)-1:]
		})
	}
	return out
}

// parenthesisMarker is the parser complaint the service emits when it meets
// an unescaped parenthesis inside a label.
const parenthesisMarker = "got 'PS'"

// IsParenthesisFailure reports whether a service error message indicates
// unescaped parentheses inside node labels.
func IsParenthesisFailure(msg string) bool {
	return strings.Contains(msg, parenthesisMarker)
}
