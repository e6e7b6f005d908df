package diagram

import "regexp"

// rule pairs a diagram type with the patterns that identify it.
type rule struct {
	typ      Type
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?im)` + e)
	}
	return out
}

// classifyRules is evaluated top to bottom. The header tier must stay ahead
// of the heuristic tier: body heuristics such as `title` or `key: value`
// also occur inside diagrams that declare their type explicitly.
var classifyRules = []rule{
	// Declaration headers.
	{TypeFlowchart, compileAll(`^\s*flowchart\b`, `^\s*graph\b`)},
	{TypeSequence, compileAll(`^\s*sequenceDiagram\b`)},
	{TypeClass, compileAll(`^\s*classDiagram\b`)},
	{TypeState, compileAll(`^\s*stateDiagram\b`)},
	{TypeER, compileAll(`^\s*erDiagram\b`)},
	{TypeJourney, compileAll(`^\s*journey\b`)},
	{TypeGantt, compileAll(`^\s*gantt\b`)},
	{TypePie, compileAll(`^\s*pie\b`)},
	{TypeGitGraph, compileAll(`^\s*gitGraph\b`)},

	// Body heuristics.
	{TypeFlowchart, compileAll(`flowchart\s+(TD|TB|BT|RL|LR)`, `graph\s+(TD|TB|BT|RL|LR)`)},
	{TypeSequence, compileAll(`participant\s+\w+`, `\w+\s*->>?\s*\w+`)},
	{TypeClass, compileAll(`class\s+\w+`, `\w+\s*:\s*\w+`)},
	{TypeState, compileAll(`state\s+\w+`)},
	{TypeER, compileAll(`\w+\s*\|\|--\|\|\s*\w+`, `\w+\s*\}o--o\{\s*\w+`)},
	{TypeJourney, compileAll(`title\s+.+`, `section\s+.+`)},
	{TypeGantt, compileAll(`dateFormat\s+`)},
	{TypePie, compileAll(`"\w+"\s*:\s*\d+`)},
	{TypeGitGraph, compileAll(`commit`, `branch\s+\w+`)},
}

var commentRe = regexp.MustCompile(`%%.*`)

// Classify returns the diagram type of source, or TypeUnknown when no rule
// matches. Mermaid comments are ignored.
func Classify(source string) Type {
	return firstMatch(classifyRules, commentRe.ReplaceAllString(source, ""))
}

func firstMatch(rules []rule, text string) Type {
	for _, r := range rules {
		for _, p := range r.patterns {
			if p.MatchString(text) {
				return r.typ
			}
		}
	}
	return TypeUnknown
}
