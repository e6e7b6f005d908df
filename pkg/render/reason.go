package render

import "sort"

// Reason classifies why a diagram failed to render.
type Reason string

// Failure reasons.
const (
	ReasonParentheses Reason = "parentheses_in_labels"
	ReasonSyntax      Reason = "syntax_error"
	ReasonConnection  Reason = "connection_error"
	ReasonOther       Reason = "other"
)

// Reasons lists every failure reason in reporting order.
var Reasons = []Reason{ReasonParentheses, ReasonSyntax, ReasonConnection, ReasonOther}

// Tally counts failures per reason over a run.
type Tally map[Reason]int

// NewTally returns a tally with every reason present at zero.
func NewTally() Tally {
	t := make(Tally, len(Reasons))
	for _, r := range Reasons {
		t[r] = 0
	}
	return t
}

// Add increments the count for r. It is a no-op on a nil tally.
func (t Tally) Add(r Reason) {
	if t != nil {
		t[r]++
	}
}

// Total returns the sum of all counts.
func (t Tally) Total() int {
	n := 0
	for _, c := range t {
		n += c
	}
	return n
}

// NonZero returns the reasons with a positive count, in reporting order
// followed by any unknown reasons sorted by name.
func (t Tally) NonZero() []Reason {
	var out []Reason
	known := make(map[Reason]bool, len(Reasons))
	for _, r := range Reasons {
		known[r] = true
		if t[r] > 0 {
			out = append(out, r)
		}
	}
	var extra []Reason
	for r, c := range t {
		if !known[r] && c > 0 {
			extra = append(extra, r)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}
