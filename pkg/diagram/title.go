package diagram

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTitleLen is the exclusive lower bound on title length in runes.
const minTitleLen = 2

var (
	genericTitleRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)title\s*[:\s]+(.+)`),
		regexp.MustCompile(`(?i)%%\s*title[:\s]+(.+)`),
		regexp.MustCompile(`%%[ \t]*([^{%\s].*)`), // plain comment, not an %%{init}%% directive
	}

	flowchartLabelRes = []*regexp.Regexp{
		regexp.MustCompile(`\[([^\]]{4,})\]`),
		regexp.MustCompile(`\(([^\)]{4,})\)`),
		regexp.MustCompile(`\{([^\}]{4,})\}`),
	}

	participantRe  = regexp.MustCompile(`(?i)participant\s+(\w+)`)
	journeyTitleRe = regexp.MustCompile(`(?i)title\s+(.+)`)
)

// ExtractTitle derives a title from diagram source.
//
// Explicit title directives and comments win. Otherwise flowcharts use their
// first descriptive node label, sequence diagrams their first two
// participants, and journeys their title line. It returns "" when nothing
// longer than two characters is found.
func ExtractTitle(source string, typ Type) string {
	for _, re := range genericTitleRes {
		if m := re.FindStringSubmatch(source); m != nil {
			if t := strings.TrimSpace(m[1]); validTitle(t) {
				return t
			}
		}
	}

	body := commentRe.ReplaceAllString(source, "")
	var t string
	switch typ {
	case TypeFlowchart:
		t = flowchartTitle(body)
	case TypeSequence:
		t = sequenceTitle(body)
	case TypeJourney:
		t = journeyTitle(body)
	}
	if validTitle(t) {
		return t
	}
	return ""
}

func validTitle(t string) bool {
	return utf8.RuneCountInString(t) > minTitleLen
}

func flowchartTitle(source string) string {
	for _, re := range flowchartLabelRes {
		for _, m := range re.FindAllStringSubmatch(source, -1) {
			text := strings.TrimSpace(m[1])
			if utf8.RuneCountInString(text) > 3 && !isNumeric(text) {
				return text
			}
		}
	}
	return ""
}

func sequenceTitle(source string) string {
	m := participantRe.FindAllStringSubmatch(source, 2)
	if len(m) < 2 {
		return ""
	}
	return fmt.Sprintf("Sequence %s - %s", m[0][1], m[1][1])
}

func journeyTitle(source string) string {
	if m := journeyTitleRe.FindStringSubmatch(source); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
