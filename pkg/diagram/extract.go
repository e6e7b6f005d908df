package diagram

import (
	"fmt"
	"os"
	"strings"

	"github.com/matzehuels/docdiagrams/pkg/errors"
)

const (
	// FenceLanguage is the info string that marks a diagram block.
	FenceLanguage = "mermaid"

	fenceMarker = "```"
	openFence   = fenceMarker + FenceLanguage
)

// ExtractFile reads the document at path and extracts its diagrams.
// A read failure is returned as an UNREADABLE_FILE error.
func ExtractFile(path string) ([]*Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnreadableFile, err, "read %s", path)
	}
	return Extract(path, string(data)), nil
}

// Extract scans content line by line and returns its Mermaid diagrams in
// document order. Headings update the section attached to later diagrams.
// A block with no closing fence runs to the end of the document. Blocks
// holding only whitespace are dropped.
func Extract(path, content string) []*Diagram {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var (
		diagrams []*Diagram
		section  string
	)
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if strings.HasPrefix(line, "#") {
			section = strings.TrimSpace(strings.Trim(line, "#"))
			continue
		}
		if !IsOpeningFence(line) {
			continue
		}

		start := i + 1
		var block []string
		for i++; i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), fenceMarker); i++ {
			block = append(block, lines[i])
		}

		source := strings.TrimSpace(strings.Join(block, "\n"))
		if source == "" {
			continue
		}
		diagrams = append(diagrams, newDiagram(path, source, section, start+1))
	}
	return diagrams
}

// IsOpeningFence reports whether line opens a diagram block. Indentation
// and surrounding markup such as HTML blocks do not matter; only the
// trimmed line is inspected.
func IsOpeningFence(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), openFence)
}

// HasFence reports whether content holds at least one line Extract would
// treat as the start of a diagram block.
func HasFence(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if IsOpeningFence(line) {
			return true
		}
	}
	return false
}

func newDiagram(path, source, section string, line int) *Diagram {
	typ := Classify(source)
	title := ExtractTitle(source, typ)
	if title == "" {
		title = fallbackTitle(section, typ)
	}
	return &Diagram{
		Source:  source,
		Title:   title,
		Type:    typ,
		Line:    line,
		Section: section,
		Path:    path,
		Hash:    Hash(source),
	}
}

func fallbackTitle(section string, typ Type) string {
	if section != "" {
		return fmt.Sprintf("%s_%s", section, typ)
	}
	return fmt.Sprintf("%s_diagram", typ)
}
