package diagram

import (
	"crypto/sha256"
	"encoding/hex"
)

// Type is the detected kind of a Mermaid diagram.
type Type string

// Supported diagram types. TypeUnknown is returned when no rule matches.
const (
	TypeFlowchart Type = "flowchart"
	TypeSequence  Type = "sequence"
	TypeClass     Type = "class"
	TypeState     Type = "state"
	TypeER        Type = "er"
	TypeJourney   Type = "journey"
	TypeGantt     Type = "gantt"
	TypePie       Type = "pie"
	TypeGitGraph  Type = "gitgraph"
	TypeUnknown   Type = "unknown"
)

// Types lists every diagram type in classification priority order,
// followed by TypeUnknown.
var Types = []Type{
	TypeFlowchart,
	TypeSequence,
	TypeClass,
	TypeState,
	TypeER,
	TypeJourney,
	TypeGantt,
	TypePie,
	TypeGitGraph,
	TypeUnknown,
}

// Diagram is one fenced Mermaid block extracted from a document.
//
// Extract fills every field except OutputFilename, which the pipeline sets
// once when it decides where the rendered image goes.
type Diagram struct {
	Source         string `json:"source"`                    // Trimmed block text
	Title          string `json:"title,omitempty"`           // Extracted or fallback title
	Type           Type   `json:"type"`                      // Detected diagram type
	Line           int    `json:"line"`                      // 1-based line of the first block line
	Section        string `json:"section,omitempty"`         // Nearest preceding heading
	Path           string `json:"path"`                      // Source document path
	Hash           string `json:"hash"`                      // Hex SHA-256 of Source
	OutputFilename string `json:"output_filename,omitempty"` // Rendered image file name
}

// Hash returns the hex SHA-256 digest of source.
func Hash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
