package io

import (
	"time"

	"github.com/matzehuels/docdiagrams/pkg/diagram"
)

// ManifestVersion is the manifest format written by this package.
const ManifestVersion = 1

// Summary holds the counters of the run that produced a manifest.
type Summary struct {
	Files     int `json:"files"`
	Diagrams  int `json:"diagrams"`
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// Manifest describes the output of one run.
type Manifest struct {
	Version     int                `json:"version"`
	RunID       string             `json:"run_id"`
	Root        string             `json:"root"`
	Format      string             `json:"format"`
	GeneratedAt time.Time          `json:"generated_at"`
	Summary     Summary            `json:"summary"`
	Diagrams    []*diagram.Diagram `json:"diagrams"`
}
