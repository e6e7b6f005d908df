// Package pipeline drives a documentation diagram run end to end.
//
// # Stages
//
// A run executes, in order:
//
//  1. Clean (optional): remove previously generated images and the report
//  2. Probe: check that the rendering service is reachable
//  3. Discover: find Markdown documents likely to hold diagrams
//  4. Process: extract, name and render every diagram of every document
//  5. Report: write a static HTML index of the processed diagrams, and
//     optionally a JSON manifest from which the index can be rebuilt
//
// Work is strictly sequential. A fixed delay separates successive render
// requests. Failures are local to a diagram or document: they are counted
// and the run moves on. Only an unreadable root directory or an unreachable
// service stops a run.
//
// # Usage
//
//	opts := pipeline.DefaultOptions()
//	opts.Root = "docs"
//	result, err := pipeline.NewRunner(nil, logger).Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Stats.Generated, "images")
//
// Passing a nil renderer makes the runner build one from the options.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/docdiagrams/pkg/diagram"
	"github.com/matzehuels/docdiagrams/pkg/errors"
	"github.com/matzehuels/docdiagrams/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultRoot is the documentation directory scanned by default.
	DefaultRoot = "docs"

	// DefaultDelay separates successive render requests.
	DefaultDelay = 500 * time.Millisecond

	// DefaultTimeout bounds a single render request.
	DefaultTimeout = 60 * time.Second

	// DefaultReportName is the file name of the HTML index.
	DefaultReportName = "diagrams_index.html"

	// DefaultReportTitle heads the HTML index.
	DefaultReportTitle = "Diagram Index"
)

// DefaultKeywords mark document names or paths that likely hold diagrams.
var DefaultKeywords = []string{
	"diagrama", "flujo", "flow", "sequence", "chart",
	"arquitectura", "overview", "eventos", "registro",
	"mermaid", "graph",
}

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options configures a run. Field tags name the keys of the TOML config
// file read by LoadConfig.
type Options struct {
	// Discovery
	Root     string   `toml:"root"`
	Pattern  string   `toml:"pattern"`  // Case-insensitive path substring filter
	Keywords []string `toml:"keywords"` // Name/path hints; nil disables them
	Exclude  []string `toml:"exclude"`  // Doublestar globs relative to Root

	// Rendering
	Format   string        `toml:"format"`
	KrokiURL string        `toml:"kroki_url"`
	Language string        `toml:"language"`
	Delay    time.Duration `toml:"delay"`
	Timeout  time.Duration `toml:"timeout"`
	CacheTTL time.Duration `toml:"cache_ttl"`

	// Behaviour
	SkipExisting bool `toml:"skip_existing"` // Keep existing outputs unless Force
	Force        bool `toml:"force"`
	Clean        bool `toml:"clean"`      // Clean before generating
	CleanOnly    bool `toml:"clean_only"` // Clean and stop
	SkipProbe    bool `toml:"skip_probe"`

	// Report
	ReportName  string `toml:"report_name"`
	ReportTitle string `toml:"report_title"`
	Manifest    bool   `toml:"manifest"` // Also write a JSON manifest beside the report

	// Runtime options (not serialized)
	Logger *log.Logger `toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// DefaultOptions returns the options of a run with no configuration.
// SkipExisting is on and DefaultKeywords are used.
func DefaultOptions() Options {
	return Options{
		Root:         DefaultRoot,
		Keywords:     append([]string(nil), DefaultKeywords...),
		Format:       render.FormatPNG,
		KrokiURL:     render.DefaultBaseURL,
		Language:     diagram.FenceLanguage,
		Delay:        DefaultDelay,
		Timeout:      DefaultTimeout,
		SkipExisting: true,
		ReportName:   DefaultReportName,
		ReportTitle:  DefaultReportTitle,
	}
}

// ValidateAndSetDefaults fills empty fields and checks the result.
// Booleans, Keywords and Delay are taken as given: start from
// DefaultOptions to get their defaults. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Root == "" {
		o.Root = DefaultRoot
	}
	if o.Format == "" {
		o.Format = render.FormatPNG
	}
	if o.KrokiURL == "" {
		o.KrokiURL = render.DefaultBaseURL
	}
	if o.Language == "" {
		o.Language = diagram.FenceLanguage
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.ReportName == "" {
		o.ReportName = DefaultReportName
	}
	if o.ReportTitle == "" {
		o.ReportTitle = DefaultReportTitle
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := render.ValidateFormat(o.Format); err != nil {
		return err
	}
	if err := errors.ValidateURL(o.KrokiURL); err != nil {
		return err
	}
	if err := errors.ValidateFilename(o.ReportName); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "report_name")
	}
	if o.Delay < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "delay must not be negative")
	}
	if o.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "timeout must not be negative")
	}
	if o.CacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache_ttl must not be negative")
	}

	o.validated = true
	return nil
}

// ShouldSkipExisting reports whether existing outputs are left alone.
func (o *Options) ShouldSkipExisting() bool {
	return o.SkipExisting && !o.Force
}

// =============================================================================
// Result - Run Outcome
// =============================================================================

// Stats counts what a run did.
type Stats struct {
	FilesProcessed int           `json:"files_processed"`
	DiagramsFound  int           `json:"diagrams_found"`
	Generated      int           `json:"diagrams_generated"`
	Errors         int           `json:"errors"`
	Skipped        int           `json:"skipped"`
	Duration       time.Duration `json:"duration"`
}

// Result is the outcome of a run.
type Result struct {
	// RunID identifies the run in logs and in the report.
	RunID string

	// Stats holds the run counters.
	Stats Stats

	// Tally attributes render failures to reasons.
	Tally render.Tally

	// Diagrams lists rendered and skipped-existing diagrams in processing order.
	Diagrams []*diagram.Diagram

	// Files lists the discovered documents in processing order.
	Files []string

	// ReportPath is the written HTML index, or "" when none was written.
	ReportPath string

	// ManifestPath is the written JSON manifest, or "" when none was written.
	ManifestPath string

	// Removed counts files deleted by the clean stage.
	Removed int
}
