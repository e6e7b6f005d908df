// Package pkg provides the libraries behind docdiagrams.
//
// # Overview
//
// docdiagrams finds Mermaid diagrams in Markdown documentation, renders
// each one to an image through a Kroki service and writes a static HTML
// index of the results. The pkg directory is organized as follows.
//
// # Architecture
//
// The data flow of a run:
//
//	Markdown documents
//	         ↓
//	    [pipeline] Discover (which documents to scan)
//	         ↓
//	    [diagram] package (extract, classify, title, file name)
//	         ↓
//	    [render] package (Kroki request, retry, failure reasons)
//	         ↓
//	    images + HTML index (+ JSON manifest via [io])
//
// # Quick Start
//
//	opts := pipeline.DefaultOptions()
//	opts.Root = "docs"
//	res, err := pipeline.NewRunner(nil, logger).Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Stats.Generated, "images,", res.Stats.Errors, "errors")
//
// # Main Packages
//
// [diagram] - Fenced block extraction, type classification, title
// extraction and output file naming. Pure functions over text.
//
// [render] - Renders one diagram through the Kroki HTTP API. Validates and
// preprocesses the source, retries once with escaped label parentheses, and
// attributes failures to a [render.Reason].
//
// [pipeline] - Orchestrates a run: clean, probe, discover, process, report.
// Also loads TOML configuration.
//
// [cache] - Render cache keyed by a hash of the service endpoint and source.
// FileCache for the CLI, NullCache to disable caching.
//
// [httputil] - HTTP client construction and the service reachability probe.
//
// [io] - JSON import and export of run manifests.
//
// [observability] - Hooks for metrics and tracing of runs, renders, cache
// lookups and HTTP requests.
//
// [errors] - Coded errors and input validation.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
//	go test ./...
package pkg
