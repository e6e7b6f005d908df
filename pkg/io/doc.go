// Package io provides JSON import and export of run manifests.
//
// # Overview
//
// A manifest records what a run produced: every rendered or kept diagram
// with its source location, detected type, title and output file name,
// plus the run counters. It is written beside the HTML index so the index
// can be rebuilt, or consumed by other tools, without re-rendering.
//
// # JSON Format
//
//	{
//	  "version": 1,
//	  "run_id": "4f6c…",
//	  "root": "docs",
//	  "format": "png",
//	  "generated_at": "2026-10-19T12:00:00Z",
//	  "summary": {"files": 3, "diagrams": 5, "generated": 4, "skipped": 1, "errors": 0},
//	  "diagrams": [
//	    {
//	      "source": "graph TD\n  A --> B",
//	      "title": "Request flow",
//	      "type": "flowchart",
//	      "line": 12,
//	      "section": "Overview",
//	      "path": "docs/flow.md",
//	      "hash": "9b1c…",
//	      "output_filename": "flow_request_flow_9b1c0d2e.png"
//	    }
//	  ]
//	}
//
// # Import
//
// Use [ImportJSON] to read a manifest from a file path, or [ReadJSON] to
// read from any io.Reader. Both check the version and that every diagram
// names its document and output file.
//
// # Export
//
// Use [ExportJSON] to write a manifest to a file, or [WriteJSON] to write
// to any io.Writer.
package io
