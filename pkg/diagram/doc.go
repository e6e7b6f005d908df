// Package diagram extracts Mermaid diagrams from markdown documents.
//
// # Overview
//
// The package turns a document into a list of [Diagram] records:
//
//   - [Extract] scans the document for fenced Mermaid blocks and tracks the
//     heading that encloses each one
//   - [Classify] maps diagram source to a [Type] with an ordered rule list
//   - [ExtractTitle] derives a human-readable title from the source
//   - [Filename] derives a stable output file name for a rendered image
//
// All functions except [ExtractFile] are pure.
//
// # Classification
//
// Rules are evaluated in order and the first matching rule wins. Declaration
// headers (flowchart, sequenceDiagram, erDiagram, ...) anchored at the start
// of a line are tried for every type before any body heuristic, so a pie
// chart with a title line is never mistaken for a user journey:
//
//	diagram.Classify("pie title Pets\n\"Dogs\": 386")  // TypePie
//	diagram.Classify("participant Alice")             // TypeSequence
//	diagram.Classify("hello")                         // TypeUnknown
//
// # File Names
//
// Generated names follow <stem>_<slug>_<hash8>.<format>. The eight hex digit
// suffix comes from the content hash and keeps names distinct when two
// diagrams produce the same slug. [IsGenerated] recognises these names so
// that clean mode only removes files this package produced.
package diagram
