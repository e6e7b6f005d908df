// Package render turns Mermaid diagram source into images through a
// Kroki-compatible HTTP service.
//
// # Request flow
//
// [Renderer.Render] handles one diagram:
//
//  1. [Validate] rejects blocks that do not start with a known diagram
//     declaration. No request is made for them.
//  2. [Preprocess] rewrites multi-line node labels to use <br/>.
//  3. The render cache is consulted. A hit writes the stored image.
//  4. The body is POSTed to <base>/<language>/<format>. A 200 response is
//     written atomically to the output path.
//  5. On rejection the request is repeated with Accept: application/json to
//     obtain a readable error message.
//  6. If the message points at parentheses inside labels,
//     [SanitizeParentheses] escapes them and the request is tried once more.
//  7. If the first rejection carried an image, it is saved next to the
//     output as <name>_error.<ext>.
//
// Every failure is attributed to one [Reason] in the caller's [Tally].
//
// # Service coupling
//
// The only dependency on the wording of service error messages is
// [IsParenthesisFailure].
package render
