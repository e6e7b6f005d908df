package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFiles creates files under root from a path → content map.
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// testOptions returns defaults rooted at root with the probe and delay off.
func testOptions(root string) Options {
	opts := DefaultOptions()
	opts.Root = root
	opts.Delay = 0
	opts.SkipProbe = true
	return opts
}

const flowDoc = "# Overview\n\n```mermaid\ngraph TD\n  A[Start] --> B[End]\n```\n"

const twoDiagramDoc = `# Login

` + "```mermaid" + `
sequenceDiagram
  participant Alice
  participant Bob
  Alice->>Bob: hi
` + "```" + `

## Storage

` + "```mermaid" + `
erDiagram
  USER ||--|| ACCOUNT : owns
` + "```" + `
`
