// Package cli implements the docdiagrams command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/docdiagrams/pkg/buildinfo"
	"github.com/matzehuels/docdiagrams/pkg/cache"
	"github.com/matzehuels/docdiagrams/pkg/httputil"
	"github.com/matzehuels/docdiagrams/pkg/pipeline"
	"github.com/matzehuels/docdiagrams/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = buildinfo.Name

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Render the Mermaid diagrams of a documentation tree to images",
		Long: `docdiagrams finds Mermaid diagrams in Markdown documentation, renders each one
to an image through a Kroki service, and writes an HTML index of the results.

Images are written next to the document they come from, named after the
document, the diagram title and a content hash.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.cleanCommand())
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Renderer Factory
// =============================================================================

// newRenderer builds the renderer for a run described by opts.
func (c *CLI) newRenderer(opts pipeline.Options, noCache bool) (*render.Renderer, error) {
	cc, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return render.New(render.Options{
		BaseURL:  opts.KrokiURL,
		Language: opts.Language,
		Format:   opts.Format,
		Client:   httputil.NewClient(opts.Timeout),
		Cache:    cc,
		CacheTTL: opts.CacheTTL,
		Logger:   c.Logger,
	})
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/docdiagrams/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
