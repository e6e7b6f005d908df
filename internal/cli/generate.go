package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/docdiagrams/pkg/httputil"
	"github.com/matzehuels/docdiagrams/pkg/pipeline"
	"github.com/matzehuels/docdiagrams/pkg/render"
)

// runFlags holds the flags shared by generate and clean.
type runFlags struct {
	config      string
	pattern     string
	exclude     []string
	keywords    []string
	reportName  string
	reportTitle string
}

// generateFlags holds generate-only flags.
type generateFlags struct {
	runFlags
	format       string
	krokiURL     string
	delay        time.Duration
	timeout      time.Duration
	cacheTTL     time.Duration
	force        bool
	clean        bool
	cleanOnly    bool
	skipProbe    bool
	skipExisting bool
	manifest     bool
	noCache      bool
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.config, "config", "c", "", "config file (default ./"+pipeline.ConfigFileName+" if present)")
	fs.StringVarP(&f.pattern, "pattern", "p", "", "only documents whose path contains this text")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "glob of paths to skip, relative to the root (repeatable)")
	fs.StringSliceVar(&f.keywords, "keywords", nil, "path keywords that mark diagram documents")
	fs.StringVar(&f.reportName, "report-name", pipeline.DefaultReportName, "file name of the HTML index")
	fs.StringVar(&f.reportTitle, "report-title", pipeline.DefaultReportTitle, "title of the HTML index")
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate [root]",
		Short: "Render every diagram under a documentation root",
		Long: `Render every Mermaid diagram found in Markdown documents under root
(default "docs") and write an HTML index of the results.

Existing images are kept unless --force is given. Settings can also be
read from a TOML file; flags given on the command line take precedence.`,
		Example: `  # Render ./docs as PNG
  docdiagrams generate

  # Render a handbook as SVG against a local Kroki
  docdiagrams generate handbook --format svg --kroki-url http://localhost:8000

  # Remove old images first and re-render everything
  docdiagrams generate --clean --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveGenerateOptions(cmd, args, &flags)
			if err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), opts, flags.noCache)
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func (f *generateFlags) register(fs *pflag.FlagSet) {
	f.runFlags.register(fs)
	fs.StringVarP(&f.format, "format", "f", render.FormatPNG, "output format: png, svg, pdf")
	fs.StringVar(&f.krokiURL, "kroki-url", render.DefaultBaseURL, "base URL of the Kroki service")
	fs.DurationVar(&f.delay, "delay", pipeline.DefaultDelay, "pause between render requests")
	fs.DurationVar(&f.timeout, "timeout", pipeline.DefaultTimeout, "timeout of a single render request")
	fs.DurationVar(&f.cacheTTL, "cache-ttl", 0, "lifetime of cached images (0 = forever)")
	fs.BoolVar(&f.force, "force", false, "re-render diagrams whose image already exists")
	fs.BoolVar(&f.clean, "clean", false, "remove generated images before rendering")
	fs.BoolVar(&f.cleanOnly, "clean-only", false, "remove generated images and stop")
	fs.BoolVar(&f.skipProbe, "skip-probe", false, "do not check the service before starting")
	fs.BoolVar(&f.skipExisting, "skip-existing", true, "keep images that already exist (--skip-existing=false re-renders)")
	fs.BoolVar(&f.manifest, "manifest", false, "also write a JSON manifest beside the HTML index")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the local render cache")
}

// resolveGenerateOptions merges defaults, the config file and the flags
// that were set explicitly, in that order.
func resolveGenerateOptions(cmd *cobra.Command, args []string, f *generateFlags) (pipeline.Options, error) {
	opts, err := loadBaseOptions(f.config)
	if err != nil {
		return opts, err
	}
	applyRunFlags(cmd.Flags(), &f.runFlags, &opts)

	changed := cmd.Flags().Changed
	if changed("format") {
		opts.Format = f.format
	}
	if changed("kroki-url") {
		opts.KrokiURL = f.krokiURL
	}
	if changed("delay") {
		opts.Delay = f.delay
	}
	if changed("timeout") {
		opts.Timeout = f.timeout
	}
	if changed("cache-ttl") {
		opts.CacheTTL = f.cacheTTL
	}
	if changed("force") {
		opts.Force = f.force
	}
	if changed("skip-existing") {
		opts.SkipExisting = f.skipExisting
	}
	if changed("clean") {
		opts.Clean = f.clean
	}
	if changed("clean-only") {
		opts.CleanOnly = f.cleanOnly
	}
	if changed("skip-probe") {
		opts.SkipProbe = f.skipProbe
	}
	if changed("manifest") {
		opts.Manifest = f.manifest
	}
	if len(args) > 0 {
		opts.Root = args[0]
	}
	return opts, opts.ValidateAndSetDefaults()
}

// loadBaseOptions returns the defaults overlaid with the config file at
// path, or with ./.docdiagrams.toml when path is empty and that file exists.
func loadBaseOptions(path string) (pipeline.Options, error) {
	base := pipeline.DefaultOptions()
	if path == "" {
		path = pipeline.FindConfig(".")
	}
	if path == "" {
		return base, nil
	}
	return pipeline.LoadConfig(path, base)
}

func applyRunFlags(fs *pflag.FlagSet, f *runFlags, opts *pipeline.Options) {
	if fs.Changed("pattern") {
		opts.Pattern = f.pattern
	}
	if fs.Changed("exclude") {
		opts.Exclude = f.exclude
	}
	if fs.Changed("keywords") {
		opts.Keywords = f.keywords
	}
	if fs.Changed("report-name") {
		opts.ReportName = f.reportName
	}
	if fs.Changed("report-title") {
		opts.ReportTitle = f.reportTitle
	}
}

func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, noCache bool) error {
	opts.Logger = c.Logger

	renderer, err := c.newRenderer(opts, noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(renderer, c.Logger)
	runner.Probe = spinningProbe(httputil.Probe)

	printRunHeader(opts, renderer.Endpoint())
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	if opts.Clean || opts.CleanOnly {
		printSuccess("Removed %d generated files", res.Removed)
	}
	if opts.CleanOnly {
		return nil
	}
	if len(res.Files) == 0 {
		printWarning("No documentation files found under %s", opts.Root)
		return nil
	}

	printSummary(res.Stats)
	if res.ReportPath != "" {
		printNewline()
		printSuccess("Report written")
		printFile(res.ReportPath)
		if res.ManifestPath != "" {
			printFile(res.ManifestPath)
		}
	}
	printDiagnostics(res.Tally)

	if res.Stats.Errors > 0 {
		printNewline()
		printNextStep("Re-run with details", appName+" generate --verbose")
		return fmt.Errorf("%d diagram(s) failed to render", res.Stats.Errors)
	}
	return nil
}

// spinningProbe shows a spinner on an interactive stderr while probe runs.
func spinningProbe(probe pipeline.ProbeFunc) pipeline.ProbeFunc {
	return func(ctx context.Context, url string, logger *log.Logger) error {
		s := newSpinnerWithContext(ctx, os.Stderr, "Connecting to "+url)
		if isTerminal(os.Stderr) {
			s.Start()
		}
		err := probe(ctx, url, logger)
		s.Stop()
		if err != nil {
			printError("Cannot reach %s", url)
		}
		return err
	}
}
