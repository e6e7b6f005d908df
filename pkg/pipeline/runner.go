package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/docdiagrams/pkg/diagram"
	"github.com/matzehuels/docdiagrams/pkg/httputil"
	"github.com/matzehuels/docdiagrams/pkg/observability"
	"github.com/matzehuels/docdiagrams/pkg/render"
)

// Renderer renders one diagram to outputPath, recording failures in tally.
// *render.Renderer satisfies it.
type Renderer interface {
	Render(ctx context.Context, d *diagram.Diagram, outputPath string, tally render.Tally) error
}

// ProbeFunc checks that the rendering service at url is reachable.
type ProbeFunc func(ctx context.Context, url string, logger *log.Logger) error

// Runner executes runs. It holds no per-run state: every Execute call
// starts from zero counters and returns its own Result.
type Runner struct {
	Renderer Renderer
	Probe    ProbeFunc
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil renderer is built from the options of
// each run; a nil logger logs to the default logger.
func NewRunner(r Renderer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Renderer: r,
		Probe:    httputil.Probe,
		Logger:   logger,
	}
}

// run carries the mutable state of one Execute call.
type run struct {
	opts     Options
	renderer Renderer
	logger   *log.Logger
	result   *Result
	rendered int // render requests issued, drives the inter-request delay
}

// Execute performs a complete run: optional clean, probe, discovery,
// per-document processing and the report.
//
// The returned error is non-nil only when the run could not proceed at
// all (invalid options, unreadable root, unreachable service, cancelled
// context). Per-diagram failures are counted in Result.Stats.Errors and
// attributed in Result.Tally.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &Result{
		RunID: uuid.New().String(),
		Tally: render.NewTally(),
	}
	hooks := observability.Pipeline()
	hooks.OnRunStart(ctx, res.RunID, opts.Root)

	err := r.execute(ctx, opts, res)
	res.Stats.Duration = time.Since(start)
	hooks.OnRunComplete(ctx, res.RunID, observability.RunSummary{
		Files:     res.Stats.FilesProcessed,
		Diagrams:  res.Stats.DiagramsFound,
		Generated: res.Stats.Generated,
		Skipped:   res.Stats.Skipped,
		Errors:    res.Stats.Errors,
	}, res.Stats.Duration, err)
	return res, err
}

func (r *Runner) execute(ctx context.Context, opts Options, res *Result) error {
	start := time.Now()
	logger := opts.Logger.With("run", res.RunID[:8])

	if opts.Clean || opts.CleanOnly {
		removed, err := Clean(opts)
		if err != nil {
			return err
		}
		res.Removed = removed
		if opts.CleanOnly {
			return nil
		}
	}

	renderer := r.Renderer
	if renderer == nil {
		built, err := render.New(render.Options{
			BaseURL:  opts.KrokiURL,
			Language: opts.Language,
			Format:   opts.Format,
			Client:   httputil.NewClient(opts.Timeout),
			CacheTTL: opts.CacheTTL,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		renderer = built
	}

	if !opts.SkipProbe && r.Probe != nil {
		if err := r.Probe(ctx, opts.KrokiURL, logger); err != nil {
			return err
		}
		logger.Info("connected", "url", opts.KrokiURL)
	}

	files, err := Discover(opts)
	if err != nil {
		return err
	}
	res.Files = files
	if len(files) == 0 {
		logger.Warn("no documentation files found", "root", opts.Root)
		return nil
	}
	logger.Info("discovered documents", "files", len(files), "root", opts.Root)

	st := &run{opts: opts, renderer: renderer, logger: logger, result: res}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := st.processFile(ctx, path); err != nil {
			return err
		}
	}

	if len(res.Diagrams) > 0 {
		report, err := WriteReport(opts, res)
		if err != nil {
			logger.Error("report not written", "err", err)
			res.Stats.Errors++
		} else {
			res.ReportPath = report
			logger.Info("wrote report", "file", report)
		}
		if opts.Manifest {
			manifest, err := WriteManifest(opts, res)
			if err != nil {
				logger.Error("manifest not written", "err", err)
				res.Stats.Errors++
			} else {
				res.ManifestPath = manifest
				logger.Info("wrote manifest", "file", manifest)
			}
		}
	}

	logger.Info("run complete",
		"files", res.Stats.FilesProcessed,
		"diagrams", res.Stats.DiagramsFound,
		"generated", res.Stats.Generated,
		"skipped", res.Stats.Skipped,
		"errors", res.Stats.Errors,
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// processFile extracts and renders the diagrams of one document. It only
// returns an error when ctx is cancelled.
func (st *run) processFile(ctx context.Context, path string) error {
	res := st.result
	diagrams, err := diagram.ExtractFile(path)
	if err != nil {
		st.logger.Error("cannot read document", "file", path, "err", err)
		res.Stats.Errors++
		return nil
	}
	observability.Pipeline().OnDocument(ctx, path, len(diagrams))

	if len(diagrams) == 0 {
		st.logger.Debug("no diagrams", "file", path)
		res.Stats.FilesProcessed++
		return nil
	}
	st.logger.Info("processing", "file", path, "diagrams", len(diagrams))

	dir := filepath.Dir(path)
	for i, d := range diagrams {
		d.OutputFilename = diagram.Filename(d, i+1, st.opts.Format)
		out := filepath.Join(dir, d.OutputFilename)

		st.logger.Debug("diagram",
			"index", i+1,
			"title", d.Title,
			"type", d.Type,
			"line", d.Line,
			"output", d.OutputFilename)

		if st.opts.ShouldSkipExisting() && fileExists(out) {
			st.logger.Debug("exists, skipping", "file", d.OutputFilename)
			res.Stats.Skipped++
			res.Diagrams = append(res.Diagrams, d)
			continue
		}

		if err := st.pause(ctx); err != nil {
			return err
		}
		err := st.renderer.Render(ctx, d, out, res.Tally)
		st.rendered++
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			st.logger.Error("render failed",
				"file", path,
				"line", d.Line,
				"title", d.Title,
				"err", err)
			res.Stats.Errors++
			continue
		}

		st.logger.Info("rendered", "file", out)
		res.Stats.Generated++
		res.Diagrams = append(res.Diagrams, d)
	}

	res.Stats.DiagramsFound += len(diagrams)
	res.Stats.FilesProcessed++
	return nil
}

// pause waits the configured delay before every render request but the
// first of the run.
func (st *run) pause(ctx context.Context) error {
	if st.rendered == 0 || st.opts.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(st.opts.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
