package pipeline

import (
	"path/filepath"
	"strings"
	"time"

	docio "github.com/matzehuels/docdiagrams/pkg/io"
)

// ManifestPath returns where the run manifest is written: beside the
// report, with the report's name and a .json extension.
func (o *Options) ManifestPath() string {
	name := strings.TrimSuffix(o.ReportName, filepath.Ext(o.ReportName)) + ".json"
	return filepath.Join(o.Root, name)
}

// WriteManifest exports the diagrams and counters of res as JSON to
// opts.ManifestPath and returns the path.
func WriteManifest(opts Options, res *Result) (string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return "", err
	}
	m := &docio.Manifest{
		RunID:       res.RunID,
		Root:        filepath.ToSlash(opts.Root),
		Format:      opts.Format,
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Summary: docio.Summary{
			Files:     res.Stats.FilesProcessed,
			Diagrams:  res.Stats.DiagramsFound,
			Generated: res.Stats.Generated,
			Skipped:   res.Stats.Skipped,
			Errors:    res.Stats.Errors,
		},
		Diagrams: res.Diagrams,
	}
	path := opts.ManifestPath()
	if err := docio.ExportJSON(m, path); err != nil {
		return "", err
	}
	return path, nil
}

// RebuildReport rewrites the HTML index from the manifest of a previous
// run without contacting the rendering service. Diagrams whose image is
// gone are left out of the index.
func RebuildReport(opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	m, err := docio.ImportJSON(opts.ManifestPath())
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID: m.RunID,
		Stats: Stats{
			FilesProcessed: m.Summary.Files,
			DiagramsFound:  m.Summary.Diagrams,
			Generated:      m.Summary.Generated,
			Skipped:        m.Summary.Skipped,
			Errors:         m.Summary.Errors,
		},
	}
	for _, d := range m.Diagrams {
		image := filepath.Join(filepath.Dir(d.Path), d.OutputFilename)
		if !fileExists(image) {
			opts.Logger.Warn("image missing, leaving it out", "file", image)
			continue
		}
		res.Diagrams = append(res.Diagrams, d)
	}

	path, err := WriteReport(opts, res)
	if err != nil {
		return res, err
	}
	res.ReportPath = path
	return res, nil
}
