package pipeline

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/docdiagrams/pkg/diagram"
)

// Clean deletes generated images along with the HTML report and its manifest.
//
// Images are removed from the directories of the documents Discover
// finds, or from the root itself when it finds none; only names matching
// diagram.IsGenerated are touched. Failures to remove a single file are
// logged and skipped. Running Clean twice removes nothing the second time.
func Clean(opts Options) (int, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return 0, err
	}
	logger := opts.Logger

	files, err := Discover(opts)
	if err != nil {
		return 0, err
	}
	dirs := documentDirs(files)
	if len(dirs) == 0 {
		dirs = []string{opts.Root}
	}

	removed := 0
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Warn("cannot list directory", "dir", dir, "err", err)
			continue
		}
		for _, e := range entries {
			if !e.Type().IsRegular() || !diagram.IsGenerated(e.Name()) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if err := os.Remove(path); err != nil {
				logger.Warn("cannot remove", "file", path, "err", err)
				continue
			}
			removed++
			logger.Debug("removed", "file", path)
		}
	}

	for _, index := range []string{filepath.Join(opts.Root, opts.ReportName), opts.ManifestPath()} {
		switch err := os.Remove(index); {
		case err == nil:
			removed++
			logger.Debug("removed", "file", index)
		case !os.IsNotExist(err):
			logger.Warn("cannot remove", "file", index, "err", err)
		}
	}

	logger.Info("cleaned generated files", "removed", removed)
	return removed, nil
}
