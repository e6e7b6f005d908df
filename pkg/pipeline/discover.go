package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/matzehuels/docdiagrams/pkg/diagram"
	"github.com/matzehuels/docdiagrams/pkg/errors"
)

const markdownExt = ".md"

// Discover walks opts.Root and returns the Markdown documents worth
// scanning, sorted by path.
//
// A document is kept when it is not excluded, its path below the root
// contains opts.Pattern (case-insensitive), and either that path contains a
// keyword or its content holds a line diagram.Extract would open a block
// on, so every kept document is one the extractor agrees on.
// Unreadable subdirectories and files are logged and skipped. A root that
// cannot be enumerated is a FILE_NOT_FOUND error.
func Discover(opts Options) ([]string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "documentation root %s", opts.Root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeFileNotFound, "documentation root %s is not a directory", opts.Root)
	}

	pattern := strings.ToLower(opts.Pattern)
	keywords := lowerAll(opts.Keywords)

	var files []string
	err = filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == opts.Root {
				return err
			}
			logger.Warn("skipping unreadable path", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(opts.Root, path)
		if relErr != nil {
			rel = path
		}
		if rel != "." && excluded(opts.Exclude, rel) {
			logger.Debug("excluded", "path", path)
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), markdownExt) {
			return nil
		}

		lower := strings.ToLower(filepath.ToSlash(rel))
		if pattern != "" && !strings.Contains(lower, pattern) {
			return nil
		}
		if containsAny(lower, keywords) {
			files = append(files, path)
			return nil
		}

		ok, readErr := hasDiagramFence(path)
		if readErr != nil {
			logger.Warn("skipping unreadable document", "path", path, "err", readErr)
			return nil
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "walk %s", opts.Root)
	}

	sort.Strings(files)
	return files, nil
}

// hasDiagramFence reports whether the document at path contains a
// diagram block opening line.
func hasDiagramFence(path string) (bool, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return diagram.HasFence(string(source)), nil
}

// excluded reports whether rel matches any of the doublestar globs.
func excluded(globs []string, rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, g := range globs {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// documentDirs returns the distinct directories of files, sorted.
func documentDirs(files []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		d := filepath.Dir(f)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	sort.Strings(dirs)
	return dirs
}
