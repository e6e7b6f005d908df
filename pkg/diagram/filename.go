package diagram

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	maxSlugLen = 40
	hashPrefix = 8

	placeholderTitle = "unknown"
)

var (
	slugStripRe = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	slugSpaceRe = regexp.MustCompile(`\s+`)

	generatedRe = regexp.MustCompile(`^.+_[0-9a-fA-F]{8}(_error)?\.(png|svg|pdf)$`)
)

// Filename returns the output file name for d, the index-th (1-based)
// diagram of its document:
//
//	<source-stem>_<slug>_<hash8>.<format>
//
// The slug comes from the title, or from section, type and index when the
// title is empty or the "unknown" placeholder.
func Filename(d *Diagram, index int, format string) string {
	base := filepath.Base(d.Path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	name := ""
	if d.Title != "" && d.Title != placeholderTitle {
		name = Slug(d.Title)
	}
	if name == "" {
		section := Slug(d.Section)
		if section == "" {
			section = "diagram"
		}
		name = fmt.Sprintf("%s_%s_%d", section, d.Type, index)
	}

	hash := d.Hash
	if len(hash) > hashPrefix {
		hash = hash[:hashPrefix]
	}
	return fmt.Sprintf("%s_%s_%s.%s", stem, name, hash, format)
}

// Slug converts text into a lowercase file name fragment of at most 40
// runes. Letters, digits, underscores and dashes survive; whitespace runs
// become a single underscore.
func Slug(text string) string {
	s := slugStripRe.ReplaceAllString(text, "")
	s = slugSpaceRe.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.ToLower(s)
	if r := []rune(s); len(r) > maxSlugLen {
		s = string(r[:maxSlugLen])
	}
	return s
}

// IsGenerated reports whether name looks like a file produced by Filename,
// including the _error variant written for rejected diagrams.
func IsGenerated(name string) bool {
	return generatedRe.MatchString(name)
}

// ErrorPath inserts an _error suffix before the extension of path.
func ErrorPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_error" + ext
}
