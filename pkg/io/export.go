package io

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/docdiagrams/pkg/diagram"
	"github.com/matzehuels/docdiagrams/pkg/errors"
)

// WriteJSON encodes m as indented JSON and writes it to w.
// A zero Version is written as ManifestVersion.
func WriteJSON(m *Manifest, w io.Writer) error {
	out := *m
	if out.Version == 0 {
		out.Version = ManifestVersion
	}
	if out.Diagrams == nil {
		out.Diagrams = []*diagram.Diagram{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode manifest")
	}
	return nil
}

// ExportJSON writes m to a JSON file at path, replacing any existing file.
func ExportJSON(m *Manifest, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "create %s", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "create %s", path)
	}
	if err := WriteJSON(m, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "close %s", path)
	}
	return nil
}
