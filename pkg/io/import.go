package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/docdiagrams/pkg/errors"
)

// ReadJSON decodes a manifest from r.
//
// ReadJSON returns an INVALID_FORMAT error if:
//   - the JSON is malformed
//   - the version is not ManifestVersion
//   - a diagram is null or lacks its document path or output file name
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode manifest")
	}
	if m.Version != ManifestVersion {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest version %d", m.Version)
	}
	for i, d := range m.Diagrams {
		switch {
		case d == nil:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "diagram %d: empty entry", i)
		case d.Path == "":
			return nil, errors.New(errors.ErrCodeInvalidFormat, "diagram %d: missing path", i)
		case d.OutputFilename == "":
			return nil, errors.New(errors.ErrCodeInvalidFormat, "diagram %d: missing output_filename", i)
		}
	}
	return &m, nil
}

// ImportJSON reads the manifest file at path. A missing file is a
// FILE_NOT_FOUND error; other open failures are UNREADABLE_FILE.
func ImportJSON(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeUnreadableFile, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
