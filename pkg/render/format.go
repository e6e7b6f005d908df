package render

import (
	"strings"

	"github.com/matzehuels/docdiagrams/pkg/errors"
)

// Supported output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatPDF = "pdf"
)

// Formats lists the supported output formats.
var Formats = []string{FormatPNG, FormatSVG, FormatPDF}

var mimeTypes = map[string]string{
	FormatPNG: "image/png",
	FormatSVG: "image/svg+xml",
	FormatPDF: "application/pdf",
}

// MimeType returns the media type requested for format.
func MimeType(format string) string {
	return mimeTypes[format]
}

// ValidateFormat returns an INVALID_FORMAT error unless format is one of
// Formats.
func ValidateFormat(format string) error {
	if _, ok := mimeTypes[format]; !ok {
		return errors.New(errors.ErrCodeInvalidFormat,
			"unsupported format %q (want %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}
