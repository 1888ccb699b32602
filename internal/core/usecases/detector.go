package usecases

import (
	"path/filepath"
	"strings"

	"github.com/samirrijal/pilingqa/internal/core/domain"
)

var extensions = map[string]domain.Format{
	".xml": domain.FormatLandXML,
	".dxf": domain.FormatDXF,
	".lok": domain.FormatArchive,
}

// DetectFormat picks a design format from the file extension alone,
// ignoring case. Content is never inspected.
func DetectFormat(fileName string) (domain.Format, error) {
	if f, ok := extensions[strings.ToLower(filepath.Ext(fileName))]; ok {
		return f, nil
	}
	return "", &domain.UnsupportedFormatError{FileName: fileName}
}

// ExtensionFor returns the file extension accepted for f, or "" if none.
func ExtensionFor(f domain.Format) string {
	for ext, format := range extensions {
		if format == f {
			return ext
		}
	}
	return ""
}
