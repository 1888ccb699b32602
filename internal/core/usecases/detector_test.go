package usecases_test

import (
	"testing"

	"github.com/samirrijal/pilingqa/internal/core/domain"
	"github.com/samirrijal/pilingqa/internal/core/usecases"
)

func TestDetectFormat(t *testing.T) {
	cases := map[string]domain.Format{
		"design.xml":            domain.FormatLandXML,
		"DESIGN.XML":            domain.FormatLandXML,
		"site/plan.v2.Xml":      domain.FormatLandXML,
		"piles.dxf":             domain.FormatDXF,
		"PILES.DXF":             domain.FormatDXF,
		"project.lok":           domain.FormatArchive,
		"C:\\jobs\\Project.LOK": domain.FormatArchive,
	}
	for name, want := range cases {
		got, err := usecases.DetectFormat(name)
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("%s: expected %s, got %s", name, want, got)
		}
	}
}

func TestDetectFormat_Unsupported(t *testing.T) {
	for _, name := range []string{"readme.txt", "design", "design.xml.bak", "archive.zip", ".dxf.old", ""} {
		_, err := usecases.DetectFormat(name)
		if !domain.IsUnsupportedFormat(err) {
			t.Errorf("%q: expected UnsupportedFormatError, got %v", name, err)
		}
	}
}

func TestExtensionFor(t *testing.T) {
	for _, f := range []domain.Format{domain.FormatLandXML, domain.FormatDXF, domain.FormatArchive} {
		ext := usecases.ExtensionFor(f)
		got, err := usecases.DetectFormat("file" + ext)
		if err != nil || got != f {
			t.Errorf("%s: extension %q does not detect back (%s, %v)", f, ext, got, err)
		}
	}
	if ext := usecases.ExtensionFor("shp"); ext != "" {
		t.Errorf("expected no extension, got %q", ext)
	}
}
