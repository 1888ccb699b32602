package archive_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/pilingqa/internal/adapters/archive"
	"github.com/samirrijal/pilingqa/internal/adapters/landxml"
	"github.com/samirrijal/pilingqa/internal/core/domain"
)

type member struct {
	name string
	body string
}

func buildZip(t *testing.T, members ...member) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.Create(m.name)
		if err != nil {
			t.Fatalf("create %s: %v", m.name, err)
		}
		if _, err := w.Write([]byte(m.body)); err != nil {
			t.Fatalf("write %s: %v", m.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const designA = `<LandXML xmlns="http://www.landxml.org/schema/LandXML-1.2">
<CgPoints><CgPoint name="A1">1 2 3</CgPoint><CgPoint name="A2">4 5 6</CgPoint></CgPoints></LandXML>`

const designB = `<LandXML xmlns="http://www.landxml.org/schema/LandXML-1.1">
<CgPoints><CgPoint name="B1">7 8 9</CgPoint></CgPoints></LandXML>`

func newExtractor() *archive.Extractor {
	return archive.NewExtractor(landxml.NewExtractor())
}

func TestExtract_ConcatenatesMembersInOrder(t *testing.T) {
	data := buildZip(t,
		member{"Data/design_a.xml", designA},
		member{"readme.txt", "not a design"},
		member{"Data/DESIGN_B.XML", designB},
	)

	table, err := newExtractor().Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", table.Len())
	}
	for i, name := range []string{"A1", "A2", "B1"} {
		if got := table.At(i).Name; got != name {
			t.Errorf("row %d: expected %s, got %s", i, name, got)
		}
	}
}

func TestExtract_SkipsCorruptMember(t *testing.T) {
	data := buildZip(t,
		member{"broken.xml", "<LandXML><CgPoint>"},
		member{"good.xml", designB},
	)

	table, err := newExtractor().Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 1 || table.At(0).Name != "B1" {
		t.Fatalf("expected only B1, got %+v", table.Rows())
	}
}

func TestExtract_NotAZipIsEmpty(t *testing.T) {
	table, err := newExtractor().Extract(context.Background(), []byte("LOK\x00\x01 proprietary binary"))
	if err != nil {
		t.Fatalf("expected no error for non-archive input, got %v", err)
	}
	if !table.Empty() {
		t.Fatalf("expected empty table, got %d rows", table.Len())
	}
}

func TestExtract_NoXMLMembers(t *testing.T) {
	data := buildZip(t, member{"project.db", "binary"})

	table, err := newExtractor().Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !table.Empty() {
		t.Fatalf("expected empty table, got %d rows", table.Len())
	}
}

func TestExtract_CancelledContext(t *testing.T) {
	data := buildZip(t, member{"a.xml", designA})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newExtractor().Extract(ctx, data)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	if got := newExtractor().Format(); got != domain.FormatArchive {
		t.Errorf("expected lok, got %s", got)
	}
}
