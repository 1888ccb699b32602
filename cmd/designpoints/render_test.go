package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samirrijal/pilingqa/internal/core/domain"
)

func sampleTable() *domain.PointTable {
	return domain.NewPointTable(
		domain.PointRecord{Name: "P1", Easting: 100, Northing: 200, Elevation: 5, Source: domain.SourceLandXML},
		domain.PointRecord{Name: "P2", Easting: 104, Northing: 203, Elevation: 5.25, Source: domain.SourceLandXML},
		domain.PointRecord{Name: "BLK_PILE600_2A", Easting: 110, Northing: 210, Elevation: 4, Source: domain.SourceDXFInsert},
	)
}

func TestParseOutput(t *testing.T) {
	for _, s := range []string{"table", "json", "csv", "geojson", "plan", "orbit"} {
		if _, err := parseOutput(s); err != nil {
			t.Errorf("%s: unexpected error %v", s, err)
		}
	}
	if _, err := parseOutput("xlsx"); err == nil {
		t.Error("expected error for xlsx")
	}
}

func TestRender_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, outTable, sampleTable(), 2); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "P1") || !strings.Contains(out, "104.000") {
		t.Errorf("expected rows in table output, got:\n%s", out)
	}
	if strings.Contains(out, "BLK_PILE600_2A") {
		t.Errorf("expected limit to hide third row, got:\n%s", out)
	}
	if !strings.Contains(out, "3 design points (2 shown), extent 10.000 x 10.000") {
		t.Errorf("unexpected footer in:\n%s", out)
	}
}

func TestRender_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, outCSV, sampleTable(), 0); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "Name,Easting,Northing,Elevation,Source" {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[2][3] != "5.250" || records[3][4] != domain.SourceDXFInsert {
		t.Errorf("unexpected rows %v", records[1:])
	}
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, outJSON, sampleTable(), 0); err != nil {
		t.Fatal(err)
	}
	var rows []domain.PointRecord
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 3 || rows[2].Name != "BLK_PILE600_2A" {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestRender_Figures(t *testing.T) {
	for out, trace := range map[output]string{outPlan: "scatter", outOrbit: "scatter3d"} {
		var buf bytes.Buffer
		if err := render(&buf, out, sampleTable(), 0); err != nil {
			t.Fatal(err)
		}
		var fig struct {
			Data []struct {
				Type string `json:"type"`
			} `json:"data"`
		}
		if err := json.Unmarshal(buf.Bytes(), &fig); err != nil {
			t.Fatalf("%s: decode: %v", out, err)
		}
		if len(fig.Data) != 1 || fig.Data[0].Type != trace {
			t.Errorf("%s: expected one %s trace, got %+v", out, trace, fig.Data)
		}
	}
}

func TestRender_GeoJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, outGeoJSON, sampleTable(), 0); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"FeatureCollection"`) {
		t.Errorf("expected feature collection, got %s", buf.String())
	}
}

func writeDesigns(t *testing.T) (xmlPath, dxfPath string) {
	t.Helper()
	dir := t.TempDir()
	xmlPath = filepath.Join(dir, "design.xml")
	dxfPath = filepath.Join(dir, "site.dxf")
	if err := os.WriteFile(xmlPath, []byte(`<LandXML xmlns="http://www.landxml.org/schema/LandXML-1.2"><CgPoints><CgPoint name="X1">1 2 3</CgPoint></CgPoints></LandXML>`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dxfPath, []byte("0\nSECTION\n2\nENTITIES\n0\nPOINT\n5\n1F\n10\n4\n20\n5\n30\n6\n0\nENDSEC\n0\nEOF\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return xmlPath, dxfPath
}

func TestExtractFiles_OneTablePerFile(t *testing.T) {
	xmlPath, dxfPath := writeDesigns(t)

	files, err := extractFiles(context.Background(), newDesignService(true), []string{dxfPath, xmlPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Path != dxfPath || files[0].Format != domain.FormatDXF || files[0].Points.Len() != 1 || files[0].Points.At(0).Name != "POINT_1F" {
		t.Errorf("unexpected first file %+v", files[0])
	}
	if files[1].Path != xmlPath || files[1].Format != domain.FormatLandXML || files[1].Points.Len() != 1 || files[1].Points.At(0).Name != "X1" {
		t.Errorf("unexpected second file %+v", files[1])
	}
}

func TestRenderFiles_TableHeaders(t *testing.T) {
	xmlPath, dxfPath := writeDesigns(t)
	files, err := extractFiles(context.Background(), newDesignService(true), []string{dxfPath, xmlPath})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := renderFiles(&buf, outTable, files, 0); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	dxfAt := strings.Index(out, "==> "+dxfPath+" <==")
	xmlAt := strings.Index(out, "==> "+xmlPath+" <==")
	if dxfAt < 0 || xmlAt < dxfAt {
		t.Fatalf("expected a header per file in argument order, got:\n%s", out)
	}
	if strings.Count(out, "1 design points") != 2 {
		t.Errorf("expected a footer per file, got:\n%s", out)
	}
	if !strings.Contains(out[dxfAt:xmlAt], "POINT_1F") || !strings.Contains(out[xmlAt:], "X1") {
		t.Errorf("expected each file's rows under its own header, got:\n%s", out)
	}
}

func TestRenderFiles_CSVHeaders(t *testing.T) {
	xmlPath, dxfPath := writeDesigns(t)
	files, err := extractFiles(context.Background(), newDesignService(true), []string{xmlPath, dxfPath})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := renderFiles(&buf, outCSV, files, 0); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, "Name,Easting,Northing,Elevation,Source") != 2 {
		t.Errorf("expected a column header per file, got:\n%s", out)
	}
	if !strings.HasPrefix(out, "==> "+xmlPath+" <==\n") {
		t.Errorf("expected output to start with the first file header, got:\n%s", out)
	}
}

func TestRenderFiles_JSON(t *testing.T) {
	xmlPath, dxfPath := writeDesigns(t)
	files, err := extractFiles(context.Background(), newDesignService(true), []string{xmlPath, dxfPath})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := renderFiles(&buf, outJSON, files, 0); err != nil {
		t.Fatal(err)
	}
	var got []struct {
		File   string               `json:"file"`
		Format string               `json:"format"`
		Points []domain.PointRecord `json:"points"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].File != xmlPath || got[0].Format != "landxml" || len(got[0].Points) != 1 || got[1].Points[0].Name != "POINT_1F" {
		t.Errorf("unexpected files %+v", got)
	}
}

func TestRenderFiles_SingleFileUnchanged(t *testing.T) {
	files := []designFile{{Path: "design.xml", Format: domain.FormatLandXML, Points: sampleTable()}}

	var single, plain bytes.Buffer
	if err := renderFiles(&single, outCSV, files, 0); err != nil {
		t.Fatal(err)
	}
	if err := render(&plain, outCSV, sampleTable(), 0); err != nil {
		t.Fatal(err)
	}
	if single.String() != plain.String() {
		t.Errorf("expected single file output without header, got:\n%s", single.String())
	}
}

func TestExtractFiles_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(path, []byte("hello"), 0o644)

	_, err := extractFiles(context.Background(), newDesignService(true), []string{path})
	if !domain.IsUnsupportedFormat(err) {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}
