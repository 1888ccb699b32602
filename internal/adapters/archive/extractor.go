// Package archive reads Leica .lok project files. Many of them are zip
// containers whose XML members carry LandXML design data.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/samirrijal/pilingqa/internal/core/domain"
	"github.com/samirrijal/pilingqa/internal/core/ports"
	"github.com/samirrijal/pilingqa/internal/pkg/metrics"
)

// maxMemberSize caps how much of a single archive member is read.
const maxMemberSize = 256 << 20

// Extractor implements ports.PointExtractor for the zip-based project format.
type Extractor struct {
	xml ports.PointExtractor
}

// NewExtractor creates an archive extractor delegating XML members to xml.
func NewExtractor(xml ports.PointExtractor) *Extractor {
	return &Extractor{xml: xml}
}

func (e *Extractor) Format() domain.Format { return domain.FormatArchive }

// Extract scans every .xml member in archive order and concatenates the
// points found. Input that is not a zip archive, and members that fail to
// parse, yield no points rather than an error.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*domain.PointTable, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.DebugContext(ctx, "lok file is not a zip container", "error", err)
		return domain.NewPointTable(), nil
	}

	var tables []*domain.PointTable
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() || !strings.HasSuffix(strings.ToLower(f.Name), ".xml") {
			continue
		}

		raw, err := readMember(f)
		if err != nil {
			metrics.RecordsSkipped.WithLabelValues(string(domain.FormatArchive)).Inc()
			slog.DebugContext(ctx, "skipping archive member", "member", f.Name, "error", err)
			continue
		}
		table, err := e.xml.Extract(ctx, raw)
		if err != nil {
			metrics.RecordsSkipped.WithLabelValues(string(domain.FormatArchive)).Inc()
			slog.DebugContext(ctx, "skipping archive member", "member", f.Name, "error", err)
			continue
		}
		if !table.Empty() {
			tables = append(tables, table)
		}
	}

	return domain.Concat(tables...), nil
}

// readMember reads one member, closing it on every path.
func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, maxMemberSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if len(raw) > maxMemberSize {
		return nil, fmt.Errorf("member %s exceeds %d bytes", f.Name, maxMemberSize)
	}
	return raw, nil
}
