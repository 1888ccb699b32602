package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/pilingqa/internal/core/domain"
	"github.com/samirrijal/pilingqa/internal/core/ports"
	"github.com/samirrijal/pilingqa/internal/pkg/metrics"
	"github.com/samirrijal/pilingqa/internal/pkg/telemetry"
)

// Load outcomes recorded in pilingqa_design_loads_total.
const (
	outcomeOK          = "ok"
	outcomeEmpty       = "empty"
	outcomeMalformed   = "malformed"
	outcomeUnsupported = "unsupported"
	outcomeError       = "error"
)

// DesignService turns uploaded design files into point tables.
type DesignService struct {
	extractors map[domain.Format]ports.PointExtractor
	order      []domain.Format
}

// NewDesignService registers one extractor per format. A later extractor for
// the same format replaces an earlier one.
func NewDesignService(extractors ...ports.PointExtractor) *DesignService {
	s := &DesignService{extractors: make(map[domain.Format]ports.PointExtractor, len(extractors))}
	for _, e := range extractors {
		if _, dup := s.extractors[e.Format()]; !dup {
			s.order = append(s.order, e.Format())
		}
		s.extractors[e.Format()] = e
	}
	return s
}

// Formats lists the registered formats in registration order.
func (s *DesignService) Formats() []domain.Format {
	out := make([]domain.Format, len(s.order))
	copy(out, s.order)
	return out
}

// Load detects the format of fileName and extracts its design points.
// An empty table with a nil error means the file held no usable points.
func (s *DesignService) Load(ctx context.Context, fileName string, data []byte) (*domain.PointTable, domain.Format, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		metrics.DesignLoads.WithLabelValues("unknown", outcomeUnsupported).Inc()
		return nil, "", err
	}
	ext, ok := s.extractors[format]
	if !ok {
		metrics.DesignLoads.WithLabelValues(string(format), outcomeUnsupported).Inc()
		return nil, format, &domain.UnsupportedFormatError{FileName: fileName}
	}

	ctx, span := telemetry.StartExtractSpan(ctx, fileName, len(data))
	defer span.End()

	start := time.Now()
	table, err := ext.Extract(ctx, data)
	metrics.ExtractDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordExtractResult(span, string(format), 0, err)
		outcome := outcomeError
		if domain.IsMalformed(err) {
			outcome = outcomeMalformed
		}
		metrics.DesignLoads.WithLabelValues(string(format), outcome).Inc()
		slog.WarnContext(ctx, "design extraction failed", "file", fileName, "format", format, "error", err)
		return nil, format, fmt.Errorf("extract %s: %w", fileName, err)
	}

	telemetry.RecordExtractResult(span, string(format), table.Len(), nil)
	if table.Empty() {
		metrics.DesignLoads.WithLabelValues(string(format), outcomeEmpty).Inc()
		slog.InfoContext(ctx, "design file has no points", "file", fileName, "format", format)
		return table, format, nil
	}

	metrics.DesignLoads.WithLabelValues(string(format), outcomeOK).Inc()
	for source, n := range table.SourceCounts() {
		metrics.DesignPoints.WithLabelValues(source).Add(float64(n))
	}
	slog.InfoContext(ctx, "design loaded",
		"file", fileName,
		"format", format,
		"points", table.Len(),
		"duration", time.Since(start),
	)
	return table, format, nil
}
