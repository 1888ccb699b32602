// Package dxf extracts POINT and INSERT design points from ASCII DXF drawings.
package dxf

import (
	"context"
	"fmt"

	"github.com/samirrijal/pilingqa/internal/core/domain"
	"github.com/samirrijal/pilingqa/internal/core/ports"
)

// NewExtractor returns the DXF strategy for the deployment. When DXF support
// is disabled the returned extractor accepts every input and yields an empty
// table.
func NewExtractor(available bool) ports.PointExtractor {
	if !available {
		return Unavailable{}
	}
	return &Extractor{}
}

// Extractor reads model space POINT and INSERT entities.
type Extractor struct{}

func (e *Extractor) Format() domain.Format { return domain.FormatDXF }

// Extract returns all POINT entities followed by all INSERT (block
// reference) entities, each group in drawing order.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*domain.PointTable, error) {
	doc, err := readDocument(data)
	if err != nil {
		return nil, &domain.MalformedError{Format: domain.FormatDXF, Err: err}
	}

	msp := doc.modelSpace()
	table := domain.NewPointTable()

	for _, ent := range msp {
		if ent.kind != "POINT" {
			continue
		}
		rec, err := record(ent, "POINT_"+ent.handle, domain.SourceDXFPoint)
		if err != nil {
			return nil, &domain.MalformedError{Format: domain.FormatDXF, Err: err}
		}
		table.Append(rec)
	}

	for _, ent := range msp {
		if ent.kind != "INSERT" {
			continue
		}
		block, _ := ent.lookup(2)
		rec, err := record(ent, fmt.Sprintf("BLK_%s_%s", block, ent.handle), domain.SourceDXFInsert)
		if err != nil {
			return nil, &domain.MalformedError{Format: domain.FormatDXF, Err: err}
		}
		table.Append(rec)
	}

	return table, nil
}

// record builds a PointRecord from the entity's primary point (group
// 10/20/30: POINT location, INSERT insertion point).
func record(ent *entity, name, source string) (domain.PointRecord, error) {
	x, err := ent.coord(10)
	if err != nil {
		return domain.PointRecord{}, err
	}
	y, err := ent.coord(20)
	if err != nil {
		return domain.PointRecord{}, err
	}
	z, err := ent.coord(30)
	if err != nil {
		return domain.PointRecord{}, err
	}
	return domain.PointRecord{Name: name, Easting: x, Northing: y, Elevation: z, Source: source}, nil
}

// Unavailable is the DXF strategy used when CAD reading is switched off.
type Unavailable struct{}

func (Unavailable) Format() domain.Format { return domain.FormatDXF }

func (Unavailable) Extract(ctx context.Context, data []byte) (*domain.PointTable, error) {
	return domain.NewPointTable(), nil
}
