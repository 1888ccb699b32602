// Package landxml extracts CgPoint design points from LandXML documents.
package landxml

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"github.com/samirrijal/pilingqa/internal/core/domain"
	"github.com/samirrijal/pilingqa/internal/pkg/metrics"
)

const pointTag = "CgPoint"

var errNoRoot = errors.New("document has no root element")

// Extractor implements ports.PointExtractor for LandXML.
type Extractor struct{}

// NewExtractor creates a LandXML extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Format() domain.Format { return domain.FormatLandXML }

// Extract parses data and returns one record per valid CgPoint, in document
// order. The schema namespace is taken from the root element because it
// differs between vendors and LandXML versions. Points whose body does not
// hold three finite numeric tokens are skipped.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*domain.PointTable, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &domain.MalformedError{Format: domain.FormatLandXML, Err: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, &domain.MalformedError{Format: domain.FormatLandXML, Err: errNoRoot}
	}

	ns := root.NamespaceURI()
	table := domain.NewPointTable()
	skipped := 0

	walk(root.ChildElements(), func(el *etree.Element) {
		if el.Tag != pointTag || el.NamespaceURI() != ns {
			return
		}
		rec, ok := parsePoint(el)
		if !ok {
			skipped++
			slog.DebugContext(ctx, "skipping CgPoint", "name", el.SelectAttrValue("name", ""), "text", el.Text())
			return
		}
		table.Append(rec)
	})

	if skipped > 0 {
		metrics.RecordsSkipped.WithLabelValues(string(domain.FormatLandXML)).Add(float64(skipped))
	}
	return table, nil
}

// walk visits els and their descendants depth-first in document order.
func walk(els []*etree.Element, visit func(*etree.Element)) {
	for _, el := range els {
		visit(el)
		walk(el.ChildElements(), visit)
	}
}

// parsePoint reads "easting northing elevation" from the element body.
func parsePoint(el *etree.Element) (domain.PointRecord, bool) {
	fields := strings.Fields(el.Text())
	if len(fields) < 3 {
		return domain.PointRecord{}, false
	}
	var coords [3]float64
	for i := range coords {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.PointRecord{}, false
		}
		coords[i] = v
	}
	return domain.PointRecord{
		Name:      el.SelectAttrValue("name", ""),
		Easting:   coords[0],
		Northing:  coords[1],
		Elevation: coords[2],
		Source:    domain.SourceLandXML,
	}, true
}
