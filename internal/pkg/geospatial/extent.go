// Package geospatial summarizes design point tables in their local planar
// grid. Coordinates are never reprojected.
package geospatial

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/samirrijal/pilingqa/internal/core/domain"
)

// Extent is the axis-aligned box enclosing a table.
type Extent struct {
	MinEasting   float64 `json:"min_easting"`
	MinNorthing  float64 `json:"min_northing"`
	MinElevation float64 `json:"min_elevation"`
	MaxEasting   float64 `json:"max_easting"`
	MaxNorthing  float64 `json:"max_northing"`
	MaxElevation float64 `json:"max_elevation"`
}

// Width is the easting span.
func (e Extent) Width() float64 { return e.MaxEasting - e.MinEasting }

// Height is the northing span.
func (e Extent) Height() float64 { return e.MaxNorthing - e.MinNorthing }

// Summary describes a loaded design.
type Summary struct {
	Count      int            `json:"count"`
	Sources    map[string]int `json:"sources"`
	Extent     *Extent        `json:"extent,omitempty"`
	Centroid   []float64      `json:"centroid,omitempty"`    // easting, northing
	MinSpacing *float64       `json:"min_spacing,omitempty"` // closest pair, plan distance
}

// ExtentOf returns the box enclosing t, or nil for an empty table.
func ExtentOf(t *domain.PointTable) *Extent {
	if t.Empty() {
		return nil
	}
	rows := t.Rows()
	b := planPoints(rows).Bound()
	ext := &Extent{
		MinEasting:   b.Min.X(),
		MinNorthing:  b.Min.Y(),
		MaxEasting:   b.Max.X(),
		MaxNorthing:  b.Max.Y(),
		MinElevation: rows[0].Elevation,
		MaxElevation: rows[0].Elevation,
	}
	for _, r := range rows[1:] {
		ext.MinElevation = math.Min(ext.MinElevation, r.Elevation)
		ext.MaxElevation = math.Max(ext.MaxElevation, r.Elevation)
	}
	return ext
}

// Summarize computes counts, extent and plan centroid. An empty table yields
// a zero-count summary with no geometry.
func Summarize(t *domain.PointTable) Summary {
	s := Summary{Count: t.Len(), Sources: map[string]int{}}
	if t.Empty() {
		return s
	}
	s.Sources = t.SourceCounts()
	s.Extent = ExtentOf(t)

	c, _ := planar.CentroidArea(planPoints(t.Rows()))
	s.Centroid = []float64{c.X(), c.Y()}
	return s
}

// SummarizeWithSpacing is Summarize plus the minimum point spacing.
func SummarizeWithSpacing(t *domain.PointTable) Summary {
	s := Summarize(t)
	if d, ok := MinSpacing(planPoints(t.Rows())); ok {
		s.MinSpacing = &d
	}
	return s
}

// indexTolerance is the half-size of the box a point occupies in the index.
const indexTolerance = 1e-6

type indexedPoint struct {
	i int
	p orb.Point
}

func (ip *indexedPoint) Bounds() rtreego.Rect {
	return rtreego.Point{ip.p.X(), ip.p.Y()}.ToRect(indexTolerance)
}

// MinSpacing returns the smallest plan distance between any two points. Each
// point asks an R-tree for its two nearest entries, one of which is itself.
func MinSpacing(mp orb.MultiPoint) (float64, bool) {
	if len(mp) < 2 {
		return 0, false
	}

	tree := rtreego.NewTree(2, 25, 50)
	for i, p := range mp {
		tree.Insert(&indexedPoint{i: i, p: p})
	}

	best := math.Inf(1)
	for i, p := range mp {
		for _, obj := range tree.NearestNeighbors(2, rtreego.Point{p.X(), p.Y()}) {
			other, ok := obj.(*indexedPoint)
			if !ok || other.i == i {
				continue
			}
			if d := planar.Distance(p, other.p); d < best {
				best = d
			}
		}
	}
	return best, true
}

func planPoints(rows []domain.PointRecord) orb.MultiPoint {
	mp := make(orb.MultiPoint, len(rows))
	for i, r := range rows {
		mp[i] = orb.Point{r.Easting, r.Northing}
	}
	return mp
}
