package geospatial

import (
	geojson "github.com/paulmach/go.geojson"

	"github.com/samirrijal/pilingqa/internal/core/domain"
)

// FeatureCollection exports a table as GeoJSON point features with
// [easting, northing, elevation] coordinates in the source grid. Consumers
// must treat the coordinates as a local CRS, not WGS 84.
func FeatureCollection(t *domain.PointTable) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, r := range t.Rows() {
		f := geojson.NewPointFeature([]float64{r.Easting, r.Northing, r.Elevation})
		f.SetProperty("name", r.Name)
		f.SetProperty("source", r.Source)
		f.SetProperty("row", i)
		fc.AddFeature(f)
	}
	return fc
}
