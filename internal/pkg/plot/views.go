package plot

import (
	"github.com/samirrijal/pilingqa/internal/core/domain"
)

const (
	traceName   = "Design Points"
	markersText = "markers+text"
	labelAnchor = "top center"
	planTitle   = "Local 2D Plan View (Design Points)"
	orbitTitle  = "3D Orbit View (Design Points)"
	planMarker  = 8
	orbitMarker = 4
)

// PlanView renders a CAD-style plan: easting across, northing up, one
// labelled marker per point. The y axis is anchored to x at 1:1 so plan
// distances are not distorted.
func PlanView(t *domain.PointTable) Figure {
	if t.Empty() {
		return placeholder()
	}
	rows := t.Rows()
	tr := Trace{
		Type:         "scatter",
		Mode:         markersText,
		Name:         traceName,
		X:            make([]float64, len(rows)),
		Y:            make([]float64, len(rows)),
		Text:         make([]string, len(rows)),
		TextPosition: labelAnchor,
		Marker:       Marker{Size: planMarker},
	}
	for i, r := range rows {
		tr.X[i] = r.Easting
		tr.Y[i] = r.Northing
		tr.Text[i] = r.Name
	}
	return Figure{
		Data: []Trace{tr},
		Layout: Layout{
			Title:  title(planTitle),
			XAxis:  &Axis{Title: title("Easting")},
			YAxis:  &Axis{Title: title("Northing"), ScaleAnchor: "x", ScaleRatio: 1},
			Legend: &Legend{Orientation: "h"},
		},
	}
}

// OrbitView renders a rotatable 3D scatter. Aspect mode "data" keeps the
// axes proportional to the actual coordinate ranges.
func OrbitView(t *domain.PointTable) Figure {
	if t.Empty() {
		return placeholder()
	}
	rows := t.Rows()
	tr := Trace{
		Type:         "scatter3d",
		Mode:         markersText,
		Name:         traceName,
		X:            make([]float64, len(rows)),
		Y:            make([]float64, len(rows)),
		Z:            make([]float64, len(rows)),
		Text:         make([]string, len(rows)),
		TextPosition: labelAnchor,
		Marker:       Marker{Size: orbitMarker},
	}
	for i, r := range rows {
		tr.X[i] = r.Easting
		tr.Y[i] = r.Northing
		tr.Z[i] = r.Elevation
		tr.Text[i] = r.Name
	}
	return Figure{
		Data: []Trace{tr},
		Layout: Layout{
			Title: title(orbitTitle),
			Scene: &Scene{
				XAxis:      Axis{Title: title("Easting")},
				YAxis:      Axis{Title: title("Northing")},
				ZAxis:      Axis{Title: title("Elevation")},
				AspectMode: "data",
			},
		},
	}
}

// ForMode renders the view selected by mode, defaulting to the plan view.
func ForMode(mode domain.ViewMode, t *domain.PointTable) Figure {
	if mode == domain.ViewOrbit {
		return OrbitView(t)
	}
	return PlanView(t)
}
