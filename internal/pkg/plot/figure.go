// Package plot turns design point tables into Plotly figure documents.
//
// A Figure marshals to the {"data": [...], "layout": {...}} shape that
// plotly.js accepts in Plotly.newPlot, so the browser draws exactly what
// the server built.
package plot

// Figure is a chart document: traces plus layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Empty reports whether the figure is the placeholder used for empty tables.
func (f Figure) Empty() bool { return len(f.Data) == 0 }

// Trace is a single scatter or scatter3d series.
type Trace struct {
	Type         string    `json:"type"`
	Mode         string    `json:"mode"`
	Name         string    `json:"name"`
	X            []float64 `json:"x"`
	Y            []float64 `json:"y"`
	Z            []float64 `json:"z,omitempty"`
	Text         []string  `json:"text"`
	TextPosition string    `json:"textposition,omitempty"`
	Marker       Marker    `json:"marker"`
}

type Marker struct {
	Size int `json:"size"`
}

type Title struct {
	Text string `json:"text"`
}

// Axis is a 2D axis or a 3D scene axis.
type Axis struct {
	Title       *Title  `json:"title,omitempty"`
	ScaleAnchor string  `json:"scaleanchor,omitempty"`
	ScaleRatio  float64 `json:"scaleratio,omitempty"`
}

type Legend struct {
	Orientation string `json:"orientation,omitempty"`
}

// Scene configures the 3D axes.
type Scene struct {
	XAxis      Axis   `json:"xaxis"`
	YAxis      Axis   `json:"yaxis"`
	ZAxis      Axis   `json:"zaxis"`
	AspectMode string `json:"aspectmode,omitempty"`
}

type Layout struct {
	Title  *Title  `json:"title,omitempty"`
	XAxis  *Axis   `json:"xaxis,omitempty"`
	YAxis  *Axis   `json:"yaxis,omitempty"`
	Scene  *Scene  `json:"scene,omitempty"`
	Legend *Legend `json:"legend,omitempty"`
}

func title(s string) *Title { return &Title{Text: s} }

// placeholder is the figure shown when there is nothing to plot.
func placeholder() Figure {
	return Figure{Data: []Trace{}, Layout: Layout{}}
}
