package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/samirrijal/pilingqa/internal/core/domain"
	"github.com/samirrijal/pilingqa/internal/pkg/geospatial"
	"github.com/samirrijal/pilingqa/internal/pkg/plot"
)

type output string

const (
	outTable   output = "table"
	outJSON    output = "json"
	outCSV     output = "csv"
	outGeoJSON output = "geojson"
	outPlan    output = "plan"
	outOrbit   output = "orbit"
)

func parseOutput(s string) (output, error) {
	switch o := output(s); o {
	case outTable, outJSON, outCSV, outGeoJSON, outPlan, outOrbit:
		return o, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, json, csv, geojson, plan or orbit)", s)
}

// designFile is the table loaded from one input file.
type designFile struct {
	Path   string             `json:"file"`
	Format domain.Format      `json:"format"`
	Points *domain.PointTable `json:"points"`
}

// renderFiles writes each file's table separately. A single file renders
// exactly as render does.
func renderFiles(w io.Writer, out output, files []designFile, limit int) error {
	if len(files) == 1 {
		return render(w, out, files[0].Points, limit)
	}
	if out == outJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(files)
	}
	for i, f := range files {
		if out == outTable || out == outCSV {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if _, err := fmt.Fprintf(w, "==> %s <==\n", f.Path); err != nil {
				return err
			}
		}
		if err := render(w, out, f.Points, limit); err != nil {
			return fmt.Errorf("%s: %w", f.Path, err)
		}
	}
	return nil
}

func formatCoord(f float64) string { return strconv.FormatFloat(f, 'f', 3, 64) }

// render writes table to w. limit caps the rows of table output.
func render(w io.Writer, out output, table *domain.PointTable, limit int) error {
	switch out {
	case outJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(table)
	case outCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(table.Columns()); err != nil {
			return err
		}
		for _, r := range table.Rows() {
			if err := cw.Write([]string{r.Name, formatCoord(r.Easting), formatCoord(r.Northing), formatCoord(r.Elevation), r.Source}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case outGeoJSON:
		data, err := geospatial.FeatureCollection(table).MarshalJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case outPlan, outOrbit:
		fig := plot.PlanView(table)
		if out == outOrbit {
			fig = plot.OrbitView(table)
		}
		return json.NewEncoder(w).Encode(fig)
	default:
		return renderTable(w, table, limit)
	}
}

func renderTable(w io.Writer, table *domain.PointTable, limit int) error {
	rows := table.Rows()
	if limit > 0 {
		rows = table.Head(limit)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Name\tEasting\tNorthing\tElevation\tSource\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", r.Name, formatCoord(r.Easting), formatCoord(r.Northing), formatCoord(r.Elevation), r.Source)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d design points", table.Len())
	if err != nil {
		return err
	}
	if len(rows) < table.Len() {
		fmt.Fprintf(w, " (%d shown)", len(rows))
	}
	if ext := geospatial.ExtentOf(table); ext != nil {
		fmt.Fprintf(w, ", extent %s x %s", formatCoord(ext.Width()), formatCoord(ext.Height()))
	}
	_, err = fmt.Fprintln(w)
	return err
}
