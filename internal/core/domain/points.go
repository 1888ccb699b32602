package domain

import "encoding/json"

// Source tags identify which extractor produced a PointRecord.
const (
	SourceLandXML   = "LandXML"
	SourceDXFPoint  = "DXF/POINT"
	SourceDXFInsert = "DXF/INSERT"
)

// Format identifies a supported design file format.
type Format string

const (
	FormatLandXML Format = "landxml"
	FormatDXF     Format = "dxf"
	FormatArchive Format = "lok"
)

// PointRecord is one design point (a planned pile or drill position).
// Coordinates are in the source file's native units and datum.
type PointRecord struct {
	Name      string  `json:"name"`
	Easting   float64 `json:"easting"`
	Northing  float64 `json:"northing"`
	Elevation float64 `json:"elevation"`
	Source    string  `json:"source"`
}

var pointColumns = []string{"Name", "Easting", "Northing", "Elevation", "Source"}

// PointTable is an ordered, append-only collection of design points.
// Row order is discovery order within the source file. Once handed out by
// an extractor a table is treated as immutable: accessors return copies.
type PointTable struct {
	rows []PointRecord
}

// NewPointTable returns a table holding a copy of records.
func NewPointTable(records ...PointRecord) *PointTable {
	t := &PointTable{rows: make([]PointRecord, 0, len(records))}
	t.rows = append(t.rows, records...)
	return t
}

// Columns returns the fixed column schema, defined even for empty tables.
func (t *PointTable) Columns() []string {
	out := make([]string, len(pointColumns))
	copy(out, pointColumns)
	return out
}

// Append adds a record. Only extractors building a fresh table call this.
func (t *PointTable) Append(r PointRecord) {
	t.rows = append(t.rows, r)
}

// Len returns the number of rows. A nil table has zero rows.
func (t *PointTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Empty reports whether the table has no rows.
func (t *PointTable) Empty() bool { return t.Len() == 0 }

// Rows returns a copy of the table's records.
func (t *PointTable) Rows() []PointRecord {
	if t == nil {
		return []PointRecord{}
	}
	out := make([]PointRecord, len(t.rows))
	copy(out, t.rows)
	return out
}

// At returns the i-th record.
func (t *PointTable) At(i int) PointRecord { return t.rows[i] }

// Head returns up to n leading records.
func (t *PointTable) Head(n int) []PointRecord {
	rows := t.Rows()
	if n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

// Slice returns records in [offset, offset+limit), clamped to the table.
func (t *PointTable) Slice(offset, limit int) []PointRecord {
	rows := t.Rows()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) || limit <= 0 {
		return []PointRecord{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

// SourceCounts returns the number of rows per source tag.
func (t *PointTable) SourceCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range t.Rows() {
		counts[r.Source]++
	}
	return counts
}

// Concat joins tables preserving table-then-record order. Empty and nil
// tables contribute nothing; the result is always a fresh table.
func Concat(tables ...*PointTable) *PointTable {
	n := 0
	for _, t := range tables {
		n += t.Len()
	}
	out := &PointTable{rows: make([]PointRecord, 0, n)}
	for _, t := range tables {
		if t.Len() == 0 {
			continue
		}
		out.rows = append(out.rows, t.rows...)
	}
	return out
}

// MarshalJSON encodes the table as an array of records.
func (t *PointTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Rows())
}

// UnmarshalJSON decodes an array of records into a fresh table.
func (t *PointTable) UnmarshalJSON(data []byte) error {
	var rows []PointRecord
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	t.rows = rows
	return nil
}
