package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func rec(name string, e float64, source string) PointRecord {
	return PointRecord{Name: name, Easting: e, Northing: e + 1, Elevation: e + 2, Source: source}
}

func TestPointTable_EmptyKeepsSchema(t *testing.T) {
	for _, table := range []*PointTable{nil, NewPointTable()} {
		if !table.Empty() || table.Len() != 0 {
			t.Errorf("expected empty table")
		}
		if got := table.Columns(); !reflect.DeepEqual(got, []string{"Name", "Easting", "Northing", "Elevation", "Source"}) {
			t.Errorf("unexpected columns %v", got)
		}
		if rows := table.Rows(); rows == nil || len(rows) != 0 {
			t.Errorf("expected non-nil empty rows, got %#v", rows)
		}
	}
}

func TestPointTable_RowsAreCopies(t *testing.T) {
	table := NewPointTable(rec("A", 1, SourceLandXML))
	rows := table.Rows()
	rows[0].Name = "changed"
	if table.At(0).Name != "A" {
		t.Error("mutating Rows() result changed the table")
	}
}

func TestPointTable_HeadAndSlice(t *testing.T) {
	table := NewPointTable(
		rec("A", 1, SourceDXFPoint),
		rec("B", 2, SourceDXFPoint),
		rec("C", 3, SourceDXFInsert),
	)

	if got := table.Head(5); len(got) != 3 {
		t.Errorf("Head(5) expected 3 rows, got %d", len(got))
	}
	if got := table.Head(2); len(got) != 2 || got[1].Name != "B" {
		t.Errorf("Head(2) unexpected %+v", got)
	}

	cases := []struct {
		offset, limit int
		want          []string
	}{
		{0, 2, []string{"A", "B"}},
		{1, 10, []string{"B", "C"}},
		{3, 1, nil},
		{-1, 1, []string{"A"}},
		{0, 0, nil},
	}
	for _, c := range cases {
		var names []string
		for _, r := range table.Slice(c.offset, c.limit) {
			names = append(names, r.Name)
		}
		if !reflect.DeepEqual(names, c.want) {
			t.Errorf("Slice(%d, %d) = %v, want %v", c.offset, c.limit, names, c.want)
		}
	}
}

func TestPointTable_SourceCounts(t *testing.T) {
	table := NewPointTable(
		rec("A", 1, SourceDXFPoint),
		rec("B", 2, SourceDXFInsert),
		rec("C", 3, SourceDXFInsert),
	)
	want := map[string]int{SourceDXFPoint: 1, SourceDXFInsert: 2}
	if got := table.SourceCounts(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestConcat_PreservesOrder(t *testing.T) {
	a := NewPointTable(rec("A1", 1, SourceLandXML), rec("A2", 2, SourceLandXML))
	b := NewPointTable(rec("B1", 3, SourceLandXML))

	out := Concat(a, nil, NewPointTable(), b)
	var names []string
	for _, r := range out.Rows() {
		names = append(names, r.Name)
	}
	if !reflect.DeepEqual(names, []string{"A1", "A2", "B1"}) {
		t.Errorf("unexpected order %v", names)
	}

	out.Append(rec("X", 9, SourceLandXML))
	if a.Len() != 2 {
		t.Error("Concat result shares storage with its inputs")
	}
}

func TestPointTable_JSON(t *testing.T) {
	table := NewPointTable(PointRecord{Name: "P1", Easting: 100, Northing: 200, Elevation: 5.5, Source: SourceLandXML})

	b, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"name":"P1","easting":100,"northing":200,"elevation":5.5,"source":"LandXML"}]`
	if string(b) != want {
		t.Errorf("expected %s, got %s", want, b)
	}

	var back PointTable
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back.Rows(), table.Rows()) {
		t.Errorf("round trip changed rows: %+v", back.Rows())
	}
}
