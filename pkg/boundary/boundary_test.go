package boundary

import (
	"errors"
	"path/filepath"
	"testing"
)

func loadSample(t *testing.T) *Dataset {
	t.Helper()
	ds, err := LoadFile(filepath.Join("testdata", "world.geo.json"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	return ds
}

func TestParseSample(t *testing.T) {
	ds := loadSample(t)

	want := []struct {
		id, name string
		polygons int
	}{
		{"FRA", "France", 1},
		{"ATA", "Antarctica", 1},
		{"JPN", "Japan", 3},
		{"BRA", "Brazil", 1},
	}
	if len(ds.Features) != len(want) {
		t.Fatalf("got %d features; want %d", len(ds.Features), len(want))
	}
	for i, w := range want {
		f := ds.Features[i]
		if f.ID != w.id || f.Name != w.name || len(f.Polygons) != w.polygons {
			t.Errorf("feature %d = {%s %q %d polygons}; want {%s %q %d polygons}", i, f.ID, f.Name, len(f.Polygons), w.id, w.name, w.polygons)
		}
	}

	// BRA keeps its hole.
	if got := len(ds.Features[3].Polygons[0]); got != 2 {
		t.Errorf("BRA rings = %d; want 2", got)
	}
}

func TestParseReportsSkipped(t *testing.T) {
	ds := loadSample(t)

	want := []Skipped{
		{Index: 4, ID: "NOG", Reason: "missing geometry"},
		{Index: 5, ID: "", Reason: "missing name"},
		{Index: 6, ID: "PNT", Reason: "unsupported geometry Point"},
		{Index: 7, ID: "DEG", Reason: "empty geometry"},
	}
	if len(ds.Skipped) != len(want) {
		t.Fatalf("got %d skipped (%v); want %d", len(ds.Skipped), ds.Skipped, len(want))
	}
	for i, w := range want {
		if ds.Skipped[i] != w {
			t.Errorf("Skipped[%d] = %+v; want %+v", i, ds.Skipped[i], w)
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte(`{"type":"FeatureCollection","features":[]}`)); !errors.Is(err, ErrNoFeatures) {
		t.Errorf("Parse(empty) error = %v; want ErrNoFeatures", err)
	}
	if _, err := Parse([]byte(`not json`)); err == nil {
		t.Error("Parse(garbage) returned no error")
	}
	if _, err := LoadFile(filepath.Join("testdata", "missing.json")); err == nil {
		t.Error("LoadFile(missing) returned no error")
	}
}

func TestExcludeIDs(t *testing.T) {
	exclude := ExcludeIDs(DefaultExcludedID, " grl ")
	tests := []struct {
		id   string
		want bool
	}{
		{"ATA", true},
		{"ata", true},
		{"GRL", true},
		{"FRA", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := exclude(Feature{ID: tt.id}); got != tt.want {
			t.Errorf("ExcludeIDs(%q) = %v; want %v", tt.id, got, tt.want)
		}
	}
}
