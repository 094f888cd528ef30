// Package boundary loads the country boundary dataset the map is drawn from.
package boundary

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/biter777/countries"
	geojson "github.com/paulmach/go.geojson"
	"github.com/sudorandom/route-map/pkg/geo"
)

// DefaultExcludedID marks the Antarctic landmass in the usual world datasets.
const DefaultExcludedID = "ATA"

var ErrNoFeatures = errors.New("boundary dataset has no features")

// Feature is one drawable shape. Polygons are lists of rings, outer ring
// first, in geographic coordinates.
type Feature struct {
	ID       string
	Name     string
	Polygons [][][]geo.GeoPoint
}

// Skipped records a feature that could not be used and why.
type Skipped struct {
	Index  int
	ID     string
	Reason string
}

type Dataset struct {
	Features []Feature
	Skipped  []Skipped
}

// Predicate reports whether a feature must be left off the map.
type Predicate func(Feature) bool

// ExcludeIDs builds a Predicate matching any of ids, ignoring case.
func ExcludeIDs(ids ...string) Predicate {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[strings.ToUpper(strings.TrimSpace(id))] = true
	}
	return func(f Feature) bool {
		return set[strings.ToUpper(f.ID)]
	}
}

func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundaries: %w", err)
	}
	return Parse(data)
}

// Parse decodes a GeoJSON FeatureCollection. Features with no usable
// geometry or name are reported in Skipped instead of failing the load.
func Parse(data []byte) (*Dataset, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode boundaries: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, ErrNoFeatures
	}

	ds := &Dataset{Features: make([]Feature, 0, len(fc.Features))}
	for i, f := range fc.Features {
		id := featureID(f)
		skip := func(reason string) {
			ds.Skipped = append(ds.Skipped, Skipped{Index: i, ID: id, Reason: reason})
		}
		if f.Geometry == nil {
			skip("missing geometry")
			continue
		}

		var polys [][][]geo.GeoPoint
		switch {
		case f.Geometry.IsPolygon():
			if p := convertPolygon(f.Geometry.Polygon); p != nil {
				polys = append(polys, p)
			}
		case f.Geometry.IsMultiPolygon():
			for _, mp := range f.Geometry.MultiPolygon {
				if p := convertPolygon(mp); p != nil {
					polys = append(polys, p)
				}
			}
		default:
			skip(fmt.Sprintf("unsupported geometry %s", f.Geometry.Type))
			continue
		}
		if len(polys) == 0 {
			skip("empty geometry")
			continue
		}

		name := featureName(f, id)
		if name == "" {
			skip("missing name")
			continue
		}
		ds.Features = append(ds.Features, Feature{ID: id, Name: name, Polygons: polys})
	}
	return ds, nil
}

func featureID(f *geojson.Feature) string {
	if f.ID != nil {
		if id := strings.TrimSpace(fmt.Sprint(f.ID)); id != "" {
			return id
		}
	}
	for _, key := range []string{"id", "iso_a3", "ISO_A3"} {
		if id, err := f.PropertyString(key); err == nil && id != "" {
			return id
		}
	}
	return ""
}

// featureName prefers properties.name and falls back to the ISO country
// name for the feature's id.
func featureName(f *geojson.Feature, id string) string {
	if name, err := f.PropertyString("name"); err == nil && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	if id == "" {
		return ""
	}
	name := countries.ByName(id).String()
	if name == "Unknown" {
		return ""
	}
	if idx := strings.Index(name, " ("); idx != -1 {
		name = name[:idx]
	}
	return name
}

// convertPolygon keeps rings with at least three valid positions. A polygon
// whose outer ring is unusable is dropped whole.
func convertPolygon(rings [][][]float64) [][]geo.GeoPoint {
	var out [][]geo.GeoPoint
	for i, ring := range rings {
		pts := make([]geo.GeoPoint, 0, len(ring))
		for _, c := range ring {
			if p, ok := geo.FromCoordinates(c); ok {
				pts = append(pts, p)
			}
		}
		if len(pts) < 3 {
			if i == 0 {
				return nil
			}
			continue
		}
		out = append(out, pts)
	}
	return out
}
