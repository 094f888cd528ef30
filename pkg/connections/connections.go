// Package connections holds the ordered list of routes the map animates.
package connections

import (
	"errors"
	"fmt"
	"os"
	"strings"

	geojson "github.com/paulmach/go.geojson"
	"github.com/sudorandom/route-map/pkg/geo"
)

var ErrEmpty = errors.New("no connections")

// Connection is a directed route between two named places. An empty name
// means the endpoint gets no label.
type Connection struct {
	Start     geo.GeoPoint
	End       geo.GeoPoint
	StartName string
	EndName   string
}

func (c Connection) String() string {
	return fmt.Sprintf("%s -> %s", nameOr(c.StartName, c.Start), nameOr(c.EndName, c.End))
}

func nameOr(name string, p geo.GeoPoint) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("(%.4f, %.4f)", p.Lon, p.Lat)
}

var (
	paris    = geo.GeoPoint{Lon: 2.3522, Lat: 48.8566}
	newYork  = geo.GeoPoint{Lon: -74.0060, Lat: 40.7128}
	tokyo    = geo.GeoPoint{Lon: 139.6917, Lat: 35.6895}
	london   = geo.GeoPoint{Lon: -0.1276, Lat: 51.5074}
	beijing  = geo.GeoPoint{Lon: 116.4074, Lat: 39.9042}
	sydney   = geo.GeoPoint{Lon: 151.2093, Lat: -33.8688}
	moscow   = geo.GeoPoint{Lon: 37.6173, Lat: 55.7558}
	newDelhi = geo.GeoPoint{Lon: 77.2090, Lat: 28.6139}
)

// Defaults returns the built-in route list.
func Defaults() []Connection {
	return []Connection{
		{Start: paris, End: newYork, StartName: "Paris", EndName: "New York"},
		{Start: tokyo, End: london, StartName: "Tokyo", EndName: "London"},
		{Start: beijing, End: sydney, StartName: "Beijing", EndName: "Sydney"},
		{Start: moscow, End: paris, StartName: "Moscow", EndName: "Paris"},
		{Start: newDelhi, End: tokyo, StartName: "New Delhi", EndName: "Tokyo"},
		{Start: sydney, End: newDelhi, StartName: "Sydney", EndName: "New Delhi"},
		{Start: london, End: moscow, StartName: "London", EndName: "Moscow"},
	}
}

func LoadFile(path string) ([]Connection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read connections: %w", err)
	}
	return Parse(data)
}

// Parse reads a FeatureCollection of LineStrings. The first and last
// positions become the endpoints; "startName" and "endName" properties
// become the labels.
func Parse(data []byte) ([]Connection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode connections: %w", err)
	}

	conns := make([]Connection, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil || !f.Geometry.IsLineString() {
			return nil, fmt.Errorf("connection %d: geometry must be a LineString", i)
		}
		line := f.Geometry.LineString
		if len(line) < 2 {
			return nil, fmt.Errorf("connection %d: need at least two positions, got %d", i, len(line))
		}
		start, ok := geo.FromCoordinates(line[0])
		if !ok {
			return nil, fmt.Errorf("connection %d: invalid start position %v", i, line[0])
		}
		end, ok := geo.FromCoordinates(line[len(line)-1])
		if !ok {
			return nil, fmt.Errorf("connection %d: invalid end position %v", i, line[len(line)-1])
		}
		conns = append(conns, Connection{
			Start:     start,
			End:       end,
			StartName: property(f, "startName"),
			EndName:   property(f, "endName"),
		})
	}
	if len(conns) == 0 {
		return nil, ErrEmpty
	}
	return conns, nil
}

func property(f *geojson.Feature, key string) string {
	s, err := f.PropertyString(key)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
