// Package geo projects geographic coordinates onto the screen and builds the
// line geometry used for animated connections.
package geo

import "math"

// GeoPoint is a longitude/latitude pair in degrees.
type GeoPoint struct {
	Lon, Lat float64
}

// Valid reports whether the point is finite and inside the WGS84 ranges.
func (g GeoPoint) Valid() bool {
	if math.IsNaN(g.Lon) || math.IsNaN(g.Lat) || math.IsInf(g.Lon, 0) || math.IsInf(g.Lat, 0) {
		return false
	}
	return g.Lon >= -180 && g.Lon <= 180 && g.Lat >= -90 && g.Lat <= 90
}

// Coordinates returns the point in GeoJSON order.
func (g GeoPoint) Coordinates() []float64 {
	return []float64{g.Lon, g.Lat}
}

// FromCoordinates reads a GeoJSON position ([lon, lat, ...]).
func FromCoordinates(c []float64) (GeoPoint, bool) {
	if len(c) < 2 {
		return GeoPoint{}, false
	}
	p := GeoPoint{Lon: c[0], Lat: c[1]}
	return p, p.Valid()
}

type ScreenPoint struct {
	X, Y float64
}

func (p ScreenPoint) Add(o ScreenPoint) ScreenPoint {
	return ScreenPoint{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p ScreenPoint) Dist(o ScreenPoint) float64 {
	return math.Hypot(o.X-p.X, o.Y-p.Y)
}
