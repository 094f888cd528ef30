package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// DefaultArcStep is the angular spacing, in degrees, between interpolated
// points of a great-circle arc.
const DefaultArcStep = 2.0

// GreatCircle returns the points of the shortest arc from a to b, spaced at
// most stepDeg apart. The endpoints are returned untouched.
func GreatCircle(a, b GeoPoint, stepDeg float64) []GeoPoint {
	if stepDeg <= 0 {
		stepDeg = DefaultArcStep
	}
	pa := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Lat, a.Lon))
	pb := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Lat, b.Lon))

	n := int(math.Ceil(pa.Distance(pb).Degrees() / stepDeg))
	if n < 1 {
		n = 1
	}
	out := make([]GeoPoint, 0, n+1)
	out = append(out, a)
	for i := 1; i < n; i++ {
		ll := s2.LatLngFromPoint(s2.Interpolate(float64(i)/float64(n), pa, pb))
		out = append(out, GeoPoint{Lon: ll.Lng.Degrees(), Lat: ll.Lat.Degrees()})
	}
	return append(out, b)
}

// ProjectLine projects a geographic line into screen segments. A segment
// ends wherever a point misses the projection or the line wraps across the
// antimeridian. Segments shorter than two points are dropped.
func ProjectLine(p *Projector, pts []GeoPoint) [][]ScreenPoint {
	var (
		segs [][]ScreenPoint
		cur  []ScreenPoint
		prev GeoPoint
		have bool
	)
	flush := func() {
		if len(cur) >= 2 {
			segs = append(segs, cur)
		}
		cur = nil
	}
	for _, pt := range pts {
		sp, ok := p.Project(pt)
		if !ok {
			flush()
			have = false
			continue
		}
		if have && math.Abs(pt.Lon-prev.Lon) > 180 {
			flush()
		}
		cur = append(cur, sp)
		prev, have = pt, true
	}
	flush()
	return segs
}

// Length is the summed screen length of all segments.
func Length(segs [][]ScreenPoint) float64 {
	total := 0.0
	for _, s := range segs {
		for i := 1; i < len(s); i++ {
			total += s[i-1].Dist(s[i])
		}
	}
	return total
}

// Truncate keeps the leading fraction of the segments' total length, cutting
// the last visible segment mid-way where needed.
func Truncate(segs [][]ScreenPoint, fraction float64) [][]ScreenPoint {
	if fraction <= 0 {
		return nil
	}
	if fraction >= 1 {
		return segs
	}
	remaining := Length(segs) * fraction
	var out [][]ScreenPoint
	for _, s := range segs {
		kept := []ScreenPoint{s[0]}
		for i := 1; i < len(s); i++ {
			d := s[i-1].Dist(s[i])
			if d >= remaining {
				if d > 0 {
					t := remaining / d
					kept = append(kept, ScreenPoint{
						X: s[i-1].X + (s[i].X-s[i-1].X)*t,
						Y: s[i-1].Y + (s[i].Y-s[i-1].Y)*t,
					})
				}
				if len(kept) >= 2 {
					out = append(out, kept)
				}
				return out
			}
			remaining -= d
			kept = append(kept, s[i])
		}
		out = append(out, kept)
	}
	return out
}
