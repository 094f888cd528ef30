package viewer

import (
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sudorandom/route-map/pkg/boundary"
	"github.com/sudorandom/route-map/pkg/connections"
	"github.com/sudorandom/route-map/pkg/geo"
	"github.com/sudorandom/route-map/pkg/scene"
)

// BenchmarkDraw measures a full frame with a line mid-draw and a hovered
// country. High allocations per op here usually mean something is rebuilt
// every frame.
func BenchmarkDraw(b *testing.B) {
	width, height := 1920, 1080
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var features []boundary.Feature
	for lon := -170.0; lon < 170; lon += 20 {
		for lat := -50.0; lat < 70; lat += 20 {
			features = append(features, boundary.Feature{
				ID:   "X",
				Name: "Box",
				Polygons: [][][]geo.GeoPoint{{{
					{Lon: lon, Lat: lat}, {Lon: lon + 15, Lat: lat}, {Lon: lon + 15, Lat: lat + 15}, {Lon: lon, Lat: lat + 15},
				}}},
			})
		}
	}

	sc, err := scene.New(connections.Defaults(), scene.DefaultOptions(), nil)
	if err != nil {
		b.Fatal(err)
	}
	if err := sc.Mount(start, features, width, height); err != nil {
		b.Fatal(err)
	}
	now := start.Add(2500 * time.Millisecond)
	sc.Advance(now)
	pt, _ := sc.Projector().Project(geo.GeoPoint{Lon: 7, Lat: 7})
	sc.PointerMove(pt.X, pt.Y)

	v := New(sc, Options{Clock: func() time.Time { return now }}, nil)
	screen := ebiten.NewImage(width, height)
	v.Draw(screen)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		v.Draw(screen)
	}
}
