package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sudorandom/route-map/pkg/animation"
	"github.com/sudorandom/route-map/pkg/boundary"
	"github.com/sudorandom/route-map/pkg/connections"
	"github.com/sudorandom/route-map/pkg/geo"
	"github.com/sudorandom/route-map/pkg/scene"
	"github.com/sudorandom/route-map/pkg/shapes"
)

func testApp() *app {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return &app{
		log:  logger,
		opts: scene.DefaultOptions(),
		features: []boundary.Feature{{
			ID:   "FRA",
			Name: "France",
			Polygons: [][][]geo.GeoPoint{{{
				{Lon: -4, Lat: 43}, {Lon: 8, Lat: 43}, {Lon: 8, Lat: 51}, {Lon: -4, Lat: 51},
			}}},
		}},
		conns: connections.Defaults(),
	}
}

func TestAdvanceToRunsEveryTick(t *testing.T) {
	a := testApp()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sc, err := a.mount(start, 700, 600)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	defer sc.Unmount()

	advanceTo(sc, start, start.Add(30*time.Second))
	if got := sc.Stats().Animation.Ticks; got != 7 {
		t.Errorf("ticks = %d; want 7", got)
	}
	if w, h := sc.Size(); w != 700 || h != 600 {
		t.Errorf("Size() = %dx%d; want 700x600", w, h)
	}
}

func TestMountUsesConfiguredViewport(t *testing.T) {
	a := testApp()
	sc, err := a.mount(time.Now(), 0, 0)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	defer sc.Unmount()
	if w, h := sc.Size(); w != 1400 || h != 900 {
		t.Errorf("Size() = %dx%d; want 1400x900", w, h)
	}
}

func TestReportConclusions(t *testing.T) {
	healthy := animation.DefaultTiming()
	healthy.TickPeriod = 6 * time.Second

	tests := []struct {
		name string
		r    Report
		want []string
	}{
		{
			name: "healthy",
			r: Report{
				Timing:      healthy,
				Render:      shapes.RenderStats{Rendered: 10},
				Animation:   animation.Stats{PathsRemoved: 7},
				Connections: 7,
			},
		},
		{
			name: "everything wrong",
			r: Report{
				Timing:      animation.DefaultTiming(),
				Skipped:     []boundary.Skipped{{Index: 3, Reason: "missing name"}},
				Render:      shapes.RenderStats{OutOfDomain: 2},
				Unlabelled:  []string{"#0 start North Pole"},
				Animation:   animation.Stats{PathsRemoved: 1},
				Connections: 2,
			},
			want: []string{
				"Overlapping paths",
				"Malformed dataset (1 features",
				"Polar shapes (2 features",
				"Empty map",
				"Missing label: #0 start North Pole",
				"Stalled cycle (only 1 of 2",
			},
		},
	}
	for _, tt := range tests {
		got := tt.r.Conclusions()
		if len(got) != len(tt.want) {
			t.Errorf("%s: Conclusions() = %q; want %d entries", tt.name, got, len(tt.want))
			continue
		}
		for i, prefix := range tt.want {
			if !strings.HasPrefix(got[i], prefix) {
				t.Errorf("%s: conclusion %d = %q; want prefix %q", tt.name, i, got[i], prefix)
			}
		}
	}
}

func TestReportWrite(t *testing.T) {
	r := Report{
		Width:       1400,
		Height:      900,
		Scale:       182.82,
		Features:    3,
		Render:      shapes.RenderStats{Rendered: 2, Excluded: 1},
		Timing:      animation.DefaultTiming(),
		Connections: 7,
		Detailed:    []ShapeDetail{{ID: "FRA", Name: "France", Vertices: 4}},
		Skipped:     []boundary.Skipped{{Index: 5, ID: "XYZ", Reason: "empty geometry"}},
	}
	var buf bytes.Buffer
	r.Write(&buf)
	out := buf.String()
	for _, want := range []string{
		"Route Map Stats (1400x900, scale 182.82)",
		"Rendered:      2",
		"Excluded:      1",
		"Top 1 Most Detailed Shapes:",
		"France (FRA): 4 vertices",
		`Skipped feature #5 "XYZ": empty geometry`,
		"Overlapping paths",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report is missing %q:\n%s", want, out)
		}
	}
}

func TestUnlabelled(t *testing.T) {
	p, err := geo.NewProjector(geo.NewProjectionConfig(1400, 900, geo.GeoPoint{Lat: 40}, 40))
	if err != nil {
		t.Fatal(err)
	}
	conns := []connections.Connection{
		{Start: geo.GeoPoint{Lat: 90}, End: geo.GeoPoint{Lon: 2, Lat: 48}, StartName: "North Pole", EndName: "Paris"},
		{Start: geo.GeoPoint{Lat: -90}, End: geo.GeoPoint{Lon: 2, Lat: 48}},
	}
	got := unlabelled(p, conns)
	if len(got) != 1 || got[0] != "#0 start North Pole" {
		t.Errorf("unlabelled() = %q; want [#0 start North Pole]", got)
	}
}
