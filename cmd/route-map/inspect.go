package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/sudorandom/route-map/pkg/animation"
	"github.com/sudorandom/route-map/pkg/boundary"
	"github.com/sudorandom/route-map/pkg/connections"
	"github.com/sudorandom/route-map/pkg/geo"
	"github.com/sudorandom/route-map/pkg/shapes"
)

type InspectCmd struct {
	Top int `default:"5" help:"How many of the most detailed shapes to list."`
}

// Report summarises one full pass through the connection list.
type Report struct {
	Width       int
	Height      int
	Scale       float64
	Features    int
	Skipped     []boundary.Skipped
	Render      shapes.RenderStats
	Timing      animation.Timing
	Animation   animation.Stats
	Connections int
	Unlabelled  []string
	Detailed    []ShapeDetail
	Elapsed     time.Duration
}

type ShapeDetail struct {
	ID       string
	Name     string
	Vertices int
}

func (c *InspectCmd) Run(a *app) error {
	start := time.Now()
	sc, err := a.mount(start, 0, 0)
	if err != nil {
		return err
	}
	defer sc.Unmount()

	t := a.opts.Timing
	elapsed := time.Duration(len(a.conns))*t.TickPeriod + t.DrawDuration + t.FadeDuration
	frame := sc.Frame(start)
	advanceTo(sc, start, start.Add(elapsed))

	r := Report{
		Width:       frame.Width,
		Height:      frame.Height,
		Scale:       sc.Projector().Config().Scale,
		Features:    len(a.features),
		Skipped:     a.skipped,
		Render:      sc.Stats().Render,
		Timing:      t,
		Animation:   sc.Stats().Animation,
		Connections: len(a.conns),
		Unlabelled:  unlabelled(sc.Projector(), a.conns),
		Elapsed:     elapsed,
	}
	for _, s := range frame.Shapes {
		n := 0
		for _, poly := range s.Polygons {
			for _, ring := range poly {
				n += len(ring)
			}
		}
		r.Detailed = append(r.Detailed, ShapeDetail{ID: s.ID, Name: s.Name, Vertices: n})
	}
	sort.SliceStable(r.Detailed, func(i, j int) bool {
		return r.Detailed[i].Vertices > r.Detailed[j].Vertices
	})
	if len(r.Detailed) > c.Top {
		r.Detailed = r.Detailed[:max(c.Top, 0)]
	}

	r.Write(os.Stdout)
	return nil
}

// unlabelled lists endpoints that have a name but no screen position.
func unlabelled(p *geo.Projector, conns []connections.Connection) []string {
	var out []string
	for i, c := range conns {
		if _, ok := p.Project(c.Start); c.StartName != "" && !ok {
			out = append(out, fmt.Sprintf("#%d start %s", i, c.StartName))
		}
		if _, ok := p.Project(c.End); c.EndName != "" && !ok {
			out = append(out, fmt.Sprintf("#%d end %s", i, c.EndName))
		}
	}
	return out
}

func (r Report) Write(w io.Writer) {
	line := "--------------------------------------------------"
	fmt.Fprintf(w, "Route Map Stats (%dx%d, scale %.2f)\n", r.Width, r.Height, r.Scale)
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Features:      %d\n", r.Features)
	fmt.Fprintf(w, "Skipped:       %d\n", len(r.Skipped))
	fmt.Fprintf(w, "Rendered:      %d\n", r.Render.Rendered)
	fmt.Fprintf(w, "Excluded:      %d\n", r.Render.Excluded)
	fmt.Fprintf(w, "Off-map:       %d\n", r.Render.OutOfDomain)
	fmt.Fprintln(w, line)

	fmt.Fprintf(w, "ONE CYCLE (%d connections, %s simulated):\n", r.Connections, r.Elapsed)
	fmt.Fprintf(w, "  Ticks:          %d\n", r.Animation.Ticks)
	fmt.Fprintf(w, "  Paths started:  %d\n", r.Animation.PathsStarted)
	fmt.Fprintf(w, "  Paths removed:  %d\n", r.Animation.PathsRemoved)
	fmt.Fprintf(w, "  Labels shown:   %d\n", r.Animation.LabelsShown)
	fmt.Fprintf(w, "  Labels skipped: %d\n", r.Animation.LabelsSkipped)
	fmt.Fprintln(w, line)

	fmt.Fprintln(w, "LIKELY CONCLUSIONS:")
	conclusions := r.Conclusions()
	if len(conclusions) == 0 {
		fmt.Fprintln(w, "  - Dataset and timing look healthy")
	}
	for _, c := range conclusions {
		fmt.Fprintf(w, "  - %s\n", c)
	}
	fmt.Fprintln(w, line)

	if len(r.Detailed) > 0 {
		fmt.Fprintf(w, "Top %d Most Detailed Shapes:\n", len(r.Detailed))
		for _, d := range r.Detailed {
			fmt.Fprintf(w, "  %s (%s): %d vertices\n", d.Name, d.ID, d.Vertices)
		}
	}
	for _, s := range r.Skipped {
		fmt.Fprintf(w, "Skipped feature #%d %q: %s\n", s.Index, s.ID, s.Reason)
	}
}

func (r Report) Conclusions() []string {
	var results []string
	if r.Timing.Overlaps() {
		results = append(results, fmt.Sprintf("Overlapping paths (tick period %s is shorter than draw %s + fade %s)",
			r.Timing.TickPeriod, r.Timing.DrawDuration, r.Timing.FadeDuration))
	}
	if len(r.Skipped) > 0 {
		results = append(results, fmt.Sprintf("Malformed dataset (%d features could not be drawn)", len(r.Skipped)))
	}
	if r.Render.OutOfDomain > 0 {
		results = append(results, fmt.Sprintf("Polar shapes (%d features lie entirely outside the projection)", r.Render.OutOfDomain))
	}
	if r.Render.Rendered == 0 {
		results = append(results, "Empty map (no feature was rendered)")
	}
	for _, u := range r.Unlabelled {
		results = append(results, "Missing label: "+u+" cannot be projected")
	}
	if r.Animation.PathsRemoved < r.Connections {
		results = append(results, fmt.Sprintf("Stalled cycle (only %d of %d paths finished)", r.Animation.PathsRemoved, r.Connections))
	}
	return results
}
