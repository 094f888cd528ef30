package shapes

import (
	"reflect"
	"testing"

	"github.com/sudorandom/route-map/pkg/boundary"
	"github.com/sudorandom/route-map/pkg/geo"
)

func square(lon0, lat0, lon1, lat1 float64) [][]geo.GeoPoint {
	return [][]geo.GeoPoint{{
		{Lon: lon0, Lat: lat0}, {Lon: lon1, Lat: lat0}, {Lon: lon1, Lat: lat1}, {Lon: lon0, Lat: lat1}, {Lon: lon0, Lat: lat0},
	}}
}

func testFeatures() []boundary.Feature {
	donut := square(40, 0, 60, 20)
	donut = append(donut, square(45, 5, 55, 15)[0])
	return []boundary.Feature{
		{ID: "AAA", Name: "Alpha", Polygons: [][][]geo.GeoPoint{square(0, 0, 10, 10)}},
		{ID: "ATA", Name: "Antarctica", Polygons: [][][]geo.GeoPoint{square(-60, -80, 60, -65)}},
		{ID: "BBB", Name: "Beta", Polygons: [][][]geo.GeoPoint{square(20, 0, 30, 10), square(20, 20, 30, 30)}},
		{ID: "DNT", Name: "Donut", Polygons: [][][]geo.GeoPoint{donut}},
		{ID: "NTH", Name: "Far North", Polygons: [][][]geo.GeoPoint{square(0, 86, 10, 89)}},
		{ID: "TOP", Name: "Overlap", Polygons: [][][]geo.GeoPoint{square(5, 5, 15, 15)}},
	}
}

func testProjector(t *testing.T, w, h int) *geo.Projector {
	t.Helper()
	p, err := geo.NewProjector(geo.NewProjectionConfig(w, h, geo.GeoPoint{Lat: 40}, 40))
	if err != nil {
		t.Fatalf("NewProjector: %v", err)
	}
	return p
}

func screen(t *testing.T, p *geo.Projector, lon, lat float64) geo.ScreenPoint {
	t.Helper()
	sp, ok := p.Project(geo.GeoPoint{Lon: lon, Lat: lat})
	if !ok {
		t.Fatalf("Project(%v, %v) missed", lon, lat)
	}
	return sp
}

func TestRenderExcludesAndSkips(t *testing.T) {
	l := NewLayer(DefaultStyle(), NewTooltip(), nil)
	stats := l.Render(testFeatures(), testProjector(t, 1400, 900), boundary.ExcludeIDs(boundary.DefaultExcludedID))

	want := RenderStats{Rendered: 4, Excluded: 1, OutOfDomain: 1}
	if stats != want {
		t.Errorf("Render() = %+v; want %+v", stats, want)
	}
	var ids []string
	for _, s := range l.Shapes() {
		ids = append(ids, s.ID)
	}
	if want := []string{"AAA", "BBB", "DNT", "TOP"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("rendered ids = %v; want %v", ids, want)
	}
}

func TestRenderWithoutPredicate(t *testing.T) {
	l := NewLayer(DefaultStyle(), NewTooltip(), nil)
	if got := l.Render(testFeatures(), testProjector(t, 1400, 900), nil).Rendered; got != 5 {
		t.Errorf("Rendered = %d; want 5", got)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	p := testProjector(t, 1400, 900)
	exclude := boundary.ExcludeIDs(boundary.DefaultExcludedID)
	l := NewLayer(DefaultStyle(), NewTooltip(), nil)

	l.Render(testFeatures(), p, exclude)
	first := l.Shapes()
	l.Render(testFeatures(), p, exclude)
	if !reflect.DeepEqual(first, l.Shapes()) {
		t.Error("second Render produced different shapes")
	}
	if l.Len() != 4 {
		t.Errorf("Len() = %d; want 4", l.Len())
	}
}

func TestRenderFollowsProjector(t *testing.T) {
	l := NewLayer(DefaultStyle(), NewTooltip(), nil)
	l.Render(testFeatures(), testProjector(t, 700, 600), nil)
	small := l.Shapes()[0]
	l.Render(testFeatures(), testProjector(t, 1400, 900), nil)
	if l.Len() != 5 {
		t.Fatalf("Len() = %d after re-render; want 5", l.Len())
	}
	large := l.Shapes()[0]
	if large.Max.X-large.Min.X <= small.Max.X-small.Min.X {
		t.Errorf("shape width %v at 1400px not wider than %v at 700px", large.Max.X-large.Min.X, small.Max.X-small.Min.X)
	}
}

func TestHoverNotifiesOncePerTransition(t *testing.T) {
	p := testProjector(t, 1400, 900)
	var events []HoverEvent
	tip := NewTooltip()
	l := NewLayer(DefaultStyle(), tip, func(e HoverEvent) { events = append(events, e) })

	// Rendering twice must not double up the handler.
	l.Render(testFeatures(), p, nil)
	l.Render(testFeatures(), p, nil)

	alpha := screen(t, p, 2, 2)
	l.PointerMove(alpha)
	l.PointerMove(alpha.Add(geo.ScreenPoint{X: 1}))
	l.PointerMove(screen(t, p, -20, 0))

	want := []HoverKind{HoverEnter, HoverMove, HoverLeave}
	if len(events) != len(want) {
		t.Fatalf("got %d events (%v); want %d", len(events), events, len(want))
	}
	for i, k := range want {
		if events[i].Kind != k || events[i].ID != "AAA" {
			t.Errorf("event %d = %s %s; want %s AAA", i, events[i].Kind, events[i].ID, k)
		}
	}
}

func TestHoverHighlightAndTooltip(t *testing.T) {
	p := testProjector(t, 1400, 900)
	tip := NewTooltip()
	style := DefaultStyle()
	l := NewLayer(style, tip, nil)
	l.Render(testFeatures(), p, boundary.ExcludeIDs("ATA"))

	pt := screen(t, p, 25, 25)
	l.PointerMove(pt)
	if got := l.Hovered(); got != 1 {
		t.Fatalf("Hovered() = %d; want 1 (Beta)", got)
	}
	if l.Fill(1) != style.Highlight || l.Fill(0) != style.Base {
		t.Errorf("fills = %v, %v; want highlight on Beta only", l.Fill(1), l.Fill(0))
	}
	want := TooltipState{Text: "Beta", At: geo.ScreenPoint{X: pt.X + 10, Y: pt.Y - 10}, Visible: true}
	if got := tip.State(); got != want {
		t.Errorf("tooltip = %+v; want %+v", got, want)
	}

	l.PointerLeave()
	if l.Hovered() != -1 || tip.State().Visible || l.Fill(1) != style.Base {
		t.Errorf("after leave: hovered %d, tooltip %+v, fill %v", l.Hovered(), tip.State(), l.Fill(1))
	}
}

func TestHitTest(t *testing.T) {
	p := testProjector(t, 1400, 900)
	l := NewLayer(DefaultStyle(), NewTooltip(), nil)
	l.Render(testFeatures(), p, boundary.ExcludeIDs("ATA"))

	tests := []struct {
		lon, lat float64
		want     string
	}{
		{2, 2, "AAA"},
		{7, 7, "TOP"},
		{12, 12, "TOP"},
		{25, 5, "BBB"},
		{25, 25, "BBB"},
		{42, 2, "DNT"},
		{50, 10, ""},
		{-30, 0, ""},
	}
	for _, tt := range tests {
		got := ""
		if i := l.HitTest(screen(t, p, tt.lon, tt.lat)); i >= 0 {
			got = l.Shapes()[i].ID
		}
		if got != tt.want {
			t.Errorf("HitTest(%v, %v) = %q; want %q", tt.lon, tt.lat, got, tt.want)
		}
	}
}

func TestRenderClearsHover(t *testing.T) {
	p := testProjector(t, 1400, 900)
	tip := NewTooltip()
	l := NewLayer(DefaultStyle(), tip, nil)
	l.Render(testFeatures(), p, nil)
	l.PointerMove(screen(t, p, 2, 2))

	l.Render(testFeatures(), p, nil)
	if l.Hovered() != -1 || tip.State().Visible {
		t.Errorf("hover survived a rebuild: hovered %d, tooltip %+v", l.Hovered(), tip.State())
	}
}

func TestReleasedTooltipIgnoresUpdates(t *testing.T) {
	tip := NewTooltip()
	tip.Show("Alpha", geo.ScreenPoint{X: 1, Y: 2})
	tip.Release()
	tip.Show("Beta", geo.ScreenPoint{X: 3, Y: 4})
	tip.Move(geo.ScreenPoint{X: 5, Y: 6})

	if got := tip.State(); got != (TooltipState{}) {
		t.Errorf("State() after Release = %+v; want zero", got)
	}
	if !tip.Released() {
		t.Error("Released() = false")
	}

	var nilTip *Tooltip
	nilTip.Show("x", geo.ScreenPoint{})
	nilTip.Hide()
	nilTip.Release()
}
