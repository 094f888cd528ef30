// Package shapes turns boundary features into projected screen shapes and
// tracks which one the pointer is over.
package shapes

import (
	"image/color"
	"math"

	"github.com/sudorandom/route-map/pkg/boundary"
	"github.com/sudorandom/route-map/pkg/geo"
)

type Style struct {
	Base          color.RGBA
	Highlight     color.RGBA
	TooltipOffset geo.ScreenPoint
}

func DefaultStyle() Style {
	return Style{
		Base:          color.RGBA{0x1d, 0x5b, 0x55, 0xff},
		Highlight:     color.RGBA{0xff, 0xa5, 0x00, 0xff},
		TooltipOffset: geo.ScreenPoint{X: 10, Y: -10},
	}
}

// Shape is one rendered feature. Polygons hold projected rings, outer ring
// first.
type Shape struct {
	ID       string
	Name     string
	Polygons [][][]geo.ScreenPoint
	Min, Max geo.ScreenPoint
}

// Contains is an even-odd test over every ring of the shape.
func (s *Shape) Contains(pt geo.ScreenPoint) bool {
	if pt.X < s.Min.X || pt.X > s.Max.X || pt.Y < s.Min.Y || pt.Y > s.Max.Y {
		return false
	}
	inside := false
	for _, poly := range s.Polygons {
		for _, ring := range poly {
			for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
				a, b := ring[i], ring[j]
				if (a.Y > pt.Y) != (b.Y > pt.Y) &&
					pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
					inside = !inside
				}
			}
		}
	}
	return inside
}

type HoverKind int

const (
	HoverEnter HoverKind = iota
	HoverMove
	HoverLeave
)

func (k HoverKind) String() string {
	switch k {
	case HoverEnter:
		return "enter"
	case HoverMove:
		return "move"
	default:
		return "leave"
	}
}

type HoverEvent struct {
	Kind    HoverKind
	Index   int
	ID      string
	Name    string
	Pointer geo.ScreenPoint
}

type RenderStats struct {
	Rendered    int
	Excluded    int
	OutOfDomain int
}

// Layer owns the shapes of one session. Render always rebuilds from scratch.
type Layer struct {
	style   Style
	tooltip *Tooltip
	onHover func(HoverEvent)

	shapes  []Shape
	hovered int
}

// NewLayer binds onHover for the lifetime of the layer; it may be nil.
func NewLayer(style Style, tooltip *Tooltip, onHover func(HoverEvent)) *Layer {
	return &Layer{style: style, tooltip: tooltip, onHover: onHover, hovered: -1}
}

func (l *Layer) Style() Style { return l.style }

// Render clears every shape and the hover state, then builds one shape per
// feature that exclude does not match and that has a ring of at least three
// projectable vertices.
func (l *Layer) Render(features []boundary.Feature, p *geo.Projector, exclude boundary.Predicate) RenderStats {
	l.Clear()

	var stats RenderStats
	for _, f := range features {
		if exclude != nil && exclude(f) {
			stats.Excluded++
			continue
		}
		s, ok := projectFeature(f, p)
		if !ok {
			stats.OutOfDomain++
			continue
		}
		l.shapes = append(l.shapes, s)
		stats.Rendered++
	}
	return stats
}

func projectFeature(f boundary.Feature, p *geo.Projector) (Shape, bool) {
	s := Shape{
		ID:   f.ID,
		Name: f.Name,
		Min:  geo.ScreenPoint{X: math.Inf(1), Y: math.Inf(1)},
		Max:  geo.ScreenPoint{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	for _, poly := range f.Polygons {
		var rings [][]geo.ScreenPoint
		for _, ring := range poly {
			pts := make([]geo.ScreenPoint, 0, len(ring))
			for _, gp := range ring {
				sp, ok := p.Project(gp)
				if !ok {
					continue
				}
				pts = append(pts, sp)
				s.Min.X, s.Min.Y = math.Min(s.Min.X, sp.X), math.Min(s.Min.Y, sp.Y)
				s.Max.X, s.Max.Y = math.Max(s.Max.X, sp.X), math.Max(s.Max.Y, sp.Y)
			}
			if len(pts) >= 3 {
				rings = append(rings, pts)
			}
		}
		if len(rings) > 0 {
			s.Polygons = append(s.Polygons, rings)
		}
	}
	return s, len(s.Polygons) > 0
}

// Clear drops all shapes and hover state and hides the tooltip. No hover
// event is sent.
func (l *Layer) Clear() {
	l.shapes = nil
	l.hovered = -1
	l.tooltip.Hide()
}

func (l *Layer) Shapes() []Shape { return l.shapes }

func (l *Layer) Len() int { return len(l.shapes) }

// Hovered is the index of the shape under the pointer, or -1.
func (l *Layer) Hovered() int { return l.hovered }

// Fill is the color shape i is drawn with right now.
func (l *Layer) Fill(i int) color.RGBA {
	if i == l.hovered {
		return l.style.Highlight
	}
	return l.style.Base
}

// HitTest returns the topmost shape containing pt, or -1.
func (l *Layer) HitTest(pt geo.ScreenPoint) int {
	for i := len(l.shapes) - 1; i >= 0; i-- {
		if l.shapes[i].Contains(pt) {
			return i
		}
	}
	return -1
}

// PointerMove updates the hover state. Moving from one shape straight onto
// another sends a leave for the first and an enter for the second.
func (l *Layer) PointerMove(pt geo.ScreenPoint) {
	hit := l.HitTest(pt)
	if hit >= 0 && hit == l.hovered {
		l.tooltip.Move(pt.Add(l.style.TooltipOffset))
		l.emit(HoverMove, hit, pt)
		return
	}
	if l.hovered >= 0 {
		l.leave(pt)
	}
	if hit >= 0 {
		l.hovered = hit
		l.tooltip.Show(l.shapes[hit].Name, pt.Add(l.style.TooltipOffset))
		l.emit(HoverEnter, hit, pt)
	}
}

// PointerLeave is called when the pointer leaves the surface.
func (l *Layer) PointerLeave() {
	if l.hovered >= 0 {
		l.leave(geo.ScreenPoint{})
	}
}

func (l *Layer) leave(pt geo.ScreenPoint) {
	prev := l.hovered
	l.hovered = -1
	l.tooltip.Hide()
	l.emit(HoverLeave, prev, pt)
}

func (l *Layer) emit(kind HoverKind, i int, pt geo.ScreenPoint) {
	if l.onHover == nil {
		return
	}
	s := l.shapes[i]
	l.onHover(HoverEvent{Kind: kind, Index: i, ID: s.ID, Name: s.Name, Pointer: pt})
}
