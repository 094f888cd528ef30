package scene

import (
	"image/color"

	"github.com/sudorandom/route-map/pkg/geo"
	"github.com/sudorandom/route-map/pkg/shapes"
)

// Frame is the complete visual state of a scene at one instant. Painters
// draw it without calling back into the scene.
type Frame struct {
	Mounted    bool
	Width      int
	Height     int
	Generation int
	Cursor     int
	Palette    Palette
	Shapes     []ShapeView
	Hovered    int
	Paths      []PathView
	Labels     []LabelView
	Tooltip    shapes.TooltipState
}

type ShapeView struct {
	ID       string
	Name     string
	Polygons [][][]geo.ScreenPoint
	Fill     color.RGBA
}

// PathView carries the visible part of a connection line. Segments are
// already cut to the current draw progress.
type PathView struct {
	Index    int
	Route    string
	Segments [][]geo.ScreenPoint
	Progress float64
	Opacity  float64
}

type LabelView struct {
	Text    string
	Anchor  geo.ScreenPoint
	At      geo.ScreenPoint
	End     bool
	Opacity float64
}
