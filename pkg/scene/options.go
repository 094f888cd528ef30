package scene

import (
	"image/color"

	"github.com/sudorandom/route-map/pkg/animation"
	"github.com/sudorandom/route-map/pkg/boundary"
	"github.com/sudorandom/route-map/pkg/geo"
	"github.com/sudorandom/route-map/pkg/shapes"
)

// Palette is everything a painter needs to know about colors and widths.
type Palette struct {
	Background      color.RGBA
	Land            color.RGBA
	LandStroke      color.RGBA
	Hover           color.RGBA
	Connection      color.RGBA
	Label           color.RGBA
	TooltipBg       color.RGBA
	TooltipBorder   color.RGBA
	TooltipText     color.RGBA
	LandStrokeWidth float64
	ConnectionWidth float64
	LabelSize       float64
}

func DefaultPalette() Palette {
	return Palette{
		Background:      color.RGBA{0xf7, 0xf7, 0xf2, 0xff},
		Land:            color.RGBA{0x1d, 0x5b, 0x55, 0xff},
		LandStroke:      color.RGBA{0xff, 0xff, 0xff, 0xff},
		Hover:           color.RGBA{0xff, 0xa5, 0x00, 0xff},
		Connection:      color.RGBA{0xd1, 0x1d, 0x1d, 0xff},
		Label:           color.RGBA{0x1a, 0x1a, 0x1a, 0xff},
		TooltipBg:       color.RGBA{0xff, 0xff, 0xff, 0xff},
		TooltipBorder:   color.RGBA{0x00, 0x00, 0x00, 0xff},
		TooltipText:     color.RGBA{0x00, 0x00, 0x00, 0xff},
		LandStrokeWidth: 0.5,
		ConnectionWidth: 2,
		LabelSize:       12,
	}
}

type Options struct {
	Width, Height int
	Center        geo.GeoPoint
	ScaleOffset   float64
	Timing        animation.Timing
	Exclude       boundary.Predicate
	Palette       Palette
	// LabelOffset moves endpoint labels off their point, upwards by default.
	LabelOffset   geo.ScreenPoint
	TooltipOffset geo.ScreenPoint
	// OnHover, if set, sees every hover transition after the scene has
	// applied it.
	OnHover func(shapes.HoverEvent)
}

func DefaultOptions() Options {
	return Options{
		Width:         1400,
		Height:        900,
		Center:        geo.GeoPoint{Lon: 0, Lat: 40},
		ScaleOffset:   40,
		Timing:        animation.DefaultTiming(),
		Exclude:       boundary.ExcludeIDs(boundary.DefaultExcludedID),
		Palette:       DefaultPalette(),
		LabelOffset:   geo.ScreenPoint{X: 0, Y: -10},
		TooltipOffset: geo.ScreenPoint{X: 10, Y: -10},
	}
}

func (o Options) shapeStyle() shapes.Style {
	return shapes.Style{
		Base:          o.Palette.Land,
		Highlight:     o.Palette.Hover,
		TooltipOffset: o.TooltipOffset,
	}
}
