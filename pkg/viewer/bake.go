package viewer

import (
	"image"
	"image/color"

	"github.com/sudorandom/route-map/pkg/geo"
	"github.com/sudorandom/route-map/pkg/raster"
	"github.com/sudorandom/route-map/pkg/scene"
)

// bakeBackground rasterizes the static map of a frame: background, land
// fills and outlines.
func bakeBackground(f scene.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	raster.Clear(img, f.Palette.Background)
	for _, s := range f.Shapes {
		paintShape(img, s.Polygons, geo.ScreenPoint{}, f.Palette.Land, f.Palette.LandStroke, f.Palette.LandStrokeWidth)
	}
	return img
}

// bakeHighlight rasterizes one shape in c into an image covering only the
// shape's bounding box. The returned point is where the image goes on
// screen.
func bakeHighlight(s scene.ShapeView, c, stroke color.RGBA, strokeWidth float64) (*image.RGBA, image.Point) {
	minX, minY, maxX, maxY := bounds(s.Polygons)
	origin := image.Point{X: minX, Y: minY}
	img := image.NewRGBA(image.Rect(0, 0, maxX-minX+1, maxY-minY+1))
	offset := geo.ScreenPoint{X: -float64(minX), Y: -float64(minY)}
	paintShape(img, s.Polygons, offset, c, stroke, strokeWidth)
	return img, origin
}

func paintShape(img *image.RGBA, polys [][][]geo.ScreenPoint, offset geo.ScreenPoint, fill, stroke color.RGBA, strokeWidth float64) {
	for _, poly := range polys {
		rings := poly
		if offset != (geo.ScreenPoint{}) {
			rings = make([][]geo.ScreenPoint, len(poly))
			for i, ring := range poly {
				rings[i] = make([]geo.ScreenPoint, len(ring))
				for j, p := range ring {
					rings[i][j] = p.Add(offset)
				}
			}
		}
		raster.FillPolygon(img, rings, fill)
		if strokeWidth > 0 {
			for _, ring := range rings {
				raster.StrokeRing(img, ring, stroke)
			}
		}
	}
}

func bounds(polys [][][]geo.ScreenPoint) (minX, minY, maxX, maxY int) {
	first := true
	for _, poly := range polys {
		for _, ring := range poly {
			for _, p := range ring {
				x, y := int(p.X), int(p.Y)
				if first {
					minX, minY, maxX, maxY = x, y, x, y
					first = false
					continue
				}
				minX, minY = min(minX, x), min(minY, y)
				maxX, maxY = max(maxX, x), max(maxY, y)
			}
		}
	}
	return minX, minY, maxX, maxY
}

// fade scales a color by opacity, keeping it premultiplied.
func fade(c color.RGBA, opacity float64) color.RGBA {
	if opacity >= 1 {
		return c
	}
	if opacity <= 0 {
		return color.RGBA{}
	}
	return color.RGBA{
		R: uint8(float64(c.R) * opacity),
		G: uint8(float64(c.G) * opacity),
		B: uint8(float64(c.B) * opacity),
		A: uint8(float64(c.A) * opacity),
	}
}
