package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/sudorandom/route-map/pkg/geo"
)

var (
	black = color.RGBA{0, 0, 0, 255}
	red   = color.RGBA{255, 0, 0, 255}
)

func box(x0, y0, x1, y1 float64) []geo.ScreenPoint {
	return []geo.ScreenPoint{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func TestFillPolygonWithHole(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	Clear(img, black)
	FillPolygon(img, [][]geo.ScreenPoint{box(5, 5, 35, 35), box(15, 15, 25, 25)}, red)

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{1, 1, black},
		{10, 10, red},
		{30, 20, red},
		{20, 20, black},
		{38, 38, black},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v; want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestFillPolygonClipsToBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	FillPolygon(img, [][]geo.ScreenPoint{box(-50, -50, 50, 50)}, red)
	if got := img.RGBAAt(5, 5); got != red {
		t.Errorf("pixel (5,5) = %v; want %v", got, red)
	}
	FillPolygon(img, nil, black)
	FillPolygon(img, [][]geo.ScreenPoint{{}}, black)
}

func TestLine(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	Line(img, 0, 0, 9, 9, red)
	for i := 0; i < 10; i++ {
		if got := img.RGBAAt(i, i); got != red {
			t.Errorf("pixel (%d,%d) = %v; want %v", i, i, got, red)
		}
	}
	if got := img.RGBAAt(9, 0); got == red {
		t.Error("pixel (9,0) painted")
	}
	// Off-image endpoints are clipped, not a panic.
	Line(img, -5, 5, 15, 5, red)
	if got := img.RGBAAt(0, 5); got != red {
		t.Errorf("pixel (0,5) = %v; want %v", got, red)
	}
}

func TestStrokeRingCloses(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	StrokeRing(img, box(1, 1, 8, 8), red)
	for _, p := range []image.Point{{1, 1}, {8, 1}, {8, 8}, {1, 8}, {1, 5}, {5, 8}} {
		if got := img.RGBAAt(p.X, p.Y); got != red {
			t.Errorf("pixel %v = %v; want %v", p, got, red)
		}
	}
	if got := img.RGBAAt(5, 5); got == red {
		t.Error("ring interior painted")
	}
}
