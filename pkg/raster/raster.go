// Package raster paints projected shapes straight into an RGBA buffer. It is
// used to bake the static map once per rebuild instead of issuing vector
// draw calls every frame.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	"github.com/sudorandom/route-map/pkg/geo"
)

func Clear(img *image.RGBA, c color.RGBA) {
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
}

// FillPolygon fills rings with the even-odd rule, one scanline at a time.
// Later rings punch holes into earlier ones.
func FillPolygon(img *image.RGBA, rings [][]geo.ScreenPoint, c color.RGBA) {
	if len(rings) == 0 {
		return
	}
	b := img.Bounds()
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, ring := range rings {
		for _, p := range ring {
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
		}
	}
	if math.IsInf(minY, 0) {
		return
	}

	var nodes []int
	for y := int(minY); y <= int(maxY); y++ {
		if y < b.Min.Y || y >= b.Max.Y {
			continue
		}
		nodes = nodes[:0]
		fy := float64(y)
		for _, ring := range rings {
			for i := 0; i < len(ring); i++ {
				j := (i + 1) % len(ring)
				if (ring[i].Y < fy && ring[j].Y >= fy) || (ring[j].Y < fy && ring[i].Y >= fy) {
					nodeX := ring[i].X + (fy-ring[i].Y)/(ring[j].Y-ring[i].Y)*(ring[j].X-ring[i].X)
					nodes = append(nodes, int(nodeX))
				}
			}
		}
		sort.Ints(nodes)
		for i := 0; i < len(nodes)-1; i += 2 {
			xs, xe := nodes[i], nodes[i+1]
			if xs < b.Min.X {
				xs = b.Min.X
			}
			if xe >= b.Max.X {
				xe = b.Max.X - 1
			}
			for x := xs; x < xe; x++ {
				set(img, x, y, c)
			}
		}
	}
}

// StrokeRing outlines a ring, closing it back to its first point.
func StrokeRing(img *image.RGBA, ring []geo.ScreenPoint, c color.RGBA) {
	for i := range ring {
		a, b := ring[i], ring[(i+1)%len(ring)]
		Line(img, int(a.X), int(a.Y), int(b.X), int(b.Y), c)
	}
}

// Line draws a one pixel Bresenham line, clipped to the image.
func Line(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}
	err := dx - dy
	for {
		set(img, x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func set(img *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}.In(img.Bounds())) {
		return
	}
	off := img.PixOffset(x, y)
	img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = c.R, c.G, c.B, c.A
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
