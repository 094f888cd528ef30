// Package export renders scene frames to files: PNG snapshots through gg and
// vector maps through svgo.
package export

import (
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/sudorandom/route-map/pkg/geo"
	"github.com/sudorandom/route-map/pkg/scene"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var parseFont = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

func fontFace(size float64) (font.Face, error) {
	f, err := parseFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// RenderPNG paints f and writes it as a PNG.
func RenderPNG(w io.Writer, f scene.Frame) error {
	if !f.Mounted || f.Width <= 0 || f.Height <= 0 {
		return scene.ErrNotMounted
	}
	face, err := fontFace(f.Palette.LabelSize)
	if err != nil {
		return err
	}
	defer face.Close()

	dc := gg.NewContext(f.Width, f.Height)
	dc.SetColor(f.Palette.Background)
	dc.Clear()
	dc.SetFontFace(face)

	dc.SetFillRuleEvenOdd()
	for _, s := range f.Shapes {
		for _, poly := range s.Polygons {
			for _, ring := range poly {
				tracePath(dc, ring, true)
			}
		}
		dc.SetColor(s.Fill)
		dc.FillPreserve()
		if f.Palette.LandStrokeWidth > 0 {
			dc.SetColor(f.Palette.LandStroke)
			dc.SetLineWidth(f.Palette.LandStrokeWidth)
			dc.Stroke()
		} else {
			dc.ClearPath()
		}
	}

	dc.SetLineWidth(f.Palette.ConnectionWidth)
	dc.SetLineCapRound()
	for _, p := range f.Paths {
		for _, seg := range p.Segments {
			tracePath(dc, seg, false)
		}
		dc.SetColor(withOpacity(f.Palette.Connection, p.Opacity))
		dc.Stroke()
	}

	for _, l := range f.Labels {
		dc.SetColor(withOpacity(f.Palette.Label, l.Opacity))
		dc.DrawStringAnchored(l.Text, l.At.X, l.At.Y, 0.5, 0)
	}

	if t := f.Tooltip; t.Visible {
		tw, th := dc.MeasureString(t.Text)
		pad := 4.0
		x, y := t.At.X, t.At.Y-th-2*pad
		dc.DrawRectangle(x, y, tw+2*pad, th+2*pad)
		dc.SetColor(f.Palette.TooltipBg)
		dc.FillPreserve()
		dc.SetColor(f.Palette.TooltipBorder)
		dc.SetLineWidth(1)
		dc.Stroke()
		dc.SetColor(f.Palette.TooltipText)
		dc.DrawString(t.Text, x+pad, y+pad+th)
	}

	return dc.EncodePNG(w)
}

func tracePath(dc *gg.Context, pts []geo.ScreenPoint, closed bool) {
	if len(pts) == 0 {
		return
	}
	dc.NewSubPath()
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	if closed {
		dc.ClosePath()
	}
}

func withOpacity(c color.RGBA, opacity float64) color.NRGBA {
	if opacity > 1 {
		opacity = 1
	}
	if opacity < 0 {
		opacity = 0
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(float64(c.A) * opacity)}
}
