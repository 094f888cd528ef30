package export

import (
	"fmt"
	"html"
	"image/color"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/sudorandom/route-map/pkg/geo"
	"github.com/sudorandom/route-map/pkg/scene"
)

// errWriter keeps the first write error; svgo itself ignores them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// RenderSVG writes f as an SVG document. Countries are paths with class
// "country", connections paths with class "connection".
func RenderSVG(w io.Writer, f scene.Frame) error {
	if !f.Mounted || f.Width <= 0 || f.Height <= 0 {
		return scene.ErrNotMounted
	}
	ew := &errWriter{w: w}
	pal := f.Palette

	canvas := svg.New(ew)
	canvas.Start(f.Width, f.Height)
	canvas.Rect(0, 0, f.Width, f.Height, "fill:"+hex(pal.Background))

	canvas.Gid("countries")
	for _, s := range f.Shapes {
		canvas.Path(shapeData(s.Polygons),
			`class="country"`,
			fmt.Sprintf(`id=%q`, html.EscapeString(s.ID)),
			fmt.Sprintf(`data-name="%s"`, html.EscapeString(s.Name)),
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%g;fill-rule:evenodd", hex(s.Fill), hex(pal.LandStroke), pal.LandStrokeWidth))
	}
	canvas.Gend()

	canvas.Gid("connections")
	for _, p := range f.Paths {
		var d strings.Builder
		for _, seg := range p.Segments {
			writePath(&d, seg, false)
		}
		canvas.Path(d.String(),
			`class="connection"`,
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:%g;stroke-linecap:round;stroke-opacity:%.3f", hex(pal.Connection), pal.ConnectionWidth, p.Opacity))
	}
	canvas.Gend()

	labelStyle := fmt.Sprintf("text-anchor:middle;font-family:sans-serif;font-size:%gpx;fill:%s", pal.LabelSize, hex(pal.Label))
	for _, l := range f.Labels {
		canvas.Text(int(l.At.X), int(l.At.Y), l.Text, `class="label"`, fmt.Sprintf("%s;fill-opacity:%.3f", labelStyle, l.Opacity))
	}

	if t := f.Tooltip; t.Visible {
		size := int(pal.LabelSize)
		width := len(t.Text)*size*6/10 + 8
		x, y := int(t.At.X), int(t.At.Y)-size-8
		canvas.Rect(x, y, width, size+8, `class="tooltip"`,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", hex(pal.TooltipBg), hex(pal.TooltipBorder)))
		canvas.Text(x+4, y+size+2, t.Text,
			fmt.Sprintf("font-family:sans-serif;font-size:%dpx;fill:%s", size, hex(pal.TooltipText)))
	}

	canvas.End()
	return ew.err
}

func shapeData(polys [][][]geo.ScreenPoint) string {
	var d strings.Builder
	for _, poly := range polys {
		for _, ring := range poly {
			writePath(&d, ring, true)
		}
	}
	return d.String()
}

func writePath(d *strings.Builder, pts []geo.ScreenPoint, closed bool) {
	for i, p := range pts {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		if d.Len() > 0 {
			d.WriteByte(' ')
		}
		fmt.Fprintf(d, "%s%.2f,%.2f", cmd, p.X, p.Y)
	}
	if closed && len(pts) > 0 {
		d.WriteString(" Z")
	}
}

func hex(c color.RGBA) string {
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return "none"
	}
	return cc.Hex()
}
