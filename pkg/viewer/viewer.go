// Package viewer draws a scene in an ebiten window and feeds pointer input
// back into it.
package viewer

import (
	"bytes"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"
	"github.com/sudorandom/route-map/pkg/scene"
	"golang.org/x/image/font/gofont/goregular"
)

type Options struct {
	// CaptureDir, when set, receives a PNG of the window on every tick.
	CaptureDir string
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type highlight struct {
	img    *ebiten.Image
	origin image.Point
}

type Viewer struct {
	scene *scene.Scene
	opts  Options
	log   *logrus.Entry

	fontSource *text.GoTextFaceSource

	bgImage    *ebiten.Image
	generation int
	highlights map[int]highlight

	outsideW, outsideH int
	lastTicks          int
	captureNext        bool
}

// New wraps a mounted scene.
func New(sc *scene.Scene, opts Options, log *logrus.Entry) *Viewer {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.WithError(err).Warn("font unavailable, labels disabled")
	}
	w, h := sc.Size()
	return &Viewer{
		scene:      sc,
		opts:       opts,
		log:        log,
		fontSource: src,
		highlights: make(map[int]highlight),
		outsideW:   w,
		outsideH:   h,
	}
}

func (v *Viewer) Update() error {
	now := v.opts.Clock()

	if w, h := v.scene.Size(); v.outsideW != w || v.outsideH != h {
		if err := v.scene.Resize(v.outsideW, v.outsideH); err != nil {
			v.log.WithError(err).Debug("resize ignored")
		}
	}

	x, y := ebiten.CursorPosition()
	if w, h := v.scene.Size(); x < 0 || y < 0 || x >= w || y >= h {
		v.scene.PointerLeave()
	} else {
		v.scene.PointerMove(float64(x), float64(y))
	}

	v.scene.Advance(now)
	if ticks := v.scene.Stats().Animation.Ticks; ticks != v.lastTicks {
		v.lastTicks = ticks
		v.captureNext = v.opts.CaptureDir != ""
	}
	return nil
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	now := v.opts.Clock()
	f := v.scene.Frame(now)
	if !f.Mounted {
		screen.Fill(f.Palette.Background)
		return
	}

	if v.bgImage == nil || f.Generation != v.generation {
		v.rebuild(f)
	}
	screen.DrawImage(v.bgImage, nil)

	if f.Hovered >= 0 && f.Hovered < len(f.Shapes) {
		h, ok := v.highlights[f.Hovered]
		if !ok {
			img, origin := bakeHighlight(f.Shapes[f.Hovered], f.Palette.Hover, f.Palette.LandStroke, f.Palette.LandStrokeWidth)
			h = highlight{img: ebiten.NewImageFromImage(img), origin: origin}
			v.highlights[f.Hovered] = h
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(h.origin.X), float64(h.origin.Y))
		screen.DrawImage(h.img, op)
	}

	v.drawPaths(screen, f)
	v.drawLabels(screen, f)
	v.drawTooltip(screen, f)

	if v.captureNext {
		v.captureNext = false
		v.captureFrame(screen, f.Cursor, now)
	}
}

func (v *Viewer) rebuild(f scene.Frame) {
	if v.bgImage != nil {
		v.bgImage.Deallocate()
	}
	for _, h := range v.highlights {
		h.img.Deallocate()
	}
	v.highlights = make(map[int]highlight)
	v.bgImage = ebiten.NewImageFromImage(bakeBackground(f))
	v.generation = f.Generation
	v.log.WithFields(logrus.Fields{
		"generation": f.Generation,
		"shapes":     len(f.Shapes),
	}).Debug("background rebuilt")
}

func (v *Viewer) drawPaths(screen *ebiten.Image, f scene.Frame) {
	width := float32(f.Palette.ConnectionWidth)
	for _, p := range f.Paths {
		c := fade(f.Palette.Connection, p.Opacity)
		for _, seg := range p.Segments {
			for i := 1; i < len(seg); i++ {
				vector.StrokeLine(screen,
					float32(seg[i-1].X), float32(seg[i-1].Y),
					float32(seg[i].X), float32(seg[i].Y),
					width, c, true)
			}
		}
	}
}

func (v *Viewer) drawLabels(screen *ebiten.Image, f scene.Frame) {
	if v.fontSource == nil {
		return
	}
	face := &text.GoTextFace{Source: v.fontSource, Size: f.Palette.LabelSize}
	for _, l := range f.Labels {
		op := &text.DrawOptions{}
		op.GeoM.Translate(l.At.X, l.At.Y-f.Palette.LabelSize)
		op.PrimaryAlign = text.AlignCenter
		op.ColorScale.ScaleWithColor(f.Palette.Label)
		op.ColorScale.ScaleAlpha(float32(l.Opacity))
		text.Draw(screen, l.Text, face, op)
	}
}

func (v *Viewer) drawTooltip(screen *ebiten.Image, f scene.Frame) {
	if !f.Tooltip.Visible || v.fontSource == nil {
		return
	}
	size := f.Palette.LabelSize
	face := &text.GoTextFace{Source: v.fontSource, Size: size}
	tw, th := text.Measure(f.Tooltip.Text, face, size*1.2)
	pad := 4.0
	x, y := f.Tooltip.At.X, f.Tooltip.At.Y-th-2*pad
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(tw+2*pad), float32(th+2*pad), f.Palette.TooltipBg, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(tw+2*pad), float32(th+2*pad), 1, f.Palette.TooltipBorder, false)

	op := &text.DrawOptions{}
	op.GeoM.Translate(x+pad, y+pad)
	op.ColorScale.ScaleWithColor(f.Palette.TooltipText)
	text.Draw(screen, f.Tooltip.Text, face, op)
}

// Layout follows the window size; Update turns a change into a scene resize.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		v.outsideW, v.outsideH = outsideWidth, outsideHeight
	}
	return v.outsideW, v.outsideH
}
