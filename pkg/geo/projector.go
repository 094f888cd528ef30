package geo

import (
	"errors"
	"fmt"
	"math"
)

// MaxLatitude is the Mercator cut-off; points beyond it have no usable
// screen position.
const MaxLatitude = 85.0511287798

var ErrInvalidViewport = errors.New("invalid viewport")

// ProjectionConfig drives every coordinate transform of a render session.
type ProjectionConfig struct {
	Width, Height int
	Scale         float64
	Center        GeoPoint
}

// NewProjectionConfig derives the scale from the viewport width the same
// way for every session: width/2π minus a fixed offset.
func NewProjectionConfig(width, height int, center GeoPoint, scaleOffset float64) ProjectionConfig {
	return ProjectionConfig{
		Width:  width,
		Height: height,
		Scale:  float64(width)/(2*math.Pi) - scaleOffset,
		Center: center,
	}
}

// Projector is an immutable Mercator projection. A viewport change always
// produces a new Projector.
type Projector struct {
	cfg    ProjectionConfig
	cx, cy float64
}

func NewProjector(cfg ProjectionConfig) (*Projector, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidViewport, cfg.Width, cfg.Height)
	}
	if !(cfg.Scale > 0) || math.IsInf(cfg.Scale, 0) {
		return nil, fmt.Errorf("%w: scale %.3f", ErrInvalidViewport, cfg.Scale)
	}
	if !cfg.Center.Valid() || math.Abs(cfg.Center.Lat) > MaxLatitude {
		return nil, fmt.Errorf("%w: center %v outside projection domain", ErrInvalidViewport, cfg.Center)
	}
	cx, cy := mercator(cfg.Center)
	return &Projector{cfg: cfg, cx: cx, cy: cy}, nil
}

func (p *Projector) Config() ProjectionConfig { return p.cfg }

// Project maps a point to the screen. The second result is false when the
// point falls outside the projection domain; callers skip whatever depends
// on it.
func (p *Projector) Project(pt GeoPoint) (ScreenPoint, bool) {
	if p == nil || !pt.Valid() || math.Abs(pt.Lat) > MaxLatitude {
		return ScreenPoint{}, false
	}
	x, y := mercator(pt)
	sx := float64(p.cfg.Width)/2 + p.cfg.Scale*(x-p.cx)
	sy := float64(p.cfg.Height)/2 - p.cfg.Scale*(y-p.cy)
	if math.IsNaN(sx) || math.IsNaN(sy) || math.IsInf(sx, 0) || math.IsInf(sy, 0) {
		return ScreenPoint{}, false
	}
	return ScreenPoint{X: sx, Y: sy}, true
}

func mercator(pt GeoPoint) (x, y float64) {
	lngRad, latRad := pt.Lon*math.Pi/180, pt.Lat*math.Pi/180
	return lngRad, math.Log(math.Tan(math.Pi/4 + latRad/2))
}
