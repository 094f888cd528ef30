// Package scene ties one map session together: projection, country shapes,
// the shared tooltip and the connection cycle. A session starts with Mount
// and ends with Unmount; everything it created is released on the way out.
package scene

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sudorandom/route-map/pkg/animation"
	"github.com/sudorandom/route-map/pkg/boundary"
	"github.com/sudorandom/route-map/pkg/connections"
	"github.com/sudorandom/route-map/pkg/geo"
	"github.com/sudorandom/route-map/pkg/schedule"
	"github.com/sudorandom/route-map/pkg/shapes"
)

var (
	ErrInvalidSurface = errors.New("invalid drawing surface")
	ErrNotMounted     = errors.New("scene is not mounted")
)

// newTooltip is swapped in tests to observe the tooltip of a failed mount.
var newTooltip = shapes.NewTooltip

type Stats struct {
	Render    shapes.RenderStats
	Animation animation.Stats
}

type Scene struct {
	conns []connections.Connection
	opts  Options
	log   *logrus.Entry

	mounted    bool
	width      int
	height     int
	generation int
	features   []boundary.Feature
	sched      *schedule.Scheduler
	proj       *geo.Projector
	tooltip    *shapes.Tooltip
	layer      *shapes.Layer
	anim       *animation.Animator
	render     shapes.RenderStats
}

func New(conns []connections.Connection, opts Options, log *logrus.Entry) (*Scene, error) {
	if len(conns) == 0 {
		return nil, animation.ErrNoConnections
	}
	if err := opts.Timing.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Scene{conns: conns, opts: opts, log: log}, nil
}

func (s *Scene) Mounted() bool { return s.mounted }

func (s *Scene) Size() (int, int) { return s.width, s.height }

// Generation counts shape rebuilds. Painters cache per generation.
func (s *Scene) Generation() int { return s.generation }

func (s *Scene) Projector() *geo.Projector { return s.proj }

func (s *Scene) Stats() Stats {
	st := Stats{Render: s.render}
	if s.anim != nil {
		st.Animation = s.anim.Stats()
	}
	return st
}

// Mount starts a session on a width x height surface and runs the first
// tick at now. A scene that is already mounted is torn down first, so there
// is never more than one tick cycle. On any error nothing of the new session
// survives.
func (s *Scene) Mount(now time.Time, features []boundary.Feature, width, height int) (err error) {
	if s.mounted {
		s.Unmount()
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSurface, width, height)
	}

	tooltip := newTooltip()
	defer func() {
		if err != nil {
			tooltip.Release()
		}
	}()

	proj, err := s.newProjector(width, height)
	if err != nil {
		return err
	}
	sched := schedule.New(now)
	anim, err := animation.New(s.conns, s.opts.Timing, sched, s.log.WithField("component", "animation"))
	if err != nil {
		return fmt.Errorf("start animation: %w", err)
	}

	layer := shapes.NewLayer(s.opts.shapeStyle(), tooltip, s.onHover)
	s.render = layer.Render(features, proj, s.opts.Exclude)
	anim.SetProjector(proj)
	anim.Start(now)
	sched.Advance(now)

	s.mounted = true
	s.width, s.height = width, height
	s.features = features
	s.sched, s.proj, s.tooltip, s.layer, s.anim = sched, proj, tooltip, layer, anim
	s.generation++

	s.log.WithFields(logrus.Fields{
		"width":    width,
		"height":   height,
		"scale":    proj.Config().Scale,
		"shapes":   s.render.Rendered,
		"excluded": s.render.Excluded,
		"dropped":  s.render.OutOfDomain,
	}).Info("scene mounted")
	return nil
}

func (s *Scene) newProjector(width, height int) (*geo.Projector, error) {
	cfg := geo.NewProjectionConfig(width, height, s.opts.Center, s.opts.ScaleOffset)
	proj, err := geo.NewProjector(cfg)
	if err != nil {
		return nil, fmt.Errorf("build projection: %w", err)
	}
	return proj, nil
}

// Resize rebuilds the projection and every shape for a new surface size.
// The connection cycle keeps running; lines already on screen are
// reprojected on the next frame.
func (s *Scene) Resize(width, height int) error {
	if !s.mounted {
		return ErrNotMounted
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSurface, width, height)
	}
	proj, err := s.newProjector(width, height)
	if err != nil {
		return err
	}
	s.proj = proj
	s.width, s.height = width, height
	s.render = s.layer.Render(s.features, proj, s.opts.Exclude)
	s.anim.SetProjector(proj)
	s.generation++

	s.log.WithFields(logrus.Fields{
		"width":  width,
		"height": height,
		"scale":  proj.Config().Scale,
		"shapes": s.render.Rendered,
	}).Debug("scene resized")
	return nil
}

// SetData replaces the boundary features by tearing the session down and
// mounting a fresh one at the same size.
func (s *Scene) SetData(now time.Time, features []boundary.Feature) error {
	width, height := s.opts.Width, s.opts.Height
	if s.mounted {
		width, height = s.width, s.height
	}
	s.Unmount()
	return s.Mount(now, features, width, height)
}

// Unmount stops the tick cycle before anything else, then drops in-flight
// lines and labels, releases the tooltip and clears the shapes. Calling it
// again is a no-op.
func (s *Scene) Unmount() {
	if !s.mounted {
		return
	}
	s.anim.Stop()
	if n := s.sched.CancelAll(); n > 0 {
		s.log.WithField("tasks", n).Warn("tasks left after stopping animation")
	}
	s.tooltip.Release()
	s.layer.Clear()

	s.mounted = false
	s.sched, s.proj, s.tooltip, s.layer, s.anim = nil, nil, nil, nil, nil
	s.features = nil
	s.log.Info("scene unmounted")
}

// Advance runs every scheduled step due by now and returns how many ran.
func (s *Scene) Advance(now time.Time) int {
	if !s.mounted {
		return 0
	}
	return s.sched.Advance(now)
}

func (s *Scene) PointerMove(x, y float64) {
	if !s.mounted {
		return
	}
	s.layer.PointerMove(geo.ScreenPoint{X: x, Y: y})
}

func (s *Scene) PointerLeave() {
	if !s.mounted {
		return
	}
	s.layer.PointerLeave()
}

func (s *Scene) onHover(e shapes.HoverEvent) {
	if e.Kind != shapes.HoverMove {
		s.log.WithFields(logrus.Fields{"id": e.ID, "name": e.Name}).Debugf("hover %s", e.Kind)
	}
	if s.opts.OnHover != nil {
		s.opts.OnHover(e)
	}
}

// Frame builds the view model for now. It never changes the scene.
func (s *Scene) Frame(now time.Time) Frame {
	if !s.mounted {
		return Frame{Hovered: -1, Palette: s.opts.Palette}
	}
	f := Frame{
		Mounted:    true,
		Width:      s.width,
		Height:     s.height,
		Generation: s.generation,
		Cursor:     s.anim.Cursor(),
		Palette:    s.opts.Palette,
		Hovered:    s.layer.Hovered(),
		Tooltip:    s.tooltip.State(),
	}

	shapeList := s.layer.Shapes()
	f.Shapes = make([]ShapeView, len(shapeList))
	for i, sh := range shapeList {
		f.Shapes[i] = ShapeView{ID: sh.ID, Name: sh.Name, Polygons: sh.Polygons, Fill: s.layer.Fill(i)}
	}

	paths, labels := s.anim.View(now)
	for _, p := range paths {
		segs := geo.Truncate(geo.ProjectLine(s.proj, p.Line), p.Progress)
		if len(segs) == 0 || p.Opacity <= 0 {
			continue
		}
		f.Paths = append(f.Paths, PathView{
			Index:    p.Index,
			Route:    p.Conn.String(),
			Segments: segs,
			Progress: p.Progress,
			Opacity:  p.Opacity,
		})
	}
	for _, l := range labels {
		anchor, ok := s.proj.Project(l.At)
		if !ok || l.Opacity <= 0 {
			continue
		}
		f.Labels = append(f.Labels, LabelView{
			Text:    l.Text,
			Anchor:  anchor,
			At:      anchor.Add(s.opts.LabelOffset),
			End:     l.End,
			Opacity: l.Opacity,
		})
	}
	return f
}
