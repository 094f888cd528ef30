// Package animation runs the repeating connection cycle: each tick picks the
// next connection, labels its start, grows a line toward its end and later
// fades it out. All timing goes through a schedule.Scheduler so the cycle
// can be stepped deterministically and torn down without stray callbacks.
package animation

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sudorandom/route-map/pkg/connections"
	"github.com/sudorandom/route-map/pkg/geo"
	"github.com/sudorandom/route-map/pkg/schedule"
)

var ErrNoConnections = errors.New("animation needs at least one connection")

type activePath struct {
	id       uint64
	index    int
	conn     connections.Connection
	line     []geo.GeoPoint
	started  time.Time
	fadeAt   time.Time
	removeAt time.Time
	fading   bool
}

type activeLabel struct {
	id       uint64
	text     string
	at       geo.GeoPoint
	end      bool
	fadeAt   time.Time
	removeAt time.Time
	expires  bool
	token    schedule.Token
}

// PathView is the visual state of one line at an instant.
type PathView struct {
	Index    int
	Conn     connections.Connection
	Line     []geo.GeoPoint
	Progress float64
	Opacity  float64
}

type LabelView struct {
	Text    string
	At      geo.GeoPoint
	End     bool
	Opacity float64
}

type Stats struct {
	Ticks         int
	PathsStarted  int
	PathsRemoved  int
	LabelsShown   int
	LabelsSkipped int
}

type Animator struct {
	conns  []connections.Connection
	timing Timing
	sched  *schedule.Scheduler
	proj   *geo.Projector
	log    *logrus.Entry

	cursor  int
	tick    schedule.Token
	pending map[schedule.Token]struct{}
	paths   []*activePath
	labels  []*activeLabel
	nextID  uint64
	stats   Stats
	arcStep float64
}

// New copies conns; the animator never mutates its input.
func New(conns []connections.Connection, timing Timing, sched *schedule.Scheduler, log *logrus.Entry) (*Animator, error) {
	if len(conns) == 0 {
		return nil, ErrNoConnections
	}
	if err := timing.Validate(); err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, errors.New("animation needs a scheduler")
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	cp := make([]connections.Connection, len(conns))
	copy(cp, conns)
	if timing.Overlaps() {
		log.WithFields(logrus.Fields{
			"tick_period": timing.TickPeriod,
			"draw":        timing.DrawDuration,
			"fade":        timing.FadeDuration,
		}).Debug("tick period is shorter than draw+fade, consecutive paths will overlap")
	}
	return &Animator{
		conns:   cp,
		timing:  timing,
		sched:   sched,
		log:     log,
		pending: make(map[schedule.Token]struct{}),
		arcStep: geo.DefaultArcStep,
	}, nil
}

// SetProjector changes the projection used to decide whether a label can be
// placed. Paths already on screen are unaffected.
func (a *Animator) SetProjector(p *geo.Projector) { a.proj = p }

func (a *Animator) Timing() Timing { return a.timing }

// Cursor is the index of the connection the next tick will draw.
func (a *Animator) Cursor() int { return a.cursor }

func (a *Animator) Stats() Stats { return a.stats }

func (a *Animator) Running() bool { return a.tick != 0 }

// Start registers the repeating tick. The first tick fires at now. Calling
// Start on a running animator does nothing.
func (a *Animator) Start(now time.Time) {
	if a.tick != 0 {
		return
	}
	a.tick = a.sched.Every(now, a.timing.TickPeriod, a.onTick)
	a.log.WithField("connections", len(a.conns)).Info("connection cycle started")
}

// Stop cancels the tick and every completion and removal still pending, then
// drops all paths and labels. No callback of this animator runs afterwards.
func (a *Animator) Stop() {
	if a.tick != 0 {
		a.sched.Cancel(a.tick)
		a.tick = 0
	}
	cancelled := 0
	for tok := range a.pending {
		if a.sched.Cancel(tok) {
			cancelled++
		}
	}
	a.pending = make(map[schedule.Token]struct{})
	a.paths = nil
	a.labels = nil
	a.log.WithField("cancelled", cancelled).Info("connection cycle stopped")
}

func (a *Animator) at(t time.Time, fn schedule.Func) schedule.Token {
	var tok schedule.Token
	tok = a.sched.At(t, func(due time.Time) {
		delete(a.pending, tok)
		fn(due)
	})
	a.pending[tok] = struct{}{}
	return tok
}

func (a *Animator) cancel(tok schedule.Token) {
	if tok == 0 {
		return
	}
	delete(a.pending, tok)
	a.sched.Cancel(tok)
}

func (a *Animator) onTick(now time.Time) {
	a.stats.Ticks++

	if a.cursor >= len(a.conns) || a.cursor < 0 {
		a.cursor = 0
	}
	index := a.cursor
	conn := a.conns[index]

	a.clearLabels()
	if conn.StartName != "" {
		a.showLabel(conn.StartName, conn.Start, false, now)
	}

	a.nextID++
	p := &activePath{
		id:      a.nextID,
		index:   index,
		conn:    conn,
		line:    geo.GreatCircle(conn.Start, conn.End, a.arcStep),
		started: now,
	}
	a.paths = append(a.paths, p)
	a.stats.PathsStarted++
	a.at(now.Add(a.timing.DrawDuration), func(due time.Time) { a.complete(p.id, due) })

	a.cursor = (a.cursor + 1) % len(a.conns)

	a.log.WithFields(logrus.Fields{
		"index": index,
		"route": conn.String(),
	}).Debug("drawing connection")
}

func (a *Animator) complete(id uint64, now time.Time) {
	p := a.findPath(id)
	if p == nil {
		return
	}
	p.fading = true
	p.fadeAt = now
	p.removeAt = now.Add(a.timing.FadeDuration)
	a.at(p.removeAt, func(time.Time) { a.removePath(id) })

	if p.conn.EndName != "" {
		if l := a.showLabel(p.conn.EndName, p.conn.End, true, now); l != nil {
			l.expires = true
			l.removeAt = now.Add(a.timing.EndLabelLinger)
			l.fadeAt = l.removeAt.Add(-a.timing.FadeDuration)
			if l.fadeAt.Before(now) {
				l.fadeAt = now
			}
			lid := l.id
			l.token = a.at(l.removeAt, func(time.Time) { a.removeLabel(lid) })
		}
	}
}

func (a *Animator) findPath(id uint64) *activePath {
	for _, p := range a.paths {
		if p.id == id {
			return p
		}
	}
	return nil
}

// removePath drops the path if it is still active and reports whether it
// did.
func (a *Animator) removePath(id uint64) bool {
	for i, p := range a.paths {
		if p.id == id {
			a.paths = append(a.paths[:i], a.paths[i+1:]...)
			a.stats.PathsRemoved++
			a.log.WithField("route", p.conn.String()).Debug("connection removed")
			return true
		}
	}
	return false
}

func (a *Animator) showLabel(text string, at geo.GeoPoint, end bool, now time.Time) *activeLabel {
	if _, ok := a.proj.Project(at); !ok {
		a.stats.LabelsSkipped++
		a.log.WithFields(logrus.Fields{
			"label": text,
			"lon":   at.Lon,
			"lat":   at.Lat,
		}).Debug("label outside projection, skipped")
		return nil
	}
	a.nextID++
	l := &activeLabel{id: a.nextID, text: text, at: at, end: end}
	a.labels = append(a.labels, l)
	a.stats.LabelsShown++
	return l
}

func (a *Animator) removeLabel(id uint64) {
	for i, l := range a.labels {
		if l.id == id {
			a.labels = append(a.labels[:i], a.labels[i+1:]...)
			return
		}
	}
}

func (a *Animator) clearLabels() {
	for _, l := range a.labels {
		a.cancel(l.token)
	}
	a.labels = nil
}

// View is the visual state at now. It does not change the animator.
func (a *Animator) View(now time.Time) ([]PathView, []LabelView) {
	paths := make([]PathView, 0, len(a.paths))
	for _, p := range a.paths {
		opacity := 1.0
		if p.fading {
			opacity = 1 - fraction(now, p.fadeAt, p.removeAt.Sub(p.fadeAt))
		}
		paths = append(paths, PathView{
			Index:    p.index,
			Conn:     p.conn,
			Line:     p.line,
			Progress: a.timing.Easing.Apply(fraction(now, p.started, a.timing.DrawDuration)),
			Opacity:  opacity,
		})
	}
	labels := make([]LabelView, 0, len(a.labels))
	for _, l := range a.labels {
		opacity := 1.0
		if l.expires {
			opacity = 1 - fraction(now, l.fadeAt, l.removeAt.Sub(l.fadeAt))
		}
		labels = append(labels, LabelView{Text: l.text, At: l.at, End: l.end, Opacity: opacity})
	}
	return paths, labels
}
