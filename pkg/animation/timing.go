package animation

import (
	"fmt"
	"strings"
	"time"
)

// Easing maps linear progress in [0,1] onto the visible line length.
type Easing int

const (
	Linear Easing = iota
	EaseOut
)

func ParseEasing(s string) (Easing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return Linear, nil
	case "ease-out", "easeout", "ease_out":
		return EaseOut, nil
	}
	return Linear, fmt.Errorf("unknown easing %q", s)
}

func (e Easing) String() string {
	switch e {
	case EaseOut:
		return "ease-out"
	default:
		return "linear"
	}
}

// Apply clamps t to [0,1] and eases it. Both curves are monotonic and fix
// the endpoints.
func (e Easing) Apply(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	switch e {
	case EaseOut:
		u := 1 - t
		return 1 - u*u*u
	default:
		return t
	}
}

type Timing struct {
	TickPeriod     time.Duration
	DrawDuration   time.Duration
	FadeDuration   time.Duration
	EndLabelLinger time.Duration
	Easing         Easing
}

func DefaultTiming() Timing {
	return Timing{
		TickPeriod:     5 * time.Second,
		DrawDuration:   5 * time.Second,
		FadeDuration:   time.Second,
		EndLabelLinger: 1200 * time.Millisecond,
		Easing:         Linear,
	}
}

func (t Timing) Validate() error {
	if t.TickPeriod <= 0 {
		return fmt.Errorf("tick period must be positive, got %s", t.TickPeriod)
	}
	if t.DrawDuration < 0 || t.FadeDuration < 0 || t.EndLabelLinger < 0 {
		return fmt.Errorf("durations must not be negative (draw %s, fade %s, linger %s)",
			t.DrawDuration, t.FadeDuration, t.EndLabelLinger)
	}
	return nil
}

// Overlaps reports whether a new path can start while the previous one is
// still on screen.
func (t Timing) Overlaps() bool {
	return t.TickPeriod < t.DrawDuration+t.FadeDuration
}

// fraction is how far now is into the window [from, from+d].
func fraction(now, from time.Time, d time.Duration) float64 {
	if d <= 0 {
		if now.Before(from) {
			return 0
		}
		return 1
	}
	f := float64(now.Sub(from)) / float64(d)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
