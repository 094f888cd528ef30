package animation

import (
	"math"
	"testing"
	"time"
)

func TestEasing(t *testing.T) {
	tests := []struct {
		e    Easing
		in   float64
		want float64
	}{
		{Linear, -1, 0},
		{Linear, 0, 0},
		{Linear, 0.25, 0.25},
		{Linear, 1, 1},
		{Linear, 2, 1},
		{EaseOut, 0, 0},
		{EaseOut, 0.5, 0.875},
		{EaseOut, 1, 1},
	}
	for _, tt := range tests {
		if got := tt.e.Apply(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s.Apply(%v) = %v; want %v", tt.e, tt.in, got, tt.want)
		}
	}
}

func TestEaseOutIsMonotonic(t *testing.T) {
	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := EaseOut.Apply(float64(i) / 100)
		if v < prev {
			t.Fatalf("EaseOut decreases at %d: %v < %v", i, v, prev)
		}
		prev = v
	}
}

func TestParseEasing(t *testing.T) {
	tests := []struct {
		in      string
		want    Easing
		wantErr bool
	}{
		{"", Linear, false},
		{"linear", Linear, false},
		{"Ease-Out", EaseOut, false},
		{"ease_out", EaseOut, false},
		{"bounce", Linear, true},
	}
	for _, tt := range tests {
		got, err := ParseEasing(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseEasing(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestTimingOverlaps(t *testing.T) {
	if !DefaultTiming().Overlaps() {
		t.Error("default timing should overlap (5s period, 6s draw+fade)")
	}
	tm := DefaultTiming()
	tm.TickPeriod = 6 * time.Second
	if tm.Overlaps() {
		t.Error("6s period with 6s draw+fade should not overlap")
	}
}
