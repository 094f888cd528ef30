package shapes

import "github.com/sudorandom/route-map/pkg/geo"

// Tooltip is the floating label shared by every shape of a session. After
// Release it ignores all updates and is never visible again.
type Tooltip struct {
	text     string
	at       geo.ScreenPoint
	visible  bool
	released bool
}

type TooltipState struct {
	Text    string
	At      geo.ScreenPoint
	Visible bool
}

func NewTooltip() *Tooltip { return &Tooltip{} }

func (t *Tooltip) Show(text string, at geo.ScreenPoint) {
	if t == nil || t.released {
		return
	}
	t.text, t.at, t.visible = text, at, true
}

func (t *Tooltip) Move(at geo.ScreenPoint) {
	if t == nil || t.released || !t.visible {
		return
	}
	t.at = at
}

func (t *Tooltip) Hide() {
	if t == nil || t.released {
		return
	}
	t.visible = false
}

func (t *Tooltip) Release() {
	if t == nil {
		return
	}
	t.released = true
	t.visible = false
	t.text = ""
}

func (t *Tooltip) Released() bool { return t == nil || t.released }

func (t *Tooltip) State() TooltipState {
	if t == nil || t.released {
		return TooltipState{}
	}
	return TooltipState{Text: t.text, At: t.at, Visible: t.visible}
}
