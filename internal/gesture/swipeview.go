// Package gesture holds the pointer state machines behind swipeable result
// cards, tap-safe links, attribute buttons and the bottom sheet. The machines
// are independent of any UI toolkit: callers feed pointer events and act on the
// returned Outcome.
package gesture

import (
	"fmt"
	"math"
)

const (
	// Threshold is the displacement in px below which a pointer has not moved.
	Threshold = 10
	// FractionThreshold is the share of the track width a release must exceed
	// to change the index.
	FractionThreshold = 0.1
	// clickEdge is the share of the width on either side that steps the index
	// in the click modes.
	clickEdge = 0.25
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Mode int

const (
	Swipe Mode = iota
	Click
	// ClickNoSwipe behaves like Click but leaves a moved pointer to the
	// enclosing view, so a click region can sit inside a swipe region.
	ClickNoSwipe
	Disabled
)

func (m Mode) String() string {
	switch m {
	case Swipe:
		return "swipe"
	case Click:
		return "click"
	case ClickNoSwipe:
		return "click-no-swipe"
	case Disabled:
		return "disabled"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "swipe":
		return Swipe, nil
	case "click":
		return Click, nil
	case "click-no-swipe":
		return ClickNoSwipe, nil
	case "disabled":
		return Disabled, nil
	}
	return 0, fmt.Errorf("unknown gesture mode %q", s)
}

type State int

const (
	Idle State = iota
	Pressed
	Moving
	Released
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pressed:
		return "pressed"
	case Moving:
		return "moving"
	case Released:
		return "released"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Outcome is what a single pointer event asks the caller to do.
type Outcome struct {
	// Tap means the click callback fires.
	Tap bool `json:"tap,omitempty"`
	// IndexChanged is set when Index differs from the index before the event.
	IndexChanged bool `json:"indexChanged,omitempty"`
	Index        int  `json:"index"`
	// PreventDefault suppresses the platform's default action for the event.
	PreventDefault bool `json:"preventDefault,omitempty"`
	// Propagate hands the gesture to the enclosing view untouched.
	Propagate bool `json:"propagate,omitempty"`
	// Translate is set when TranslateX is a new live offset in px.
	Translate  bool    `json:"translate,omitempty"`
	TranslateX float64 `json:"translateX,omitempty"`
	// Released starts the release animation; Fraction drives it.
	Released bool    `json:"released,omitempty"`
	Fraction float64 `json:"fraction,omitempty"`
}

// SwipeView tracks one horizontally swipeable strip of count children, each
// width px wide.
type SwipeView struct {
	mode  Mode
	index int
	count int
	width float64
	state State

	x0      float64
	swiping bool
	moved   bool
	clicked bool
}

func NewSwipeView(mode Mode, index, count int, width float64) *SwipeView {
	return &SwipeView{mode: mode, index: index, count: count, width: width}
}

func (v *SwipeView) Mode() Mode     { return v.mode }
func (v *SwipeView) Index() int     { return v.index }
func (v *SwipeView) State() State   { return v.state }
func (v *SwipeView) Swiping() bool  { return v.swiping }
func (v *SwipeView) SetIndex(i int) { v.index = i }
func (v *SwipeView) SetCount(n int) { v.count = n }

func (v *SwipeView) SetWidth(w float64) { v.width = w }

// SetMode switches the mode and forgets any gesture in progress, so a release
// that belongs to a press made under the old mode does nothing.
func (v *SwipeView) SetMode(m Mode) {
	if m == v.mode {
		return
	}
	v.mode = m
	v.swiping = false
	v.moved = false
	v.clicked = false
	v.state = Idle
}

// AbortSwiping cancels a running swipe and resets the live offset. The
// enclosing scroll container calls it when the content scrolls.
func (v *SwipeView) AbortSwiping() Outcome {
	v.swiping = false
	v.x0 = 0
	if v.state == Pressed || v.state == Moving {
		v.state = Idle
	}
	return Outcome{Index: v.index, Translate: true}
}

func (v *SwipeView) Down(p Point) Outcome {
	out := Outcome{Index: v.index}
	if v.mode == Disabled {
		v.clicked = false
		return out
	}
	v.clicked = true
	v.moved = false
	v.x0 = p.X
	v.state = Pressed
	if v.mode == Swipe {
		v.swiping = true
	}
	return out
}

func (v *SwipeView) Move(p Point) Outcome {
	out := Outcome{Index: v.index}
	if v.mode == Disabled {
		return out
	}
	dx := p.X - v.x0
	dist := math.Abs(dx)
	if (v.mode == Swipe || v.mode == ClickNoSwipe) && dist < Threshold {
		return out
	}
	v.moved = true
	if v.state == Pressed {
		v.state = Moving
	}
	if !v.swiping || v.width <= 0 {
		return out
	}

	// no over-scroll past the first and last child
	sign := sgn(dx)
	if dist >= v.width/5 && (v.index == 0 && sign == 1 || v.index == v.count-1 && sign == -1) {
		return out
	}
	out.Translate = true
	out.TranslateX = math.Round(dx)
	return out
}

// Up handles a release on the view itself. Only the click modes act on it.
func (v *SwipeView) Up(p Point) Outcome {
	out := Outcome{Index: v.index}
	if !v.clicked || (v.mode != Click && v.mode != ClickNoSwipe) {
		return out
	}
	v.state = Released
	if v.moved && v.mode == ClickNoSwipe {
		out.Propagate = true
		return out
	}

	// stops a single click from skipping a child
	out.PreventDefault = true
	if v.width <= 0 {
		return out
	}
	x := p.X / v.width
	switch {
	case x < clickEdge:
		if v.index == 0 {
			return out
		}
		v.index--
	case x > 1-clickEdge:
		if v.index >= v.count-1 {
			return out
		}
		v.index++
	default:
		out.Tap = true
	}
	out.IndexChanged = out.Index != v.index
	out.Index = v.index
	return out
}

// WindowUp handles a release anywhere on the page and completes a swipe.
func (v *SwipeView) WindowUp(p Point) Outcome {
	out := Outcome{Index: v.index}
	if !v.swiping || !v.clicked || v.width <= 0 {
		return out
	}

	dx := p.X - v.x0
	s := float64(sgn(dx))
	f := s * dx / v.width
	if v.moved && (v.index > 0 || s < 0) && (v.index < v.count-1 || s > 0) && f > FractionThreshold {
		v.index -= int(s)
		out.IndexChanged = true
		f = 1 - f
	}
	if !v.moved {
		out.Tap = true
	}

	v.swiping = false
	v.x0 = 0
	v.state = Released
	out.Index = v.index
	out.Translate = true
	out.Released = true
	out.Fraction = f
	return out
}

// Release is a pointer release over the view: the view's own handler runs
// first, then the page's.
func (v *SwipeView) Release(p Point) Outcome {
	return merge(v.Up(p), v.WindowUp(p))
}

func merge(a, b Outcome) Outcome {
	return Outcome{
		Tap:            a.Tap || b.Tap,
		IndexChanged:   a.IndexChanged || b.IndexChanged,
		Index:          b.Index,
		PreventDefault: a.PreventDefault || b.PreventDefault,
		Propagate:      a.Propagate || b.Propagate,
		Translate:      a.Translate || b.Translate,
		TranslateX:     b.TranslateX,
		Released:       a.Released || b.Released,
		Fraction:       b.Fraction,
	}
}

func sgn(f float64) int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}
