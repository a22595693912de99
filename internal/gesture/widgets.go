package gesture

import (
	"math"

	"github.com/tonari-app/tonari/internal/attributes"
)

// Link is a link that does not follow after a horizontal swipe across it.
type Link struct {
	To       string
	External bool

	x0    float64
	moved bool
}

func (l *Link) Down(p Point) {
	l.moved = false
	l.x0 = p.X
}

func (l *Link) Move(p Point) {
	if math.Abs(p.X-l.x0) >= Threshold {
		l.moved = true
	}
}

// Up reports whether the link should be followed.
func (l *Link) Up() bool { return !l.moved }

// Tap2D is an attribute button: a press counts as a tap unless the pointer
// moved past the threshold on either axis.
type Tap2D struct {
	Attribute attributes.Name

	p0    Point
	moved bool
}

func (t *Tap2D) Down(p Point) {
	t.moved = false
	t.p0 = p
}

func (t *Tap2D) Move(p Point) {
	if math.Abs(p.X-t.p0.X) < Threshold && math.Abs(p.Y-t.p0.Y) < Threshold {
		return
	}
	t.moved = true
}

// Up reports the tap, and whether the release's default action must be
// suppressed, which is the case for every enum valued attribute.
func (t *Tap2D) Up() (tap, preventDefault bool) {
	return !t.moved, !attributes.IsBoolean(t.Attribute)
}

// sheetGrabArea is the height in px at the top of an open sheet that can drag
// it down.
const sheetGrabArea = 40

// Sheet is the bottom sheet holding a facility's details. A vertical drag
// inside it aborts the swipe of the result strip behind it.
type Sheet struct {
	Open   bool
	Parent *SwipeView

	p0            Point
	moved         bool
	swipeDisabled bool
}

// Down records a press. top is the sheet's top edge in page coordinates; 0
// means unknown and keeps the previous drag setting.
func (s *Sheet) Down(p Point, top float64) {
	s.moved = false
	s.p0 = p
	if s.Open && top != 0 {
		s.swipeDisabled = p.Y-top >= sheetGrabArea
	}
}

// Move reports whether the parent swipe was aborted.
func (s *Sheet) Move(p Point) bool {
	aborted := false
	if math.Abs(p.Y-s.p0.Y) >= Threshold && !s.moved {
		if s.Parent != nil {
			s.Parent.AbortSwiping()
		}
		aborted = true
	}
	if math.Abs(p.X-s.p0.X) >= Threshold {
		s.moved = true
	}
	return aborted
}

// SwipeDisabled reports whether dragging the sheet itself is off, which it
// is for presses below the grab area of an open sheet.
func (s *Sheet) SwipeDisabled() bool { return s.swipeDisabled }
