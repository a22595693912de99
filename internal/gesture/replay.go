package gesture

import "fmt"

// EventType names a recorded pointer event.
type EventType string

const (
	EventDown EventType = "down"
	EventMove EventType = "move"
	// EventUp is a release over the view.
	EventUp EventType = "up"
	// EventWindowUp is a release outside the view.
	EventWindowUp EventType = "window_up"
	EventAbort    EventType = "abort"
)

type Event struct {
	Type EventType `json:"type"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

// Recording is a captured gesture together with the view it ran against.
type Recording struct {
	Mode   string  `json:"mode"`
	Index  int     `json:"index"`
	Count  int     `json:"count"`
	Width  float64 `json:"width"`
	Events []Event `json:"events"`
}

type ReplayResult struct {
	Outcomes []Outcome `json:"outcomes"`
	Index    int       `json:"index"`
	State    string    `json:"state"`
}

// Run replays r against a fresh view.
func (r Recording) Run() (ReplayResult, error) {
	mode, err := ParseMode(r.Mode)
	if err != nil {
		return ReplayResult{}, err
	}
	if r.Count <= 0 {
		return ReplayResult{}, fmt.Errorf("count must be positive, got %d", r.Count)
	}
	if r.Index < 0 || r.Index >= r.Count {
		return ReplayResult{}, fmt.Errorf("index %d out of range [0,%d)", r.Index, r.Count)
	}
	v := NewSwipeView(mode, r.Index, r.Count, r.Width)
	outs, err := Replay(v, r.Events)
	if err != nil {
		return ReplayResult{}, err
	}
	return ReplayResult{Outcomes: outs, Index: v.Index(), State: v.State().String()}, nil
}

// Replay feeds events to v in order and returns one Outcome per event.
func Replay(v *SwipeView, events []Event) ([]Outcome, error) {
	outs := make([]Outcome, 0, len(events))
	for i, ev := range events {
		p := Point{X: ev.X, Y: ev.Y}
		var out Outcome
		switch ev.Type {
		case EventDown:
			out = v.Down(p)
		case EventMove:
			out = v.Move(p)
		case EventUp:
			out = v.Release(p)
		case EventWindowUp:
			out = v.WindowUp(p)
		case EventAbort:
			out = v.AbortSwiping()
		default:
			return nil, fmt.Errorf("event %d: unknown type %q", i, ev.Type)
		}
		outs = append(outs, out)
	}
	return outs, nil
}
