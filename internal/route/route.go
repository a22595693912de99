// Package route parses and builds the client's screen paths and reads the
// query flags that switch on hidden behaviour.
package route

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tonari-app/tonari/internal/core/model"
)

type Screen string

const (
	Startup Screen = "startup"
	// NowGPS waits for a position fix and then moves to Now.
	NowGPS Screen = "now-gps"
	Now    Screen = "now"
	Detail Screen = "detail"
	Edit   Screen = "edit"
	Go     Screen = "go"
	GoEdit Screen = "go-edit"
	Add    Screen = "add"
	Later  Screen = "later"
)

// Screen texts shown in place of content.
const (
	MsgUnimplemented   = "This screen is not yet implemented."
	MsgNoResults       = "No facility was found in a 1km radius."
	MsgMissingFacility = "Internal error. This shouldn't have happened."
	MsgOverride        = "Not searching from your current location"
	MsgAllowLocation   = "Please enable and allow location access."
	MsgWaitLocation    = "Waiting for your location to become available."
)

var (
	ErrNotFound      = errors.New("no such route")
	ErrUnimplemented = errors.New(MsgUnimplemented)
)

type Route struct {
	Screen Screen
	// Pos is the search position; set from Now onwards.
	Pos model.Position
	// ID is the selected facility; set from Detail onwards.
	ID model.ID
}

// Parse maps a path to its screen. Facility ids appear in their string form,
// path-escaped or raw.
func Parse(path string) (Route, error) {
	path = strings.TrimPrefix(path, "#")
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return Route{Screen: Startup}, nil
	}
	segs := strings.Split(trimmed, "/")
	for i, s := range segs {
		u, err := url.PathUnescape(s)
		if err != nil {
			return Route{}, fmt.Errorf("%w: %q: %v", ErrNotFound, path, err)
		}
		segs[i] = u
	}

	switch segs[0] {
	case "later":
		if len(segs) == 1 {
			return Route{Screen: Later}, nil
		}
	case "add":
		if len(segs) == 1 {
			return Route{Screen: Add}, nil
		}
	case "now":
		return parseNow(path, segs[1:])
	}
	return Route{}, fmt.Errorf("%w: %q", ErrNotFound, path)
}

func parseNow(path string, segs []string) (Route, error) {
	if len(segs) == 0 {
		return Route{Screen: NowGPS}, nil
	}
	r := Route{Screen: Now, Pos: model.PositionFromStr(segs[0])}
	if len(segs) == 1 {
		return r, nil
	}
	r.ID = model.IDFromStr(segs[1])
	rest := strings.Join(segs[2:], "/")
	switch rest {
	case "":
		r.Screen = Detail
	case "edit":
		r.Screen = Edit
	case "go":
		r.Screen = Go
	case "go/edit":
		r.Screen = GoEdit
	default:
		return Route{}, fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	return r, nil
}

// Build is the inverse of Parse. Ids are path-escaped.
func Build(r Route) string {
	switch r.Screen {
	case Startup:
		return "/"
	case NowGPS:
		return "/now"
	case Later:
		return "/later"
	case Add:
		return "/add"
	}
	base := "/now/" + model.PositionToStr(r.Pos)
	if r.Screen == Now {
		return base
	}
	base += "/" + url.PathEscape(model.IDToStr(r.ID))
	switch r.Screen {
	case Edit:
		return base + "/edit"
	case Go:
		return base + "/go"
	case GoEdit:
		return base + "/go/edit"
	}
	return base
}

// GoLink is the deep link a visit notification opens.
func GoLink(pos model.Position, id model.ID) string {
	return Build(Route{Screen: Go, Pos: pos, ID: id})
}

// EditReturn is where saving an edit leads back to.
func EditReturn(r Route) Route {
	switch r.Screen {
	case GoEdit:
		r.Screen = Go
	case Edit:
		r.Screen = Detail
	}
	return r
}

// NowTarget resolves the Now entry point: the configured search location when
// one is set, the position fix otherwise.
func NowTarget(override string, fix *model.Position) (string, bool) {
	if override != "" {
		return "/now/" + override, true
	}
	if fix == nil {
		return "", false
	}
	return Build(Route{Screen: Now, Pos: *fix}), true
}

// Available reports ErrUnimplemented for screens that are switched off.
func Available(s Screen, f Flags) error {
	switch {
	case s == Later:
		return ErrUnimplemented
	case s == Add && !f.Experimental:
		return ErrUnimplemented
	}
	return nil
}
