package gesture

import (
	"regexp"
	"strings"
)

type Source int

const (
	Mouse Source = iota
	Touch
)

func (s Source) String() string {
	if s == Touch {
		return "touch"
	}
	return "mouse"
}

var (
	mobileRE = regexp.MustCompile(`(?i)(android|bb\d+|meego).+mobile|armv7l|avantgo|bada/|blackberry|blazer|compal|elaine|fennec|hiptop|iemobile|ip(hone|od)|iris|kindle|lge |maemo|midp|mmp|mobile.+firefox|netfront|opera m(ob|in)i|palm( os)?|phone|p(ixi|re)/|plucker|pocket|psp|series[46]0|samsungbrowser.*mobile|symbian|treo|up\.(browser|link)|vodafone|wap|windows (ce|phone)|xda|xiino`)
	tabletRE = regexp.MustCompile(`(?i)android|ipad|playbook|silk`)
)

// DetectSource picks the input source once per client. Phones and tablets
// get touch, including iPads that announce themselves as desktop Safari but
// report more than one touch point.
func DetectSource(userAgent string, maxTouchPoints int) Source {
	if mobileRE.MatchString(userAgent) || tabletRE.MatchString(userAgent) {
		return Touch
	}
	if maxTouchPoints > 1 && strings.Contains(userAgent, "Macintosh") && strings.Contains(userAgent, "Safari") {
		return Touch
	}
	return Mouse
}

// Bindings are the DOM event names a client listens to. A client binds the
// set for its source only.
type Bindings struct {
	Down     string `json:"down"`
	Move     string `json:"move"`
	Up       string `json:"up"`
	WindowUp string `json:"windowUp"`
}

func BindingsFor(s Source) Bindings {
	if s == Touch {
		return Bindings{Down: "touchstart", Move: "touchmove", Up: "touchend", WindowUp: "touchend"}
	}
	return Bindings{Down: "mousedown", Move: "mousemove", Up: "mouseup", WindowUp: "mouseup"}
}
