package route

import "net/url"

// Flags are switched on by the mere presence of their query parameter.
type Flags struct {
	Debugging    bool `json:"debugging"`
	Experimental bool `json:"experimental"`
	Presenting   bool `json:"presenting"`
}

func FlagsFrom(q url.Values) Flags {
	return Flags{
		Debugging:    q.Has("debugging"),
		Experimental: q.Has("experimental"),
		Presenting:   q.Has("presenting"),
	}
}

type MenuItem struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Enabled bool   `json:"enabled"`
}

// Menu is the startup screen's menu.
func Menu(f Flags) []MenuItem {
	return []MenuItem{
		{Name: "now", Path: "/now", Enabled: true},
		{Name: "later", Path: "/later", Enabled: false},
		{Name: "add", Path: "/add", Enabled: f.Experimental},
	}
}
