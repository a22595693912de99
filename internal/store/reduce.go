package store

import (
	"maps"

	"github.com/tonari-app/tonari/internal/core/model"
)

// Reduce returns the state after ev. s is never modified; every sub-tree the
// event touches is copied, the rest is shared with s.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case SetLastRequest:
		p := e.Pos
		s.Buffer.LastRequest = &p

	case ResetResults:
		s.Buffer.Results = nil

	case SearchResolved:
		fs := append([]model.Facility(nil), e.Facilities...)
		if fs == nil {
			fs = []model.Facility{}
		}
		cur := e.Current
		if cur < 0 || cur >= len(fs) {
			cur = 0
		}
		s.Buffer.Results = &Results{Facilities: fs, Current: cur}

	case ChooseFacility:
		r := s.Buffer.Results
		if r == nil || e.Index < 0 || e.Index >= len(r.Facilities) {
			return s
		}
		s.Buffer.Results = &Results{Facilities: r.Facilities, Current: e.Index}

	case ImagesLoaded:
		m := maps.Clone(s.Buffer.Images)
		if m == nil {
			m = map[string][]string{}
		}
		urls := append([]string{}, e.URLs...)
		m[model.IDToStr(e.ID)] = urls
		s.Buffer.Images = m

	case CommentsLoaded:
		m := maps.Clone(s.Buffer.Comments)
		if m == nil {
			m = map[string][]model.Comment{}
		}
		m[model.IDToStr(e.ID)] = append([]model.Comment{}, e.Comments...)
		s.Buffer.Comments = m

	case AddressLoaded:
		m := maps.Clone(s.Buffer.Addresses)
		if m == nil {
			m = map[string]*string{}
		}
		var a *string
		if e.Address != nil {
			v := *e.Address
			a = &v
		}
		m[model.IDToStr(e.ID)] = a
		s.Buffer.Addresses = m

	case AttributesUpdated:
		r := s.Buffer.Results
		if r == nil {
			return s
		}
		fs := make([]model.Facility, len(r.Facilities))
		for i, f := range r.Facilities {
			if f.Features.ID.Equal(e.ID) {
				f = f.WithAttributes(e.Attributes)
			}
			fs[i] = f
		}
		s.Buffer.Results = &Results{Facilities: fs, Current: r.Current}

	case SetFullscreen:
		s.Global.Fullscreen = e.Fullscreen

	case SetIncludePlacesWithoutAccessibility:
		s.Global.IncludePlacesWithoutAccessibility = e.Include

	case ResetSideCaches:
		s.Buffer.Images = map[string][]string{}
		s.Buffer.Comments = map[string][]model.Comment{}
		s.Buffer.Addresses = map[string]*string{}
	}
	return s
}
