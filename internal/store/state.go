// Package store holds a session's state tree. Every change goes through a
// named event and a pure reducer; readers only ever see whole snapshots.
package store

import (
	"github.com/tonari-app/tonari/internal/core/model"
)

// Results is the loaded search result set. A nil *Results means no result set
// is loaded (yet), so the facility list and the selection are absent together.
type Results struct {
	Facilities []model.Facility `json:"facilities"`
	// Current indexes Facilities; it is 0 for an empty set.
	Current int `json:"current"`
}

// Active returns the selected facility.
func (r *Results) Active() (model.Facility, bool) {
	if r == nil || r.Current < 0 || r.Current >= len(r.Facilities) {
		return model.Facility{}, false
	}
	return r.Facilities[r.Current], true
}

// Find returns the facility with id.
func (r *Results) Find(id model.ID) (model.Facility, int, bool) {
	if r == nil {
		return model.Facility{}, 0, false
	}
	i, ok := model.IndexByID(r.Facilities, id)
	if !ok {
		return model.Facility{}, 0, false
	}
	return r.Facilities[i], i, true
}

type Buffer struct {
	Results *Results `json:"results"`
	// LastRequest is nil before the first search.
	LastRequest *model.Position `json:"lastRequest"`

	// Side caches keyed by model.IDToStr. A missing key has not been
	// requested; for addresses a present nil means none was found.
	Images    map[string][]string        `json:"images"`
	Comments  map[string][]model.Comment `json:"comments"`
	Addresses map[string]*string         `json:"addresses"`
}

type Global struct {
	Fullscreen                        bool `json:"fullscreen"`
	IncludePlacesWithoutAccessibility bool `json:"includePlacesWithoutAccessibility"`
}

type State struct {
	Buffer Buffer `json:"buffer"`
	Global Global `json:"global"`
}

func Initial() State {
	return State{
		Buffer: Buffer{
			Images:    map[string][]string{},
			Comments:  map[string][]model.Comment{},
			Addresses: map[string]*string{},
		},
	}
}

func (s *State) HasImages(id model.ID) bool {
	_, ok := s.Buffer.Images[model.IDToStr(id)]
	return ok
}

func (s *State) HasComments(id model.ID) bool {
	_, ok := s.Buffer.Comments[model.IDToStr(id)]
	return ok
}

func (s *State) HasAddress(id model.ID) bool {
	_, ok := s.Buffer.Addresses[model.IDToStr(id)]
	return ok
}

// Loading reports whether a search was issued but has not resolved.
func (s *State) Loading() bool {
	return s.Buffer.LastRequest != nil && s.Buffer.Results == nil
}
