// Package merge turns the accessibility feed and the backend override feed
// into one distance-ordered list of facilities.
package merge

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tonari-app/tonari/internal/attributes"
	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/feeds"
)

var wheelchairPath = []string{"properties", "accessibility", "accessibleWith", "wheelchair"}

// Names the feed uses for municipal toilets that carry no facilityType. The
// second form is the double-encoded spelling some records arrive with.
var publicNameFragments = []string{"Öffentliche Toilette", "Ã–ffentliche Toilette"}

const publicNameExact = "City Toilette"

// Record is a derived facility whose feature fields may be absent. Absent
// fields never overwrite present ones when records are merged.
type Record struct {
	Attributes attributes.Set
	Coord      *model.Position
	Distance   *float64
	Name       *string
	ID         *model.ID
}

// Derive maps one feed feature onto a Record. Missing or malformed fields are
// left absent.
func Derive(f feeds.Feature) Record {
	r := Record{Attributes: attributes.Set{}}
	props := feeds.Props(f)

	if w, ok := attributes.LookupPath(f, wheelchairPath); ok {
		r.Attributes[attributes.WheelchairAccess] = wheelchairValue(w)
	}

	for _, d := range attributes.Catalog() {
		if d.Name == attributes.WheelchairAccess || len(d.Path) == 0 {
			continue
		}
		x, ok := attributes.LookupPath(f, d.Path)
		if !ok {
			continue
		}
		if v, ok := attributes.Classify(d.Name, x); ok {
			r.Attributes[d.Name] = v
		}
	}

	if name, ok := props["name"].(string); ok {
		r.Name = &name
		if _, has := r.Attributes[attributes.FacilityType]; !has && isPublicName(name) {
			r.Attributes[attributes.FacilityType] = attributes.Enum("public")
		}
	}

	// live opening hours are not supplied by any feed yet
	r.Attributes[attributes.IsOpen] = attributes.Bool(true)

	if c, ok := coordinates(f); ok {
		r.Coord = &c
	}
	if d, ok := props["distance"].(float64); ok {
		d = roundMeters(d)
		r.Distance = &d
	}
	src, okS := props["sourceId"].(string)
	orig, okO := props["originalId"].(string)
	if okS && okO {
		r.ID = &model.ID{SourceID: src, OriginalID: orig}
	}
	return r
}

func wheelchairValue(x any) attributes.Value {
	switch t := x.(type) {
	case bool:
		if t {
			return attributes.Enum("noSteps")
		}
		return attributes.Enum("multipleSteps")
	}
	v, _ := attributes.Classify(attributes.WheelchairAccess, x)
	return v
}

func isPublicName(name string) bool {
	n := norm.NFC.String(name)
	if n == publicNameExact {
		return true
	}
	for _, frag := range publicNameFragments {
		if strings.Contains(n, norm.NFC.String(frag)) {
			return true
		}
	}
	return false
}

// coordinates reads a GeoJSON [lon, lat] pair.
func coordinates(f feeds.Feature) (model.Position, bool) {
	x, ok := attributes.LookupPath(f, []string{"geometry", "coordinates"})
	if !ok {
		return model.Position{}, false
	}
	arr, ok := x.([]any)
	if !ok || len(arr) < 2 {
		return model.Position{}, false
	}
	lon, okLon := arr[0].(float64)
	lat, okLat := arr[1].(float64)
	if !okLon || !okLat {
		return model.Position{}, false
	}
	return model.Position{Lat: lat, Lon: lon}, true
}

// overlay merges src onto r, src winning for every field it carries.
func (r *Record) overlay(src Record) {
	if r.Attributes == nil {
		r.Attributes = attributes.Set{}
	}
	r.Attributes.Overlay(src.Attributes)
	if src.Coord != nil {
		c := *src.Coord
		r.Coord = &c
	}
	if src.Distance != nil {
		d := *src.Distance
		r.Distance = &d
	}
	if src.Name != nil {
		n := *src.Name
		r.Name = &n
	}
	if src.ID != nil {
		id := *src.ID
		r.ID = &id
	}
}

// Facility materialises r; absent fields take their zero value.
func (r Record) Facility() model.Facility {
	f := model.Facility{Attributes: r.Attributes.Clone()}
	if f.Attributes == nil {
		f.Attributes = attributes.Set{}
	}
	if r.Coord != nil {
		f.Features.Coord = *r.Coord
	}
	if r.Distance != nil {
		f.Features.Distance = *r.Distance
	}
	if r.Name != nil {
		f.Features.Name = *r.Name
	}
	if r.ID != nil {
		f.Features.ID = *r.ID
	}
	return f
}
