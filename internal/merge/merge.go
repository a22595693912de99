package merge

import (
	"math"
	"sort"

	"github.com/golang/geo/s2"

	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/feeds"
)

// Radius of every search in meters.
const Radius = 1000

const earthRadiusMeters = 6371008.8

type Diagnostics struct {
	AccessibilityIn  int
	BackendIn        int
	Overridden       int
	Appended         int
	DistanceComputed int
	// Dropped counts records with neither a distance nor coordinates.
	Dropped  int
	TotalOut int
}

// Merge derives every accessibility feature, applies the backend overrides
// and returns the facilities ordered by distance. origin, when set, is used to
// compute distances the feeds did not report.
func Merge(ac, backend *feeds.FeatureCollection, origin *model.Position) ([]model.Facility, Diagnostics) {
	var diag Diagnostics
	var records []Record
	if ac != nil {
		records = make([]Record, 0, len(ac.Features))
		for _, f := range ac.Features {
			records = append(records, Derive(f))
		}
		diag.AccessibilityIn = len(ac.Features)
	}

	if backend.Successful() {
		diag.BackendIn = len(backend.Features)
		for _, f := range backend.Features {
			d := Derive(f)
			if i, ok := findByID(records, d.ID); ok {
				records[i].overlay(d)
				diag.Overridden++
				continue
			}
			records = append(records, d)
			diag.Appended++
		}
	}

	out := make([]model.Facility, 0, len(records))
	for _, r := range records {
		if r.Distance == nil {
			if r.Coord == nil || origin == nil {
				diag.Dropped++
				continue
			}
			d := Distance(*origin, *r.Coord)
			r.Distance = &d
			diag.DistanceComputed++
		}
		out = append(out, r.Facility())
	}
	SortByDistance(out)
	diag.TotalOut = len(out)
	return out, diag
}

// findByID returns the first record carrying id.
func findByID(records []Record, id *model.ID) (int, bool) {
	if id == nil {
		return 0, false
	}
	for i := range records {
		if records[i].ID != nil && records[i].ID.Equal(*id) {
			return i, true
		}
	}
	return 0, false
}

// SortByDistance orders fs ascending by distance; ties keep their order.
func SortByDistance(fs []model.Facility) {
	sort.SliceStable(fs, func(i, j int) bool {
		return fs[i].Features.Distance < fs[j].Features.Distance
	})
}

// Distance is the great-circle distance between a and b in whole meters.
func Distance(a, b model.Position) float64 {
	ang := s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon))
	return roundMeters(ang.Radians() * earthRadiusMeters)
}

// roundMeters rounds half away from zero.
func roundMeters(d float64) float64 {
	return math.Round(d)
}
