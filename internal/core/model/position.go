// Package model defines core domain types shared across the service.
package model

import (
	"math"
	"strconv"
	"strings"
)

// Position is a WGS84 point in degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String representation used in client routes and cache keys ("{lat}_{lon}")
func (p Position) String() string {
	return PositionToStr(p)
}

func PositionToStr(p Position) string {
	return formatCoord(p.Lat) + "_" + formatCoord(p.Lon)
}

// PositionFromStr never fails: a missing or malformed component becomes NaN
// and callers are expected to check Valid before using the result.
func PositionFromStr(s string) Position {
	parts := strings.Split(s, "_")
	return Position{
		Lat: parseCoord(parts, 0),
		Lon: parseCoord(parts, 1),
	}
}

// Valid reports whether both components are finite and inside WGS84 bounds.
func (p Position) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Equal compares both components exactly.
func (p Position) Equal(o Position) bool {
	return p.Lat == o.Lat && p.Lon == o.Lon
}

func FormatCoord(f float64) string { return formatCoord(f) }

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseCoord(parts []string, i int) float64 {
	if i >= len(parts) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
