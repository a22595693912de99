package h3mapper

import (
	"math"
	"slices"
	"sort"
	"testing"

	"github.com/tonari-app/tonari/internal/core/model"
)

var berlin = model.Position{Lat: 52.5200, Lon: 13.4050}

func TestCellFor_Deterministic(t *testing.T) {
	m := New()
	a, err := m.CellFor(berlin, 8)
	if err != nil {
		t.Fatalf("CellFor: %v", err)
	}
	b, _ := m.CellFor(model.Position{Lat: 52.5200, Lon: 13.4050}, 8)
	if a != b || a == "" {
		t.Fatalf("a=%q b=%q", a, b)
	}
}

func TestCellFor_Invalid(t *testing.T) {
	m := New()
	if _, err := m.CellFor(berlin, 16); err == nil {
		t.Fatal("expected resolution error")
	}
	if _, err := m.CellFor(model.Position{Lat: math.NaN(), Lon: 1}, 8); err == nil {
		t.Fatal("expected position error")
	}
}

func TestCellsWithinRadius_CoversNearbyPoints(t *testing.T) {
	m := New()
	cells, err := m.CellsWithinRadius(berlin, 1000, 8)
	if err != nil {
		t.Fatalf("CellsWithinRadius: %v", err)
	}
	if !sort.StringsAreSorted(cells) {
		t.Fatal("cells must be sorted")
	}
	center, _ := m.CellFor(berlin, 8)
	if !slices.Contains(cells, center) {
		t.Fatal("disk must contain the centre cell")
	}

	// ~900 m north and ~900 m east
	for _, p := range []model.Position{
		{Lat: berlin.Lat + 0.0081, Lon: berlin.Lon},
		{Lat: berlin.Lat, Lon: berlin.Lon + 0.0133},
	} {
		c, _ := m.CellFor(p, 8)
		if !slices.Contains(cells, c) {
			t.Fatalf("cell %s of %v not in disk", c, p)
		}
	}

	far, _ := m.CellFor(model.Position{Lat: 48.137, Lon: 11.575}, 8)
	if slices.Contains(cells, far) {
		t.Fatal("munich is not within 1km of berlin")
	}
}

func TestCellsWithinRadius_ZeroRadius(t *testing.T) {
	cells, err := New().CellsWithinRadius(berlin, 0, 8)
	if err != nil {
		t.Fatal(err)
	}
	// one ring of slack
	if len(cells) != 7 {
		t.Fatalf("len=%d want 7", len(cells))
	}
	if _, err := New().CellsWithinRadius(berlin, -1, 8); err == nil {
		t.Fatal("negative radius must fail")
	}
}
