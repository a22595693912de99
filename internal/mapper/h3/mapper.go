package h3mapper

import (
	"errors"
	"fmt"
	"math"
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/tonari-app/tonari/internal/core/model"
)

type Mapper struct{}

func New() *Mapper { return &Mapper{} }

// CellFor returns the cell containing pos.
func (m *Mapper) CellFor(pos model.Position, res int) (string, error) {
	c, err := cellFor(pos, res)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// CellsWithinRadius returns every cell that may hold a point within meters
// of pos, sorted. The disk is sized by the average edge length, plus one ring
// so cells cut by the circle's edge are included.
func (m *Mapper) CellsWithinRadius(pos model.Position, meters float64, res int) ([]string, error) {
	if meters < 0 || math.IsNaN(meters) {
		return nil, fmt.Errorf("invalid radius %v", meters)
	}
	c, err := cellFor(pos, res)
	if err != nil {
		return nil, err
	}
	edge, err := h3.HexagonEdgeLengthAvgM(res)
	if err != nil {
		return nil, fmt.Errorf("h3 edge length: %w", err)
	}
	// neighbouring centres are sqrt(3) edges apart
	k := int(math.Ceil(meters/(edge*math.Sqrt(3)))) + 1

	disk, err := h3.GridDisk(c, k)
	if err != nil {
		return nil, fmt.Errorf("h3 grid disk: %w", err)
	}
	out := make([]string, 0, len(disk))
	seen := make(map[string]struct{}, len(disk))
	for _, d := range disk {
		s := d.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

// --- helpers ---

func validateRes(res int) error {
	if res < 0 || res > 15 {
		return fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	return nil
}

func cellFor(pos model.Position, res int) (h3.Cell, error) {
	if err := validateRes(res); err != nil {
		return 0, err
	}
	if !pos.Valid() {
		return 0, errors.New("invalid position")
	}
	c, err := h3.LatLngToCell(h3.LatLng{Lat: pos.Lat, Lng: pos.Lon}, res)
	if err != nil {
		return 0, fmt.Errorf("h3 cell: %w", err)
	}
	return c, nil
}
