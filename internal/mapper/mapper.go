// Package mapper converts search positions to H3 cells.
package mapper

import (
	"github.com/tonari-app/tonari/internal/core/model"
)

type Interface interface {
	CellFor(pos model.Position, res int) (string, error)
	CellsWithinRadius(pos model.Position, meters float64, res int) ([]string, error)
}
