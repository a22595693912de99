// Package invalidation carries facility change notifications to the shared
// search cache.
package invalidation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tonari-app/tonari/internal/core/model"
)

// Change operations.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Event announces that the facility ID at Position changed. Rev increases per
// facility; 0 means unversioned and is always applied.
type Event struct {
	Version  int            `json:"version"`
	Op       string         `json:"op"`
	ID       model.ID       `json:"id"`
	Position model.Position `json:"position"`
	Rev      uint64         `json:"rev,omitempty"`
	TS       time.Time      `json:"ts"`
	Source   string         `json:"source,omitempty"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	switch e.Op {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return fmt.Errorf("op must be insert|update|delete")
	}
	if e.Op != OpInsert && (e.ID.SourceID == "" || e.ID.OriginalID == "") {
		return errors.New("id is required for update and delete")
	}
	if !e.Position.Valid() {
		return fmt.Errorf("position out of range")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}

// Invalidator drops cached searches around a position.
type Invalidator interface {
	InvalidateAround(ctx context.Context, pos model.Position) (int, error)
}
