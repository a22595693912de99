package invalidation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tonari-app/tonari/internal/core/model"
)

// Local applies changes made through this gateway straight to the cache.
type Local struct {
	inv    Invalidator
	logger *slog.Logger
}

func NewLocal(inv Invalidator, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Local{inv: inv, logger: logger}
}

// FacilityChanged invalidates around pos. Failures are logged; the write that
// caused the change already succeeded.
func (l *Local) FacilityChanged(ctx context.Context, op string, id model.ID, pos model.Position) {
	ev := Event{Version: 1, Op: op, ID: id, Position: pos, TS: time.Now().UTC(), Source: "gateway"}
	if err := l.Apply(ctx, ev); err != nil {
		l.logger.WarnContext(ctx, "local invalidation failed", "id", id.String(), "err", err)
	}
}

func (l *Local) Apply(ctx context.Context, ev Event) error {
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	n, err := l.inv.InvalidateAround(ctx, ev.Position)
	if err != nil {
		return err
	}
	l.logger.DebugContext(ctx, "invalidated searches", "op", ev.Op, "id", ev.ID.String(), "searches", n)
	return nil
}
