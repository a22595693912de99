package merge

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/core/observability"
	"github.com/tonari-app/tonari/internal/feeds"
	"github.com/tonari-app/tonari/internal/feeds/accessibility"
)

type PlaceSource interface {
	PlaceInfos(ctx context.Context, q accessibility.Query) (*feeds.FeatureCollection, error)
}

type OverrideSource interface {
	ByRadius(ctx context.Context, pos model.Position, radius int) (*feeds.FeatureCollection, error)
}

type Options struct {
	IncludePlacesWithoutAccessibility bool
	// IncludeRelated is set in debugging mode.
	IncludeRelated bool
}

// Interface is what sessions search through; the shared search cache
// decorates it.
type Interface interface {
	Search(ctx context.Context, pos model.Position, opts Options) ([]model.Facility, error)
}

type Searcher struct {
	places    PlaceSource
	overrides OverrideSource
	logger    *slog.Logger
}

func NewSearcher(places PlaceSource, overrides OverrideSource, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Searcher{places: places, overrides: overrides, logger: logger}
}

// Search queries both feeds concurrently and merges them. Either failure fails
// the whole search; there is no partial result. A backend that answers with an
// error status is not a failure, its overrides are just skipped.
func (s *Searcher) Search(ctx context.Context, pos model.Position, opts Options) ([]model.Facility, error) {
	var ac, backend *feeds.FeatureCollection

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fc, err := s.places.PlaceInfos(gctx, accessibility.Query{
			Position:                          pos,
			Radius:                            Radius,
			IncludePlacesWithoutAccessibility: opts.IncludePlacesWithoutAccessibility,
			IncludeRelated:                    opts.IncludeRelated,
		})
		if err != nil {
			return fmt.Errorf("place infos: %w", err)
		}
		ac = fc
		return nil
	})
	g.Go(func() error {
		fc, err := s.overrides.ByRadius(gctx, pos, Radius)
		if err != nil {
			return fmt.Errorf("backend by radius: %w", err)
		}
		backend = fc
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	origin := pos
	out, diag := Merge(ac, backend, &origin)
	observability.ObserveSearch("merged", len(out))
	s.logger.DebugContext(ctx, "radius search merged",
		"pos", pos.String(),
		"ac_in", diag.AccessibilityIn,
		"backend_in", diag.BackendIn,
		"overridden", diag.Overridden,
		"appended", diag.Appended,
		"distance_computed", diag.DistanceComputed,
		"dropped", diag.Dropped,
		"out", diag.TotalOut)
	return out, nil
}
