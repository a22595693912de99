// Package searchcache shares radius search results between sessions. Entries
// live in Redis for a short TTL and are indexed by every H3 cell their radius
// touches, so a facility change drops all searches that may contain it.
package searchcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tonari-app/tonari/internal/cache"
	"github.com/tonari-app/tonari/internal/cache/cellindex"
	"github.com/tonari-app/tonari/internal/cache/keys"
	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/core/observability"
	"github.com/tonari-app/tonari/internal/hotness"
	"github.com/tonari-app/tonari/internal/hotness/expdecay"
	"github.com/tonari-app/tonari/internal/mapper"
	"github.com/tonari-app/tonari/internal/merge"
)

type Config struct {
	Res       int
	TTL       time.Duration
	OpTimeout time.Duration

	// MinHotness is the search score a cell needs before its results are
	// stored; 0 stores every search.
	MinHotness  float64
	HotHalfLife time.Duration
	// Now drives hotness decay; nil means time.Now.
	Now func() time.Time
}

// hotSlack absorbs the decay between back to back searches so that integer
// thresholds stay reachable.
const hotSlack = 1e-3

// Cache decorates a merge.Interface. Redis failures degrade to a miss.
type Cache struct {
	next   merge.Interface
	store  cache.Store
	index  cellindex.CellIndex
	mapper mapper.Interface
	cfg    Config
	hot    hotness.Interface
	logger *slog.Logger
}

func New(next merge.Interface, store cache.Store, m mapper.Interface, cfg Config, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 250 * time.Millisecond
	}
	c := &Cache{
		next:   next,
		store:  store,
		index:  cellindex.NewRedisIndex(store),
		mapper: m,
		cfg:    cfg,
		logger: logger.With("component", "searchcache"),
	}
	if cfg.MinHotness > 0 {
		c.hot = expdecay.NewWithClock(cfg.HotHalfLife, cfg.Now)
	}
	return c
}

func query(pos model.Position, opts merge.Options) string {
	return fmt.Sprintf("pos=%s|without=%t|related=%t",
		model.PositionToStr(pos), opts.IncludePlacesWithoutAccessibility, opts.IncludeRelated)
}

func (c *Cache) Search(ctx context.Context, pos model.Position, opts merge.Options) ([]model.Facility, error) {
	cell, err := c.mapper.CellFor(pos, c.cfg.Res)
	if err != nil {
		c.logger.DebugContext(ctx, "search not cacheable", "pos", pos.String(), "err", err)
		return c.next.Search(ctx, pos, opts)
	}
	key := keys.SearchKey(c.cfg.Res, cell, query(pos, opts))

	if fs, ok := c.lookup(ctx, key); ok {
		observability.IncSearchCacheHit()
		return fs, nil
	}
	observability.IncSearchCacheMiss()

	fs, err := c.next.Search(ctx, pos, opts)
	if err != nil {
		return nil, err
	}
	if c.hot != nil {
		if score := c.hot.Inc(cell); score+hotSlack < c.cfg.MinHotness {
			c.logger.DebugContext(ctx, "cell too cold to cache", "cell", cell, "score", score)
			return fs, nil
		}
	}
	c.put(ctx, pos, key, fs)
	return fs, nil
}

func (c *Cache) lookup(ctx context.Context, key string) ([]model.Facility, bool) {
	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()

	raw, err := c.store.MGet(opCtx, []string{key})
	if err != nil {
		c.logger.WarnContext(ctx, "search cache read failed", "key", key, "err", err)
		return nil, false
	}
	b, ok := raw[key]
	if !ok {
		return nil, false
	}
	var fs []model.Facility
	if err := json.Unmarshal(b, &fs); err != nil {
		c.logger.WarnContext(ctx, "search cache entry undecodable", "key", key, "err", err)
		return nil, false
	}
	return fs, true
}

func (c *Cache) put(ctx context.Context, pos model.Position, key string, fs []model.Facility) {
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.OpTimeout)
	defer cancel()

	b, err := json.Marshal(fs)
	if err != nil {
		c.logger.WarnContext(ctx, "search cache encode failed", "key", key, "err", err)
		return
	}
	cells, err := c.mapper.CellsWithinRadius(pos, merge.Radius, c.cfg.Res)
	if err != nil {
		c.logger.WarnContext(ctx, "search cache cells failed", "key", key, "err", err)
		return
	}
	// index first: an entry must never outlive its way to be invalidated
	if err := c.index.Add(opCtx, c.cfg.Res, cells, key, c.cfg.TTL); err != nil {
		c.logger.WarnContext(ctx, "search cache index failed", "key", key, "err", err)
		return
	}
	if err := c.store.Set(opCtx, key, b, c.cfg.TTL); err != nil {
		c.logger.WarnContext(ctx, "search cache write failed", "key", key, "err", err)
	}
}

// InvalidateAround drops every cached search whose radius covers pos and
// returns how many were dropped.
func (c *Cache) InvalidateAround(ctx context.Context, pos model.Position) (int, error) {
	cell, err := c.mapper.CellFor(pos, c.cfg.Res)
	if err != nil {
		return 0, fmt.Errorf("invalidate: %w", err)
	}
	members, err := c.index.Members(ctx, c.cfg.Res, cell)
	if err != nil {
		return 0, fmt.Errorf("invalidate: %w", err)
	}
	if err := c.store.Del(ctx, members...); err != nil {
		return 0, fmt.Errorf("invalidate: %w", err)
	}
	if err := c.index.Drop(ctx, c.cfg.Res, cell); err != nil {
		return len(members), fmt.Errorf("invalidate: %w", err)
	}
	c.logger.DebugContext(ctx, "search cache invalidated", "cell", cell, "searches", len(members))
	return len(members), nil
}
