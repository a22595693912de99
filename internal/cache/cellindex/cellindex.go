// Package cellindex records which cached searches cover which H3 cells, so a
// change at one position can drop every search that may have returned it.
package cellindex

import (
	"context"
	"fmt"
	"time"

	"github.com/tonari-app/tonari/internal/cache"
	"github.com/tonari-app/tonari/internal/cache/keys"
)

type CellIndex interface {
	Add(ctx context.Context, res int, cells []string, searchKey string, ttl time.Duration) error
	Members(ctx context.Context, res int, cell string) ([]string, error)
	Drop(ctx context.Context, res int, cell string) error
}

type redisCellIndex struct {
	cli cache.Store
}

func NewRedisIndex(cli cache.Store) CellIndex {
	return &redisCellIndex{cli: cli}
}

func (ci *redisCellIndex) Add(
	ctx context.Context,
	res int,
	cells []string,
	searchKey string,
	ttl time.Duration,
) error {
	if len(cells) == 0 {
		return nil
	}
	idx := make([]string, 0, len(cells))
	seen := make(map[string]struct{}, len(cells))
	for _, c := range cells {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		idx = append(idx, keys.CellIndexKey(res, c))
	}
	if err := ci.cli.SAdd(ctx, idx, searchKey, ttl); err != nil {
		return fmt.Errorf("cellindex add %d cells: %w", len(idx), err)
	}
	return nil
}

func (ci *redisCellIndex) Members(ctx context.Context, res int, cell string) ([]string, error) {
	key := keys.CellIndexKey(res, cell)
	members, err := ci.cli.SMembers(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cellindex members %q: %w", key, err)
	}
	return members, nil
}

func (ci *redisCellIndex) Drop(ctx context.Context, res int, cell string) error {
	key := keys.CellIndexKey(res, cell)
	if err := ci.cli.Del(ctx, key); err != nil {
		return fmt.Errorf("cellindex drop %q: %w", key, err)
	}
	return nil
}
