package searchcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/tonari-app/tonari/internal/attributes"
	"github.com/tonari-app/tonari/internal/cache/redisstore"
	"github.com/tonari-app/tonari/internal/core/model"
	h3mapper "github.com/tonari-app/tonari/internal/mapper/h3"
	"github.com/tonari-app/tonari/internal/merge"
)

type countingSearcher struct {
	calls atomic.Int32
	err   error
}

func (s *countingSearcher) Search(_ context.Context, pos model.Position, _ merge.Options) ([]model.Facility, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []model.Facility{{
		Attributes: attributes.Set{
			attributes.IsOpen:           attributes.Bool(true),
			attributes.WheelchairAccess: attributes.Enum("noSteps"),
		},
		Features: model.Features{
			Coord:    pos,
			Distance: 12,
			Name:     "Hbf",
			ID:       model.ID{SourceID: "src", OriginalID: "1"},
		},
	}}, nil
}

func newCache(t *testing.T) (*Cache, *countingSearcher, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cli, err := redisstore.New(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("redisstore.New: %v", err)
	}
	t.Cleanup(func() { _ = cli.Close() })

	next := &countingSearcher{}
	c := New(next, cli, h3mapper.New(), Config{Res: 8, TTL: time.Minute, OpTimeout: time.Second}, nil)
	return c, next, mr
}

var (
	berlin = model.Position{Lat: 52.5200, Lon: 13.4050}
	munich = model.Position{Lat: 48.1370, Lon: 11.5750}
)

func TestSearch_HitAfterMiss(t *testing.T) {
	c, next, _ := newCache(t)
	ctx := context.Background()

	first, err := c.Search(ctx, berlin, merge.Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Search(ctx, berlin, merge.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if next.calls.Load() != 1 {
		t.Fatalf("upstream calls=%d want 1", next.calls.Load())
	}
	if len(second) != 1 || !second[0].Attributes.Equal(first[0].Attributes) || second[0].Features != first[0].Features {
		t.Fatalf("cached result differs:\n%+v\n%+v", first, second)
	}

	if _, err := c.Search(ctx, berlin, merge.Options{IncludePlacesWithoutAccessibility: true}); err != nil {
		t.Fatal(err)
	}
	if next.calls.Load() != 2 {
		t.Fatal("different options must not share an entry")
	}
}

func TestSearch_ExpiresWithTTL(t *testing.T) {
	c, next, mr := newCache(t)
	ctx := context.Background()
	_, _ = c.Search(ctx, berlin, merge.Options{})
	mr.FastForward(2 * time.Minute)
	_, _ = c.Search(ctx, berlin, merge.Options{})
	if next.calls.Load() != 2 {
		t.Fatalf("upstream calls=%d want 2", next.calls.Load())
	}
}

func TestSearch_ErrorsAreNotCached(t *testing.T) {
	c, next, _ := newCache(t)
	next.err = errors.New("boom")
	if _, err := c.Search(context.Background(), berlin, merge.Options{}); err == nil {
		t.Fatal("expected error")
	}
	next.err = nil
	if _, err := c.Search(context.Background(), berlin, merge.Options{}); err != nil {
		t.Fatal(err)
	}
	if next.calls.Load() != 2 {
		t.Fatal("failed search must not be cached")
	}
}

func TestSearch_RedisDownFallsThrough(t *testing.T) {
	c, next, mr := newCache(t)
	mr.Close()
	for range 2 {
		if _, err := c.Search(context.Background(), berlin, merge.Options{}); err != nil {
			t.Fatalf("redis outage must not fail the search: %v", err)
		}
	}
	if next.calls.Load() != 2 {
		t.Fatalf("upstream calls=%d want 2", next.calls.Load())
	}
}

func TestInvalidateAround(t *testing.T) {
	c, next, _ := newCache(t)
	ctx := context.Background()

	_, _ = c.Search(ctx, berlin, merge.Options{})
	_, _ = c.Search(ctx, munich, merge.Options{})

	// a change ~500 m from the berlin search
	n, err := c.InvalidateAround(ctx, model.Position{Lat: berlin.Lat + 0.0045, Lon: berlin.Lon})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("dropped=%d want 1", n)
	}

	_, _ = c.Search(ctx, berlin, merge.Options{})
	_, _ = c.Search(ctx, munich, merge.Options{})
	if next.calls.Load() != 3 {
		t.Fatalf("upstream calls=%d want 3 (berlin refetched, munich cached)", next.calls.Load())
	}
}

func TestInvalidateAround_InvalidPosition(t *testing.T) {
	c, _, _ := newCache(t)
	if _, err := c.InvalidateAround(context.Background(), model.PositionFromStr("x")); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch_ColdCellsAreNotStored(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	cli, err := redisstore.New(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("redisstore.New: %v", err)
	}
	t.Cleanup(func() { _ = cli.Close() })

	// every reading moves the clock a little, like real back to back searches
	var mu sync.Mutex
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(50 * time.Millisecond)
		return now
	}

	next := &countingSearcher{}
	c := New(next, cli, h3mapper.New(), Config{
		Res: 8, TTL: time.Minute, OpTimeout: time.Second,
		MinHotness: 2, HotHalfLife: time.Hour, Now: clock,
	}, nil)
	ctx := context.Background()

	for range 3 {
		if _, err := c.Search(ctx, berlin, merge.Options{}); err != nil {
			t.Fatal(err)
		}
	}
	// the first search is cold, the second is stored, the third hits
	if got := next.calls.Load(); got != 2 {
		t.Fatalf("upstream calls=%d want 2", got)
	}
}
