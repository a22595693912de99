package cellindex

import (
	"context"
	"slices"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/tonari-app/tonari/internal/cache/keys"
	"github.com/tonari-app/tonari/internal/cache/redisstore"
)

func newMini(t *testing.T) (*redisstore.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)

	cli, err := redisstore.New(ctx, mr.Addr())
	if err != nil {
		t.Fatalf("redisstore.New: %v", err)
	}
	t.Cleanup(func() { _ = cli.Close() })
	return cli, mr
}

func TestAddMembersDrop(t *testing.T) {
	cli, mr := newMini(t)
	ci := NewRedisIndex(cli)
	ctx := context.Background()

	if err := ci.Add(ctx, 8, []string{"c1", "c2", "c1"}, "s1", time.Minute); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := ci.Add(ctx, 8, []string{"c2"}, "s2", time.Minute); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := ci.Members(ctx, 8, "c2")
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	slices.Sort(got)
	if !slices.Equal(got, []string{"s1", "s2"}) {
		t.Fatalf("members=%v", got)
	}
	if !mr.Exists(keys.CellIndexKey(8, "c1")) {
		t.Fatal("index key for c1 missing")
	}

	if err := ci.Drop(ctx, 8, "c2"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	got, _ = ci.Members(ctx, 8, "c2")
	if len(got) != 0 {
		t.Fatalf("expected empty after drop, got %v", got)
	}
}

func TestMembers_UnknownCellIsEmpty(t *testing.T) {
	cli, _ := newMini(t)
	got, err := NewRedisIndex(cli).Members(context.Background(), 8, "nope")
	if err != nil || len(got) != 0 {
		t.Fatalf("got=%v err=%v", got, err)
	}
}
