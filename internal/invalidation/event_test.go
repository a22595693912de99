package invalidation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tonari-app/tonari/internal/core/model"
)

func mustTS() time.Time { return time.Date(2025, 10, 26, 12, 30, 45, 0, time.UTC) }

var (
	testID  = model.ID{SourceID: "src", OriginalID: "1"}
	testPos = model.Position{Lat: 52.52, Lon: 13.405}
)

func TestEvent_Validate(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		ok   bool
	}{
		{"update", Event{Version: 1, Op: OpUpdate, ID: testID, Position: testPos, TS: mustTS()}, true},
		{"insert without id", Event{Version: 1, Op: OpInsert, Position: testPos, TS: mustTS()}, true},
		{"delete without id", Event{Version: 1, Op: OpDelete, Position: testPos, TS: mustTS()}, false},
		{"bad version", Event{Version: 2, Op: OpUpdate, ID: testID, Position: testPos, TS: mustTS()}, false},
		{"bad op", Event{Version: 1, Op: "upsert", ID: testID, Position: testPos, TS: mustTS()}, false},
		{"bad position", Event{Version: 1, Op: OpUpdate, ID: testID, Position: model.Position{Lat: 91}, TS: mustTS()}, false},
		{"no ts", Event{Version: 1, Op: OpUpdate, ID: testID, Position: testPos}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ev.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("err=%v want ok=%v", err, tt.ok)
			}
		})
	}
}

type fakeInvalidator struct {
	got []model.Position
	err error
}

func (f *fakeInvalidator) InvalidateAround(_ context.Context, pos model.Position) (int, error) {
	f.got = append(f.got, pos)
	return 1, f.err
}

func TestLocal_FacilityChanged(t *testing.T) {
	inv := &fakeInvalidator{}
	l := NewLocal(inv, nil)
	l.FacilityChanged(context.Background(), OpUpdate, testID, testPos)
	if len(inv.got) != 1 || !inv.got[0].Equal(testPos) {
		t.Fatalf("invalidated=%v", inv.got)
	}

	inv.err = errors.New("redis down")
	l.FacilityChanged(context.Background(), OpUpdate, testID, testPos)

	if err := l.Apply(context.Background(), Event{Version: 1, Op: OpUpdate}); err == nil {
		t.Fatal("invalid event must be rejected")
	}
}
