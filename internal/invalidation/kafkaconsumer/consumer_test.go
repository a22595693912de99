package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IBM/sarama"

	"github.com/tonari-app/tonari/internal/core/model"
	"github.com/tonari-app/tonari/internal/invalidation"
)

type fakeInvalidator struct {
	failFirst atomic.Bool
	mu        sync.Mutex
	seen      []model.Position
}

func (f *fakeInvalidator) InvalidateAround(_ context.Context, pos model.Position) (int, error) {
	if f.failFirst.Load() {
		f.failFirst.Store(false)
		return 0, errors.New("boom")
	}
	f.mu.Lock()
	f.seen = append(f.seen, pos)
	f.mu.Unlock()
	return 1, nil
}

func (f *fakeInvalidator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

type sess struct {
	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *sess) Claims() map[string][]int32 { return nil }
func (s *sess) MemberID() string           { return "" }
func (s *sess) GenerationID() int32        { return 0 }
func (s *sess) MarkMessage(m *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	s.marked = append(s.marked, m.Offset)
	s.mu.Unlock()
}
func (s *sess) ResetOffset(_ string, _ int32, _ int64, _ string) {}
func (s *sess) MarkOffset(_ string, _ int32, _ int64, _ string)  {}
func (s *sess) Context() context.Context                         { return s.ctx }
func (s *sess) Errors() <-chan error                             { return nil }
func (s *sess) Commit()                                          {}

type claim struct {
	part int32
	msgs chan *sarama.ConsumerMessage
}

func (c *claim) Topic() string                            { return "facility-changes" }
func (c *claim) Partition() int32                         { return c.part }
func (c *claim) InitialOffset() int64                     { return 0 }
func (c *claim) HighWaterMarkOffset() int64               { return 0 }
func (c *claim) Messages() <-chan *sarama.ConsumerMessage { return c.msgs }

func eventBytes(orig string, rev uint64) []byte {
	ev := invalidation.Event{
		Version:  1,
		Op:       invalidation.OpUpdate,
		ID:       model.ID{SourceID: "src", OriginalID: orig},
		Position: model.Position{Lat: 52.52, Lon: 13.405},
		Rev:      rev,
		TS:       time.Now().UTC(),
	}
	b, _ := json.Marshal(ev)
	return b
}

func newConsumerForTest(inv invalidation.Invalidator) *Consumer {
	cfg := Config{Brokers: []string{"x"}, Topic: "facility-changes", GroupID: "g"}
	return New(cfg, nil, nil, inv)
}

func TestSinglePartition_OrderAndCommitAfterWork(t *testing.T) {
	inv := &fakeInvalidator{}
	c := newConsumerForTest(inv)

	g := &groupHandler{process: c.ProcessOne, logger: c.logger}
	s := &sess{ctx: t.Context()}
	ch := make(chan *sarama.ConsumerMessage, 2)
	ch <- &sarama.ConsumerMessage{Topic: "facility-changes", Offset: 10, Value: eventBytes("a", 0)}
	ch <- &sarama.ConsumerMessage{Topic: "facility-changes", Offset: 11, Value: eventBytes("b", 0)}
	close(ch)

	if err := g.ConsumeClaim(s, &claim{msgs: ch}); err != nil {
		t.Fatalf("ConsumeClaim: %v", err)
	}
	if len(s.marked) != 2 || s.marked[0] != 10 || s.marked[1] != 11 {
		t.Fatalf("marked offsets=%v want [10 11]", s.marked)
	}
	if inv.count() != 2 {
		t.Fatalf("invalidations=%d want 2", inv.count())
	}
}

func TestRetry_CommitOnceAfterSuccess(t *testing.T) {
	inv := &fakeInvalidator{}
	inv.failFirst.Store(true)
	c := newConsumerForTest(inv)
	ctx := context.Background()

	msg := &sarama.ConsumerMessage{Topic: "facility-changes", Offset: 5, Value: eventBytes("a", 3)}
	if err := c.ProcessOne(ctx, msg); err == nil {
		t.Fatalf("expected error on first attempt")
	}

	// the failed revision must not be remembered as applied
	s := &sess{ctx: ctx}
	g := &groupHandler{process: c.ProcessOne, logger: c.logger}
	ch := make(chan *sarama.ConsumerMessage, 1)
	ch <- msg
	close(ch)
	if err := g.ConsumeClaim(s, &claim{msgs: ch}); err != nil {
		t.Fatalf("ConsumeClaim second attempt: %v", err)
	}
	if len(s.marked) != 1 || s.marked[0] != 5 || inv.count() != 1 {
		t.Fatalf("marked=%v invalidations=%d", s.marked, inv.count())
	}
}

func TestStaleRevisionsSkipped(t *testing.T) {
	inv := &fakeInvalidator{}
	c := newConsumerForTest(inv)
	ctx := context.Background()

	for i, rev := range []uint64{2, 1, 2, 3, 0, 0} {
		msg := &sarama.ConsumerMessage{Offset: int64(i), Value: eventBytes("a", rev)}
		if err := c.ProcessOne(ctx, msg); err != nil {
			t.Fatal(err)
		}
	}
	// 2, 3 and both unversioned events
	if inv.count() != 4 {
		t.Fatalf("invalidations=%d want 4", inv.count())
	}
}

func TestPoisonMessagesDoNotBlock(t *testing.T) {
	inv := &fakeInvalidator{}
	c := newConsumerForTest(inv)
	g := &groupHandler{process: c.ProcessOne, logger: c.logger}
	s := &sess{ctx: t.Context()}

	bad, _ := json.Marshal(invalidation.Event{Version: 9})
	ch := make(chan *sarama.ConsumerMessage, 3)
	ch <- &sarama.ConsumerMessage{Offset: 1, Value: []byte("{not json")}
	ch <- &sarama.ConsumerMessage{Offset: 2, Value: bad}
	ch <- &sarama.ConsumerMessage{Offset: 3, Value: eventBytes("a", 0)}
	close(ch)

	if err := g.ConsumeClaim(s, &claim{msgs: ch}); err != nil {
		t.Fatalf("ConsumeClaim: %v", err)
	}
	if len(s.marked) != 3 || inv.count() != 1 {
		t.Fatalf("marked=%v invalidations=%d", s.marked, inv.count())
	}
}

func TestMultiPartition_Parallel(t *testing.T) {
	inv := &fakeInvalidator{}
	c := newConsumerForTest(inv)
	g := &groupHandler{process: c.ProcessOne, logger: c.logger}
	s := &sess{ctx: t.Context()}

	p0 := make(chan *sarama.ConsumerMessage, 2)
	p1 := make(chan *sarama.ConsumerMessage, 2)
	p0 <- &sarama.ConsumerMessage{Partition: 0, Offset: 1, Value: eventBytes("a", 0)}
	p0 <- &sarama.ConsumerMessage{Partition: 0, Offset: 2, Value: eventBytes("b", 0)}
	p1 <- &sarama.ConsumerMessage{Partition: 1, Offset: 1, Value: eventBytes("c", 0)}
	p1 <- &sarama.ConsumerMessage{Partition: 1, Offset: 2, Value: eventBytes("d", 0)}
	close(p0)
	close(p1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = g.ConsumeClaim(s, &claim{part: 0, msgs: p0}) }()
	go func() { defer wg.Done(); _ = g.ConsumeClaim(s, &claim{part: 1, msgs: p1}) }()
	wg.Wait()

	if len(s.marked) != 4 {
		t.Fatalf("expected 4 marks total; got %v", s.marked)
	}
}
