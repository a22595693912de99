package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRegistry_MintsAndReuses(t *testing.T) {
	r := NewRegistry(10, time.Minute, Deps{})

	s, created := r.Get("")
	if !created {
		t.Fatal("empty id must create a session")
	}
	if _, err := uuid.Parse(s.ID()); err != nil {
		t.Fatalf("minted id %q is not a uuid", s.ID())
	}

	again, created := r.Get(s.ID())
	if created || again != s {
		t.Fatal("known id must return the same session")
	}

	forged, created := r.Get("not-a-uuid")
	if !created || forged.ID() == "not-a-uuid" {
		t.Fatalf("invalid ids must be replaced, got %q", forged.ID())
	}
}

func TestRegistry_UnknownValidIDIsKept(t *testing.T) {
	r := NewRegistry(10, time.Minute, Deps{})
	id := uuid.NewString()
	s, created := r.Get(id)
	if !created || s.ID() != id {
		t.Fatalf("valid client id must be adopted: %q", s.ID())
	}
	if _, ok := r.Lookup(id); !ok {
		t.Fatal("Lookup after Get")
	}
}

func TestRegistry_EvictsBeyondSize(t *testing.T) {
	r := NewRegistry(2, time.Minute, Deps{})
	a, _ := r.Get("")
	r.Get("")
	r.Get("")
	if r.Len() != 2 {
		t.Fatalf("len=%d", r.Len())
	}
	if _, ok := r.Lookup(a.ID()); ok {
		t.Fatal("oldest session should be evicted")
	}
}

func TestRegistry_Expires(t *testing.T) {
	r := NewRegistry(10, 50*time.Millisecond, Deps{})
	s, _ := r.Get("")
	time.Sleep(120 * time.Millisecond)
	if _, ok := r.Lookup(s.ID()); ok {
		t.Fatal("idle session should expire")
	}
}

func TestRegistry_ExpiredIDComesBackCountsOnce(t *testing.T) {
	r := NewRegistry(10, 30*time.Millisecond, Deps{})
	id := uuid.NewString()
	first, _ := r.Get(id)
	time.Sleep(40 * time.Millisecond)

	again, created := r.Get(id)
	if !created || again == first {
		t.Fatal("an expired session must be replaced")
	}
	if n := r.live.Load(); n != 1 {
		t.Fatalf("live=%d want 1", n)
	}
	if r.Len() != 1 {
		t.Fatalf("len=%d want 1", r.Len())
	}
}
