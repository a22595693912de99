package store

import (
	"sync"
	"sync/atomic"
)

// Store serialises dispatch and publishes each resulting state as an
// immutable snapshot.
type Store struct {
	mu  sync.Mutex
	cur atomic.Pointer[State]
}

func New() *Store {
	s := &Store{}
	st := Initial()
	s.cur.Store(&st)
	return s
}

// State returns the current snapshot. Callers must not modify it.
func (s *Store) State() *State {
	return s.cur.Load()
}

func (s *Store) Dispatch(ev Event) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(ev)
}

// DispatchIf applies evs only when cond holds for the current snapshot. The
// check and the transitions are atomic with respect to other dispatches.
func (s *Store) DispatchIf(cond func(*State) bool, evs ...Event) (*State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.cur.Load()
	if !cond(cur) {
		return cur, false
	}
	return s.apply(evs...), true
}

// DispatchAll applies evs as one step; no snapshot between them is published.
func (s *Store) DispatchAll(evs ...Event) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(evs...)
}

func (s *Store) apply(evs ...Event) *State {
	next := *s.cur.Load()
	for _, ev := range evs {
		next = Reduce(next, ev)
	}
	s.cur.Store(&next)
	return &next
}
