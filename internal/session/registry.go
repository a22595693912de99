package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tonari-app/tonari/internal/core/observability"
)

// Registry holds live sessions. Idle sessions expire after ttl and the least
// recently used ones are evicted beyond size.
type Registry struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, *Session]
	deps  Deps
	live  atomic.Int64
}

func NewRegistry(size int, ttl time.Duration, deps Deps) *Registry {
	r := &Registry{deps: deps}
	// the eviction callback runs under the cache lock, so it must not call
	// back into the cache
	r.cache = expirable.NewLRU[string, *Session](size, func(string, *Session) {
		observability.SetActiveSessions(int(r.live.Add(-1)))
	}, ttl)
	return r
}

// Get returns the session for id, creating one when id is unknown or not a
// valid session id. The returned bool reports creation.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.lookup(id); ok {
		return s, false
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	// an expired entry the reaper has not dropped yet would be overwritten
	// without an eviction; remove it so the live count stays balanced
	if r.cache.Contains(id) {
		r.cache.Remove(id)
	}
	s := New(id, r.deps)
	observability.SetActiveSessions(int(r.live.Add(1)))
	r.cache.Add(id, s)
	return s, true
}

// Lookup returns an existing session without creating one.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(id)
}

func (r *Registry) lookup(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	// Get refreshes recency; Add again to refresh the ttl as well
	s, ok := r.cache.Get(id)
	if ok {
		r.cache.Add(id, s)
	}
	return s, ok
}

func (r *Registry) Len() int { return r.cache.Len() }
