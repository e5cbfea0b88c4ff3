package cache

import (
	"maps"
	"slices"
	"sync"

	"positioning-bridge/internal/bridgeerr"
)

// Store is the typed store of one entity kind. Every store of an
// EntityCache shares the cache's lock.
type Store[V any] struct {
	kind    Kind
	mu      *sync.RWMutex
	items   map[string]V
	metrics *cacheMetrics
}

func newStore[V any](kind Kind, mu *sync.RWMutex, m *cacheMetrics) *Store[V] {
	return &Store[V]{kind: kind, mu: mu, items: make(map[string]V), metrics: m}
}

// Put stores v under id, overwriting any previous value.
func (s *Store[V]) Put(id string, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(id, v)
}

// PutAll stores every item under the id returned by key.
func (s *Store[V]) PutAll(items []V, key func(V) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.put(key(item), item)
	}
}

// Get returns the value stored under id, or a CacheMiss naming the kind and id.
func (s *Store[V]) Get(id string) (V, error) {
	v, ok := s.Lookup(id)
	if !ok {
		return v, bridgeerr.CacheMiss(string(s.kind), id)
	}
	return v, nil
}

func (s *Store[V]) Lookup(id string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(id)
}

func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Values returns a snapshot of the store ordered by id.
func (s *Store[V]) Values() []V {
	return s.Filter(func(V) bool { return true })
}

// Filter returns the values matching keep, ordered by id.
func (s *Store[V]) Filter(keep func(V) bool) []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]V, 0, len(s.items))
	for _, id := range slices.Sorted(maps.Keys(s.items)) {
		if v := s.items[id]; keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (s *Store[V]) put(id string, v V) {
	s.items[id] = v
	s.metrics.puts.WithLabelValues(string(s.kind)).Inc()
	s.metrics.entries.WithLabelValues(string(s.kind)).Set(float64(len(s.items)))
}

func (s *Store[V]) lookup(id string) (V, bool) {
	v, ok := s.items[id]
	if ok {
		s.metrics.hits.WithLabelValues(string(s.kind)).Inc()
	} else {
		s.metrics.misses.WithLabelValues(string(s.kind)).Inc()
	}
	return v, ok
}

// store is the untyped view EntityCache uses for kind-keyed access. Its
// methods expect the shared lock to be held.
type store interface {
	putAny(id string, v any) error
	getAny(id string) (any, bool)
	reset()
}

func (s *Store[V]) putAny(id string, v any) error {
	typed, ok := v.(V)
	if !ok {
		return bridgeerr.Validation("cache.put", "%s store cannot hold %T", s.kind, v)
	}
	s.put(id, typed)
	return nil
}

func (s *Store[V]) getAny(id string) (any, bool) {
	return s.lookup(id)
}

func (s *Store[V]) reset() {
	clear(s.items)
	s.metrics.invalidations.WithLabelValues(string(s.kind)).Inc()
	s.metrics.entries.WithLabelValues(string(s.kind)).Set(0)
}
