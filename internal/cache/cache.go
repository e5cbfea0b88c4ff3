// Package cache holds the entities fetched from the SDK so later commands
// can refer to them by identifier. Entities enter only through successful
// fetches and leave only through Invalidate; there is no eviction and no
// fetch on miss.
package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/model"
)

type EntityCache struct {
	mu sync.RWMutex

	Buildings  *Store[model.Building]
	Floors     *Store[model.Floor]
	Events     *Store[model.Event]
	Categories *Store[model.POICategory]
	POIs       *Store[model.POI]
	Routes     *Store[model.Route]
	Geofences  *Store[model.Geofence]

	stores map[Kind]store
}

// NewEntityCache builds an empty cache. Metrics are registered on reg when
// it is not nil.
func NewEntityCache(reg prometheus.Registerer) (*EntityCache, error) {
	m, err := newCacheMetrics(reg)
	if err != nil {
		return nil, err
	}
	c := &EntityCache{}
	c.Buildings = newStore[model.Building](KindBuilding, &c.mu, m)
	c.Floors = newStore[model.Floor](KindFloor, &c.mu, m)
	c.Events = newStore[model.Event](KindEvent, &c.mu, m)
	c.Categories = newStore[model.POICategory](KindCategory, &c.mu, m)
	c.POIs = newStore[model.POI](KindPOI, &c.mu, m)
	c.Routes = newStore[model.Route](KindRoute, &c.mu, m)
	c.Geofences = newStore[model.Geofence](KindGeofence, &c.mu, m)
	c.stores = map[Kind]store{
		KindBuilding: c.Buildings,
		KindFloor:    c.Floors,
		KindEvent:    c.Events,
		KindCategory: c.Categories,
		KindPOI:      c.POIs,
		KindRoute:    c.Routes,
		KindGeofence: c.Geofences,
	}
	return c, nil
}

// Put stores value in the store of kind. The value must be the model type
// of that kind.
func (c *EntityCache) Put(kind Kind, id string, value any) error {
	s, ok := c.stores[kind]
	if !ok {
		return bridgeerr.InvalidEnum("kind", kind)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return s.putAny(id, value)
}

func (c *EntityCache) Get(kind Kind, id string) (any, error) {
	s, ok := c.stores[kind]
	if !ok {
		return nil, bridgeerr.InvalidEnum("kind", kind)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := s.getAny(id)
	if !ok {
		return nil, bridgeerr.CacheMiss(string(kind), id)
	}
	return v, nil
}

// Invalidate clears the stores of the given kinds, or every store when no
// kind is given. Unknown kinds are ignored.
func (c *EntityCache) Invalidate(kinds ...Kind) {
	if len(kinds) == 0 {
		kinds = Kinds
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range kinds {
		if s, ok := c.stores[k]; ok {
			s.reset()
		}
	}
}

// Category implements codec.Resolver.
func (c *EntityCache) Category(id string) (model.POICategory, bool) {
	return c.Categories.Lookup(id)
}

// Floor implements codec.Resolver.
func (c *EntityCache) Floor(id string) (model.Floor, bool) {
	return c.Floors.Lookup(id)
}
