package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/model"
)

func newTestCache(t *testing.T) *EntityCache {
	t.Helper()
	c, err := NewEntityCache(nil)
	require.NoError(t, err)
	return c
}

func TestStoreGetMissNamesKindAndID(t *testing.T) {
	c := newTestCache(t)

	_, err := c.Floors.Get("F404")
	require.ErrorIs(t, err, bridgeerr.ErrCacheMiss)

	var be *bridgeerr.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "floor", be.Kind)
	assert.Equal(t, "F404", be.ID)
	assert.Equal(t, "floor F404 not found, fetch it first", be.Error())
}

func TestStorePutOverwrites(t *testing.T) {
	c := newTestCache(t)
	c.Buildings.Put("B1", model.Building{ID: "B1", Name: "old"})
	c.Buildings.Put("B1", model.Building{ID: "B1", Name: "new"})

	b, err := c.Buildings.Get("B1")
	require.NoError(t, err)
	assert.Equal(t, "new", b.Name)
	assert.Equal(t, 1, c.Buildings.Len())
}

func TestStoreValuesAreOrderedByID(t *testing.T) {
	c := newTestCache(t)
	floors := []model.Floor{
		{ID: "F3", BuildingID: "B1"},
		{ID: "F1", BuildingID: "B1"},
		{ID: "F2", BuildingID: "B2"},
	}
	c.Floors.PutAll(floors, func(f model.Floor) string { return f.ID })

	var ids []string
	for _, f := range c.Floors.Values() {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"F1", "F2", "F3"}, ids)

	inB1 := c.Floors.Filter(func(f model.Floor) bool { return f.BuildingID == "B1" })
	assert.Len(t, inB1, 2)
}

func TestEntityCacheKindKeyedAccess(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Put(KindPOI, "P1", model.POI{ID: "P1"}))
	v, err := c.Get(KindPOI, "P1")
	require.NoError(t, err)
	assert.Equal(t, model.POI{ID: "P1"}, v)

	err = c.Put(KindPOI, "P2", model.Floor{ID: "P2"})
	assert.ErrorIs(t, err, bridgeerr.ErrValidation)

	_, err = c.Get(KindRoute, "R1")
	assert.ErrorIs(t, err, bridgeerr.ErrCacheMiss)

	_, err = c.Get(Kind("parking"), "X")
	assert.ErrorIs(t, err, bridgeerr.ErrInvalidEnumValue)
}

func TestInvalidateSingleKindKeepsOthers(t *testing.T) {
	c := newTestCache(t)
	c.Buildings.Put("B1", model.Building{ID: "B1"})
	c.Buildings.Put("B2", model.Building{ID: "B2"})
	c.Floors.Put("F1", model.Floor{ID: "F1", BuildingID: "B1"})

	c.Invalidate(KindFloor)

	assert.Equal(t, 0, c.Floors.Len())
	assert.Equal(t, 2, c.Buildings.Len())
}

func TestInvalidateAllIsIdempotent(t *testing.T) {
	c := newTestCache(t)
	c.Buildings.Put("B1", model.Building{ID: "B1"})
	c.Routes.Put("R1", model.Route{ID: "R1"})

	c.Invalidate()
	c.Invalidate()

	for _, k := range Kinds {
		_, err := c.Get(k, "B1")
		assert.ErrorIs(t, err, bridgeerr.ErrCacheMiss, "kind %s", k)
	}
	assert.Equal(t, 0, c.Buildings.Len())
	assert.Equal(t, 0, c.Routes.Len())
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	for in, want := range map[string]Kind{"pois": KindPOI, "Categories": KindCategory, " floor ": KindFloor} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseKind("venue")
	assert.ErrorIs(t, err, bridgeerr.ErrInvalidEnumValue)
}

func TestResolver(t *testing.T) {
	c := newTestCache(t)
	c.Categories.Put("C1", model.POICategory{ID: "C1"})

	_, ok := c.Category("C1")
	assert.True(t, ok)
	_, ok = c.Floor("F1")
	assert.False(t, ok)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewEntityCache(reg)
	require.NoError(t, err)

	c.Buildings.Put("B1", model.Building{ID: "B1"})
	_, _ = c.Buildings.Get("B1")
	_, _ = c.Buildings.Get("B2")
	c.Invalidate(KindBuilding)

	m := c.Buildings.metrics
	assert.Equal(t, 1.0, testutil.ToFloat64(m.puts.WithLabelValues("building")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hits.WithLabelValues("building")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses.WithLabelValues("building")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invalidations.WithLabelValues("building")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.entries.WithLabelValues("building")))

	_, err = NewEntityCache(reg)
	assert.Error(t, err, "registering twice on one registry must fail")
}

func TestConcurrentAccess(t *testing.T) {
	c := newTestCache(t)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				id := fmt.Sprintf("P%d-%d", i, j)
				c.POIs.Put(id, model.POI{ID: id})
				_, _ = c.POIs.Get(id)
				if j%25 == 0 {
					c.Invalidate(KindEvent)
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, c.POIs.Len())
}
