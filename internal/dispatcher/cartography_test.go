package dispatcher

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/codec"
	"positioning-bridge/internal/sdk"
)

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t)
	res := f.run(t, "teleport", nil)
	assert.ErrorIs(t, res.Err(), bridgeerr.ErrValidation)
	assert.Equal(t, "VALIDATION_ERROR", res.Error["code"])
	assert.Equal(t, "teleport", res.ID)
}

func TestFetchThenInvalidateFloorsOnly(t *testing.T) {
	f := newFixture(t)

	res := f.run(t, "fetchBuildings", nil)
	require.NoError(t, res.Err())
	assert.Len(t, objects(t, res.Data), 2)
	assert.Equal(t, 2, f.cache.Buildings.Len())

	res = f.run(t, "fetchFloorsFromBuilding", "B1")
	require.NoError(t, res.Err())
	floors := objects(t, res.Data)
	require.Len(t, floors, 2)
	for _, fl := range floors {
		assert.Equal(t, "B1", fl["buildingId"])
	}
	assert.Equal(t, 2, f.cache.Floors.Len())

	res = f.run(t, "invalidateCache", "floor")
	require.NoError(t, res.Err())
	assert.Equal(t, 0, f.cache.Floors.Len())
	assert.Equal(t, 2, f.cache.Buildings.Len())
}

func TestFetchForUnfetchedBuildingIsCacheMiss(t *testing.T) {
	f := newFixture(t)
	commands := []string{
		"fetchFloorsFromBuilding",
		"fetchIndoorPOIsFromBuilding",
		"fetchOutdoorPOIsFromBuilding",
		"fetchEventsFromBuilding",
		"fetchGeofencesFromBuilding",
		"fetchBuildingInfo",
	}
	for _, name := range commands {
		t.Run(name, func(t *testing.T) {
			res := f.run(t, name, map[string]any{"buildingId": "B1"})
			require.ErrorIs(t, res.Err(), bridgeerr.ErrCacheMiss)
			assert.Equal(t, "building", res.Error["kind"])
			assert.Equal(t, "B1", res.Error["id"])
		})
	}
	assert.Zero(t, f.sdk.TotalCalls())
}

func TestInvalidateCacheIsIdempotent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "fetchBuildings", nil).Err())
	require.NoError(t, f.run(t, "fetchPoiCategories", nil).Err())

	first := f.run(t, "invalidateCache", nil)
	second := f.run(t, "invalidateCache", map[string]any{})
	require.NoError(t, first.Err())
	require.NoError(t, second.Err())
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, 0, f.cache.Buildings.Len())
	assert.Equal(t, 0, f.cache.Categories.Len())

	require.NoError(t, f.run(t, "fetchBuildings", nil).Err())
	res := f.run(t, "invalidateCache", "parking")
	require.NoError(t, res.Err(), "an unknown kind is ignored")
	assert.Equal(t, first.Data, res.Data)
	assert.Equal(t, 2, f.cache.Buildings.Len())

	require.NoError(t, f.run(t, "invalidateCache", 42).Err())
	res = f.run(t, "invalidateCache", "Buildings")
	require.NoError(t, res.Err())
	assert.Equal(t, 0, f.cache.Buildings.Len())
}

func TestFetchBuildingInfo(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "fetchBuildings", nil).Err())
	require.NoError(t, f.run(t, "fetchPoiCategories", nil).Err())

	res := f.run(t, "fetchBuildingInfo", map[string]any{"buildingIdentifier": "B1"})
	require.NoError(t, res.Err())
	info := res.Data.(codec.Object)
	assert.Equal(t, "B1", info["building"].(codec.Object)["id"])
	assert.Len(t, info["floors"], 2)
	assert.Len(t, info["events"], 1)
	assert.Len(t, info["geofences"], 1)

	indoor := objects(t, info["indoorPOIs"])
	require.Len(t, indoor, 2)
	assert.Equal(t, true, indoor[0]["resolved"], "P1 has a cached category and floor")
	assert.Equal(t, false, indoor[1]["resolved"], "P2 references an unknown category")
	assert.Equal(t, "C9", indoor[1]["categoryId"])
	assert.Equal(t, true, objects(t, info["outdoorPOIs"])[0]["resolved"])

	assert.Equal(t, 2, f.cache.Floors.Len())
	assert.Equal(t, 3, f.cache.POIs.Len())
	assert.Equal(t, 1, f.cache.Events.Len())
	assert.Equal(t, 1, f.cache.Geofences.Len())
}

func TestFetchBuildingInfoFailureLeavesCacheUntouched(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "fetchBuildings", nil).Err())
	f.sdk.FetchErr = &sdk.Error{Code: 503, Message: "venue service unavailable"}

	res := f.run(t, "fetchBuildingInfo", "B1")
	require.ErrorIs(t, res.Err(), bridgeerr.ErrSDKOperation)
	assert.Equal(t, 503, res.Error["sdkCode"])
	assert.Equal(t, 0, f.cache.Floors.Len())
}

func TestFetchErrorsArePropagated(t *testing.T) {
	f := newFixture(t)
	f.sdk.FetchErr = &sdk.Error{Code: 401, Message: "invalid credentials"}

	res := f.run(t, "fetchBuildings", nil)
	require.ErrorIs(t, res.Err(), bridgeerr.ErrSDKOperation)
	assert.Equal(t, 401, res.Error["sdkCode"])
	assert.Contains(t, res.Error["message"], "invalid credentials")
	assert.Equal(t, 0, f.cache.Buildings.Len())
}

func TestFetchPoiCategoryIcon(t *testing.T) {
	f := newFixture(t)

	res := f.run(t, "fetchPoiCategoryIcon", map[string]any{"categoryId": "C1"})
	require.ErrorIs(t, res.Err(), bridgeerr.ErrCacheMiss)
	assert.Zero(t, f.sdk.Calls("FetchPOICategoryIcon"))

	require.NoError(t, f.run(t, "fetchPoiCategories", nil).Err())
	res = f.run(t, "fetchPoiCategoryIcon", map[string]any{"categoryId": "C1", "selected": true})
	require.NoError(t, res.Err())
	raw, err := base64.StdEncoding.DecodeString(res.Data.(codec.Object)["data"].(string))
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(raw[:4]))
}

func TestFetchMapFromFloor(t *testing.T) {
	f := newFixture(t)
	res := f.run(t, "fetchMapFromFloor", "F1")
	require.ErrorIs(t, res.Err(), bridgeerr.ErrCacheMiss)

	require.NoError(t, f.run(t, "fetchBuildings", nil).Err())
	require.NoError(t, f.run(t, "fetchFloorsFromBuilding", "B1").Err())
	res = f.run(t, "fetchMapFromFloor", map[string]any{"floorId": "F1"})
	require.NoError(t, res.Err())
	assert.NotEmpty(t, res.Data.(codec.Object)["data"])
}

func TestCheckIfPointIsInsideGeofence(t *testing.T) {
	f := newFixture(t)
	point := func(lat, lng float64) map[string]any {
		return map[string]any{"point": codec.EncodePoint(indoor("B1", "F1", lat, lng))}
	}

	res := f.run(t, "checkIfPointIsInsideGeofence", point(42.8782, -8.5447))
	require.NoError(t, res.Err())
	assert.Equal(t, false, res.Data.(codec.Object)["isInsideGeofence"], "geofences not fetched yet")

	require.NoError(t, f.run(t, "fetchBuildings", nil).Err())
	require.NoError(t, f.run(t, "fetchGeofencesFromBuilding", "B1").Err())

	res = f.run(t, "checkIfPointIsInsideGeofence", point(42.8782, -8.5447))
	require.NoError(t, res.Err())
	assert.Equal(t, codec.Object{
		"isInsideGeofence": true,
		"geofence":         codec.Object{"identifier": "G1", "name": "Lobby"},
	}, res.Data)

	res = f.run(t, "checkIfPointIsInsideGeofence", point(42.8790, -8.5447))
	require.NoError(t, res.Err())
	assert.Equal(t, false, res.Data.(codec.Object)["isInsideGeofence"])

	res = f.run(t, "checkIfPointIsInsideGeofence", map[string]any{"point": "lobby"})
	assert.ErrorIs(t, res.Err(), bridgeerr.ErrMalformedInput)
}
