package dispatcher

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"positioning-bridge/internal/adapter"
	"positioning-bridge/internal/cache"
	"positioning-bridge/internal/codec"
	"positioning-bridge/internal/events"
	"positioning-bridge/internal/model"
	"positioning-bridge/internal/sdk/sdkfake"
)

type fixture struct {
	d       *Dispatcher
	sdk     *sdkfake.SDK
	cache   *cache.EntityCache
	emitter *events.Emitter
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	em, err := events.NewEmitter(64, logger, nil)
	require.NoError(t, err)
	c, err := cache.NewEntityCache(nil)
	require.NoError(t, err)
	fake := venue()
	d := New(fake, c, adapter.New(em, c, logger), em, logger)
	t.Cleanup(func() {
		d.Close()
		em.Close()
	})
	return fixture{d: d, sdk: fake, cache: c, emitter: em}
}

func (f fixture) run(t *testing.T, name string, args any) Result {
	t.Helper()
	return f.runCmd(t, Command{ID: name, Name: name, Args: args})
}

func (f fixture) runCmd(t *testing.T, cmd Command) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := f.d.Dispatch(cmd).Wait(ctx)
	require.NoError(t, err, "command %s did not complete", cmd.Name)
	return res
}

func (f fixture) next(t *testing.T) events.Event {
	t.Helper()
	select {
	case evt := <-f.emitter.Events():
		return evt
	case <-time.After(time.Second):
		t.Fatal("expected an event")
		return events.Event{}
	}
}

// drain returns every event already emitted.
func (f fixture) drain() []events.Event {
	var out []events.Event
	for {
		select {
		case evt := <-f.emitter.Events():
			out = append(out, evt)
		default:
			return out
		}
	}
}

func building(id string, lat float64) model.Building {
	return model.Building{
		ID:         id,
		Name:       "Building " + id,
		Center:     model.Coordinate{Latitude: lat, Longitude: -8.5448},
		Dimensions: model.Dimensions{Width: 100, Height: 60},
	}
}

func indoor(buildingID, floorID string, lat, lng float64) model.Point {
	return model.Point{
		BuildingID: buildingID,
		FloorID:    floorID,
		Coordinate: model.Coordinate{Latitude: lat, Longitude: lng},
		Cartesian:  model.CartesianCoordinate{X: 10, Y: 10},
		Indoor:     true,
	}
}

// venue is a fake SDK serving two buildings. B1 has two floors, one POI
// category, two POIs and a square geofence on its ground floor.
func venue() *sdkfake.SDK {
	f := sdkfake.New()
	f.Buildings = []model.Building{building("B1", 42.8782), building("B2", 42.9)}
	f.Floors["B1"] = []model.Floor{
		{ID: "F1", BuildingID: "B1", Level: 0, MapURL: "https://maps.example.com/f1.png"},
		{ID: "F2", BuildingID: "B1", Level: 1, MapURL: "https://maps.example.com/f2.png"},
	}
	f.Floors["B2"] = []model.Floor{{ID: "F9", BuildingID: "B2", Level: 0}}
	f.Categories = []model.POICategory{{ID: "C1", Code: "coffee", Name: "Coffee"}}
	f.IndoorPOIs["B1"] = []model.POI{
		{ID: "P1", BuildingID: "B1", FloorID: "F1", CategoryID: "C1", Name: "Cafeteria", Position: indoor("B1", "F1", 42.8781, -8.5447)},
		{ID: "P2", BuildingID: "B1", FloorID: "F2", CategoryID: "C9", Name: "Library", Position: indoor("B1", "F2", 42.8783, -8.5449)},
	}
	f.OutdoorPOIs["B1"] = []model.POI{
		{ID: "P3", BuildingID: "B1", CategoryID: "C1", Name: "Kiosk", Position: model.Point{BuildingID: "B1", Coordinate: model.Coordinate{Latitude: 42.879, Longitude: -8.545}}},
	}
	f.Events["B1"] = []model.Event{{ID: "E1", BuildingID: "B1", FloorID: "F1", Name: "Welcome", Trigger: model.Circle{Center: indoor("B1", "F1", 42.8781, -8.5447), Radius: 5}}}
	f.Geofences["B1"] = []model.Geofence{{
		ID: "G1", BuildingID: "B1", FloorID: "F1", Name: "Lobby",
		Polygon: []model.Point{
			indoor("B1", "F1", 42.8780, -8.5450),
			indoor("B1", "F1", 42.8780, -8.5445),
			indoor("B1", "F1", 42.8785, -8.5445),
			indoor("B1", "F1", 42.8785, -8.5450),
		},
	}}
	return f
}

func objects(t *testing.T, data any) []codec.Object {
	t.Helper()
	arr, ok := data.(codec.Array)
	require.True(t, ok, "expected an array, got %T", data)
	out := make([]codec.Object, len(arr))
	for i, v := range arr {
		out[i] = v.(codec.Object)
	}
	return out
}
