package bridge

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positioning-bridge/internal/dispatcher"
	"positioning-bridge/internal/events"
	"positioning-bridge/internal/model"
	"positioning-bridge/internal/sdk/sdkfake"
)

func newBridge(t *testing.T) (*Bridge, *sdkfake.SDK) {
	t.Helper()
	fake := sdkfake.New()
	fake.Buildings = []model.Building{{ID: "B1", Name: "Main"}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b, err := New(fake, logger, Options{EventBuffer: 16, Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b, fake
}

func run(t *testing.T, b *Bridge, cmd dispatcher.Command) dispatcher.Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := b.Dispatch(cmd).Wait(ctx)
	require.NoError(t, err)
	return res
}

func TestBridgeDispatch(t *testing.T) {
	b, fake := newBridge(t)

	res := run(t, b, dispatcher.Command{ID: "1", Name: "fetchBuildings"})
	require.NoError(t, res.Err())
	assert.Len(t, res.Data, 1)
	assert.Equal(t, 1, fake.Calls("FetchBuildings"))
	assert.Contains(t, b.Commands(), "startPositioning")
}

func TestBridgeCloseStopsSessions(t *testing.T) {
	b, fake := newBridge(t)

	run(t, b, dispatcher.Command{ID: "1", Name: "fetchBuildings"})
	res := run(t, b, dispatcher.Command{ID: "2", Name: "startPositioning", Args: []any{map[string]any{"buildingId": "B1"}}})
	require.NoError(t, res.Err())
	require.NotNil(t, fake.LocationCallback())

	b.Close()

	assert.Nil(t, fake.LocationCallback())
	assert.Equal(t, 1, fake.Calls("RemoveLocationUpdates"))

	// Drain anything emitted before close; the stream must then be closed.
	for range b.Events() {
	}
	_, open := <-b.Events()
	assert.False(t, open)
}

func TestBridgeRejectsAfterClose(t *testing.T) {
	b, fake := newBridge(t)
	b.Close()
	b.Close()

	res := run(t, b, dispatcher.Command{ID: "1", Name: "fetchBuildings"})
	assert.ErrorIs(t, res.Err(), ErrClosed)
	assert.NotEmpty(t, res.Error)
	assert.Zero(t, fake.Calls("FetchBuildings"))
}

func TestBridgeClosePushesAreDropped(t *testing.T) {
	b, fake := newBridge(t)

	run(t, b, dispatcher.Command{ID: "1", Name: "fetchBuildings"})
	run(t, b, dispatcher.Command{ID: "2", Name: "startPositioning", Args: []any{map[string]any{"buildingId": "B1"}}})
	cb := fake.LocationCallback()
	require.NotNil(t, cb)

	b.Close()
	cb.OnLocationChanged(model.Location{Position: model.Point{BuildingID: "B1"}})

	var got []events.Event
	for evt := range b.Events() {
		got = append(got, evt)
	}
	assert.Empty(t, got)
}

func TestBridgeMetricsRegisterOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	b, err := New(sdkfake.New(), logger, Options{Registerer: reg})
	require.NoError(t, err)
	defer b.Close()

	_, err = New(sdkfake.New(), logger, Options{Registerer: reg})
	assert.Error(t, err)
}
