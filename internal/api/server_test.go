package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positioning-bridge/internal/bridge"
	"positioning-bridge/internal/config"
	"positioning-bridge/internal/model"
	"positioning-bridge/internal/sdk/sdkfake"
	"positioning-bridge/internal/ws"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()

	fake := sdkfake.New()
	fake.Buildings = []model.Building{{ID: "B1"}}
	b, err := bridge.New(fake, logger, bridge.Options{EventBuffer: 8, Registerer: reg})
	require.NoError(t, err)

	manager := ws.NewManager(context.Background(), logger, b)
	go manager.Start()

	srv := httptest.NewServer(NewServer(&config.Config{}, manager, b.Commands(), reg, logger).Handler())
	t.Cleanup(func() {
		manager.Shutdown()
		srv.Close()
		b.Close()
	})
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Cache-Control"), "no-store")
}

func TestMetricsExposeBridgeCollectors(t *testing.T) {
	srv := newTestServer(t)

	// Touch the cache so its vectors have a child to export.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	conn := dial(t, srv, "alice")
	require.NoError(t, wsjson.Write(ctx, conn, command(t, `{"id":"1","name":"fetchBuildings"}`)))
	var msg ws.Message
	require.NoError(t, wsjson.Read(ctx, conn, &msg))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "bridge_cache_")
}

func TestBridgeRequiresClientID(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/bridge")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBridgeWebsocket(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	conn := dial(t, srv, "alice")
	require.NoError(t, wsjson.Write(ctx, conn, command(t, `{"id":"1","name":"fetchBuildings"}`)))

	var msg ws.Message
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, ws.TypeResult, msg.Type)
	assert.Contains(t, string(msg.Data), `"B1"`)
}

func TestBridgeRejectsInvalidClientID(t *testing.T) {
	srv := newTestServer(t)

	for _, id := range []string{"has%20space", strings.Repeat("x", 65), "%3Cscript%3E"} {
		resp, err := http.Get(srv.URL + "/bridge?client_id=" + id)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, id)
	}
}

func TestBridgeNegotiatesSubprotocol(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/bridge"

	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader:   http.Header{"X-Client-ID": []string{"kiosk-1"}},
		Subprotocols: []string{Subprotocol},
	})
	require.NoError(t, err)
	defer func() { _ = conn.CloseNow() }()
	assert.Equal(t, Subprotocol, conn.Subprotocol())
	require.NoError(t, wsjson.Write(ctx, conn, command(t, `{"id":"1","name":"fetchBuildings"}`)))
	var msg ws.Message
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, ws.TypeResult, msg.Type)

	other, _, err := websocket.Dial(ctx, url+"?client_id=kiosk-2", &websocket.DialOptions{Subprotocols: []string{"mqtt"}})
	require.NoError(t, err)
	defer func() { _ = other.CloseNow() }()
	_, _, err = other.Read(ctx)
	assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
}

func TestCommands(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/commands")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Commands []string `json:"commands"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Commands, "fetchBuildings")
	assert.Contains(t, body.Commands, "startPositioning")
}

func dial(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/bridge?client_id="+id, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

func command(t *testing.T, raw string) ws.Message {
	t.Helper()
	return ws.Message{Type: ws.TypeCommand, Data: []byte(raw)}
}
