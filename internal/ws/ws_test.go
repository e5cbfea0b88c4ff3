package ws

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positioning-bridge/internal/bridge"
	"positioning-bridge/internal/events"
	"positioning-bridge/internal/model"
	"positioning-bridge/internal/sdk/sdkfake"
)

type harness struct {
	manager *Manager
	server  *httptest.Server
}

func newHarness(t *testing.T) harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fake := sdkfake.New()
	fake.Buildings = []model.Building{{ID: "B1", Name: "Main"}}
	b, err := bridge.New(fake, logger, bridge.Options{EventBuffer: 16})
	require.NoError(t, err)

	m := NewManager(context.Background(), logger, b)
	go m.Start()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		m.HandleNewConnection(r.URL.Query().Get("client_id"), conn)
	}))
	t.Cleanup(func() {
		m.Shutdown()
		srv.Close()
		b.Close()
	})
	return harness{manager: m, server: srv}
}

func (h harness) dial(t *testing.T, id string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(h.server.URL, "http") + "?client_id=" + id
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

func write(t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, Message{Type: typ, Data: raw}))
}

func read(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	var msg Message
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	var data map[string]any
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return msg.Type, data
}

func TestCommandResult(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, "alice")

	write(t, conn, TypeCommand, map[string]any{"id": "c1", "name": "fetchBuildings"})

	typ, data := read(t, conn)
	assert.Equal(t, TypeResult, typ)
	assert.Equal(t, "c1", data["id"])
	assert.Equal(t, "fetchBuildings", data["name"])
	assert.Len(t, data["data"], 1)
	assert.NotContains(t, data, "error")
}

func TestCommandFailureIsAResult(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, "alice")

	write(t, conn, TypeCommand, map[string]any{"id": "c1", "name": "teleport"})

	typ, data := read(t, conn)
	assert.Equal(t, TypeResult, typ)
	require.Contains(t, data, "error")
	assert.Equal(t, "VALIDATION_ERROR", data["error"].(map[string]any)["code"])
}

func TestMalformedMessages(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, "alice")

	write(t, conn, TypeCommand, "not a command")
	typ, data := read(t, conn)
	assert.Equal(t, TypeError, typ)
	assert.Equal(t, "MALFORMED_INPUT", data["code"])

	write(t, conn, "position", map[string]any{})
	typ, data = read(t, conn)
	assert.Equal(t, TypeError, typ)
	assert.Equal(t, "VALIDATION_ERROR", data["code"])
}

func TestPublishReachesEveryClient(t *testing.T) {
	h := newHarness(t)
	alice := h.dial(t, "alice")
	bob := h.dial(t, "bob")
	require.Eventually(t, func() bool { return h.manager.Clients() == 2 }, time.Second, 5*time.Millisecond)

	evt := events.Event{Seq: 7, Kind: events.KindLocation, CorrelationID: "pos-1", Data: map[string]any{"x": 1.0}}
	require.NoError(t, h.manager.Publish(context.Background(), evt))

	for _, conn := range []*websocket.Conn{alice, bob} {
		typ, data := read(t, conn)
		assert.Equal(t, TypeEvent, typ)
		assert.Equal(t, 7.0, data["seq"])
		assert.Equal(t, "location", data["kind"])
		assert.Equal(t, "pos-1", data["correlationId"])
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, "alice")
	require.Eventually(t, func() bool { return h.manager.Clients() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	assert.Eventually(t, func() bool { return h.manager.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestPublishAfterShutdown(t *testing.T) {
	h := newHarness(t)
	h.manager.Shutdown()
	err := h.manager.Publish(context.Background(), events.Event{Kind: events.KindLocation})
	assert.ErrorIs(t, err, context.Canceled)
}
