package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/codec"
	"positioning-bridge/internal/dispatcher"
)

const (
	// sendChannelSize controls the max number
	// of messages that can be queued for a client.
	sendChannelSize = 64
	pingPeriod      = (60 * 9 * time.Second) / 10
)

const (
	TypeCommand = "command"
	TypeResult  = "result"
	TypeEvent   = "event"
	TypeError   = "error"
)

type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Client struct {
	ID      string
	Conn    *websocket.Conn
	Manager *Manager
	send    chan Message
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewClient(id string, conn *websocket.Conn, manager *Manager) *Client {
	ctx, cancel := context.WithCancel(manager.ctx)
	return &Client{
		ID:      id,
		Conn:    conn,
		Manager: manager,
		send:    make(chan Message, sendChannelSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (c *Client) Start() {
	select {
	case c.Manager.register <- c:
	case <-c.ctx.Done():
		c.Close()
		return
	}
	go c.readPump()
	go c.writePump()
}

func (c *Client) Close() {
	c.cancel()
	if err := c.Conn.Close(websocket.StatusNormalClosure, "bye"); err != nil {
		c.Manager.logger.Debug("failed to close connection", "clientID", c.ID, "error", err)
	}
}

// Send queues msg, disconnecting the client when its queue is full.
func (c *Client) Send(msg Message) {
	select {
	case c.send <- msg:
	case <-c.ctx.Done():
	default:
		c.Manager.forceDisconnect(c)
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.Manager.unregister <- c:
		case <-c.Manager.ctx.Done():
		}
		c.Close()
	}()

	for {
		var msg Message
		if err := wsjson.Read(c.ctx, c.Conn, &msg); err != nil {
			c.Manager.logger.Debug("failed to read message", "clientID", c.ID, "error", err)
			return
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			if err := wsjson.Write(c.ctx, c.Conn, msg); err != nil {
				c.Manager.logger.Warn("failed to write message", "clientID", c.ID, "error", err)
				return
			}
			c.Manager.logger.Debug("message sent", "clientID", c.ID, "type", msg.Type)
		case <-ticker.C:
			if err := c.Conn.Ping(c.ctx); err != nil {
				c.Manager.logger.Debug("failed to ping client", "clientID", c.ID, "error", err)
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case TypeCommand:
		var cmd dispatcher.Command
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			c.Manager.logger.Warn("failed to unmarshal command", "clientID", c.ID, "error", err)
			c.sendError(bridgeerr.Malformed("command", "%v", err))
			return
		}
		c.Manager.logger.Debug("received command", "clientID", c.ID, "command", cmd.Name, "id", cmd.ID)

		future := c.Manager.dispatcher.Dispatch(cmd)
		go func() {
			res, err := future.Wait(c.ctx)
			if err != nil {
				return
			}
			c.sendJSON(TypeResult, res)
		}()
	default:
		c.Manager.logger.Debug("received unknown type message", "clientID", c.ID, "type", msg.Type)
		c.sendError(bridgeerr.Validation("message", "unknown message type %q", msg.Type))
	}
}

func (c *Client) sendError(err error) {
	c.sendJSON(TypeError, codec.EncodeError(err))
}

func (c *Client) sendJSON(typ string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.Manager.logger.Error("failed to encode message", "clientID", c.ID, "type", typ, "error", err)
		return
	}
	c.Send(Message{Type: typ, Data: data})
}
