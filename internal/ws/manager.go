package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coder/websocket"

	"positioning-bridge/internal/dispatcher"
	"positioning-bridge/internal/events"
)

// Dispatcher runs host commands.
type Dispatcher interface {
	Dispatch(cmd dispatcher.Command) *dispatcher.Future
}

type Manager struct {
	logger     *slog.Logger
	dispatcher Dispatcher
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	mu         sync.RWMutex
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewManager(ctx context.Context, logger *slog.Logger, d Dispatcher) *Manager {
	ctx, cancel := context.WithCancel(ctx)
	return &Manager{
		logger:     logger,
		dispatcher: d,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (m *Manager) Start() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			if prev, ok := m.clients[client.ID]; ok {
				go prev.Close()
			}
			m.clients[client.ID] = client
			m.mu.Unlock()
			m.logger.Info("client connected", "clientID", client.ID)
		case client := <-m.unregister:
			m.mu.Lock()
			if cur, ok := m.clients[client.ID]; ok && cur == client {
				delete(m.clients, client.ID)
				m.logger.Info("client disconnected", "clientID", client.ID)
			}
			m.mu.Unlock()
		case message := <-m.broadcast:
			m.mu.RLock()
			for _, client := range m.clients {
				select {
				case client.send <- message:
				default:
					go m.forceDisconnect(client)
				}
			}
			m.mu.RUnlock()
		case <-m.ctx.Done():
			return
		}
	}
}

// HandleNewConnection starts serving a websocket client.
func (m *Manager) HandleNewConnection(id string, conn *websocket.Conn) {
	NewClient(id, conn, m).Start()
}

// Broadcast queues message for every connected client.
func (m *Manager) Broadcast(ctx context.Context, message Message) error {
	if err := m.ctx.Err(); err != nil {
		return err
	}
	select {
	case m.broadcast <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.ctx.Done():
		return m.ctx.Err()
	}
}

// Publish broadcasts a bridge event to every client.
func (m *Manager) Publish(ctx context.Context, evt events.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	return m.Broadcast(ctx, Message{Type: TypeEvent, Data: data})
}

// Clients returns the number of connected clients.
func (m *Manager) Clients() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

func (m *Manager) forceDisconnect(c *Client) {
	m.logger.Warn("client too slow, disconnecting", "clientID", c.ID)
	c.Close()
}

func (m *Manager) Shutdown() {
	m.cancel()
	m.mu.Lock()
	for _, client := range m.clients {
		client.Close()
	}
	m.mu.Unlock()
}
