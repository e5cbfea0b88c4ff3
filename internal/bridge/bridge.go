// Package bridge assembles one bridge instance: the entity cache, the event
// stream, the callback adapter and the command dispatcher, all scoped to the
// instance and released together by Close.
package bridge

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"positioning-bridge/internal/adapter"
	"positioning-bridge/internal/cache"
	"positioning-bridge/internal/dispatcher"
	"positioning-bridge/internal/events"
	"positioning-bridge/internal/sdk"
)

var ErrClosed = errors.New("bridge closed")

type Options struct {
	// EventBuffer is the capacity of the outbound event channel.
	EventBuffer int
	// Registerer receives the bridge metrics when not nil.
	Registerer prometheus.Registerer
}

type Bridge struct {
	logger     *slog.Logger
	cache      *cache.EntityCache
	emitter    *events.Emitter
	adapter    *adapter.Adapter
	dispatcher *dispatcher.Dispatcher

	mu     sync.RWMutex
	closed bool
}

func New(s sdk.SDK, logger *slog.Logger, opts Options) (*Bridge, error) {
	c, err := cache.NewEntityCache(opts.Registerer)
	if err != nil {
		return nil, err
	}
	em, err := events.NewEmitter(opts.EventBuffer, logger, opts.Registerer)
	if err != nil {
		return nil, err
	}
	a := adapter.New(em, c, logger)
	return &Bridge{
		logger:     logger,
		cache:      c,
		emitter:    em,
		adapter:    a,
		dispatcher: dispatcher.New(s, c, a, em, logger),
	}, nil
}

// Dispatch runs cmd. After Close every command is rejected with ErrClosed.
func (b *Bridge) Dispatch(cmd dispatcher.Command) *dispatcher.Future {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return dispatcher.Rejected(cmd, ErrClosed)
	}
	return b.dispatcher.Dispatch(cmd)
}

// Events is the single ordered event stream. It is closed by Close.
func (b *Bridge) Events() <-chan events.Event {
	return b.emitter.Events()
}

func (b *Bridge) Commands() []string {
	return b.dispatcher.Commands()
}

// Close cancels pending commands, stops every session, clears the cache
// and closes the event stream. It is safe to call more than once.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.dispatcher.Close()
	b.dispatcher.StopAll()
	b.cache.Invalidate()
	b.emitter.Close()
	b.logger.Info("bridge closed")
}
