// Package events carries the single ordered stream of events from the
// bridge to the host.
package events

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var ErrClosed = errors.New("events: emitter closed")

// Emitter is the single writer of the outbound event channel. Emissions are
// serialized under one lock, so concurrent producers never interleave and
// sequence numbers follow arrival order.
type Emitter struct {
	logger *slog.Logger

	mu     sync.Mutex
	seq    uint64
	closed bool
	out    chan Event

	done      chan struct{}
	closeOnce sync.Once

	emitted *prometheus.CounterVec
	dropped *prometheus.CounterVec
}

func NewEmitter(buffer int, logger *slog.Logger, reg prometheus.Registerer) (*Emitter, error) {
	if buffer < 1 {
		buffer = 1
	}
	e := &Emitter{
		logger: logger,
		out:    make(chan Event, buffer),
		done:   make(chan struct{}),
		emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: "events",
			Name:      "emitted_total",
			Help:      "Total number of events emitted to the host",
		}, []string{"kind"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Total number of events discarded because their session was no longer current",
		}, []string{"kind"}),
	}
	if reg != nil {
		if err := reg.Register(e.emitted); err != nil {
			return nil, fmt.Errorf("registering emitted events metric: %w", err)
		}
		if err := reg.Register(e.dropped); err != nil {
			return nil, fmt.Errorf("registering dropped events metric: %w", err)
		}
	}
	return e, nil
}

// Events returns the outbound channel. It is closed by Close.
func (e *Emitter) Events() <-chan Event {
	return e.out
}

func (e *Emitter) Emit(evt Event) error {
	_, err := e.EmitIf(evt, nil)
	return err
}

// EmitIf emits evt only if current reports true at the moment the event is
// serialized. It returns false without error when the event was discarded.
func (e *Emitter) EmitIf(evt Event, current func() bool) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false, ErrClosed
	}
	if current != nil && !current() {
		e.dropped.WithLabelValues(string(evt.Kind)).Inc()
		e.logger.Debug("dropping stale event", "kind", evt.Kind, "correlationId", evt.CorrelationID)
		return false, nil
	}
	e.seq++
	evt.Seq = e.seq
	select {
	case e.out <- evt:
		e.emitted.WithLabelValues(string(evt.Kind)).Inc()
		return true, nil
	case <-e.done:
		return false, ErrClosed
	}
}

// Sync returns once every emission that started before the call has
// completed.
func (e *Emitter) Sync() {
	e.mu.Lock()
	//nolint:staticcheck // empty critical section used as a barrier
	e.mu.Unlock()
}

// Close unblocks pending emitters and closes the outbound channel. Later
// emissions fail with ErrClosed.
func (e *Emitter) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		e.mu.Lock()
		defer e.mu.Unlock()
		e.closed = true
		close(e.out)
	})
}
