// Package fanout forwards the bridge event stream to every host transport.
package fanout

import (
	"context"
	"log/slog"

	"positioning-bridge/internal/events"
)

// Sink receives events in stream order.
type Sink interface {
	Publish(ctx context.Context, evt events.Event) error
}

type Multicaster struct {
	logger *slog.Logger
	sinks  []Sink
}

func NewMulticaster(logger *slog.Logger, sinks ...Sink) *Multicaster {
	return &Multicaster{logger: logger, sinks: sinks}
}

// Run forwards every event from in to each sink until in is closed. A sink
// failure is logged and does not stop the others.
func (m *Multicaster) Run(ctx context.Context, in <-chan events.Event) error {
	for evt := range in {
		for _, sink := range m.sinks {
			if err := sink.Publish(ctx, evt); err != nil {
				m.logger.Warn("failed to forward event", "seq", evt.Seq, "kind", evt.Kind, "error", err)
			}
		}
	}
	m.logger.Info("event stream closed")
	return nil
}
