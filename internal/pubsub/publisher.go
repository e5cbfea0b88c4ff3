package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"positioning-bridge/internal/dispatcher"
	"positioning-bridge/internal/events"
)

type Publisher struct {
	logger  *slog.Logger
	client  Client
	results string
	events  string
}

func NewPublisher(logger *slog.Logger, client Client, resultsChannel, eventsChannel string) *Publisher {
	return &Publisher{
		logger:  logger,
		client:  client,
		results: resultsChannel,
		events:  eventsChannel,
	}
}

func (p *Publisher) PublishResult(ctx context.Context, res dispatcher.Result) error {
	return p.publish(ctx, p.results, res)
}

// Publish sends a bridge event to the events channel.
func (p *Publisher) Publish(ctx context.Context, evt events.Event) error {
	return p.publish(ctx, p.events, evt)
}

func (p *Publisher) publish(ctx context.Context, channel string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding message for %s: %w", channel, err)
	}
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", channel, err)
	}
	p.logger.Debug("message published", "channel", channel)
	return nil
}
