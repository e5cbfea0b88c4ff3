// Package pubsub carries bridge traffic over Redis pub/sub: commands are
// read from one channel, results and events are published to two others.
package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/codec"
	"positioning-bridge/internal/dispatcher"
)

// Client is the subset of *redis.Client the transport uses.
type Client interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type Dispatcher interface {
	Dispatch(cmd dispatcher.Command) *dispatcher.Future
}

type ResultPublisher interface {
	PublishResult(ctx context.Context, res dispatcher.Result) error
}

type Subscriber struct {
	logger     *slog.Logger
	client     Client
	topic      string
	dispatcher Dispatcher
	results    ResultPublisher
	pending    sync.WaitGroup
}

func NewSubscriber(logger *slog.Logger, client Client, topic string, d Dispatcher, results ResultPublisher) *Subscriber {
	return &Subscriber{
		logger:     logger,
		client:     client,
		topic:      topic,
		dispatcher: d,
		results:    results,
	}
}

// Start dispatches every command received on the topic until ctx is done.
func (s *Subscriber) Start(ctx context.Context) error {
	s.logger.Info("Redis subscriber is running", "topic", s.topic)
	pubsub := s.client.Subscribe(ctx, s.topic)
	defer func() {
		if err := pubsub.Close(); err != nil {
			s.logger.Warn("failed to close pubsub", "error", err)
		}
		s.pending.Wait()
	}()

	msgCh := pubsub.Channel()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				s.logger.Warn("pubsub channel closed by Redis")
				return nil
			}
			s.handleMessage(ctx, msg)
		case <-ctx.Done():
			s.logger.Info("shutting down Redis subscriber")
			return nil
		}
	}
}

func (s *Subscriber) handleMessage(ctx context.Context, msg *redis.Message) {
	var cmd dispatcher.Command
	if err := json.Unmarshal([]byte(msg.Payload), &cmd); err != nil {
		s.logger.Warn("failed to unmarshal command", "channel", msg.Channel, "error", err)
		s.publish(ctx, dispatcher.Result{Error: codec.EncodeError(bridgeerr.Malformed("command", "%v", err))})
		return
	}
	s.logger.Debug("received command", "command", cmd.Name, "id", cmd.ID)

	future := s.dispatcher.Dispatch(cmd)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		res, err := future.Wait(ctx)
		if err != nil {
			s.logger.Warn("command result dropped", "command", cmd.Name, "id", cmd.ID, "error", err)
			return
		}
		s.publish(ctx, res)
	}()
}

func (s *Subscriber) publish(ctx context.Context, res dispatcher.Result) {
	if err := s.results.PublishResult(ctx, res); err != nil {
		s.logger.Error("failed to publish result", "command", res.Name, "id", res.ID, "error", err)
	}
}
