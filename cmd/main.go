package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"positioning-bridge/internal/api"
	"positioning-bridge/internal/bridge"
	"positioning-bridge/internal/config"
	"positioning-bridge/internal/fanout"
	"positioning-bridge/internal/pubsub"
	"positioning-bridge/internal/sdk/replay"
	"positioning-bridge/internal/ws"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conf, err := config.New()
	if err != nil {
		return err
	}

	var loggerOpts slog.HandlerOptions
	if conf.Env == config.EnvDev {
		loggerOpts = slog.HandlerOptions{Level: slog.LevelDebug}
	}

	jsonHandler := slog.NewJSONHandler(os.Stdout, &loggerOpts)
	logger := slog.New(jsonHandler)

	venue, err := replay.LoadFile(conf.VenueFile)
	if err != nil {
		return err
	}
	positioning := replay.New(venue, logger.With("component", "replay"), replay.WithInterval(conf.ReplayInterval))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	b, err := bridge.New(positioning, logger, bridge.Options{EventBuffer: conf.EventBufferSize, Registerer: registry})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	wsManager := ws.NewManager(gctx, logger, b)
	sinks := []fanout.Sink{wsManager}

	if conf.RedisEnabled() {
		redisClient := redis.NewClient(&redis.Options{Addr: net.JoinHostPort(conf.RedisHost, conf.RedisPort)})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("failed to close redis client", "error", err)
			}
		}()
		pub := pubsub.NewPublisher(logger, redisClient, conf.RedisResultsChannel, conf.RedisEventsChannel)
		sub := pubsub.NewSubscriber(logger, redisClient, conf.RedisCommandsChannel, b, pub)
		sinks = append(sinks, pub)
		g.Go(func() error { return sub.Start(gctx) })
	}

	multicaster := fanout.NewMulticaster(logger, sinks...)
	// The stream ends when the bridge closes; events queued before that are
	// still delivered.
	g.Go(func() error { return multicaster.Run(context.WithoutCancel(gctx), b.Events()) })

	g.Go(func() error {
		wsManager.Start()
		return nil
	})

	server := api.NewServer(conf, wsManager, b.Commands(), registry, logger)
	g.Go(func() error { return server.Start(gctx) })

	g.Go(func() error {
		<-gctx.Done()
		b.Close()
		wsManager.Shutdown()
		return nil
	})

	logger.Info("positioning bridge started", "commands", len(b.Commands()), "redis", conf.RedisEnabled())
	return g.Wait()
}
