package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/cache"
	"github.com/Domenick1991/flightdesk/internal/email"
	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/logging"
	"github.com/Domenick1991/flightdesk/internal/remote"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Init(cfg.App.Env); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Search.FlightsCacheTTLSeconds)*time.Second)
	defer redisCache.Close()

	client := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout())
	flightService := flights.NewFlightService(client, redisCache)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender(email.LogTransport{})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("notification consumer started", "topic", cfg.Kafka.NotificationsTopic)
		return consumer.Consume(gctx, kafka.BookingEventHandler(sender.Send))
	})

	g.Go(func() error {
		warmFlights(gctx, flightService, redisCache, time.Duration(cfg.Worker.DirectoryRefreshMinutes)*time.Minute)
		return nil
	})

	if err := g.Wait(); err != nil {
		logging.Error("worker stopped", "error", err)
		return
	}
	logging.Info("worker shut down")
}

// warmFlights refreshes the shared flight list cache so API instances rarely
// pay for a cold fetch.
func warmFlights(ctx context.Context, svc flights.FlightUseCase, c *cache.RedisCache, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.InvalidateFlights(ctx); err != nil {
				logging.Warn("invalidate flight cache", "error", err)
				continue
			}
			fs, err := svc.List(ctx)
			if err != nil {
				logging.Error("warm flight cache", "error", err)
				continue
			}
			logging.Debug("flight cache warmed", "flights", len(fs))
		}
	}
}
