package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightdesk/api"
	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/bootstrap"
	"github.com/Domenick1991/flightdesk/internal/cache"
	"github.com/Domenick1991/flightdesk/internal/directory"
	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/logging"
	"github.com/Domenick1991/flightdesk/internal/metrics"
	"github.com/Domenick1991/flightdesk/internal/remote"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/Domenick1991/flightdesk/internal/service/profile"
	"github.com/Domenick1991/flightdesk/internal/service/stats"
	"github.com/jackc/pgx/v5/pgxpool"
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

	if err := run(ctx, cfg); err != nil {
		logging.Fatal("server error", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	reg := metrics.NewMetricsRegistry()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	prefs := repository.NewPreferencesRepository(pool)
	if err := prefs.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("prepare preferences schema: %w", err)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Search.FlightsCacheTTLSeconds)*time.Second)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		logging.Warn("redis unreachable, flight list will be fetched on every miss", "error", err)
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	client := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout(), remote.WithObserver(reg))

	flightService := flights.NewFlightService(client, redisCache, flights.WithCacheObserver(reg))
	bookingService := booking.NewBookingService(
		client,
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		time.Duration(cfg.Search.SubmissionLockSeconds)*time.Second,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithEventObserver(reg),
	)
	profileService := profile.NewProfileService(
		client,
		cache.NewProfileCache(time.Duration(cfg.Search.ProfileCacheTTLSeconds)*time.Second),
		prefs,
		profile.WithCacheObserver(reg),
	)
	statsService := stats.NewStatsService(flightService, bookingService, profileService)

	dirHealth := bootstrap.NewDirectoryHealth()
	dir := directory.New(flightService, directory.WithObserver(reg), directory.WithObserver(dirHealth))
	if err := dir.Load(ctx); err != nil {
		// Searches answer 503 until a later reload succeeds.
		logging.Error("initial flight directory load failed", "error", err)
	}

	router := api.NewRouter(api.Handlers{
		Flights:  api.NewFlightHandler(dir, flightService, cfg.Search.PageSize, cfg.Search.UpcomingLimit),
		Bookings: api.NewBookingHandler(bookingService),
		Profiles: api.NewProfileHandler(profileService),
		Stats:    api.NewStatsHandler(statsService),
	}, api.RouterOptions{
		Metrics:     reg,
		RateLimiter: rateLimiter(cfg.HTTP),
	})

	logging.Info("flightdesk starting", "env", cfg.App.Env, "remote", cfg.Remote.BaseURL, "flights", dir.Len())
	return bootstrap.Run(ctx, cfg, router, dir, dirHealth, reg)
}

func rateLimiter(cfg config.HTTPConfig) *api.RateLimiter {
	if cfg.RateLimit <= 0 {
		return nil
	}
	return api.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
}
