package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds the shared flight list and the booking submission locks.
type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightsTTL: flightsTTL}
}

// GetFlights returns nil, nil on a miss.
func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached flights: %w", err)
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, fmt.Errorf("decode cached flights: %w", err)
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

// AcquireSubmissionLock reports false when the transaction is already being
// submitted.
func (c *RedisCache) AcquireSubmissionLock(ctx context.Context, transactionID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, submissionLockKey(transactionID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSubmissionLock(ctx context.Context, transactionID string) error {
	return c.client.Del(ctx, submissionLockKey(transactionID)).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func flightsKey() string {
	return "cache:flights"
}

func submissionLockKey(transactionID string) string {
	return fmt.Sprintf("lock:booking:tx:%s", transactionID)
}
