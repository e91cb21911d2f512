package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/config"
	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/domain"
)

// RedisCache holds the per-flight fare read model. Entries are refreshed by
// the price history recorder on every inventory mutation, so a hit is never
// staler than the last committed seat change.
type RedisCache struct {
	client  *redis.Client
	fareTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, fareTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:  redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		fareTTL: fareTTL,
	}
}

// NewWithClient wraps an existing client. Used by tests with redismock.
func NewWithClient(client *redis.Client, fareTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, fareTTL: fareTTL}
}

func (c *RedisCache) SetFare(ctx context.Context, fare domain.FlightFare) error {
	payload, err := json.Marshal(fare)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, fareKey(fare.FlightID), payload, c.fareTTL).Err()
}

// GetFare returns (nil, nil) on a cache miss.
func (c *RedisCache) GetFare(ctx context.Context, flightID int64) (*domain.FlightFare, error) {
	data, err := c.client.Get(ctx, fareKey(flightID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var fare domain.FlightFare
	if err := json.Unmarshal(data, &fare); err != nil {
		return nil, err
	}
	return &fare, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func fareKey(flightID int64) string {
	return fmt.Sprintf("fare:flight:%d", flightID)
}
