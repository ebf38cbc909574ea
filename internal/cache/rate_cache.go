package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// ErrMiss is returned by Get when no rate is cached.
var ErrMiss = errors.New("rate not cached")

// RateCache stores exchange rates in Redis with a TTL.
type RateCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRateCache creates a cache keyed under rate:<coin>:<quote>.
func NewRateCache(client redis.Cmdable, coinID string, ttl time.Duration) *RateCache {
	return &RateCache{client: client, prefix: "rate:" + strings.ToLower(coinID) + ":", ttl: ttl}
}

// Key returns the Redis key for quote.
func (c *RateCache) Key(quote string) string {
	return c.prefix + strings.ToLower(quote)
}

// Get returns the cached rate or ErrMiss.
func (c *RateCache) Get(ctx context.Context, quote string) (decimal.Decimal, error) {
	val, err := c.client.Get(ctx, c.Key(quote)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, ErrMiss
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("redis get rate: %w", err)
	}
	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cached rate %q: %w", val, err)
	}
	return rate, nil
}

// Set stores rate for the configured TTL.
func (c *RateCache) Set(ctx context.Context, quote string, rate decimal.Decimal) error {
	if err := c.client.Set(ctx, c.Key(quote), rate.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set rate: %w", err)
	}
	return nil
}

// Connect opens a Redis client and pings it.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}
