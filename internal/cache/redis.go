package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"fuel-backend/internal/metrics"
)

// Product cache keys
const (
	ProductListKey     = "products:list"
	ProductPriceKeyFmt = "products:price:%s"
	ProductPattern     = "products:*"
	ProductTTL         = 10 * time.Minute
)

// ProductPriceKey is the cache key of one product's prices, by name.
func ProductPriceKey(name string) string {
	return fmt.Sprintf(ProductPriceKeyFmt, strings.ToLower(strings.TrimSpace(name)))
}

// Client wraps a Redis connection. A nil *Client is a disabled cache: reads
// miss and writes are dropped, so callers never need to check.
type Client struct {
	rdb *redis.Client
}

// New connects to Redis and pings it. On failure it returns the error and a
// nil client, which callers may keep using as a disabled cache.
func New(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// Get returns cached data for a key
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == redis.Nil:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("component", "cache").Str("key", key).Msg("cache read failed")
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return data, true
}

// Set stores data with a TTL
func (c *Client) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("component", "cache").Str("key", key).Msg("cache write failed")
	}
}

// InvalidatePattern removes all keys matching a glob pattern
func (c *Client) InvalidatePattern(ctx context.Context, pattern string) {
	if c == nil {
		return
	}
	var keys []string
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Str("component", "cache").Str("pattern", pattern).Msg("cache scan failed")
	}
	if len(keys) > 0 {
		c.rdb.Del(ctx, keys...)
	}
}

// IsHealthy returns true if Redis connection is working
func (c *Client) IsHealthy(ctx context.Context) bool {
	if c == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.rdb.Ping(ctx).Err() == nil
}
