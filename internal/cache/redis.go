// Package cache provides Redis-backed cache-aside helpers for read-heavy views.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"ripple/internal/middleware"
	"ripple/internal/observability"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// InitRedis connects the package-level client. A failed connection is logged
// and leaves the client nil; all helpers degrade to direct fetches.
func InitRedis(addr string) {
	c := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("Redis connection failed, continuing without cache",
			slog.String("error", err.Error()))
		client = nil
		return
	}
	client = c
	middleware.Logger.Info("Redis connected successfully")
}

// SetClient overrides the package-level client. Intended for tests.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the package-level Redis client, or nil if unavailable.
func GetClient() *redis.Client {
	return client
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		observability.CacheErrors.WithLabelValues("get").Inc()
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := client.Set(ctx, key, b, ttl).Err(); err != nil {
		observability.CacheErrors.WithLabelValues("set").Inc()
		return err
	}
	return nil
}

// Aside tries Redis first, on miss it calls fetch (which should populate dest),
// then stores the result in Redis with ttl. fetch must write into dest.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	// Store into cache (best-effort)
	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}
