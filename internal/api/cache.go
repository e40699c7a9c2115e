package api

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sells-group/nigerian-states/internal/resilience"
)

// Cache stores rendered GET responses keyed by request URI.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// NopCache never hits and never stores.
type NopCache struct{}

// Get always misses.
func (NopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards value.
func (NopCache) Set(context.Context, string, []byte) error { return nil }

const cacheKeyPrefix = "ngstates:resp:"

// RedisCache is a Cache backed by Redis. Calls go through a circuit breaker
// so a dead Redis costs one failed request per cooldown, not one per request.
type RedisCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *resilience.CircuitBreaker
}

// NewRedisCache wraps client. A nil breaker gets default settings.
func NewRedisCache(client *redis.Client, ttl time.Duration, breaker *resilience.CircuitBreaker) *RedisCache {
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.BreakerConfig{})
	}
	return &RedisCache{client: client, ttl: ttl, breaker: breaker}
}

// OpenRedis returns a client for addr, or nil when addr is empty.
func OpenRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// Get returns the cached value. A missing key is a miss, not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := resilience.ExecuteVal(ctx, c.breaker, func(ctx context.Context) ([]byte, error) {
		b, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		return nil, false, eris.Wrap(err, "cache: get")
	}
	return val, val != nil, nil
}

// Set stores value with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.client.Set(ctx, cacheKeyPrefix+key, value, c.ttl).Err()
	})
	return eris.Wrap(err, "cache: set")
}

// Breaker exposes the circuit state for health reporting.
func (c *RedisCache) Breaker() *resilience.CircuitBreaker { return c.breaker }
