package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/nigerian-states/internal/resilience"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := OpenRedis(mr.Addr(), "", 0)
	t.Cleanup(func() { client.Close() }) //nolint:errcheck
	return mr, client
}

func TestOpenRedis_EmptyAddr(t *testing.T) {
	assert.Nil(t, OpenRedis("", "", 0))
}

func TestRedisCache_GetSet(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	c := NewRedisCache(client, time.Minute, nil)

	_, hit, err := c.Get(ctx, "/zones")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "/zones", []byte(`{"count":6}`)))
	got, hit, err := c.Get(ctx, "/zones")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, `{"count":6}`, string(got))

	assert.True(t, mr.Exists(cacheKeyPrefix+"/zones"))
	assert.Equal(t, time.Minute, mr.TTL(cacheKeyPrefix+"/zones"))

	mr.FastForward(2 * time.Minute)
	_, hit, err = c.Get(ctx, "/zones")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCache_BreakerOpensWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	breaker := resilience.NewCircuitBreaker(resilience.BreakerConfig{FailureThreshold: 2, Cooldown: time.Hour})
	c := NewRedisCache(client, time.Minute, breaker)

	mr.Close()
	for range 2 {
		_, _, err := c.Get(ctx, "/zones")
		require.Error(t, err)
	}
	assert.Equal(t, resilience.CircuitOpen, breaker.State())

	_, _, err := c.Get(ctx, "/zones")
	assert.True(t, errors.Is(err, resilience.ErrCircuitOpen))
}

func TestCacheMiddleware(t *testing.T) {
	mr, client := newMiniRedis(t)
	h := newTestServer(t, Config{}, WithCache(NewRedisCache(client, time.Minute, nil)))

	first := get(t, h, "/states/Lagos")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.True(t, mr.Exists(cacheKeyPrefix+"/states/Lagos"))

	second := get(t, h, "/states/Lagos")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
}

func TestCacheMiddleware_SkipsErrors(t *testing.T) {
	mr, client := newMiniRedis(t)
	h := newTestServer(t, Config{}, WithCache(NewRedisCache(client, time.Minute, nil)))

	rec := get(t, h, "/states/Togo")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, mr.Exists(cacheKeyPrefix+"/states/Togo"))
}

func TestCacheMiddleware_RedisDownStillServes(t *testing.T) {
	mr, client := newMiniRedis(t)
	h := newTestServer(t, Config{}, WithCache(NewRedisCache(client, time.Minute, nil)))
	mr.Close()

	rec := get(t, h, "/zones")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, decode[ListResponse[struct{}]](t, rec).Count)
}

func TestHealth_ReportsCacheState(t *testing.T) {
	_, client := newMiniRedis(t)
	h := newTestServer(t, Config{}, WithCache(NewRedisCache(client, time.Minute, nil)))

	rec := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "closed", decode[map[string]any](t, rec)["cache"])
}
