package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRedisLimiter_AllowsWithinLimit(t *testing.T) {
	limiter := NewRedisLimiter(setupTestRedis(t), testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.Check(ctx, "user:1:/work", 5, time.Minute)
		assert.NoError(t, err)
		assert.True(t, result.Allowed)
	}
}

func TestRedisLimiter_BlocksWhenExceeded(t *testing.T) {
	limiter := NewRedisLimiter(setupTestRedis(t), testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.Check(ctx, "user:1:/gamble", 2, time.Minute)
		assert.NoError(t, err)
		if i < 2 {
			assert.True(t, result.Allowed)
		} else {
			assert.False(t, result.Allowed)
		}
	}
}

func TestRedisLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewRedisLimiter(setupTestRedis(t), testLogger())
	ctx := context.Background()

	result, err := limiter.Check(ctx, "user:1:/rob", 1, time.Minute)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = limiter.Check(ctx, "user:2:/rob", 1, time.Minute)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = limiter.Check(ctx, "user:1:/rob", 1, time.Minute)
	assert.NoError(t, err)
	assert.False(t, result.Allowed)
}

func TestRedisLimiter_SlidingWindow(t *testing.T) {
	limiter := NewRedisLimiter(setupTestRedis(t), testLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, "user:1:/slots", 2, time.Second)
		assert.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	time.Sleep(1100 * time.Millisecond)

	result, err := limiter.Check(ctx, "user:1:/slots", 2, time.Second)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}
