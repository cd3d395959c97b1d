package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmikhr/coinpurse-bot/pkg/config"
)

func TestMemoryLimiter_AllowsWithinLimit(t *testing.T) {
	limiter := NewMemoryLimiter(testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.Check(ctx, "user:1:/work", 5, time.Minute)
		assert.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 5-(i+1), result.Remaining)
	}
}

func TestMemoryLimiter_BlocksWhenExceeded(t *testing.T) {
	limiter := NewMemoryLimiter(testLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, "user:1:/gamble", 2, time.Minute)
		assert.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	result, err := limiter.Check(ctx, "user:1:/gamble", 2, time.Minute)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.False(t, result.Allowed)
	assert.Zero(t, result.Remaining)
}

func TestMemoryLimiter_WindowSlides(t *testing.T) {
	limiter := NewMemoryLimiter(testLogger())
	ctx := context.Background()

	result, err := limiter.Check(ctx, "user:1:/rob", 1, 50*time.Millisecond)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)

	time.Sleep(60 * time.Millisecond)

	result, err = limiter.Check(ctx, "user:1:/rob", 1, 50*time.Millisecond)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestMemoryLimiter_Cleanup(t *testing.T) {
	limiter := NewMemoryLimiter(testLogger())
	ctx := context.Background()

	_, err := limiter.Check(ctx, "user:1:/work", 5, time.Minute)
	require.NoError(t, err)

	limiter.Cleanup(time.Nanosecond)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Empty(t, limiter.buckets)
}

func TestRules(t *testing.T) {
	rules := NewRules(config.RateLimitConfig{
		Enabled: true,
		PerUser: config.RateLimitRule{Limit: 20, Window: "1m"},
		Commands: map[string]config.RateLimitRule{
			"/work": {Limit: 5, Window: "30s"},
		},
		Whitelist: []int64{777},
	})

	assert.True(t, rules.Enabled())
	assert.True(t, rules.IsWhitelisted(777))
	assert.False(t, rules.IsWhitelisted(778))

	limit, window, err := rules.CommandLimit("/work")
	require.NoError(t, err)
	assert.Equal(t, 5, limit)
	assert.Equal(t, 30*time.Second, window)

	limit, window, err = rules.CommandLimit("/balance")
	require.NoError(t, err)
	assert.Equal(t, 20, limit)
	assert.Equal(t, time.Minute, window)
}

func TestRules_MissingWindow(t *testing.T) {
	rules := NewRules(config.RateLimitConfig{Enabled: true})

	_, _, err := rules.PerUserLimit()
	assert.Error(t, err)
}
