package ledgerstore

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCachedStore(t *testing.T) (*CachedStore, *FileStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner, err := NewFileStore(tempStorePath(t), testLogger())
	require.NoError(t, err)

	return NewCachedStore(inner, client, time.Minute, testLogger()), inner, mr
}

func TestCachedStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	cached, _, mr := setupCachedStore(t)

	ledger, err := cached.GetOrCreate(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "42", ledger.UserID)

	assert.True(t, mr.Exists("ledger:42"))

	again, err := cached.GetOrCreate(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, ledger.Wallet, again.Wallet)
}

func TestCachedStore_SaveInvalidates(t *testing.T) {
	ctx := context.Background()
	cached, _, mr := setupCachedStore(t)

	ledger, err := cached.GetOrCreate(ctx, "42")
	require.NoError(t, err)
	require.True(t, mr.Exists("ledger:42"))

	ledger.Wallet = 500
	require.NoError(t, cached.Save(ctx, ledger))

	assert.False(t, mr.Exists("ledger:42"))

	got, err := cached.GetOrCreate(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(500), got.Wallet)
}

func TestCachedStore_RedisDownDegradesToInner(t *testing.T) {
	ctx := context.Background()
	cached, _, mr := setupCachedStore(t)

	mr.Close()

	ledger, err := cached.GetOrCreate(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "42", ledger.UserID)

	ledger.Wallet = 321
	require.NoError(t, cached.Save(ctx, ledger))

	got, err := cached.GetOrCreate(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(321), got.Wallet)
}

func TestCachedStore_PassThroughListing(t *testing.T) {
	ctx := context.Background()
	cached, inner, _ := setupCachedStore(t)

	_, err := cached.GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	_, err = cached.GetOrCreate(ctx, "bob")
	require.NoError(t, err)

	ids, err := cached.UserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, ids)

	count, err := inner.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCachedStore_StaleCacheExpires(t *testing.T) {
	ctx := context.Background()
	cached, _, mr := setupCachedStore(t)

	_, err := cached.GetOrCreate(ctx, "42")
	require.NoError(t, err)
	require.True(t, mr.Exists("ledger:42"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("ledger:42"))
}
