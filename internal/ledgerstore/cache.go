package ledgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/dmikhr/coinpurse-bot/internal/domain"
)

const defaultCacheTTL = 5 * time.Minute

// CachedStore is a read-through Redis cache in front of another Store.
// Saves write through to the inner store and invalidate cached entries, so a
// failed persist never leaves a stale ledger in cache.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewCachedStore wraps inner with a Redis cache. A zero ttl uses the default.
func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, log *slog.Logger) *CachedStore {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &CachedStore{
		inner:  inner,
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// GetOrCreate serves from cache when possible, falling back to the inner
// store. Cache faults degrade to the inner store rather than failing the
// operation.
func (c *CachedStore) GetOrCreate(ctx context.Context, userID string) (*domain.Ledger, error) {
	if cached := c.lookup(ctx, userID); cached != nil {
		return cached, nil
	}

	ledger, err := c.inner.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.store(ctx, ledger)

	return ledger, nil
}

// Save writes through to the inner store and drops the cached entries.
func (c *CachedStore) Save(ctx context.Context, ledgers ...*domain.Ledger) error {
	if err := c.inner.Save(ctx, ledgers...); err != nil {
		return err
	}

	for _, ledger := range ledgers {
		if ledger == nil {
			continue
		}

		if err := c.client.Del(ctx, cacheKey(ledger.UserID)).Err(); err != nil {
			c.log.Warn("failed to invalidate cached ledger",
				slog.String("user_id", ledger.UserID), slog.Any("error", err))
		}
	}

	return nil
}

// UserIDs passes through to the inner store.
func (c *CachedStore) UserIDs(ctx context.Context) ([]string, error) {
	return c.inner.UserIDs(ctx)
}

// Count passes through to the inner store.
func (c *CachedStore) Count(ctx context.Context) (int, error) {
	return c.inner.Count(ctx)
}

func (c *CachedStore) lookup(ctx context.Context, userID string) *domain.Ledger {
	data, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("ledger cache read failed", slog.String("user_id", userID), slog.Any("error", err))
		}

		return nil
	}

	var ledger domain.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		c.log.Warn("failed to decode cached ledger", slog.String("user_id", userID), slog.Any("error", err))
		return nil
	}

	return &ledger
}

func (c *CachedStore) store(ctx context.Context, ledger *domain.Ledger) {
	if ledger == nil {
		return
	}

	payload, err := json.Marshal(ledger)
	if err != nil {
		c.log.Warn("failed to encode ledger for cache", slog.String("user_id", ledger.UserID), slog.Any("error", err))
		return
	}

	if err := c.client.Set(ctx, cacheKey(ledger.UserID), payload, c.ttl).Err(); err != nil {
		c.log.Warn("ledger cache write failed", slog.String("user_id", ledger.UserID), slog.Any("error", err))
	}
}

func cacheKey(userID string) string {
	return fmt.Sprintf("ledger:%s", userID)
}
