package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bistroplan/bistroplan/internal/draft"
	"github.com/redis/go-redis/v9"
)

// RedisIndexCache decorates a Store with a Redis-cached drafts index so
// listing does not touch the primary store. The index is a derived cache: a
// miss or a stale entry just falls through to the underlying store.
// Entries are stored as JSON under "draftindex:<userID>:<appID>" with a TTL.
type RedisIndexCache struct {
	Store
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIndexCache(inner Store, client *redis.Client, ttl time.Duration) *RedisIndexCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisIndexCache{Store: inner, client: client, ttl: ttl}
}

func (c *RedisIndexCache) key(userID, appID string) string {
	return fmt.Sprintf("draftindex:%s:%s", userID, appID)
}

func (c *RedisIndexCache) SaveDraftsIndex(ctx context.Context, userID, appID string, index []draft.Summary) error {
	if b, err := json.Marshal(index); err == nil {
		// cache write failures are non-fatal; the primary store still holds the index
		_ = c.client.Set(ctx, c.key(userID, appID), b, c.ttl).Err()
	}
	return c.Store.SaveDraftsIndex(ctx, userID, appID, index)
}

func (c *RedisIndexCache) LoadDraftsIndex(ctx context.Context, userID, appID string) ([]draft.Summary, error) {
	b, err := c.client.Get(ctx, c.key(userID, appID)).Bytes()
	if err == nil {
		var index []draft.Summary
		if err := json.Unmarshal(b, &index); err == nil {
			return index, nil
		}
		// corrupt cache entry: drop it and fall through
		_ = c.client.Del(ctx, c.key(userID, appID)).Err()
	}
	// miss, corrupt entry, or redis unreachable: read through
	index, err := c.Store.LoadDraftsIndex(ctx, userID, appID)
	if err != nil {
		return nil, err
	}
	if b, merr := json.Marshal(index); merr == nil {
		_ = c.client.Set(ctx, c.key(userID, appID), b, c.ttl).Err()
	}
	return index, nil
}
