package store

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/bistroplan/bistroplan/internal/draft"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newCachedStore(t *testing.T) (*RedisIndexCache, *FileStore, *mr.Miniredis) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)

	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	return NewRedisIndexCache(fs, client, 5*time.Second), fs, m
}

func TestRedisIndexCache_WriteThrough(t *testing.T) {
	cache, inner, _ := newCachedStore(t)
	ctx := context.Background()

	d := draft.New("a")
	require.NoError(t, cache.SaveDraftsIndex(ctx, "u", "app", []draft.Summary{d.Summarize()}))

	// both the cache and the primary store hold the index
	idx, err := cache.LoadDraftsIndex(ctx, "u", "app")
	require.NoError(t, err)
	require.Len(t, idx, 1)

	idx, err = inner.LoadDraftsIndex(ctx, "u", "app")
	require.NoError(t, err)
	require.Len(t, idx, 1)
}

func TestRedisIndexCache_ServesFromCache(t *testing.T) {
	cache, inner, _ := newCachedStore(t)
	ctx := context.Background()

	d := draft.New("a")
	require.NoError(t, cache.SaveDraftsIndex(ctx, "u", "app", []draft.Summary{d.Summarize()}))

	// wipe the primary copy; the cached entry still answers
	require.NoError(t, inner.SaveDraftsIndex(ctx, "u", "app", []draft.Summary{}))
	idx, err := cache.LoadDraftsIndex(ctx, "u", "app")
	require.NoError(t, err)
	require.Len(t, idx, 1)
}

func TestRedisIndexCache_ExpiryFallsThrough(t *testing.T) {
	cache, _, m := newCachedStore(t)
	ctx := context.Background()

	d := draft.New("a")
	require.NoError(t, cache.SaveDraftsIndex(ctx, "u", "app", []draft.Summary{d.Summarize()}))

	// advance miniredis clock past the TTL; the read must hit the primary
	// store and repopulate the cache
	m.FastForward(6 * time.Second)
	idx, err := cache.LoadDraftsIndex(ctx, "u", "app")
	require.NoError(t, err)
	require.Len(t, idx, 1)
	require.True(t, m.Exists("draftindex:u:app"))
}

func TestRedisIndexCache_DraftOpsPassThrough(t *testing.T) {
	cache, inner, _ := newCachedStore(t)
	ctx := context.Background()

	d := draft.New("a")
	require.NoError(t, cache.SaveDraft(ctx, "u", "app", d))
	got, err := inner.LoadDrafts(ctx, "u", "app")
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, cache.DeleteDraft(ctx, "u", "app", d.ID))
	got, err = cache.LoadDrafts(ctx, "u", "app")
	require.NoError(t, err)
	require.Empty(t, got)
}
