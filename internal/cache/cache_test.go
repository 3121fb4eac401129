// internal/cache/cache_test.go
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudtask/internal/common/config"
	"cloudtask/internal/common/database"
	"cloudtask/internal/common/logger"
	"cloudtask/internal/models"
	"cloudtask/internal/query"
)

func newTestCache(t *testing.T) (*SearchCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	cache := NewSearchCache(client, config.CacheConfig{
		TTLMinutes: 15,
		KeyPrefix:  "cloudtask:search:",
	}, logger.NewTestLogger(t))
	return cache, mr
}

func statusFilter(status string) *query.Filter {
	f := query.NewFilter()
	f.Fields["status"] = query.Constraint{query.OpEq: status}
	return f
}

func TestSearchCache_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	f := statusFilter("active")

	var missed []models.Task
	assert.False(t, cache.Get(ctx, f, &missed))

	stored := []models.Task{{ID: 1, Title: "Report", Priority: 8}}
	cache.Set(ctx, f, stored)

	var got []models.Task
	require.True(t, cache.Get(ctx, f, &got))
	assert.Equal(t, stored, got)
}

func TestSearchCache_KeyIsStructural(t *testing.T) {
	cache, _ := newTestCache(t)

	assert.Equal(t, cache.Key(statusFilter("active")), cache.Key(statusFilter("active")))
	assert.NotEqual(t, cache.Key(statusFilter("active")), cache.Key(statusFilter("done")))

	withLimit := statusFilter("active")
	withLimit.Limit = 10
	assert.NotEqual(t, cache.Key(statusFilter("active")), cache.Key(withLimit))
}

func TestSearchCache_EntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	f := statusFilter("active")

	cache.Set(ctx, f, []models.Task{{ID: 1, Title: "x"}})
	mr.FastForward(16 * time.Minute)

	var got []models.Task
	assert.False(t, cache.Get(ctx, f, &got))
}

func TestSearchCache_Clear(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, statusFilter("active"), []models.Task{{ID: 1, Title: "a"}})
	cache.Set(ctx, statusFilter("done"), []models.Task{{ID: 2, Title: "b"}})
	mr.Set("unrelated:key", "keep me")

	deleted, err := cache.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	var got []models.Task
	assert.False(t, cache.Get(ctx, statusFilter("active"), &got))

	kept, err := mr.Get("unrelated:key")
	require.NoError(t, err)
	assert.Equal(t, "keep me", kept)
}
