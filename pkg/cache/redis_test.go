package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCache(client, 5*time.Minute), mr
}

func TestRedisCachePutGet(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisCache(t)

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	res := testResult()
	c.Put(ctx, "k1", res)

	got, ok := c.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, res.ElapsedSeconds, got.ElapsedSeconds)
	assert.Equal(t, 1, c.Entries(ctx))
}

func TestRedisCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)

	c.Put(ctx, "k1", testResult())

	mr.FastForward(5*time.Minute + time.Second)
	_, ok := c.Get(ctx, "k1")
	assert.False(t, ok)
}

func TestRedisCacheInvalidateAll(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisCache(t)

	c.Put(ctx, "k1", testResult())
	c.Put(ctx, "k2", testResult())
	assert.Equal(t, 2, c.Entries(ctx))

	c.InvalidateAll(ctx)
	assert.Equal(t, 0, c.Entries(ctx))
}
