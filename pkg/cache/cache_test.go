package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mleray/forecastgate/pkg/forecast"
)

func testResult() *forecast.SegmentedResult {
	res := &forecast.SegmentedResult{ElapsedSeconds: 1.2}
	res.Set(
		forecast.Pair{Segment: forecast.SegmentRetail, Type: forecast.TypeSales},
		forecast.PairResult{Series: &forecast.PredictionSeries{Confidence: forecast.ConfidenceHigh}},
	)
	return res
}

func TestMemoryCachePutGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(DefaultTTL)

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	res := testResult()
	c.Put(ctx, "k1", res)

	got, ok := c.Get(ctx, "k1")
	assert.True(t, ok)
	assert.Same(t, res, got)
	assert.Equal(t, 1, c.Entries(ctx))
}

func TestMemoryCacheLazyEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(5 * time.Minute)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.SetNowFunc(func() time.Time { return now })

	c.Put(ctx, "k1", testResult())

	// One nanosecond short of the TTL still serves.
	now = now.Add(5*time.Minute - time.Nanosecond)
	_, ok := c.Get(ctx, "k1")
	assert.True(t, ok)

	// At exactly the TTL the entry is expired and removed by the lookup.
	now = now.Add(time.Nanosecond)
	_, ok = c.Get(ctx, "k1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Entries(ctx))
}

func TestMemoryCachePutReplaces(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(5 * time.Minute)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.SetNowFunc(func() time.Time { return now })

	c.Put(ctx, "k1", testResult())

	// A fresh Put supersedes the old entry and restarts its clock.
	now = now.Add(4 * time.Minute)
	replacement := testResult()
	c.Put(ctx, "k1", replacement)

	now = now.Add(4 * time.Minute)
	got, ok := c.Get(ctx, "k1")
	assert.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestMemoryCacheInvalidateAll(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(DefaultTTL)
	c.Put(ctx, "k1", testResult())
	c.Put(ctx, "k2", testResult())
	assert.Equal(t, 2, c.Entries(ctx))

	c.InvalidateAll(ctx)
	assert.Equal(t, 0, c.Entries(ctx))
	_, ok := c.Get(ctx, "k1")
	assert.False(t, ok)
}

func TestMemoryCacheDefaultTTL(t *testing.T) {
	c := NewMemoryCache(0)
	assert.Equal(t, DefaultTTL, c.ttl)
}
