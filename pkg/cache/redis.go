package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mleray/forecastgate/pkg/forecast"
)

const redisKeyPrefix = "forecastgate:result:"

// RedisCache is a ResultCache backed by Redis, for deployments running
// more than one replica against the same upstream generator. Expiry is
// delegated to Redis key TTLs, so lookups after the TTL simply miss.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*forecast.SegmentedResult, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("redis GET %s failed: %v", key, err)
		}
		cacheMisses.Inc()
		return nil, false
	}
	var result forecast.SegmentedResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		log.Printf("failed to unmarshal cached result for %s: %v", key, err)
		cacheMisses.Inc()
		return nil, false
	}
	cacheHits.Inc()
	return &result, true
}

func (c *RedisCache) Put(ctx context.Context, key string, result *forecast.SegmentedResult) {
	data, err := json.Marshal(result)
	if err != nil {
		log.Printf("failed to marshal result for %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		log.Printf("redis SET %s failed: %v", key, err)
	}
}

func (c *RedisCache) InvalidateAll(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("redis SCAN failed: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("redis DEL failed: %v", err)
	}
}

func (c *RedisCache) Entries(ctx context.Context) int {
	var count int
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		log.Printf("redis SCAN failed: %v", err)
		return 0
	}
	return count
}
