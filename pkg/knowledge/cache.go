package knowledge

import (
	"context"
	"errors"
	"time"

	"voice-assistant-be/internal/pkg/logger"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache stores finished answers. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// MemoryCache keeps answers in process memory with a TTL.
type MemoryCache struct {
	cache *cache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	// Purge expired entries at twice the TTL
	return &MemoryCache{cache: cache.New(ttl, 2*ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	if x, found := c.cache.Get(key); found {
		return x.(string), true
	}
	return "", false
}

func (c *MemoryCache) Set(_ context.Context, key, value string) {
	c.cache.Set(key, value, cache.DefaultExpiration)
}

// RedisCache shares answers between instances. Redis failures degrade to misses.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	logger logger.ILogger
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration, log logger.ILogger) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl, prefix: "assistant:knowledge:", logger: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.rdb.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("KNOWLEDGE", "Redis cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string) {
	if err := c.rdb.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("KNOWLEDGE", "Redis cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

// TieredCache reads through the tiers in order and back-fills the faster ones.
type TieredCache struct {
	tiers []Cache
}

func NewTieredCache(tiers ...Cache) *TieredCache {
	return &TieredCache{tiers: tiers}
}

func (c *TieredCache) Get(ctx context.Context, key string) (string, bool) {
	for i, tier := range c.tiers {
		if val, ok := tier.Get(ctx, key); ok {
			for j := 0; j < i; j++ {
				c.tiers[j].Set(ctx, key, val)
			}
			return val, true
		}
	}
	return "", false
}

func (c *TieredCache) Set(ctx context.Context, key, value string) {
	for _, tier := range c.tiers {
		tier.Set(ctx, key, value)
	}
}

type noCache struct{}

func (noCache) Get(context.Context, string) (string, bool) { return "", false }
func (noCache) Set(context.Context, string, string)        {}
