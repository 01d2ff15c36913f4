package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"ai-eventplanner-be/internal/pkg/logger"
)

const queryCacheTTL = 24 * time.Hour

// RedisQueryCache caches query embeddings across requests, keyed by a
// SHA-256 of the query text. Any Redis failure degrades to a cache miss.
type RedisQueryCache struct {
	rdb    *redis.Client
	logger logger.ILogger
}

func NewRedisQueryCache(rdb *redis.Client, log logger.ILogger) *RedisQueryCache {
	return &RedisQueryCache{
		rdb:    rdb,
		logger: log,
	}
}

func queryCacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "query_embedding:" + hex.EncodeToString(sum[:])
}

func (c *RedisQueryCache) Get(ctx context.Context, text string) ([]float32, bool) {
	raw, err := c.rdb.Get(ctx, queryCacheKey(text)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("querycache", "redis read failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, false
	}

	var vector []float32
	if err := json.Unmarshal(raw, &vector); err != nil {
		c.logger.Warn("querycache", "corrupt cache entry, ignoring", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false
	}
	return vector, true
}

func (c *RedisQueryCache) Set(ctx context.Context, text string, vector []float32) {
	raw, err := json.Marshal(vector)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, queryCacheKey(text), raw, queryCacheTTL).Err(); err != nil {
		c.logger.Warn("querycache", "redis write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
