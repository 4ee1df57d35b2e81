package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
)

const defaultPrefix = "oee:shiftcache:"

// RedisCache shares synthetic buckets between instances through Redis.
// Expiry is delegated to Redis key TTLs.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb, prefix: defaultPrefix, now: time.Now}
}

func (c *RedisCache) key(k models.CacheKey) string {
	return c.prefix + url.PathEscape(k.MachineCode) + ":" + url.PathEscape(k.OrderCode)
}

func (c *RedisCache) Get(ctx context.Context, key models.CacheKey) (models.ShiftBucket, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ShiftBucket{}, false, nil
	}
	if err != nil {
		return models.ShiftBucket{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var e models.CacheEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return models.ShiftBucket{}, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return e.Bucket, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key models.CacheKey, bucket models.ShiftBucket, ttl time.Duration) error {
	if ttl <= 0 {
		return c.Invalidate(ctx, key)
	}
	raw, err := c.encode(key, bucket, ttl)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, c.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, key models.CacheKey) error {
	if err := c.rdb.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis clear: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(batch) > 0 {
		if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis clear: %w", err)
		}
	}
	return nil
}

// GetOrGenerate stores the generated bucket with SETNX so concurrent callers
// across instances converge on the first writer's value.
func (c *RedisCache) GetOrGenerate(ctx context.Context, key models.CacheKey, ttl time.Duration, gen func() models.ShiftBucket) (models.ShiftBucket, bool, error) {
	if b, ok, err := c.Get(ctx, key); err != nil || ok {
		return b, ok, err
	}
	b := gen()
	if ttl <= 0 {
		return b, false, nil
	}
	raw, err := c.encode(key, b, ttl)
	if err != nil {
		return b, false, err
	}
	stored, err := c.rdb.SetNX(ctx, c.key(key), raw, ttl).Result()
	if err != nil {
		return b, false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if stored {
		return b, false, nil
	}
	if winner, ok, err := c.Get(ctx, key); err == nil && ok {
		return winner, true, nil
	}
	return b, false, nil
}

func (c *RedisCache) encode(key models.CacheKey, bucket models.ShiftBucket, ttl time.Duration) ([]byte, error) {
	raw, err := json.Marshal(models.CacheEntry{
		Key:        key,
		Bucket:     bucket,
		InsertedAt: c.now().UTC(),
		TTL:        ttl,
	})
	if err != nil {
		return nil, fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	return raw, nil
}
