package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iwtcode/oeeMonitor"
	"github.com/iwtcode/oeeMonitor/internal/cache"
	"github.com/iwtcode/oeeMonitor/internal/interfaces"
)

// NewShiftCache uses Redis when REDIS_ADDR is set so several instances share
// synthetic buckets; otherwise an in-process cache.
func NewShiftCache(cfg *oeeMonitor.Config, log *zap.Logger) (interfaces.ShiftCache, error) {
	if cfg.RedisAddr == "" {
		log.Info("shift cache: in-memory")
		return cache.NewMemoryCache(), nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	log.Info("shift cache: redis", zap.String("addr", cfg.RedisAddr))
	return cache.NewRedisCache(rdb), nil
}
