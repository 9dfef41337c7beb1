package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"telegram-alerts-go/alert"

	"ticket-admin-service/internal/config"
	"ticket-admin-service/internal/metrics"
)

// RedisProvider keeps ticket records in redis, one string value per ticket.
type RedisProvider struct {
	rdb *redis.Client
}

func NewRedisProvider(ctx context.Context, cfg config.Redis) (*RedisProvider, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	// Connection check
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	zap.S().Infow("connected to redis", "host", cfg.Host, "port", cfg.Port)

	return &RedisProvider{rdb: rdb}, nil
}

func (p *RedisProvider) BatchGet(ctx context.Context, keys []string) (result map[string]string, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordProviderLatency("redis", "get", time.Since(start).Seconds())
		metrics.RecordProviderOp("redis", "get", err)
	}()

	result = make(map[string]string, len(keys))
	for _, chunk := range splitToChunks(keys) {
		vals, err := p.rdb.MGet(ctx, chunk...).Result()
		if err != nil {
			return nil, fmt.Errorf("redis batch get failed: %w", err)
		}
		for i, key := range chunk {
			if i < len(vals) && vals[i] != nil {
				if str, ok := vals[i].(string); ok {
					result[key] = str
				}
			}
		}
	}
	return result, nil
}

func (p *RedisProvider) BatchPut(ctx context.Context, items map[string]string) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordProviderLatency("redis", "put", time.Since(start).Seconds())
		metrics.RecordProviderOp("redis", "put", err)
	}()

	for chunkIndex, chunk := range splitItemsToChunks(items) {
		pipe := p.rdb.Pipeline()
		for key, value := range chunk {
			pipe.Set(ctx, key, value, 0)
		}
		if _, err = pipe.Exec(ctx); err != nil {
			zap.S().Errorw(alert.Prefix("redis pipeline exec error"), "chunk", chunkIndex, "error", err)
			return fmt.Errorf("redis batch put failed (chunk %d): %w", chunkIndex, err)
		}
	}
	return nil
}

func (p *RedisProvider) BatchDelete(ctx context.Context, keys []string) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordProviderLatency("redis", "delete", time.Since(start).Seconds())
		metrics.RecordProviderOp("redis", "delete", err)
	}()

	for chunkIndex, chunk := range splitToChunks(keys) {
		if _, err = p.rdb.Unlink(ctx, chunk...).Result(); err != nil {
			zap.S().Errorw(alert.Prefix("redis unlink error"), "chunk", chunkIndex, "error", err)
			return fmt.Errorf("redis batch delete failed (chunk %d): %w", chunkIndex, err)
		}
	}
	return nil
}

func (p *RedisProvider) Close() error {
	return p.rdb.Close()
}
