package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore backs the response cache with Redis so that multiple
// replicas of the proxy can share cached upstream payloads. Selected
// with cache.backend=redis; the memory backend remains the default.
type RedisStore struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(config *CacheConfig, logger *zap.Logger) (*RedisStore, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        config.Addresses,
		Password:     config.Password,
		DB:           config.Database,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, logger: logger}, nil
}

// Get returns the cached value, or (nil, nil) on a miss. Redis expires
// entries on its own, so no explicit eviction is needed here.
func (rs *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := rs.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		rs.logger.Error("failed to get cache entry", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return data, nil
}

// Set stores value under key for ttl.
func (rs *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := rs.client.Set(ctx, key, value, ttl).Err(); err != nil {
		rs.logger.Error("failed to set cache entry", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to set cache entry: %w", err)
	}

	rs.logger.Debug("cache entry set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

// Delete removes a key.
func (rs *RedisStore) Delete(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, key).Err(); err != nil {
		rs.logger.Error("failed to delete cache entry", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Clear wipes the backing database.
func (rs *RedisStore) Clear(ctx context.Context) error {
	if err := rs.client.FlushDB(ctx).Err(); err != nil {
		rs.logger.Error("failed to clear cache", zap.Error(err))
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	rs.logger.Info("cache cleared")
	return nil
}

// Size returns the number of keys in the backing database.
func (rs *RedisStore) Size(ctx context.Context) (int64, error) {
	size, err := rs.client.DBSize(ctx).Result()
	if err != nil {
		rs.logger.Error("failed to get cache size", zap.Error(err))
		return 0, fmt.Errorf("failed to get cache size: %w", err)
	}
	return size, nil
}

// Ping verifies the Redis connection.
func (rs *RedisStore) Ping(ctx context.Context) error {
	if err := rs.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (rs *RedisStore) Close() error {
	if err := rs.client.Close(); err != nil {
		rs.logger.Error("failed to close Redis connection", zap.Error(err))
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	return nil
}
