package cache

import (
	"context"
	"time"
)

// Store is a byte-value TTL cache used for route-level response
// caching. Get returns (nil, nil) on a miss; a read after the entry's
// TTL has elapsed is a miss and evicts the entry. Values are returned
// as stored, so callers must not mutate them.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Size(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// CacheConfig selects and configures the cache backend. The memory
// backend is the default; redis is available for deployments that want
// the cache shared across replicas. SingleFlight enables per-key
// in-flight request de-duplication in the response-cache layer.
type CacheConfig struct {
	Backend      string        `mapstructure:"backend"`
	SingleFlight bool          `mapstructure:"single_flight"`
	Addresses    []string      `mapstructure:"addresses"`
	Password     string        `mapstructure:"password"`
	Database     int           `mapstructure:"database"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DefaultCacheConfig returns the default configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Backend:      "memory",
		SingleFlight: false,
		Addresses:    []string{"localhost:6379"},
		Password:     "",
		Database:     0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}
