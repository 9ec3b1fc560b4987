package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is the default in-process cache. Expired entries are
// evicted lazily on read; there is no background sweep, so memory
// grows with distinct keys until process restart. The key space is
// bounded by route x query combinations actually requested.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	logger  *zap.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		logger:  logger,
	}
}

// Get returns the cached value, or (nil, nil) when the key is absent
// or its TTL has elapsed. An elapsed entry is removed.
func (ms *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	ms.mu.RLock()
	entry, ok := ms.entries[key]
	ms.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	if time.Now().After(entry.expiresAt) {
		ms.mu.Lock()
		// Recheck under the write lock; a fresh Set may have raced in.
		if cur, ok := ms.entries[key]; ok && time.Now().After(cur.expiresAt) {
			delete(ms.entries, key)
		}
		ms.mu.Unlock()
		ms.logger.Debug("cache entry expired", zap.String("key", key))
		return nil, nil
	}

	return entry.value, nil
}

// Set stores value under key for ttl.
func (ms *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ms.mu.Lock()
	ms.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	ms.mu.Unlock()

	ms.logger.Debug("cache entry set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

// Delete removes a key.
func (ms *MemoryStore) Delete(ctx context.Context, key string) error {
	ms.mu.Lock()
	delete(ms.entries, key)
	ms.mu.Unlock()
	return nil
}

// Clear wipes the whole store.
func (ms *MemoryStore) Clear(ctx context.Context) error {
	ms.mu.Lock()
	ms.entries = make(map[string]memoryEntry)
	ms.mu.Unlock()

	ms.logger.Info("cache cleared")
	return nil
}

// Size returns the number of entries, expired ones included.
func (ms *MemoryStore) Size(ctx context.Context) (int64, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return int64(len(ms.entries)), nil
}

// Ping reports the store as always reachable.
func (ms *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory backend.
func (ms *MemoryStore) Close() error {
	return nil
}
