package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/summarist/pkg/cache"
	"github.com/dmitrymomot/summarist/pkg/redis"
)

// Cache stores raw endpoint responses. A miss returns (nil, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

type memoryEntry struct {
	val     []byte
	expires time.Time
}

// MemoryCache is an in-process LRU Cache.
type MemoryCache struct {
	lru *cache.LRUCache[string, memoryEntry]
	mu  sync.Mutex
	now func() time.Time
}

// NewMemoryCache creates an in-process cache holding at most capacity responses.
func NewMemoryCache(capacity int) *MemoryCache {
	return &MemoryCache{
		lru: cache.NewLRUCache[string, memoryEntry](max(capacity, 1)),
		now: time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.lru.Remove(key)
		return nil, nil
	}
	return e.val, nil
}

// Set stores val. A zero ttl never expires.
func (c *MemoryCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	e := memoryEntry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Put(key, e)
	return nil
}

// RedisCache keeps responses in Redis so they survive restarts and are
// shared between instances.
type RedisCache struct {
	storage *redis.Storage
}

// NewRedisCache creates a cache shared by every instance through redis.
func NewRedisCache(storage *redis.Storage) *RedisCache {
	return &RedisCache{storage: storage}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.storage.Get(ctx, key)
}

func (c *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.storage.Set(ctx, key, val, ttl)
}
