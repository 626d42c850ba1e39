package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is a namespaced key-value wrapper over a Redis client.
// Web sessions and cached catalog responses are stored through it.
type Storage struct {
	db     redis.UniversalClient
	prefix string
}

// NewStorage creates a storage whose keys are prefixed with prefix.
func NewStorage(client redis.UniversalClient, prefix string) *Storage {
	return &Storage{db: client, prefix: prefix}
}

// Get returns the stored value. A missing key yields (nil, nil).
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	val, err := s.db.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores val under key. A zero ttl keeps the key without expiration.
// Empty keys and values are ignored.
func (s *Storage) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return s.db.Set(ctx, s.prefix+key, val, ttl).Err()
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.db.Del(ctx, s.prefix+key).Err()
}

// Touch extends the expiration of key.
func (s *Storage) Touch(ctx context.Context, key string, ttl time.Duration) error {
	if key == "" {
		return nil
	}
	return s.db.Expire(ctx, s.prefix+key, ttl).Err()
}
