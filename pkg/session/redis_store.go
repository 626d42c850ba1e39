package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/summarist/pkg/redis"
)

// RedisStore keeps sessions as JSON values that expire with the session.
type RedisStore struct {
	kv *redis.Storage
}

// NewRedisStore stores sessions through kv (typically prefixed "session:").
func NewRedisStore(kv *redis.Storage) *RedisStore {
	return &RedisStore{kv: kv}
}

func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	return r.put(ctx, s)
}

func (r *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	raw, err := r.kv.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if raw == nil {
		return nil, ErrSessionNotFound
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.IsExpired(time.Now()) {
		_ = r.kv.Delete(ctx, token)
		return nil, ErrSessionExpired
	}
	return &s, nil
}

func (r *RedisStore) Update(ctx context.Context, s *Session) error {
	raw, err := r.kv.Get(ctx, s.Token)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if raw == nil {
		return ErrSessionNotFound
	}
	return r.put(ctx, s)
}

func (r *RedisStore) Delete(ctx context.Context, token string) error {
	return r.kv.Delete(ctx, token)
}

func (r *RedisStore) put(ctx context.Context, s *Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.Join(ErrSessionExpired, r.kv.Delete(ctx, s.Token))
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.kv.Set(ctx, s.Token, raw, ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
