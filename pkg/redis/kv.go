package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is a context-aware byte store over a go-redis client. Misses are
// reported as nil values, never as redis.Nil.
type KV struct {
	db redis.UniversalClient
}

func NewKV(client redis.UniversalClient) *KV {
	return &KV{db: client}
}

// Get returns nil, nil when the key does not exist.
func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	val, err := s.db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// MGet returns one entry per key, nil where the key is missing.
func (s *KV) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := s.db.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([][]byte, len(vals))
	for i, v := range vals {
		switch val := v.(type) {
		case string:
			out[i] = []byte(val)
		case []byte:
			out[i] = val
		}
	}
	return out, nil
}

// Set stores the value with SET EX. A zero ttl keeps the key forever.
func (s *KV) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.db.Set(ctx, key, val, ttl).Err()
}

func (s *KV) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.Del(ctx, keys...).Err()
}

func (s *KV) SAdd(ctx context.Context, key, member string) error {
	return s.db.SAdd(ctx, key, member).Err()
}

func (s *KV) SRem(ctx context.Context, key, member string) error {
	return s.db.SRem(ctx, key, member).Err()
}

// SMembers returns an empty slice for a missing set.
func (s *KV) SMembers(ctx context.Context, key string) ([]string, error) {
	return s.db.SMembers(ctx, key).Result()
}

// Client exposes the underlying client for operations KV does not cover.
func (s *KV) Client() redis.UniversalClient {
	return s.db
}
