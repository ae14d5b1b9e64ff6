package redisStore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PutJSON stores v marshalled under key for ttl.
func (s *Store) PutJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// FetchJSON decodes key into dst. A missing key is (false, nil).
func (s *Store) FetchJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := s.FetchText(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) PutText(ctx context.Context, key string, text string, ttl time.Duration) error {
	return s.client.Set(ctx, key, text, ttl).Err()
}

// FetchText reads a plain string value. A missing key is ("", false, nil).
func (s *Store) FetchText(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *Store) Remove(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}
