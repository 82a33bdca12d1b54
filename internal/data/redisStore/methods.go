package redisStore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func (s *Store) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, key).Result()
	return count > 0, err
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, key, ttl).Err()
}

func (s *Store) SetAdd(ctx context.Context, key string, members ...interface{}) error {
	return s.client.SAdd(ctx, key, members...).Err()
}

func (s *Store) SetMembers(ctx context.Context, key string) ([]string, error) {
	return s.client.SMembers(ctx, key).Result()
}

// MGet returns values in key order; missing keys come back as nil entries.
func (s *Store) MGet(ctx context.Context, keys ...string) ([]interface{}, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	return s.client.MGet(ctx, keys...).Result()
}

// ListPush appends and keeps at most maxLen most recent entries when maxLen > 0.
func (s *Store) ListPush(ctx context.Context, key string, value interface{}, maxLen int64) error {
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, value)
	if maxLen > 0 {
		pipe.LTrim(ctx, key, -maxLen, -1)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// ListGetLast returns up to n of the newest entries, oldest first.
func (s *Store) ListGetLast(ctx context.Context, key string, n int64) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}
	return s.client.LRange(ctx, key, -n, -1).Result()
}

// FlushDB empties the logical database this store is bound to.
func (s *Store) FlushDB(ctx context.Context) error {
	return s.client.FlushDB(ctx).Err()
}
