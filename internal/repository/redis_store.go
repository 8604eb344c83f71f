package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps blobs as plain Redis strings under Prefix + ":" + key.
// Keys never expire.
type RedisStore struct {
	RDB    *redis.Client
	Prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "seating"
	}
	return &RedisStore{RDB: rdb, Prefix: prefix}
}

func (s *RedisStore) key(k string) string { return s.Prefix + ":" + k }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.RDB.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	return s.RDB.Set(ctx, s.key(key), data, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.RDB.Del(ctx, s.key(key)).Err()
}

func (s *RedisStore) Rename(ctx context.Context, from, to string) error {
	n, err := s.RDB.Exists(ctx, s.key(from)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return s.RDB.Rename(ctx, s.key(from), s.key(to)).Err()
}
