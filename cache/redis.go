package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/RoyXiang/posterbot/media"
)

type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the redis server at url, for example
// redis://localhost:6379/0.
func NewRedisStore(url string) (*RedisStore, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisStoreWithClient(redis.NewClient(options)), nil
}

func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, id string, record *media.Record, ttl time.Duration) error {
	b, err := encode(record)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, Key(id), b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", Key(id), err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*media.Record, error) {
	b, err := s.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", Key(id), err)
	}
	return decode(b)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
