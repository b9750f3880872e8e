// Package cache holds search results between button presses.
//
// Every backend treats a missing key as expired. There is no way to tell a
// record that never existed from one whose TTL ran out.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyXiang/posterbot/media"
)

const KeyPrefix = "media:"

var ErrNotFound = errors.New("cache: entry not found or expired")

// Store is a TTL-bounded record store. Put replaces the whole record and
// restarts its TTL; reads never extend it.
type Store interface {
	Put(ctx context.Context, id string, record *media.Record, ttl time.Duration) error
	Get(ctx context.Context, id string) (*media.Record, error)
	Close() error
}

// Key returns the namespaced key for a media id.
func Key(id string) string {
	return KeyPrefix + id
}

func encode(record *media.Record) ([]byte, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return b, nil
}

func decode(b []byte) (*media.Record, error) {
	var record media.Record
	if err := json.Unmarshal(b, &record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &record, nil
}

const (
	BackendRedis  = "redis"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Open returns the store for a backend name. redisURL is used by the redis
// backend, badgerPath by the badger backend.
func Open(backend, redisURL, badgerPath string) (Store, error) {
	switch backend {
	case BackendRedis:
		s, err := NewRedisStore(redisURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendBadger:
		s, err := NewBadgerStore(badgerPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", backend)
}
