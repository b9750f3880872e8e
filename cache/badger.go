package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/RoyXiang/posterbot/media"
)

// BadgerStore keeps records in an embedded badger database using badger's
// native per-entry TTL. Expiry resolution is one second.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens a database at path. An empty path opens an
// in-memory database.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Put(_ context.Context, id string, record *media.Record, ttl time.Duration) error {
	b, err := encode(record)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(Key(id)), b).WithTTL(ttl))
	})
}

func (s *BadgerStore) Get(_ context.Context, id string) (*media.Record, error) {
	var record *media.Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(Key(id)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			record, err = decode(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
