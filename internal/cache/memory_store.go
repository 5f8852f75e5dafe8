package cache

import (
	"context"
	"errors"

	"github.com/dgraph-io/ristretto"
)

// MemoryStore is a non-durable backend for development and tests, backed
// by a cost-bounded ristretto cache. Entries are stored in their encoded
// form so the backend stays byte-transparent.
type MemoryStore struct {
	c *ristretto.Cache
}

func NewMemoryStore(maxBytes int64) (*MemoryStore, error) {
	if maxBytes <= 0 {
		return nil, errors.New("memory store: max bytes must be positive")
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 16,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryStore{c: c}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return Entry{}, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		s.c.Del(key)
		return Entry{}, false, nil
	}
	e, err := decodeEntry(b)
	if err != nil {
		s.c.Del(key)
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, e Entry) error {
	data, err := encodeEntry(e)
	if err != nil {
		return err
	}
	// A rejected write under pressure just means "not cached"; Wait makes
	// accepted writes visible before Put returns.
	s.c.Set(key, data, int64(len(data)))
	s.c.Wait()
	return nil
}

func (s *MemoryStore) Close(context.Context) error {
	s.c.Close()
	return nil
}
