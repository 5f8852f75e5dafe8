// Package cache provides the canonical key normalizer and the durable
// key→image stores behind the generation pipeline.
package cache

import (
	"context"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Entry is one cached render: the encoded image bytes plus the content
// type they carry. Entries are immutable once written.
type Entry struct {
	Bytes       []byte    `msgpack:"b"`
	ContentType string    `msgpack:"ct"`
	CreatedAt   time.Time `msgpack:"at"`
}

// Store is a byte-transparent key→entry mapping. Implementations must be
// safe for concurrent use, and writes to different keys must not block
// each other. Get returns (entry, true, nil) on hit and (zero, false,
// nil) on miss; errors are reserved for storage faults. A nil-error Put
// means the entry is durable to the backend's full guarantee.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, e Entry) error
	Close(ctx context.Context) error
}

func encodeEntry(e Entry) ([]byte, error) {
	return msgpack.Marshal(e)
}

func decodeEntry(b []byte) (Entry, error) {
	var e Entry
	err := msgpack.Unmarshal(b, &e)
	return e, err
}
