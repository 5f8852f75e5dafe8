package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps one msgpack-encoded entry per file, sharded by the
// first bytes of the hashed key.
// Structure: {dir}/{hh}/{hash}.bin
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) entryPath(key string) string {
	h := HashKey(key)
	return filepath.Join(s.dir, h[:2], h+".bin")
}

func (s *FileStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	path := s.entryPath(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("file get: %w", err)
	}

	e, err := decodeEntry(data)
	if err != nil {
		// self-heal: drop the corrupt file and report a miss so the
		// pipeline regenerates it
		os.Remove(path)
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (s *FileStore) Put(ctx context.Context, key string, e Entry) error {
	data, err := encodeEntry(e)
	if err != nil {
		return fmt.Errorf("file put: %w", err)
	}

	path := s.entryPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("file put: %w", err)
	}

	// Write atomically; the pipeline guarantees a single writer per key.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("file put: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("file put: %w", err)
	}
	return nil
}

func (s *FileStore) Close(context.Context) error {
	return nil
}
