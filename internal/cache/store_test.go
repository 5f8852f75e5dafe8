package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testEntry(body string) Entry {
	return Entry{
		Bytes:       []byte(body),
		ContentType: "image/png",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

// storeRoundTrip exercises the Store contract shared by all backends.
func storeRoundTrip(t *testing.T, s Store) {
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	want := testEntry("png bytes")
	require.NoError(t, s.Put(ctx, "k1", want))

	got, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Bytes, got.Bytes)
	assert.Equal(t, want.ContentType, got.ContentType)

	// insert-or-replace: last write wins
	replaced := testEntry("replacement bytes")
	require.NoError(t, s.Put(ctx, "k1", replaced))

	got, ok, err = s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, replaced.Bytes, got.Bytes)

	// unrelated key is untouched
	_, ok, err = s.Get(ctx, "k2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close(context.Background())

	storeRoundTrip(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	want := testEntry("durable bytes")
	require.NoError(t, s.Put(ctx, "k1", want))
	require.NoError(t, s.Close(ctx))

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close(ctx)

	got, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Bytes, got.Bytes)
	assert.Equal(t, want.ContentType, got.ContentType)
	assert.Equal(t, want.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close(context.Background())

	storeRoundTrip(t, s)
}

func TestFileStoreSelfHealsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "k1", testEntry("bytes")))

	var entryFiles []string
	require.NoError(t, filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			entryFiles = append(entryFiles, path)
		}
		return err
	}))
	require.Len(t, entryFiles, 1)
	require.NoError(t, os.WriteFile(entryFiles[0], []byte("not msgpack"), 0644))

	_, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok, "corrupt entry reads as a miss")
	assert.NoFileExists(t, entryFiles[0], "corrupt entry is removed")
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s, err := NewMemoryStore(1 << 20)
	require.NoError(t, err)
	defer s.Close(context.Background())

	storeRoundTrip(t, s)
}

func TestNoopStoreAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	s := NewNoopStore()

	require.NoError(t, s.Put(ctx, "k1", testEntry("bytes")))
	_, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewStoreSelectsBackend(t *testing.T) {
	log := zaptest.NewLogger(t)
	dir := t.TempDir()

	tests := []struct {
		kind string
		want any
	}{
		{"sqlite", (*SQLiteStore)(nil)},
		{"file", (*FileStore)(nil)},
		{"memory", (*MemoryStore)(nil)},
		{"disabled", (*NoopStore)(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			s, err := NewStore(tt.kind, filepath.Join(dir, tt.kind+".db"), filepath.Join(dir, tt.kind), 1<<20, log)
			require.NoError(t, err)
			assert.IsType(t, tt.want, s)
			s.Close(context.Background())
		})
	}
}

func TestNewStoreRejectsUnknownBackend(t *testing.T) {
	_, err := NewStore("redis", "", "", 0, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}
