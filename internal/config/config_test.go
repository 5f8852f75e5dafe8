package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Host)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, "platzhalter.db", cfg.SQLitePath)
	assert.Equal(t, 3000, cfg.MaxDimension)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.WarmupSizes)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HOST", ":9090")
	t.Setenv("STORE", "file")
	t.Setenv("FILE_STORE_DIR", "/var/cache/platzhalter")
	t.Setenv("MAX_DIMENSION", "1024")
	t.Setenv("WARMUP_SIZES", "300x250,728x90")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Host)
	assert.Equal(t, "file", cfg.Store)
	assert.Equal(t, "/var/cache/platzhalter", cfg.FileStoreDir)
	assert.Equal(t, 1024, cfg.MaxDimension)
	assert.Equal(t, []string{"300x250", "728x90"}, cfg.WarmupSizes)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("MAX_DIMENSION", "not a number")

	_, err := Load()
	require.Error(t, err)
}
