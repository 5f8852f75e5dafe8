package cache

import (
	"fmt"

	"go.uber.org/zap"
)

// NewStore creates a store instance based on the configured backend.
func NewStore(kind, sqlitePath, fileDir string, memoryMaxBytes int64, log *zap.Logger) (Store, error) {
	switch kind {
	case "sqlite":
		log.Info("Using sqlite store", zap.String("path", sqlitePath))
		return NewSQLiteStore(sqlitePath)
	case "file":
		log.Info("Using file store", zap.String("dir", fileDir))
		return NewFileStore(fileDir)
	case "memory":
		log.Info("Using memory store", zap.Int64("max_bytes", memoryMaxBytes))
		return NewMemoryStore(memoryMaxBytes)
	case "disabled":
		log.Info("Cache disabled")
		return NewNoopStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: sqlite, file, memory, disabled)", kind)
	}
}
