package utils

import (
	"context"
	"time"
)

// ObjectInfo describes one stored artifact object.
type ObjectInfo struct {
	Key     string
	Size    int64
	Updated time.Time
}

// ArtifactStorage is the durable blob store behind every export artifact.
// Keys are slash-separated paths like "exports/excel/2026/08/....xlsx".
type ArtifactStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	Size(ctx context.Context, key string) (int64, error)
	// URL returns a stable access reference for the object. It does not
	// guarantee the object exists.
	URL(key string) string
}

// NewArtifactStorage selects the storage backend from STORAGE_PROVIDER.
func NewArtifactStorage() (ArtifactStorage, error) {
	switch GetStorageProvider() {
	case StorageProviderLocal:
		return NewLocalStorage()
	default:
		return NewGCSStorage()
	}
}
