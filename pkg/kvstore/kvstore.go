// Package kvstore provides the durable key/value contract the alumni collection is persisted through,
// together with memory, file, Redis and PostgreSQL backends.
package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/alumni-hub-api/pkg/config"
)

// ErrQuotaExceeded is returned by Set when the backend has no room for the value.
var ErrQuotaExceeded = errors.New("kvstore: quota exceeded")

// Store is a string key/value store. Get reports absence through the boolean, not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Open builds the backend selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	limit := cfg.Storage.MaxValueBytes
	switch cfg.Storage.Backend {
	case "", config.StorageMemory:
		return NewMemoryStore(limit), nil
	case config.StorageFile:
		return NewFileStore(cfg.Storage.FileDir, limit)
	case config.StorageRedis:
		client, err := DialRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedisStore(client, limit), nil
	case config.StoragePostgres:
		db, err := OpenPostgres(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := NewPostgresStore(db, limit)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func exceeds(limit int64, size int) bool {
	return limit > 0 && int64(size) > limit
}
