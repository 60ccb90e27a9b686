// Package store persists snapshot blobs under well-known keys.
//
// Every backend replaces the whole blob on Save; a reader never sees a
// partially written snapshot.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/TissotPA/Match/internal/config"
	"github.com/redis/go-redis/v9"
)

// Store provides keyed read/write access to snapshot blobs.
type Store interface {
	// Save replaces the blob stored under key.
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the blob stored under key.
	// Returns ErrNotFound if nothing was saved under key.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Open builds the backend selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (Store, error) {
	opts = append([]Option{WithTTL(cfg.RedisTTL())}, opts...)
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return NewMemory(), nil
	case config.BackendFile:
		return NewFile(cfg.StorePath)
	case config.BackendRedis:
		ropts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(ropts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedis(client, opts...), nil
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		s, err := NewPostgres(ctx, db, opts...)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StoreBackend)
	}
}

func checkKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}
