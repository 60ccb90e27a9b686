package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TissotPA/Match/internal/adapters/store"
	"github.com/TissotPA/Match/internal/domain/model"
	"github.com/TissotPA/Match/pkg/metrics"
)

// autosaver writes snapshots in version order. Changes handed over late by
// a slower worker are skipped.
type autosaver struct {
	mu    sync.Mutex
	store store.Store
	key   string
	last  uint64
}

func newAutosaver(st store.Store, key string) *autosaver {
	return &autosaver{store: st, key: key}
}

// Handle saves c.Snapshot unless a newer version was already written.
func (a *autosaver) Handle(ctx context.Context, c model.Change) error {
	_, err := a.save(ctx, c.Version, c.Snapshot)
	return err
}

// save reports whether data was written.
func (a *autosaver) save(ctx context.Context, version uint64, data []byte) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if version <= a.last {
		metrics.RecordSnapshotStale()
		return false, nil
	}
	start := time.Now()
	err := a.store.Save(ctx, a.key, data)
	latency := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordSnapshotSave("error", latency)
		metrics.RecordErrorByComponent("autosave", "save")
		return false, fmt.Errorf("autosave version %d: %w", version, err)
	}
	metrics.RecordSnapshotSave("ok", latency)
	a.last = version
	return true, nil
}

// saved returns the last written version.
func (a *autosaver) saved() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}
