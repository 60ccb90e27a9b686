package app

import (
	"context"
	"time"

	"github.com/TissotPA/Match/internal/adapters/store"
	"github.com/TissotPA/Match/internal/domain/snapshot"
	"github.com/TissotPA/Match/pkg/logger"
)

// TemplateSource provides the player list for a new match.
type TemplateSource interface {
	Fetch(ctx context.Context) (snapshot.Document, error)
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets where snapshots and recaps are persisted.
func WithStore(st store.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithTemplate sets the new-match template source.
func WithTemplate(t TemplateSource) Option {
	return func(s *Service) {
		s.template = t
	}
}

// WithWorkerCount sets the number of change workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending changes.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many stat request ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithKeys sets the snapshot and recap key names.
func WithKeys(snapshotKey, recapKey string) Option {
	return func(s *Service) {
		if snapshotKey != "" {
			s.snapshotKey = snapshotKey
		}
		if recapKey != "" {
			s.recapKey = recapKey
		}
	}
}

// WithDefaultPlayer adds one empty player when the restored roster is empty.
func WithDefaultPlayer(enabled bool) Option {
	return func(s *Service) {
		s.defaultPlayer = enabled
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone recap dates are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
