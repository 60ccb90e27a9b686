// Package app provides the match service behind the HTTP API: it owns the
// roster, publishes every change and keeps the stored snapshot current.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	eventqueue "github.com/TissotPA/Match/internal/adapters/mq/queue"
	workerpool "github.com/TissotPA/Match/internal/adapters/mq/worker"
	"github.com/TissotPA/Match/internal/adapters/store"
	"github.com/TissotPA/Match/internal/domain/dedupe"
	"github.com/TissotPA/Match/internal/domain/model"
	"github.com/TissotPA/Match/internal/domain/roster"
	"github.com/TissotPA/Match/internal/domain/snapshot"
	"github.com/TissotPA/Match/internal/domain/stats"
	"github.com/TissotPA/Match/pkg/logger"
	"github.com/TissotPA/Match/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize   = 1024
	defaultDedupeSize  = 10_000
	defaultSnapshotKey = "basketStats"
)

// PlayerUpdate carries the editable player fields. Nil fields are left
// untouched.
type PlayerUpdate struct {
	Name   *string
	Number *string
}

// Service serializes every roster operation behind one mutex.
type Service struct {
	mu     sync.Mutex
	roster *roster.Roster

	// Collaborators
	store       store.Store
	template    TemplateSource
	deduper     dedupe.Deduper
	changeQueue *eventqueue.InMemoryQueue
	workerPool  *workerpool.Pool
	autosave    *autosaver
	subscribers []workerpool.Handler

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	snapshotKey   string
	recapKey      string
	defaultPlayer bool
	now           func() time.Time
	loc           *time.Location

	// State
	version uint64
	started bool

	logger logger.Logger
}

// New constructs a Service. Without WithStore snapshots are kept in memory.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		snapshotKey: defaultSnapshotKey,
		recapKey:    snapshot.RecapKey,
		now:         time.Now,
		loc:         time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = store.NewMemory()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.roster = roster.New()
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.changeQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.autosave = newAutosaver(s.store, s.snapshotKey)
	return s
}

// Subscribe adds a change consumer next to the autosaver. It must be called
// before Start.
func (s *Service) Subscribe(h workerpool.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, h)
}

// Start restores the stored roster and starts the change workers. Stored
// data that cannot be decoded is logged and ignored.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting match service...")

	if s.changeQueue.IsClosed() {
		s.changeQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	}
	if err := s.restore(ctx); err != nil {
		return err
	}
	if s.defaultPlayer && s.roster.Len() == 0 {
		e := s.roster.AddPlayer("", "")
		s.publish(ctx, model.KindPlayerAdded, e.ID)
	}

	handlers := append([]workerpool.Handler{s.autosave}, s.subscribers...)
	s.workerPool = workerpool.NewPool(s.workerCount, s.changeQueue, handlers...)
	s.workerPool.Start(ctx)

	s.started = true
	metrics.UpdateRosterPlayers(s.roster.Len())
	s.logger.Info(ctx, "match service started",
		logger.Int("players", s.roster.Len()),
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.String("snapshotKey", s.snapshotKey),
	)
	return nil
}

// restore must be called with s.mu held.
func (s *Service) restore(ctx context.Context) error {
	data, err := s.store.Load(ctx, s.snapshotKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore roster: %w", err)
	}
	doc, err := snapshot.Decode(data)
	if err != nil {
		s.logger.Warn(ctx, "stored roster ignored", logger.String("key", s.snapshotKey), logger.Error(err))
		metrics.RecordErrorByComponent("service", "restore_malformed")
		return nil
	}
	s.roster.Replace(doc.Entries())
	return nil
}

// Stop drains pending changes and writes the latest snapshot.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	pool := s.workerPool
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping match service...")
	var errs []error
	if err := pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.Flush(ctx); err != nil {
		errs = append(errs, err)
	}
	s.logger.Info(ctx, "match service stopped")
	return errors.Join(errs...)
}

// publish bumps the version and queues the new snapshot. It must be called
// with s.mu held. A dropped change is picked up by the next Flush.
func (s *Service) publish(ctx context.Context, kind model.ChangeKind, playerID string) {
	s.version++
	metrics.UpdateSnapshotVersion(s.version)
	metrics.UpdateRosterPlayers(s.roster.Len())
	metrics.RecordRosterMutation(string(kind))

	data, err := snapshot.Encode(snapshot.FromRoster(s.roster))
	if err != nil {
		s.logger.Error(ctx, "encode snapshot failed", logger.Error(err))
		return
	}
	c := model.Change{
		Version:  s.version,
		Kind:     kind,
		PlayerID: playerID,
		Snapshot: data,
		At:       s.now(),
	}
	if !s.changeQueue.Enqueue(ctx, c) {
		s.logger.Warn(ctx, "change dropped", logger.Uint64("version", c.Version), logger.String("kind", string(kind)))
	}
}

// Flush writes the current roster unless that version is already stored.
func (s *Service) Flush(ctx context.Context) error {
	data, version, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	if version == 0 {
		return nil
	}
	_, err = s.autosave.save(ctx, version, data)
	return err
}

// Snapshot returns the encoded roster and its version.
func (s *Service) Snapshot(_ context.Context) ([]byte, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := snapshot.Encode(snapshot.FromRoster(s.roster))
	if err != nil {
		return nil, 0, err
	}
	return data, s.version, nil
}

// Players returns entries matching term in roster order. An empty term
// returns everyone.
func (s *Service) Players(_ context.Context, term string) []roster.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Collect(s.roster.Search(term))
}

// Player returns one entry.
func (s *Service) Player(_ context.Context, id string) (roster.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Get(id)
}

// AddPlayer appends a player with zeroed counters.
func (s *Service) AddPlayer(ctx context.Context, name, number string) roster.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.roster.AddPlayer(name, number)
	s.publish(ctx, model.KindPlayerAdded, e.ID)
	return e
}

// RemovePlayer deletes a player. Unknown ids are ignored; the return value
// reports whether a player was removed.
func (s *Service) RemovePlayer(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.roster.Get(id); err != nil {
		return false
	}
	s.roster.RemovePlayer(id)
	s.publish(ctx, model.KindPlayerRemoved, id)
	return true
}

// UpdatePlayer edits name and jersey number.
func (s *Service) UpdatePlayer(ctx context.Context, id string, u PlayerUpdate) (roster.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.roster.Get(id); err != nil {
		return roster.Entry{}, err
	}
	if u.Name != nil {
		if err := s.roster.RenamePlayer(id, *u.Name); err != nil {
			return roster.Entry{}, err
		}
	}
	if u.Number != nil {
		if err := s.roster.SetJerseyNumber(id, *u.Number); err != nil {
			return roster.Entry{}, err
		}
	}
	s.publish(ctx, model.KindPlayerUpdated, id)
	return s.roster.Get(id)
}

// UpdateStat applies one tap. When requestID is set and was already seen the
// tap is not applied again and the current entry is returned with
// applied=false.
func (s *Service) UpdateStat(ctx context.Context, requestID, id string, f stats.Field, d stats.Direction) (entry roster.Entry, applied bool, err error) {
	// A retry never observes a request id recorded by a tap still in flight.
	s.mu.Lock()
	defer s.mu.Unlock()
	if requestID != "" && s.deduper.SeenAndRecord(ctx, requestID) {
		metrics.RecordDuplicateRequest()
		e, err := s.roster.Get(id)
		return e, false, err
	}

	e, err := s.roster.UpdateStat(id, f, d)
	if err != nil {
		if requestID != "" {
			s.deduper.Unrecord(ctx, requestID)
		}
		return roster.Entry{}, false, err
	}
	metrics.RecordStatUpdate(f.String(), d.String())
	s.publish(ctx, model.KindStatUpdated, id)
	return e, true, nil
}

// ResetAll zeroes every player's counters.
func (s *Service) ResetAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster.ResetAll()
	s.publish(ctx, model.KindRosterReset, "")
}

// Clear removes every player.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster.Clear()
	s.publish(ctx, model.KindRosterCleared, "")
}

// Totals returns the team aggregate.
func (s *Service) Totals(_ context.Context) roster.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.TeamTotals()
}

// Import replaces the roster with a decoded snapshot, export or template.
// On error the roster is left untouched.
func (s *Service) Import(ctx context.Context, data []byte) ([]roster.Entry, error) {
	doc, err := snapshot.Decode(data)
	if err != nil {
		metrics.RecordImport("malformed")
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster.Replace(doc.Entries())
	s.publish(ctx, model.KindRosterLoaded, "")
	metrics.RecordImport("ok")
	s.logger.Info(ctx, "roster imported", logger.Int("players", s.roster.Len()))
	return s.roster.Entries(), nil
}

// Export builds the downloadable file and its suggested name.
func (s *Service) Export(_ context.Context) (snapshot.ExportDocument, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	return snapshot.Export(s.roster.Entries(), now), snapshot.ExportFilename(now)
}

// NewMatch replaces the roster with the template's players. A fetch or
// decode failure leaves the roster untouched.
func (s *Service) NewMatch(ctx context.Context) ([]roster.Entry, error) {
	if s.template == nil {
		return nil, ErrNoTemplate
	}
	doc, err := s.template.Fetch(ctx)
	if err != nil {
		metrics.RecordTemplateFetch("error")
		metrics.RecordErrorByComponent("service", "template")
		return nil, err
	}
	metrics.RecordTemplateFetch("ok")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster.Replace(doc.Entries())
	s.publish(ctx, model.KindRosterLoaded, "")
	s.logger.Info(ctx, "new match loaded", logger.Int("players", s.roster.Len()))
	return s.roster.Entries(), nil
}

// CloseMatch writes the recap blob under the recap key and returns it. The
// roster itself is kept.
func (s *Service) CloseMatch(ctx context.Context) (snapshot.Recap, error) {
	s.mu.Lock()
	if s.roster.Len() == 0 {
		s.mu.Unlock()
		return snapshot.Recap{}, ErrNoPlayers
	}
	rec := snapshot.NewRecap(s.roster.Entries(), s.now(), s.loc)
	s.mu.Unlock()

	data, err := snapshot.Encode(rec)
	if err != nil {
		return snapshot.Recap{}, err
	}
	if err := s.store.Save(ctx, s.recapKey, data); err != nil {
		metrics.RecordErrorByComponent("service", "recap_save")
		return snapshot.Recap{}, fmt.Errorf("save recap: %w", err)
	}
	if err := s.Flush(ctx); err != nil {
		return snapshot.Recap{}, err
	}
	metrics.RecordMatchClosed()
	s.logger.Info(ctx, "match closed", logger.Int("players", len(rec.Players)), logger.String("date", rec.Date))
	return rec, nil
}

// Recap loads the last recap blob and recomputes its summary. Returns
// store.ErrNotFound when no match was closed yet.
func (s *Service) Recap(ctx context.Context) (snapshot.Summary, error) {
	data, err := s.store.Load(ctx, s.recapKey)
	if err != nil {
		return snapshot.Summary{}, err
	}
	rec, err := snapshot.DecodeRecap(data)
	if err != nil {
		return snapshot.Summary{}, err
	}
	return rec.Summary(), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	out := map[string]any{
		"started":      s.started,
		"players":      s.roster.Len(),
		"version":      s.version,
		"savedVersion": s.autosave.saved(),
		"queueSize":    s.queueSize,
		"queueLength":  s.changeQueue.Len(ctx),
		"dedupeSize":   s.deduper.Size(),
		"subscribers":  len(s.subscribers),
	}
	if s.workerPool != nil {
		out["workerCount"] = s.workerPool.Size()
	}
	metrics.UpdateRosterPlayers(s.roster.Len())
	return out
}
