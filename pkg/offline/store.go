// Package offline is the durable local store: it persists normalized records
// to the primary repository, degrades to a flat cache when the repository is
// unusable, queues writes made while offline and replays them against a
// remote when connectivity returns.
package offline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/aretw0/quire/pkg/adapters/fs"
	"github.com/aretw0/quire/pkg/core"
)

// Primary is the embedded store the offline layer prefers.
type Primary interface {
	core.Repository
	core.SyncQueue
}

// Store implements the document persistence contract on top of a Primary
// repository and a fallback FlatCache.
type Store struct {
	mu       sync.RWMutex
	online   bool
	degraded bool

	primary  Primary
	fallback *fs.FlatCache
	remote   core.Remote
	enc      cbor.EncMode

	syncMu        sync.Mutex
	queueMu       sync.Mutex // fallback queue read-modify-write
	lastSync      *time.Time
	lastSyncError string

	initAttempts int
	initBackoff  time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// New creates a Store. primary may be nil, in which case every call goes to
// the fallback cache. A nil fallback becomes a memory-only cache.
func New(primary Primary, fallback *fs.FlatCache, remote core.Remote, opts ...Option) *Store {
	if fallback == nil {
		fallback = fs.NewFlatCache("", "quire")
	}
	enc, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err) // static options
	}
	s := &Store{
		online:       true,
		primary:      primary,
		fallback:     fallback,
		remote:       remote,
		enc:          enc,
		initAttempts: 3,
		initBackoff:  100 * time.Millisecond,
		logger:       slog.Default(),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init initializes the primary store with a fixed backoff between attempts.
// When every attempt fails the store degrades to the fallback cache; the
// error is logged, not returned. Only a cancelled ctx is reported.
func (s *Store) Init(ctx context.Context) error {
	if s.primary == nil {
		s.setDegraded(true)
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= s.initAttempts; attempt++ {
		if lastErr = s.primary.Initialize(ctx); lastErr == nil {
			s.setDegraded(false)
			return nil
		}
		s.logger.Debug("primary store init failed", "attempt", attempt, "error", lastErr)
		if attempt == s.initAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.initBackoff):
		}
	}

	s.logger.Warn("primary store unavailable, using fallback cache", "error", lastErr)
	s.setDegraded(true)
	return nil
}

// Close releases the primary store.
func (s *Store) Close() error {
	if s.primary == nil {
		return nil
	}
	return s.primary.Close()
}

// IsOnline reports the last known connectivity state.
func (s *Store) IsOnline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// Degraded reports whether writes currently go to the fallback cache.
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

func (s *Store) setDegraded(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.degraded = v
}

func (s *Store) usePrimary() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.primary != nil && !s.degraded
}

// SetOnline records a connectivity transition. Going from offline to online
// replays the pending queue; its error is returned but the flag stays set.
func (s *Store) SetOnline(ctx context.Context, online bool) error {
	s.mu.Lock()
	was := s.online
	s.online = online
	s.mu.Unlock()

	if was == online {
		return nil
	}
	s.logger.Info("connectivity changed", "online", online)
	if online {
		return s.Sync(ctx)
	}
	return nil
}

// stamp returns the meta a record gets when written now.
func (s *Store) stamp() core.Meta {
	online := s.IsOnline()
	meta := core.Meta{IsSynced: online}
	if online {
		t := s.now()
		meta.LastSynced = &t
	}
	return meta
}

// SaveWorkspaces upserts workspace records.
func (s *Store) SaveWorkspaces(ctx context.Context, items []core.WorkspaceRecord) error {
	if len(items) == 0 {
		return nil
	}
	meta := s.stamp()
	for i := range items {
		items[i].Meta = meta
	}
	var err error
	if s.usePrimary() {
		err = s.primary.SaveWorkspaces(ctx, items)
	}
	if !s.usePrimary() || err != nil {
		s.logFallback("save workspaces", err)
		err = mergeFallback(s, core.CollectionWorkspaces, items, workspaceID, workspaceMeta)
	}
	if err != nil {
		return err
	}
	return enqueueUpdates(ctx, s, core.EntityWorkspace, items, workspaceID)
}

// SavePages upserts page records.
func (s *Store) SavePages(ctx context.Context, items []core.PageRecord) error {
	if len(items) == 0 {
		return nil
	}
	meta := s.stamp()
	for i := range items {
		items[i].Meta = meta
	}
	var err error
	if s.usePrimary() {
		err = s.primary.SavePages(ctx, items)
	}
	if !s.usePrimary() || err != nil {
		s.logFallback("save pages", err)
		err = mergeFallback(s, core.CollectionPages, items, pageID, pageMeta)
	}
	if err != nil {
		return err
	}
	return enqueueUpdates(ctx, s, core.EntityPage, items, pageID)
}

// SaveBlocks upserts block records.
func (s *Store) SaveBlocks(ctx context.Context, items []core.BlockRecord) error {
	if len(items) == 0 {
		return nil
	}
	meta := s.stamp()
	for i := range items {
		items[i].Meta = meta
	}
	var err error
	if s.usePrimary() {
		err = s.primary.SaveBlocks(ctx, items)
	}
	if !s.usePrimary() || err != nil {
		s.logFallback("save blocks", err)
		err = mergeFallback(s, core.CollectionBlocks, items, blockID, blockMeta)
	}
	if err != nil {
		return err
	}
	return enqueueUpdates(ctx, s, core.EntityBlock, items, blockID)
}

// DeletePages removes page records.
func (s *Store) DeletePages(ctx context.Context, ids []string) error {
	return s.delete(ctx, core.CollectionPages, core.EntityPage, ids)
}

// DeleteBlocks removes block records.
func (s *Store) DeleteBlocks(ctx context.Context, ids []string) error {
	return s.delete(ctx, core.CollectionBlocks, core.EntityBlock, ids)
}

func (s *Store) delete(ctx context.Context, c core.Collection, entity core.EntityType, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var err error
	if s.usePrimary() {
		err = s.primary.Delete(ctx, c, ids)
	}
	if !s.usePrimary() || err != nil {
		s.logFallback("delete "+string(c), err)
		switch c {
		case core.CollectionPages:
			err = deleteFallback(s, c, ids, pageID)
		case core.CollectionBlocks:
			err = deleteFallback(s, c, ids, blockID)
		default:
			err = deleteFallback(s, c, ids, workspaceID)
		}
	}
	if err != nil {
		return err
	}
	if s.IsOnline() {
		return nil
	}
	ops := make([]core.SyncOperation, len(ids))
	for i, id := range ids {
		ops[i] = core.SyncOperation{
			Type:      entity,
			Action:    core.ActionDelete,
			EntityID:  id,
			Timestamp: s.now(),
		}
	}
	return s.enqueue(ctx, ops)
}

// LoadWorkspaces returns every workspace record.
func (s *Store) LoadWorkspaces(ctx context.Context) ([]core.WorkspaceRecord, error) {
	if s.usePrimary() {
		out, err := s.primary.LoadWorkspaces(ctx)
		if err == nil {
			return out, nil
		}
		s.logFallback("load workspaces", err)
	}
	return loadFallback[core.WorkspaceRecord](s.fallback, core.CollectionWorkspaces)
}

// LoadPages returns every page record.
func (s *Store) LoadPages(ctx context.Context) ([]core.PageRecord, error) {
	if s.usePrimary() {
		out, err := s.primary.LoadPages(ctx)
		if err == nil {
			return out, nil
		}
		s.logFallback("load pages", err)
	}
	return loadFallback[core.PageRecord](s.fallback, core.CollectionPages)
}

// LoadBlocks returns the blocks of pageID, or every block when pageID is empty.
func (s *Store) LoadBlocks(ctx context.Context, pageID string) ([]core.BlockRecord, error) {
	if s.usePrimary() {
		out, err := s.primary.LoadBlocks(ctx, pageID)
		if err == nil {
			return out, nil
		}
		s.logFallback("load blocks", err)
	}
	all, err := loadFallback[core.BlockRecord](s.fallback, core.CollectionBlocks)
	if err != nil || pageID == "" {
		return all, err
	}
	var out []core.BlockRecord
	for _, b := range all {
		if b.PageID == pageID {
			out = append(out, b)
		}
	}
	return out, nil
}

// HasData reports whether any workspace or page is persisted.
func (s *Store) HasData(ctx context.Context) (bool, error) {
	ws, err := s.LoadWorkspaces(ctx)
	if err != nil {
		return false, err
	}
	if len(ws) > 0 {
		return true, nil
	}
	pages, err := s.LoadPages(ctx)
	if err != nil {
		return false, err
	}
	return len(pages) > 0, nil
}

func (s *Store) logFallback(op string, err error) {
	if err != nil {
		s.logger.Warn("primary store failed, writing to fallback cache", "op", op, "error", err)
		return
	}
	s.logger.Debug("using fallback cache", "op", op)
}
