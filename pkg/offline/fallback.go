package offline

import (
	"fmt"
	"time"

	"github.com/aretw0/quire/pkg/adapters/fs"
	"github.com/aretw0/quire/pkg/core"
)

const queueKey = "sync_queue"

func workspaceID(r core.WorkspaceRecord) string { return r.ID }
func pageID(r core.PageRecord) string           { return r.Page.ID }
func blockID(r core.BlockRecord) string         { return r.Block.ID }

func workspaceMeta(r *core.WorkspaceRecord) *core.Meta { return &r.Meta }
func pageMeta(r *core.PageRecord) *core.Meta           { return &r.Meta }
func blockMeta(r *core.BlockRecord) *core.Meta         { return &r.Meta }

func loadFallback[T any](c *fs.FlatCache, col core.Collection) ([]T, error) {
	var out []T
	if _, err := c.Get(string(col), &out); err != nil {
		return nil, fmt.Errorf("fallback %s: %w", col, err)
	}
	return out, nil
}

// mergeFallback upserts items into the cached array of col by ID, bumping
// versions, and refreshes the <col>_timestamp key.
func mergeFallback[T any](s *Store, col core.Collection, items []T, id func(T) string, meta func(*T) *core.Meta) error {
	existing, err := loadFallback[T](s.fallback, col)
	if err != nil {
		s.logger.Warn("discarding unreadable fallback collection", "collection", col, "error", err)
		existing = nil
	}

	index := make(map[string]int, len(existing))
	for i, e := range existing {
		index[id(e)] = i
	}
	for _, it := range items {
		if i, ok := index[id(it)]; ok {
			meta(&it).Version = meta(&existing[i]).Version + 1
			existing[i] = it
			continue
		}
		meta(&it).Version = 1
		index[id(it)] = len(existing)
		existing = append(existing, it)
	}
	return s.writeFallback(col, existing)
}

func deleteFallback[T any](s *Store, col core.Collection, ids []string, id func(T) string) error {
	existing, err := loadFallback[T](s.fallback, col)
	if err != nil || len(existing) == 0 {
		return err
	}
	drop := make(map[string]bool, len(ids))
	for _, i := range ids {
		drop[i] = true
	}
	kept := existing[:0]
	for _, e := range existing {
		if !drop[id(e)] {
			kept = append(kept, e)
		}
	}
	return s.writeFallback(col, kept)
}

// markFallbackSynced flags every cached record of col as synced at t.
func markFallbackSynced[T any](s *Store, col core.Collection, t time.Time, meta func(*T) *core.Meta) error {
	existing, err := loadFallback[T](s.fallback, col)
	if err != nil || len(existing) == 0 {
		return err
	}
	for i := range existing {
		m := meta(&existing[i])
		m.IsSynced = true
		m.LastSynced = &t
	}
	return s.writeFallback(col, existing)
}

func (s *Store) writeFallback(col core.Collection, items any) error {
	if err := s.fallback.Set(string(col), items); err != nil {
		// The in-memory copy is still current.
		s.logger.Warn("fallback cache write-through failed", "collection", col, "error", err)
	}
	if err := s.fallback.Set(string(col)+"_timestamp", s.now().Format(time.RFC3339Nano)); err != nil {
		s.logger.Debug("fallback timestamp write failed", "collection", col, "error", err)
	}
	return nil
}
