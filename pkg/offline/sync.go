package offline

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/quire/pkg/core"
)

// enqueueUpdates queues one update operation per record while offline.
func enqueueUpdates[T any](ctx context.Context, s *Store, entity core.EntityType, items []T, id func(T) string) error {
	if s.IsOnline() {
		return nil
	}
	ops := make([]core.SyncOperation, 0, len(items))
	for _, it := range items {
		data, err := s.enc.Marshal(it)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", entity, id(it), err)
		}
		ops = append(ops, core.SyncOperation{
			Type:      entity,
			Action:    core.ActionUpdate,
			EntityID:  id(it),
			Data:      data,
			Timestamp: s.now(),
		})
	}
	return s.enqueue(ctx, ops)
}

func (s *Store) enqueue(ctx context.Context, ops []core.SyncOperation) error {
	if s.usePrimary() {
		err := s.primary.Enqueue(ctx, ops)
		if err == nil {
			return nil
		}
		s.logFallback("enqueue", err)
	}

	return s.updateFallbackQueue(func(queue []core.SyncOperation) []core.SyncOperation {
		var next int64
		for _, op := range queue {
			next = max(next, op.ID)
		}
		for _, op := range ops {
			next++
			op.ID = next
			queue = append(queue, op)
		}
		return queue
	})
}

// updateFallbackQueue rewrites the fallback queue under queueMu. An empty
// result removes the key.
func (s *Store) updateFallbackQueue(fn func([]core.SyncOperation) []core.SyncOperation) error {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	queue, err := loadFallback[core.SyncOperation](s.fallback, queueKey)
	if err != nil {
		queue = nil
	}
	queue = fn(queue)
	if len(queue) == 0 {
		return s.fallback.Delete(queueKey)
	}
	return s.fallback.Set(queueKey, queue)
}

func opIDs(ops []core.SyncOperation) []int64 {
	ids := make([]int64, len(ops))
	for i, op := range ops {
		ids[i] = op.ID
	}
	return ids
}

// pending returns the primary and fallback queues, each in insertion order.
func (s *Store) pending(ctx context.Context) (primary, fallback []core.SyncOperation, err error) {
	if s.usePrimary() {
		primary, err = s.primary.Pending(ctx)
		if err != nil {
			s.logFallback("pending", err)
			primary = nil
		}
	}
	s.queueMu.Lock()
	fallback, err = loadFallback[core.SyncOperation](s.fallback, queueKey)
	s.queueMu.Unlock()
	if err != nil {
		return nil, nil, err
	}
	return primary, fallback, nil
}

// Pending returns every queued operation, primary queue first.
func (s *Store) Pending(ctx context.Context) ([]core.SyncOperation, error) {
	primary, fallback, err := s.pending(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Concat(primary, fallback), nil
}

// Sync replays the pending queue against the remote. It is a no-op while
// offline. The drained operations are removed and records marked synced only
// when every operation is acknowledged; otherwise failures are counted and
// returned and the queue is left intact. Operations queued while a drain is
// running stay for the next one.
func (s *Store) Sync(ctx context.Context) error {
	if !s.IsOnline() {
		s.logger.Debug("sync skipped: offline")
		return nil
	}
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	primary, fallback, err := s.pending(ctx)
	if err != nil {
		return s.finishSync(fmt.Errorf("read queue: %w", err))
	}
	if len(primary)+len(fallback) == 0 {
		return s.finishSync(nil)
	}

	var (
		errs           []error
		failedPrimary  []int64
		failedFallback = make(map[int64]bool)
	)
	push := func(op core.SyncOperation) bool {
		if err := s.push(ctx, op); err != nil {
			errs = append(errs, fmt.Errorf("%s %s %s: %w", op.Action, op.Type, op.EntityID, err))
			return false
		}
		return true
	}
	for _, op := range primary {
		if !push(op) {
			failedPrimary = append(failedPrimary, op.ID)
		}
	}
	for _, op := range fallback {
		if !push(op) {
			failedFallback[op.ID] = true
		}
	}

	if len(errs) > 0 {
		// Bookkeeping only: nothing is dropped on retry count.
		if len(failedPrimary) > 0 && s.usePrimary() {
			if err := s.primary.IncrementRetry(ctx, failedPrimary); err != nil {
				s.logger.Warn("failed to record retry", "error", err)
			}
		}
		if len(failedFallback) > 0 {
			err := s.updateFallbackQueue(func(queue []core.SyncOperation) []core.SyncOperation {
				for i := range queue {
					if failedFallback[queue[i].ID] {
						queue[i].RetryCount++
					}
				}
				return queue
			})
			if err != nil {
				s.logger.Warn("failed to record retry", "error", err)
			}
		}
		err := errors.Join(errs...)
		s.logger.Warn("sync failed, queue kept", "failed", len(errs), "error", err)
		return s.finishSync(err)
	}

	if len(primary) > 0 {
		if err := s.primary.Remove(ctx, opIDs(primary)); err != nil {
			return s.finishSync(fmt.Errorf("remove drained operations: %w", err))
		}
	}
	if len(fallback) > 0 {
		drained := make(map[int64]bool, len(fallback))
		for _, op := range fallback {
			drained[op.ID] = true
		}
		err := s.updateFallbackQueue(func(queue []core.SyncOperation) []core.SyncOperation {
			return slices.DeleteFunc(queue, func(op core.SyncOperation) bool {
				return drained[op.ID]
			})
		})
		if err != nil {
			return s.finishSync(fmt.Errorf("remove drained fallback operations: %w", err))
		}
	}

	at := s.now()
	if s.usePrimary() {
		if err := s.primary.MarkSynced(ctx, at); err != nil {
			s.logger.Warn("failed to mark records synced", "error", err)
		}
	}
	_ = markFallbackSynced(s, core.CollectionWorkspaces, at, workspaceMeta)
	_ = markFallbackSynced(s, core.CollectionPages, at, pageMeta)
	_ = markFallbackSynced(s, core.CollectionBlocks, at, blockMeta)

	s.logger.Info("sync complete", "operations", len(primary)+len(fallback))
	return s.finishSync(nil)
}

// ForceSync runs Sync on demand.
func (s *Store) ForceSync(ctx context.Context) error {
	return s.Sync(ctx)
}

// PendingCount returns the number of queued operations.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	ops, err := s.Pending(ctx)
	return len(ops), err
}

func (s *Store) push(ctx context.Context, op core.SyncOperation) error {
	if s.remote == nil {
		s.logger.Debug("no remote configured, acknowledging", "entity", op.EntityID)
		return nil
	}
	return s.remote.Push(ctx, op)
}

func (s *Store) finishSync(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastSyncError = err.Error()
		return err
	}
	t := s.now()
	s.lastSync = &t
	s.lastSyncError = ""
	return nil
}
