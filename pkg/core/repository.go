package core

import (
	"context"
	"time"
)

// Repository defines the contract of the primary durable store. Adhering to
// this interface keeps the offline layer independent of the embedded engine
// (SQLite today).
type Repository interface {
	// Initialize ensures the underlying storage is ready (open, schema migration).
	Initialize(ctx context.Context) error

	// SaveWorkspaces upserts workspace records. Version is bumped by the store.
	SaveWorkspaces(ctx context.Context, items []WorkspaceRecord) error
	SavePages(ctx context.Context, items []PageRecord) error
	SaveBlocks(ctx context.Context, items []BlockRecord) error

	LoadWorkspaces(ctx context.Context) ([]WorkspaceRecord, error)
	LoadPages(ctx context.Context) ([]PageRecord, error)
	// LoadBlocks returns blocks owned by pageID, or every block when pageID is empty.
	LoadBlocks(ctx context.Context, pageID string) ([]BlockRecord, error)

	// Delete removes records by ID from a collection. Missing IDs are ignored.
	Delete(ctx context.Context, c Collection, ids []string) error

	// MarkSynced flags every record as synced at the given instant.
	MarkSynced(ctx context.Context, at time.Time) error

	Close() error
}

// SyncQueue is the FIFO of pending operations accumulated while offline.
type SyncQueue interface {
	Enqueue(ctx context.Context, ops []SyncOperation) error
	Pending(ctx context.Context) ([]SyncOperation, error)
	// IncrementRetry bumps RetryCount for the given operation IDs.
	IncrementRetry(ctx context.Context, ids []int64) error
	// Remove deletes the given operations, leaving any queued since untouched.
	Remove(ctx context.Context, ids []int64) error
}

// Remote is the backend the pending queue is replayed against.
type Remote interface {
	Push(ctx context.Context, op SyncOperation) error
}

// Connectivity is a source of online/offline transitions.
type Connectivity interface {
	// Online reports the last known state.
	Online() bool
	// Changes emits every transition. The channel is closed when the source stops.
	Changes() <-chan bool
}
