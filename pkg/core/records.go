package core

import "time"

// EntityType names the kind of entity a record or operation refers to.
type EntityType string

const (
	EntityWorkspace EntityType = "workspace"
	EntityPage      EntityType = "page"
	EntityBlock     EntityType = "block"
	EntityComment   EntityType = "comment"
)

// Collection is a durable store collection name.
type Collection string

const (
	CollectionWorkspaces Collection = "workspaces"
	CollectionPages      Collection = "pages"
	CollectionBlocks     Collection = "blocks"
)

// Meta is the sync bookkeeping stamped on every durable record.
type Meta struct {
	IsSynced   bool       `json:"isSynced" cbor:"isSynced"`
	LastSynced *time.Time `json:"lastSynced,omitempty" cbor:"lastSynced,omitempty"`
	Version    int64      `json:"version" cbor:"version"`
}

// WorkspaceRecord is the durable form of a workspace. Pages are referenced by
// ID in display order.
type WorkspaceRecord struct {
	ID      string   `json:"id" cbor:"id"`
	Name    string   `json:"name" cbor:"name"`
	PageIDs []string `json:"pageIds" cbor:"pageIds"`
	Meta    Meta     `json:"meta" cbor:"meta"`
}

// PageRecord is the durable form of a page. Top-level blocks are referenced
// by ID in display order; Page.Blocks is always empty.
type PageRecord struct {
	Page        Page     `json:"page" cbor:"page"`
	WorkspaceID string   `json:"workspaceId" cbor:"workspaceId"`
	BlockIDs    []string `json:"blockIds" cbor:"blockIds"`
	Meta        Meta     `json:"meta" cbor:"meta"`
}

// BlockRecord is the durable form of a top-level block, children included.
type BlockRecord struct {
	Block  Block  `json:"block" cbor:"block"`
	PageID string `json:"pageId" cbor:"pageId"`
	Meta   Meta   `json:"meta" cbor:"meta"`
}

// SyncAction is the operation a queued entry replays against the remote.
type SyncAction string

const (
	ActionUpdate SyncAction = "update"
	ActionDelete SyncAction = "delete"
)

// SyncOperation is one pending write accumulated while offline.
type SyncOperation struct {
	ID         int64      `json:"id"`
	Type       EntityType `json:"type"`
	Action     SyncAction `json:"action"`
	EntityID   string     `json:"entityId"`
	Data       []byte     `json:"data,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
	RetryCount int        `json:"retryCount"`
}
