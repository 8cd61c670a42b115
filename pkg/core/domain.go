// Package core holds the domain model of quire: workspaces, pages, blocks and
// comments, the snapshot that captures them, and the ports the engine talks to.
package core

import "time"

// BlockType is the kind of content a block renders.
type BlockType string

const (
	BlockText    BlockType = "text"
	BlockHeading BlockType = "heading"
	BlockTodo    BlockType = "todo"
	BlockCode    BlockType = "code"
	BlockQuote   BlockType = "quote"
)

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	switch t {
	case BlockText, BlockHeading, BlockTodo, BlockCode, BlockQuote:
		return true
	}
	return false
}

// Workspace is the root container of pages.
type Workspace struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Pages []Page `json:"pages" yaml:"pages"`
}

// Page is a titled document holding an ordered list of blocks.
type Page struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Icon      string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	Cover     string    `json:"cover,omitempty" yaml:"cover,omitempty"`
	Blocks    []Block   `json:"blocks" yaml:"blocks"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
	Template  string    `json:"template,omitempty" yaml:"template,omitempty"`
}

// Block is a typed unit of content. Blocks may nest through Children.
type Block struct {
	ID        string    `json:"id" yaml:"id"`
	Type      BlockType `json:"type" yaml:"type"`
	Content   string    `json:"content" yaml:"content"`
	Children  []Block   `json:"children" yaml:"children"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
	Comments  []Comment `json:"comments" yaml:"comments,omitempty"`
}

// Comment is attached to exactly one block. Resolved comments are kept.
type Comment struct {
	ID        string    `json:"id" yaml:"id"`
	BlockID   string    `json:"blockId" yaml:"blockId"`
	UserID    string    `json:"userId" yaml:"userId"`
	UserName  string    `json:"userName" yaml:"userName"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Resolved  bool      `json:"resolved" yaml:"resolved"`
}

// Snapshot is the complete structural state of the application at one instant.
// CurrentWorkspace and CurrentPage are IDs into Workspaces; the pages
// themselves live only in the tree.
type Snapshot struct {
	Workspaces       []Workspace `json:"workspaces" yaml:"workspaces"`
	CurrentWorkspace string      `json:"currentWorkspace,omitempty" yaml:"currentWorkspace,omitempty"`
	CurrentPage      string      `json:"currentPage,omitempty" yaml:"currentPage,omitempty"`
	SidebarOpen      bool        `json:"sidebarOpen" yaml:"sidebarOpen"`
}

// EventType represents the type of change in the store.
type EventType string

const (
	EventCreate  EventType = "CREATE"
	EventModify  EventType = "MODIFY"
	EventDelete  EventType = "DELETE"
	EventRestore EventType = "RESTORE"
)

// Event describes a change applied to the in-memory tree.
type Event struct {
	Type      EventType
	Entity    EntityType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return string(e.Type) + " " + string(e.Entity) + " " + e.ID
}
