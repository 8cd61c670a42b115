// Package document implements the Document Store: the single authoritative
// owner of the workspace → page → block tree.
//
// Every mutation follows the same sequence inside one critical section:
// capture the pre-mutation snapshot into history, mutate the tree, then hand
// the touched records to an ordered background writer. Callers never wait on
// durable writes; Wait exists for CLIs and tests.
//
// Lookups that miss are silent no-ops and leave history untouched.
package document

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/quire/pkg/codec"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/history"
)

// Persistence receives the records touched by a mutation.
type Persistence interface {
	SaveWorkspaces(ctx context.Context, items []core.WorkspaceRecord) error
	SavePages(ctx context.Context, items []core.PageRecord) error
	SaveBlocks(ctx context.Context, items []core.BlockRecord) error
	DeletePages(ctx context.Context, ids []string) error
	DeleteBlocks(ctx context.Context, ids []string) error
}

// Loader reads the durable tree back at boot.
type Loader interface {
	LoadWorkspaces(ctx context.Context) ([]core.WorkspaceRecord, error)
	LoadPages(ctx context.Context) ([]core.PageRecord, error)
	LoadBlocks(ctx context.Context, pageID string) ([]core.BlockRecord, error)
}

// Store is the durable side of the service.
type Store interface {
	Persistence
	Loader
}

// Service handles the business logic for documents.
type Service struct {
	mu               sync.RWMutex
	workspaces       []core.Workspace
	currentWorkspace string
	currentPage      string
	sidebarOpen      bool

	history      *history.Manager
	historyLimit int

	store  Store
	writer *writer
	events *broker

	templates     map[string]Template
	templateOrder []string

	logger           *slog.Logger
	now              func() time.Time
	newID            func() string
	eventBuffer      int
	defaultWorkspace string
}

// New creates a Service with an empty tree. Call Bootstrap to load persisted
// state or create the default workspace.
func New(opts ...Option) *Service {
	s := &Service{
		sidebarOpen:      true,
		templates:        make(map[string]Template),
		logger:           slog.Default(),
		now:              defaultClock,
		newID:            defaultID,
		eventBuffer:      100,
		defaultWorkspace: "My Workspace",
	}
	for _, t := range builtinTemplates {
		s.registerTemplate(t)
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history = history.New(s.historyLimit)
	s.writer = newWriter(s.logger)
	s.events = newBroker(s.eventBuffer)
	return s
}

// Bootstrap loads the tree from the durable store. When nothing is persisted
// it creates the default workspace. Bootstrap does not record history.
func (s *Service) Bootstrap(ctx context.Context) error {
	var workspaces []core.Workspace
	if s.store != nil {
		loaded, err := load(ctx, s.store)
		if err != nil {
			return fmt.Errorf("failed to load workspaces: %w", err)
		}
		workspaces = loaded
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.workspaces = workspaces
	if len(s.workspaces) == 0 {
		ws := core.Workspace{ID: s.newID(), Name: s.defaultWorkspace}
		s.workspaces = append(s.workspaces, ws)
		s.persistLocked(changes().workspace(ws.ID))
		s.logger.Debug("created default workspace", "id", ws.ID)
	}

	s.currentWorkspace = s.workspaces[0].ID
	s.currentPage = ""
	if len(s.workspaces[0].Pages) > 0 {
		s.currentPage = s.workspaces[0].Pages[0].ID
	}
	s.history.Reset("")
	return nil
}

// --- Reads ---

// Workspaces returns a copy of the whole tree.
func (s *Service) Workspaces() []core.Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneWorkspaces(s.workspaces)
}

// Workspace returns a copy of the workspace with the given ID.
func (s *Service) Workspace(id string) (core.Workspace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wi := s.findWorkspace(id)
	if wi < 0 {
		return core.Workspace{}, false
	}
	return cloneWorkspace(s.workspaces[wi]), true
}

// CurrentWorkspace returns the ID of the active workspace.
func (s *Service) CurrentWorkspace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentWorkspace
}

// CurrentPage returns a copy of the current page, read from the tree.
func (s *Service) CurrentPage() (core.Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentPage == "" {
		return core.Page{}, false
	}
	wi, pi := s.findPage(s.currentPage)
	if wi < 0 {
		return core.Page{}, false
	}
	return clonePage(s.workspaces[wi].Pages[pi]), true
}

// Page returns a copy of the page with the given ID.
func (s *Service) Page(id string) (core.Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wi, pi := s.findPage(id)
	if wi < 0 {
		return core.Page{}, false
	}
	return clonePage(s.workspaces[wi].Pages[pi]), true
}

// SidebarOpen reports the sidebar state.
func (s *Service) SidebarOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sidebarOpen
}

// Snapshot returns a deep copy of the current application state.
func (s *Service) Snapshot() core.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snapshotLocked()
	snap.Workspaces = cloneWorkspaces(snap.Workspaces)
	return snap
}

// FindPages returns the pages whose title matches a doublestar glob
// (e.g. "Meeting*" or "{Todo,Plan}*").
func (s *Service) FindPages(pattern string) ([]core.Page, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Page
	for _, ws := range s.workspaces {
		for _, p := range ws.Pages {
			ok, err := doublestar.Match(pattern, p.Title)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, clonePage(p))
			}
		}
	}
	return out, nil
}

// --- Navigation (not recorded in history) ---

// SetCurrentWorkspace activates a workspace. Unknown IDs are ignored.
func (s *Service) SetCurrentWorkspace(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wi := s.findWorkspace(id)
	if wi < 0 {
		return
	}
	s.currentWorkspace = id
	s.currentPage = ""
	if len(s.workspaces[wi].Pages) > 0 {
		s.currentPage = s.workspaces[wi].Pages[0].ID
	}
}

// SetCurrentPage opens a page, switching to its workspace. Unknown IDs are ignored.
func (s *Service) SetCurrentPage(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wi, _ := s.findPage(id)
	if wi < 0 {
		return
	}
	s.currentWorkspace = s.workspaces[wi].ID
	s.currentPage = id
}

// ToggleSidebar flips the sidebar state.
func (s *Service) ToggleSidebar() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebarOpen = !s.sidebarOpen
}

// SetSidebarOpen sets the sidebar state.
func (s *Service) SetSidebarOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebarOpen = open
}

// --- Workspaces ---

// CreateWorkspace appends a new, empty workspace and returns its ID.
func (s *Service) CreateWorkspace(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.captureLocked()
	ws := core.Workspace{ID: s.newID(), Name: name}
	s.workspaces = append(s.workspaces, ws)
	if s.currentWorkspace == "" {
		s.currentWorkspace = ws.ID
	}
	s.persistLocked(changes().workspace(ws.ID))
	s.publish(core.EventCreate, core.EntityWorkspace, ws.ID)
	return ws.ID
}

// RenameWorkspace changes a workspace name.
func (s *Service) RenameWorkspace(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wi := s.findWorkspace(id)
	if wi < 0 || s.workspaces[wi].Name == name {
		return
	}
	s.captureLocked()
	s.workspaces[wi].Name = name
	s.persistLocked(changes().workspace(id))
	s.publish(core.EventModify, core.EntityWorkspace, id)
}

// --- Lifecycle ---

// Wait blocks until every persistence write enqueued so far has completed.
func (s *Service) Wait(ctx context.Context) error {
	return s.writer.wait(ctx)
}

// Close drains pending writes, stops the writer and closes every Watch channel.
func (s *Service) Close(ctx context.Context) error {
	err := s.writer.wait(ctx)
	s.writer.stop()
	s.events.close()
	return err
}

// --- internals ---

func (s *Service) snapshotLocked() core.Snapshot {
	return core.Snapshot{
		Workspaces:       s.workspaces,
		CurrentWorkspace: s.currentWorkspace,
		CurrentPage:      s.currentPage,
		SidebarOpen:      s.sidebarOpen,
	}
}

// captureLocked pushes the pre-mutation state onto the undo stack.
func (s *Service) captureLocked() {
	raw, err := codec.Serialize(s.snapshotLocked())
	if err != nil {
		s.logger.Error("history capture failed", "error", err)
		return
	}
	s.history.Capture(raw)
}

func (s *Service) findWorkspace(id string) int {
	for i := range s.workspaces {
		if s.workspaces[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) findPage(id string) (wi, pi int) {
	for i := range s.workspaces {
		for j := range s.workspaces[i].Pages {
			if s.workspaces[i].Pages[j].ID == id {
				return i, j
			}
		}
	}
	return -1, -1
}
