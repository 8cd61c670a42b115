package document

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Workspaces       int    `json:"workspaces"`
	Pages            int    `json:"pages"`
	CurrentWorkspace string `json:"current_workspace,omitempty"`
	CurrentPage      string `json:"current_page,omitempty"`
	UndoDepth        int    `json:"undo_depth"`
	RedoDepth        int    `json:"redo_depth"`
	Templates        int    `json:"templates"`
	Watchers         int    `json:"watchers"`
	EventBufferSize  int    `json:"event_buffer_size"`
	StoreType        string `json:"store_type"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storeType := "memory"
	if s.store != nil {
		storeType = "store"
		if comp, ok := s.store.(introspection.Component); ok {
			storeType = comp.ComponentType()
		}
	}

	pages := 0
	for _, ws := range s.workspaces {
		pages += len(ws.Pages)
	}
	past, future := s.history.Depth()

	return ServiceState{
		Workspaces:       len(s.workspaces),
		Pages:            pages,
		CurrentWorkspace: s.currentWorkspace,
		CurrentPage:      s.currentPage,
		UndoDepth:        past,
		RedoDepth:        future,
		Templates:        len(s.templateOrder),
		Watchers:         s.events.count(),
		EventBufferSize:  s.eventBuffer,
		StoreType:        storeType,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "document-service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
