package document

import (
	"fmt"

	"github.com/aretw0/quire/pkg/codec"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/history"
)

// Undo restores the state captured before the last mutation.
// It is a no-op when there is nothing to undo.
func (s *Service) Undo() error {
	return s.restore("undo", (*history.Manager).Undo)
}

// Redo re-applies the last undone mutation.
// It is a no-op when there is nothing to redo.
func (s *Service) Redo() error {
	return s.restore("redo", (*history.Manager).Redo)
}

// CanUndo reports whether Undo would change the state.
func (s *Service) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would change the state.
func (s *Service) CanRedo() bool {
	return s.history.CanRedo()
}

func (s *Service) restore(op string, step func(*history.Manager, string) (string, bool)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	live, err := codec.Serialize(s.snapshotLocked())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	raw, ok := step(s.history, live)
	if !ok {
		return nil
	}
	snap, err := codec.Deserialize(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	before := s.workspaces
	s.workspaces = snap.Workspaces
	s.currentWorkspace = snap.CurrentWorkspace
	s.currentPage = snap.CurrentPage
	s.sidebarOpen = snap.SidebarOpen

	s.persistLocked(fullChanges(before, s.workspaces))
	s.publish(core.EventRestore, core.EntityWorkspace, s.currentWorkspace)
	s.logger.Debug("state restored", "op", op)
	return nil
}

// fullChanges writes every record of after and deletes the pages and
// top-level blocks that only existed in before.
func fullChanges(before, after []core.Workspace) *changeSet {
	cs := changes()
	live := make(map[string]bool)
	for _, ws := range after {
		cs.workspace(ws.ID)
		for _, p := range ws.Pages {
			cs.page(p.ID)
			live[p.ID] = true
			for _, b := range p.Blocks {
				cs.block(b.ID)
				live[b.ID] = true
			}
		}
	}
	for _, ws := range before {
		for _, p := range ws.Pages {
			if !live[p.ID] {
				cs.deletePage(p.ID)
			}
			for _, b := range p.Blocks {
				if !live[b.ID] {
					cs.deleteBlock(b.ID)
				}
			}
		}
	}
	return cs
}
