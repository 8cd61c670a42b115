package document

import (
	"github.com/aretw0/quire/pkg/core"
)

// PageDraft holds the fields of a new page. Blocks are copied with fresh IDs
// and timestamps, so another page's blocks can seed a new one.
type PageDraft struct {
	Title    string
	Icon     string
	Cover    string
	Blocks   []core.Block
	Template string
}

// PagePatch lists the page fields to change. Nil fields are left alone.
type PagePatch struct {
	Title *string
	Icon  *string
	Cover *string
}

// CreatePage appends a page to a workspace and makes it current.
// It returns the new page ID, or "" when the workspace does not exist.
func (s *Service) CreatePage(workspaceID string, draft PageDraft) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	wi := s.findWorkspace(workspaceID)
	if wi < 0 {
		return ""
	}

	s.captureLocked()
	now := s.now()
	blocks := cloneBlocks(draft.Blocks)
	if blocks == nil {
		blocks = []core.Block{}
	}
	s.stampBlocks(blocks, now)
	page := core.Page{
		ID:        s.newID(),
		Title:     draft.Title,
		Icon:      draft.Icon,
		Cover:     draft.Cover,
		Blocks:    blocks,
		CreatedAt: now,
		UpdatedAt: now,
		Template:  draft.Template,
	}
	s.workspaces[wi].Pages = append(s.workspaces[wi].Pages, page)
	s.currentWorkspace = workspaceID
	s.currentPage = page.ID

	cs := changes().workspace(workspaceID).page(page.ID)
	for _, b := range page.Blocks {
		cs.block(b.ID)
	}
	s.persistLocked(cs)
	s.publish(core.EventCreate, core.EntityPage, page.ID)
	s.logger.Debug("page created", "id", page.ID, "workspace", workspaceID)
	return page.ID
}

// UpdatePage merges the non-nil fields of patch into the page.
func (s *Service) UpdatePage(pageID string, patch PagePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wi, pi := s.findPage(pageID)
	if wi < 0 {
		return
	}

	s.captureLocked()
	p := &s.workspaces[wi].Pages[pi]
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Icon != nil {
		p.Icon = *patch.Icon
	}
	if patch.Cover != nil {
		p.Cover = *patch.Cover
	}
	p.UpdatedAt = s.now()

	s.persistLocked(changes().page(pageID))
	s.publish(core.EventModify, core.EntityPage, pageID)
}

// DeletePage removes a page and its blocks. When the page was current, the
// first remaining page of the same workspace becomes current, else the first
// page of any workspace, else none.
func (s *Service) DeletePage(pageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wi, pi := s.findPage(pageID)
	if wi < 0 {
		return
	}

	s.captureLocked()
	ws := &s.workspaces[wi]
	removed := ws.Pages[pi]
	ws.Pages = append(ws.Pages[:pi], ws.Pages[pi+1:]...)

	if s.currentPage == pageID {
		s.selectFallbackLocked(wi)
	}

	cs := changes().workspace(ws.ID).deletePage(pageID)
	for _, b := range removed.Blocks {
		cs.deleteBlock(b.ID)
	}
	s.persistLocked(cs)
	s.publish(core.EventDelete, core.EntityPage, pageID)
}

// selectFallbackLocked picks the page that becomes current after the current
// one was removed from workspace wi.
func (s *Service) selectFallbackLocked(wi int) {
	if pages := s.workspaces[wi].Pages; len(pages) > 0 {
		s.currentPage = pages[0].ID
		return
	}
	for _, ws := range s.workspaces {
		if len(ws.Pages) > 0 {
			s.currentWorkspace = ws.ID
			s.currentPage = ws.Pages[0].ID
			return
		}
	}
	s.currentPage = ""
}
