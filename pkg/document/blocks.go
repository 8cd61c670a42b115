package document

import (
	"time"

	"github.com/aretw0/quire/pkg/core"
)

// BlockDraft holds the fields of a new block. An empty Type means text.
// Children are copied with fresh IDs and timestamps.
type BlockDraft struct {
	Type     core.BlockType
	Content  string
	Children []core.Block
}

// BlockPatch lists the block fields to change. Nil fields are left alone.
type BlockPatch struct {
	Type     *core.BlockType
	Content  *string
	Children *[]core.Block
}

// Block returns a copy of a block found anywhere in the tree, resolved
// comments included.
func (s *Service) Block(blockID string) (core.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, b, ok := s.locateBlock(blockID)
	if !ok {
		return core.Block{}, false
	}
	return cloneBlock(*b), true
}

// CreateBlock appends a top-level block to a page and returns its ID,
// or "" when the page does not exist.
func (s *Service) CreateBlock(pageID string, draft BlockDraft) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	wi, pi := s.findPage(pageID)
	if wi < 0 {
		return ""
	}

	s.captureLocked()
	now := s.now()
	typ := draft.Type
	if typ == "" {
		typ = core.BlockText
	}
	children := cloneBlocks(draft.Children)
	if children == nil {
		children = []core.Block{}
	}
	s.stampBlocks(children, now)
	block := core.Block{
		ID:        s.newID(),
		Type:      typ,
		Content:   draft.Content,
		Children:  children,
		CreatedAt: now,
		UpdatedAt: now,
	}
	page := &s.workspaces[wi].Pages[pi]
	page.Blocks = append(page.Blocks, block)
	page.UpdatedAt = now

	s.persistLocked(changes().page(pageID).block(block.ID))
	s.publish(core.EventCreate, core.EntityBlock, block.ID)
	return block.ID
}

// UpdateBlock merges the non-nil fields of patch into the block, wherever it
// is nested. The block and its page get a fresh UpdatedAt.
func (s *Service) UpdateBlock(blockID string, patch BlockPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, b, ok := s.locateBlock(blockID)
	if !ok {
		return
	}

	s.captureLocked()
	now := s.now()
	if patch.Type != nil {
		b.Type = *patch.Type
	}
	if patch.Content != nil {
		b.Content = *patch.Content
	}
	if patch.Children != nil {
		b.Children = cloneBlocks(*patch.Children)
		if b.Children == nil {
			b.Children = []core.Block{}
		}
		s.stampBlocks(b.Children, now)
	}
	b.UpdatedAt = now
	page := &s.workspaces[path.wi].Pages[path.pi]
	page.UpdatedAt = now

	s.persistLocked(changes().block(page.Blocks[path.top].ID))
	s.publish(core.EventModify, core.EntityBlock, blockID)
}

// DeleteBlock removes a block from every list that contains it.
func (s *Service) DeleteBlock(blockID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, ok := s.locateBlock(blockID); !ok {
		return
	}

	s.captureLocked()
	now := s.now()
	cs := changes()
	for wi := range s.workspaces {
		for pi := range s.workspaces[wi].Pages {
			page := &s.workspaces[wi].Pages[pi]
			topLevel := false
			var ancestors []string
			for i := range page.Blocks {
				switch {
				case page.Blocks[i].ID == blockID:
					topLevel = true
				case findBlock(&page.Blocks[i], blockID) != nil:
					ancestors = append(ancestors, page.Blocks[i].ID)
				}
			}
			if !topLevel && len(ancestors) == 0 {
				continue
			}
			page.Blocks, _ = removeBlock(page.Blocks, blockID)
			page.UpdatedAt = now
			cs.page(page.ID)
			if topLevel {
				cs.deleteBlock(blockID)
			}
			for _, id := range ancestors {
				cs.block(id)
			}
		}
	}
	s.persistLocked(cs)
	s.publish(core.EventDelete, core.EntityBlock, blockID)
}

// MoveBlock moves a top-level block of the current page to newIndex.
// The index is clamped to the list bounds.
func (s *Service) MoveBlock(blockID string, newIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentPage == "" {
		return
	}
	wi, pi := s.findPage(s.currentPage)
	if wi < 0 {
		return
	}
	page := &s.workspaces[wi].Pages[pi]

	from := -1
	for i, b := range page.Blocks {
		if b.ID == blockID {
			from = i
			break
		}
	}
	if from < 0 {
		return
	}
	to := min(max(newIndex, 0), len(page.Blocks)-1)
	if to == from {
		return
	}

	s.captureLocked()
	moved := page.Blocks[from]
	rest := append(page.Blocks[:from:from], page.Blocks[from+1:]...)
	blocks := make([]core.Block, 0, len(page.Blocks))
	blocks = append(blocks, rest[:to]...)
	blocks = append(blocks, moved)
	blocks = append(blocks, rest[to:]...)
	page.Blocks = blocks
	page.UpdatedAt = s.now()

	s.persistLocked(changes().page(page.ID))
	s.publish(core.EventModify, core.EntityPage, page.ID)
}

// stampBlocks gives caller-built blocks fresh IDs and timestamps, nested
// children included. Carried comments get fresh IDs and point at the new block.
func (s *Service) stampBlocks(blocks []core.Block, now time.Time) {
	for i := range blocks {
		b := &blocks[i]
		b.ID = s.newID()
		if b.Type == "" {
			b.Type = core.BlockText
		}
		b.CreatedAt = now
		b.UpdatedAt = now
		for j := range b.Comments {
			c := &b.Comments[j]
			c.ID = s.newID()
			c.BlockID = b.ID
			if c.CreatedAt.IsZero() {
				c.CreatedAt = now
			} else {
				c.CreatedAt = c.CreatedAt.UTC().Round(0)
			}
		}
		s.stampBlocks(b.Children, now)
	}
}
