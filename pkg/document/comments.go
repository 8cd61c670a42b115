package document

import (
	"github.com/aretw0/quire/pkg/core"
)

// CommentDraft holds the fields of a new comment.
type CommentDraft struct {
	UserID   string
	UserName string
	Content  string
}

// AddComment attaches a comment to a block and returns its ID,
// or "" when the block does not exist.
func (s *Service) AddComment(blockID string, draft CommentDraft) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, b, ok := s.locateBlock(blockID)
	if !ok {
		return ""
	}

	s.captureLocked()
	now := s.now()
	c := core.Comment{
		ID:        s.newID(),
		BlockID:   blockID,
		UserID:    draft.UserID,
		UserName:  draft.UserName,
		Content:   draft.Content,
		CreatedAt: now,
	}
	b.Comments = append(b.Comments, c)
	s.touchBlockLocked(path, b)

	s.publish(core.EventCreate, core.EntityComment, c.ID)
	return c.ID
}

// UpdateComment replaces the content of a comment.
func (s *Service) UpdateComment(blockID, commentID, content string) {
	s.mutateComment(blockID, commentID, func(c *core.Comment) bool {
		if c.Content == content {
			return false
		}
		c.Content = content
		return true
	})
}

// ResolveComment marks a comment resolved. Resolved comments are kept but
// no longer listed by BlockComments.
func (s *Service) ResolveComment(blockID, commentID string) {
	s.mutateComment(blockID, commentID, func(c *core.Comment) bool {
		if c.Resolved {
			return false
		}
		c.Resolved = true
		return true
	})
}

// DeleteComment removes a comment from a block.
func (s *Service) DeleteComment(blockID, commentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, b, ok := s.locateBlock(blockID)
	if !ok {
		return
	}
	idx := commentIndex(b.Comments, commentID)
	if idx < 0 {
		return
	}

	s.captureLocked()
	b.Comments = append(b.Comments[:idx], b.Comments[idx+1:]...)
	if len(b.Comments) == 0 {
		b.Comments = nil
	}
	s.touchBlockLocked(path, b)
	s.publish(core.EventDelete, core.EntityComment, commentID)
}

// BlockComments returns the unresolved comments of a block.
func (s *Service) BlockComments(blockID string) []core.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, b, ok := s.locateBlock(blockID)
	if !ok {
		return nil
	}
	var out []core.Comment
	for _, c := range b.Comments {
		if !c.Resolved {
			out = append(out, c)
		}
	}
	return out
}

func (s *Service) mutateComment(blockID, commentID string, apply func(*core.Comment) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, b, ok := s.locateBlock(blockID)
	if !ok {
		return
	}
	idx := commentIndex(b.Comments, commentID)
	if idx < 0 {
		return
	}

	// Apply to a copy first so an unchanged comment leaves history alone.
	c := b.Comments[idx]
	if !apply(&c) {
		return
	}
	s.captureLocked()
	b.Comments[idx] = c
	s.touchBlockLocked(path, b)
	s.publish(core.EventModify, core.EntityComment, commentID)
}

// touchBlockLocked bumps the block and page timestamps and persists the
// top-level block record that holds b.
func (s *Service) touchBlockLocked(path blockPath, b *core.Block) {
	now := s.now()
	b.UpdatedAt = now
	page := &s.workspaces[path.wi].Pages[path.pi]
	page.UpdatedAt = now
	s.persistLocked(changes().block(page.Blocks[path.top].ID))
}

func commentIndex(comments []core.Comment, id string) int {
	for i := range comments {
		if comments[i].ID == id {
			return i
		}
	}
	return -1
}
