package document

import "github.com/aretw0/quire/pkg/core"

// blockPath locates a block inside the tree. top is the index of its
// top-level ancestor on the page (itself when it is top-level).
type blockPath struct {
	wi, pi, top int
}

// locateBlock finds a block anywhere in the tree, nested children included.
func (s *Service) locateBlock(id string) (blockPath, *core.Block, bool) {
	for wi := range s.workspaces {
		for pi := range s.workspaces[wi].Pages {
			blocks := s.workspaces[wi].Pages[pi].Blocks
			for top := range blocks {
				if b := findBlock(&blocks[top], id); b != nil {
					return blockPath{wi: wi, pi: pi, top: top}, b, true
				}
			}
		}
	}
	return blockPath{}, nil, false
}

func findBlock(b *core.Block, id string) *core.Block {
	if b.ID == id {
		return b
	}
	for i := range b.Children {
		if found := findBlock(&b.Children[i], id); found != nil {
			return found
		}
	}
	return nil
}

// removeBlock drops every occurrence of id from blocks and their children.
func removeBlock(blocks []core.Block, id string) ([]core.Block, bool) {
	removed := false
	out := blocks[:0]
	for _, b := range blocks {
		if b.ID == id {
			removed = true
			continue
		}
		var r bool
		b.Children, r = removeBlock(b.Children, id)
		removed = removed || r
		out = append(out, b)
	}
	return out, removed
}

func blockIDs(blocks []core.Block) []string {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	return ids
}

func pageIDs(pages []core.Page) []string {
	ids := make([]string, len(pages))
	for i, p := range pages {
		ids[i] = p.ID
	}
	return ids
}

func cloneWorkspaces(in []core.Workspace) []core.Workspace {
	if in == nil {
		return nil
	}
	out := make([]core.Workspace, len(in))
	for i, ws := range in {
		out[i] = cloneWorkspace(ws)
	}
	return out
}

func cloneWorkspace(ws core.Workspace) core.Workspace {
	if ws.Pages != nil {
		pages := make([]core.Page, len(ws.Pages))
		for i, p := range ws.Pages {
			pages[i] = clonePage(p)
		}
		ws.Pages = pages
	}
	return ws
}

func clonePage(p core.Page) core.Page {
	p.Blocks = cloneBlocks(p.Blocks)
	return p
}

func cloneBlocks(in []core.Block) []core.Block {
	if in == nil {
		return nil
	}
	out := make([]core.Block, len(in))
	for i, b := range in {
		out[i] = cloneBlock(b)
	}
	return out
}

func cloneBlock(b core.Block) core.Block {
	b.Children = cloneBlocks(b.Children)
	if b.Comments != nil {
		b.Comments = append([]core.Comment(nil), b.Comments...)
		if len(b.Comments) == 0 {
			b.Comments = []core.Comment{}
		}
	}
	return b
}

// Ptr returns a pointer to v. It keeps patch literals short:
//
//	svc.UpdatePage(id, document.PagePatch{Title: document.Ptr("Roadmap")})
func Ptr[T any](v T) *T {
	return &v
}
