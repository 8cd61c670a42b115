package document_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/document"
)

func TestPersistence_WritesOnlyTouchedRecords(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(t, document.WithStore(store))

	pageID := svc.CreatePage(svc.CurrentWorkspace(), document.PageDraft{Title: "P"})
	blockID := svc.CreateBlock(pageID, document.BlockDraft{Content: "hello"})
	require.NoError(t, svc.Wait(ctx))
	store.takeCalls()

	svc.UpdateBlock(blockID, document.BlockPatch{Content: document.Ptr("hi")})
	require.NoError(t, svc.Wait(ctx))
	assert.Equal(t, []string{"block:" + blockID}, store.takeCalls())

	svc.MoveBlock(blockID, 0)
	svc.DeletePage(pageID)
	require.NoError(t, svc.Wait(ctx))
	assert.Equal(t, []string{
		"workspace:" + svc.CurrentWorkspace(),
		"-page:" + pageID,
		"-block:" + blockID,
	}, store.takeCalls())
}

func TestPersistence_NestedEditWritesTopLevelRecord(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(t, document.WithStore(store))

	pageID := svc.CreatePage(svc.CurrentWorkspace(), document.PageDraft{Title: "P"})
	parentID := svc.CreateBlock(pageID, document.BlockDraft{Children: []core.Block{{Content: "child"}}})
	parent, _ := svc.Block(parentID)
	require.NoError(t, svc.Wait(ctx))
	store.takeCalls()

	svc.UpdateBlock(parent.Children[0].ID, document.BlockPatch{Content: document.Ptr("edited")})
	require.NoError(t, svc.Wait(ctx))

	assert.Equal(t, []string{"block:" + parentID}, store.takeCalls())
	rec := store.blocks[parentID]
	assert.Equal(t, "edited", rec.Block.Children[0].Content)
	assert.Equal(t, pageID, rec.PageID)
}

func TestBootstrap_RebuildsTreeFromStore(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	first := newService(t, document.WithStore(store))

	wsID := first.CurrentWorkspace()
	p1, err := first.CreatePageFromTemplate(wsID, "todo-list")
	require.NoError(t, err)
	p2 := first.CreatePage(wsID, document.PageDraft{Title: "Scratch"})
	b := first.CreateBlock(p2, document.BlockDraft{Content: "x", Children: []core.Block{{Content: "y"}}})
	first.AddComment(b, document.CommentDraft{Content: "note"})
	first.SetCurrentPage(p1)
	first.MoveBlock(first.Workspaces()[0].Pages[0].Blocks[2].ID, 0)
	require.NoError(t, first.Wait(ctx))

	second := newService(t, document.WithStore(store))

	assert.Equal(t, first.Workspaces(), second.Workspaces())
	page, ok := second.CurrentPage()
	require.True(t, ok)
	assert.Equal(t, p1, page.ID)
	assert.False(t, second.CanUndo())
}

func TestPersistence_UndoDeletesRecordsOfRemovedEntities(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(t, document.WithStore(store))

	pageID := svc.CreatePage(svc.CurrentWorkspace(), document.PageDraft{Title: "P"})
	blockID := svc.CreateBlock(pageID, document.BlockDraft{Content: "temp"})
	require.NoError(t, svc.Wait(ctx))

	require.NoError(t, svc.Undo())
	require.NoError(t, svc.Wait(ctx))

	_, blockKept := store.blocks[blockID]
	assert.False(t, blockKept)
	assert.Empty(t, store.pages[pageID].BlockIDs)
}

func TestPersistence_CopiedBlocksSurviveReload(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	first := newService(t, document.WithStore(store))

	wsID := first.CurrentWorkspace()
	srcID := first.CreatePage(wsID, document.PageDraft{Title: "Source"})
	parentID := first.CreateBlock(srcID, document.BlockDraft{Content: "x", Children: []core.Block{{Content: "y"}}})
	first.AddComment(parentID, document.CommentDraft{Content: "note"})
	src, ok := first.Page(srcID)
	require.True(t, ok)

	copyID := first.CreatePage(wsID, document.PageDraft{Title: "Copy", Blocks: src.Blocks})
	require.NoError(t, first.Wait(ctx))

	copied, ok := first.Page(copyID)
	require.True(t, ok)
	require.Len(t, copied.Blocks, 1)
	cb := copied.Blocks[0]
	assert.NotEqual(t, parentID, cb.ID)
	assert.NotEqual(t, src.Blocks[0].Children[0].ID, cb.Children[0].ID)
	require.Len(t, cb.Comments, 1)
	assert.Equal(t, cb.ID, cb.Comments[0].BlockID)
	assert.NotEqual(t, src.Blocks[0].Comments[0].ID, cb.Comments[0].ID)

	second := newService(t, document.WithStore(store))
	reloadedSrc, _ := second.Page(srcID)
	reloadedCopy, _ := second.Page(copyID)
	assert.Equal(t, []string{"x"}, blockContents(reloadedSrc))
	assert.Equal(t, []string{"x"}, blockContents(reloadedCopy))
	assert.Equal(t, parentID, reloadedSrc.Blocks[0].ID)
}
