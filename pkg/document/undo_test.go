package document_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/document"
)

func TestUndoRedo_InverseLaw(t *testing.T) {
	svc := newService(t)
	_, ids := pageWithBlocks(t, svc, "B1", "B2")

	before := svc.Snapshot()
	svc.UpdateBlock(ids[0], document.BlockPatch{Content: document.Ptr("changed")})
	after := svc.Snapshot()

	require.NoError(t, svc.Undo())
	assert.Equal(t, before, svc.Snapshot())

	require.NoError(t, svc.Redo())
	assert.Equal(t, after, svc.Snapshot())
}

func TestUndo_RestoresDeletedPageAndSelection(t *testing.T) {
	svc := newService(t)
	wsID := svc.CurrentWorkspace()
	svc.CreatePage(wsID, document.PageDraft{Title: "One"})
	p2 := svc.CreatePage(wsID, document.PageDraft{Title: "Two"})

	svc.DeletePage(p2)
	require.NoError(t, svc.Undo())

	page, ok := svc.CurrentPage()
	require.True(t, ok)
	assert.Equal(t, p2, page.ID)
}

func TestUndo_EmptyHistoryIsNoop(t *testing.T) {
	svc := newService(t)
	before := svc.Snapshot()

	require.NoError(t, svc.Undo())
	require.NoError(t, svc.Redo())

	assert.Equal(t, before, svc.Snapshot())
	assert.False(t, svc.CanUndo())
	assert.False(t, svc.CanRedo())
}

func TestUndo_NewMutationDiscardsRedo(t *testing.T) {
	svc := newService(t)
	pageID := svc.CreatePage(svc.CurrentWorkspace(), document.PageDraft{Title: "P"})
	svc.CreateBlock(pageID, document.BlockDraft{Content: "A"})

	require.NoError(t, svc.Undo())
	require.True(t, svc.CanRedo())

	svc.CreateBlock(pageID, document.BlockDraft{Content: "B"})
	assert.False(t, svc.CanRedo())

	page, _ := svc.Page(pageID)
	assert.Equal(t, []string{"B"}, blockContents(page))
}

func TestUndo_HistoryLimit(t *testing.T) {
	svc := newService(t, document.WithHistoryLimit(3))
	pageID := svc.CreatePage(svc.CurrentWorkspace(), document.PageDraft{Title: "v0"})
	for i := 1; i <= 5; i++ {
		svc.UpdatePage(pageID, document.PagePatch{Title: document.Ptr(fmt.Sprintf("v%d", i))})
	}

	for range 3 {
		require.True(t, svc.CanUndo())
		require.NoError(t, svc.Undo())
	}
	assert.False(t, svc.CanUndo())

	page, _ := svc.Page(pageID)
	assert.Equal(t, "v2", page.Title)
}

func TestUndoRedo_InverseLawWithCallerTimestamps(t *testing.T) {
	svc := newService(t)
	pageID := svc.CreatePage(svc.CurrentWorkspace(), document.PageDraft{Title: "P"})
	local := time.Now().In(time.FixedZone("UTC+3", 3*60*60))
	parentID := svc.CreateBlock(pageID, document.BlockDraft{
		Content: "parent",
		Children: []core.Block{{
			Content:   "child",
			CreatedAt: local,
			UpdatedAt: local,
			Comments:  []core.Comment{{Content: "c", CreatedAt: local}},
		}},
	})
	parent, _ := svc.Block(parentID)
	assert.Equal(t, parent.CreatedAt, parent.Children[0].CreatedAt)
	assert.Equal(t, time.UTC, parent.Children[0].Comments[0].CreatedAt.Location())

	before := svc.Snapshot()
	svc.UpdatePage(pageID, document.PagePatch{Title: document.Ptr("Q")})
	after := svc.Snapshot()

	require.NoError(t, svc.Undo())
	assert.Equal(t, before, svc.Snapshot())

	require.NoError(t, svc.Redo())
	assert.Equal(t, after, svc.Snapshot())
}
