package document_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/document"
)

func undoDepth(t *testing.T, svc *document.Service) int {
	t.Helper()
	st, ok := svc.State().(document.ServiceState)
	require.True(t, ok)
	return st.UndoDepth
}

func TestBootstrap_CreatesDefaultWorkspace(t *testing.T) {
	svc := newService(t, document.WithDefaultWorkspaceName("Home"))

	ws := svc.Workspaces()
	require.Len(t, ws, 1)
	assert.Equal(t, "Home", ws[0].Name)
	assert.Equal(t, ws[0].ID, svc.CurrentWorkspace())
	_, ok := svc.CurrentPage()
	assert.False(t, ok)
	assert.False(t, svc.CanUndo(), "bootstrap must not record history")
}

func TestCreatePage(t *testing.T) {
	svc := newService(t)
	wsID := svc.CurrentWorkspace()

	id := svc.CreatePage(wsID, document.PageDraft{Title: "Notes", Icon: "📄"})
	require.NotEmpty(t, id)

	page, ok := svc.CurrentPage()
	require.True(t, ok)
	assert.Equal(t, id, page.ID)
	assert.Equal(t, "Notes", page.Title)
	assert.Equal(t, page.CreatedAt, page.UpdatedAt)
	assert.NotNil(t, page.Blocks)
	assert.True(t, svc.CanUndo())
}

func TestCreatePage_UnknownWorkspaceIsNoop(t *testing.T) {
	svc := newService(t)

	id := svc.CreatePage("missing", document.PageDraft{Title: "Nope"})
	assert.Empty(t, id)
	assert.False(t, svc.CanUndo())
}

func TestUpdatePage_KeepsCreatedAt(t *testing.T) {
	svc := newService(t)
	id := svc.CreatePage(svc.CurrentWorkspace(), document.PageDraft{Title: "Draft"})
	before, _ := svc.Page(id)

	svc.UpdatePage(id, document.PagePatch{Title: document.Ptr("Final"), Cover: document.Ptr("sea.png")})

	after, ok := svc.Page(id)
	require.True(t, ok)
	assert.Equal(t, "Final", after.Title)
	assert.Equal(t, "sea.png", after.Cover)
	assert.Equal(t, before.Icon, after.Icon)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestDeletePage_FallsBackWithinWorkspace(t *testing.T) {
	svc := newService(t)
	wsID := svc.CurrentWorkspace()
	p1 := svc.CreatePage(wsID, document.PageDraft{Title: "One"})
	p2 := svc.CreatePage(wsID, document.PageDraft{Title: "Two"})

	svc.DeletePage(p2)

	page, ok := svc.CurrentPage()
	require.True(t, ok)
	assert.Equal(t, p1, page.ID)
	_, exists := svc.Page(p2)
	assert.False(t, exists)
}

func TestDeletePage_FallsBackToOtherWorkspace(t *testing.T) {
	svc := newService(t)
	ws1 := svc.CurrentWorkspace()
	p1 := svc.CreatePage(ws1, document.PageDraft{Title: "One"})
	ws2 := svc.CreateWorkspace("Side project")
	p2 := svc.CreatePage(ws2, document.PageDraft{Title: "Two"})
	require.Equal(t, ws2, svc.CurrentWorkspace())

	svc.DeletePage(p2)

	page, ok := svc.CurrentPage()
	require.True(t, ok)
	assert.Equal(t, p1, page.ID)
	assert.Equal(t, ws1, svc.CurrentWorkspace())
}

func TestDeletePage_LastPageLeavesNoneSelected(t *testing.T) {
	svc := newService(t)
	p1 := svc.CreatePage(svc.CurrentWorkspace(), document.PageDraft{Title: "Only"})

	svc.DeletePage(p1)

	_, ok := svc.CurrentPage()
	assert.False(t, ok)
}

func TestDeletePage_NonCurrentKeepsSelection(t *testing.T) {
	svc := newService(t)
	wsID := svc.CurrentWorkspace()
	p1 := svc.CreatePage(wsID, document.PageDraft{Title: "One"})
	p2 := svc.CreatePage(wsID, document.PageDraft{Title: "Two"})

	svc.DeletePage(p1)

	page, ok := svc.CurrentPage()
	require.True(t, ok)
	assert.Equal(t, p2, page.ID)
}

func TestLookupMissesAreSilent(t *testing.T) {
	svc := newService(t)
	svc.CreatePage(svc.CurrentWorkspace(), document.PageDraft{Title: "One"})
	depth := undoDepth(t, svc)

	svc.UpdatePage("missing", document.PagePatch{Title: document.Ptr("x")})
	svc.DeletePage("missing")
	assert.Empty(t, svc.CreateBlock("missing", document.BlockDraft{}))
	svc.UpdateBlock("missing", document.BlockPatch{Content: document.Ptr("x")})
	svc.DeleteBlock("missing")
	svc.MoveBlock("missing", 0)
	assert.Empty(t, svc.AddComment("missing", document.CommentDraft{Content: "x"}))
	svc.ResolveComment("missing", "missing")
	svc.DeleteComment("missing", "missing")
	svc.RenameWorkspace("missing", "x")

	assert.Equal(t, depth, undoDepth(t, svc))
}

func TestNavigationIsNotRecorded(t *testing.T) {
	svc := newService(t)
	wsID := svc.CurrentWorkspace()
	p1 := svc.CreatePage(wsID, document.PageDraft{Title: "One"})
	svc.CreatePage(wsID, document.PageDraft{Title: "Two"})
	depth := undoDepth(t, svc)

	svc.SetCurrentPage(p1)
	svc.ToggleSidebar()

	page, _ := svc.CurrentPage()
	assert.Equal(t, p1, page.ID)
	assert.False(t, svc.SidebarOpen())
	assert.Equal(t, depth, undoDepth(t, svc))
}

func TestFindPages(t *testing.T) {
	svc := newService(t)
	wsID := svc.CurrentWorkspace()
	svc.CreatePage(wsID, document.PageDraft{Title: "Meeting 2026-01-05"})
	svc.CreatePage(wsID, document.PageDraft{Title: "Meeting 2026-01-12"})
	svc.CreatePage(wsID, document.PageDraft{Title: "Groceries"})

	pages, err := svc.FindPages("Meeting*")
	require.NoError(t, err)
	assert.Len(t, pages, 2)

	pages, err = svc.FindPages("{Groceries,Nothing}")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Groceries", pages[0].Title)

	_, err = svc.FindPages("[")
	assert.Error(t, err)
}

func TestReadsReturnCopies(t *testing.T) {
	svc := newService(t)
	pageID := svc.CreatePage(svc.CurrentWorkspace(), document.PageDraft{Title: "One"})
	svc.CreateBlock(pageID, document.BlockDraft{Content: "hello"})

	page, _ := svc.Page(pageID)
	page.Blocks[0].Content = "tampered"

	fresh, _ := svc.Page(pageID)
	assert.Equal(t, "hello", fresh.Blocks[0].Content)
}

func TestWatch(t *testing.T) {
	svc := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := svc.Watch(ctx)
	id := svc.CreatePage(svc.CurrentWorkspace(), document.PageDraft{Title: "Watched"})

	select {
	case e := <-events:
		assert.Equal(t, core.EventCreate, e.Type)
		assert.Equal(t, core.EntityPage, e.Entity)
		assert.Equal(t, id, e.ID)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-events
		return !open
	}, time.Second, 10*time.Millisecond)
}
