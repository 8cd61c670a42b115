package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/internal/platform"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/document"
)

type recordingRemote struct {
	mu  sync.Mutex
	ops []core.SyncOperation
}

func (r *recordingRemote) Push(ctx context.Context, op core.SyncOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	return nil
}

func (r *recordingRemote) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops)
}

func openApp(t *testing.T, dir string, opts ...platform.Option) *platform.App {
	t.Helper()
	app, err := platform.New(context.Background(), dir, opts...)
	require.NoError(t, err)
	return app
}

func TestApp_PersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), ".quire")

	app := openApp(t, dir)
	assert.Equal(t, dir, app.DataDir)
	ws := app.Documents.CurrentWorkspace()
	pageID := app.Documents.CreatePage(ws, document.PageDraft{Title: "Roadmap"})
	require.NotEmpty(t, pageID)
	app.Documents.CreateBlock(pageID, document.BlockDraft{Content: "ship it"})
	require.NoError(t, app.Close(ctx))

	assert.FileExists(t, filepath.Join(dir, platform.DatabaseName))

	reopened := openApp(t, dir)
	defer reopened.Close(ctx)

	page, ok := reopened.Documents.Page(pageID)
	require.True(t, ok)
	assert.Equal(t, "Roadmap", page.Title)
	require.Len(t, page.Blocks, 1)
	assert.Equal(t, "ship it", page.Blocks[0].Content)
}

func TestApp_OfflineEditsDrainOnReconnect(t *testing.T) {
	ctx := context.Background()
	remote := &recordingRemote{}
	app := openApp(t, "", platform.WithMemory(true), platform.WithOnline(false), platform.WithRemote(remote))
	defer app.Close(ctx)

	app.Documents.CreatePage(app.Documents.CurrentWorkspace(), document.PageDraft{Title: "Draft"})
	require.NoError(t, app.Documents.Wait(ctx))

	pending, err := app.Store.PendingCount(ctx)
	require.NoError(t, err)
	assert.Positive(t, pending)
	assert.Zero(t, remote.count())

	require.NoError(t, app.SetOnline(ctx, true))

	st, err := app.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Sync.IsOnline)
	assert.True(t, st.Sync.HasData)
	assert.Zero(t, st.Sync.Pending)
	assert.Equal(t, pending, remote.count())
}

func TestApp_MarkerFileDrivesConnectivity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	marker := filepath.Join(t.TempDir(), "offline")
	require.NoError(t, os.WriteFile(marker, nil, 0644))

	remote := &recordingRemote{}
	app := openApp(t, "", platform.WithMemory(true), platform.WithOfflineMarker(marker), platform.WithRemote(remote))
	defer app.Close(context.Background())
	assert.False(t, app.Store.IsOnline())

	app.Documents.CreatePage(app.Documents.CurrentWorkspace(), document.PageDraft{Title: "Offline"})
	require.NoError(t, app.Documents.Wait(ctx))

	app.Start(ctx)
	require.NoError(t, os.Remove(marker))

	assert.Eventually(t, func() bool {
		n, err := app.Store.PendingCount(ctx)
		return err == nil && n == 0 && app.Store.IsOnline()
	}, 2*time.Second, 20*time.Millisecond)
	assert.Positive(t, remote.count())
}

func TestApp_Status(t *testing.T) {
	ctx := context.Background()
	app := openApp(t, "", platform.WithMemory(true))
	defer app.Close(ctx)

	st, err := app.Status(ctx)
	require.NoError(t, err)

	var types []string
	for _, c := range st.Components {
		types = append(types, c.Type)
		assert.NotNil(t, c.State, c.Type)
	}
	assert.Equal(t, []string{"document-service", "offline-store", "sync-coordinator"}, types)
}

func TestApp_ConfigTemplates(t *testing.T) {
	ctx := context.Background()
	cfg := platform.Config{
		HistoryLimit: 5,
		Templates: []document.Template{{
			ID:     "standup",
			Name:   "Standup",
			Blocks: []document.TemplateBlock{{Type: core.BlockHeading, Content: "Yesterday"}},
		}},
	}
	app := openApp(t, "", append(cfg.Options(), platform.WithMemory(true))...)
	defer app.Close(ctx)

	pageID, err := app.Documents.CreatePageFromTemplate(app.Documents.CurrentWorkspace(), "standup")
	require.NoError(t, err)
	page, ok := app.Documents.Page(pageID)
	require.True(t, ok)
	require.Len(t, page.Blocks, 1)
	assert.Equal(t, "Yesterday", page.Blocks[0].Content)
}

func TestApp_Events(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := openApp(t, "", platform.WithMemory(true))
	defer app.Close(context.Background())

	src := app.Events(ctx)
	require.NoError(t, src.Start(ctx))

	id := app.Documents.CreatePage(app.Documents.CurrentWorkspace(), document.PageDraft{Title: "Watched"})

	select {
	case e := <-src.Events():
		assert.Equal(t, "CREATE page "+id, e.String())
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}
