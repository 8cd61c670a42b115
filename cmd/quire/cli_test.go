package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/adapters/remote"
	"github.com/aretw0/quire/pkg/core"
)

func TestRemoteRouter(t *testing.T) {
	log := &opLog{}
	srv := httptest.NewServer(newRemoteRouter(log, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ws := remote.NewWebSocket("ws"+strings.TrimPrefix(srv.URL, "http")+"/sync", nil)
	defer ws.Close()

	op := core.SyncOperation{
		ID:        1,
		Type:      core.EntityPage,
		Action:    core.ActionUpdate,
		EntityID:  "p1",
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, ws.Push(context.Background(), op))

	resp, err = http.Get(srv.URL + "/ops")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got []core.SyncOperation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].EntityID)
}

func TestPageOfBlock(t *testing.T) {
	snap := core.Snapshot{Workspaces: []core.Workspace{{
		ID: "w1",
		Pages: []core.Page{
			{ID: "p1", Blocks: []core.Block{{ID: "b1", Children: []core.Block{{ID: "nested"}}}}},
			{ID: "p2", Blocks: []core.Block{{ID: "b2"}}},
		},
	}}}

	page, ok := pageOfBlock(snap, "b2")
	assert.True(t, ok)
	assert.Equal(t, "p2", page)

	_, ok = pageOfBlock(snap, "nested")
	assert.False(t, ok, "only top-level blocks can be moved")
}

func TestResolveLayout(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "quire.yaml"), []byte("data_dir: store\n"), 0644))
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))
	t.Chdir(sub)

	l, cfg, err := resolveLayout()
	require.NoError(t, err)

	wantRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(l.root)
	require.NoError(t, err)
	assert.Equal(t, wantRoot, gotRoot)
	assert.Equal(t, "store", cfg.DataDir)
	assert.Equal(t, filepath.Join(l.root, "store"), l.dataDir)
	assert.Equal(t, filepath.Join(l.dataDir, "offline"), l.marker)

	dataDir = "/elsewhere"
	t.Cleanup(func() { dataDir = "" })
	l, _, err = resolveLayout()
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere", l.dataDir)
}
