package document_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/document"
)

// memStore implements document.Store in memory and records every call.
type memStore struct {
	mu         sync.Mutex
	workspaces map[string]core.WorkspaceRecord
	pages      map[string]core.PageRecord
	blocks     map[string]core.BlockRecord
	calls      []string
}

func newMemStore() *memStore {
	return &memStore{
		workspaces: make(map[string]core.WorkspaceRecord),
		pages:      make(map[string]core.PageRecord),
		blocks:     make(map[string]core.BlockRecord),
	}
}

func (m *memStore) SaveWorkspaces(_ context.Context, items []core.WorkspaceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range items {
		m.workspaces[r.ID] = r
		m.calls = append(m.calls, "workspace:"+r.ID)
	}
	return nil
}

func (m *memStore) SavePages(_ context.Context, items []core.PageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range items {
		m.pages[r.Page.ID] = r
		m.calls = append(m.calls, "page:"+r.Page.ID)
	}
	return nil
}

func (m *memStore) SaveBlocks(_ context.Context, items []core.BlockRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range items {
		m.blocks[r.Block.ID] = r
		m.calls = append(m.calls, "block:"+r.Block.ID)
	}
	return nil
}

func (m *memStore) DeletePages(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.pages, id)
		m.calls = append(m.calls, "-page:"+id)
	}
	return nil
}

func (m *memStore) DeleteBlocks(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.blocks, id)
		m.calls = append(m.calls, "-block:"+id)
	}
	return nil
}

func (m *memStore) LoadWorkspaces(context.Context) ([]core.WorkspaceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.WorkspaceRecord, 0, len(m.workspaces))
	for _, r := range m.workspaces {
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) LoadPages(context.Context) ([]core.PageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.PageRecord, 0, len(m.pages))
	for _, r := range m.pages {
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) LoadBlocks(_ context.Context, pageID string) ([]core.BlockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.BlockRecord
	for _, r := range m.blocks {
		if pageID == "" || r.PageID == pageID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) takeCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := m.calls
	m.calls = nil
	return calls
}

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

// seqIDs returns a generator producing id-1, id-2, ...
func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newService(t *testing.T, opts ...document.Option) *document.Service {
	t.Helper()
	base := []document.Option{
		document.WithClock(stepClock()),
		document.WithIDGenerator(seqIDs()),
	}
	svc := document.New(append(base, opts...)...)
	require.NoError(t, svc.Bootstrap(context.Background()))
	t.Cleanup(func() {
		_ = svc.Close(context.Background())
	})
	return svc
}

func blockContents(p core.Page) []string {
	out := make([]string, len(p.Blocks))
	for i, b := range p.Blocks {
		out[i] = b.Content
	}
	return out
}
