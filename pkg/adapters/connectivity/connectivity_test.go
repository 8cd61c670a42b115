package connectivity_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/adapters/connectivity"
	"github.com/aretw0/quire/pkg/core"
)

var (
	_ core.Connectivity = (*connectivity.Manual)(nil)
	_ core.Connectivity = (*connectivity.MarkerFile)(nil)
)

func TestManual(t *testing.T) {
	m := connectivity.NewManual(true, nil)
	assert.True(t, m.Online())

	m.Set(true)
	m.Set(false)
	m.Set(true)

	assert.Equal(t, false, <-m.Changes())
	assert.Equal(t, true, <-m.Changes())
	select {
	case v := <-m.Changes():
		t.Fatalf("unexpected transition %v", v)
	default:
	}

	m.Close()
	_, open := <-m.Changes()
	assert.False(t, open)
	m.Set(false) // no panic after close
}

func receive(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for transition")
		return false
	}
}

func TestMarkerFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	marker := filepath.Join(t.TempDir(), "state", "offline")
	m := connectivity.NewMarkerFile(marker, nil)
	require.True(t, m.Online())

	require.NoError(t, m.Start(ctx))
	assert.Equal(t, worker.StatusRunning, m.State().Status)

	require.NoError(t, os.WriteFile(marker, nil, 0644))
	assert.False(t, receive(t, m.Changes()))
	assert.False(t, m.Online())

	require.NoError(t, os.Remove(marker))
	assert.True(t, receive(t, m.Changes()))
	assert.True(t, m.Online())

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, m.Stop(stopCtx))

	require.Eventually(t, func() bool {
		_, open := <-m.Changes()
		return !open
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMarkerFile_StartsOfflineWhenPresent(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "offline")
	require.NoError(t, os.WriteFile(marker, nil, 0644))

	m := connectivity.NewMarkerFile(marker, nil)
	assert.False(t, m.Online())
}

func TestMarkerFile_DoubleStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := connectivity.NewMarkerFile(filepath.Join(t.TempDir(), "offline"), nil)
	require.NoError(t, m.Start(ctx))
	assert.Error(t, m.Start(ctx))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, m.Stop(stopCtx))
}
