package platform

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigName)
	raw := `data_dir: ./notes
history_limit: 20
remote_url: ws://localhost:8765/sync
offline_marker: /tmp/quire-offline
init_attempts: 5
init_backoff: 250ms
event_buffer: 16
templates:
  - id: standup
    name: Standup
    icon: "🧍"
    blocks:
      - type: heading
        content: Yesterday
      - type: todo
        content: ""
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./notes", cfg.DataDir)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.Equal(t, "ws://localhost:8765/sync", cfg.RemoteURL)
	assert.Equal(t, 5, cfg.InitAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.InitBackoff)
	require.Len(t, cfg.Templates, 1)
	assert.Equal(t, "standup", cfg.Templates[0].ID)
	assert.Len(t, cfg.Templates[0].Blocks, 2)

	o := defaultOptions()
	for _, opt := range cfg.Options() {
		opt(o)
	}
	assert.Equal(t, 20, o.historyLimit)
	assert.Equal(t, "ws://localhost:8765/sync", o.remoteURL)
	assert.Equal(t, "/tmp/quire-offline", o.offlineMarker)
	assert.Equal(t, 5, o.initAttempts)
	assert.Equal(t, 250*time.Millisecond, o.initBackoff)
	assert.Equal(t, 16, o.eventBuffer)
	assert.Len(t, o.templates, 1)
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), ConfigName))
	require.NoError(t, err)
	assert.Empty(t, cfg.Options())
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("history_limit: [nope"), 0644))
	_, err := LoadConfig(bad)
	assert.Error(t, err)

	anonymous := filepath.Join(dir, "anon.yaml")
	require.NoError(t, os.WriteFile(anonymous, []byte("templates:\n  - name: No ID\n"), 0644))
	_, err = LoadConfig(anonymous)
	assert.ErrorContains(t, err, "has no id")
}
