package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/adapters/fs"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestFlatCache_MemoryOnly(t *testing.T) {
	c := fs.NewFlatCache("", "quire")

	var out []item
	ok, err := c.Get("pages", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set("pages", []item{{ID: "p1", Name: "One"}}))
	ok, err = c.Get("pages", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []item{{ID: "p1", Name: "One"}}, out)
	assert.Equal(t, "quire_pages", c.Key("pages"))
}

func TestFlatCache_WritesThroughAndReloads(t *testing.T) {
	dir := t.TempDir()
	c := fs.NewFlatCache(dir, "quire")
	require.NoError(t, c.Set("pages", []item{{ID: "p1"}}))
	require.NoError(t, c.Set("pages_timestamp", "2026-01-01T00:00:00Z"))

	_, err := os.Stat(filepath.Join(dir, "quire_pages.json"))
	require.NoError(t, err)

	reopened := fs.NewFlatCache(dir, "quire")
	require.NoError(t, reopened.Load())
	assert.Equal(t, []string{"pages", "pages_timestamp"}, reopened.Keys())

	var out []item
	ok, err := reopened.Get("pages", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "p1", out[0].ID)
}

func TestFlatCache_SkipsCorruptedAndForeignFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quire_broken.json"), []byte("{not json"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other_pages.json"), []byte("[]"), 0644))

	c := fs.NewFlatCache(dir, "quire")
	require.NoError(t, c.Load())
	assert.Empty(t, c.Keys())
}

func TestFlatCache_Delete(t *testing.T) {
	dir := t.TempDir()
	c := fs.NewFlatCache(dir, "quire")
	require.NoError(t, c.Set("queue", []int{1}))

	require.NoError(t, c.Delete("queue"))
	require.NoError(t, c.Delete("queue"))

	_, err := os.Stat(filepath.Join(dir, "quire_queue.json"))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 0, c.Len())
}

func TestFlatCache_State(t *testing.T) {
	c := fs.NewFlatCache("", "")
	require.NoError(t, c.Set("a", 1))

	st, ok := c.State().(fs.CacheState)
	require.True(t, ok)
	assert.Equal(t, "quire", st.Namespace)
	assert.Equal(t, 1, st.Keys)
	assert.False(t, st.Persisted)
}
