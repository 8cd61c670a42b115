// Package fs provides the flat fallback cache used when the primary durable
// store is unavailable: a key/value map of JSON values, optionally mirrored to
// one file per key.
package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FlatCache is a namespaced key/value store. With an empty Dir it lives in
// memory only; otherwise every Set is written through to
// <Dir>/<namespace>_<key>.json.
type FlatCache struct {
	Dir       string
	namespace string

	mu      sync.RWMutex
	entries map[string]json.RawMessage
	loaded  bool

	lastWrite *time.Time
	lastError string
}

// NewFlatCache creates a cache. dir may be empty for a memory-only cache.
func NewFlatCache(dir, namespace string) *FlatCache {
	if namespace == "" {
		namespace = "quire"
	}
	return &FlatCache{
		Dir:       dir,
		namespace: namespace,
		entries:   make(map[string]json.RawMessage),
	}
}

// Key returns the namespaced name of key.
func (c *FlatCache) Key(key string) string {
	return c.namespace + "_" + key
}

func (c *FlatCache) path(key string) string {
	return filepath.Join(c.Dir, c.Key(key)+".json")
}

// Load reads every mirrored file of the namespace. Missing directories and
// corrupted files are skipped so the cache can self-heal.
func (c *FlatCache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked()
}

func (c *FlatCache) loadLocked() error {
	if c.loaded || c.Dir == "" {
		c.loaded = true
		return nil
	}
	c.loaded = true

	files, err := os.ReadDir(c.Dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache dir: %w", err)
	}

	prefix := c.namespace + "_"
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.Dir, name))
		if err != nil || !json.Valid(data) {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json")
		if _, ok := c.entries[key]; !ok {
			c.entries[key] = data
		}
	}
	return nil
}

// Get decodes the value stored under key into v. It reports false on a miss.
func (c *FlatCache) Get(key string, v any) (bool, error) {
	c.mu.Lock()
	if err := c.loadLocked(); err != nil {
		c.mu.Unlock()
		return false, err
	}
	raw, ok := c.entries[key]
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", c.Key(key), err)
	}
	return true, nil
}

// Set stores v under key. The in-memory value is updated even when the
// write-through to disk fails.
func (c *FlatCache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.Key(key), err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.loadLocked()
	c.entries[key] = data

	if c.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		c.lastError = err.Error()
		return err
	}
	if err := writeFileAtomic(c.path(key), data, 0644); err != nil {
		c.lastError = err.Error()
		return err
	}
	now := time.Now().UTC()
	c.lastWrite = &now
	return nil
}

// Delete removes key from memory and disk.
func (c *FlatCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.loadLocked()
	delete(c.entries, key)

	if c.Dir == "" {
		return nil
	}
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Keys returns the stored keys, sorted.
func (c *FlatCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.loadLocked()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys in the cache.
func (c *FlatCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
