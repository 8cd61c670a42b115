package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// CacheState exposes internal state for observability.
type CacheState struct {
	Dir       string     `json:"dir,omitempty"`
	Namespace string     `json:"namespace"`
	Keys      int        `json:"keys"`
	Persisted bool       `json:"persisted"`
	LastWrite *time.Time `json:"last_write,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// State implements introspection.Introspectable.
func (c *FlatCache) State() any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return CacheState{
		Dir:       c.Dir,
		Namespace: c.namespace,
		Keys:      len(c.entries),
		Persisted: c.Dir != "",
		LastWrite: c.lastWrite,
		LastError: c.lastError,
	}
}

// ComponentType implements introspection.Component.
func (c *FlatCache) ComponentType() string {
	return "flat-cache"
}

var _ introspection.Introspectable = (*FlatCache)(nil)
var _ introspection.Component = (*FlatCache)(nil)
