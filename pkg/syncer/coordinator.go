// Package syncer watches connectivity and drains the offline queue when the
// app comes back online.
package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/quire/pkg/core"
)

// Store is the part of the durable store the coordinator drives.
type Store interface {
	IsOnline() bool
	SetOnline(ctx context.Context, online bool) error
	HasData(ctx context.Context) (bool, error)
	PendingCount(ctx context.Context) (int, error)
	ForceSync(ctx context.Context) error
}

// Status is a point-in-time view of sync health.
type Status struct {
	IsOnline bool `json:"isOnline"`
	HasData  bool `json:"hasData"`
	Pending  int  `json:"pending"`
}

// Coordinator forwards connectivity transitions to the store.
type Coordinator struct {
	store  Store
	signal core.Connectivity
	logger *slog.Logger

	mu          sync.RWMutex
	running     bool
	transitions int
	lastChange  *time.Time
	lastError   string
}

// New creates a Coordinator. signal may be nil when only ForceSync is used.
func New(store Store, signal core.Connectivity, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{store: store, signal: signal, logger: logger}
}

// Run applies the signal's current state, then every transition, until ctx
// is done or the signal closes. Sync errors are logged and do not stop Run.
func (c *Coordinator) Run(ctx context.Context) error {
	if c.signal == nil {
		<-ctx.Done()
		return nil
	}

	c.setRunning(true)
	defer c.setRunning(false)

	c.apply(ctx, c.signal.Online())
	changes := c.signal.Changes()
	for {
		select {
		case <-ctx.Done():
			return nil
		case online, ok := <-changes:
			if !ok {
				c.logger.Debug("connectivity source closed")
				return nil
			}
			c.apply(ctx, online)
		}
	}
}

func (c *Coordinator) apply(ctx context.Context, online bool) {
	if c.store.IsOnline() == online {
		return
	}
	err := c.store.SetOnline(ctx, online)

	c.mu.Lock()
	now := time.Now().UTC()
	c.transitions++
	c.lastChange = &now
	c.lastError = ""
	if err != nil {
		c.lastError = err.Error()
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("sync after reconnect failed", "error", err)
	}
}

// Status reports connectivity, whether anything is persisted and the
// queue length.
func (c *Coordinator) Status(ctx context.Context) (Status, error) {
	st := Status{IsOnline: c.store.IsOnline()}
	has, err := c.store.HasData(ctx)
	if err != nil {
		return st, err
	}
	st.HasData = has
	n, err := c.store.PendingCount(ctx)
	if err != nil {
		return st, err
	}
	st.Pending = n
	return st, nil
}

// ForceSync drains the queue now. It is a no-op while offline.
func (c *Coordinator) ForceSync(ctx context.Context) error {
	return c.store.ForceSync(ctx)
}

func (c *Coordinator) setRunning(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = v
}

// CoordinatorState exposes internal state for observability.
type CoordinatorState struct {
	Running     bool       `json:"running"`
	Transitions int        `json:"transitions"`
	LastChange  *time.Time `json:"last_change,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// State implements introspection.Introspectable.
func (c *Coordinator) State() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CoordinatorState{
		Running:     c.running,
		Transitions: c.transitions,
		LastChange:  c.lastChange,
		LastError:   c.lastError,
	}
}

// ComponentType implements introspection.Component.
func (c *Coordinator) ComponentType() string {
	return "sync-coordinator"
}

var _ introspection.Introspectable = (*Coordinator)(nil)
var _ introspection.Component = (*Coordinator)(nil)
