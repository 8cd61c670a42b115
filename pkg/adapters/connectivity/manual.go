// Package connectivity provides online/offline signals for the sync
// coordinator.
package connectivity

import (
	"log/slog"
	"sync"
)

// Manual is a connectivity source driven by calls to Set.
type Manual struct {
	mu      sync.Mutex
	online  bool
	closed  bool
	changes chan bool
	logger  *slog.Logger
}

// NewManual creates a Manual source in the given initial state.
func NewManual(online bool, logger *slog.Logger) *Manual {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manual{
		online:  online,
		changes: make(chan bool, 16),
		logger:  logger,
	}
}

// Online reports the current state.
func (m *Manual) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Changes emits every transition.
func (m *Manual) Changes() <-chan bool {
	return m.changes
}

// Set changes the state. Setting the current state again emits nothing.
func (m *Manual) Set(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.online == online {
		return
	}
	m.online = online
	select {
	case m.changes <- online:
	default:
		m.logger.Warn("connectivity transition dropped, consumer is behind", "online", online)
	}
}

// Close closes the Changes channel.
func (m *Manual) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.changes)
	}
}
