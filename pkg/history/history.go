// Package history keeps bounded linear undo/redo stacks of serialized
// snapshots around a present value.
package history

import "sync"

// DefaultLimit is the number of undo steps kept when no limit is given.
const DefaultLimit = 50

// Manager holds past (oldest first) and future (soonest first) snapshots.
// Capturing a new snapshot discards the future: branching history is not kept.
type Manager struct {
	mu      sync.Mutex
	past    []string
	present string
	future  []string
	limit   int
}

// New creates a Manager keeping at most limit undo steps.
// A non-positive limit means DefaultLimit.
func New(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{limit: limit}
}

// Capture records pre, the state taken before an imminent mutation.
// It must be called before the mutation is applied.
func (m *Manager) Capture(pre string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.past = append(m.past, pre)
	if over := len(m.past) - m.limit; over > 0 {
		// Oldest entries go first.
		m.past = append([]string(nil), m.past[over:]...)
	}
	m.present = pre
	m.future = nil
}

// Undo returns the state to restore, moving live onto the future stack.
// The boolean is false when there is nothing to undo.
func (m *Manager) Undo(live string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.past) == 0 {
		return "", false
	}
	last := len(m.past) - 1
	restored := m.past[last]
	m.past = m.past[:last]
	m.future = append([]string{live}, m.future...)
	m.present = restored
	return restored, true
}

// Redo returns the state to restore, moving live onto the past stack.
// The boolean is false when there is nothing to redo.
func (m *Manager) Redo(live string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.future) == 0 {
		return "", false
	}
	restored := m.future[0]
	m.future = m.future[1:]
	m.past = append(m.past, live)
	if over := len(m.past) - m.limit; over > 0 {
		m.past = append([]string(nil), m.past[over:]...)
	}
	m.present = restored
	return restored, true
}

// CanUndo reports whether Undo would restore a state.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past) > 0
}

// CanRedo reports whether Redo would restore a state.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future) > 0
}

// Depth returns the sizes of the past and future stacks.
func (m *Manager) Depth() (past, future int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past), len(m.future)
}

// Present returns the snapshot most recently handed to Capture or Reset, or
// returned by Undo or Redo. After Capture this is the pre-mutation state: the
// live state after a mutation is owned by the caller and only enters the
// manager through Undo or Redo.
func (m *Manager) Present() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present
}

// Past returns a copy of the past stack, oldest first.
func (m *Manager) Past() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.past...)
}

// Reset drops both stacks and sets present.
func (m *Manager) Reset(present string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.past = nil
	m.future = nil
	m.present = present
}
