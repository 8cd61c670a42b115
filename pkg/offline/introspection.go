package offline

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Online        bool       `json:"online"`
	Degraded      bool       `json:"degraded"`
	PrimaryType   string     `json:"primary_type"`
	Primary       any        `json:"primary,omitempty"`
	Fallback      any        `json:"fallback"`
	LastSync      *time.Time `json:"last_sync,omitempty"`
	LastSyncError string     `json:"last_sync_error,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := StoreState{
		Online:        s.online,
		Degraded:      s.degraded,
		PrimaryType:   "none",
		Fallback:      s.fallback.State(),
		LastSync:      s.lastSync,
		LastSyncError: s.lastSyncError,
	}
	if s.primary != nil {
		st.PrimaryType = "repository"
		if comp, ok := s.primary.(introspection.Component); ok {
			st.PrimaryType = comp.ComponentType()
		}
		if in, ok := s.primary.(introspection.Introspectable); ok {
			st.Primary = in.State()
		}
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "offline-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
