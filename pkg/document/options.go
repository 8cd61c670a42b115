package document

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore attaches the durable store mutations are persisted to.
// Without a store the service keeps state in memory only.
func WithStore(store Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithHistoryLimit sets the number of undo steps kept. Zero means the default (50).
func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		s.historyLimit = n
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the generator used for new entity IDs.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithTemplates registers page templates. A template with the ID of a
// built-in replaces it.
func WithTemplates(templates ...Template) Option {
	return func(s *Service) {
		for _, t := range templates {
			s.registerTemplate(t)
		}
	}
}

// WithEventBuffer sets the buffer size of each Watch channel.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.eventBuffer = size
		}
	}
}

// WithDefaultWorkspaceName sets the name of the workspace Bootstrap creates
// when nothing is persisted.
func WithDefaultWorkspaceName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.defaultWorkspace = name
		}
	}
}

func defaultClock() time.Time {
	// No monotonic reading: timestamps must round-trip through the codec unchanged.
	return time.Now().UTC()
}

func defaultID() string {
	return uuid.Must(uuid.NewV7()).String()
}
