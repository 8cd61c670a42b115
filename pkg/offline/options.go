package offline

import (
	"log/slog"
	"time"
)

// Option defines a functional option for configuring the Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithInitRetry sets how many times Init tries the primary store and how
// long it waits between attempts.
func WithInitRetry(attempts int, backoff time.Duration) Option {
	return func(s *Store) {
		if attempts > 0 {
			s.initAttempts = attempts
		}
		if backoff >= 0 {
			s.initBackoff = backoff
		}
	}
}

// WithOnline sets the initial connectivity state. The default is online.
func WithOnline(online bool) Option {
	return func(s *Store) {
		s.online = online
	}
}

// WithClock overrides the time source used for queue and sync timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}
