package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/document"
)

// options holds the internal configuration for an App.
type options struct {
	logger        *slog.Logger
	historyLimit  int
	eventBuffer   int
	templates     []document.Template
	remote        core.Remote
	remoteURL     string
	signal        core.Connectivity
	offlineMarker string
	online        bool
	initAttempts  int
	initBackoff   time.Duration
	memory        bool
	devSafety     bool
	clock         func() time.Time
	newID         func() string
}

// Option defines a functional option for configuring an App.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		logger:      slog.Default(),
		online:      true,
		initBackoff: -1,
		devSafety:   true,
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHistoryLimit bounds the undo stack. Zero means default (50).
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		o.historyLimit = n
	}
}

// WithEventBuffer sets the buffer size of each Watch channel.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithTemplates registers extra page templates.
func WithTemplates(templates ...document.Template) Option {
	return func(o *options) {
		o.templates = append(o.templates, templates...)
	}
}

// WithRemote injects the backend pending operations are pushed to.
// It takes precedence over WithRemoteURL.
func WithRemote(r core.Remote) Option {
	return func(o *options) {
		o.remote = r
	}
}

// WithRemoteURL pushes pending operations to a WebSocket endpoint
// (ws:// or wss://).
func WithRemoteURL(url string) Option {
	return func(o *options) {
		o.remoteURL = url
	}
}

// WithConnectivity injects the online/offline signal.
// It takes precedence over WithOfflineMarker and WithOnline.
func WithConnectivity(signal core.Connectivity) Option {
	return func(o *options) {
		o.signal = signal
	}
}

// WithOfflineMarker derives connectivity from a marker file: while the file
// exists the app is offline.
func WithOfflineMarker(path string) Option {
	return func(o *options) {
		o.offlineMarker = path
	}
}

// WithOnline sets the initial state of the default manual signal.
func WithOnline(online bool) Option {
	return func(o *options) {
		o.online = online
	}
}

// WithInitRetry controls how often the primary store is retried before the
// app degrades to the fallback cache.
func WithInitRetry(attempts int, backoff time.Duration) Option {
	return func(o *options) {
		if attempts > 0 {
			o.initAttempts = attempts
		}
		if backoff > 0 {
			o.initBackoff = backoff
		}
	}
}

// WithMemory keeps every store in memory. Nothing touches the disk.
func WithMemory(enabled bool) Option {
	return func(o *options) {
		o.memory = enabled
	}
}

// WithDevSafety controls the sandbox applied under `go run` and `go test`.
// By default (true) the data directory is re-rooted into the temp dir.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithClock overrides the time source of the document service.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithIDGenerator overrides how entity IDs are minted.
func WithIDGenerator(gen func() string) Option {
	return func(o *options) {
		o.newID = gen
	}
}

func (o *options) documentOptions(store document.Store) []document.Option {
	opts := []document.Option{
		document.WithLogger(o.logger),
		document.WithStore(store),
		document.WithHistoryLimit(o.historyLimit),
		document.WithEventBuffer(o.eventBuffer),
		document.WithTemplates(o.templates...),
	}
	if o.clock != nil {
		opts = append(opts, document.WithClock(o.clock))
	}
	if o.newID != nil {
		opts = append(opts, document.WithIDGenerator(o.newID))
	}
	return opts
}
