package quire

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/quire/internal/platform"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/document"
)

// --- Types ---

// App is the wired engine: document service, offline store and sync
// coordinator.
type App = platform.App

// Config mirrors the quire.yaml file.
type Config = platform.Config

// Template is a named page skeleton.
type Template = document.Template

// --- Configuration ---

// Option defines a functional option for configuring Quire.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithHistoryLimit bounds the undo stack. Zero means default (50).
func WithHistoryLimit(n int) Option {
	return platform.WithHistoryLimit(n)
}

// WithEventBuffer sets the buffer size of each Watch channel.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithTemplates registers extra page templates.
func WithTemplates(templates ...Template) Option {
	return platform.WithTemplates(templates...)
}

// WithRemote injects the backend pending operations are pushed to.
func WithRemote(r core.Remote) Option {
	return platform.WithRemote(r)
}

// WithRemoteURL pushes pending operations to a WebSocket endpoint.
func WithRemoteURL(url string) Option {
	return platform.WithRemoteURL(url)
}

// WithConnectivity injects the online/offline signal.
func WithConnectivity(signal core.Connectivity) Option {
	return platform.WithConnectivity(signal)
}

// WithOfflineMarker treats the app as offline while path exists.
func WithOfflineMarker(path string) Option {
	return platform.WithOfflineMarker(path)
}

// WithOnline sets the initial connectivity state.
func WithOnline(online bool) Option {
	return platform.WithOnline(online)
}

// WithInitRetry controls how often the primary store is retried before
// degrading to the fallback cache.
func WithInitRetry(attempts int, backoff time.Duration) Option {
	return platform.WithInitRetry(attempts, backoff)
}

// WithMemory keeps every store in memory.
func WithMemory(enabled bool) Option {
	return platform.WithMemory(enabled)
}

// WithDevSafety controls the temp-dir sandbox applied under `go run`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New opens the data directory at dir, falling back to an in-memory cache
// if the database cannot be opened, and loads the persisted workspaces.
func New(ctx context.Context, dir string, opts ...Option) (*App, error) {
	return platform.New(ctx, dir, opts...)
}

// LoadConfig reads quire.yaml. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// --- Safety & Utils ---

// ResolveDataDir determines the actual data directory based on safety rules.
func ResolveDataDir(userPath string, sandbox bool) string {
	return platform.ResolveDataDir(userPath, sandbox)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot recursively looks upwards for a .quire directory or quire.yaml.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
