package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"

	"github.com/aretw0/quire/pkg/adapters/connectivity"
	quirelifecycle "github.com/aretw0/quire/pkg/adapters/lifecycle"
	"github.com/aretw0/quire/pkg/adapters/fs"
	"github.com/aretw0/quire/pkg/adapters/remote"
	"github.com/aretw0/quire/pkg/adapters/sqlite"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/document"
	"github.com/aretw0/quire/pkg/offline"
	"github.com/aretw0/quire/pkg/syncer"
)

const (
	// DatabaseName is the SQLite file inside the data directory.
	DatabaseName = "quire.db"
	// CacheDirName holds the fallback cache files.
	CacheDirName = "cache"
)

// App is the composition root: the document service on top of the offline
// store, plus the coordinator that drains the queue on reconnect.
type App struct {
	DataDir     string
	Documents   *document.Service
	Store       *offline.Store
	Coordinator *syncer.Coordinator
	Repository  *sqlite.Repository
	Cache       *fs.FlatCache

	signal core.Connectivity
	manual *connectivity.Manual
	marker *connectivity.MarkerFile
	remote core.Remote
	logger *slog.Logger
}

// New wires every component for the data directory at dir and loads the
// persisted workspaces.
//
//	app, err := platform.New(ctx, "./.quire", platform.WithRemoteURL("ws://localhost:8765/sync"))
func New(ctx context.Context, dir string, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	app := &App{logger: o.logger}

	dbPath, cacheDir := sqlite.MemoryPath, ""
	if !o.memory {
		app.DataDir = ResolveDataDir(dir, o.devSafety && IsDevRun())
		if app.DataDir != dir && dir != "" {
			o.logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", dir, "resolved_path", app.DataDir)
		}
		if err := os.MkdirAll(app.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		dbPath = filepath.Join(app.DataDir, DatabaseName)
		cacheDir = filepath.Join(app.DataDir, CacheDirName)
	}

	app.Repository = sqlite.NewRepository(sqlite.Config{Path: dbPath, Logger: o.logger})
	app.Cache = fs.NewFlatCache(cacheDir, "quire")
	app.remote = o.remoteFor()
	app.signal = app.connectivityFor(o)

	storeOpts := []offline.Option{
		offline.WithLogger(o.logger),
		offline.WithOnline(app.signal.Online()),
	}
	if o.initAttempts > 0 || o.initBackoff >= 0 {
		storeOpts = append(storeOpts, offline.WithInitRetry(o.initAttempts, o.initBackoff))
	}
	app.Store = offline.New(app.Repository, app.Cache, app.remote, storeOpts...)
	if err := app.Store.Init(ctx); err != nil {
		return nil, err
	}

	app.Documents = document.New(o.documentOptions(app.Store)...)
	if err := app.Documents.Bootstrap(ctx); err != nil {
		_ = app.Store.Close()
		return nil, fmt.Errorf("failed to load workspaces: %w", err)
	}

	app.Coordinator = syncer.New(app.Store, app.signal, o.logger)
	return app, nil
}

func (o *options) remoteFor() core.Remote {
	switch {
	case o.remote != nil:
		return o.remote
	case o.remoteURL != "":
		return remote.NewWebSocket(o.remoteURL, o.logger)
	default:
		return remote.Nop{Logger: o.logger}
	}
}

func (a *App) connectivityFor(o *options) core.Connectivity {
	switch {
	case o.signal != nil:
		return o.signal
	case o.offlineMarker != "":
		a.marker = connectivity.NewMarkerFile(o.offlineMarker, o.logger)
		return a.marker
	default:
		a.manual = connectivity.NewManual(o.online, o.logger)
		return a.manual
	}
}

// Run watches connectivity and drains the queue on every reconnect until
// ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a.marker != nil {
		if err := a.marker.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := a.marker.Stop(context.Background()); err != nil {
				a.logger.Debug("marker watcher stopped", "error", err)
			}
		}()
	}
	return a.Coordinator.Run(ctx)
}

// Start runs Run in the background. Failures are logged.
func (a *App) Start(ctx context.Context) {
	lifecycle.Go(ctx, a.Run, lifecycle.WithErrorHandler(func(err error) {
		a.logger.Error("sync coordinator failed", "error", err)
	}))
}

// SetOnline flips the manual signal when one is in use and applies the
// transition to the store right away.
func (a *App) SetOnline(ctx context.Context, online bool) error {
	if a.manual != nil {
		a.manual.Set(online)
	}
	return a.Store.SetOnline(ctx, online)
}

// Sync drains the pending queue now.
func (a *App) Sync(ctx context.Context) error {
	return a.Coordinator.ForceSync(ctx)
}

// Events exposes document changes as a lifecycle.Source. The source stops
// when ctx is done.
func (a *App) Events(ctx context.Context) lifecycle.Source {
	return quirelifecycle.NewSource(a.Documents.Watch(ctx))
}

// Signal returns the connectivity source in use.
func (a *App) Signal() core.Connectivity {
	return a.signal
}

// Close flushes pending writes and releases every resource.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Documents.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush: %w", err))
	}
	if a.manual != nil {
		a.manual.Close()
	}
	if c, ok := a.remote.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("remote: %w", err))
		}
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	return errors.Join(errs...)
}

// Status is the aggregated health report printed by `quire status`.
type Status struct {
	DataDir    string           `json:"data_dir"`
	Sync       syncer.Status    `json:"sync"`
	Components []ComponentState `json:"components"`
}

// ComponentState is the introspection snapshot of one component.
type ComponentState struct {
	Type  string `json:"type"`
	State any    `json:"state"`
}

// Status reports sync health and the state of every component.
func (a *App) Status(ctx context.Context) (Status, error) {
	st := Status{DataDir: a.DataDir}
	syncStatus, err := a.Coordinator.Status(ctx)
	if err != nil {
		return st, err
	}
	st.Sync = syncStatus

	components := []introspection.Component{a.Documents, a.Store, a.Coordinator}
	for _, c := range components {
		cs := ComponentState{Type: c.ComponentType()}
		if in, ok := c.(introspection.Introspectable); ok {
			cs.State = in.State()
		}
		st.Components = append(st.Components, cs)
	}
	if a.marker != nil {
		st.Components = append(st.Components, ComponentState{Type: "connectivity-marker", State: a.marker.State()})
	}
	return st, nil
}
