package connectivity

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"
)

// MarkerFile reports offline while a marker file exists. Creating the file
// (e.g. `touch ~/.quire/offline`) takes the app offline, removing it brings
// it back online. It runs as a lifecycle worker watching the marker's
// directory with fsnotify.
type MarkerFile struct {
	*worker.BaseWorker
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	online  bool
	changes chan bool
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
}

// NewMarkerFile creates a worker watching path.
func NewMarkerFile(path string, logger *slog.Logger) *MarkerFile {
	if logger == nil {
		logger = slog.Default()
	}
	path = filepath.Clean(path)
	return &MarkerFile{
		BaseWorker: worker.NewBaseWorker("connectivity-marker"),
		path:       path,
		logger:     logger,
		online:     !exists(path),
		changes:    make(chan bool, 16),
	}
}

// Path returns the watched marker path.
func (m *MarkerFile) Path() string { return m.path }

// Online reports the last observed state.
func (m *MarkerFile) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Changes emits every transition. It is closed when the worker stops.
func (m *MarkerFile) Changes() <-chan bool {
	return m.changes
}

func (m *MarkerFile) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := m.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("marker watcher already started (status: %s)", status)
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create marker dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	m.watcher = watcher

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	// The marker may have changed between construction and now.
	m.refresh(runCtx)

	m.SetStatus(worker.StatusRunning)
	return m.StartFunc(runCtx, m.run)
}

func (m *MarkerFile) Stop(ctx context.Context) error {
	if m.cancel != nil {
		m.StopRequested = true
		m.cancel()
	}
	return m.BaseWorker.Stop(ctx)
}

func (m *MarkerFile) State() worker.State {
	return m.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"path":              m.path,
			"online":            fmt.Sprint(m.Online()),
		}
	})
}

func (m *MarkerFile) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("marker watcher panic: %v", recovered)
			if m.logger.Enabled(ctx, slog.LevelDebug) {
				m.logger.Error("marker watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				m.logger.Error("marker watcher panic", "error", err)
			}
		}
	}()
	defer close(m.changes)
	defer m.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-m.watcher.Events:
			if !ok {
				if m.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != m.path {
				continue
			}
			m.logger.Debug("marker event", "op", event.Op.String())
			m.refresh(ctx)

		case wErr, ok := <-m.watcher.Errors:
			if !ok {
				if m.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			m.logger.Error("fsnotify error", "error", wErr)
		}
	}
}

// refresh re-reads the marker and emits a transition when the state changed.
func (m *MarkerFile) refresh(ctx context.Context) {
	online := !exists(m.path)

	m.mu.Lock()
	changed := m.online != online
	m.online = online
	m.mu.Unlock()

	if !changed {
		return
	}
	m.logger.Info("connectivity marker changed", "online", online)
	select {
	case m.changes <- online:
	case <-ctx.Done():
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
