package document

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/quire/pkg/core"
)

// changeSet lists the records a mutation touched, in first-touched order.
type changeSet struct {
	workspaces    []string
	pages         []string
	blocks        []string
	deletedPages  []string
	deletedBlocks []string
	seen          map[string]bool
}

func changes() *changeSet {
	return &changeSet{seen: make(map[string]bool)}
}

func (c *changeSet) add(list *[]string, kind, id string) *changeSet {
	key := kind + ":" + id
	if !c.seen[key] {
		c.seen[key] = true
		*list = append(*list, id)
	}
	return c
}

func (c *changeSet) workspace(id string) *changeSet   { return c.add(&c.workspaces, "w", id) }
func (c *changeSet) page(id string) *changeSet        { return c.add(&c.pages, "p", id) }
func (c *changeSet) block(id string) *changeSet       { return c.add(&c.blocks, "b", id) }
func (c *changeSet) deletePage(id string) *changeSet  { return c.add(&c.deletedPages, "dp", id) }
func (c *changeSet) deleteBlock(id string) *changeSet { return c.add(&c.deletedBlocks, "db", id) }

// batch is the materialized form of a changeSet, detached from the live tree.
type batch struct {
	workspaces    []core.WorkspaceRecord
	pages         []core.PageRecord
	blocks        []core.BlockRecord
	deletedPages  []string
	deletedBlocks []string
}

// persistLocked copies the touched records out of the tree and queues them
// on the writer. It never blocks on the store.
func (s *Service) persistLocked(cs *changeSet) {
	if s.store == nil {
		return
	}
	b := s.buildBatchLocked(cs)
	s.writer.submit(func(ctx context.Context) error {
		return writeBatch(ctx, s.store, b)
	})
}

func (s *Service) buildBatchLocked(cs *changeSet) batch {
	var b batch
	for _, id := range cs.workspaces {
		if wi := s.findWorkspace(id); wi >= 0 {
			ws := s.workspaces[wi]
			b.workspaces = append(b.workspaces, core.WorkspaceRecord{
				ID:      ws.ID,
				Name:    ws.Name,
				PageIDs: pageIDs(ws.Pages),
			})
		}
	}
	for _, id := range cs.pages {
		if wi, pi := s.findPage(id); wi >= 0 {
			p := s.workspaces[wi].Pages[pi]
			ids := blockIDs(p.Blocks)
			p.Blocks = nil
			b.pages = append(b.pages, core.PageRecord{
				Page:        p,
				WorkspaceID: s.workspaces[wi].ID,
				BlockIDs:    ids,
			})
		}
	}
	for _, id := range cs.blocks {
		if rec, ok := s.blockRecordLocked(id); ok {
			b.blocks = append(b.blocks, rec)
		}
	}
	b.deletedPages = slices.Clone(cs.deletedPages)
	b.deletedBlocks = slices.Clone(cs.deletedBlocks)
	return b
}

func (s *Service) blockRecordLocked(topID string) (core.BlockRecord, bool) {
	for _, ws := range s.workspaces {
		for _, p := range ws.Pages {
			for _, blk := range p.Blocks {
				if blk.ID == topID {
					return core.BlockRecord{Block: cloneBlock(blk), PageID: p.ID}, true
				}
			}
		}
	}
	return core.BlockRecord{}, false
}

func writeBatch(ctx context.Context, store Persistence, b batch) error {
	var errs []error
	if len(b.workspaces) > 0 {
		if err := store.SaveWorkspaces(ctx, b.workspaces); err != nil {
			errs = append(errs, fmt.Errorf("save workspaces: %w", err))
		}
	}
	if len(b.pages) > 0 {
		if err := store.SavePages(ctx, b.pages); err != nil {
			errs = append(errs, fmt.Errorf("save pages: %w", err))
		}
	}
	if len(b.blocks) > 0 {
		if err := store.SaveBlocks(ctx, b.blocks); err != nil {
			errs = append(errs, fmt.Errorf("save blocks: %w", err))
		}
	}
	if len(b.deletedPages) > 0 {
		if err := store.DeletePages(ctx, b.deletedPages); err != nil {
			errs = append(errs, fmt.Errorf("delete pages: %w", err))
		}
	}
	if len(b.deletedBlocks) > 0 {
		if err := store.DeleteBlocks(ctx, b.deletedBlocks); err != nil {
			errs = append(errs, fmt.Errorf("delete blocks: %w", err))
		}
	}
	return errors.Join(errs...)
}

// load rebuilds the tree from normalized records. Pages and blocks follow the
// order stored on their parent; orphans are appended to their owner.
func load(ctx context.Context, store Loader) ([]core.Workspace, error) {
	wsRecs, err := store.LoadWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	pageRecs, err := store.LoadPages(ctx)
	if err != nil {
		return nil, err
	}
	blockRecs, err := store.LoadBlocks(ctx, "")
	if err != nil {
		return nil, err
	}

	blocksByPage := make(map[string]map[string]core.Block)
	for _, r := range blockRecs {
		if blocksByPage[r.PageID] == nil {
			blocksByPage[r.PageID] = make(map[string]core.Block)
		}
		blocksByPage[r.PageID][r.Block.ID] = r.Block
	}

	pagesByWS := make(map[string]map[string]core.Page)
	for _, r := range pageRecs {
		p := r.Page
		p.Blocks = ordered(r.BlockIDs, blocksByPage[p.ID], func(b core.Block) string { return b.ID })
		for _, b := range p.Blocks {
			if u := latestUpdate(b); u.After(p.UpdatedAt) {
				p.UpdatedAt = u
			}
		}
		if pagesByWS[r.WorkspaceID] == nil {
			pagesByWS[r.WorkspaceID] = make(map[string]core.Page)
		}
		pagesByWS[r.WorkspaceID][p.ID] = p
	}

	workspaces := make([]core.Workspace, 0, len(wsRecs))
	for _, r := range wsRecs {
		workspaces = append(workspaces, core.Workspace{
			ID:    r.ID,
			Name:  r.Name,
			Pages: ordered(r.PageIDs, pagesByWS[r.ID], func(p core.Page) string { return p.ID }),
		})
	}
	return workspaces, nil
}

// ordered returns the items named by ids in that order, followed by any
// remaining items sorted by ID.
func ordered[T any](ids []string, items map[string]T, key func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, id := range ids {
		if item, ok := items[id]; ok {
			out = append(out, item)
			delete(items, id)
		}
	}
	rest := make([]T, 0, len(items))
	for _, item := range items {
		rest = append(rest, item)
	}
	slices.SortFunc(rest, func(a, b T) int { return cmp.Compare(key(a), key(b)) })
	return append(out, rest...)
}

func latestUpdate(b core.Block) time.Time {
	t := b.UpdatedAt
	for _, c := range b.Children {
		if u := latestUpdate(c); u.After(t) {
			t = u
		}
	}
	return t
}

// writer applies persistence jobs one at a time, in submission order, on a
// single goroutine.
type writer struct {
	mu      sync.Mutex
	jobs    []func(context.Context) error
	wake    chan struct{}
	pending int
	idle    chan struct{}
	cancel  context.CancelFunc
	closed  bool
	logger  *slog.Logger
}

func newWriter(logger *slog.Logger) *writer {
	idle := make(chan struct{})
	close(idle)
	return &writer{
		wake:   make(chan struct{}, 1),
		idle:   idle,
		logger: logger,
	}
}

func (w *writer) submit(job func(context.Context) error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn("persistence write after close ignored")
		return
	}
	if w.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		w.cancel = cancel
		lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
			w.logger.Error("persistence writer panic", "error", err)
		}))
	}
	w.jobs = append(w.jobs, job)
	w.pending++
	if w.pending == 1 {
		w.idle = make(chan struct{})
	}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *writer) run(ctx context.Context) error {
	for {
		w.mu.Lock()
		if len(w.jobs) == 0 {
			w.mu.Unlock()
			select {
			case <-ctx.Done():
				w.drop()
				return nil
			case <-w.wake:
				continue
			}
		}
		if ctx.Err() != nil {
			w.mu.Unlock()
			w.drop()
			return nil
		}
		job := w.jobs[0]
		w.jobs = w.jobs[1:]
		w.mu.Unlock()

		if err := job(ctx); err != nil {
			w.logger.Warn("persistence write failed", "error", err)
		}
		w.done(1)
	}
}

func (w *writer) done(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending -= n
	if w.pending == 0 {
		close(w.idle)
	}
}

func (w *writer) drop() {
	w.mu.Lock()
	n := len(w.jobs)
	w.jobs = nil
	w.mu.Unlock()
	if n > 0 {
		w.logger.Warn("dropped pending persistence writes", "count", n)
		w.done(n)
	}
}

func (w *writer) wait(ctx context.Context) error {
	w.mu.Lock()
	idle := w.idle
	w.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *writer) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
}
