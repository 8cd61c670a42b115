// Package sqlite is the primary durable store: normalized workspace, page and
// block records encoded as CBOR blobs in an embedded SQLite database, plus the
// pending sync queue.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/aretw0/quire/pkg/core"
)

// Repository implements core.Repository and core.SyncQueue on SQLite.
type Repository struct {
	Path   string
	db     *sql.DB
	mu     sync.RWMutex
	config Config
	enc    cbor.EncMode
	dec    cbor.DecMode

	writes    int64
	lastError string
}

// Config holds the configuration for the SQLite repository.
type Config struct {
	Path        string        // Database file, or MemoryPath.
	BusyTimeout time.Duration // PRAGMA busy_timeout. Default 10s.
	Logger      *slog.Logger
}

// NewRepository creates a repository. Call Initialize before use.
func NewRepository(config Config) *Repository {
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	enc, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err) // static options
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	return &Repository{
		Path:   config.Path,
		config: config,
		enc:    enc,
		dec:    dec,
	}
}

// Initialize opens the database and applies the schema. It is idempotent.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return nil
	}
	if r.Path == "" {
		return fmt.Errorf("sqlite: empty database path")
	}
	db, err := openDB(r.Path, r.config.BusyTimeout)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	r.db = db
	r.config.Logger.Debug("sqlite store ready", "path", r.Path)
	return nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Repository) handle() (*sql.DB, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.db == nil {
		return nil, core.ErrClosed
	}
	return r.db, nil
}

// table describes one record collection.
type table struct {
	name     string
	ownerCol string // "" when the collection has no owner column
}

var (
	workspacesTable = table{name: "workspaces"}
	pagesTable      = table{name: "pages", ownerCol: "workspace_id"}
	blocksTable     = table{name: "blocks", ownerCol: "page_id"}
)

func tableFor(c core.Collection) (table, error) {
	switch c {
	case core.CollectionWorkspaces:
		return workspacesTable, nil
	case core.CollectionPages:
		return pagesTable, nil
	case core.CollectionBlocks:
		return blocksTable, nil
	}
	return table{}, fmt.Errorf("unknown collection %q", c)
}

// row is one record ready to upsert.
type row struct {
	id    string
	owner string
	data  []byte
	meta  core.Meta
}

func (r *Repository) upsert(ctx context.Context, t table, rows []row) error {
	if len(rows) == 0 {
		return nil
	}
	db, err := r.handle()
	if err != nil {
		return err
	}

	cols := "id, data, is_synced, last_synced, version, updated_at"
	vals := "?, ?, ?, ?, 1, ?"
	if t.ownerCol != "" {
		cols += ", " + t.ownerCol
		vals += ", ?"
	}
	set := "data = excluded.data, is_synced = excluded.is_synced, " +
		"last_synced = COALESCE(excluded.last_synced, " + t.name + ".last_synced), " +
		"version = " + t.name + ".version + 1, updated_at = excluded.updated_at"
	if t.ownerCol != "" {
		set += ", " + t.ownerCol + " = excluded." + t.ownerCol
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s", t.name, cols, vals, set)

	now := time.Now().UTC().Format(time.RFC3339Nano)
	err = runTx(ctx, db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, rw := range rows {
			args := []any{rw.id, rw.data, rw.meta.IsSynced, formatTime(rw.meta.LastSynced), now}
			if t.ownerCol != "" {
				args = append(args, rw.owner)
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("upsert %s %s: %w", t.name, rw.id, err)
			}
		}
		return nil
	})
	r.record(len(rows), err)
	return err
}

// SaveWorkspaces upserts workspace records.
func (r *Repository) SaveWorkspaces(ctx context.Context, items []core.WorkspaceRecord) error {
	rows := make([]row, 0, len(items))
	for _, it := range items {
		data, err := r.enc.Marshal(it)
		if err != nil {
			return fmt.Errorf("encode workspace %s: %w", it.ID, err)
		}
		rows = append(rows, row{id: it.ID, data: data, meta: it.Meta})
	}
	return r.upsert(ctx, workspacesTable, rows)
}

// SavePages upserts page records.
func (r *Repository) SavePages(ctx context.Context, items []core.PageRecord) error {
	rows := make([]row, 0, len(items))
	for _, it := range items {
		data, err := r.enc.Marshal(it)
		if err != nil {
			return fmt.Errorf("encode page %s: %w", it.Page.ID, err)
		}
		rows = append(rows, row{id: it.Page.ID, owner: it.WorkspaceID, data: data, meta: it.Meta})
	}
	return r.upsert(ctx, pagesTable, rows)
}

// SaveBlocks upserts block records.
func (r *Repository) SaveBlocks(ctx context.Context, items []core.BlockRecord) error {
	rows := make([]row, 0, len(items))
	for _, it := range items {
		data, err := r.enc.Marshal(it)
		if err != nil {
			return fmt.Errorf("encode block %s: %w", it.Block.ID, err)
		}
		rows = append(rows, row{id: it.Block.ID, owner: it.PageID, data: data, meta: it.Meta})
	}
	return r.upsert(ctx, blocksTable, rows)
}

// scan runs query and hands every decoded row to fn.
func (r *Repository) scan(ctx context.Context, query string, args []any, fn func(data []byte, meta core.Meta) error) error {
	db, err := r.handle()
	if err != nil {
		return err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			data       []byte
			synced     bool
			lastSynced sql.NullString
			version    int64
		)
		if err := rows.Scan(&data, &synced, &lastSynced, &version); err != nil {
			return err
		}
		meta := core.Meta{IsSynced: synced, Version: version}
		if lastSynced.Valid {
			if t, err := time.Parse(time.RFC3339Nano, lastSynced.String); err == nil {
				t = t.UTC()
				meta.LastSynced = &t
			}
		}
		if err := fn(data, meta); err != nil {
			return err
		}
	}
	return rows.Err()
}

const selectCols = "data, is_synced, last_synced, version"

// LoadWorkspaces returns every workspace record.
func (r *Repository) LoadWorkspaces(ctx context.Context) ([]core.WorkspaceRecord, error) {
	var out []core.WorkspaceRecord
	err := r.scan(ctx, "SELECT "+selectCols+" FROM workspaces ORDER BY rowid", nil, func(data []byte, meta core.Meta) error {
		var rec core.WorkspaceRecord
		if err := r.dec.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("decode workspace: %w", err)
		}
		rec.Meta = meta
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load workspaces: %w", err)
	}
	return out, nil
}

// LoadPages returns every page record.
func (r *Repository) LoadPages(ctx context.Context) ([]core.PageRecord, error) {
	var out []core.PageRecord
	err := r.scan(ctx, "SELECT "+selectCols+" FROM pages ORDER BY rowid", nil, func(data []byte, meta core.Meta) error {
		var rec core.PageRecord
		if err := r.dec.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("decode page: %w", err)
		}
		rec.Meta = meta
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}
	return out, nil
}

// LoadBlocks returns the blocks of pageID, or every block when pageID is empty.
func (r *Repository) LoadBlocks(ctx context.Context, pageID string) ([]core.BlockRecord, error) {
	query := "SELECT " + selectCols + " FROM blocks"
	var args []any
	if pageID != "" {
		query += " WHERE page_id = ?"
		args = append(args, pageID)
	}
	query += " ORDER BY rowid"

	var out []core.BlockRecord
	err := r.scan(ctx, query, args, func(data []byte, meta core.Meta) error {
		var rec core.BlockRecord
		if err := r.dec.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("decode block: %w", err)
		}
		rec.Meta = meta
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	return out, nil
}

// Delete removes records by ID. Missing IDs are ignored.
func (r *Repository) Delete(ctx context.Context, c core.Collection, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	t, err := tableFor(c)
	if err != nil {
		return err
	}
	db, err := r.handle()
	if err != nil {
		return err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	err = runTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id IN (%s)", t.name, placeholders), args...)
		return err
	})
	r.record(len(ids), err)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.name, err)
	}
	return nil
}

// MarkSynced flags every record as synced at the given instant.
func (r *Repository) MarkSynced(ctx context.Context, at time.Time) error {
	db, err := r.handle()
	if err != nil {
		return err
	}
	stamp := at.UTC().Format(time.RFC3339Nano)
	return runTx(ctx, db, func(tx *sql.Tx) error {
		for _, t := range []table{workspacesTable, pagesTable, blocksTable} {
			if _, err := tx.ExecContext(ctx, "UPDATE "+t.name+" SET is_synced = 1, last_synced = ?", stamp); err != nil {
				return fmt.Errorf("mark %s synced: %w", t.name, err)
			}
		}
		return nil
	})
}

// Count returns the number of records in a collection.
func (r *Repository) Count(ctx context.Context, c core.Collection) (int, error) {
	t, err := tableFor(c)
	if err != nil {
		return 0, err
	}
	db, err := r.handle()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.name).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repository) record(n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.lastError = err.Error()
		return
	}
	r.writes += int64(n)
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

var (
	_ core.Repository = (*Repository)(nil)
	_ core.SyncQueue  = (*Repository)(nil)
)
