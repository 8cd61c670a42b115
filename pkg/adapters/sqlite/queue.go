package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/quire/pkg/core"
)

// Enqueue appends operations to the sync queue. IDs are assigned by the store.
func (r *Repository) Enqueue(ctx context.Context, ops []core.SyncOperation) error {
	if len(ops) == 0 {
		return nil
	}
	db, err := r.handle()
	if err != nil {
		return err
	}
	err = runTx(ctx, db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO sync_queue (type, action, entity_id, data, timestamp, retry_count) VALUES (?, ?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, op := range ops {
			ts := op.Timestamp
			if ts.IsZero() {
				ts = time.Now().UTC()
			}
			if _, err := stmt.ExecContext(ctx, string(op.Type), string(op.Action), op.EntityID,
				op.Data, ts.UTC().Format(time.RFC3339Nano), op.RetryCount); err != nil {
				return fmt.Errorf("enqueue %s %s: %w", op.Type, op.EntityID, err)
			}
		}
		return nil
	})
	r.record(len(ops), err)
	return err
}

// Pending returns every queued operation in insertion order.
func (r *Repository) Pending(ctx context.Context) ([]core.SyncOperation, error) {
	db, err := r.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		"SELECT id, type, action, entity_id, data, timestamp, retry_count FROM sync_queue ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query sync queue: %w", err)
	}
	defer rows.Close()

	var out []core.SyncOperation
	for rows.Next() {
		var (
			op     core.SyncOperation
			typ    string
			action string
			ts     string
		)
		if err := rows.Scan(&op.ID, &typ, &action, &op.EntityID, &op.Data, &ts, &op.RetryCount); err != nil {
			return nil, fmt.Errorf("scan sync queue: %w", err)
		}
		op.Type = core.EntityType(typ)
		op.Action = core.SyncAction(action)
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			op.Timestamp = t.UTC()
		}
		out = append(out, op)
	}
	return out, rows.Err()
}

// IncrementRetry bumps RetryCount of the given operations.
func (r *Repository) IncrementRetry(ctx context.Context, ids []int64) error {
	return r.execIDs(ctx, "UPDATE sync_queue SET retry_count = retry_count + 1 WHERE id IN (%s)", ids)
}

// Remove deletes the given operations from the sync queue.
func (r *Repository) Remove(ctx context.Context, ids []int64) error {
	return r.execIDs(ctx, "DELETE FROM sync_queue WHERE id IN (%s)", ids)
}

// maxQueryIDs keeps IN lists well under SQLite's bound variable limit.
const maxQueryIDs = 500

// execIDs runs query once per chunk of ids inside a single transaction.
// query holds one %s verb for the placeholder list.
func (r *Repository) execIDs(ctx context.Context, query string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	db, err := r.handle()
	if err != nil {
		return err
	}
	return runTx(ctx, db, func(tx *sql.Tx) error {
		for chunk := range slices.Chunk(ids, maxQueryIDs) {
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
			args := make([]any, len(chunk))
			for i, id := range chunk {
				args[i] = id
			}
			if _, err := tx.ExecContext(ctx, fmt.Sprintf(query, placeholders), args...); err != nil {
				return err
			}
		}
		return nil
	})
}
