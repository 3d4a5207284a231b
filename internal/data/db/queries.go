package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const kvGet = `SELECT key, value, expires_at, created_at, updated_at FROM kv_store WHERE key = ?`

func (q *Queries) KVGet(ctx context.Context, key string) (KvStore, error) {
	row := q.db.QueryRowContext(ctx, kvGet, key)
	var i KvStore
	err := row.Scan(&i.Key, &i.Value, &i.ExpiresAt, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const kvPut = `INSERT INTO kv_store (key, value, expires_at, created_at, updated_at)
VALUES (?1, ?2, ?3, ?4, ?4)
ON CONFLICT (key) DO UPDATE SET
    value = excluded.value,
    expires_at = excluded.expires_at,
    updated_at = excluded.updated_at`

type KVPutParams struct {
	Key       string
	Value     []byte
	ExpiresAt sql.NullInt64
	Now       int64
}

func (q *Queries) KVPut(ctx context.Context, arg KVPutParams) error {
	_, err := q.db.ExecContext(ctx, kvPut, arg.Key, arg.Value, arg.ExpiresAt, arg.Now)
	return err
}

const kvScan = `SELECT key, value, expires_at, created_at, updated_at FROM kv_store
WHERE instr(key, ?1) = 1 AND (expires_at IS NULL OR expires_at > ?2)
ORDER BY key`

func (q *Queries) KVScan(ctx context.Context, prefix string, now int64) ([]KvStore, error) {
	rows, err := q.db.QueryContext(ctx, kvScan, prefix, now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []KvStore
	for rows.Next() {
		var i KvStore
		if err := rows.Scan(&i.Key, &i.Value, &i.ExpiresAt, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const kvDeletePrefix = `DELETE FROM kv_store WHERE instr(key, ?) = 1`

func (q *Queries) KVDeletePrefix(ctx context.Context, prefix string) (int64, error) {
	res, err := q.db.ExecContext(ctx, kvDeletePrefix, prefix)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const kvSweepExpired = `DELETE FROM kv_store WHERE expires_at IS NOT NULL AND expires_at <= ?`

func (q *Queries) KVSweepExpired(ctx context.Context, now int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, kvSweepExpired, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const addRemovedItem = `INSERT INTO removed_items (item_id, name, removed_at)
VALUES (?, ?, ?)
ON CONFLICT (item_id) DO NOTHING`

type AddRemovedItemParams struct {
	ItemID    int64
	Name      string
	RemovedAt int64
}

func (q *Queries) AddRemovedItem(ctx context.Context, arg AddRemovedItemParams) error {
	_, err := q.db.ExecContext(ctx, addRemovedItem, arg.ItemID, arg.Name, arg.RemovedAt)
	return err
}

const listRemovedItems = `SELECT item_id, name, removed_at FROM removed_items ORDER BY item_id`

func (q *Queries) ListRemovedItems(ctx context.Context) ([]RemovedItem, error) {
	rows, err := q.db.QueryContext(ctx, listRemovedItems)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []RemovedItem
	for rows.Next() {
		var i RemovedItem
		if err := rows.Scan(&i.ItemID, &i.Name, &i.RemovedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteRemovedItem = `DELETE FROM removed_items WHERE item_id = ?`

func (q *Queries) DeleteRemovedItem(ctx context.Context, itemID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteRemovedItem, itemID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const clearRemovedItems = `DELETE FROM removed_items`

func (q *Queries) ClearRemovedItems(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, clearRemovedItems)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
