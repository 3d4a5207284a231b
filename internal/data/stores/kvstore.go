package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/taproom/internal/core/kv"
	"github.com/colonyops/taproom/internal/data/db"
)

// KVStore is the SQLite implementation of kv.Store. Timestamps are stored as
// unix nanoseconds.
type KVStore struct {
	db  *db.DB
	now func() time.Time
}

var _ kv.Store = (*KVStore)(nil)

// NewKVStore returns a store backed by database.
func NewKVStore(database *db.DB) *KVStore {
	return &KVStore{db: database, now: time.Now}
}

func (s *KVStore) Get(ctx context.Context, key string) (kv.Entry, error) {
	row, err := s.db.Queries().KVGet(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return kv.Entry{}, fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	if err != nil {
		return kv.Entry{}, fmt.Errorf("kv get %q: %w", key, err)
	}

	entry := toEntry(row)
	if entry.Expired(s.now()) {
		return kv.Entry{}, fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	return entry, nil
}

func (s *KVStore) Put(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error {
	now := s.now()
	params := db.KVPutParams{Key: key, Value: value, Now: now.UnixNano()}
	if ttl > 0 {
		params.ExpiresAt = sql.NullInt64{Int64: now.Add(ttl).UnixNano(), Valid: true}
	}

	if err := s.db.Queries().KVPut(ctx, params); err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) Scan(ctx context.Context, prefix string) ([]kv.Entry, error) {
	rows, err := s.db.Queries().KVScan(ctx, prefix, s.now().UnixNano())
	if err != nil {
		return nil, fmt.Errorf("kv scan %q: %w", prefix, err)
	}

	entries := make([]kv.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toEntry(row))
	}
	return entries, nil
}

func (s *KVStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	n, err := s.db.Queries().KVDeletePrefix(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("kv delete prefix %q: %w", prefix, err)
	}
	return int(n), nil
}

func (s *KVStore) SweepExpired(ctx context.Context) (int, error) {
	n, err := s.db.Queries().KVSweepExpired(ctx, s.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("kv sweep: %w", err)
	}
	return int(n), nil
}

func toEntry(row db.KvStore) kv.Entry {
	entry := kv.Entry{
		Key:       row.Key,
		Value:     json.RawMessage(row.Value),
		UpdatedAt: time.Unix(0, row.UpdatedAt),
	}
	if row.ExpiresAt.Valid {
		entry.ExpiresAt = time.Unix(0, row.ExpiresAt.Int64)
	}
	return entry
}
