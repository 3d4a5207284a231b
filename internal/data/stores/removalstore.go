package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/taproom/internal/core/window"
	"github.com/colonyops/taproom/internal/data/db"
)

const busyRetries = 3

// RemovedItem is an item the user removed from browsing.
type RemovedItem struct {
	ID        window.ID `json:"id"`
	Name      string    `json:"name"`
	RemovedAt time.Time `json:"removed_at"`
}

// RemovalStore persists removed item identifiers so that a removal survives
// restarts.
type RemovalStore struct {
	db *db.DB
}

// NewRemovalStore creates a new SQLite-backed removal store.
func NewRemovalStore(db *db.DB) *RemovalStore {
	return &RemovalStore{db: db}
}

// Add records items as removed. Items that are already recorded keep their
// original timestamp.
func (s *RemovalStore) Add(ctx context.Context, items ...RemovedItem) error {
	if len(items) == 0 {
		return nil
	}

	var err error
	for attempt := 0; attempt < busyRetries; attempt++ {
		err = s.db.WithTx(ctx, func(q *db.Queries) error {
			for _, item := range items {
				removedAt := item.RemovedAt
				if removedAt.IsZero() {
					removedAt = time.Now()
				}
				if err := q.AddRemovedItem(ctx, db.AddRemovedItemParams{
					ItemID:    int64(item.ID),
					Name:      item.Name,
					RemovedAt: removedAt.UnixNano(),
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if !IsBusyError(err) {
			break
		}
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
	if err != nil {
		return fmt.Errorf("failed to record removed items: %w", err)
	}
	return nil
}

// List returns every removed item ordered by identifier.
func (s *RemovalStore) List(ctx context.Context) ([]RemovedItem, error) {
	rows, err := s.db.Queries().ListRemovedItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list removed items: %w", err)
	}

	items := make([]RemovedItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, RemovedItem{
			ID:        window.ID(row.ItemID),
			Name:      row.Name,
			RemovedAt: time.Unix(0, row.RemovedAt),
		})
	}
	return items, nil
}

// IDs returns the identifiers of every removed item.
func (s *RemovalStore) IDs(ctx context.Context) ([]window.ID, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]window.ID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids, nil
}

// Restore forgets a removal. It reports whether the item had been removed.
func (s *RemovalStore) Restore(ctx context.Context, id window.ID) (bool, error) {
	n, err := s.db.Queries().DeleteRemovedItem(ctx, int64(id))
	if err != nil {
		return false, fmt.Errorf("failed to restore item %d: %w", id, err)
	}
	return n > 0, nil
}

// Clear forgets every removal and reports how many were forgotten.
func (s *RemovalStore) Clear(ctx context.Context) (int, error) {
	n, err := s.db.Queries().ClearRemovedItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear removed items: %w", err)
	}
	return int(n), nil
}
