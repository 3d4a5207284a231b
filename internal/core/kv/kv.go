// Package kv defines the expiring key-value store fetched pages are cached in.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get for a key that is missing or expired.
var ErrNotFound = errors.New("kv: not found")

// Entry is a stored value and its expiry.
type Entry struct {
	Key       string
	Value     json.RawMessage
	ExpiresAt time.Time // zero when the entry never expires
	UpdatedAt time.Time
}

// Expired reports whether the entry is past its expiry at now.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Store holds JSON values under string keys. Expired entries are invisible to
// Get and Scan and are reclaimed by SweepExpired.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	// Put writes value under key. A ttl of zero or less never expires.
	Put(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error
	// Scan returns the live entries whose key starts with prefix, ordered by key.
	Scan(ctx context.Context, prefix string) ([]Entry, error)
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	SweepExpired(ctx context.Context) (int, error)
}
