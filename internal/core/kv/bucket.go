package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Bucket stores values of one type under a shared key prefix, each written
// with the same time to live.
type Bucket[T any] struct {
	store  Store
	prefix string
	ttl    time.Duration
}

// NewBucket returns a bucket whose keys are stored as "name:key".
func NewBucket[T any](store Store, name string, ttl time.Duration) *Bucket[T] {
	return &Bucket[T]{store: store, prefix: name + ":", ttl: ttl}
}

// Load decodes the value stored under key. ok is false when the key is
// missing or expired.
func (b *Bucket[T]) Load(ctx context.Context, key string) (v T, ok bool, err error) {
	entry, err := b.store.Get(ctx, b.prefix+key)
	if errors.Is(err, ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}

	if err := json.Unmarshal(entry.Value, &v); err != nil {
		return v, false, fmt.Errorf("decode %q: %w", entry.Key, err)
	}
	return v, true, nil
}

// Save encodes v and stores it under key.
func (b *Bucket[T]) Save(ctx context.Context, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", b.prefix+key, err)
	}
	return b.store.Put(ctx, b.prefix+key, data, b.ttl)
}

// Keys lists the live keys in the bucket, without the bucket prefix.
func (b *Bucket[T]) Keys(ctx context.Context) ([]string, error) {
	entries, err := b.store.Scan(ctx, b.prefix)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, strings.TrimPrefix(e.Key, b.prefix))
	}
	return keys, nil
}

// Purge deletes every key in the bucket, expired or not.
func (b *Bucket[T]) Purge(ctx context.Context) (int, error) {
	return b.store.DeletePrefix(ctx, b.prefix)
}
