// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TypedCache wraps a Cacher with JSON encoding for one value type.
// Both users (the article page cache and the quiz leaderboard cache)
// rely on TTL expiry rather than invalidation, so there is no typed
// delete.
type TypedCache[T any] struct {
	backend Cacher
	ttl     time.Duration
}

// NewTypedCache creates a typed wrapper storing values for ttl.
func NewTypedCache[T any](backend Cacher, ttl time.Duration) *TypedCache[T] {
	return &TypedCache[T]{backend: backend, ttl: ttl}
}

// Get returns the decoded value for key and true, or nil and false on
// a miss. An undecodable payload counts as a miss.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	raw, err := c.backend.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// Set encodes and stores value under key with the wrapper's TTL.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value *T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding cache value for %q: %w", key, err)
	}
	return c.backend.Set(ctx, key, raw, c.ttl)
}

// GetOrSet returns the cached value for key, or runs load and stores
// the result. A failed store does not fail the call; the fresh value
// is returned and the next read recomputes.
func (c *TypedCache[T]) GetOrSet(ctx context.Context, key string, load func() (*T, error)) (*T, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	_ = c.Set(ctx, key, v)
	return v, nil
}
