// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the caching infrastructure: a byte-oriented
// Cacher interface with in-memory and Redis implementations, plus a
// generic typed wrapper.
package cache

import (
	"context"
	"time"
)

// Cacher is the interface cache backends implement. Values are []byte so
// the same interface serves both the in-memory and the Redis backend.
// Implementations must be safe for concurrent use.
type Cacher interface {
	// Get returns the value for key, or ErrCacheMiss when the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero TTL uses the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Has reports whether key exists and is not expired.
	Has(ctx context.Context, key string) (bool, error)

	// Close releases backend resources.
	Close() error
}

// Error is the error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

// ErrCacheMiss indicates the key was not found or has expired.
const ErrCacheMiss Error = "cache miss"
