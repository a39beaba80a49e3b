// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"time"
)

// Options selects and configures a cache backend.
type Options struct {
	// RedisURL switches to the Redis backend when non-empty,
	// e.g. redis://localhost:6379/0.
	RedisURL string

	// Prefix is prepended to every key on the Redis backend.
	Prefix string

	// DefaultTTL applies when a Set passes a zero TTL.
	DefaultTTL time.Duration

	// MaxSize caps the in-memory backend's entry count (0 = unlimited).
	MaxSize int

	// CleanupInterval controls expired-entry sweeps on the in-memory
	// backend (0 = no sweeps).
	CleanupInterval time.Duration
}

// DefaultOptions returns the backend defaults used when a field is zero.
func DefaultOptions() Options {
	return Options{
		Prefix:          "pressroom:",
		DefaultTTL:      time.Hour,
		MaxSize:         10000,
		CleanupInterval: time.Minute,
	}
}

// New creates a cache backend from opts: Redis when RedisURL is set,
// in-memory otherwise.
func New(opts Options) (Cacher, error) {
	def := DefaultOptions()
	if opts.Prefix == "" {
		opts.Prefix = def.Prefix
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = def.DefaultTTL
	}

	if opts.RedisURL != "" {
		c, err := NewRedisCache(opts.RedisURL, opts.Prefix, opts.DefaultTTL)
		if err != nil {
			return nil, fmt.Errorf("connecting redis cache: %w", err)
		}
		return c, nil
	}

	return NewMemoryCache(MemoryOptions{
		DefaultTTL:    opts.DefaultTTL,
		MaxEntries:    opts.MaxSize,
		SweepInterval: opts.CleanupInterval,
	}), nil
}

// NewWithTTL creates an in-memory cache with the given TTL.
func NewWithTTL(ttl time.Duration) Cacher {
	return NewMemoryCache(MemoryOptions{DefaultTTL: ttl, SweepInterval: time.Minute})
}
