// Package cache stores rendered frame artifacts.
//
// Rendering a frame is cheap, but the HTTP API and the render command ask
// for the same picture over and over while a selection sits still. Frames
// are therefore cached by a hash of their drawable state and the render
// options.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry under a directory (CLI use)
//
// [Instrument] wraps any backend so hits, misses and writes reach the
// registered observability hooks.
//
// # Retries
//
// [RetryWithBackoff] retries operations whose errors are wrapped with
// [Retryable]. It is shared by the session and journal backends when they
// connect to Redis and MongoDB.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}
