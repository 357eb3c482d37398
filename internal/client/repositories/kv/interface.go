// Package kv is the durable key-value store behind the local fallback
// snapshot: messages, device id and profile are kept as whole values.
package kv

import (
	"context"
	"time"
)

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes all pairs atomically.
	SetMany(ctx context.Context, values map[string][]byte) error
	// UpdatedAt reports when key was last written; ok is false when absent.
	UpdatedAt(ctx context.Context, key string) (at time.Time, ok bool, err error)
}
