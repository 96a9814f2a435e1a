// Package store provides the external key-value store used by the
// request guard for rate-limit counters and idempotency records. The
// Redis implementation sits behind a circuit breaker; callers treat any
// store failure as ErrStoreUnavailable and apply their own degradation
// policy (the guard fails open).
package store

import (
	"context"
	"time"
)

// KeyValue is the coordination primitive contract the guard depends on.
// Implementations must make SetNX atomic; it is what guarantees at most
// one computation per idempotency key.
type KeyValue interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value with a TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetNX stores the value only if the key is absent, returning
	// whether this caller won.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// IncrWithTTL atomically increments a counter, attaching the TTL
	// when the key is created. Returns the post-increment count.
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Del removes a key.
	Del(ctx context.Context, key string) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}
