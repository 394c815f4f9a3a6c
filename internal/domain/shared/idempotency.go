package shared

import (
	"context"
	"time"
)

// IdempotencyStore is an expiring record of keys that have already been
// handled. It fronts a durable check and may forget keys, so a miss must
// always fall through to the authoritative store.
type IdempotencyStore interface {
	// Claim records key and reports false when it was already present.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Seen reports whether key is currently recorded.
	Seen(ctx context.Context, key string) (bool, error)
	// Release forgets key so a failed attempt can run again.
	Release(ctx context.Context, key string) error
	Close() error
}
