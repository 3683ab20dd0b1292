package audit

import (
	"context"
	"time"
)

// RunGuard serializes audit runs per product. Acquire returns false when
// another run already holds the key; the TTL bounds how long a crashed run
// can block its product.
type RunGuard interface {
	// Acquire takes the lock for a key. Returns true if the lock was taken.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees the lock for a key
	Release(ctx context.Context, key string) error
}
