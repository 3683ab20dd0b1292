package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ecom-auditor/backend/internal/domain/audit"
)

// InMemoryRunGuard implements RunGuard with a process-local map. Suitable
// for single-instance deployments and tests; entries expire lazily on the
// next Acquire for the same key.
type InMemoryRunGuard struct {
	mu    sync.Mutex
	locks map[string]time.Time
}

// NewInMemoryRunGuard creates a new in-memory run guard
func NewInMemoryRunGuard() *InMemoryRunGuard {
	return &InMemoryRunGuard{
		locks: make(map[string]time.Time),
	}
}

// Acquire takes the per-product lock with a TTL
func (g *InMemoryRunGuard) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if expiry, held := g.locks[key]; held && time.Now().Before(expiry) {
		return false, nil
	}
	g.locks[key] = time.Now().Add(ttl)
	return true, nil
}

// Release frees the per-product lock
func (g *InMemoryRunGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.locks, key)
	return nil
}

// Ensure InMemoryRunGuard implements RunGuard
var _ audit.RunGuard = (*InMemoryRunGuard)(nil)
