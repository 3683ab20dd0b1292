package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ecom-auditor/backend/internal/domain/audit"
)

// RedisRunGuard implements RunGuard using Redis. Suitable for distributed
// deployments where multiple instances must agree on which products have a
// run in flight.
type RedisRunGuard struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisRunGuard creates a new Redis-based run guard
func NewRedisRunGuard(cfg RedisConfig) (*RedisRunGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRunGuard{
		client:    client,
		keyPrefix: "audit:run:",
	}, nil
}

// NewRedisRunGuardWithClient creates a guard with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisRunGuardWithClient(client *redis.Client, keyPrefix string) *RedisRunGuard {
	if keyPrefix == "" {
		keyPrefix = "audit:run:"
	}
	return &RedisRunGuard{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire takes the per-product lock with a TTL.
// Uses SETNX so the check and set are a single atomic operation.
func (g *RedisRunGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	return ok, nil
}

// Release frees the per-product lock
func (g *RedisRunGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (g *RedisRunGuard) Close() error {
	return g.client.Close()
}

// Ensure RedisRunGuard implements RunGuard
var _ audit.RunGuard = (*RedisRunGuard)(nil)
