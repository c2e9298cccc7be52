package cache

import (
	"context"
	"fmt"
)

// Cache is the injectable memoization store for validation reports.
// Implementations bound both entry lifetime and entry count; callers
// treat a miss and an expired entry identically.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// NewFromConfig builds the backend named in the config.
func NewFromConfig(cfg *Config) (Cache, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(cfg.TTL, cfg.MaxEntries), nil
	case BackendRedis:
		return NewRedis(cfg.RedisAddr, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
