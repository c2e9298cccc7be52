package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Backend    string        `env:"MVD_CACHE_BACKEND,default=memory"`
	TTL        time.Duration `env:"MVD_CACHE_TTL,default=5m"`
	MaxEntries int           `env:"MVD_CACHE_MAX_ENTRIES,default=1024"`
	RedisAddr  string        `env:"MVD_CACHE_REDIS_ADDR,default=127.0.0.1:6379"`
}

// NewFromEnv reads the cache configuration from the environment and
// builds the configured backend.
func NewFromEnv(ctx context.Context) (Cache, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("error loading cache environment variables: %w", err)
	}
	return NewFromConfig(&cfg)
}
