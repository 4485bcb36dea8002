// Package cache provides the byte cache backends shared by the component
// metadata resolver: an in-process memory cache and a Redis cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Cache defines the interface for all cache backends
type Cache interface {
	// Get retrieves a value, returning ErrCacheMiss when absent or expired
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value; a zero ttl uses the backend default, a negative ttl never expires
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value
	Delete(ctx context.Context, key string) error

	// Clear removes every value under the backend prefix
	Clear(ctx context.Context) error

	// Close releases background resources
	Close() error
}

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config holds common configuration for cache backends
type Config struct {
	// DefaultTTL applies when Set is called with a zero ttl
	DefaultTTL time.Duration
	// Prefix is prepended to all keys
	Prefix string
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() Config {
	return Config{
		DefaultTTL: time.Hour,
		Prefix:     "combo:",
	}
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	Config  Config
	Redis   RedisConfig
}

// New builds the backend named in opts. BackendNone yields a nil Cache and
// no error; callers treat a nil cache as disabled.
func New(opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryCacheWithConfig(opts.Config), nil
	case BackendRedis:
		cfg := opts.Redis
		cfg.Config = opts.Config
		return NewRedisCacheWithConfig(cfg)
	case BackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (expected %s, %s or %s)",
			opts.Backend, BackendMemory, BackendRedis, BackendNone)
	}
}

// ErrCacheMiss is returned when a key is not found in the cache
type ErrCacheMiss struct {
	Key string
}

func (e ErrCacheMiss) Error() string {
	return "cache miss: " + e.Key
}

// IsCacheMiss checks if an error is a cache miss
func IsCacheMiss(err error) bool {
	var miss ErrCacheMiss
	return errors.As(err, &miss)
}
