package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// sweepInterval is how often expired entries are dropped in the background.
const sweepInterval = time.Minute

// MemoryCache is an in-process cache with per-entry expiry. It is safe for
// concurrent use by several compilations.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	config  Config
	cancel  context.CancelFunc
	now     func() time.Time
}

type entry struct {
	value   []byte
	expires time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// NewMemoryCache creates a memory cache with the default configuration
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithConfig(DefaultConfig())
}

// NewMemoryCacheWithConfig creates a memory cache and starts its sweeper
func NewMemoryCacheWithConfig(config Config) *MemoryCache {
	ctx, cancel := context.WithCancel(context.Background())
	m := &MemoryCache{
		entries: make(map[string]entry),
		config:  config,
		cancel:  cancel,
		now:     time.Now,
	}

	go m.sweep(ctx, sweepInterval)

	return m
}

// Get retrieves a value from the cache
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	e, ok := m.entries[m.config.Prefix+key]
	m.mu.RUnlock()

	if !ok || e.expired(m.now()) {
		return nil, ErrCacheMiss{Key: key}
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores a copy of value
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[m.config.Prefix+key] = e
	m.mu.Unlock()
	return nil
}

// Delete removes a value from the cache
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.entries, m.config.Prefix+key)
	m.mu.Unlock()
	return nil
}

// Clear removes every value under the configured prefix
func (m *MemoryCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	for k := range m.entries {
		if strings.HasPrefix(k, m.config.Prefix) {
			delete(m.entries, k)
		}
	}
	m.mu.Unlock()
	return nil
}

// Len returns the number of live entries
func (m *MemoryCache) Len() int {
	now := m.now()
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// Close stops the background sweeper
func (m *MemoryCache) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	return nil
}

func (m *MemoryCache) sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.removeExpired()
		}
	}
}

func (m *MemoryCache) removeExpired() {
	now := m.now()
	m.mu.Lock()
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}
	m.mu.Unlock()
}
