package registry

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/codervisor/combo-skills/internal/cache"
)

// CacheKey identifies a cached lookup.
type CacheKey struct {
	Registry string
	Name     string
	Version  string
}

// NewCacheKey builds the key for a reference.
func NewCacheKey(registry, name, version string) CacheKey {
	return CacheKey{Registry: registry, Name: name, Version: version}
}

// String renders the key with each part escaped, so "a/b" in one part
// cannot collide with a separator.
func (k CacheKey) String() string {
	version := k.Version
	if version == "" {
		version = "*"
	}
	return "component:" + url.PathEscape(k.Registry) + "/" + url.PathEscape(k.Name) + "@" + url.PathEscape(version)
}

// MetadataCache is the best-effort lookup cache passed into a resolver. A
// miss or a lost race only costs a redundant lookup.
type MetadataCache interface {
	Get(ctx context.Context, key CacheKey) (*ResolvedComponent, bool)
	Set(ctx context.Context, key CacheKey, component *ResolvedComponent)
	Clear(ctx context.Context) error
}

type byteMetadataCache struct {
	store cache.Cache
	ttl   time.Duration
}

// NewMetadataCache stores resolved components as JSON in any byte cache.
// A nil store yields a cache that never hits.
func NewMetadataCache(store cache.Cache, ttl time.Duration) MetadataCache {
	if store == nil {
		return noopMetadataCache{}
	}
	return &byteMetadataCache{store: store, ttl: ttl}
}

func (c *byteMetadataCache) Get(ctx context.Context, key CacheKey) (*ResolvedComponent, bool) {
	data, err := c.store.Get(ctx, key.String())
	if err != nil {
		return nil, false
	}
	var rc ResolvedComponent
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, false
	}
	return &rc, true
}

func (c *byteMetadataCache) Set(ctx context.Context, key CacheKey, component *ResolvedComponent) {
	if component == nil {
		return
	}
	data, err := json.Marshal(component)
	if err != nil {
		return
	}
	_ = c.store.Set(ctx, key.String(), data, c.ttl)
}

func (c *byteMetadataCache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

type noopMetadataCache struct{}

func (noopMetadataCache) Get(context.Context, CacheKey) (*ResolvedComponent, bool) { return nil, false }
func (noopMetadataCache) Set(context.Context, CacheKey, *ResolvedComponent)        {}
func (noopMetadataCache) Clear(context.Context) error                              { return nil }
