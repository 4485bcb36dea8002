package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/codervisor/combo-skills/internal/definition"
)

// DefaultTimeout bounds a single registry request.
const DefaultTimeout = 10 * time.Second

// HTTPResolver fetches component metadata from HTTP registries. Each source
// identifier maps to a base URL; a reference is looked up with
// GET {base}/components/{name}?version={constraint}.
type HTTPResolver struct {
	registries map[string]string
	httpClient *http.Client
	cache      MetadataCache
	logger     *zap.Logger
}

// HTTPOption configures an HTTPResolver.
type HTTPOption func(*HTTPResolver)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(r *HTTPResolver) { r.httpClient = client }
}

// WithCache sets the metadata cache consulted before every request.
func WithCache(cache MetadataCache) HTTPOption {
	return func(r *HTTPResolver) {
		if cache != nil {
			r.cache = cache
		}
	}
}

// WithLogger sets the resolver logger.
func WithLogger(logger *zap.Logger) HTTPOption {
	return func(r *HTTPResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewHTTPResolver creates a resolver for the given source → base URL map.
func NewHTTPResolver(registries map[string]string, opts ...HTTPOption) *HTTPResolver {
	r := &HTTPResolver{
		registries: make(map[string]string, len(registries)),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		cache:      NewMetadataCache(nil, 0),
		logger:     zap.NewNop(),
	}
	for name, base := range registries {
		r.registries[name] = strings.TrimRight(base, "/")
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// componentResponse is the registry's JSON body for one component.
type componentResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

// Resolve implements Resolver.
func (r *HTTPResolver) Resolve(ctx context.Context, ref definition.ComponentReference) (*ResolvedComponent, error) {
	source := ref.Registry()
	base, ok := r.registries[source]
	if !ok {
		return nil, fmt.Errorf("unknown registry %q", source)
	}

	key := NewCacheKey(source, ref.Name, ref.Version)
	if rc, hit := r.cache.Get(ctx, key); hit {
		r.logger.Debug("component metadata cache hit", zap.String("key", key.String()))
		return rc, nil
	}

	rc, err := r.fetch(ctx, base, ref)
	if err != nil {
		return nil, err
	}

	r.cache.Set(ctx, key, rc)
	return rc, nil
}

func (r *HTTPResolver) fetch(ctx context.Context, base string, ref definition.ComponentReference) (*ResolvedComponent, error) {
	endpoint := base + "/components/" + url.PathEscape(ref.Name)
	if ref.Version != "" {
		endpoint += "?" + url.Values{"version": {ref.Version}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s in registry %q", ErrComponentNotFound, ref.Name, ref.Registry())
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("registry returned status %d: %s", resp.StatusCode, truncate(body))
	}

	var cr componentResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if err := checkVersion(ref, cr.Version); err != nil {
		return nil, err
	}

	name := cr.Name
	if name == "" {
		name = ref.Name
	}

	r.logger.Debug("resolved component",
		zap.String("name", name),
		zap.String("source", ref.Registry()),
		zap.String("version", cr.Version))

	return &ResolvedComponent{
		Key:         ref.Key(),
		Name:        name,
		Source:      ref.Registry(),
		Version:     cr.Version,
		Description: cr.Description,
		Resolved:    true,
		Metadata:    cr.Metadata,
	}, nil
}

// checkVersion rejects a registry answer that does not satisfy the
// reference's constraint.
func checkVersion(ref definition.ComponentReference, version string) error {
	if ref.Version == "" || version == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(ref.Version)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", ref.Version, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("registry returned invalid version %q: %w", version, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("registry version %s does not satisfy %q", version, ref.Version)
	}
	return nil
}

func truncate(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		return s[:200] + "... (truncated)"
	}
	return s
}
