package registry

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codervisor/combo-skills/internal/definition"
)

// DefaultConcurrency bounds the number of lookups in flight.
const DefaultConcurrency = 4

// ResolveOptions tunes ResolveAll.
type ResolveOptions struct {
	Concurrency int
	Logger      *zap.Logger
}

// ResolveAll looks up every reference concurrently and waits for all of
// them. A failed lookup never cancels its siblings; it becomes an unresolved
// placeholder at the same index and a Failure entry. Results keep the order
// of refs.
func ResolveAll(ctx context.Context, resolver Resolver, refs []definition.ComponentReference, opts ResolveOptions) ([]ResolvedComponent, []Failure) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]ResolvedComponent, len(refs))
	errs := make([]error, len(refs))

	var g errgroup.Group
	g.SetLimit(limit)

	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			rc, err := resolveOne(ctx, resolver, ref)
			if err != nil {
				errs[i] = err
				results[i] = Unresolved(ref, err)
				logger.Warn("component lookup failed",
					zap.String("skill", ref.Key()),
					zap.String("source", ref.Registry()),
					zap.Error(err))
				return nil
			}
			results[i] = *rc
			return nil
		})
	}
	// Every task returns nil so all lookups settle.
	_ = g.Wait()

	var failures []Failure
	for i, err := range errs {
		if err != nil {
			failures = append(failures, Failure{Reference: refs[i], Err: err})
		}
	}
	return results, failures
}

// resolveOne shields the batch from a panicking or misbehaving resolver.
func resolveOne(ctx context.Context, resolver Resolver, ref definition.ComponentReference) (rc *ResolvedComponent, err error) {
	defer func() {
		if r := recover(); r != nil {
			rc, err = nil, fmt.Errorf("resolver panicked: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err = resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, fmt.Errorf("resolver returned no metadata for %q", ref.Name)
	}

	if !rc.Resolved {
		return nil, fmt.Errorf("%w: %s", ErrNotResolved, ref.Name)
	}

	out := *rc
	out.Key = ref.Key()
	if out.Name == "" {
		out.Name = ref.Name
	}
	if out.Source == "" {
		out.Source = ref.Registry()
	}
	return &out, nil
}
