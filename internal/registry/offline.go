package registry

import (
	"context"
	"fmt"

	"github.com/codervisor/combo-skills/internal/definition"
)

// OfflineResolver answers from a local catalog without any network access.
// References missing from the catalog resolve to their declared fields
// unless Strict is set, in which case they fail.
type OfflineResolver struct {
	Catalog map[string]ResolvedComponent
	Strict  bool
}

// Resolve implements Resolver.
func (o *OfflineResolver) Resolve(ctx context.Context, ref definition.ComponentReference) (*ResolvedComponent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if rc, ok := o.Catalog[ref.Name]; ok {
		if err := checkVersion(ref, rc.Version); err != nil {
			return nil, err
		}
		out := rc
		out.Key = ref.Key()
		out.Resolved = true
		if out.Source == "" {
			out.Source = ref.Registry()
		}
		return &out, nil
	}

	if o.Strict {
		return nil, fmt.Errorf("%w: %s not in offline catalog", ErrComponentNotFound, ref.Name)
	}

	return &ResolvedComponent{
		Key:      ref.Key(),
		Name:     ref.Name,
		Source:   ref.Registry(),
		Version:  ref.Version,
		Resolved: true,
		Metadata: map[string]any{"offline": true},
	}, nil
}
