// Package registry resolves component references to the metadata published
// by their registries.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/codervisor/combo-skills/internal/definition"
)

var (
	// ErrComponentNotFound is returned when a registry has no such component.
	ErrComponentNotFound = errors.New("component not found")
	// ErrNotResolved wraps an answer that carries Resolved false.
	ErrNotResolved = errors.New("component not resolved")
)

// ResolvedComponent is the metadata known about one component reference.
// Unresolved placeholders keep the reference fields and set Resolved false.
type ResolvedComponent struct {
	Key         string         `json:"key"`
	Name        string         `json:"name"`
	Source      string         `json:"source"`
	Version     string         `json:"version,omitempty"`
	Description string         `json:"description,omitempty"`
	Resolved    bool           `json:"resolved"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Resolver looks up the metadata for a single component reference. A
// successful lookup sets Resolved; an answer with Resolved false counts as a
// failed lookup, the same as a returned error.
type Resolver interface {
	Resolve(ctx context.Context, ref definition.ComponentReference) (*ResolvedComponent, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, ref definition.ComponentReference) (*ResolvedComponent, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, ref definition.ComponentReference) (*ResolvedComponent, error) {
	return f(ctx, ref)
}

// Unresolved builds the placeholder kept for a reference whose lookup failed.
func Unresolved(ref definition.ComponentReference, cause error) ResolvedComponent {
	rc := ResolvedComponent{
		Key:      ref.Key(),
		Name:     ref.Name,
		Source:   ref.Registry(),
		Version:  ref.Version,
		Resolved: false,
	}
	if cause != nil {
		rc.Metadata = map[string]any{"error": cause.Error()}
	}
	return rc
}

// Failure records a lookup that did not succeed.
type Failure struct {
	Reference definition.ComponentReference
	Err       error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Reference.Key(), f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}
