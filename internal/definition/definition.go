// Package definition holds the composition definition data model, the
// YAML/JSON loader and the structural checks that run before any graph or
// modifier resolution.
package definition

import (
	"github.com/codervisor/combo-skills/internal/compiler/modifier"
)

// DefaultSource is the registry identifier used when a component reference
// does not name one.
const DefaultSource = "default"

// ComponentReference points at an opaque component published in a registry.
type ComponentReference struct {
	Name       string          `yaml:"name" json:"name" validate:"required"`
	Source     string          `yaml:"source,omitempty" json:"source,omitempty"`
	Version    string          `yaml:"version,omitempty" json:"version,omitempty"`
	Alias      string          `yaml:"alias,omitempty" json:"alias,omitempty"`
	Categories []string        `yaml:"categories,omitempty" json:"categories,omitempty"`
	Modifiers  []modifier.Spec `yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
}

// Key returns the identity used in ordering constraints: the alias when set,
// otherwise the name.
func (c ComponentReference) Key() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Name
}

// Registry returns the source registry, falling back to DefaultSource.
func (c ComponentReference) Registry() string {
	if c.Source == "" {
		return DefaultSource
	}
	return c.Source
}

// CategoryList returns the declared categories that belong to the known set.
// Unknown names are reported by Validate, not here.
func (c ComponentReference) CategoryList() []modifier.Category {
	return toCategories(c.Categories)
}

// DataFlowMapping declares that the output of one component feeds another.
type DataFlowMapping struct {
	From  string `yaml:"from" json:"from"`
	To    string `yaml:"to" json:"to"`
	Field string `yaml:"field,omitempty" json:"field,omitempty"`
}

// Constraints groups ordering rules, assumptions and data-flow mappings.
type Constraints struct {
	Order       []string          `yaml:"order,omitempty" json:"order,omitempty"`
	Assumptions []string          `yaml:"assumptions,omitempty" json:"assumptions,omitempty"`
	DataFlow    []DataFlowMapping `yaml:"dataflow,omitempty" json:"dataflow,omitempty"`
}

// Metadata is passed through to the emitted artifact untouched.
type Metadata struct {
	Author  string   `yaml:"author,omitempty" json:"author,omitempty"`
	Tags    []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	License string   `yaml:"license,omitempty" json:"license,omitempty"`
}

// Composition is a user-authored composition definition. It is never
// mutated once validation has started; later stages derive new structures
// from it.
type Composition struct {
	Name        string               `yaml:"name" json:"name" validate:"required"`
	Description string               `yaml:"description" json:"description" validate:"required"`
	Version     string               `yaml:"version,omitempty" json:"version,omitempty"`
	Categories  []string             `yaml:"categories,omitempty" json:"categories,omitempty"`
	Modifiers   []modifier.Spec      `yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
	Skills      []ComponentReference `yaml:"skills" json:"skills" validate:"required,min=1,dive"`
	Intent      string               `yaml:"intent" json:"intent" validate:"required"`
	Constraints Constraints          `yaml:"constraints,omitempty" json:"constraints,omitempty"`
	Metadata    Metadata             `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Keys returns the identity key of every component in declaration order.
// Duplicates are kept.
func (c *Composition) Keys() []string {
	keys := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		keys = append(keys, s.Key())
	}
	return keys
}

// CategoryList returns the composition-wide categories that belong to the
// known set.
func (c *Composition) CategoryList() []modifier.Category {
	return toCategories(c.Categories)
}

// HasModifiers reports whether any modifier is declared, composition-wide or
// on a component.
func (c *Composition) HasModifiers() bool {
	if len(c.Modifiers) > 0 {
		return true
	}
	for _, s := range c.Skills {
		if len(s.Modifiers) > 0 {
			return true
		}
	}
	return false
}

func toCategories(names []string) []modifier.Category {
	out := make([]modifier.Category, 0, len(names))
	for _, name := range names {
		if cat, ok := modifier.ParseCategory(name); ok {
			out = append(out, cat)
		}
	}
	return out
}
