// Package synth turns a resolved composition into a skill artifact. Output
// text is not required to be reproducible; only its shape is.
package synth

import (
	"context"
	"errors"
	"time"

	"github.com/codervisor/combo-skills/internal/compiler/modifier"
	"github.com/codervisor/combo-skills/internal/definition"
	"github.com/codervisor/combo-skills/internal/registry"
)

// ErrEmptyBody is returned when a synthesizer produces no artifact text.
var ErrEmptyBody = errors.New("synthesizer produced an empty body")

// Composition is the validated, resolved input to synthesis.
type Composition struct {
	Definition     *definition.Composition
	Components     []registry.ResolvedComponent
	ExecutionOrder []string
	// Modifiers are the composition-wide modifiers.
	Modifiers []modifier.ParsedModifier
	// ComponentModifiers holds per-component modifiers keyed by identity key.
	ComponentModifiers map[string][]modifier.ParsedModifier
}

// Component returns the resolved component for key, if any.
func (c *Composition) Component(key string) (registry.ResolvedComponent, bool) {
	for _, rc := range c.Components {
		if rc.Key == key {
			return rc, true
		}
	}
	return registry.ResolvedComponent{}, false
}

// Example is one usage example shipped with the artifact.
type Example struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// GenerationMetadata describes how an artifact was produced.
type GenerationMetadata struct {
	ID             string    `json:"id"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model,omitempty"`
	GeneratedAt    time.Time `json:"generatedAt"`
	ExecutionOrder []string  `json:"executionOrder"`
	ComponentCount int       `json:"componentCount"`
	Unresolved     []string  `json:"unresolved,omitempty"`
}

// Artifact is the synthesized skill.
type Artifact struct {
	Name     string             `json:"name"`
	Version  string             `json:"version,omitempty"`
	Body     string             `json:"body"`
	Examples []Example          `json:"examples"`
	Metadata GenerationMetadata `json:"metadata"`
}

// Synthesizer produces an artifact from a resolved composition.
type Synthesizer interface {
	Synthesize(ctx context.Context, in *Composition) (*Artifact, error)
}

// generationMetadata fills the fields common to every synthesizer.
func generationMetadata(in *Composition, id string, now time.Time, provider, model string) GenerationMetadata {
	var unresolved []string
	for _, rc := range in.Components {
		if !rc.Resolved {
			unresolved = append(unresolved, rc.Key)
		}
	}
	order := make([]string, len(in.ExecutionOrder))
	copy(order, in.ExecutionOrder)

	return GenerationMetadata{
		ID:             id,
		Provider:       provider,
		Model:          model,
		GeneratedAt:    now.UTC(),
		ExecutionOrder: order,
		ComponentCount: len(in.Components),
		Unresolved:     unresolved,
	}
}
