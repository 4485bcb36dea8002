package graph

import (
	"fmt"

	"github.com/codervisor/combo-skills/internal/definition"
)

// ProblemKind classifies a constraint problem.
type ProblemKind string

const (
	ProblemUnknownKey ProblemKind = "unknown-key"
	ProblemCycle      ProblemKind = "cycle"
)

// Problem is one constraint error in structured form.
type Problem struct {
	Kind       ProblemKind `json:"kind"`
	Constraint string      `json:"constraint,omitempty"`
	Key        string      `json:"key,omitempty"`
	Cycle      Cycle       `json:"cycle,omitempty"`
	Message    string      `json:"message"`
}

// ValidationResult reports constraint problems. Warnings is always empty:
// constraint validation either passes or fails. Problems carries the same
// errors as Errors, in order.
type ValidationResult struct {
	Valid    bool      `json:"valid"`
	Errors   []string  `json:"errors"`
	Warnings []string  `json:"warnings"`
	Problems []Problem `json:"problems"`
}

func (r *ValidationResult) add(p Problem) {
	r.Errors = append(r.Errors, p.Message)
	r.Problems = append(r.Problems, p)
}

// ValidateConstraints checks the ordering constraints of def with a silent
// builder.
func ValidateConstraints(def *definition.Composition) ValidationResult {
	return NewBuilder().ValidateConstraints(def)
}

// ValidateConstraints rebuilds the graph and reports one error per undeclared
// key in each constraint and one error per detected cycle.
func (b *Builder) ValidateConstraints(def *definition.Composition) ValidationResult {
	g := b.Build(def)
	result := ValidationResult{Errors: []string{}, Warnings: []string{}, Problems: []Problem{}}

	for _, constraint := range def.Constraints.Order {
		reported := make(map[string]bool)
		for _, key := range SplitChain(constraint) {
			if g.Nodes[key] != nil || reported[key] {
				continue
			}
			reported[key] = true
			result.add(Problem{
				Kind:       ProblemUnknownKey,
				Constraint: constraint,
				Key:        key,
				Message:    fmt.Sprintf("ordering constraint %q references unknown skill %q", constraint, key),
			})
		}
	}

	for _, cycle := range g.Cycles {
		result.add(Problem{
			Kind:    ProblemCycle,
			Cycle:   cycle,
			Message: "circular dependency: " + cycle.String(),
		})
	}

	result.Valid = len(result.Errors) == 0
	return result
}
