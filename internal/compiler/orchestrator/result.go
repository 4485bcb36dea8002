package orchestrator

import (
	cerrors "github.com/codervisor/combo-skills/compiler/errors"
	"github.com/codervisor/combo-skills/internal/emit"
	"github.com/codervisor/combo-skills/internal/registry"
	"github.com/codervisor/combo-skills/internal/synth"
)

// Stage names a step of the compilation pipeline.
type Stage string

const (
	StageStructure  Stage = "structure"
	StageGraph      Stage = "graph"
	StageResolution Stage = "resolution"
	StageModifiers  Stage = "modifiers"
	StageSynthesis  Stage = "synthesis"
	StageEmission   Stage = "emission"
	StageDone       Stage = "done"
)

// Result aggregates the outcome of one compilation.
//
// Errors holds the diagnostics of the stage that stopped the pipeline and is
// empty on success. Warnings accumulates across every stage that ran.
type Result struct {
	Success        bool                         `json:"success"`
	Stage          Stage                        `json:"stage"`
	Artifact       *synth.Artifact              `json:"artifact,omitempty"`
	Errors         []cerrors.CompilerError      `json:"errors"`
	Warnings       []cerrors.CompilerError      `json:"warnings"`
	ExecutionOrder []string                     `json:"executionOrder"`
	Components     []registry.ResolvedComponent `json:"components,omitempty"`
	Emitted        *emit.Result                 `json:"emitted,omitempty"`
}

// ErrorMessages returns the plain error strings.
func (r *Result) ErrorMessages() []string {
	return cerrors.Messages(r.Errors)
}

// WarningMessages returns the plain warning strings.
func (r *Result) WarningMessages() []string {
	return cerrors.Messages(r.Warnings)
}

// Diagnostics returns errors followed by warnings.
func (r *Result) Diagnostics() []cerrors.CompilerError {
	out := make([]cerrors.CompilerError, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	return append(out, r.Warnings...)
}

// BackendFailure reports whether compilation failed in synthesis or emission
// rather than because of the definition.
func (r *Result) BackendFailure() bool {
	for _, e := range r.Errors {
		if e.IsBackendError() {
			return true
		}
	}
	return false
}
