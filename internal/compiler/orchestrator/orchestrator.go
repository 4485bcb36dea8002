// Package orchestrator drives a composition definition through validation,
// graph resolution, component resolution, modifier validation, synthesis and
// emission, collecting every diagnostic into a single result.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	cerrors "github.com/codervisor/combo-skills/compiler/errors"
	"github.com/codervisor/combo-skills/internal/compiler/graph"
	"github.com/codervisor/combo-skills/internal/compiler/modifier"
	"github.com/codervisor/combo-skills/internal/definition"
	"github.com/codervisor/combo-skills/internal/emit"
	"github.com/codervisor/combo-skills/internal/registry"
	"github.com/codervisor/combo-skills/internal/synth"
)

// Options are per-compilation settings.
type Options struct {
	// OutputDir requests emission when non-empty.
	OutputDir string
}

// Compiler holds the collaborators of the pipeline. Nil collaborators fall
// back to offline defaults: an OfflineResolver, the TemplateSynthesizer and
// an emitter on the OS filesystem.
type Compiler struct {
	Resolver    registry.Resolver
	Synthesizer synth.Synthesizer
	Emitter     emit.Emitter
	Logger      *zap.Logger
	// Concurrency bounds parallel component lookups.
	Concurrency int
}

// run is the state of one compilation.
type run struct {
	c         *Compiler
	log       *zap.Logger
	def       *definition.Composition
	result    *Result
	collector *cerrors.Collector
	modifiers modifierSet
}

// modifierSet holds the parsed modifiers passed on to synthesis.
type modifierSet struct {
	composition []modifier.ParsedModifier
	components  map[string][]modifier.ParsedModifier
}

func (c *Compiler) newRun(def *definition.Composition) *run {
	log := c.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &run{
		c:   c,
		log: log,
		def: def,
		result: &Result{
			Errors:         []cerrors.CompilerError{},
			Warnings:       []cerrors.CompilerError{},
			ExecutionOrder: []string{},
		},
		collector: cerrors.NewCollector(),
	}
}

// Compile runs the full pipeline. It never panics on collaborator failures
// and never returns nil.
func (c *Compiler) Compile(ctx context.Context, def *definition.Composition, opts Options) *Result {
	r := c.newRun(def)

	steps := []struct {
		stage Stage
		fn    func(context.Context, Options) bool
	}{
		{StageStructure, r.validateStructure},
		{StageGraph, r.resolveGraph},
		{StageResolution, r.resolveComponents},
		{StageModifiers, r.validateModifiers},
		{StageSynthesis, r.synthesize},
		{StageEmission, r.emit},
	}

	for _, step := range steps {
		r.result.Stage = step.stage
		if !step.fn(ctx, opts) {
			return r.finish(false)
		}
	}

	r.result.Stage = StageDone
	return r.finish(true)
}

// Validate runs structural validation, graph resolution and modifier
// validation without calling any collaborator.
func (c *Compiler) Validate(ctx context.Context, def *definition.Composition) *Result {
	r := c.newRun(def)

	for _, step := range []struct {
		stage Stage
		fn    func(context.Context, Options) bool
	}{
		{StageStructure, r.validateStructure},
		{StageGraph, r.resolveGraph},
		{StageModifiers, r.validateModifiers},
	} {
		r.result.Stage = step.stage
		if !step.fn(ctx, Options{}) {
			return r.finish(false)
		}
	}

	r.result.Stage = StageDone
	return r.finish(true)
}

func (r *run) finish(success bool) *Result {
	r.result.Success = success && !r.collector.HasErrors()
	r.result.Errors = append(r.result.Errors, r.collector.Errors()...)
	r.result.Warnings = append(r.result.Warnings, r.collector.Warnings()...)

	r.log.Debug("compilation finished",
		zap.Bool("success", r.result.Success),
		zap.String("stage", string(r.result.Stage)),
		zap.Int("errors", len(r.result.Errors)),
		zap.Int("warnings", len(r.result.Warnings)))
	return r.result
}

// validateStructure checks required fields, versions, categories, identity
// keys and the keys named by ordering constraints. Cycles are left to the
// graph stage.
func (r *run) validateStructure(_ context.Context, _ Options) bool {
	if r.def == nil {
		r.collector.Errorf(cerrors.PhaseDefinition, cerrors.ErrMalformedDefinition, "no composition definition given")
		return false
	}

	r.collector.AddAll(definition.Validate(r.def))

	if len(r.def.Constraints.Order) > 0 {
		constraints := graph.NewBuilder(graph.WithLogger(r.log)).ValidateConstraints(r.def)
		for _, p := range constraints.Problems {
			if p.Kind == graph.ProblemCycle {
				continue
			}
			r.collector.Add(cerrors.NewError(cerrors.PhaseGraph, cerrors.ErrUnknownComponent, p.Message).
				WithLocation(cerrors.Location{Path: "constraints.order"}))
		}
	}

	if r.collector.HasErrors() {
		return false
	}

	r.collector.AddAll(definition.CheckDataFlow(r.def))
	return true
}

// resolveGraph builds the dependency graph and derives the execution order.
// All cycles are reported in a single error.
func (r *run) resolveGraph(_ context.Context, _ Options) bool {
	g := graph.NewBuilder(graph.WithLogger(r.log)).Build(r.def)

	if g.HasCycles {
		rendered := make([]string, 0, len(g.Cycles))
		for _, cycle := range g.Cycles {
			rendered = append(rendered, cycle.String())
		}
		r.collector.Add(cerrors.NewError(cerrors.PhaseGraph, cerrors.ErrCircularDependency,
			"circular dependencies detected: "+strings.Join(rendered, "; ")).
			WithLocation(cerrors.Location{Path: "constraints.order"}))
		return false
	}

	r.result.ExecutionOrder = g.ExecutionOrder
	r.log.Debug("execution order resolved", zap.Strings("order", g.ExecutionOrder))
	return true
}

// resolveComponents looks up every reference. Failures never stop the
// pipeline; they leave placeholders and one warning naming every failed
// component.
func (r *run) resolveComponents(ctx context.Context, _ Options) bool {
	resolver := r.c.Resolver
	if resolver == nil {
		resolver = &registry.OfflineResolver{}
	}

	components, failures := registry.ResolveAll(ctx, resolver, r.def.Skills, registry.ResolveOptions{
		Concurrency: r.c.Concurrency,
		Logger:      r.log,
	})
	r.result.Components = components

	if len(failures) > 0 {
		names := make([]string, 0, len(failures))
		for _, f := range failures {
			names = append(names, f.Reference.Key())
		}
		r.collector.Add(cerrors.NewWarning(cerrors.PhaseResolution, cerrors.WarnUnresolvedComponent,
			fmt.Sprintf("could not resolve %d skill(s), continuing with placeholders: %s",
				len(failures), strings.Join(names, ", "))))
	}
	return true
}

// validateModifiers checks composition-wide modifiers against the
// composition categories and each component's modifiers against its own.
func (r *run) validateModifiers(_ context.Context, _ Options) bool {
	r.modifiers.components = make(map[string][]modifier.ParsedModifier)
	if !r.def.HasModifiers() {
		return true
	}

	if len(r.def.Modifiers) > 0 {
		res := modifier.Validate(r.def.Modifiers, r.def.CategoryList())
		r.addModifierIssues("composition", "modifiers", res)
		r.modifiers.composition = res.Modifiers
	}

	for i, skill := range r.def.Skills {
		if len(skill.Modifiers) == 0 {
			continue
		}
		res := modifier.Validate(skill.Modifiers, skill.CategoryList())
		r.addModifierIssues(fmt.Sprintf("skill %q", skill.Key()), fmt.Sprintf("skills[%d].modifiers", i), res)
		r.modifiers.components[skill.Key()] = res.Modifiers
	}

	return !r.collector.HasErrors()
}

func (r *run) addModifierIssues(scope, path string, res modifier.ValidationResult) {
	loc := cerrors.Location{Path: path}
	for _, issue := range res.Issues {
		msg := scope + ": " + issue.Message
		if !issue.Blocking {
			code := cerrors.WarnModifierCaveat
			if issue.Rule == modifier.RuleStacking {
				code = cerrors.WarnModifierStacking
			}
			r.collector.Add(cerrors.NewWarning(cerrors.PhaseModifier, code, msg).WithLocation(loc))
			continue
		}

		code := cerrors.ErrModifierIncompatible
		switch issue.Rule {
		case modifier.RuleParse:
			code = cerrors.ErrModifierParse
		case modifier.RuleExclusive:
			code = cerrors.ErrModifierExclusive
		}
		r.collector.Add(cerrors.NewError(cerrors.PhaseModifier, code, msg).WithLocation(loc))
	}
}

// synthesize produces the artifact. Failures are backend errors.
func (r *run) synthesize(ctx context.Context, _ Options) (ok bool) {
	synthesizer := r.c.Synthesizer
	if synthesizer == nil {
		synthesizer = synth.NewTemplateSynthesizer()
	}

	defer func() {
		if p := recover(); p != nil {
			r.collector.Errorf(cerrors.PhaseSynthesis, cerrors.ErrSynthesisFailed, "synthesizer panicked: %v", p)
			ok = false
		}
	}()

	artifact, err := synthesizer.Synthesize(ctx, &synth.Composition{
		Definition:         r.def,
		Components:         r.result.Components,
		ExecutionOrder:     r.result.ExecutionOrder,
		Modifiers:          r.modifiers.composition,
		ComponentModifiers: r.modifiers.components,
	})

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		r.collector.Errorf(cerrors.PhaseSynthesis, cerrors.ErrSynthesisTimeout, "synthesis timed out: %v", err)
		return false
	case errors.Is(err, synth.ErrEmptyBody):
		r.collector.Errorf(cerrors.PhaseSynthesis, cerrors.ErrSynthesisEmpty, "%v", err)
		return false
	case err != nil:
		r.collector.Errorf(cerrors.PhaseSynthesis, cerrors.ErrSynthesisFailed, "synthesis failed: %v", err)
		return false
	case artifact == nil || strings.TrimSpace(artifact.Body) == "":
		r.collector.Errorf(cerrors.PhaseSynthesis, cerrors.ErrSynthesisEmpty, "%v", synth.ErrEmptyBody)
		return false
	}

	r.result.Artifact = artifact
	r.log.Info("artifact synthesized",
		zap.String("name", artifact.Name),
		zap.String("provider", artifact.Metadata.Provider))
	return true
}

// emit persists the artifact when an output directory was requested.
func (r *run) emit(ctx context.Context, opts Options) (ok bool) {
	if opts.OutputDir == "" {
		return true
	}

	emitter := r.c.Emitter
	if emitter == nil {
		emitter = emit.NewOSEmitter()
	}

	defer func() {
		if p := recover(); p != nil {
			r.collector.Errorf(cerrors.PhaseEmission, cerrors.ErrEmissionFailed, "emitter panicked: %v", p)
			ok = false
		}
	}()

	emitted, err := emitter.Emit(ctx, r.result.Artifact, opts.OutputDir)
	if err != nil {
		r.collector.Errorf(cerrors.PhaseEmission, cerrors.ErrEmissionFailed, "failed to write artifact: %v", err)
		return false
	}

	r.result.Emitted = emitted
	r.log.Info("artifact written", zap.String("dir", emitted.Dir))
	return true
}
