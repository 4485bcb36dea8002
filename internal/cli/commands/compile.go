package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codervisor/combo-skills/internal/cache"
	"github.com/codervisor/combo-skills/internal/cli/config"
	"github.com/codervisor/combo-skills/internal/cli/ui"
	"github.com/codervisor/combo-skills/internal/compiler/orchestrator"
	"github.com/codervisor/combo-skills/internal/emit"
	"github.com/codervisor/combo-skills/internal/llm"
	"github.com/codervisor/combo-skills/internal/registry"
	"github.com/codervisor/combo-skills/internal/synth"
)

var (
	compileJSON    bool
	compileOutput  string
	compileOffline bool
)

// NewCompileCommand creates the compile command
func NewCompileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <definition>",
		Short: "Compile a composition definition into a skill artifact",
		Long: `Compile a composition definition (YAML or JSON) into one skill artifact.

The compilation pipeline:
  1. Structural validation - required fields, versions, categories
  2. Graph resolution - ordering constraints and execution order
  3. Component resolution - skill metadata from the configured registries
  4. Modifier validation - compatibility, exclusivity, stacking order
  5. Synthesis - template or LLM backed
  6. Emission - SKILL.md, metadata.json and examples when --output is set

Without --output the synthesized body is printed to stdout.`,
		Example: `  # Compile and print the artifact
  combo compile research.yaml

  # Write the artifact to skills/<name>/
  combo compile research.yaml --output skills

  # Skip registries and LLM providers
  combo compile research.yaml --offline

  # Machine-readable result
  combo compile research.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: runCompile,
	}

	cmd.Flags().BoolVar(&compileJSON, "json", false, "Output the compilation result as JSON")
	cmd.Flags().StringVarP(&compileOutput, "output", "o", "", "Directory to emit the artifact into (default: output.dir from config)")
	cmd.Flags().BoolVar(&compileOffline, "offline", false, "Use the offline resolver and the template synthesizer")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprint(errOut, ui.ConfigError(err.Error(), rootNoColor))
		return fmt.Errorf("invalid configuration")
	}

	def, err := loadDefinition(cmd, args[0])
	if err != nil {
		return err
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	compiler, cleanup, err := newCompiler(cfg, logger, compileOffline)
	if err != nil {
		fmt.Fprint(errOut, ui.ConfigError(err.Error(), rootNoColor))
		return fmt.Errorf("invalid configuration")
	}
	defer cleanup()

	outputDir := compileOutput
	if outputDir == "" {
		outputDir = cfg.Output.Dir
	}

	var result *orchestrator.Result
	_ = ui.WithSpinner(errOut, fmt.Sprintf("Compiling %s", def.Name), !compileJSON && !rootVerbose, rootNoColor, func() error {
		result = compiler.Compile(commandContext(cmd), def, orchestrator.Options{OutputDir: outputDir})
		if !result.Success {
			return fmt.Errorf("stage %s failed", result.Stage)
		}
		return nil
	})

	if compileJSON {
		if err := writeJSON(out, result); err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("compilation failed")
		}
		return nil
	}

	outputDiagnosticsTerminal(errOut, result.Errors, result.Warnings)
	if !result.Success {
		fmt.Fprint(errOut, ui.CompilationError(
			fmt.Sprintf("Stopped at the %s stage with %d error(s).", result.Stage, len(result.Errors)), nil, rootNoColor))
		return fmt.Errorf("compilation failed")
	}

	if result.Emitted == nil {
		fmt.Fprint(out, result.Artifact.Body)
		return nil
	}

	infoColor := color.New(color.FgCyan)
	if rootNoColor {
		infoColor.DisableColor()
	}
	ui.WriteSuccess(out, fmt.Sprintf("Compiled %s in %s", def.Name, time.Since(startTime).Round(time.Millisecond)), rootNoColor)
	infoColor.Fprintf(out, "Artifact written to %s\n", result.Emitted.Dir)
	list := ui.NewList(out, ui.ListOptions{NoColor: rootNoColor})
	for _, f := range result.Emitted.Files {
		list.AddItem(f)
	}
	list.Render()
	return nil
}

// newCompiler wires the configured collaborators. The returned cleanup
// releases the metadata cache backend.
func newCompiler(cfg *config.Config, logger *zap.Logger, offline bool) (*orchestrator.Compiler, func(), error) {
	compiler := &orchestrator.Compiler{
		Logger:      logger,
		Concurrency: cfg.Resolve.Concurrency,
		Emitter:     emit.NewOSEmitter(),
	}
	cleanup := func() {}

	if offline || len(cfg.Registries) == 0 {
		compiler.Resolver = &registry.OfflineResolver{}
	} else {
		store, err := cache.New(cfg.CacheOptions())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open metadata cache: %w", err)
		}
		if store != nil {
			cleanup = func() {
				if err := store.Close(); err != nil {
					logger.Warn("failed to close metadata cache", zap.Error(err))
				}
			}
		}
		compiler.Resolver = registry.NewHTTPResolver(cfg.Registries,
			registry.WithHTTPClient(&http.Client{Timeout: cfg.Resolve.Timeout}),
			registry.WithCache(registry.NewMetadataCache(store, cfg.Cache.TTL)),
			registry.WithLogger(logger),
		)
	}

	provider, useLLM := cfg.LLMProvider()
	if offline || !useLLM {
		compiler.Synthesizer = synth.NewTemplateSynthesizer()
		return compiler, cleanup, nil
	}

	client, err := llm.NewClient(provider)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to configure %s: %w", provider.Type, err)
	}
	compiler.Synthesizer = synth.NewLLMSynthesizer(client, logger)
	return compiler, cleanup, nil
}
