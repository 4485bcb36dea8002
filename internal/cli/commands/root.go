package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cerrors "github.com/codervisor/combo-skills/compiler/errors"
	"github.com/codervisor/combo-skills/internal/cli/config"
	"github.com/codervisor/combo-skills/internal/cli/ui"
	"github.com/codervisor/combo-skills/internal/definition"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

var (
	rootVerbose bool
	rootConfig  string
	rootNoColor bool
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "combo",
		Short: "Compile skill compositions into standalone skill artifacts",
		Long: color.CyanString(`combo - Skill Composition Compiler

combo reads a declarative composition of existing skills, validates its
structure, ordering constraints and modifiers, resolves the referenced
skills from their registries and synthesizes a single skill artifact.

Pipeline:
  • Structural validation of the definition
  • Dependency graph and execution order
  • Component resolution (missing skills become placeholders)
  • Modifier compatibility checks
  • Synthesis and emission`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootConfig, "config", "", "Config file (default: ./combo.yaml)")
	rootCmd.PersistentFlags().BoolVar(&rootNoColor, "no-color", false, "Disable colored output")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewCompileCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewGraphCommand())
	rootCmd.AddCommand(NewModifiersCommand())
	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the combo version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			table := ui.NewKeyValueTable(cmd.OutOrStdout(), rootNoColor)
			table.AddRow("combo version", Version)
			table.AddRow("Git commit", GitCommit)
			table.AddRow("Build date", BuildDate)
			table.AddRow("Go version", goVer)
			table.Render()
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

// loadConfig honors --config and otherwise reads ./combo.yaml when present.
func loadConfig() (*config.Config, error) {
	if rootConfig != "" {
		return config.LoadFile(rootConfig)
	}
	return config.Load()
}

// newLogger returns a development logger under --verbose and a no-op
// logger otherwise.
func newLogger() *zap.Logger {
	if !rootVerbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadDefinition reads the composition at path, reporting load failures in
// the terminal format.
func loadDefinition(cmd *cobra.Command, path string) (*definition.Composition, error) {
	def, err := definition.Load(path)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.DefinitionError(path, err, rootNoColor))
		return nil, fmt.Errorf("failed to load definition %s", path)
	}
	return def, nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// outputDiagnosticsTerminal prints diagnostics followed by a summary line.
func outputDiagnosticsTerminal(w io.Writer, errs, warnings []cerrors.CompilerError) {
	for _, d := range append(append([]cerrors.CompilerError{}, errs...), warnings...) {
		text := d.FormatForTerminal()
		if rootNoColor {
			text = cerrors.StripColors(text)
		}
		fmt.Fprint(w, text)
		fmt.Fprintln(w, strings.Repeat("-", 60))
	}
	if len(errs) == 0 && len(warnings) == 0 {
		return
	}
	summary := cerrors.FormatSummary(len(errs), len(warnings))
	if rootNoColor {
		summary = cerrors.StripColors(summary)
	}
	fmt.Fprint(w, summary)
}
