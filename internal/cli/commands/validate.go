package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cerrors "github.com/codervisor/combo-skills/compiler/errors"
	"github.com/codervisor/combo-skills/internal/cli/ui"
	"github.com/codervisor/combo-skills/internal/compiler/orchestrator"
)

var validateJSON bool

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <definition>",
		Short: "Check a composition definition without resolving or synthesizing",
		Long: `Run structural validation, graph resolution and modifier validation on a
composition definition. No registry, LLM provider or filesystem output is used.`,
		Example: `  combo validate research.yaml
  combo validate research.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}

	cmd.Flags().BoolVar(&validateJSON, "json", false, "Output diagnostics in JSON format")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	def, err := loadDefinition(cmd, args[0])
	if err != nil {
		return err
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	compiler := &orchestrator.Compiler{Logger: logger}
	result := compiler.Validate(commandContext(cmd), def)

	if validateJSON {
		diagnostics := append(append([]cerrors.CompilerError{}, result.Errors...), result.Warnings...)
		text, err := cerrors.FormatErrorsAsJSON(diagnostics)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
	} else {
		outputDiagnosticsTerminal(cmd.ErrOrStderr(), result.Errors, result.Warnings)
	}

	if !result.Success {
		return fmt.Errorf("%s is invalid (%s stage)", args[0], result.Stage)
	}

	if !validateJSON {
		ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s is valid", def.Name), rootNoColor)
		fmt.Fprintf(cmd.OutOrStdout(), "Execution order: %s\n", strings.Join(result.ExecutionOrder, " -> "))
	}
	return nil
}
