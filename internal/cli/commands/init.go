package commands

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/codervisor/combo-skills/internal/cli/ui"
	"github.com/codervisor/combo-skills/internal/compiler/graph"
	"github.com/codervisor/combo-skills/internal/compiler/modifier"
	"github.com/codervisor/combo-skills/internal/compiler/orchestrator"
	"github.com/codervisor/combo-skills/internal/definition"
)

var (
	initName        string
	initDescription string
	initIntent      string
	initSkills      []string
	initCategories  []string
	initModifiers   []string
	initSequential  bool
	initYes         bool
	initForce       bool
)

var (
	// initFs is where init writes the definition.
	initFs afero.Fs = afero.NewOsFs()
	// askInit fills in the answers interactively.
	askInit = promptInit
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// initAnswers holds the values of one init session. Flags seed the defaults.
type initAnswers struct {
	Name        string   `survey:"name"`
	Description string   `survey:"description"`
	Intent      string   `survey:"intent"`
	Skills      string   `survey:"skills"`
	Categories  []string `survey:"categories"`
	Modifiers   string   `survey:"modifiers"`
	Sequential  bool     `survey:"sequential"`
}

// validateName checks that a composition name is usable as a directory name
func validateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 64 {
		return fmt.Errorf("name must be 1-64 characters")
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("name can only contain lowercase letters, numbers and dashes")
	}
	return nil
}

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Scaffold a composition definition",
		Long: `Create a composition definition file. Values not given as flags are
prompted for, unless --yes is set.

The file defaults to <name>.yaml in the current directory.`,
		Example: `  combo init
  combo init --name research-digest --skills web-search,summarize --yes
  combo init digest.yaml --categories fetch --modifiers retry:3,timeout:30s`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}

	cmd.Flags().StringVar(&initName, "name", "", "Composition name")
	cmd.Flags().StringVar(&initDescription, "description", "", "One-line description")
	cmd.Flags().StringVar(&initIntent, "intent", "", "What the composed skill should accomplish")
	cmd.Flags().StringSliceVar(&initSkills, "skills", nil, "Skills to compose, in order")
	cmd.Flags().StringSliceVar(&initCategories, "categories", nil, "Capability categories of the composition")
	cmd.Flags().StringSliceVar(&initModifiers, "modifiers", nil, "Composition-wide modifiers in compact form")
	cmd.Flags().BoolVar(&initSequential, "sequential", true, "Run the skills in the order given")
	cmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Do not prompt; use flag values")
	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	answers := &initAnswers{
		Name:        initName,
		Description: initDescription,
		Intent:      initIntent,
		Skills:      strings.Join(initSkills, ", "),
		Categories:  initCategories,
		Modifiers:   strings.Join(initModifiers, ", "),
		Sequential:  initSequential,
	}

	if !initYes {
		if err := askInit(answers); err != nil {
			return err
		}
	}

	if err := validateName(answers.Name); err != nil {
		return err
	}

	def := answers.composition()
	if err := checkScaffold(cmd, def); err != nil {
		return err
	}

	path := answers.Name + ".yaml"
	if len(args) > 0 {
		path = args[0]
	}

	exists, err := afero.Exists(initFs, path)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	if exists && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	data, err := definition.Marshal(def, definition.DetectFormat(path))
	if err != nil {
		return fmt.Errorf("failed to encode definition: %w", err)
	}
	if err := afero.WriteFile(initFs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Created %s", path), rootNoColor)
	fmt.Fprintf(cmd.OutOrStdout(), "\nNext steps:\n  combo validate %s\n  combo compile %s\n", path, path)
	return nil
}

// composition builds the definition the answers describe.
func (a *initAnswers) composition() *definition.Composition {
	def := &definition.Composition{
		Name:        strings.TrimSpace(a.Name),
		Description: strings.TrimSpace(a.Description),
		Version:     "0.1.0",
		Categories:  a.Categories,
		Intent:      strings.TrimSpace(a.Intent),
	}

	for _, m := range splitList(a.Modifiers) {
		def.Modifiers = append(def.Modifiers, modifier.Compact(m))
	}

	names := splitList(a.Skills)
	for _, name := range names {
		def.Skills = append(def.Skills, definition.ComponentReference{Name: name})
	}
	if a.Sequential && len(names) > 1 {
		def.Constraints.Order = []string{strings.Join(names, " "+graph.Separator+" ")}
	}
	return def
}

// checkScaffold refuses to write a definition that would not validate.
func checkScaffold(cmd *cobra.Command, def *definition.Composition) error {
	compiler := &orchestrator.Compiler{Logger: newLogger()}
	result := compiler.Validate(commandContext(cmd), def)
	if result.Success {
		return nil
	}
	outputDiagnosticsTerminal(cmd.ErrOrStderr(), result.Errors, nil)
	return errors.New("the scaffolded definition is invalid")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// promptInit asks for every value, using the current answers as defaults.
func promptInit(a *initAnswers) error {
	categories := make([]string, 0, len(modifier.AllCategories()))
	for _, c := range modifier.AllCategories() {
		categories = append(categories, string(c))
	}

	questions := []*survey.Question{
		{
			Name:   "name",
			Prompt: &survey.Input{Message: "Composition name:", Default: a.Name},
			Validate: survey.ComposeValidators(survey.Required, func(v interface{}) error {
				return validateName(fmt.Sprint(v))
			}),
		},
		{
			Name:     "description",
			Prompt:   &survey.Input{Message: "Description:", Default: a.Description},
			Validate: survey.Required,
		},
		{
			Name:     "intent",
			Prompt:   &survey.Input{Message: "Intent (what the composed skill accomplishes):", Default: a.Intent},
			Validate: survey.Required,
		},
		{
			Name:     "skills",
			Prompt:   &survey.Input{Message: "Skills to compose (comma separated):", Default: a.Skills},
			Validate: survey.Required,
		},
		{
			Name:   "categories",
			Prompt: &survey.MultiSelect{Message: "Capability categories:", Options: categories, Default: a.Categories},
		},
		{
			Name:   "modifiers",
			Prompt: &survey.Input{Message: "Modifiers (compact form, comma separated):", Default: a.Modifiers},
		},
		{
			Name:   "sequential",
			Prompt: &survey.Confirm{Message: "Run the skills in the order given?", Default: a.Sequential},
		},
	}

	return survey.Ask(questions, a)
}
