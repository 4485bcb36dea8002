package commands

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cerrors "github.com/codervisor/combo-skills/compiler/errors"
	"github.com/codervisor/combo-skills/internal/cli/ui"
	"github.com/codervisor/combo-skills/internal/compiler/modifier"
)

var (
	modifiersCategories []string
	modifiersJSON       bool
)

// NewModifiersCommand creates the modifiers command
func NewModifiersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modifiers [kind]",
		Short: "Show the modifier catalog and compatibility matrix",
		Long: `Without arguments, print every modifier kind, its compatibility with each
capability category, the mutually exclusive pairs and the order-sensitive
stacking pairs. With a kind, describe that modifier in detail.

Legend: ✓ compatible, ~ compatible with a caveat, ✗ incompatible.`,
		Example: `  combo modifiers
  combo modifiers retry
  combo modifiers check --category fetch --category transform retry:3 cache:5m`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeModifierKinds,
		RunE:              runModifiers,
	}

	cmd.AddCommand(newModifiersCheckCommand())

	return cmd
}

func newModifiersCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <modifier>...",
		Short: "Validate compact modifier declarations against categories",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runModifiersCheck,
	}

	cmd.Flags().StringSliceVarP(&modifiersCategories, "category", "c", nil, "Capability category of the target (repeatable)")
	cmd.Flags().BoolVar(&modifiersJSON, "json", false, "Output the validation result as JSON")

	return cmd
}

func runModifiers(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return describeModifier(cmd, args[0])
	}

	out := cmd.OutOrStdout()
	title := color.New(color.FgCyan, color.Bold)
	if rootNoColor {
		title.DisableColor()
	}

	categories := modifier.AllCategories()
	headers := []string{"Kind"}
	for _, c := range categories {
		headers = append(headers, string(c))
	}
	headers = append(headers, "Description")

	table := ui.NewTable(out, headers, &ui.TableOptions{NoColor: rootNoColor})
	for _, kind := range modifier.AllKinds() {
		row := []string{string(kind)}
		for _, c := range categories {
			verdict, _ := modifier.Compatibility(kind, c)
			row = append(row, verdict.Symbol())
		}
		row = append(row, modifier.Describe(kind))
		table.AddRow(row...)
	}
	table.Render()

	fmt.Fprintln(out)
	title.Fprintln(out, "Mutually exclusive")
	exclusive := ui.NewList(out, ui.ListOptions{NoColor: rootNoColor})
	for _, pair := range modifier.ExclusivePairs() {
		exclusive.AddItem(fmt.Sprintf("%s + %s", pair[0], pair[1]))
	}
	exclusive.Render()

	fmt.Fprintln(out)
	title.Fprintln(out, "Order sensitive (first declared immediately before second)")
	stacking := ui.NewList(out, ui.ListOptions{NoColor: rootNoColor})
	for _, adv := range modifier.StackingAdvisories() {
		stacking.AddItem(fmt.Sprintf("%s → %s: %s", adv.First, adv.Second, adv.Consequence))
	}
	stacking.Render()

	return nil
}

func describeModifier(cmd *cobra.Command, name string) error {
	kind, ok := modifier.ParseKind(name)
	if !ok {
		names := make([]string, 0, len(modifier.AllKinds()))
		for _, k := range modifier.AllKinds() {
			names = append(names, string(k))
		}
		fmt.Fprint(cmd.ErrOrStderr(), ui.UnknownModifierError(name, cerrors.SuggestSimilar(name, names, 3), rootNoColor))
		return fmt.Errorf("unknown modifier %q", name)
	}

	out := cmd.OutOrStdout()
	kv := ui.NewKeyValueTable(out, rootNoColor)
	kv.AddRow("Modifier", string(kind))
	kv.AddRow("Description", modifier.Describe(kind))
	kv.Render()

	fmt.Fprintln(out)
	table := ui.NewTable(out, []string{"Category", "Verdict", "Note"}, &ui.TableOptions{NoColor: rootNoColor})
	for _, c := range modifier.AllCategories() {
		verdict, note := modifier.Compatibility(kind, c)
		table.AddRow(string(c), verdict.String(), note)
	}
	table.Render()

	var related []string
	for _, pair := range modifier.ExclusivePairs() {
		switch kind {
		case pair[0]:
			related = append(related, fmt.Sprintf("exclusive with %s", pair[1]))
		case pair[1]:
			related = append(related, fmt.Sprintf("exclusive with %s", pair[0]))
		}
	}
	for _, adv := range modifier.StackingAdvisories() {
		if adv.First == kind || adv.Second == kind {
			related = append(related, fmt.Sprintf("%s → %s: %s", adv.First, adv.Second, adv.Consequence))
		}
	}
	if len(related) > 0 {
		fmt.Fprintln(out)
		list := ui.NewList(out, ui.ListOptions{NoColor: rootNoColor})
		for _, r := range related {
			list.AddItem(r)
		}
		list.Render()
	}
	return nil
}

func runModifiersCheck(cmd *cobra.Command, args []string) error {
	specs := make([]modifier.Spec, 0, len(args))
	for _, a := range args {
		specs = append(specs, modifier.Compact(a))
	}

	categories := make([]modifier.Category, 0, len(modifiersCategories))
	for _, name := range modifiersCategories {
		c, ok := modifier.ParseCategory(strings.TrimSpace(name))
		if !ok {
			return fmt.Errorf("unknown category %q (expected one of %s)", name, joinCategories())
		}
		categories = append(categories, c)
	}

	result := modifier.Validate(specs, categories)

	if modifiersJSON {
		if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	} else {
		errOut := cmd.ErrOrStderr()
		for _, issue := range result.Issues {
			level := ui.ErrorLevelWarning
			if issue.Blocking {
				level = ui.ErrorLevelError
			}
			ui.WriteError(errOut, ui.ErrorOptions{
				Level:   level,
				Context: string(issue.Rule),
				Problem: issue.Message,
				NoColor: rootNoColor,
			})
		}
	}

	if !result.Valid {
		return fmt.Errorf("%d modifier error(s)", len(result.Errors))
	}
	if !modifiersJSON {
		ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("%d modifier(s) valid", len(result.Modifiers)), rootNoColor)
	}
	return nil
}

func joinCategories() string {
	names := make([]string, 0, len(modifier.AllCategories()))
	for _, c := range modifier.AllCategories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
