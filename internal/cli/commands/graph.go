package commands

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codervisor/combo-skills/internal/cli/ui"
	"github.com/codervisor/combo-skills/internal/compiler/graph"
)

var graphJSON bool

// graphOutput is the JSON shape of the graph command.
type graphOutput struct {
	Keys           []string   `json:"keys"`
	ExecutionOrder []string   `json:"executionOrder"`
	Levels         [][]string `json:"levels"`
	Cycles         []string   `json:"cycles"`
	Problems       []string   `json:"problems"`
}

// NewGraphCommand creates the graph command
func NewGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <definition>",
		Short: "Show the dependency graph and execution order of a composition",
		Long: `Build the dependency graph from the ordering constraints of a composition
and print the execution order, grouped into levels whose skills have no
ordering constraint between them.`,
		Example: `  combo graph research.yaml
  combo graph research.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: runGraph,
	}

	cmd.Flags().BoolVar(&graphJSON, "json", false, "Output the graph in JSON format")

	return cmd
}

func runGraph(cmd *cobra.Command, args []string) error {
	def, err := loadDefinition(cmd, args[0])
	if err != nil {
		return err
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	builder := graph.NewBuilder(graph.WithLogger(logger))
	g := builder.Build(def)
	check := builder.ValidateConstraints(def)

	output := graphOutput{
		Keys:           g.Keys,
		ExecutionOrder: g.ExecutionOrder,
		Levels:         g.Levels(),
		Cycles:         make([]string, 0, len(g.Cycles)),
		Problems:       check.Errors,
	}
	for _, c := range g.Cycles {
		output.Cycles = append(output.Cycles, c.String())
	}

	if graphJSON {
		if err := writeJSON(cmd.OutOrStdout(), output); err != nil {
			return err
		}
	} else {
		renderGraph(cmd, def.Name, output)
	}

	if !check.Valid {
		return fmt.Errorf("ordering constraints of %s are invalid", def.Name)
	}
	return nil
}

func renderGraph(cmd *cobra.Command, name string, output graphOutput) {
	out := cmd.OutOrStdout()

	title := color.New(color.FgCyan, color.Bold)
	if rootNoColor {
		title.DisableColor()
	}

	for _, p := range output.Problems {
		ui.WriteError(cmd.ErrOrStderr(), ui.ErrorOptions{Problem: p, NoColor: rootNoColor})
	}
	if len(output.Cycles) > 0 {
		return
	}

	title.Fprintf(out, "Execution order for %s\n", name)
	order := ui.NewList(out, ui.ListOptions{Numbered: true, NoColor: rootNoColor})
	for _, key := range output.ExecutionOrder {
		order.AddItem(key)
	}
	order.Render()

	fmt.Fprintln(out)
	title.Fprintln(out, "Levels")
	table := ui.NewTable(out, []string{"Level", "Skills"}, &ui.TableOptions{NoColor: rootNoColor})
	for i, level := range output.Levels {
		table.AddRow(fmt.Sprintf("%d", i+1), strings.Join(level, ", "))
	}
	table.Render()
}
