package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	gerrors "github.com/matzehuels/gremlin/pkg/errors"
	"github.com/matzehuels/gremlin/pkg/linsys"
	"github.com/matzehuels/gremlin/pkg/pipeline"
	"github.com/matzehuels/gremlin/pkg/solver"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	variable string   // show a single variable and its dependents
	graph    string   // dependency graph format: "dot" or "svg"
	output   string   // graph output file (stdout when empty)
	width    float64  // window width in cells
	height   float64  // window height in cells
	set      []string // name=value assignments to free variables
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	opts := inspectOpts{
		width:  pipeline.DefaultWidth,
		height: pipeline.DefaultHeight,
	}

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the variables of a solved layout",
		Long: `Inspect solves a layout and lists its variables with their kind and value.
Free variables are marked; --var shows which defined variables depend on one.
--graph writes the dependency graph of the solution as DOT or SVG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.graph != "" && opts.graph != pipeline.FormatDOT && opts.graph != pipeline.FormatSVG {
				return gerrors.New(gerrors.ErrCodeInvalidFormat, "invalid graph format %q (want dot or svg)", opts.graph)
			}
			return c.runInspect(cmd.Context(), cmd.OutOrStdout(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.variable, "var", "", "show one variable and its dependents")
	cmd.Flags().StringVar(&opts.graph, "graph", "", "write the dependency graph: dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "graph output file (default stdout)")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "window width in cells")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "window height in cells")
	cmd.Flags().StringArrayVar(&opts.set, "set", nil, "assign a free variable (name=value, repeatable)")

	return cmd
}

// runInspect solves input and prints what opts asks for.
func (c *CLI) runInspect(ctx context.Context, w io.Writer, input string, opts *inspectOpts) error {
	values, err := parseAssignments(opts.set)
	if err != nil {
		return err
	}
	popts := pipeline.Options{Path: input, Width: opts.width, Height: opts.height, Values: values}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner := c.newRunner()
	doc, err := runner.Load(popts)
	if err != nil {
		return err
	}
	ev, err := runner.Solve(doc)
	if err != nil {
		return err
	}
	if _, err := runner.Apply(doc, ev, popts); err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("inspecting", "evaluator", ev.ID(), "variables", len(ev.Vars()))

	switch {
	case opts.graph != "":
		return writeGraph(ctx, w, ev, opts)
	case opts.variable != "":
		v, ok := doc.Lookup(opts.variable)
		if !ok {
			return gerrors.ForVar(gerrors.ErrCodeUnknownVariable, opts.variable, "unknown variable %q", opts.variable)
		}
		printVariable(w, ev, v)
		return nil
	}

	title := doc.Title
	if title == "" {
		title = input
	}
	fmt.Fprintln(w, StyleTitle.Render(title))
	sys, err := doc.System()
	if err != nil {
		return err
	}
	printStats(w, sys.Len(), len(ev.Vars()), len(ev.FreeVariables()))
	fmt.Fprintln(w, valueTable(ev, linsys.ByKind(ev.Vars())))
	return nil
}

// printVariable prints one variable and, when it is free, its dependents.
func printVariable(w io.Writer, ev *solver.Evaluator, v *linsys.Var) {
	printKeyValue(w, "name", v.Name())
	printKeyValue(w, "kind", v.Kind().String())
	if x, ok := ev.Value(v); ok {
		printKeyValue(w, "value", formatNumber(x))
	} else {
		printKeyValue(w, "value", "unresolved")
	}
	if !ev.IsFree(v) {
		printKeyValue(w, "free", "no")
		return
	}
	printKeyValue(w, "free", "yes")

	deps := ev.Dependents(v)
	if len(deps) == 0 {
		printInfo(w, "no variable depends on %s", v.Name())
		return
	}
	names := make([]string, len(deps))
	for i, d := range deps {
		names[i] = d.Name()
	}
	printKeyValue(w, "dependents", strings.Join(names, ", "))
}

// writeGraph writes the dependency graph to opts.output or w.
func writeGraph(ctx context.Context, w io.Writer, ev *solver.Evaluator, opts *inspectOpts) error {
	data := []byte(ev.ToDOT())
	if opts.graph == pipeline.FormatSVG {
		svg, err := solver.RenderSVG(ctx, string(data))
		if err != nil {
			return err
		}
		data = svg
	}
	if opts.output == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	printFile(w, opts.output)
	return nil
}
