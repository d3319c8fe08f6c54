package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gremlin/pkg/pipeline"
)

// solveOpts holds the command-line flags for the solve command.
type solveOpts struct {
	output  string   // output file (single format) or base path (multiple)
	formats []string // output formats: "text", "json", "dot", "svg"
	width   float64  // window width in cells
	height  float64  // window height in cells
	set     []string // name=value assignments to free variables
	flash   []string // button names or variables to pulse after solving
	stdout  bool     // write a single artifact to stdout
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var formatsStr string
	opts := solveOpts{
		width:  pipeline.DefaultWidth,
		height: pipeline.DefaultHeight,
	}

	cmd := &cobra.Command{
		Use:   "solve [file]",
		Short: "Solve a layout and write its outputs",
		Long: `Solve loads a TOML layout, compiles it into a linear system, feeds the window
size and any --set values into the free variables and renders the result.

With a single format and no --output the artifact is written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			opts.stdout = opts.output == "" && len(opts.formats) == 1
			return c.runSolve(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): text (default), json, dot, svg (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "window width in cells")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "window height in cells")
	cmd.Flags().StringArrayVar(&opts.set, "set", nil, "assign a free variable (name=value, repeatable)")
	cmd.Flags().StringSliceVar(&opts.flash, "flash", nil, "pulse a button or variable after solving")

	return cmd
}

// runSolve executes the pipeline and writes the artifacts.
func (c *CLI) runSolve(ctx context.Context, stdout, stderr io.Writer, input string, opts *solveOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	values, err := parseAssignments(opts.set)
	if err != nil {
		return err
	}

	result, err := c.newRunner().Execute(ctx, pipeline.Options{
		Path:    input,
		Width:   opts.width,
		Height:  opts.height,
		Values:  values,
		Flash:   opts.flash,
		Formats: opts.formats,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	prog.done("Solved layout", "variables", result.Stats.Variables, "free", result.Stats.Free)

	if opts.stdout {
		_, err := stdout.Write(result.Artifacts[opts.formats[0]])
		return err
	}

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return err
		}
		printFile(stderr, path)
	}
	printSuccess(stderr, "Solved %s", input)
	printStats(stderr, result.Stats.Equations, result.Stats.Variables, result.Stats.Free)
	if len(opts.formats) > 0 && opts.formats[0] != pipeline.FormatText {
		printNextStep(stderr, "Preview in the terminal", appName+" preview "+input)
	}
	return nil
}
