package pipeline

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	gerrors "github.com/matzehuels/gremlin/pkg/errors"
	"github.com/matzehuels/gremlin/pkg/layout"
	"github.com/matzehuels/gremlin/pkg/layoutfile"
	"github.com/matzehuels/gremlin/pkg/linsys"
	"github.com/matzehuels/gremlin/pkg/render/sink"
	"github.com/matzehuels/gremlin/pkg/render/term"
	"github.com/matzehuels/gremlin/pkg/solver"
)

// Runner executes the pipeline. It holds no results, so one Runner can serve
// several runs.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs load → solve → update → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	doc, err := r.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Document = doc
	result.Stats.LoadTime = time.Since(loadStart)
	r.Logger.Debug("loaded layout", "title", doc.Title, "duration", result.Stats.LoadTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Solve
	solveStart := time.Now()
	ev, err := r.Solve(doc)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	result.Evaluator = ev
	result.Stats.SolveTime = time.Since(solveStart)
	result.Stats.Variables = len(ev.Vars())
	result.Stats.Free = len(ev.FreeVariables())
	if sys, err := doc.System(); err == nil {
		result.Stats.Equations = sys.Len()
	}
	r.Logger.Info("solved layout",
		"variables", result.Stats.Variables,
		"free", result.Stats.Free,
		"duration", result.Stats.SolveTime)

	// Stage 3: Update
	updateStart := time.Now()
	notified, err := r.Apply(doc, ev, opts)
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	result.Stats.Notified = notified
	result.Stats.UpdateTime = time.Since(updateStart)
	r.Logger.Debug("applied values", "values", len(opts.Values), "duration", result.Stats.UpdateTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: Render
	renderStart := time.Now()
	result.Blocks, err = layout.Place(doc.Root, ev)
	if err != nil {
		return nil, fmt.Errorf("place: %w", err)
	}
	result.Artifacts, err = Render(ctx, doc, ev, result.Blocks, opts.Formats)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Stats.RenderTime = time.Since(renderStart)
	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the document from opts.Source or opts.Path.
func (r *Runner) Load(opts Options) (*layoutfile.Document, error) {
	if len(opts.Source) > 0 {
		return layoutfile.Parse(opts.Source)
	}
	return layoutfile.Load(opts.Path)
}

// Solve builds the evaluator for doc. Unpinned leaf sizes fall back to
// DefaultLeafSize.
func (r *Runner) Solve(doc *layoutfile.Document) (*solver.Evaluator, error) {
	return doc.Solve(
		solver.WithLogger(r.Logger),
		solver.WithKindDefault(linsys.KindCons, DefaultLeafSize),
	)
}

// Apply feeds the window size (when the window variables are free), the
// named values and the flashes into ev. It returns how many of the supplied
// variables changed value.
func (r *Runner) Apply(doc *layoutfile.Document, ev *solver.Evaluator, opts Options) (int, error) {
	values := make(map[*linsys.Var]float64)
	if ev.IsFree(doc.Window.Width) {
		values[doc.Window.Width] = opts.Width
	}
	if ev.IsFree(doc.Window.Height) {
		values[doc.Window.Height] = opts.Height
	}
	for _, name := range slices.Sorted(maps.Keys(opts.Values)) {
		v, ok := doc.Lookup(name)
		if !ok {
			return 0, gerrors.ForVar(gerrors.ErrCodeUnknownVariable, name, "unknown variable %q", name)
		}
		values[v] = opts.Values[name]
	}

	notified := 0
	for v := range values {
		cancel := ev.Watch(v, func(float64) { notified++ })
		defer cancel()
	}
	if err := ev.Update(values); err != nil {
		return 0, err
	}

	for _, name := range opts.Flash {
		v, err := flashTarget(doc, name)
		if err != nil {
			return 0, err
		}
		if err := ev.Flash(v); err != nil {
			return 0, err
		}
	}
	return notified, nil
}

// flashTarget resolves a name to a pulse variable: a node name selects the
// node's clicked signal, anything else is looked up as a variable.
func flashTarget(doc *layoutfile.Document, name string) (*linsys.Var, error) {
	if n, ok := doc.Nodes[name]; ok {
		if v := n.Signal(layout.AttrClicked); v != nil {
			return v, nil
		}
		return nil, gerrors.New(gerrors.ErrCodeInvalidInput, "node %q has no clicked signal", name)
	}
	if v, ok := doc.Lookup(name); ok {
		return v, nil
	}
	return nil, gerrors.ForVar(gerrors.ErrCodeUnknownVariable, name, "unknown variable %q", name)
}

// Render generates one artifact per format.
func Render(ctx context.Context, doc *layoutfile.Document, ev *solver.Evaluator, blocks []layout.Block, formats []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(formats))
	for _, format := range formats {
		switch format {
		case FormatText:
			w, h := canvasSize(blocks)
			out[format] = []byte(strings.Join(term.Grid(blocks, w, h, ev), "\n") + "\n")
		case FormatJSON:
			data, err := sink.RenderJSON(blocks,
				sink.WithJSONTitle(doc.Title),
				sink.WithJSONEvaluator(ev.ID()),
				sink.WithJSONValues(ev.Snapshot(), ev.IsFree),
			)
			if err != nil {
				return nil, err
			}
			out[format] = data
		case FormatDOT:
			out[format] = []byte(ev.ToDOT())
		case FormatSVG:
			svg, err := solver.RenderSVG(ctx, ev.ToDOT())
			if err != nil {
				return nil, err
			}
			out[format] = svg
		default:
			return nil, gerrors.New(gerrors.ErrCodeInvalidFormat, "unsupported format %q", format)
		}
	}
	return out, nil
}

func canvasSize(blocks []layout.Block) (int, int) {
	if len(blocks) == 0 {
		return 0, 0
	}
	root := blocks[0]
	clamp := func(f float64) int {
		if math.IsNaN(f) || f <= 0 {
			return 0
		}
		return int(math.Min(f, term.MaxCanvasSize) + 0.5)
	}
	return clamp(root.Width), clamp(root.Height)
}
