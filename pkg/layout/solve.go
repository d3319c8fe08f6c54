package layout

import (
	"github.com/matzehuels/gremlin/pkg/linsys"
	"github.com/matzehuels/gremlin/pkg/solver"
)

type solveConfig struct {
	window   *Window
	extra    []linsys.Equation
	order    []*linsys.Var
	evalOpts []solver.Option
}

// SolveOption configures [Solve].
type SolveOption func(*solveConfig)

// WithWindow binds the root's width and height to the window variables.
func WithWindow(w *Window) SolveOption {
	return func(c *solveConfig) { c.window = w }
}

// WithEquations appends caller equations after the tree's own.
func WithEquations(eqs ...linsys.Equation) SolveOption {
	return func(c *solveConfig) { c.extra = append(c.extra, eqs...) }
}

// WithOrder overrides the solving order. Variables left out are visited
// after the listed ones, by kind.
func WithOrder(order []*linsys.Var) SolveOption {
	return func(c *solveConfig) { c.order = order }
}

// WithEvaluatorOptions passes options to the evaluator.
func WithEvaluatorOptions(opts ...solver.Option) SolveOption {
	return func(c *solveConfig) { c.evalOpts = append(c.evalOpts, opts...) }
}

// System compiles the tree and the configured bindings into a linear system.
func System(root *Node, opts ...SolveOption) (*linsys.System, error) {
	cfg := &solveConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.system(root)
}

func (c *solveConfig) system(root *Node) (*linsys.System, error) {
	eqs, err := Constraints(root)
	if err != nil {
		return nil, err
	}
	sys := linsys.NewSystem(eqs...)
	sys.Declare(Signals(root)...)
	if c.window != nil {
		sys.Append(
			linsys.Eq(root.w, c.window.Width),
			linsys.Eq(root.h, c.window.Height),
		)
	}
	sys.Append(c.extra...)
	return sys, nil
}

// Solve compiles the tree rooted at root, solves it and returns an evaluator
// ready for updates.
func Solve(root *Node, opts ...SolveOption) (*solver.Evaluator, error) {
	cfg := &solveConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	sys, err := cfg.system(root)
	if err != nil {
		return nil, err
	}
	return solver.Solve(sys, cfg.order, cfg.evalOpts...)
}
