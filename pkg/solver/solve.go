package solver

import (
	"time"

	"github.com/matzehuels/gremlin/pkg/linsys"
	"github.com/matzehuels/gremlin/pkg/observability"
)

// Solve solves sys in the given order and wraps the solution in an
// evaluator. A nil order means [linsys.ByKind] over the system's variables.
func Solve(sys *linsys.System, order []*linsys.Var, opts ...Option) (*Evaluator, error) {
	vars := sys.Variables()
	if order == nil {
		order = linsys.ByKind(vars)
	}

	start := time.Now()
	sol, err := sys.Solve(order)
	free := 0
	if sol != nil {
		free = len(sol.Free())
	}
	hooksFor(opts).OnSolve(len(vars), free, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return New(sol, opts...)
}

// hooksFor returns the hooks an evaluator built with opts would report to.
func hooksFor(opts []Option) observability.SolverHooks {
	e := &Evaluator{
		hooks:        observability.Solver(),
		kindDefaults: make(map[linsys.Kind]float64),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e.hooks
}
