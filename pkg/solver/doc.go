// Package solver evaluates a symbolic [linsys.Solution] incrementally.
//
// An [Evaluator] owns a results cache holding the concrete value of every
// variable it could resolve. Supplying new values for free variables through
// [Evaluator.Update] evicts only the dependency closure of those variables,
// re-evaluates the system depth-first with memoization, and then notifies the
// watchers of every variable whose value changed.
//
// # Lifecycle
//
//	sol, _ := sys.Solve(linsys.ByKind(sys.Variables()))
//	ev, err := solver.New(sol)
//	if err != nil {
//	    // a cycle between definitions
//	}
//	cancel := ev.Watch(width, func(v float64) { fmt.Println("width", v) })
//	defer cancel()
//	_ = ev.Set(window, 120)
//
// # Free variable values
//
// When a variable is evaluated its value comes from, in order: the value
// supplied to the current update, the value already in the results cache, the
// variable's declared default, and the evaluator's per-kind default (see
// [WithKindDefault]). Free padding variables without a default start at 0.
//
// # Concurrency
//
// An Evaluator is single-owner and not safe for concurrent use. Calling
// Update from inside a watcher fails with REENTRANT_UPDATE.
package solver
