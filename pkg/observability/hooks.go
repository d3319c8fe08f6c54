// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks at
// startup to receive events about solving, updates and watcher notification.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The constraint core is synchronous and carries no context.Context, so the
// solver hooks take plain arguments. The evaluator identity is passed so a
// backend can tell several live evaluators apart.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSolverHooks(&mySolverHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	sol, err := sys.Solve(order)
//	observability.Solver().OnSolve(len(sys.Variables()), len(sol.Free()), time.Since(start), err)
package observability

import (
	"sync"
	"time"
)

// =============================================================================
// Solver Hooks
// =============================================================================

// SolverHooks receives events from the symbolic solver and the incremental
// evaluator.
type SolverHooks interface {
	// OnSolve records a completed (or failed) symbolic solve.
	OnSolve(vars, free int, duration time.Duration, err error)

	// OnUpdate records an update: how many free variables were supplied, how
	// many cached results were invalidated, and how many values changed.
	OnUpdate(evaluator string, supplied, invalidated, changed int, duration time.Duration, err error)

	// OnNotify records a watcher invocation.
	OnNotify(evaluator, variable string, value float64)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSolverHooks is a no-op implementation of SolverHooks.
type NoopSolverHooks struct{}

func (NoopSolverHooks) OnSolve(int, int, time.Duration, error)               {}
func (NoopSolverHooks) OnUpdate(string, int, int, int, time.Duration, error) {}
func (NoopSolverHooks) OnNotify(string, string, float64)                     {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	solverHooks SolverHooks = NoopSolverHooks{}
	hooksMu     sync.RWMutex
)

// SetSolverHooks registers custom solver hooks.
// This should be called once at application startup before any solving.
func SetSolverHooks(h SolverHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		solverHooks = h
	}
}

// Solver returns the registered solver hooks.
func Solver() SolverHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return solverHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	solverHooks = NoopSolverHooks{}
}
