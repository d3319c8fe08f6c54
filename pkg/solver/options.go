package solver

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/gremlin/pkg/linsys"
	"github.com/matzehuels/gremlin/pkg/observability"
)

// Option configures an [Evaluator].
type Option func(*Evaluator)

// WithLogger sets the logger used for debug events. The default is
// log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithKindDefault supplies a fallback value for free variables of kind k that
// have neither a supplied value nor a declared default. Renderers use it to
// give unpinned leaf sizes a natural size.
func WithKindDefault(k linsys.Kind, v float64) Option {
	return func(e *Evaluator) {
		e.kindDefaults[k] = v
	}
}

// WithHooks overrides the globally registered solver hooks.
func WithHooks(h observability.SolverHooks) Option {
	return func(e *Evaluator) {
		if h != nil {
			e.hooks = h
		}
	}
}
