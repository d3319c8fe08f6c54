package solver

import (
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	gerrors "github.com/matzehuels/gremlin/pkg/errors"
	"github.com/matzehuels/gremlin/pkg/linsys"
	"github.com/matzehuels/gremlin/pkg/observability"
)

// Callback receives the new value of a watched variable.
type Callback func(value float64)

type watcher struct {
	id int
	fn Callback
}

// Evaluator computes concrete values for a solved system and keeps them
// current as free variables change.
type Evaluator struct {
	id  string
	sol *linsys.Solution

	vars    []*linsys.Var
	closure map[*linsys.Var][]*linsys.Var
	results map[*linsys.Var]float64

	watchers  map[*linsys.Var][]watcher
	nextWatch int
	updating  bool

	kindDefaults map[linsys.Kind]float64
	logger       *log.Logger
	hooks        observability.SolverHooks
}

// New wraps sol in an evaluator.
//
// Free padding variables without a declared default are set to 0. Every
// variable whose inputs all have values is then evaluated; variables that
// depend on a free variable with no value stay unresolved until an update
// supplies one. A cycle between definitions fails New with CYCLIC_DEPENDENCY.
func New(sol *linsys.Solution, opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		id:           uuid.NewString(),
		sol:          sol,
		vars:         sol.Vars(),
		results:      make(map[*linsys.Var]float64),
		watchers:     make(map[*linsys.Var][]watcher),
		kindDefaults: make(map[linsys.Kind]float64),
		logger:       log.Default(),
		hooks:        observability.Solver(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.closure = buildClosure(sol)

	for _, v := range sol.Free() {
		if _, ok := v.Default(); !ok && v.Kind() == linsys.KindPadding {
			e.results[v] = 0
		}
	}

	for _, v := range e.vars {
		if _, err := e.eval(v, make(map[*linsys.Var]bool)); err != nil {
			if gerrors.Is(err, gerrors.ErrCodeMissingValue) {
				continue
			}
			return nil, err
		}
	}
	e.logger.Debug("evaluator ready", "id", e.id, "vars", len(e.vars),
		"free", len(sol.Free()), "resolved", len(e.results))
	return e, nil
}

// buildClosure maps every free variable to the variables whose value depends
// on it, itself included.
func buildClosure(sol *linsys.Solution) map[*linsys.Var][]*linsys.Var {
	users := make(map[*linsys.Var][]*linsys.Var)
	for _, v := range sol.Defined() {
		def, _ := sol.Definition(v)
		for _, d := range linsys.Vars(def) {
			users[d] = append(users[d], v)
		}
	}

	closure := make(map[*linsys.Var][]*linsys.Var)
	for _, f := range sol.Free() {
		seen := map[*linsys.Var]bool{f: true}
		queue := []*linsys.Var{f}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, u := range users[v] {
				if !seen[u] {
					seen[u] = true
					queue = append(queue, u)
				}
			}
		}
		deps := slices.Collect(maps.Keys(seen))
		slices.SortFunc(deps, func(a, b *linsys.Var) int { return int(a.ID()) - int(b.ID()) })
		closure[f] = deps
	}
	return closure
}

// ID returns the evaluator's unique identity.
func (e *Evaluator) ID() string { return e.id }

// Solution returns the symbolic solution being evaluated.
func (e *Evaluator) Solution() *linsys.Solution { return e.sol }

// Vars returns every variable of the system, sorted by id.
func (e *Evaluator) Vars() []*linsys.Var { return slices.Clone(e.vars) }

// IsFree reports whether v must be supplied externally.
func (e *Evaluator) IsFree(v *linsys.Var) bool { return e.sol.IsFree(v) }

// FreeVariables returns the free variables sorted by id.
func (e *Evaluator) FreeVariables() []*linsys.Var { return e.sol.Free() }

// Value returns the current value of v. The second result is false when v is
// not part of the system or has not been resolved yet.
func (e *Evaluator) Value(v *linsys.Var) (float64, bool) {
	x, ok := e.results[v]
	return x, ok
}

// MustValue is like Value but panics when v has no value.
func (e *Evaluator) MustValue(v *linsys.Var) float64 {
	x, ok := e.results[v]
	if !ok {
		panic("solver: no value for " + v.Name())
	}
	return x
}

// Snapshot returns a copy of every resolved value.
func (e *Evaluator) Snapshot() map[*linsys.Var]float64 { return maps.Clone(e.results) }

// Missing returns the free variables that still have no value.
func (e *Evaluator) Missing() []*linsys.Var {
	var out []*linsys.Var
	for _, v := range e.sol.Free() {
		if _, ok := e.results[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

// Dependents returns the defined variables whose value depends on the free
// variable f, sorted by id.
func (e *Evaluator) Dependents(f *linsys.Var) []*linsys.Var {
	var out []*linsys.Var
	for _, v := range e.closure[f] {
		if v != f {
			out = append(out, v)
		}
	}
	return out
}

// Watch registers fn to be called with the new value every time v changes.
// Callbacks on the same variable run in registration order. The returned
// function removes the registration.
func (e *Evaluator) Watch(v *linsys.Var, fn Callback) (cancel func()) {
	e.nextWatch++
	id := e.nextWatch
	e.watchers[v] = append(e.watchers[v], watcher{id: id, fn: fn})
	return func() {
		e.watchers[v] = slices.DeleteFunc(e.watchers[v], func(w watcher) bool { return w.id == id })
		if len(e.watchers[v]) == 0 {
			delete(e.watchers, v)
		}
	}
}

// Set is Update with a single value.
func (e *Evaluator) Set(v *linsys.Var, value float64) error {
	return e.Update(map[*linsys.Var]float64{v: value})
}

// Flash pulses v: it is set to 1 and then back to 0, producing two rounds of
// notifications.
func (e *Evaluator) Flash(v *linsys.Var) error {
	if err := e.Set(v, 1); err != nil {
		return err
	}
	return e.Set(v, 0)
}

// Update assigns new values to free variables and re-evaluates the system.
//
// Every key must be free (NOT_FREE otherwise). Only the dependency closure of
// the keys is evicted from the results cache; every variable is then
// evaluated again, and watchers of variables whose value changed are called
// in variable order. On failure the results cache is restored and no watcher
// runs. Calling Update while another Update is running, including from a
// watcher, fails with REENTRANT_UPDATE.
func (e *Evaluator) Update(values map[*linsys.Var]float64) (err error) {
	if e.updating {
		return gerrors.New(gerrors.ErrCodeReentrantUpdate, "update called while an update is in progress")
	}
	if _, ok := values[nil]; ok {
		return gerrors.New(gerrors.ErrCodeNotFree, "nil is not a free variable")
	}
	keys := slices.Collect(maps.Keys(values))
	slices.SortFunc(keys, func(a, b *linsys.Var) int { return int(a.ID()) - int(b.ID()) })
	for _, v := range keys {
		if !e.sol.IsFree(v) {
			return gerrors.ForVar(gerrors.ErrCodeNotFree, v.Name(), "%s is not a free variable", v.Name())
		}
	}

	e.updating = true
	defer func() { e.updating = false }()

	start := time.Now()
	var invalidated, changed int
	defer func() {
		e.hooks.OnUpdate(e.id, len(values), invalidated, changed, time.Since(start), err)
	}()

	before := maps.Clone(e.results)
	for _, f := range keys {
		for _, v := range e.closure[f] {
			if _, ok := e.results[v]; ok {
				invalidated++
				delete(e.results, v)
			}
		}
	}
	for _, f := range keys {
		e.results[f] = values[f]
	}

	for _, v := range e.vars {
		if _, err := e.eval(v, make(map[*linsys.Var]bool)); err != nil {
			e.results = before
			e.logger.Debug("update failed", "id", e.id, "err", err)
			return err
		}
	}

	var notify []*linsys.Var
	for _, v := range e.vars {
		now := e.results[v]
		if old, had := before[v]; !had || old != now {
			changed++
			if len(e.watchers[v]) > 0 {
				notify = append(notify, v)
			}
		}
	}
	e.logger.Debug("update", "id", e.id, "supplied", len(values),
		"invalidated", invalidated, "changed", changed)

	for _, v := range notify {
		now := e.results[v]
		for _, w := range slices.Clone(e.watchers[v]) {
			e.hooks.OnNotify(e.id, v.Name(), now)
			w.fn(now)
		}
	}
	return nil
}

// eval returns the value of v, computing and caching it if needed. active
// holds the variables currently being evaluated on this path.
func (e *Evaluator) eval(v *linsys.Var, active map[*linsys.Var]bool) (float64, error) {
	if x, ok := e.results[v]; ok {
		return x, nil
	}
	def, defined := e.sol.Definition(v)
	if !defined {
		x, err := e.freeValue(v)
		if err != nil {
			return 0, err
		}
		e.results[v] = x
		return x, nil
	}
	if active[v] {
		return 0, gerrors.ForVar(gerrors.ErrCodeCyclicDependency, v.Name(),
			"cyclic dependency found, var = %s", v.Name())
	}
	active[v] = true
	x, err := linsys.Evaluate(def, func(d *linsys.Var) (float64, error) {
		return e.eval(d, active)
	})
	delete(active, v)
	if err != nil {
		return 0, err
	}
	e.results[v] = x
	return x, nil
}

func (e *Evaluator) freeValue(v *linsys.Var) (float64, error) {
	if !e.sol.Has(v) {
		return 0, gerrors.ForVar(gerrors.ErrCodeUnknownVariable, v.Name(), "%s is not part of the system", v.Name())
	}
	if x, ok := v.Default(); ok {
		return x, nil
	}
	if x, ok := e.kindDefaults[v.Kind()]; ok {
		return x, nil
	}
	return 0, gerrors.ForVar(gerrors.ErrCodeMissingValue, v.Name(), "no value for free variable %s", v.Name())
}
