package linsys

import (
	"cmp"
	"math"
	"slices"
	"strings"

	gerrors "github.com/matzehuels/gremlin/pkg/errors"
)

// System is an ordered, growable list of equations.
//
// The zero value is an empty system ready for use. System is not safe for
// concurrent use.
type System struct {
	eqs   []Equation
	decls []*Var
}

// NewSystem creates a system holding eqs in order.
func NewSystem(eqs ...Equation) *System {
	return &System{eqs: slices.Clone(eqs)}
}

// Append adds equations to the end of the system. Several equations may
// target the same variable; see [System.Solve] for how they are reconciled.
func (s *System) Append(eqs ...Equation) {
	s.eqs = append(s.eqs, eqs...)
}

// AppendStrict adds eq unless another equation already targets the same
// variable, in which case it fails with DUPLICATE_DEFINITION.
func (s *System) AppendStrict(eq Equation) error {
	for _, q := range s.eqs {
		if q.Target == eq.Target {
			return gerrors.ForVar(gerrors.ErrCodeDuplicateDefinition, eq.Target.name,
				"%s is already defined by %s", eq.Target.name, q)
		}
	}
	s.eqs = append(s.eqs, eq)
	return nil
}

// Declare adds variables to the system without an equation. A declared
// variable that no equation defines is free.
func (s *System) Declare(vars ...*Var) {
	s.decls = append(s.decls, vars...)
}

// Equations returns a copy of the equations in append order.
func (s *System) Equations() []Equation { return slices.Clone(s.eqs) }

// Len returns the number of equations.
func (s *System) Len() int { return len(s.eqs) }

// Variables returns every declared variable and every variable referenced by
// any equation, as a target or anywhere inside an expression, sorted by id.
func (s *System) Variables() []*Var {
	seen := make(map[*Var]bool)
	var out []*Var
	add := func(v *Var) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range s.decls {
		if v != nil {
			add(v)
		}
	}
	for _, q := range s.eqs {
		add(q.Target)
		for _, v := range Vars(q.Expr) {
			add(v)
		}
	}
	byID(out)
	return out
}

// String lists the equations one per line.
func (s *System) String() string {
	lines := make([]string, len(s.eqs))
	for i, q := range s.eqs {
		lines[i] = q.String()
	}
	return strings.Join(lines, "\n")
}

// Solve partitions the system's variables into defined and free ones.
//
// Variables are visited in order (variables of the system missing from order
// are visited last, in [ByKind] order). Each visited variable takes the first
// equation targeting it; its expression is stored as-is, so a definition may
// refer to other defined variables and cycles between definitions surface
// only at evaluation time.
//
// Every equation whose target was already taken is a residual. Residuals are
// processed in append order: each is expanded over the current free
// variables and rearranged to define the free variable that comes first in
// order. A residual that expands to 0 = 0 is redundant and dropped; one that
// expands to 0 = c with c != 0 fails with INCONSISTENT_SYSTEM.
func (s *System) Solve(order []*Var) (*Solution, error) {
	vars := s.Variables()
	rank := make(map[*Var]int, len(vars))
	inSystem := make(map[*Var]bool, len(vars))
	for _, v := range vars {
		inSystem[v] = true
	}

	var visit []*Var
	for _, v := range order {
		if inSystem[v] {
			if _, dup := rank[v]; !dup {
				rank[v] = len(visit)
				visit = append(visit, v)
			}
		}
	}
	for _, v := range ByKind(vars) {
		if _, ok := rank[v]; !ok {
			rank[v] = len(visit)
			visit = append(visit, v)
		}
	}

	byTarget := make(map[*Var][]int)
	for i, q := range s.eqs {
		byTarget[q.Target] = append(byTarget[q.Target], i)
	}

	sol := &Solution{
		vars:    vars,
		defs:    make(map[*Var]Expr),
		pivoted: make(map[*Var]bool),
	}
	consumed := make([]bool, len(s.eqs))
	for _, v := range visit {
		if idx := byTarget[v]; len(idx) > 0 {
			consumed[idx[0]] = true
			sol.defs[v] = s.eqs[idx[0]].Expr
		}
	}

	for i, q := range s.eqs {
		if consumed[i] {
			continue
		}
		if err := sol.reconcile(q, rank); err != nil {
			return nil, err
		}
	}
	return sol, nil
}

// reconcile pivots a residual equation onto its highest-priority free
// variable.
func (sol *Solution) reconcile(q Equation, rank map[*Var]int) error {
	z := newLinearizer(sol.defs)
	lhs, err := z.expr(q.Target)
	if err != nil {
		return err
	}
	rhs, err := z.expr(q.Expr)
	if err != nil {
		return err
	}
	form := newLinear()
	form.addScaled(lhs, ratOne())
	form.addScaled(rhs, ratMinusOne())

	if form.isConst() {
		if k := form.residualConstant(); math.Abs(k) > inconsistencyTolerance {
			return gerrors.ForVar(gerrors.ErrCodeInconsistent, q.Target.name,
				"equation %s reduces to 0 = %g", q, k)
		}
		sol.redundant++
		return nil
	}

	var pivot *Var
	for v := range form.coef {
		if pivot == nil || rank[v] < rank[pivot] {
			pivot = v
		}
	}
	sol.defs[pivot] = form.solveFor(pivot)
	sol.pivoted[pivot] = true
	return nil
}

// Solution maps every variable of a solved system to either a defining
// expression or the free marker. Free variables keep their kind and default
// on the [Var] itself.
type Solution struct {
	vars      []*Var
	defs      map[*Var]Expr
	pivoted   map[*Var]bool
	redundant int
}

// Vars returns every variable of the system, sorted by id.
func (sol *Solution) Vars() []*Var { return slices.Clone(sol.vars) }

// Has reports whether v belongs to the solved system. A variable from another
// arena that happens to share an id does not.
func (sol *Solution) Has(v *Var) bool {
	if v == nil {
		return false
	}
	i, ok := slices.BinarySearchFunc(sol.vars, v.id, func(a *Var, id VarID) int { return cmp.Compare(a.id, id) })
	return ok && sol.vars[i] == v
}

// IsFree reports whether v has no defining equation. Variables that are not
// part of the system are not free.
func (sol *Solution) IsFree(v *Var) bool {
	if !sol.Has(v) {
		return false
	}
	_, defined := sol.defs[v]
	return !defined
}

// Definition returns the expression defining v.
func (sol *Solution) Definition(v *Var) (Expr, bool) {
	e, ok := sol.defs[v]
	return e, ok
}

// Free returns the free variables sorted by id.
func (sol *Solution) Free() []*Var {
	var out []*Var
	for _, v := range sol.vars {
		if _, ok := sol.defs[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

// Defined returns the defined variables sorted by id.
func (sol *Solution) Defined() []*Var {
	var out []*Var
	for _, v := range sol.vars {
		if _, ok := sol.defs[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Pivoted returns the variables defined by rearranging a residual equation.
func (sol *Solution) Pivoted() []*Var {
	var out []*Var
	for _, v := range sol.vars {
		if sol.pivoted[v] {
			out = append(out, v)
		}
	}
	return out
}

// Redundant returns how many residual equations reduced to 0 = 0.
func (sol *Solution) Redundant() int { return sol.redundant }

// String lists "name = expr" for every defined variable, in id order.
func (sol *Solution) String() string {
	var lines []string
	for _, v := range sol.Defined() {
		lines = append(lines, v.name+" = "+sol.defs[v].String())
	}
	return strings.Join(lines, "\n")
}
