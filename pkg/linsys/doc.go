// Package linsys provides the algebra gremlin's layout constraints are built
// from: variables, linear expressions, equations, and a symbolic solver that
// partitions a system of equations into defined and free variables.
//
// # Variables
//
// A [Var] has an identity handed out by an [Arena] (sequential, never
// reused), a [Kind] and an optional default. Kinds are ordered; the order is
// the solving priority used by [ByKind]: variables that come first are the
// ones the solver prefers to define, variables that come last are the ones it
// prefers to leave free for the caller to supply.
//
//	a := linsys.NewArena()
//	w := a.Var("w", linsys.KindNone)
//	h := a.VarWithDefault("h", linsys.KindInput, 24)
//
// # Expressions
//
// Expressions are immutable trees of constants, variables, sums and products:
//
//	e := linsys.Add(w, linsys.Scale(3, h), linsys.Const(2))
//	v, err := linsys.Evaluate(e, linsys.MapLookup(values))
//
// # Solving
//
// A [System] is an ordered list of [Equation]s, each of the form
// target = expression. [System.Solve] walks a caller-supplied order and gives
// each variable the first equation that targets it, keeping its expression
// unexpanded. Equations whose target was already taken (a container pins its
// height once per child) are reconciled afterwards by pivoting them onto the
// highest-priority free variable they mention. Anything left without an
// equation is free.
//
//	sys := linsys.NewSystem(linsys.Eq(x, linsys.Add(y, linsys.Const(1))))
//	sol, err := sys.Solve(linsys.ByKind(sys.Variables()))
//	sol.IsFree(y) // true
package linsys
