package linsys

import (
	"fmt"
	"strconv"

	gerrors "github.com/matzehuels/gremlin/pkg/errors"
)

// Expr is an immutable expression tree. The concrete forms are [Const],
// *[Var], [Sum] and [Product].
type Expr interface {
	String() string
	exprNode()
}

// Const is a numeric literal.
type Const float64

// String formats the constant in the shortest exact form.
func (c Const) String() string { return strconv.FormatFloat(float64(c), 'g', -1, 64) }

func (Const) exprNode() {}

// Sum is the binary sum L + R.
type Sum struct{ L, R Expr }

// String formats the sum in infix form.
func (s Sum) String() string { return s.L.String() + " + " + s.R.String() }

func (Sum) exprNode() {}

// Product is the binary product L * R. The solver only accepts products
// where at least one side is constant; the evaluator accepts any product.
type Product struct{ L, R Expr }

// String formats the product, parenthesizing sums.
func (p Product) String() string { return factor(p.L) + "*" + factor(p.R) }

func (Product) exprNode() {}

func factor(e Expr) string {
	if _, ok := e.(Sum); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

// Add sums one or more expressions left to right.
func Add(first Expr, rest ...Expr) Expr {
	out := first
	for _, e := range rest {
		out = Sum{L: out, R: e}
	}
	return out
}

// Total sums a slice of expressions; the total of nothing is Const(0).
func Total(exprs []Expr) Expr {
	if len(exprs) == 0 {
		return Const(0)
	}
	return Add(exprs[0], exprs[1:]...)
}

// Mul returns l * r.
func Mul(l, r Expr) Expr { return Product{L: l, R: r} }

// Scale returns k * e.
func Scale(k float64, e Expr) Expr { return Product{L: Const(k), R: e} }

// Neg returns -1 * e.
func Neg(e Expr) Expr { return Scale(-1, e) }

// Sub returns l + -1*r.
func Sub(l, r Expr) Expr { return Sum{L: l, R: Neg(r)} }

// Vars returns the variables referenced by e, each once, in first-seen order.
func Vars(e Expr) []*Var {
	var out []*Var
	seen := make(map[*Var]bool)
	var walk func(Expr)
	walk = func(e Expr) {
		switch e := e.(type) {
		case *Var:
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		case Sum:
			walk(e.L)
			walk(e.R)
		case Product:
			walk(e.L)
			walk(e.R)
		}
	}
	walk(e)
	return out
}

// Lookup resolves a variable to a number during evaluation.
type Lookup func(v *Var) (float64, error)

// MapLookup returns a Lookup backed by a map. Variables absent from the map
// fail with UNRESOLVED_VARIABLE.
func MapLookup(values map[*Var]float64) Lookup {
	return func(v *Var) (float64, error) {
		if x, ok := values[v]; ok {
			return x, nil
		}
		return 0, gerrors.ForVar(gerrors.ErrCodeUnresolvedVariable, v.name, "no value for %s", v.name)
	}
}

// Evaluate resolves e to a number. Errors returned by lookup are passed
// through unchanged.
func Evaluate(e Expr, lookup Lookup) (float64, error) {
	switch e := e.(type) {
	case Const:
		return float64(e), nil
	case *Var:
		if lookup == nil {
			return 0, gerrors.ForVar(gerrors.ErrCodeUnresolvedVariable, e.name, "no value for %s", e.name)
		}
		return lookup(e)
	case Sum:
		l, err := Evaluate(e.L, lookup)
		if err != nil {
			return 0, err
		}
		r, err := Evaluate(e.R, lookup)
		if err != nil {
			return 0, err
		}
		return l + r, nil
	case Product:
		l, err := Evaluate(e.L, lookup)
		if err != nil {
			return 0, err
		}
		r, err := Evaluate(e.R, lookup)
		if err != nil {
			return 0, err
		}
		return l * r, nil
	case nil:
		return 0, gerrors.New(gerrors.ErrCodeInternal, "nil expression")
	default:
		return 0, gerrors.New(gerrors.ErrCodeInternal, "unknown expression %T", e)
	}
}

// AsExpr converts a literal or expression into an Expr. Booleans map to 1
// and 0, which is how checked and clicked states are pinned.
func AsExpr(v any) (Expr, error) {
	switch v := v.(type) {
	case Expr:
		return v, nil
	case float64:
		return Const(v), nil
	case float32:
		return Const(v), nil
	case int:
		return Const(v), nil
	case int64:
		return Const(v), nil
	case bool:
		if v {
			return Const(1), nil
		}
		return Const(0), nil
	default:
		return nil, fmt.Errorf("cannot use %T as an expression", v)
	}
}

// Equation asserts Target = Expr.
type Equation struct {
	Target *Var
	Expr   Expr
}

// Eq builds an equation.
func Eq(target *Var, e Expr) Equation { return Equation{Target: target, Expr: e} }

// String formats the equation as "target = expr".
func (q Equation) String() string { return q.Target.String() + " = " + q.Expr.String() }
