package linsys

import (
	"math"
	"math/big"

	gerrors "github.com/matzehuels/gremlin/pkg/errors"
)

// inconsistencyTolerance absorbs float64 representation error when a residual
// equation reduces to a constant (0.1 + 0.2 pinned against 0.3).
const inconsistencyTolerance = 1e-9

// linear is an exact linear form sum(coef[v]*v) + k.
type linear struct {
	coef map[*Var]*big.Rat
	k    *big.Rat
}

func newLinear() *linear {
	return &linear{coef: make(map[*Var]*big.Rat), k: new(big.Rat)}
}

func ratOf(x float64) (*big.Rat, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil, gerrors.New(gerrors.ErrCodeInvalidInput, "non-finite constant %v", x)
	}
	return new(big.Rat).SetFloat64(x), nil
}

// addScaled adds s*o to l.
func (l *linear) addScaled(o *linear, s *big.Rat) {
	for v, c := range o.coef {
		term := new(big.Rat).Mul(c, s)
		if cur, ok := l.coef[v]; ok {
			cur.Add(cur, term)
			if cur.Sign() == 0 {
				delete(l.coef, v)
			}
		} else if term.Sign() != 0 {
			l.coef[v] = term
		}
	}
	l.k.Add(l.k, new(big.Rat).Mul(o.k, s))
}

func (l *linear) isConst() bool { return len(l.coef) == 0 }

// linearizer expands expressions over free variables by substituting the
// current definitions. A fresh linearizer is used for every residual so the
// memo never outlives a change to the definitions.
type linearizer struct {
	defs   map[*Var]Expr
	memo   map[*Var]*linear
	active map[*Var]bool
}

func newLinearizer(defs map[*Var]Expr) *linearizer {
	return &linearizer{
		defs:   defs,
		memo:   make(map[*Var]*linear),
		active: make(map[*Var]bool),
	}
}

func (z *linearizer) expr(e Expr) (*linear, error) {
	switch e := e.(type) {
	case Const:
		r, err := ratOf(float64(e))
		if err != nil {
			return nil, err
		}
		out := newLinear()
		out.k.Set(r)
		return out, nil
	case *Var:
		return z.variable(e)
	case Sum:
		l, err := z.expr(e.L)
		if err != nil {
			return nil, err
		}
		r, err := z.expr(e.R)
		if err != nil {
			return nil, err
		}
		out := newLinear()
		one := ratOne()
		out.addScaled(l, one)
		out.addScaled(r, one)
		return out, nil
	case Product:
		l, err := z.expr(e.L)
		if err != nil {
			return nil, err
		}
		r, err := z.expr(e.R)
		if err != nil {
			return nil, err
		}
		switch {
		case l.isConst():
			out := newLinear()
			out.addScaled(r, l.k)
			return out, nil
		case r.isConst():
			out := newLinear()
			out.addScaled(l, r.k)
			return out, nil
		default:
			return nil, gerrors.New(gerrors.ErrCodeNonlinear, "product of two variable expressions: %s", e)
		}
	default:
		return nil, gerrors.New(gerrors.ErrCodeInternal, "unknown expression %T", e)
	}
}

func (z *linearizer) variable(v *Var) (*linear, error) {
	if l, ok := z.memo[v]; ok {
		return l, nil
	}
	def, defined := z.defs[v]
	if !defined {
		out := newLinear()
		out.coef[v] = big.NewRat(1, 1)
		z.memo[v] = out
		return out, nil
	}
	if z.active[v] {
		return nil, gerrors.ForVar(gerrors.ErrCodeCyclicDependency, v.name, "cyclic dependency found, var = %s", v.name)
	}
	z.active[v] = true
	out, err := z.expr(def)
	delete(z.active, v)
	if err != nil {
		return nil, err
	}
	z.memo[v] = out
	return out, nil
}

// solveFor rearranges l = 0 for v, returning the defining expression.
// Terms are emitted in id order so the result is deterministic.
func (l *linear) solveFor(v *Var) Expr {
	c := l.coef[v]
	inv := new(big.Rat).Neg(new(big.Rat).Inv(c))

	others := make([]*Var, 0, len(l.coef))
	for o := range l.coef {
		if o != v {
			others = append(others, o)
		}
	}
	byID(others)

	var terms []Expr
	for _, o := range others {
		k, _ := new(big.Rat).Mul(l.coef[o], inv).Float64()
		if k == 1 {
			terms = append(terms, o)
		} else {
			terms = append(terms, Scale(k, o))
		}
	}
	if l.k.Sign() != 0 {
		k, _ := new(big.Rat).Mul(l.k, inv).Float64()
		terms = append(terms, Const(k))
	}
	return Total(terms)
}

func (l *linear) residualConstant() float64 {
	k, _ := l.k.Float64()
	return k
}

func ratOne() *big.Rat      { return big.NewRat(1, 1) }
func ratMinusOne() *big.Rat { return big.NewRat(-1, 1) }
