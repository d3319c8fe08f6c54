package layout

import (
	"cmp"
	"slices"

	gerrors "github.com/matzehuels/gremlin/pkg/errors"
	"github.com/matzehuels/gremlin/pkg/linsys"
)

func invalidLayout(format string, args ...any) error {
	return gerrors.New(gerrors.ErrCodeInvalidLayout, format, args...)
}

// Constraints compiles the tree rooted at n into equations. A node's own pins
// come first, then its children's equations, then the container equations.
//
// An empty container has total 0 and no cross-axis equation, so its size
// along the axis is just its scroll slack.
func Constraints(n *Node) ([]linsys.Equation, error) {
	var eqs []linsys.Equation
	if err := n.collect(&eqs); err != nil {
		return nil, err
	}
	return eqs, nil
}

// Signals returns the action variables of every leaf in the tree rooted at n,
// sorted by id. Unbound signals are referenced by no equation, so the
// compiled system declares them to keep them free.
func Signals(n *Node) []*linsys.Var {
	var out []*linsys.Var
	n.Walk(func(m *Node) {
		for _, sig := range m.signals {
			out = append(out, sig)
		}
	})
	slices.SortFunc(out, func(a, b *linsys.Var) int { return cmp.Compare(a.ID(), b.ID()) })
	return out
}

func (n *Node) collect(eqs *[]linsys.Equation) error {
	if n.wc != nil {
		*eqs = append(*eqs, linsys.Eq(n.w, n.wc))
	}
	if n.hc != nil {
		*eqs = append(*eqs, linsys.Eq(n.h, n.hc))
	}
	for _, k := range n.attrKeys {
		sig, v := n.signals[k], n.attrs[k]
		if sig == nil || v == nil {
			continue
		}
		e, err := linsys.AsExpr(v)
		if err != nil {
			return invalidLayout("%s %s: %v", n.kind, k, err)
		}
		*eqs = append(*eqs, linsys.Eq(sig, e))
	}

	if !n.kind.IsContainer() {
		return nil
	}
	for _, c := range n.children {
		if err := c.collect(eqs); err != nil {
			return err
		}
	}

	along, across := (*Node).Width, (*Node).Height
	if n.kind == KindColumn {
		along, across = across, along
	}

	var before []linsys.Expr
	for _, c := range n.children {
		*eqs = append(*eqs, linsys.Eq(n.Offset(c), linsys.Total(before)))
		before = append(before, along(c))
	}
	*eqs = append(*eqs,
		linsys.Eq(n.total, linsys.Total(before)),
		linsys.Eq(along(n), linsys.Add(n.total, n.scroll)),
	)
	for _, c := range n.children {
		*eqs = append(*eqs, linsys.Eq(across(n), linsys.Add(across(c), n.Padding(c))))
	}
	return nil
}
