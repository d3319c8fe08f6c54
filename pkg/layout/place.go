package layout

import (
	gerrors "github.com/matzehuels/gremlin/pkg/errors"
	"github.com/matzehuels/gremlin/pkg/linsys"
)

// Valuer reads concrete variable values; *solver.Evaluator implements it.
type Valuer interface {
	Value(v *linsys.Var) (float64, bool)
}

// Block is a node placed at absolute coordinates.
type Block struct {
	Node   *Node
	X, Y   float64
	Width  float64
	Height float64
	Depth  int
}

// Place computes the absolute position and size of every node, in pre-order,
// with the root at the origin. It fails with MISSING_VALUE if a size or
// offset has not been resolved.
func Place(root *Node, vals Valuer) ([]Block, error) {
	var out []Block
	err := place(root, vals, 0, 0, 0, &out)
	return out, err
}

func place(n *Node, vals Valuer, x, y float64, depth int, out *[]Block) error {
	w, err := value(vals, n.w)
	if err != nil {
		return err
	}
	h, err := value(vals, n.h)
	if err != nil {
		return err
	}
	*out = append(*out, Block{Node: n, X: x, Y: y, Width: w, Height: h, Depth: depth})

	for _, c := range n.children {
		off, err := value(vals, n.Offset(c))
		if err != nil {
			return err
		}
		cx, cy := x+off, y
		if n.kind == KindColumn {
			cx, cy = x, y+off
		}
		if err := place(c, vals, cx, cy, depth+1, out); err != nil {
			return err
		}
	}
	return nil
}

func value(vals Valuer, v *linsys.Var) (float64, error) {
	x, ok := vals.Value(v)
	if !ok {
		return 0, gerrors.ForVar(gerrors.ErrCodeMissingValue, v.Name(), "%s has no value", v.Name())
	}
	return x, nil
}
