// Package layout builds user interfaces as constraint systems.
//
// A layout is a tree of nodes. Leaves (labels, buttons, lists, spacers, ...)
// carry attributes; containers arrange their children along an axis: a row
// horizontally, a column vertically. Every node has a width and a height
// variable, and the tree compiles into linear equations over those variables
// (see [Constraints]) that [Solve] turns into a live [solver.Evaluator].
//
// # Building trees
//
// Nodes are created by a [Builder], which owns the variable arena for the
// tree:
//
//	b := layout.NewBuilder()
//	w := b.Var("w")
//	form := b.Column(
//	    b.Row(b.Label("Name").WithSize(w, nil), b.Input("")),
//	    b.Row(b.Label("Email").WithSize(w, nil), b.Input("")),
//	    b.Button("Submit"),
//	)
//
// Combining nodes flattens: Row(Row(a, b), c) and Row(a, Row(b, c)) both
// produce a single row with children [a, b, c]. Offsets are computed per
// flattened sibling list, so the flattening rule shapes the equations.
//
// # Equations
//
// For a row with children c1..cn (a column swaps width and height):
//
//	_o<ci>  = c1.w + ... + c(i-1).w      offset of each child
//	_t<row> = c1.w + ... + cn.w          total extent
//	_w<row> = _t<row> + _s<row>          scroll slack, padding
//	_h<row> = ci.h + _p<ci>              one per child, padding
//
// Free padding variables evaluate to 0 unless supplied.
package layout
