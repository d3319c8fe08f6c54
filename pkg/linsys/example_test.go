package linsys_test

import (
	"fmt"

	"github.com/matzehuels/gremlin/pkg/linsys"
)

func ExampleSystem_Solve() {
	// Two labels share a width w; the row is as wide as both.
	a := linsys.NewArena()
	w := a.Var("w", linsys.KindNone)
	w1 := a.Var("w1", linsys.KindCons)
	w2 := a.Var("w2", linsys.KindCons)
	row := a.Var("row", linsys.KindCons)

	sys := linsys.NewSystem(
		linsys.Eq(w1, w),
		linsys.Eq(w2, w),
		linsys.Eq(row, linsys.Add(w1, w2)),
	)
	sol, _ := sys.Solve(linsys.ByKind(sys.Variables()))

	fmt.Println(sol)
	fmt.Println("free:", sol.Free())
	// Output:
	// w1 = w
	// w2 = w
	// row = w1 + w2
	// free: [w]
}

func ExampleEvaluate() {
	a := linsys.NewArena()
	w := a.Var("w", linsys.KindNone)

	v, _ := linsys.Evaluate(linsys.Scale(3, w), linsys.MapLookup(map[*linsys.Var]float64{w: 40}))
	fmt.Println(v)
	// Output:
	// 120
}
