package solver

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	gerrors "github.com/matzehuels/gremlin/pkg/errors"
	"github.com/matzehuels/gremlin/pkg/linsys"
	"github.com/matzehuels/gremlin/pkg/observability"
)

func mustSolve(t *testing.T, eqs ...linsys.Equation) *Evaluator {
	t.Helper()
	ev, err := Solve(linsys.NewSystem(eqs...), nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	return ev
}

func TestCyclicDependency(t *testing.T) {
	a := linsys.NewArena()
	x := a.Var("x", linsys.KindNone)
	y := a.Var("y", linsys.KindNone)

	_, err := Solve(linsys.NewSystem(
		linsys.Eq(x, linsys.Add(y, linsys.Const(1))),
		linsys.Eq(y, linsys.Add(x, linsys.Const(1))),
	), nil)
	if !gerrors.Is(err, gerrors.ErrCodeCyclicDependency) {
		t.Fatalf("err = %v, want CYCLIC_DEPENDENCY", err)
	}
	if name := gerrors.GetVar(err); name != "x" && name != "y" {
		t.Errorf("offending var = %q, want x or y", name)
	}
}

func TestPaddingDefaultsToZero(t *testing.T) {
	a := linsys.NewArena()
	w := a.Var("w", linsys.KindCons)
	t1 := a.Var("t", linsys.KindCons)
	s := a.Var("s", linsys.KindPadding)

	ev := mustSolve(t,
		linsys.Eq(t1, linsys.Const(40)),
		linsys.Eq(w, linsys.Add(t1, s)),
	)
	if got, ok := ev.Value(s); !ok || got != 0 {
		t.Errorf("padding = %v (%v), want 0", got, ok)
	}
	if got := ev.MustValue(w); got != 40 {
		t.Errorf("w = %v, want 40", got)
	}
	if len(ev.Missing()) != 0 {
		t.Errorf("Missing() = %v, want none", ev.Missing())
	}
}

func TestUnresolvedUntilSupplied(t *testing.T) {
	a := linsys.NewArena()
	in := a.Var("in", linsys.KindInput)
	out := a.Var("out", linsys.KindCons)

	ev := mustSolve(t, linsys.Eq(out, linsys.Scale(2, in)))
	if _, ok := ev.Value(out); ok {
		t.Fatal("out should be unresolved before in is supplied")
	}
	if diff := cmp.Diff([]string{"in"}, names(ev.Missing())); diff != "" {
		t.Errorf("Missing() mismatch (-want +got):\n%s", diff)
	}
	if err := ev.Set(in, 21); err != nil {
		t.Fatal(err)
	}
	if got := ev.MustValue(out); got != 42 {
		t.Errorf("out = %v, want 42", got)
	}
}

func TestIdenticalUpdateDoesNotNotify(t *testing.T) {
	a := linsys.NewArena()
	in := a.Var("in", linsys.KindInput)
	out := a.Var("out", linsys.KindCons)
	ev := mustSolve(t, linsys.Eq(out, linsys.Add(in, linsys.Const(1))))

	var calls []float64
	ev.Watch(out, func(v float64) { calls = append(calls, v) })

	values := map[*linsys.Var]float64{in: 9}
	for range 2 {
		if err := ev.Update(values); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff([]float64{10}, calls); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestFlash(t *testing.T) {
	a := linsys.NewArena()
	clicked := a.VarWithDefault("_clicked1", linsys.KindAction, 0)
	shown := a.Var("shown", linsys.KindUser)
	ev := mustSolve(t, linsys.Eq(shown, clicked))

	var got []float64
	ev.Watch(shown, func(v float64) { got = append(got, v) })
	if err := ev.Flash(clicked); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{1, 0}, got); diff != "" {
		t.Errorf("flash notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestWatchersRunInRegistrationOrder(t *testing.T) {
	a := linsys.NewArena()
	in := a.Var("in", linsys.KindInput)
	ev := mustSolve(t, linsys.Eq(a.Var("out", linsys.KindCons), in))

	var order []string
	ev.Watch(in, func(float64) { order = append(order, "first") })
	cancel := ev.Watch(in, func(float64) { order = append(order, "second") })
	ev.Watch(in, func(float64) { order = append(order, "third") })

	if err := ev.Set(in, 1); err != nil {
		t.Fatal(err)
	}
	cancel()
	if err := ev.Set(in, 2); err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third", "first", "third"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestClosurePrecision(t *testing.T) {
	a := linsys.NewArena()
	f1 := a.Var("f1", linsys.KindInput)
	f2 := a.Var("f2", linsys.KindInput)
	x := a.Var("x", linsys.KindCons)
	y := a.Var("y", linsys.KindCons)
	z := a.Var("z", linsys.KindCons)
	ev := mustSolve(t,
		linsys.Eq(x, f1),
		linsys.Eq(y, f2),
		linsys.Eq(z, linsys.Add(x, y)),
	)
	if err := ev.Update(map[*linsys.Var]float64{f1: 1, f2: 2}); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"x", "z"}, names(ev.Dependents(f1))); diff != "" {
		t.Errorf("Dependents(f1) mismatch (-want +got):\n%s", diff)
	}

	xCalls, zCalls := 0, 0
	ev.Watch(x, func(float64) { xCalls++ })
	ev.Watch(z, func(float64) { zCalls++ })
	if err := ev.Set(f2, 5); err != nil {
		t.Fatal(err)
	}
	if xCalls != 0 {
		t.Errorf("x notified %d times, want 0", xCalls)
	}
	if zCalls != 1 || ev.MustValue(z) != 6 {
		t.Errorf("z = %v after %d notifications, want 6 after 1", ev.MustValue(z), zCalls)
	}
}

func TestUpdateNotFree(t *testing.T) {
	a := linsys.NewArena()
	in := a.Var("in", linsys.KindInput)
	out := a.Var("out", linsys.KindCons)
	stranger := a.Var("stranger", linsys.KindNone)
	ev := mustSolve(t, linsys.Eq(out, in))

	for _, v := range []*linsys.Var{out, stranger} {
		err := ev.Set(v, 1)
		if !gerrors.Is(err, gerrors.ErrCodeNotFree) {
			t.Errorf("Set(%s) err = %v, want NOT_FREE", v, err)
		}
	}
	if !ev.IsFree(in) || ev.IsFree(out) || ev.IsFree(stranger) {
		t.Error("IsFree mismatch")
	}
	if diff := cmp.Diff([]string{"in"}, names(ev.FreeVariables())); diff != "" {
		t.Errorf("FreeVariables mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateRejectsForeignAndNilVars(t *testing.T) {
	a := linsys.NewArena()
	x := a.VarWithDefault("x", linsys.KindInput, 2)
	y := a.Var("y", linsys.KindNone)
	ev := mustSolve(t, linsys.Eq(y, linsys.Add(x, linsys.Const(1))))

	other := linsys.NewArena().Var("other", linsys.KindInput)
	if err := ev.Set(other, 5); !gerrors.Is(err, gerrors.ErrCodeNotFree) {
		t.Errorf("Set(other) err = %v, want NOT_FREE", err)
	}
	if err := ev.Update(map[*linsys.Var]float64{nil: 1}); !gerrors.Is(err, gerrors.ErrCodeNotFree) {
		t.Errorf("Update(nil) err = %v, want NOT_FREE", err)
	}
	if _, ok := ev.Snapshot()[other]; ok {
		t.Error("a rejected variable should not be cached")
	}
	if got := ev.MustValue(y); got != 3 {
		t.Errorf("y = %v, want 3", got)
	}
}

type solveCounter struct {
	observability.NoopSolverHooks
	solves int
}

func (c *solveCounter) OnSolve(int, int, time.Duration, error) { c.solves++ }

func TestSolveReportsToOptionHooks(t *testing.T) {
	a := linsys.NewArena()
	x := a.Var("x", linsys.KindInput)
	y := a.Var("y", linsys.KindNone)

	hooks := &solveCounter{}
	if _, err := Solve(linsys.NewSystem(linsys.Eq(y, x)), nil, WithHooks(hooks)); err != nil {
		t.Fatal(err)
	}
	if hooks.solves != 1 {
		t.Errorf("OnSolve calls = %d, want 1", hooks.solves)
	}
}

func TestReentrantUpdate(t *testing.T) {
	a := linsys.NewArena()
	in := a.Var("in", linsys.KindInput)
	out := a.Var("out", linsys.KindCons)
	ev := mustSolve(t, linsys.Eq(out, in))

	var inner error
	ev.Watch(out, func(float64) { inner = ev.Set(in, 100) })
	if err := ev.Set(in, 1); err != nil {
		t.Fatal(err)
	}
	if !gerrors.Is(inner, gerrors.ErrCodeReentrantUpdate) {
		t.Errorf("inner err = %v, want REENTRANT_UPDATE", inner)
	}
	if got := ev.MustValue(out); got != 1 {
		t.Errorf("out = %v, want 1", got)
	}
	if err := ev.Set(in, 2); err != nil {
		t.Errorf("update after reentrant attempt: %v", err)
	}
}

func TestFailedUpdateRollsBack(t *testing.T) {
	a := linsys.NewArena()
	f1 := a.Var("f1", linsys.KindInput)
	f2 := a.Var("f2", linsys.KindInput)
	sum := a.Var("sum", linsys.KindCons)
	ev := mustSolve(t, linsys.Eq(sum, linsys.Add(f1, f2)))

	called := false
	ev.Watch(f1, func(float64) { called = true })

	err := ev.Set(f1, 3)
	if !gerrors.Is(err, gerrors.ErrCodeMissingValue) || gerrors.GetVar(err) != "f2" {
		t.Fatalf("err = %v, want MISSING_VALUE for f2", err)
	}
	if called {
		t.Error("watcher ran on failed update")
	}
	if _, ok := ev.Value(f1); ok {
		t.Error("f1 kept a value after failed update")
	}

	if err := ev.Update(map[*linsys.Var]float64{f1: 3, f2: 4}); err != nil {
		t.Fatal(err)
	}
	if got := ev.MustValue(sum); got != 7 {
		t.Errorf("sum = %v, want 7", got)
	}
}

func TestKindDefault(t *testing.T) {
	a := linsys.NewArena()
	w := a.Var("w", linsys.KindCons)
	row := a.Var("row", linsys.KindCons)
	sys := linsys.NewSystem(linsys.Eq(row, linsys.Scale(2, w)))

	ev, err := Solve(sys, nil, WithKindDefault(linsys.KindCons, 100))
	if err != nil {
		t.Fatal(err)
	}
	if got := ev.MustValue(row); got != 200 {
		t.Errorf("row = %v, want 200", got)
	}
}

func TestToDOT(t *testing.T) {
	a := linsys.NewArena()
	in := a.Var("in", linsys.KindInput)
	out := a.Var("out", linsys.KindCons)
	ev := mustSolve(t, linsys.Eq(out, in))
	if err := ev.Set(in, 3); err != nil {
		t.Fatal(err)
	}

	dot := ev.ToDOT()
	for _, want := range []string{
		`digraph G {`,
		`"in" -> "out";`,
		`shape=ellipse`,
		`out\ncons = 3`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT missing %q:\n%s", want, dot)
		}
	}
	if ev.ID() == "" {
		t.Error("ID() is empty")
	}
}

func names(vars []*linsys.Var) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name()
	}
	return out
}
