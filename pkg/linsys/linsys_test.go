package linsys

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	gerrors "github.com/matzehuels/gremlin/pkg/errors"
)

func names(vars []*Var) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name()
	}
	return out
}

func TestArena(t *testing.T) {
	a := NewArena()
	x := a.Var("x", KindNone)
	y := a.VarWithDefault("y", KindInput, 24)
	anon := a.Var("", KindCons)

	if x.ID() != 1 || y.ID() != 2 || anon.ID() != 3 {
		t.Errorf("ids = %d, %d, %d, want 1, 2, 3", x.ID(), y.ID(), anon.ID())
	}
	if anon.Name() != "_v3" {
		t.Errorf("generated name = %q, want _v3", anon.Name())
	}
	if _, ok := x.Default(); ok {
		t.Error("x should have no default")
	}
	if d, ok := y.Default(); !ok || d != 24 {
		t.Errorf("y default = %v, %v, want 24, true", d, ok)
	}
	if got, ok := a.Lookup("y"); !ok || got != y {
		t.Error("Lookup(y) should return y")
	}
	if _, ok := a.Lookup("missing"); ok {
		t.Error("Lookup(missing) should fail")
	}
	if a.Len() != 3 {
		t.Errorf("Len() = %d, want 3", a.Len())
	}
}

func TestKind(t *testing.T) {
	for k := KindOffset; k <= KindDefault; k++ {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("bogus"); err == nil {
		t.Error("ParseKind(bogus) should fail")
	}
	if !(KindOffset < KindCons && KindCons < KindPadding && KindPadding < KindInput) {
		t.Error("kind priority order changed")
	}
}

func TestByKind(t *testing.T) {
	a := NewArena()
	in := a.Var("in", KindInput)
	pad := a.Var("pad", KindPadding)
	w := a.Var("w", KindCons)
	off := a.Var("off", KindOffset)
	h := a.Var("h", KindCons)

	got := names(ByKind([]*Var{in, pad, w, off, h}))
	want := []string{"off", "w", "h", "pad", "in"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ByKind() mismatch (-want +got):\n%s", diff)
	}
}

func TestExprString(t *testing.T) {
	a := NewArena()
	w := a.Var("w", KindNone)
	h := a.Var("h", KindNone)

	tests := []struct {
		expr Expr
		want string
	}{
		{Const(30), "30"},
		{Const(0.5), "0.5"},
		{w, "w"},
		{Add(w, h, Const(1)), "w + h + 1"},
		{Scale(3, w), "3*w"},
		{Mul(Add(w, h), Const(2)), "(w + h)*2"},
		{Sub(w, h), "w + -1*h"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.expr.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	a := NewArena()
	w := a.Var("w", KindNone)
	h := a.Var("h", KindNone)
	values := map[*Var]float64{w: 10, h: 4}

	tests := []struct {
		name string
		expr Expr
		want float64
	}{
		{"const", Const(7), 7},
		{"var", w, 10},
		{"sum", Add(w, h), 14},
		{"scale", Scale(3, w), 30},
		{"neg", Neg(h), -4},
		{"sub", Sub(w, h), 6},
		{"product of vars", Mul(w, h), 40},
		{"total empty", Total(nil), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, MapLookup(values))
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateUnresolved(t *testing.T) {
	a := NewArena()
	w := a.Var("w", KindNone)
	missing := a.Var("missing", KindNone)

	_, err := Evaluate(Add(w, missing), MapLookup(map[*Var]float64{w: 1}))
	if !gerrors.Is(err, gerrors.ErrCodeUnresolvedVariable) {
		t.Fatalf("error = %v, want UNRESOLVED_VARIABLE", err)
	}
	if gerrors.GetVar(err) != "missing" {
		t.Errorf("offending var = %q, want missing", gerrors.GetVar(err))
	}
}

func TestVars(t *testing.T) {
	a := NewArena()
	w := a.Var("w", KindNone)
	h := a.Var("h", KindNone)

	got := names(Vars(Add(h, Scale(2, w), h, Const(1))))
	if diff := cmp.Diff([]string{"h", "w"}, got); diff != "" {
		t.Errorf("Vars() mismatch (-want +got):\n%s", diff)
	}
}

func TestAsExpr(t *testing.T) {
	a := NewArena()
	w := a.Var("w", KindNone)

	tests := []struct {
		in   any
		want string
	}{
		{3, "3"},
		{2.5, "2.5"},
		{true, "1"},
		{false, "0"},
		{w, "w"},
		{Scale(2, w), "2*w"},
	}
	for _, tt := range tests {
		got, err := AsExpr(tt.in)
		if err != nil {
			t.Errorf("AsExpr(%v) error = %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("AsExpr(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := AsExpr("nope"); err == nil {
		t.Error("AsExpr(string) should fail")
	}
}

func TestSystemDeclare(t *testing.T) {
	a := NewArena()
	x := a.Var("x", KindNone)
	sig := a.VarWithDefault("sig", KindAction, 0)
	y := a.Var("y", KindNone)

	sys := NewSystem(Eq(y, Add(x, Const(1))))
	sys.Declare(sig, x, nil)
	if diff := cmp.Diff([]string{"x", "sig", "y"}, names(sys.Variables())); diff != "" {
		t.Errorf("Variables() mismatch (-want +got):\n%s", diff)
	}

	sol, err := sys.Solve(ByKind(sys.Variables()))
	if err != nil {
		t.Fatal(err)
	}
	if !sol.IsFree(sig) {
		t.Error("a declared variable with no equation should be free")
	}
	if diff := cmp.Diff([]string{"x", "sig"}, names(sol.Free())); diff != "" {
		t.Errorf("Free() mismatch (-want +got):\n%s", diff)
	}
}

func TestSolutionHasChecksIdentity(t *testing.T) {
	a := NewArena()
	x := a.Var("x", KindNone)
	y := a.Var("y", KindNone)
	sol, err := NewSystem(Eq(y, x)).Solve(nil)
	if err != nil {
		t.Fatal(err)
	}

	other := NewArena().Var("other", KindNone)
	if other.ID() != x.ID() {
		t.Fatalf("ids differ: %d, %d", other.ID(), x.ID())
	}
	if sol.Has(other) || sol.IsFree(other) {
		t.Error("a variable from another arena should not belong to the solution")
	}
	if sol.Has(nil) || sol.IsFree(nil) {
		t.Error("nil should not belong to the solution")
	}
	if !sol.Has(x) || !sol.IsFree(x) {
		t.Error("x should be a free variable of the solution")
	}
}

func TestSystemVariables(t *testing.T) {
	a := NewArena()
	x := a.Var("x", KindNone)
	y := a.Var("y", KindNone)
	z := a.Var("z", KindNone)

	sys := NewSystem(Eq(z, Add(y, Const(1))))
	sys.Append(Eq(x, Scale(2, z)))

	if diff := cmp.Diff([]string{"x", "y", "z"}, names(sys.Variables())); diff != "" {
		t.Errorf("Variables() mismatch (-want +got):\n%s", diff)
	}
	if sys.Len() != 2 {
		t.Errorf("Len() = %d, want 2", sys.Len())
	}
}

func TestAppendStrict(t *testing.T) {
	a := NewArena()
	x := a.Var("x", KindNone)

	var sys System
	if err := sys.AppendStrict(Eq(x, Const(1))); err != nil {
		t.Fatalf("first AppendStrict() error = %v", err)
	}
	err := sys.AppendStrict(Eq(x, Const(2)))
	if !gerrors.Is(err, gerrors.ErrCodeDuplicateDefinition) {
		t.Fatalf("error = %v, want DUPLICATE_DEFINITION", err)
	}
	if sys.Len() != 1 {
		t.Errorf("rejected equation was stored")
	}
}

func TestSolveDirectPartition(t *testing.T) {
	a := NewArena()
	w := a.Var("w", KindCons)
	k := a.Var("k", KindNone)
	o := a.Var("o", KindOffset)

	sys := NewSystem(
		Eq(w, Scale(3, k)),
		Eq(o, w),
	)
	sol, err := sys.Solve(ByKind(sys.Variables()))
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	if !sol.IsFree(k) {
		t.Error("k should be free")
	}
	if sol.IsFree(w) || sol.IsFree(o) {
		t.Error("w and o should be defined")
	}
	def, _ := sol.Definition(o)
	if def != Expr(w) {
		t.Errorf("o should stay defined in terms of w (unexpanded), got %s", def)
	}
	if diff := cmp.Diff([]string{"k"}, names(sol.Free())); diff != "" {
		t.Errorf("Free() mismatch (-want +got):\n%s", diff)
	}
	if sol.String() != "w = 3*k\no = w" {
		t.Errorf("String() = %q", sol.String())
	}
}

func TestSolveKeepsCycles(t *testing.T) {
	a := NewArena()
	x := a.Var("x", KindNone)
	y := a.Var("y", KindNone)

	sys := NewSystem(
		Eq(x, Add(y, Const(1))),
		Eq(y, Add(x, Const(1))),
	)
	sol, err := sys.Solve(ByKind(sys.Variables()))
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if len(sol.Free()) != 0 {
		t.Errorf("Free() = %v, want none", names(sol.Free()))
	}
}

func TestSolveResidualPivot(t *testing.T) {
	a := NewArena()
	h1 := a.Var("h1", KindCons)
	h2 := a.Var("h2", KindCons)
	hc := a.Var("hc", KindCons)
	p1 := a.Var("p1", KindPadding)
	p2 := a.Var("p2", KindPadding)

	sys := NewSystem(
		Eq(hc, Add(h1, p1)),
		Eq(hc, Add(h2, p2)),
	)
	sol, err := sys.Solve(ByKind(sys.Variables()))
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	if diff := cmp.Diff([]string{"h1"}, names(sol.Pivoted())); diff != "" {
		t.Errorf("Pivoted() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"h2", "p1", "p2"}, names(sol.Free())); diff != "" {
		t.Errorf("Free() mismatch (-want +got):\n%s", diff)
	}

	values := map[*Var]float64{h2: 30, p1: 0, p2: 0}
	var lookup Lookup
	lookup = func(v *Var) (float64, error) {
		if x, ok := values[v]; ok {
			return x, nil
		}
		def, ok := sol.Definition(v)
		if !ok {
			return 0, fmt.Errorf("no value for %s", v)
		}
		return Evaluate(def, lookup)
	}
	got, err := lookup(hc)
	if err != nil {
		t.Fatalf("evaluate hc: %v", err)
	}
	if got != 30 {
		t.Errorf("hc = %v, want 30", got)
	}
	got, _ = lookup(h1)
	if got != 30 {
		t.Errorf("h1 = %v, want 30", got)
	}
}

func TestSolveScrollSlackAbsorbsPin(t *testing.T) {
	a := NewArena()
	w := a.Var("w", KindCons)
	tot := a.Var("t", KindCons)
	s := a.Var("s", KindPadding)

	sys := NewSystem(
		Eq(w, Const(50)),
		Eq(tot, Add(Const(20), Const(10))),
		Eq(w, Add(tot, s)),
	)
	sol, err := sys.Solve(ByKind(sys.Variables()))
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	def, ok := sol.Definition(s)
	if !ok {
		t.Fatal("s should be pivoted into a definition")
	}
	got, err := Evaluate(def, nil)
	if err != nil {
		t.Fatalf("Evaluate(s) error = %v", err)
	}
	if got != 20 {
		t.Errorf("s = %v, want 20", got)
	}
}

func TestSolveResidualErrors(t *testing.T) {
	a := NewArena()
	x := a.Var("x", KindNone)
	p := a.Var("p", KindNone)
	q := a.Var("q", KindNone)

	tests := []struct {
		name string
		eqs  []Equation
		code gerrors.Code
	}{
		{
			name: "inconsistent",
			eqs:  []Equation{Eq(x, Const(1)), Eq(x, Const(2))},
			code: gerrors.ErrCodeInconsistent,
		},
		{
			name: "nonlinear",
			eqs:  []Equation{Eq(x, Mul(p, q)), Eq(x, Const(3))},
			code: gerrors.ErrCodeNonlinear,
		},
		{
			name: "cycle through residual",
			eqs:  []Equation{Eq(p, q), Eq(q, p), Eq(p, Const(1))},
			code: gerrors.ErrCodeCyclicDependency,
		},
		{
			name: "non-finite constant",
			eqs:  []Equation{Eq(x, Const(1)), Eq(x, Const(math.Inf(1)))},
			code: gerrors.ErrCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := NewSystem(tt.eqs...)
			_, err := sys.Solve(ByKind(sys.Variables()))
			if !gerrors.Is(err, tt.code) {
				t.Errorf("Solve() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSolveRedundant(t *testing.T) {
	a := NewArena()
	x := a.Var("x", KindNone)

	sys := NewSystem(Eq(x, Const(0.3)), Eq(x, Add(Const(0.1), Const(0.2))))
	sol, err := sys.Solve(nil)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if sol.Redundant() != 1 {
		t.Errorf("Redundant() = %d, want 1", sol.Redundant())
	}
}

func TestSolveHonorsOrder(t *testing.T) {
	a := NewArena()
	x := a.Var("x", KindNone)
	y := a.Var("y", KindNone)

	sys := NewSystem(Eq(x, Const(1)), Eq(x, y))

	sol, err := sys.Solve([]*Var{y, x})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if diff := cmp.Diff([]string{"y"}, names(sol.Pivoted())); diff != "" {
		t.Errorf("Pivoted() mismatch (-want +got):\n%s", diff)
	}
	if !sol.Has(x) || sol.Has(&Var{id: 99}) {
		t.Error("Has() reports wrong membership")
	}
	if sol.IsFree(&Var{id: 99}) {
		t.Error("variables outside the system are not free")
	}
}
