package linsys

import (
	"fmt"
	"slices"
	"strings"
)

// Kind tags a variable with its role. The declaration order is the solving
// priority: lower kinds are defined first, higher kinds tend to stay free.
type Kind int

const (
	// KindOffset marks a child's position along its container's axis.
	KindOffset Kind = iota
	// KindCons marks structural sizes (widths, heights, totals).
	KindCons
	// KindUser marks variables introduced by an application model.
	KindUser
	// KindNone is the kind of plain named variables created by callers.
	KindNone
	// KindPadding marks slack: scroll slack and per-child cross-axis padding.
	KindPadding
	// KindInput marks externally driven inputs such as the window size.
	KindInput
	// KindAction marks event and selection signals (clicked, checked, selected).
	KindAction
	// KindDefault marks variables that should always fall back to their default.
	KindDefault
)

var kindNames = [...]string{
	KindOffset:  "offset",
	KindCons:    "cons",
	KindUser:    "user",
	KindNone:    "none",
	KindPadding: "padding",
	KindInput:   "input",
	KindAction:  "action",
	KindDefault: "default",
}

// String returns the lowercase tag of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind converts a lowercase tag back into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown variable kind %q", s)
}

// VarID identifies a variable within its arena.
type VarID int

// Var is a symbolic unknown. Vars are created by an [Arena] and compared by
// pointer identity; a *Var is also an [Expr] referring to itself.
type Var struct {
	id   VarID
	name string
	kind Kind
	def  *float64
}

// ID returns the arena-assigned identity.
func (v *Var) ID() VarID { return v.id }

// Name returns the variable name.
func (v *Var) Name() string { return v.name }

// Kind returns the variable kind.
func (v *Var) Kind() Kind { return v.kind }

// Default returns the declared default, if any.
func (v *Var) Default() (float64, bool) {
	if v.def == nil {
		return 0, false
	}
	return *v.def, true
}

// String returns the variable name.
func (v *Var) String() string { return v.name }

func (*Var) exprNode() {}

// Arena hands out variables with sequential identities. It replaces a
// process-wide counter: every layout tree owns exactly one arena, so ids are
// stable for the lifetime of the tree and never shared between trees.
//
// Arena is not safe for concurrent use.
type Arena struct {
	vars   []*Var
	byName map[string]*Var
}

// NewArena creates an empty arena. The first variable gets id 1.
func NewArena() *Arena {
	return &Arena{byName: make(map[string]*Var)}
}

// Var creates a variable without a default. An empty name is replaced by a
// generated one ("_v<id>").
func (a *Arena) Var(name string, kind Kind) *Var {
	return a.add(name, kind, nil)
}

// VarWithDefault creates a variable whose value falls back to def when the
// caller never supplies one.
func (a *Arena) VarWithDefault(name string, kind Kind, def float64) *Var {
	return a.add(name, kind, &def)
}

func (a *Arena) add(name string, kind Kind, def *float64) *Var {
	v := &Var{id: VarID(len(a.vars) + 1), name: name, kind: kind, def: def}
	if v.name == "" {
		v.name = fmt.Sprintf("_v%d", v.id)
	}
	a.vars = append(a.vars, v)
	a.byName[v.name] = v
	return v
}

// Lookup finds a variable by name. When several variables share a name the
// most recently created one is returned.
func (a *Arena) Lookup(name string) (*Var, bool) {
	v, ok := a.byName[name]
	return v, ok
}

// Vars returns every variable in creation order.
func (a *Arena) Vars() []*Var { return slices.Clone(a.vars) }

// Len returns the number of variables created so far.
func (a *Arena) Len() int { return len(a.vars) }

// ByKind returns a copy of vars sorted by kind, then by id. This is the
// default solving order.
func ByKind(vars []*Var) []*Var {
	out := slices.Clone(vars)
	slices.SortStableFunc(out, func(a, b *Var) int {
		if a.kind != b.kind {
			return int(a.kind) - int(b.kind)
		}
		return int(a.id) - int(b.id)
	})
	return out
}

// byID sorts vars in place by id.
func byID(vars []*Var) {
	slices.SortFunc(vars, func(a, b *Var) int { return int(a.id) - int(b.id) })
}
