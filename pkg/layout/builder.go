package layout

import (
	"fmt"

	"github.com/matzehuels/gremlin/pkg/linsys"
)

// Builder creates the nodes of one layout tree and owns the arena their
// variables come from. Nodes from different builders must not be mixed.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	arena  *linsys.Arena
	nextID int
	window *Window
}

// NewBuilder returns a builder with an empty arena.
func NewBuilder() *Builder {
	return &Builder{arena: linsys.NewArena()}
}

// Arena returns the arena holding every variable of the tree.
func (b *Builder) Arena() *linsys.Arena { return b.arena }

// Var creates a plain variable for linking sizes across nodes.
func (b *Builder) Var(name string) *linsys.Var {
	return b.arena.Var(name, linsys.KindNone)
}

// VarWithDefault creates a plain variable that falls back to def.
func (b *Builder) VarWithDefault(name string, def float64) *linsys.Var {
	return b.arena.VarWithDefault(name, linsys.KindNone, def)
}

// Window holds the input variables a renderer drives from the host window.
type Window struct {
	Width  *linsys.Var
	Height *linsys.Var
}

// Window returns the window-size input variables, creating them on first use.
func (b *Builder) Window() *Window {
	if b.window == nil {
		b.window = &Window{
			Width:  b.arena.Var("window_width", linsys.KindInput),
			Height: b.arena.Var("window_height", linsys.KindInput),
		}
	}
	return b.window
}

func (b *Builder) node(kind NodeKind) *Node {
	b.nextID++
	n := &Node{b: b, id: b.nextID, kind: kind}
	n.w = b.arena.Var(fmt.Sprintf("_w%d", n.id), linsys.KindCons)
	n.h = b.arena.Var(fmt.Sprintf("_h%d", n.id), linsys.KindCons)
	if kind.IsContainer() {
		n.total = b.arena.Var(fmt.Sprintf("_t%d", n.id), linsys.KindCons)
		n.scroll = b.arena.Var(fmt.Sprintf("_s%d", n.id), linsys.KindPadding)
		n.offsets = make(map[*Node]*linsys.Var)
		n.pads = make(map[*Node]*linsys.Var)
	} else {
		n.attrs = make(map[Attr]any)
		n.watchers = make(map[Attr][]func(any))
	}
	return n
}

func (b *Builder) leaf(kind NodeKind, attrs ...attrValue) *Node {
	n := b.node(kind)
	for _, a := range attrs {
		n.attrKeys = append(n.attrKeys, a.key)
		n.attrs[a.key] = a.value
	}
	return n
}

type attrValue struct {
	key   Attr
	value any
}

// signal attaches an action variable backing attr.
func (b *Builder) signal(n *Node, attr Attr, prefix string, def float64) {
	if n.signals == nil {
		n.signals = make(map[Attr]*linsys.Var)
	}
	n.signals[attr] = b.arena.VarWithDefault(fmt.Sprintf("%s%d", prefix, n.id), linsys.KindAction, def)
}

// Label creates a static text leaf.
func (b *Builder) Label(text string) *Node {
	return b.leaf(KindLabel, attrValue{AttrText, text})
}

// Input creates an editable text leaf.
func (b *Builder) Input(text string) *Node {
	return b.leaf(KindInput, attrValue{AttrText, text})
}

// Image creates an image leaf.
func (b *Builder) Image(filename string) *Node {
	return b.leaf(KindImage, attrValue{AttrFilename, filename})
}

// Button creates a button whose clicked signal is pulsed on press.
func (b *Builder) Button(text string) *Node {
	n := b.leaf(KindButton, attrValue{AttrText, text}, attrValue{AttrClicked, nil})
	b.signal(n, AttrClicked, "_clicked", 0)
	return n
}

// Check creates a checkbox.
func (b *Builder) Check(text string) *Node {
	n := b.leaf(KindCheck, attrValue{AttrText, text}, attrValue{AttrChecked, nil})
	b.signal(n, AttrChecked, "_checked", 0)
	return n
}

// Radio creates a radio button.
func (b *Builder) Radio(text string) *Node {
	n := b.leaf(KindRadio, attrValue{AttrText, text}, attrValue{AttrChecked, nil})
	b.signal(n, AttrChecked, "_checked", 0)
	return n
}

// List creates a selectable list. Its selected signal is -1 until an item is
// chosen.
func (b *Builder) List(items ...string) *Node {
	n := b.leaf(KindList, attrValue{AttrText, ""}, attrValue{AttrSelected, nil}, attrValue{AttrItems, items})
	b.signal(n, AttrSelected, "_selected", -1)
	return n
}

// Spacer creates an empty leaf that only takes up room.
func (b *Builder) Spacer() *Node {
	return b.leaf(KindSpacer)
}

// Row arranges nodes horizontally. Nodes are combined pairwise with
// flattening, so nested rows merge into one.
func (b *Builder) Row(nodes ...*Node) *Node { return b.fold(KindRow, nodes) }

// Column arranges nodes vertically, flattening nested columns.
func (b *Builder) Column(nodes ...*Node) *Node { return b.fold(KindColumn, nodes) }

// ForEach builds a container of the given kind holding nodes as-is, without
// flattening.
func (b *Builder) ForEach(kind NodeKind, nodes []*Node) *Node {
	if !kind.IsContainer() {
		panic("layout: ForEach needs a container kind, got " + kind.String())
	}
	c := b.node(kind)
	c.children = append(c.children, nodes...)
	return c
}

func (b *Builder) fold(kind NodeKind, nodes []*Node) *Node {
	switch len(nodes) {
	case 0:
		return b.node(kind)
	case 1:
		if nodes[0].kind == kind {
			return nodes[0]
		}
		return b.ForEach(kind, nodes)
	}
	acc := nodes[0]
	for _, n := range nodes[1:] {
		acc = b.Join(kind, acc, n)
	}
	return acc
}

// Join combines lhs and rhs along the axis of kind:
//   - both are containers of that kind: rhs's children are appended to lhs
//   - only lhs is: rhs is appended to its children
//   - only rhs is: lhs is prepended to its children
//   - otherwise a new two-child container is created
//
// The returned node is lhs, rhs or the new container.
func (b *Builder) Join(kind NodeKind, lhs, rhs *Node) *Node {
	switch {
	case lhs.kind == kind && rhs.kind == kind:
		lhs.children = append(lhs.children, rhs.children...)
		return lhs
	case lhs.kind == kind:
		lhs.children = append(lhs.children, rhs)
		return lhs
	case rhs.kind == kind:
		rhs.children = append([]*Node{lhs}, rhs.children...)
		return rhs
	default:
		return b.ForEach(kind, []*Node{lhs, rhs})
	}
}
