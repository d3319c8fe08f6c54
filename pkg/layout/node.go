package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/gremlin/pkg/linsys"
)

// NodeKind identifies what a node is.
type NodeKind int

const (
	KindRow NodeKind = iota
	KindColumn
	KindLabel
	KindInput
	KindImage
	KindButton
	KindCheck
	KindRadio
	KindList
	KindSpacer
)

var nodeKindNames = [...]string{
	KindRow:    "row",
	KindColumn: "column",
	KindLabel:  "label",
	KindInput:  "input",
	KindImage:  "image",
	KindButton: "button",
	KindCheck:  "check",
	KindRadio:  "radio",
	KindList:   "list",
	KindSpacer: "spacer",
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return fmt.Sprintf("nodekind(%d)", int(k))
	}
	return nodeKindNames[k]
}

// ParseNodeKind converts a lowercase node kind name.
func ParseNodeKind(s string) (NodeKind, bool) {
	for k, name := range nodeKindNames {
		if s == name {
			return NodeKind(k), true
		}
	}
	return 0, false
}

// IsContainer reports whether the kind arranges children.
func (k NodeKind) IsContainer() bool { return k == KindRow || k == KindColumn }

// Node is an element of a layout tree: a container or a leaf.
type Node struct {
	b    *Builder
	id   int
	kind NodeKind

	w, h   *linsys.Var
	wc, hc linsys.Expr

	// containers
	children []*Node
	total    *linsys.Var
	scroll   *linsys.Var
	offsets  map[*Node]*linsys.Var
	pads     map[*Node]*linsys.Var

	// leaves
	attrs    map[Attr]any
	attrKeys []Attr
	signals  map[Attr]*linsys.Var
	watchers map[Attr][]func(any)
}

// ID returns the node number assigned by its builder.
func (n *Node) ID() int { return n.id }

// Kind returns what the node is.
func (n *Node) Kind() NodeKind { return n.kind }

// Width returns the node's width variable.
func (n *Node) Width() *linsys.Var { return n.w }

// Height returns the node's height variable.
func (n *Node) Height() *linsys.Var { return n.h }

// WithSize pins the node's width and height. A nil expression leaves that
// dimension as it was. Pass another node's size variable to align siblings.
func (n *Node) WithSize(width, height linsys.Expr) *Node {
	if width != nil {
		n.wc = width
	}
	if height != nil {
		n.hc = height
	}
	return n
}

// SizeConstraints returns the pinned width and height expressions, nil if
// unset.
func (n *Node) SizeConstraints() (width, height linsys.Expr) { return n.wc, n.hc }

// Children returns the children of a container; leaves have none.
func (n *Node) Children() []*Node { return n.children }

// Total returns the total-extent variable of a container, nil for leaves.
func (n *Node) Total() *linsys.Var { return n.total }

// Scroll returns the scroll slack variable of a container, nil for leaves.
func (n *Node) Scroll() *linsys.Var { return n.scroll }

// Offset returns the variable holding child's position along the container's
// axis.
func (n *Node) Offset(child *Node) *linsys.Var {
	if v, ok := n.offsets[child]; ok {
		return v
	}
	v := n.b.arena.Var(fmt.Sprintf("_o%d", child.id), linsys.KindOffset)
	n.offsets[child] = v
	return v
}

// Padding returns the cross-axis slack variable between the container and
// child.
func (n *Node) Padding(child *Node) *linsys.Var {
	if v, ok := n.pads[child]; ok {
		return v
	}
	v := n.b.arena.Var(fmt.Sprintf("_p%d", child.id), linsys.KindPadding)
	n.pads[child] = v
	return v
}

// Walk calls fn for n and every descendant in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// String renders the tree in infix notation: row children are joined by
// " | ", column children by " --- ", nested containers are parenthesized.
func (n *Node) String() string {
	var text string
	switch n.kind {
	case KindRow, KindColumn:
		sep := " | "
		if n.kind == KindColumn {
			sep = " --- "
		}
		parts := make([]string, len(n.children))
		for i, c := range n.children {
			if c.kind.IsContainer() {
				parts[i] = "(" + c.String() + ")"
			} else {
				parts[i] = c.String()
			}
		}
		text = strings.Join(parts, sep)
	default:
		var attrs []string
		for _, k := range n.attrKeys {
			if v := n.attrs[k]; v != nil {
				attrs = append(attrs, fmt.Sprintf("%s = %s", k, formatAttr(v)))
			}
		}
		name := n.kind.String()
		text = strings.ToUpper(name[:1]) + name[1:] + "(" + strings.Join(attrs, ", ") + ")"
	}
	if n.wc != nil || n.hc != nil {
		text += fmt.Sprintf(".WithSize(%s, %s)", exprString(n.wc), exprString(n.hc))
	}
	return text
}

func exprString(e linsys.Expr) string {
	if e == nil {
		return "nil"
	}
	return e.String()
}

func formatAttr(v any) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprint(v)
	}
}
