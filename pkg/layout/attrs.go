package layout

import (
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/gremlin/pkg/linsys"
)

// Attr names a leaf attribute.
type Attr string

const (
	AttrText     Attr = "text"
	AttrFilename Attr = "filename"
	AttrItems    Attr = "items"
	AttrClicked  Attr = "clicked"
	AttrChecked  Attr = "checked"
	AttrSelected Attr = "selected"
)

// Variables are compared by identity, never by their fields.
var varIdentity = cmp.Comparer(func(a, b *linsys.Var) bool { return a == b })

// Attribute returns the current value of attr and whether it is set.
func (n *Node) Attribute(attr Attr) (any, bool) {
	v, ok := n.attrs[attr]
	return v, ok && v != nil
}

// SetAttribute stores value under attr. When the value differs from the
// stored one, the callbacks registered with WatchAttribute run in order.
// Setting a signal-backed attribute (clicked, checked, selected) before
// solving pins its variable to value.
func (n *Node) SetAttribute(attr Attr, value any) {
	if n.attrs == nil {
		panic("layout: containers have no attributes")
	}
	old, had := n.attrs[attr]
	if had && cmp.Equal(old, value, varIdentity) {
		return
	}
	if !had {
		n.attrKeys = append(n.attrKeys, attr)
	}
	n.attrs[attr] = value
	for _, fn := range n.watchers[attr] {
		fn(value)
	}
}

// WatchAttribute registers fn to run whenever attr changes value.
func (n *Node) WatchAttribute(attr Attr, fn func(any)) {
	if n.watchers == nil {
		panic("layout: containers have no attributes")
	}
	n.watchers[attr] = append(n.watchers[attr], fn)
}

// Text returns the text attribute, or "" if unset.
func (n *Node) Text() string {
	s, _ := n.attrs[AttrText].(string)
	return s
}

// SetText is SetAttribute(AttrText, text).
func (n *Node) SetText(text string) { n.SetAttribute(AttrText, text) }

// Items returns the items of a list.
func (n *Node) Items() []string {
	items, _ := n.attrs[AttrItems].([]string)
	return items
}

// Filename returns the filename of an image.
func (n *Node) Filename() string {
	s, _ := n.attrs[AttrFilename].(string)
	return s
}

// Signal returns the action variable backing attr, or nil if attr has none
// on this node. Buttons expose AttrClicked, checkboxes and radio buttons
// AttrChecked, lists AttrSelected.
func (n *Node) Signal(attr Attr) *linsys.Var { return n.signals[attr] }

// Bind pins the signal behind attr to value, which may be a number, a bool
// or an expression. It fails if attr has no signal on this node.
func (n *Node) Bind(attr Attr, value any) error {
	if n.signals[attr] == nil {
		return invalidLayout("%s has no %s signal", n.kind, attr)
	}
	if _, err := linsys.AsExpr(value); err != nil {
		return invalidLayout("bind %s: %v", attr, err)
	}
	n.SetAttribute(attr, value)
	return nil
}
