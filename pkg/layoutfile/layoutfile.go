// Package layoutfile reads layout trees from TOML documents.
//
// A document has an optional title, optional window pins, declared
// variables, and a recursive root node:
//
//	title = "Signup"
//
//	[window]
//	width = 60
//
//	[vars.a]
//	default = 20
//
//	[root]
//	kind = "column"
//
//	  [[root.children]]
//	  kind = "label"
//	  text = "First name"
//	  width = "a"
//
// Size values are a number, a variable name or "k*name". Variables that are
// referenced but not declared are created on first use without a default.
package layoutfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	gerrors "github.com/matzehuels/gremlin/pkg/errors"
	"github.com/matzehuels/gremlin/pkg/layout"
	"github.com/matzehuels/gremlin/pkg/linsys"
	"github.com/matzehuels/gremlin/pkg/solver"
)

// Document is a parsed layout file.
type Document struct {
	Title   string
	Builder *layout.Builder
	Root    *layout.Node
	Window  *layout.Window

	// Vars holds declared and referenced variables by name.
	Vars map[string]*linsys.Var
	// Nodes holds the nodes that were given a name.
	Nodes map[string]*layout.Node

	pins []linsys.Equation
}

type fileDoc struct {
	Title  string             `toml:"title"`
	Window windowSpec         `toml:"window"`
	Vars   map[string]varSpec `toml:"vars"`
	Root   *nodeSpec          `toml:"root"`
}

type windowSpec struct {
	Width  *float64 `toml:"width"`
	Height *float64 `toml:"height"`
}

type varSpec struct {
	Default *float64 `toml:"default"`
}

type nodeSpec struct {
	Kind     string      `toml:"kind"`
	Name     string      `toml:"name"`
	Text     string      `toml:"text"`
	Filename string      `toml:"filename"`
	Items    []string    `toml:"items"`
	Checked  *bool       `toml:"checked"`
	Selected *int        `toml:"selected"`
	Width    any         `toml:"width"`
	Height   any         `toml:"height"`
	Children []*nodeSpec `toml:"children"`
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, gerrors.Wrap(gerrors.ErrCodeFileNotFound, err, "layout file %s", path)
		}
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse builds a layout tree from TOML data.
func Parse(data []byte) (*Document, error) {
	var f fileDoc
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidLayout, err, "decode layout")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, gerrors.New(gerrors.ErrCodeInvalidLayout, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if f.Root == nil {
		return nil, gerrors.New(gerrors.ErrCodeInvalidLayout, "missing [root] node")
	}

	b := layout.NewBuilder()
	doc := &Document{
		Title:   f.Title,
		Builder: b,
		Window:  b.Window(),
		Vars:    make(map[string]*linsys.Var),
		Nodes:   make(map[string]*layout.Node),
	}

	names := make([]string, 0, len(f.Vars))
	for name := range f.Vars {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := gerrors.ValidateVarName(name); err != nil {
			return nil, err
		}
		if def := f.Vars[name].Default; def != nil {
			doc.Vars[name] = b.VarWithDefault(name, *def)
		} else {
			doc.Vars[name] = b.Var(name)
		}
	}

	if doc.Root, err = doc.build(f.Root, "root"); err != nil {
		return nil, err
	}

	if f.Window.Width != nil {
		doc.pins = append(doc.pins, linsys.Eq(doc.Window.Width, linsys.Const(*f.Window.Width)))
	}
	if f.Window.Height != nil {
		doc.pins = append(doc.pins, linsys.Eq(doc.Window.Height, linsys.Const(*f.Window.Height)))
	}
	return doc, nil
}

func (d *Document) build(s *nodeSpec, path string) (*layout.Node, error) {
	kind, ok := layout.ParseNodeKind(s.Kind)
	if !ok {
		return nil, gerrors.New(gerrors.ErrCodeInvalidLayout, "%s: unknown kind %q", path, s.Kind)
	}
	if err := gerrors.ValidateLabel(s.Text); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !kind.IsContainer() && len(s.Children) > 0 {
		return nil, gerrors.New(gerrors.ErrCodeInvalidLayout, "%s: %s cannot have children", path, kind)
	}

	b := d.Builder
	var n *layout.Node
	switch kind {
	case layout.KindRow, layout.KindColumn:
		children := make([]*layout.Node, len(s.Children))
		for i, cs := range s.Children {
			c, err := d.build(cs, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		n = b.ForEach(kind, children)
	case layout.KindLabel:
		n = b.Label(s.Text)
	case layout.KindInput:
		n = b.Input(s.Text)
	case layout.KindImage:
		n = b.Image(s.Filename)
	case layout.KindButton:
		n = b.Button(s.Text)
	case layout.KindCheck:
		n = b.Check(s.Text)
	case layout.KindRadio:
		n = b.Radio(s.Text)
	case layout.KindList:
		n = b.List(s.Items...)
	case layout.KindSpacer:
		n = b.Spacer()
	}

	if s.Checked != nil {
		if err := n.Bind(layout.AttrChecked, *s.Checked); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if s.Selected != nil {
		if err := n.Bind(layout.AttrSelected, *s.Selected); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	w, err := d.size(s.Width)
	if err != nil {
		return nil, fmt.Errorf("%s.width: %w", path, err)
	}
	h, err := d.size(s.Height)
	if err != nil {
		return nil, fmt.Errorf("%s.height: %w", path, err)
	}
	n.WithSize(w, h)

	if s.Name != "" {
		if _, dup := d.Nodes[s.Name]; dup {
			return nil, gerrors.New(gerrors.ErrCodeInvalidLayout, "%s: duplicate node name %q", path, s.Name)
		}
		d.Nodes[s.Name] = n
	}
	return n, nil
}

// size converts a TOML size value into an expression. A nil result means the
// size was not given.
func (d *Document) size(v any) (linsys.Expr, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case int64:
		return linsys.Const(float64(v)), nil
	case float64:
		return linsys.Const(v), nil
	case string:
		return d.sizeExpr(v)
	default:
		return nil, gerrors.New(gerrors.ErrCodeInvalidLayout, "size must be a number or a variable, got %T", v)
	}
}

func (d *Document) sizeExpr(s string) (linsys.Expr, error) {
	s = strings.TrimSpace(s)
	if k, name, ok := strings.Cut(s, "*"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(k), 64)
		if err != nil {
			return nil, gerrors.Wrap(gerrors.ErrCodeInvalidLayout, err, "bad factor in %q", s)
		}
		v, err := d.variable(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		return linsys.Scale(f, v), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return linsys.Const(f), nil
	}
	return d.variable(s)
}

func (d *Document) variable(name string) (*linsys.Var, error) {
	if v, ok := d.Vars[name]; ok {
		return v, nil
	}
	if err := gerrors.ValidateVarName(name); err != nil {
		return nil, err
	}
	v := d.Builder.Var(name)
	d.Vars[name] = v
	return v, nil
}

// Lookup finds a variable by name: declared variables, the window inputs
// (window_width, window_height) and every generated tree variable.
func (d *Document) Lookup(name string) (*linsys.Var, bool) {
	if v, ok := d.Vars[name]; ok {
		return v, true
	}
	return d.Builder.Arena().Lookup(name)
}

// Solve compiles the document with the root bound to the window and the
// window pins applied.
func (d *Document) Solve(opts ...solver.Option) (*solver.Evaluator, error) {
	return layout.Solve(d.Root,
		layout.WithWindow(d.Window),
		layout.WithEquations(d.pins...),
		layout.WithEvaluatorOptions(opts...),
	)
}

// System returns the linear system Solve would solve.
func (d *Document) System() (*linsys.System, error) {
	return layout.System(d.Root, layout.WithWindow(d.Window), layout.WithEquations(d.pins...))
}
