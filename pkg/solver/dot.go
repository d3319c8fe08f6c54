package solver

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gremlin/pkg/linsys"
)

// ToDOT renders the dependency graph in Graphviz DOT format. Every variable
// is a node labelled with its name and current value; free variables are
// drawn as ellipses, defined ones as boxes. An edge u -> v means v's
// definition refers to u.
func (e *Evaluator) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, v := range e.vars {
		fmt.Fprintf(&buf, "  %q [label=%q", v.Name(), e.nodeLabel(v))
		if e.sol.IsFree(v) {
			buf.WriteString(", shape=ellipse, fillcolor=lightyellow")
		}
		buf.WriteString("];\n")
	}

	buf.WriteString("\n")
	for _, v := range e.sol.Defined() {
		def, _ := e.sol.Definition(v)
		for _, d := range linsys.Vars(def) {
			fmt.Fprintf(&buf, "  %q -> %q;\n", d.Name(), v.Name())
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func (e *Evaluator) nodeLabel(v *linsys.Var) string {
	label := v.Name() + "\n" + v.Kind().String()
	if x, ok := e.results[v]; ok {
		label += " = " + strconv.FormatFloat(x, 'g', -1, 64)
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
