// Package sink serializes solved layouts for other tools.
package sink

import (
	"encoding/json"

	"github.com/matzehuels/gremlin/pkg/layout"
	"github.com/matzehuels/gremlin/pkg/linsys"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	title     string
	evaluator string
	values    map[*linsys.Var]float64
	free      func(*linsys.Var) bool
}

// WithJSONTitle records the document title.
func WithJSONTitle(s string) JSONOption { return func(r *jsonRenderer) { r.title = s } }

// WithJSONEvaluator records the identity of the evaluator that produced the
// values.
func WithJSONEvaluator(id string) JSONOption { return func(r *jsonRenderer) { r.evaluator = id } }

// WithJSONValues includes every variable value. free, if not nil, marks which
// of them are free.
func WithJSONValues(values map[*linsys.Var]float64, free func(*linsys.Var) bool) JSONOption {
	return func(r *jsonRenderer) { r.values = values; r.free = free }
}

type jsonOutput struct {
	Title     string         `json:"title,omitempty"`
	Evaluator string         `json:"evaluator,omitempty"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Blocks    []jsonBlock    `json:"blocks"`
	Variables []jsonVariable `json:"variables,omitempty"`
}

type jsonBlock struct {
	ID     int      `json:"id"`
	Kind   string   `json:"kind"`
	Text   string   `json:"text,omitempty"`
	Items  []string `json:"items,omitempty"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Depth  int      `json:"depth"`
}

type jsonVariable struct {
	Name  string  `json:"name"`
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
	Free  bool    `json:"free,omitempty"`
}

// RenderJSON exports placed blocks, and optionally the variable values, as a
// pretty-printed JSON document. The first block is taken as the root and
// gives the document size.
func RenderJSON(blocks []layout.Block, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Title:     r.title,
		Evaluator: r.evaluator,
		Blocks:    make([]jsonBlock, 0, len(blocks)),
	}
	if len(blocks) > 0 {
		out.Width, out.Height = blocks[0].Width, blocks[0].Height
	}
	for _, b := range blocks {
		out.Blocks = append(out.Blocks, jsonBlock{
			ID:     b.Node.ID(),
			Kind:   b.Node.Kind().String(),
			Text:   b.Node.Text(),
			Items:  b.Node.Items(),
			X:      b.X,
			Y:      b.Y,
			Width:  b.Width,
			Height: b.Height,
			Depth:  b.Depth,
		})
	}
	if r.values != nil {
		out.Variables = buildJSONVariables(r.values, r.free)
	}
	return json.MarshalIndent(out, "", "  ")
}

func buildJSONVariables(values map[*linsys.Var]float64, free func(*linsys.Var) bool) []jsonVariable {
	vars := make([]*linsys.Var, 0, len(values))
	for v := range values {
		vars = append(vars, v)
	}
	vars = linsys.ByKind(vars)

	out := make([]jsonVariable, 0, len(vars))
	for _, v := range vars {
		jv := jsonVariable{Name: v.Name(), Kind: v.Kind().String(), Value: values[v]}
		if free != nil {
			jv.Free = free(v)
		}
		out = append(out, jv)
	}
	return out
}
