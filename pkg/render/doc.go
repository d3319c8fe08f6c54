// Package render groups the outputs of a solved layout.
//
// # Overview
//
// A layout is solved by [solver] and placed by [layout.Place]. The
// subpackages turn the placed blocks into something a person or another
// tool can consume:
//
//   - [term]: a character grid, optionally framed and styled with lipgloss
//   - [sink]: a JSON document with block geometry and variable values
//
// The dependency graph of the solved system is rendered separately by
// [solver.Evaluator.ToDOT] and [solver.RenderSVG].
//
//	blocks, err := layout.Place(root, ev)
//	fmt.Println(term.Render(blocks, 40, 10, ev))
//	data, err := sink.RenderJSON(blocks, sink.WithJSONTitle("form"))
//
// [term]: github.com/matzehuels/gremlin/pkg/render/term
// [sink]: github.com/matzehuels/gremlin/pkg/render/sink
// [solver]: github.com/matzehuels/gremlin/pkg/solver
// [layout.Place]: github.com/matzehuels/gremlin/pkg/layout#Place
// [solver.Evaluator.ToDOT]: github.com/matzehuels/gremlin/pkg/solver#Evaluator.ToDOT
// [solver.RenderSVG]: github.com/matzehuels/gremlin/pkg/solver#RenderSVG
package render
