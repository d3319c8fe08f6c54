// Package term rasterizes placed layout blocks into a character grid.
//
// One layout unit is one terminal cell. Positions and sizes are rounded to
// the nearest cell; anything outside the canvas is clipped. Containers are
// invisible, leaves are drawn by kind:
//
//	label     text, one line per "\n"
//	input     text padded with '_' (boxed when at least 3 rows tall)
//	button    "< text >" centered (boxed when at least 3 rows tall)
//	check     "[x] text" or "[ ] text"
//	radio     "(*) text" or "( ) text"
//	list      one item per row, the selected one marked with '>'
//	image     a box holding the filename
//	spacer    nothing
//
// [Grid] returns plain lines for tests and file output, [Render] returns the
// canvas styled with lipgloss inside a rounded frame.
package term

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gremlin/pkg/layout"
)

type style uint8

const (
	stylePlain style = iota
	styleBorder
	styleLabel
	styleInput
	styleButton
	styleToggle
	styleSelected
)

var styles = map[style]lipgloss.Style{
	stylePlain:    lipgloss.NewStyle(),
	styleBorder:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	styleLabel:    lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
	styleInput:    lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Underline(true),
	styleButton:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36")),
	styleToggle:   lipgloss.NewStyle().Foreground(lipgloss.Color("35")),
	styleSelected: lipgloss.NewStyle().Reverse(true),
}

var frame = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("36"))

type cell struct {
	r rune
	s style
}

// Canvas is a fixed-size grid of styled cells.
type Canvas struct {
	w, h  int
	cells [][]cell
}

// MaxCanvasSize bounds each side of a canvas in cells.
const MaxCanvasSize = 4096

// NewCanvas returns a blank canvas. Sizes are clamped to [0, MaxCanvasSize].
func NewCanvas(width, height int) *Canvas {
	width, height = min(max(width, 0), MaxCanvasSize), min(max(height, 0), MaxCanvasSize)
	c := &Canvas{w: width, h: height, cells: make([][]cell, height)}
	for y := range c.cells {
		c.cells[y] = make([]cell, width)
		for x := range c.cells[y] {
			c.cells[y][x] = cell{r: ' '}
		}
	}
	return c
}

func (c *Canvas) set(x, y int, r rune, s style) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y][x] = cell{r: r, s: s}
}

// text writes s starting at (x, y), clipped to maxW cells.
func (c *Canvas) text(x, y, maxW int, s string, st style) {
	i := 0
	for _, r := range s {
		if i >= maxW {
			return
		}
		c.set(x+i, y, r, st)
		i++
	}
}

func (c *Canvas) box(x, y, w, h int) {
	if w < 2 || h < 2 {
		return
	}
	for i := 1; i < w-1; i++ {
		c.set(x+i, y, '─', styleBorder)
		c.set(x+i, y+h-1, '─', styleBorder)
	}
	for j := 1; j < h-1; j++ {
		c.set(x, y+j, '│', styleBorder)
		c.set(x+w-1, y+j, '│', styleBorder)
	}
	c.set(x, y, '┌', styleBorder)
	c.set(x+w-1, y, '┐', styleBorder)
	c.set(x, y+h-1, '└', styleBorder)
	c.set(x+w-1, y+h-1, '┘', styleBorder)
}

// Lines returns the canvas as plain text lines with trailing spaces removed.
func (c *Canvas) Lines() []string {
	out := make([]string, c.h)
	for y, row := range c.cells {
		var sb strings.Builder
		for _, cl := range row {
			sb.WriteRune(cl.r)
		}
		out[y] = strings.TrimRight(sb.String(), " ")
	}
	return out
}

// Styled returns the canvas with runs of equally styled cells rendered
// through lipgloss.
func (c *Canvas) Styled() string {
	lines := make([]string, c.h)
	for y, row := range c.cells {
		var sb strings.Builder
		for start := 0; start < len(row); {
			end := start
			var run strings.Builder
			for end < len(row) && row[end].s == row[start].s {
				run.WriteRune(row[end].r)
				end++
			}
			sb.WriteString(styles[row[start].s].Render(run.String()))
			start = end
		}
		lines[y] = sb.String()
	}
	return strings.Join(lines, "\n")
}

// Draw paints every leaf block onto a new canvas. vals supplies signal values
// (checked, selected); it may be nil.
func Draw(blocks []layout.Block, width, height int, vals layout.Valuer) *Canvas {
	c := NewCanvas(width, height)
	for _, b := range blocks {
		drawBlock(c, b, vals)
	}
	return c
}

// Grid draws blocks and returns plain lines.
func Grid(blocks []layout.Block, width, height int, vals layout.Valuer) []string {
	return Draw(blocks, width, height, vals).Lines()
}

// Render draws blocks and returns the styled canvas inside a frame.
func Render(blocks []layout.Block, width, height int, vals layout.Valuer) string {
	return frame.Render(Draw(blocks, width, height, vals).Styled())
}

func round(f float64) int { return int(math.Round(f)) }

func drawBlock(c *Canvas, b layout.Block, vals layout.Valuer) {
	n := b.Node
	x, y, w, h := round(b.X), round(b.Y), round(b.Width), round(b.Height)
	if w <= 0 || h <= 0 {
		return
	}

	switch n.Kind() {
	case layout.KindLabel:
		for i, line := range strings.Split(n.Text(), "\n") {
			if i >= h {
				break
			}
			c.text(x, y+i, w, line, styleLabel)
		}
	case layout.KindInput:
		tx, ty, tw := x, y, w
		if h >= 3 && w >= 3 {
			c.box(x, y, w, h)
			tx, ty, tw = x+1, y+1, w-2
		}
		field := []rune(n.Text())
		for len(field) < tw {
			field = append(field, '_')
		}
		c.text(tx, ty, tw, string(field), styleInput)
	case layout.KindButton:
		label := "< " + n.Text() + " >"
		ty, tx, tw := y+h/2, x, w
		if h >= 3 && w >= 3 {
			c.box(x, y, w, h)
			label, tx, tw = n.Text(), x+1, w-2
		}
		pad := max((tw-len([]rune(label)))/2, 0)
		c.text(tx+pad, ty, tw-pad, label, styleButton)
	case layout.KindCheck, layout.KindRadio:
		on := signal(vals, n, layout.AttrChecked) > 0
		mark := "[ ] "
		switch {
		case n.Kind() == layout.KindCheck && on:
			mark = "[x] "
		case n.Kind() == layout.KindRadio && on:
			mark = "(*) "
		case n.Kind() == layout.KindRadio:
			mark = "( ) "
		}
		c.text(x, y, w, mark, styleToggle)
		if w > 4 {
			c.text(x+4, y, w-4, n.Text(), styleLabel)
		}
	case layout.KindList:
		sel := int(signal(vals, n, layout.AttrSelected))
		for i, item := range n.Items() {
			if i >= h {
				break
			}
			st, prefix := styleLabel, "  "
			if i == sel {
				st, prefix = styleSelected, "> "
			}
			c.text(x, y+i, w, prefix+item, st)
		}
	case layout.KindImage:
		c.box(x, y, w, h)
		if h >= 3 && w >= 3 {
			c.text(x+1, y+h/2, w-2, n.Filename(), styleLabel)
		} else {
			c.text(x, y, w, n.Filename(), styleLabel)
		}
	}
}

func signal(vals layout.Valuer, n *layout.Node, attr layout.Attr) float64 {
	v := n.Signal(attr)
	if v == nil {
		return 0
	}
	if vals != nil {
		if x, ok := vals.Value(v); ok {
			return x
		}
	}
	x, _ := v.Default()
	return x
}
