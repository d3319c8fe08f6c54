package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gremlin/pkg/layout"
	"github.com/matzehuels/gremlin/pkg/layoutfile"
	"github.com/matzehuels/gremlin/pkg/linsys"
	"github.com/matzehuels/gremlin/pkg/pipeline"
	"github.com/matzehuels/gremlin/pkg/render/term"
	"github.com/matzehuels/gremlin/pkg/solver"
)

// chromeWidth and chromeHeight are the cells taken by the frame and the
// status lines around the layout.
const (
	chromeWidth  = 2
	chromeHeight = 4
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(colorGray)
	focusStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	previewError = lipgloss.NewStyle().Foreground(colorRed)
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var set []string
	var watch bool

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Show a layout in the terminal",
		Long: `Preview draws a layout in the terminal. Resizing the terminal feeds the new
size into the window variables and re-solves the layout. Tab moves the focus
between named buttons and enter clicks the focused one. With --watch the
layout is reloaded whenever the file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(set)
			if err != nil {
				return err
			}
			return c.runPreview(cmd.Context(), args[0], values, watch)
		},
	}
	cmd.Flags().StringArrayVar(&set, "set", nil, "assign a free variable (name=value, repeatable)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the layout when the file changes")
	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input string, values map[string]float64, watch bool) error {
	opts := pipeline.Options{Path: input, Values: values, Logger: loggerFromContext(ctx)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	doc, ev, err := loadPreview(c.newRunner(), opts)
	if err != nil {
		return err
	}

	m := newPreviewModel(doc, ev)
	m.runner, m.opts = c.newRunner(), opts
	defer m.close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if watch {
		stop, err := watchFile(input, func() { p.Send(reloadMsg{}) })
		if err != nil {
			return err
		}
		defer stop()
	}
	_, err = p.Run()
	return err
}

// loadPreview loads, solves and applies opts.
func loadPreview(runner *pipeline.Runner, opts pipeline.Options) (*layoutfile.Document, *solver.Evaluator, error) {
	doc, err := runner.Load(opts)
	if err != nil {
		return nil, nil, err
	}
	ev, err := runner.Solve(doc)
	if err != nil {
		return nil, nil, err
	}
	if _, err := runner.Apply(doc, ev, opts); err != nil {
		return nil, nil, err
	}
	return doc, ev, nil
}

// reloadMsg asks the preview to load the layout file again.
type reloadMsg struct{}

// watchFile calls onChange whenever path is written or replaced. The
// directory is watched because editors often save by renaming a new file
// over the old one.
func watchFile(path string, onChange func()) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) == abs && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					onChange()
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return func() {
		w.Close()
		<-done
	}, nil
}

// =============================================================================
// previewModel - Interactive layout preview
// =============================================================================

type previewModel struct {
	runner  *pipeline.Runner // nil disables reloading
	opts    pipeline.Options
	doc     *layoutfile.Document
	ev      *solver.Evaluator
	buttons []string // named nodes with a clicked signal, sorted
	focus   int
	clicks  map[string]int
	status  string
	err     error
	width   int
	height  int
	cancels []func()
}

func newPreviewModel(doc *layoutfile.Document, ev *solver.Evaluator) *previewModel {
	m := &previewModel{clicks: make(map[string]int)}
	m.attach(doc, ev)
	return m
}

// attach switches the model to a freshly solved document.
func (m *previewModel) attach(doc *layoutfile.Document, ev *solver.Evaluator) {
	m.close()
	m.doc, m.ev = doc, ev
	m.buttons, m.cancels = nil, nil
	for name, n := range doc.Nodes {
		if n.Signal(layout.AttrClicked) != nil {
			m.buttons = append(m.buttons, name)
		}
	}
	slices.Sort(m.buttons)
	for _, name := range m.buttons {
		cancel := ev.Watch(doc.Nodes[name].Signal(layout.AttrClicked), func(v float64) {
			if v != 0 {
				m.clicks[name]++
			}
		})
		m.cancels = append(m.cancels, cancel)
	}
	if m.focus >= len(m.buttons) {
		m.focus = 0
	}
}

// close removes the watchers registered by the model.
func (m *previewModel) close() {
	for _, cancel := range m.cancels {
		cancel()
	}
}

func (m *previewModel) Init() tea.Cmd {
	return nil
}

func (m *previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			if len(m.buttons) > 0 {
				m.focus = (m.focus + 1) % len(m.buttons)
			}
		case "shift+tab":
			if len(m.buttons) > 0 {
				m.focus = (m.focus + len(m.buttons) - 1) % len(m.buttons)
			}
		case "enter":
			m.click()
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case reloadMsg:
		m.reload()
	}
	return m, nil
}

// reload loads the layout file again and keeps the current window size.
func (m *previewModel) reload() {
	if m.runner == nil {
		return
	}
	doc, ev, err := loadPreview(m.runner, m.opts)
	if err != nil {
		m.err = err
		return
	}
	m.attach(doc, ev)
	m.err = nil
	if m.width > 0 {
		m.resize(m.width, m.height)
	}
	if m.err == nil {
		m.status = "reloaded " + m.opts.Path
	}
}

// resize feeds the usable terminal area into the free window variables.
func (m *previewModel) resize(width, height int) {
	m.width, m.height = width, height
	values := make(map[*linsys.Var]float64)
	w := float64(max(width-chromeWidth, 0))
	h := float64(max(height-chromeHeight, 0))
	if m.ev.IsFree(m.doc.Window.Width) {
		values[m.doc.Window.Width] = w
	}
	if m.ev.IsFree(m.doc.Window.Height) {
		values[m.doc.Window.Height] = h
	}
	if len(values) == 0 {
		return
	}
	m.err = m.ev.Update(values)
	if m.err == nil {
		m.status = fmt.Sprintf("window %s×%s", formatNumber(w), formatNumber(h))
	}
}

// click flashes the focused button.
func (m *previewModel) click() {
	if len(m.buttons) == 0 {
		return
	}
	name := m.buttons[m.focus]
	m.err = m.ev.Flash(m.doc.Nodes[name].Signal(layout.AttrClicked))
	if m.err == nil {
		m.status = fmt.Sprintf("clicked %s (%d)", name, m.clicks[name])
	}
}

func (m *previewModel) View() string {
	var b strings.Builder

	title := m.doc.Title
	if title == "" {
		title = appName
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")

	blocks, err := layout.Place(m.doc.Root, m.ev)
	switch {
	case err != nil:
		b.WriteString(previewError.Render(err.Error()))
	case len(blocks) > 0:
		w, h := int(blocks[0].Width+0.5), int(blocks[0].Height+0.5)
		b.WriteString(term.Render(blocks, w, h, m.ev))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(previewError.Render(m.err.Error()))
	} else {
		b.WriteString(statusStyle.Render(m.status))
	}
	if len(m.buttons) > 0 {
		b.WriteString("  ")
		b.WriteString(focusStyle.Render("[" + m.buttons[m.focus] + "]"))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("tab focus  ⏎ click  q quit"))
	return b.String()
}
