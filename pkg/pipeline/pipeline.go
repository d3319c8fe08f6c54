// Package pipeline provides the load → solve → update → render pipeline for
// layout documents.
//
// This package implements the complete pipeline used by the CLI commands. By
// centralizing it, every entry point loads, solves and renders a document
// the same way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Parse a TOML layout document into a layout tree
//  2. Solve: Compile the tree into a linear system and build an evaluator
//  3. Update: Feed the window size and caller values into the evaluator
//  4. Render: Place the blocks and generate artifacts (text, JSON, DOT, SVG)
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "form.toml",
//	    Width:   80,
//	    Height:  24,
//	    Formats: []string{"text"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(string(result.Artifacts["text"]))
package pipeline

import (
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	gerrors "github.com/matzehuels/gremlin/pkg/errors"
	"github.com/matzehuels/gremlin/pkg/layout"
	"github.com/matzehuels/gremlin/pkg/layoutfile"
	"github.com/matzehuels/gremlin/pkg/solver"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default window width in terminal cells.
	DefaultWidth = 80.0

	// DefaultHeight is the default window height in terminal cells.
	DefaultHeight = 24.0

	// DefaultLeafSize is the value given to leaf sizes that nothing pins.
	DefaultLeafSize = 1.0

	// MaxWindowSize bounds the window width and height in cells.
	MaxWindowSize = 4096.0
)

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatText, FormatJSON, FormatDOT, FormatSVG}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
type Options struct {
	// Load options: Source takes precedence over Path.
	Path   string `json:"path,omitempty"`
	Source []byte `json:"-"`

	// Update options. Width and Height drive the window variables when the
	// document leaves them free.
	Width  float64            `json:"width,omitempty"`
	Height float64            `json:"height,omitempty"`
	Values map[string]float64 `json:"values,omitempty"`
	Flash  []string           `json:"flash,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the loaded layout document.
	Document *layoutfile.Document

	// Evaluator holds the solved system with the applied values.
	Evaluator *solver.Evaluator

	// Blocks are the placed nodes, root first.
	Blocks []layout.Block

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Equations  int
	Variables  int
	Free       int
	Notified   int
	LoadTime   time.Duration
	SolveTime  time.Duration
	UpdateTime time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return gerrors.ValidateFormat(format, ValidFormats...)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Path == "" && len(o.Source) == 0 {
		return gerrors.New(gerrors.ErrCodeInvalidInput, "a layout path or source is required")
	}
	for _, d := range []struct {
		name string
		v    float64
	}{{"width", o.Width}, {"height", o.Height}} {
		if math.IsNaN(d.v) || d.v < 0 || d.v > MaxWindowSize {
			return gerrors.New(gerrors.ErrCodeInvalidInput, "window %s %g out of range [0, %g]", d.name, d.v, MaxWindowSize)
		}
	}
	for name := range o.Values {
		if err := gerrors.ValidateVarName(name); err != nil && !isGenerated(name) {
			return err
		}
	}
	o.SetDefaults()
	for i, f := range o.Formats {
		o.Formats[i] = strings.ToLower(f)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// isGenerated reports whether name looks like a tree variable (_w3, _s7).
func isGenerated(name string) bool {
	return len(name) > 1 && name[0] == '_'
}

// SetDefaults fills in the window size, formats and logger.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatText}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
