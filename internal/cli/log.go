package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gremlin/pkg/observability"
)

// newLogger creates a logger writing to w at level. Timestamps are formatted
// as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time rounded to milliseconds.
// Example output: "Solved 42 variables elapsed=1.234s"
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports solver events at debug level.
type logHooks struct {
	logger *log.Logger
}

var _ observability.SolverHooks = logHooks{}

func (h logHooks) OnSolve(vars, free int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("solve failed", "variables", vars, "err", err)
		return
	}
	h.logger.Debug("solved system", "variables", vars, "free", free, "duration", d)
}

func (h logHooks) OnUpdate(evaluator string, supplied, invalidated, changed int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("update failed", "evaluator", evaluator, "supplied", supplied, "err", err)
		return
	}
	h.logger.Debug("updated",
		"evaluator", evaluator,
		"supplied", supplied,
		"invalidated", invalidated,
		"changed", changed,
		"duration", d)
}

func (h logHooks) OnNotify(evaluator, variable string, value float64) {
	h.logger.Debug("notify", "evaluator", evaluator, "variable", variable, "value", value)
}
