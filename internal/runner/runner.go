// Package runner processes task files one after another, turning task-level
// failures into a skipped task and a console line.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/KaramelBytes/skiron-cli/internal/chart"
	"github.com/KaramelBytes/skiron-cli/internal/dataset"
	"github.com/KaramelBytes/skiron-cli/internal/observability"
	"github.com/KaramelBytes/skiron-cli/internal/render"
	"github.com/KaramelBytes/skiron-cli/internal/stats"
	"github.com/KaramelBytes/skiron-cli/internal/task"
)

// Stage names, in execution order.
const (
	StageParse  = "parse"
	StageLoad   = "load"
	StageCharts = "charts"
	StageStats  = "stats"
)

// Config wires a Runner. Zero-valued dependencies get working defaults.
type Config struct {
	Settings   task.Settings
	Charts     chart.Options
	Labels     *chart.Labels
	ReportName string

	DryRun  bool
	Verbose bool
	Timing  bool

	Renderer chart.Renderer
	Clock    clockwork.Clock
	Metrics  *observability.Metrics
	Logger   *slog.Logger
	Out      io.Writer
}

// Runner executes tasks.
type Runner struct {
	cfg  Config
	ok   *color.Color
	warn *color.Color
	fail *color.Color
}

// New returns a Runner for cfg.
func New(cfg Config) *Runner {
	if cfg.Renderer == nil {
		cfg.Renderer = render.DefaultRegistry()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NewMetrics()
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.Discard()
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if len(cfg.Settings.AllowedFormats) == 0 {
		cfg.Settings = task.DefaultSettings()
	}
	if fs, ok := cfg.Renderer.(formatSupporter); ok {
		cfg.Settings = supportedOnly(cfg.Settings, fs, cfg.Logger)
	}
	return &Runner{
		cfg:  cfg,
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed),
	}
}

type formatSupporter interface {
	Supports(format string) bool
}

// supportedOnly drops allowed formats the renderer has no backend for. When
// the default format is dropped the first remaining one takes its place.
func supportedOnly(s task.Settings, fs formatSupporter, logger *slog.Logger) task.Settings {
	kept := make([]string, 0, len(s.AllowedFormats))
	for _, f := range s.AllowedFormats {
		if fs.Supports(f) {
			kept = append(kept, f)
			continue
		}
		logger.Warn("allowed format has no renderer, ignoring", "format", f)
	}
	if len(kept) == 0 {
		def := task.DefaultSettings()
		logger.Warn("no allowed format can be rendered, using defaults", "formats", def.AllowedFormats)
		s.AllowedFormats, s.DefaultFormat = def.AllowedFormats, def.DefaultFormat
		return s
	}
	s.AllowedFormats = kept
	if !slices.Contains(kept, s.DefaultFormat) {
		logger.Warn("default format has no renderer", "format", s.DefaultFormat, "using", kept[0])
		s.DefaultFormat = kept[0]
	}
	return s
}

// StageTime is the duration of one stage of a task.
type StageTime struct {
	Stage    string
	Duration time.Duration
}

// Result describes one processed task. Err is set when the task was skipped.
type Result struct {
	ID         string
	Conf       string
	Spec       *task.Spec
	Data       *dataset.Data
	Stats      *stats.Result
	StatsErr   error
	ReportPath string
	Charts     []chart.Outcome
	Stages     []StageTime
	Err        error
}

// Completed reports whether the task ran to the end.
func (r *Result) Completed() bool { return r.Err == nil }

// FailedCharts counts charts that could not be written.
func (r *Result) FailedCharts() int {
	n := 0
	for _, o := range r.Charts {
		if !o.OK() {
			n++
		}
	}
	return n
}

// Summary is the outcome of a whole run.
type Summary struct {
	Completed int
	Failed    int
	Results   []*Result
}

// Run processes every task file in order. A failed task never stops the run;
// a cancelled context does, before the next task starts.
func (r *Runner) Run(ctx context.Context, confs []string) Summary {
	var sum Summary
	for i, conf := range confs {
		if err := ctx.Err(); err != nil {
			r.cfg.Logger.Warn("run cancelled", "remaining", len(confs)-i, "error", err)
			break
		}
		fmt.Fprintf(r.cfg.Out, "[%d/%d] Processing %s...\n", i+1, len(confs), conf)
		res := r.RunTask(conf)
		sum.Results = append(sum.Results, res)
		if res.Completed() {
			sum.Completed++
		} else {
			sum.Failed++
		}
	}
	return sum
}

// stage runs fn and records its duration.
func (r *Runner) stage(res *Result, name string, fn func()) {
	start := r.cfg.Clock.Now()
	fn()
	d := r.cfg.Clock.Since(start)
	res.Stages = append(res.Stages, StageTime{Stage: name, Duration: d})
	r.cfg.Metrics.StageDuration.WithLabelValues(name).Observe(d.Seconds())
}

// RunTask processes a single task file.
func (r *Runner) RunTask(conf string) *Result {
	res := &Result{ID: uuid.NewString(), Conf: conf}
	logger := r.cfg.Logger.With("task_id", res.ID, "conf", conf)
	out := r.cfg.Out

	r.stage(res, StageParse, func() {
		res.Spec, res.Err = task.Parse(conf, r.cfg.Settings, logger)
	})
	if res.Err != nil {
		logger.Error("task was not read correctly", "error", res.Err)
		r.fail.Fprintf(out, "✗ Task was not read correctly --> %s: %v\n", conf, res.Err)
		return r.finish(res)
	}
	if r.cfg.Verbose {
		r.dumpSpec(res.Spec)
	}
	if r.cfg.DryRun {
		r.ok.Fprintf(out, "✓ %s is valid (dry run, nothing written)\n", conf)
		return r.finish(res)
	}

	r.stage(res, StageLoad, func() {
		res.Data, res.Err = dataset.Load(res.Spec, logger)
	})
	if res.Err != nil {
		logger.Error("task could not load data", "error", res.Err)
		r.fail.Fprintf(out, "✗ Task could not load data correctly --> %s: %v\n", conf, res.Err)
		return r.finish(res)
	}
	r.recordRows(res.Data)
	if r.cfg.Verbose {
		r.dumpData(res.Spec, res.Data)
	}
	if res.Data.Valid == 0 {
		r.warn.Fprintf(out, "⚠ No valid records in %s\n", res.Data.Path)
	}

	if res.Spec.Want.Charts() {
		r.stage(res, StageCharts, func() {
			res.Charts = chart.New(r.cfg.Renderer, r.cfg.Labels, r.cfg.Charts, logger).Render(res.Data, res.Spec)
		})
		for _, o := range res.Charts {
			outcome := "ok"
			if !o.OK() {
				outcome = "error"
			}
			r.cfg.Metrics.Charts.WithLabelValues(o.Kind.String(), outcome).Inc()
		}
		if n := res.FailedCharts(); n > 0 {
			r.warn.Fprintf(out, "⚠ %d of %d chart(s) could not be created\n", n, len(res.Charts))
		}
	}

	r.stage(res, StageStats, func() {
		res.Stats, res.StatsErr = stats.Compute(res.Data, res.Spec)
		if res.StatsErr == nil {
			res.ReportPath, res.StatsErr = stats.SaveReport(res.Spec.OutputDir, r.cfg.ReportName, res.Stats)
		}
	})
	var degenerate *stats.DegenerateDataError
	switch {
	case errors.Is(res.StatsErr, stats.ErrSkipped):
		logger.Info("statistics were not requested, skipping")
	case errors.As(res.StatsErr, &degenerate):
		logger.Warn("statistics could not be calculated", "series", degenerate.Series, "reason", degenerate.Reason)
		r.warn.Fprintf(out, "⚠ Some or all of the statistical indexes could not be calculated: %v\n", res.StatsErr)
	case res.StatsErr != nil:
		logger.Error("statistics report failed", "error", res.StatsErr)
		r.warn.Fprintf(out, "⚠ Statistics report could not be written: %v\n", res.StatsErr)
	default:
		if r.cfg.Verbose {
			r.dumpStats(res.Stats)
		}
	}

	r.ok.Fprintf(out, "✓ %s: %d chart(s)", conf, len(res.Charts)-res.FailedCharts())
	if res.ReportPath != "" {
		fmt.Fprintf(out, ", report %s", res.ReportPath)
	}
	fmt.Fprintln(out)
	return r.finish(res)
}

func (r *Runner) finish(res *Result) *Result {
	outcome := "completed"
	if res.Err != nil {
		outcome = "failed"
	}
	r.cfg.Metrics.Tasks.WithLabelValues(outcome).Inc()
	if r.cfg.Timing {
		r.dumpTiming(res)
	}
	return res
}

func (r *Runner) recordRows(d *dataset.Data) {
	m := r.cfg.Metrics.Rows
	m.WithLabelValues("total").Add(float64(d.Total))
	m.WithLabelValues("valid").Add(float64(d.Valid))
	m.WithLabelValues("rejected").Add(float64(len(d.Rejected)))
	m.WithLabelValues("filtered").Add(float64(d.Filtered))
}
