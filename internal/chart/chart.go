// Package chart decides which charts a task needs, decorates them and hands
// them to a renderer, collecting one outcome per chart.
package chart

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/KaramelBytes/skiron-cli/internal/dataset"
	"github.com/KaramelBytes/skiron-cli/internal/render"
	"github.com/KaramelBytes/skiron-cli/internal/task"
)

// Renderer draws one request into every given path.
type Renderer interface {
	Render(req render.Request, paths []string) error
}

// RenderError reports a chart that could not be produced.
type RenderError struct {
	Kind  render.Kind
	Field string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s of %s: %v", e.Kind, e.Field, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Outcome is the result of one chart. Err is a *RenderError or nil.
type Outcome struct {
	Kind  render.Kind
	Field string
	Paths []string
	Err   error
}

// OK reports whether the chart was written.
func (o Outcome) OK() bool { return o.Err == nil }

// Options tunes binning for the charts that need it.
type Options struct {
	HistogramBins int
	RoseSectors   int
	HeatmapBins   int
}

// Orchestrator produces every chart a task asks for.
type Orchestrator struct {
	renderer Renderer
	labels   *Labels
	opts     Options
	logger   *slog.Logger
}

// New returns an orchestrator. A nil labels table means DefaultLabels.
func New(r Renderer, labels *Labels, opts Options, logger *slog.Logger) *Orchestrator {
	if labels == nil {
		labels = DefaultLabels()
	}
	return &Orchestrator{renderer: r, labels: labels, opts: opts, logger: logger}
}

// BaseName is the file name of a chart without extension: kind, then the
// field names, then an optional derived-series suffix, joined by '_'.
func BaseName(k render.Kind, fields []string, derived string) string {
	name := k.String()
	for _, f := range fields {
		name += "_" + f
	}
	if derived != "" {
		name += "_" + derived
	}
	return name
}

// Paths returns one target path per format.
func Paths(dir, base string, formats []string) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = filepath.Join(dir, base+"."+f)
	}
	return out
}

type job struct {
	kind  render.Kind
	field string
	base  string
	deco  render.Decorations
	x, y  []float64
}

// Render draws the requested charts in the order histogram, scatter,
// heatmap, rose, timeseries. A failed chart never stops the others.
func (o *Orchestrator) Render(data *dataset.Data, spec *task.Spec) []Outcome {
	style := render.Style{
		DPI:       spec.Render.DPI,
		Width:     spec.Render.FigSize[0],
		Height:    spec.Render.FigSize[1],
		TitleFont: spec.Render.TitleFont,
		LabelFont: spec.Render.LabelFont,
		Bins:      o.opts.HistogramBins,
		Sectors:   o.opts.RoseSectors,
		HeatBins:  o.opts.HeatmapBins,
	}

	var outcomes []Outcome
	for _, j := range o.plan(data, spec) {
		req := render.Request{Kind: j.kind, Decorations: j.deco, Style: style, X: j.x, Y: j.y}
		if j.kind == render.Timeseries && data.Times != nil {
			req.Times = data.Times
			req.XLabel = "Time"
		}
		paths := Paths(spec.OutputDir, j.base, spec.Formats)
		out := Outcome{Kind: j.kind, Field: j.field, Paths: paths}
		if err := o.renderer.Render(req, paths); err != nil {
			out.Err = &RenderError{Kind: j.kind, Field: j.field, Err: err}
			o.logger.Warn("chart failed", "kind", j.kind.String(), "field", j.field, "error", err)
		} else {
			o.logger.Debug("chart written", "kind", j.kind.String(), "field", j.field, "files", len(paths))
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func (o *Orchestrator) plan(data *dataset.Data, spec *task.Spec) []job {
	var jobs []job
	// A column can be both a scalar and a vector component, or a component
	// of several vectors; each output file is planned once.
	planned := make(map[string]bool)
	add := func(js ...job) {
		for _, j := range js {
			if planned[j.base] {
				o.logger.Debug("chart already planned", "kind", j.kind.String(), "field", j.field)
				continue
			}
			planned[j.base] = true
			jobs = append(jobs, j)
		}
	}
	series := func(k render.Kind) {
		for _, p := range spec.Vectors {
			vs, ok := data.Vectors[p]
			if !ok {
				continue
			}
			add(
				job{kind: k, field: p.A, base: BaseName(k, []string{p.A}, ""), deco: o.labels.Field(k, p.A, ""), x: vs.X},
				job{kind: k, field: p.B, base: BaseName(k, []string{p.B}, ""), deco: o.labels.Field(k, p.B, ""), x: vs.Y},
				job{kind: k, field: p.Key(), base: BaseName(k, []string{p.A, p.B}, CodeMagnitude), deco: o.labels.Field(k, p.A, CodeMagnitude), x: vs.Magnitude},
				job{kind: k, field: p.Key(), base: BaseName(k, []string{p.A, p.B}, CodeDirection), deco: o.labels.Field(k, p.A, CodeDirection), x: vs.Direction},
			)
		}
		for _, s := range spec.Scalars {
			add(job{kind: k, field: s, base: BaseName(k, []string{s}, ""), deco: o.labels.Field(k, s, ""), x: data.Scalars[s]})
		}
	}
	pairs := func(k render.Kind, pick func(*dataset.VectorSeries) (x, y []float64)) {
		for _, p := range spec.Vectors {
			vs, ok := data.Vectors[p]
			if !ok {
				continue
			}
			x, y := pick(vs)
			add(job{kind: k, field: p.Key(), base: BaseName(k, []string{p.A, p.B}, ""), deco: o.labels.Pair(k, p.A, p.B), x: x, y: y})
		}
	}

	if spec.Want.Histogram {
		series(render.Histogram)
	}
	if spec.Want.Scatter {
		pairs(render.Scatter, func(vs *dataset.VectorSeries) ([]float64, []float64) { return vs.X, vs.Y })
	}
	if spec.Want.Heatmap {
		pairs(render.Heatmap, func(vs *dataset.VectorSeries) ([]float64, []float64) { return vs.Magnitude, vs.Direction })
	}
	if spec.Want.Rose {
		pairs(render.Rose, func(vs *dataset.VectorSeries) ([]float64, []float64) { return vs.Direction, vs.Magnitude })
	}
	if spec.Want.Timeseries {
		series(render.Timeseries)
	}
	return jobs
}
