package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/skiron-cli/internal/observability"
	"github.com/KaramelBytes/skiron-cli/internal/render"
	"github.com/KaramelBytes/skiron-cli/internal/stats"
	"github.com/KaramelBytes/skiron-cli/internal/task"
)

const sampleCSV = "Time,T,U,V\n" +
	"2021-01-01 00:00,280.1,1,0\n" +
	"2021-01-01 01:00,281.4,0,1\n" +
	"2021-01-01 02:00,279.9,-1,0\n"

type fakeRenderer struct {
	clock *clockwork.FakeClock
	err   error
	calls []render.Request
}

func (f *fakeRenderer) Render(req render.Request, paths []string) error {
	f.calls = append(f.calls, req)
	if f.clock != nil {
		f.clock.Advance(time.Second)
	}
	return f.err
}

func writeTask(t *testing.T, dir, name, conf string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"), []byte(sampleCSV), 0o644))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(conf), 0o644))
	return path
}

func newRunner(r *fakeRenderer, out *bytes.Buffer, mutate func(*Config)) *Runner {
	cfg := Config{
		Renderer: r,
		Clock:    clockwork.NewFakeClock(),
		Metrics:  observability.NewMetrics(),
		Out:      out,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg)
}

func counter(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabel(m, label, value) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func TestRunTaskCompletes(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	conf := writeTask(t, dir, "task.conf", "file = data.csv\nscal = t\nvec = u, v\nhisto = 1\nstats = y\nsave = out\n")

	fr := &fakeRenderer{}
	var out bytes.Buffer
	r := newRunner(fr, &out, nil)

	res := r.RunTask(conf)
	require.True(t, res.Completed(), "%v", res.Err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 3, res.Data.Valid)
	assert.Len(t, fr.calls, len(res.Charts))
	assert.NotEmpty(t, res.Charts)
	assert.Zero(t, res.FailedCharts())
	assert.Equal(t, filepath.Join(dir, "out", stats.DefaultReportName), res.ReportPath)
	assert.FileExists(t, res.ReportPath)

	stages := make([]string, len(res.Stages))
	for i, s := range res.Stages {
		stages[i] = s.Stage
	}
	assert.Equal(t, []string{StageParse, StageLoad, StageCharts, StageStats}, stages)
	assert.Contains(t, out.String(), "✓ "+conf)
}

func TestRunContinuesAfterFailedTask(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	good := writeTask(t, dir, "good.conf", "file = data.csv\nscal = t\nstats = y\n")
	bad := writeTask(t, dir, "bad.conf", "file = data.csv\nscal = nothere\nstats = y\n")
	missing := filepath.Join(dir, "missing.conf")

	fr := &fakeRenderer{}
	var out bytes.Buffer
	r := newRunner(fr, &out, nil)

	sum := r.Run(context.Background(), []string{bad, missing, good})
	assert.Equal(t, 1, sum.Completed)
	assert.Equal(t, 2, sum.Failed)
	require.Len(t, sum.Results, 3)
	assert.False(t, sum.Results[0].Completed())
	assert.True(t, sum.Results[2].Completed())
	assert.Contains(t, out.String(), "Task was not read correctly --> "+bad)
	assert.Contains(t, out.String(), "[3/3] Processing")

	reg := r.cfg.Metrics.Registry
	assert.Equal(t, 1.0, counter(t, reg, "skiron_tasks_total", "outcome", "completed"))
	assert.Equal(t, 2.0, counter(t, reg, "skiron_tasks_total", "outcome", "failed"))
}

func TestRunStopsWhenCancelled(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	conf := writeTask(t, dir, "task.conf", "file = data.csv\nscal = t\nstats = y\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum := newRunner(&fakeRenderer{}, &bytes.Buffer{}, nil).Run(ctx, []string{conf})
	assert.Zero(t, sum.Completed)
	assert.Empty(t, sum.Results)
}

func TestDryRunOnlyParses(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	conf := writeTask(t, dir, "task.conf", "file = data.csv\nscal = t\nhisto = y\nstats = y\nsave = out\n")

	fr := &fakeRenderer{}
	var out bytes.Buffer
	r := newRunner(fr, &out, func(c *Config) { c.DryRun = true })

	res := r.RunTask(conf)
	require.True(t, res.Completed())
	assert.Nil(t, res.Data)
	assert.Empty(t, fr.calls)
	require.Len(t, res.Stages, 1)
	assert.NoFileExists(t, filepath.Join(dir, "out", stats.DefaultReportName))
	assert.Contains(t, out.String(), "dry run")
}

func TestStageTimingUsesClock(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	conf := writeTask(t, dir, "task.conf", "file = data.csv\nscal = t\nhisto = y\nseries = y\n")

	clock := clockwork.NewFakeClock()
	fr := &fakeRenderer{clock: clock}
	var out bytes.Buffer
	r := newRunner(fr, &out, func(c *Config) {
		c.Clock = clock
		c.Timing = true
	})

	res := r.RunTask(conf)
	require.True(t, res.Completed())
	var charts time.Duration
	for _, s := range res.Stages {
		if s.Stage == StageCharts {
			charts = s.Duration
		}
	}
	assert.Equal(t, time.Duration(len(fr.calls))*time.Second, charts)
	assert.Contains(t, out.String(), "Timing")
	assert.Contains(t, out.String(), res.ID)
}

func TestStatsSkippedWhenNotRequested(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	conf := writeTask(t, dir, "task.conf", "file = data.csv\nscal = t\nhisto = y\n")

	res := newRunner(&fakeRenderer{}, &bytes.Buffer{}, nil).RunTask(conf)
	require.True(t, res.Completed())
	assert.ErrorIs(t, res.StatsErr, stats.ErrSkipped)
	assert.Empty(t, res.ReportPath)
}

func TestDegenerateStatsStillCompletes(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"), []byte("T\nnull\nabc\n"), 0o644))
	conf := filepath.Join(dir, "task.conf")
	require.NoError(t, os.WriteFile(conf, []byte("file = data.csv\nscal = t\nstats = y\n"), 0o644))

	var out bytes.Buffer
	res := newRunner(&fakeRenderer{}, &out, nil).RunTask(conf)
	require.True(t, res.Completed())
	assert.Zero(t, res.Data.Valid)
	var de *stats.DegenerateDataError
	assert.ErrorAs(t, res.StatsErr, &de)
	assert.Contains(t, out.String(), "No valid records")
	assert.Contains(t, out.String(), "could not be calculated")
}

func TestChartFailuresAreReported(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	conf := writeTask(t, dir, "task.conf", "file = data.csv\nscal = t\nhisto = y\n")

	fr := &fakeRenderer{err: errors.New("boom")}
	var out bytes.Buffer
	r := newRunner(fr, &out, nil)

	res := r.RunTask(conf)
	require.True(t, res.Completed())
	assert.Equal(t, len(res.Charts), res.FailedCharts())
	assert.Contains(t, out.String(), "chart(s) could not be created")
	assert.Equal(t, 1.0, counter(t, r.cfg.Metrics.Registry, "skiron_charts_total", "outcome", "error"))
}

func TestVerboseDumps(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	conf := writeTask(t, dir, "task.conf", "file = data.csv\nscal = t\nvec = u, v\nstats = y\ndatetime = time\n")

	var out bytes.Buffer
	res := newRunner(&fakeRenderer{}, &out, func(c *Config) { c.Verbose = true }).RunTask(conf)
	require.True(t, res.Completed())

	s := out.String()
	assert.Contains(t, s, "Task Summary")
	assert.Contains(t, s, "Data Summary")
	assert.Contains(t, s, "Statistics")
	assert.Contains(t, s, "(u, v)")
	assert.Contains(t, s, "meteorological")
}

func TestSettingsKeepOnlyRenderableFormats(t *testing.T) {
	t.Parallel()

	s := task.DefaultSettings()
	s.AllowedFormats = []string{"pdf", "svg", "eps", "png"}
	s.DefaultFormat = "pdf"

	got := supportedOnly(s, render.DefaultRegistry(), observability.Discard())
	assert.Equal(t, []string{"svg", "png"}, got.AllowedFormats)
	assert.Equal(t, "svg", got.DefaultFormat)

	s.AllowedFormats = []string{"ps"}
	got = supportedOnly(s, render.DefaultRegistry(), observability.Discard())
	assert.Equal(t, task.DefaultSettings().AllowedFormats, got.AllowedFormats)
	assert.Equal(t, task.DefaultSettings().DefaultFormat, got.DefaultFormat)
}

func TestUnrenderableFormatFallsBackToDefault(t *testing.T) {
	t.Parallel()
	conf := writeTask(t, t.TempDir(), "task.conf", "file = data.csv\nscal = t\nhisto = y\nftype = pdf\n")

	s := task.DefaultSettings()
	s.AllowedFormats = append(s.AllowedFormats, "pdf")
	res := New(Config{Settings: s, Clock: clockwork.NewFakeClock(), DryRun: true}).RunTask(conf)
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"png"}, res.Spec.Formats)
}
