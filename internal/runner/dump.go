package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/KaramelBytes/skiron-cli/internal/dataset"
	"github.com/KaramelBytes/skiron-cli/internal/stats"
	"github.com/KaramelBytes/skiron-cli/internal/task"
	"github.com/KaramelBytes/skiron-cli/internal/utils"
)

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle("%s", title)
	return tbl
}

func (r *Runner) dumpSpec(s *task.Spec) {
	tbl := newTable("Task Summary")
	tbl.AppendHeader(table.Row{"Key", "Value"})
	tbl.AppendRow(table.Row{"conf", s.ConfPath})
	tbl.AppendRow(table.Row{"file", s.DataFile})
	tbl.AppendRow(table.Row{"save", s.OutputDir})
	tbl.AppendRow(table.Row{"scal", strings.Join(s.Scalars, ", ")})
	pairs := make([]string, len(s.Vectors))
	for i, p := range s.Vectors {
		pairs[i] = p.Key()
	}
	tbl.AppendRow(table.Row{"vec", strings.Join(pairs, ", ")})
	tbl.AppendRow(table.Row{"ftype", strings.Join(s.Formats, ", ")})
	tbl.AppendRow(table.Row{"convention", s.Convention.String()})
	tbl.AppendRow(table.Row{"outputs", strings.Join(wanted(s.Want), ", ")})
	tbl.AppendRow(table.Row{"dpi", s.Render.DPI})
	tbl.AppendRow(table.Row{"figsize", fmt.Sprintf("%g x %g in", s.Render.FigSize[0], s.Render.FigSize[1])})
	tbl.AppendRow(table.Row{"fonts", fmt.Sprintf("title %g, label %g", s.Render.TitleFont, s.Render.LabelFont)})
	tbl.AppendRow(table.Row{"nodata", strings.Join(s.NoData, ", ")})
	if s.DateTime != "" {
		tbl.AppendRow(table.Row{"datetime", s.DateTime})
		tbl.AppendRow(table.Row{"window", window(s.TimeFrom, s.TimeTo)})
	}
	fmt.Fprintln(r.cfg.Out, tbl.Render())
}

func wanted(w task.Want) []string {
	var out []string
	for _, x := range []struct {
		on   bool
		name string
	}{
		{w.Histogram, task.KeyHisto},
		{w.Scatter, task.KeyScatter},
		{w.Rose, task.KeyRose},
		{w.Heatmap, task.KeyHeat},
		{w.Timeseries, task.KeySeries},
		{w.Stats, task.KeyStats},
	} {
		if x.on {
			out = append(out, x.name)
		}
	}
	return out
}

func window(from, to *time.Time) string {
	f, t := "-", "-"
	if from != nil {
		f = from.Format(time.DateTime)
	}
	if to != nil {
		t = to.Format(time.DateTime)
	}
	return f + " .. " + t
}

func (r *Runner) dumpData(s *task.Spec, d *dataset.Data) {
	tbl := newTable("Data Summary")
	tbl.AppendRow(table.Row{"File", d.Path})
	tbl.AppendRow(table.Row{"Size", humanize.Bytes(uint64(utils.FileSize(d.Path)))})
	tbl.AppendRow(table.Row{"Total Records", humanize.Comma(int64(d.Total))})
	tbl.AppendRow(table.Row{"Valid Records", humanize.Comma(int64(d.Valid))})
	tbl.AppendRow(table.Row{"Rejected Records", humanize.Comma(int64(len(d.Rejected)))})
	if s.DateTime != "" {
		tbl.AppendRow(table.Row{"Outside Window", humanize.Comma(int64(d.Filtered))})
	}
	tbl.AppendRow(table.Row{"Columns to process", len(s.Scalars) + 2*len(s.Vectors)})
	fmt.Fprintln(r.cfg.Out, tbl.Render())
}

func (r *Runner) dumpStats(res *stats.Result) {
	rep := stats.BuildReport(res)
	tbl := newTable("Statistics")
	header := table.Row{""}
	for _, c := range rep.Columns {
		header = append(header, c)
	}
	tbl.AppendHeader(header)
	for _, row := range rep.Rows {
		tr := table.Row{row.Label}
		for _, c := range row.Cells {
			tr = append(tr, c)
		}
		tbl.AppendRow(tr)
	}
	fmt.Fprintln(r.cfg.Out, tbl.Render())
}

func (r *Runner) dumpTiming(res *Result) {
	tbl := newTable("Timing")
	tbl.AppendHeader(table.Row{"Stage", "Duration"})
	tbl.AppendRow(table.Row{"task", res.ID})
	var total time.Duration
	for _, st := range res.Stages {
		tbl.AppendRow(table.Row{st.Stage, st.Duration.String()})
		total += st.Duration
	}
	tbl.AppendFooter(table.Row{"Total", total.String()})
	fmt.Fprintln(r.cfg.Out, tbl.Render())
}
