package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ECharts renders interactive HTML pages with go-echarts.
type ECharts struct{}

// Formats implements Backend.
func (ECharts) Formats() []string { return []string{"html"} }

// Render implements Backend.
func (ECharts) Render(req Request, format string, w io.Writer) error {
	if format != "html" {
		return &UnsupportedFormatError{Format: format}
	}
	switch req.Kind {
	case Histogram:
		return htmlHistogram(req, w)
	case Scatter:
		return htmlScatter(req, w)
	case Timeseries:
		return htmlTimeseries(req, w)
	case Heatmap:
		return htmlHeatmap(req, w)
	case Rose:
		return htmlRose(req, w)
	default:
		return fmt.Errorf("echarts: unsupported chart kind %s", req.Kind)
	}
}

func htmlInit(s Style) opts.Initialization {
	wpx, hpx := s.Pixels()
	return opts.Initialization{
		PageTitle: "skiron",
		Width:     fmt.Sprintf("%dpx", wpx),
		Height:    fmt.Sprintf("%dpx", hpx),
	}
}

func htmlTitle(req Request) opts.Title {
	return opts.Title{
		Title:      req.Title,
		Left:       "center",
		TitleStyle: &opts.TextStyle{FontSize: int(req.Style.TitleFont)},
	}
}

func htmlXAxis(req Request, kind string, data any) opts.XAxis {
	return opts.XAxis{
		Name:      req.XLabel,
		Type:      kind,
		Data:      data,
		AxisLabel: &opts.AxisLabel{FontSize: int(req.Style.LabelFont)},
	}
}

func htmlYAxis(req Request, kind string, data any) opts.YAxis {
	return opts.YAxis{
		Name:      req.YLabel,
		Type:      kind,
		Data:      data,
		AxisLabel: &opts.AxisLabel{FontSize: int(req.Style.LabelFont)},
	}
}

func htmlTooltip(trigger string) opts.Tooltip {
	return opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}
}

func htmlHistogram(req Request, w io.Writer) error {
	edges, counts, err := Histogram1D(req.X, req.Style.Bins)
	if err != nil {
		return err
	}
	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		labels[i] = tick((edges[i] + edges[i+1]) / 2)
		data[i] = opts.BarData{Value: c}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(htmlInit(req.Style)),
		charts.WithTitleOpts(htmlTitle(req)),
		charts.WithTooltipOpts(htmlTooltip("axis")),
		charts.WithXAxisOpts(htmlXAxis(req, "category", nil)),
		charts.WithYAxisOpts(htmlYAxis(req, "value", nil)),
	)
	bar.SetXAxis(labels).AddSeries(req.Legend, data)
	return bar.Render(w)
}

func htmlScatter(req Request, w io.Writer) error {
	data := make([]opts.ScatterData, len(req.X))
	for i := range req.X {
		data[i] = opts.ScatterData{Value: []float64{req.X[i], req.Y[i]}, SymbolSize: 3}
	}
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(htmlInit(req.Style)),
		charts.WithTitleOpts(htmlTitle(req)),
		charts.WithTooltipOpts(htmlTooltip("item")),
		charts.WithXAxisOpts(htmlXAxis(req, "value", nil)),
		charts.WithYAxisOpts(htmlYAxis(req, "value", nil)),
	)
	sc.AddSeries(req.Legend, data)
	return sc.Render(w)
}

func htmlTimeseries(req Request, w io.Writer) error {
	labels := make([]string, len(req.X))
	data := make([]opts.LineData, len(req.X))
	for i, v := range req.X {
		if req.Times != nil {
			labels[i] = req.Times[i].Format("2006-01-02 15:04")
		} else {
			labels[i] = fmt.Sprint(i)
		}
		data[i] = opts.LineData{Value: v}
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(htmlInit(req.Style)),
		charts.WithTitleOpts(htmlTitle(req)),
		charts.WithTooltipOpts(htmlTooltip("axis")),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}, opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(htmlXAxis(req, "category", nil)),
		charts.WithYAxisOpts(htmlYAxis(req, "value", nil)),
	)
	line.SetXAxis(labels).AddSeries(req.Legend, data)
	return line.Render(w)
}

func htmlHeatmap(req Request, w io.Writer) error {
	g, err := Histogram2D(req.X, req.Y, req.Style.HeatBins, req.Style.HeatBins)
	if err != nil {
		return err
	}
	xl := make([]string, len(g.XEdges)-1)
	for i := range xl {
		xl[i] = tick((g.XEdges[i] + g.XEdges[i+1]) / 2)
	}
	yl := make([]string, len(g.YEdges)-1)
	for j := range yl {
		yl[j] = tick((g.YEdges[j] + g.YEdges[j+1]) / 2)
	}
	var data []opts.HeatMapData
	peak := 1
	for i := range g.Counts {
		for j := range g.Counts[i] {
			pct := g.Percent(i, j)
			peak = max(peak, pct)
			data = append(data, opts.HeatMapData{Value: []any{i, j, pct}})
		}
	}
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(htmlInit(req.Style)),
		charts.WithTitleOpts(htmlTitle(req)),
		charts.WithTooltipOpts(htmlTooltip("item")),
		charts.WithXAxisOpts(htmlXAxis(req, "category", xl)),
		charts.WithYAxisOpts(htmlYAxis(req, "category", yl)),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(peak),
			Orient:     "horizontal",
			Left:       "center",
			Bottom:     "2%",
		}),
	)
	hm.AddSeries(req.Legend, data, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "inside"}))
	return hm.Render(w)
}

// htmlRose draws the rose table as sector bars stacked by magnitude bin.
func htmlRose(req Request, w io.Writer) error {
	rose, err := RoseTable(req.X, req.Y, req.Style.Sectors, req.Style.Bins)
	if err != nil {
		return err
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(htmlInit(req.Style)),
		charts.WithTitleOpts(htmlTitle(req)),
		charts.WithTooltipOpts(htmlTooltip("axis")),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Top: "8%"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", AxisLabel: &opts.AxisLabel{FontSize: int(req.Style.LabelFont)}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%", Type: "value"}),
	)
	bar.SetXAxis(rose.Sectors)
	for b, row := range rose.Freq {
		data := make([]opts.BarData, len(row))
		for s, f := range row {
			data[s] = opts.BarData{Value: f}
		}
		name := fmt.Sprintf("%s [%s, %s)", req.Legend, tick(rose.SpeedEdge[b]), tick(rose.SpeedEdge[b+1]))
		bar.AddSeries(name, data, charts.WithBarChartOpts(opts.BarChart{Stack: "rose"}))
	}
	return bar.Render(w)
}
