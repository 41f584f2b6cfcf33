package render

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// GoChart renders raster and vector images with go-chart.
type GoChart struct{}

// Formats implements Backend.
func (GoChart) Formats() []string { return []string{"png", "svg"} }

// Render implements Backend.
func (GoChart) Render(req Request, format string, w io.Writer) error {
	var provider chart.RendererProvider
	switch format {
	case "png":
		provider = chart.PNG
	case "svg":
		provider = chart.SVG
	default:
		return &UnsupportedFormatError{Format: format}
	}
	switch req.Kind {
	case Histogram:
		return goHistogram(req, provider, w)
	case Scatter:
		return goScatter(req, provider, w)
	case Timeseries:
		return goTimeseries(req, provider, w)
	case Heatmap:
		return goHeatmap(req, provider, w)
	case Rose:
		return goRose(req, provider, w)
	default:
		return fmt.Errorf("go-chart: unsupported chart kind %s", req.Kind)
	}
}

func tick(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

func labelStyle(s Style) chart.Style { return chart.Style{FontSize: s.LabelFont} }

// paddedRange spans values with a small margin so a constant series still has a range.
func paddedRange(values []float64) *chart.ContinuousRange {
	lo, hi := slices.Min(values), slices.Max(values)
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(lo)*0.05, 0.5)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func goHistogram(req Request, provider chart.RendererProvider, w io.Writer) error {
	edges, counts, err := Histogram1D(req.X, req.Style.Bins)
	if err != nil {
		return err
	}
	wpx, hpx := req.Style.Pixels()
	bars := make([]chart.Value, len(counts))
	peak := 1.0
	for i, c := range counts {
		bars[i] = chart.Value{Label: tick((edges[i] + edges[i+1]) / 2), Value: float64(c)}
		peak = math.Max(peak, float64(c))
	}
	slot := int(float64(wpx) * 0.7 / float64(len(bars)))
	bc := chart.BarChart{
		Title:      req.Title,
		TitleStyle: chart.Style{FontSize: req.Style.TitleFont},
		Width:      wpx,
		Height:     hpx,
		DPI:        req.Style.DPI,
		Background: chart.Style{Padding: chart.Box{Top: int(4 * req.Style.TitleFont), Left: 20, Right: 20, Bottom: 20}},
		BarWidth:   max(1, slot*4/5),
		BarSpacing: max(1, slot/5),
		XAxis:      labelStyle(req.Style),
		YAxis: chart.YAxis{
			Name:      req.YLabel,
			NameStyle: labelStyle(req.Style),
			Style:     labelStyle(req.Style),
			Range:     &chart.ContinuousRange{Min: 0, Max: peak * 1.1},
		},
		Bars: bars,
	}
	return bc.Render(provider, w)
}

func goScatter(req Request, provider chart.RendererProvider, w io.Writer) error {
	wpx, hpx := req.Style.Pixels()
	ch := chart.Chart{
		Title:      req.Title,
		TitleStyle: chart.Style{FontSize: req.Style.TitleFont},
		Width:      wpx,
		Height:     hpx,
		DPI:        req.Style.DPI,
		Background: chart.Style{Padding: chart.Box{Top: int(4 * req.Style.TitleFont), Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: req.XLabel, NameStyle: labelStyle(req.Style), Style: labelStyle(req.Style), Range: paddedRange(req.X)},
		YAxis:      chart.YAxis{Name: req.YLabel, NameStyle: labelStyle(req.Style), Style: labelStyle(req.Style), Range: paddedRange(req.Y)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    req.Legend,
				Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 2, DotColor: chart.ColorBlue},
				XValues: req.X,
				YValues: req.Y,
			},
		},
	}
	return ch.Render(provider, w)
}

func goTimeseries(req Request, provider chart.RendererProvider, w io.Writer) error {
	if len(req.X) < 2 {
		return fmt.Errorf("timeseries needs at least two points, got %d", len(req.X))
	}
	wpx, hpx := req.Style.Pixels()
	line := chart.Style{StrokeWidth: 1, StrokeColor: chart.ColorBlue}
	var series chart.Series
	xaxis := chart.XAxis{Name: req.XLabel, NameStyle: labelStyle(req.Style), Style: labelStyle(req.Style)}
	if req.Times != nil {
		series = chart.TimeSeries{Name: req.Legend, Style: line, XValues: req.Times, YValues: req.X}
		xaxis.ValueFormatter = chart.TimeValueFormatterWithFormat("2006-01-02 15:04")
	} else {
		idx := make([]float64, len(req.X))
		for i := range idx {
			idx[i] = float64(i)
		}
		series = chart.ContinuousSeries{Name: req.Legend, Style: line, XValues: idx, YValues: req.X}
	}
	ch := chart.Chart{
		Title:      req.Title,
		TitleStyle: chart.Style{FontSize: req.Style.TitleFont},
		Width:      wpx,
		Height:     hpx,
		DPI:        req.Style.DPI,
		Background: chart.Style{Padding: chart.Box{Top: int(4 * req.Style.TitleFont), Left: 20, Right: 20, Bottom: 20}},
		XAxis:      xaxis,
		YAxis:      chart.YAxis{Name: req.YLabel, NameStyle: labelStyle(req.Style), Style: labelStyle(req.Style), Range: paddedRange(req.X)},
		Series:     []chart.Series{series},
	}
	return ch.Render(provider, w)
}

// canvas wraps a bare go-chart renderer for the charts go-chart has no type for.
type canvas struct {
	r    chart.Renderer
	w, h int
}

func newCanvas(provider chart.RendererProvider, s Style) (*canvas, error) {
	wpx, hpx := s.Pixels()
	r, err := provider(wpx, hpx)
	if err != nil {
		return nil, err
	}
	r.SetDPI(s.DPI)
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	r.SetFont(font)
	c := &canvas{r: r, w: wpx, h: hpx}
	c.rect(0, 0, wpx, hpx, drawing.ColorWhite)
	return c, nil
}

func (c *canvas) polygon(pts [][2]int, fill, stroke drawing.Color) {
	if len(pts) == 0 {
		return
	}
	c.r.SetFillColor(fill)
	c.r.SetStrokeColor(stroke)
	c.r.SetStrokeWidth(1)
	c.r.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		c.r.LineTo(p[0], p[1])
	}
	c.r.LineTo(pts[0][0], pts[0][1])
	c.r.Close()
	c.r.FillStroke()
}

func (c *canvas) rect(x0, y0, x1, y1 int, col drawing.Color) {
	c.polygon([][2]int{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}, col, col)
}

// text draws s with its centre at x and baseline at y.
func (c *canvas) text(s string, x, y int, size float64, col drawing.Color) {
	c.r.SetFontSize(size)
	c.r.SetFontColor(col)
	box := c.r.MeasureText(s)
	c.r.Text(s, x-box.Width()/2, y)
}

func (c *canvas) save(w io.Writer) error { return c.r.Save(w) }

func goHeatmap(req Request, provider chart.RendererProvider, w io.Writer) error {
	g, err := Histogram2D(req.X, req.Y, req.Style.HeatBins, req.Style.HeatBins)
	if err != nil {
		return err
	}
	c, err := newCanvas(provider, req.Style)
	if err != nil {
		return err
	}
	nx, ny := len(g.XEdges)-1, len(g.YEdges)-1
	left, right := c.w*15/100, c.w*95/100
	top, bottom := c.h*12/100, c.h*85/100
	cw := float64(right-left) / float64(nx)
	chh := float64(bottom-top) / float64(ny)

	peak := 1
	for i := range g.Counts {
		for j := range g.Counts[i] {
			peak = max(peak, g.Percent(i, j))
		}
	}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			x0 := left + int(float64(i)*cw)
			x1 := left + int(float64(i+1)*cw)
			y1 := bottom - int(float64(j)*chh)
			y0 := bottom - int(float64(j+1)*chh)
			pct := g.Percent(i, j)
			c.rect(x0, y0, x1, y1, chart.Viridis(float64(pct), 0, float64(peak)))
			c.text(strconv.Itoa(pct), (x0+x1)/2, (y0+y1)/2, req.Style.LabelFont*0.8, drawing.ColorWhite)
		}
	}
	for i := 0; i < nx; i++ {
		x := left + int((float64(i)+0.5)*cw)
		c.text(tick((g.XEdges[i]+g.XEdges[i+1])/2), x, bottom+int(2*req.Style.LabelFont), req.Style.LabelFont*0.8, drawing.ColorBlack)
	}
	for j := 0; j < ny; j++ {
		y := bottom - int((float64(j)+0.5)*chh)
		c.text(tick((g.YEdges[j]+g.YEdges[j+1])/2), left/2, y, req.Style.LabelFont*0.8, drawing.ColorBlack)
	}
	c.text(req.Title, c.w/2, top/2, req.Style.TitleFont, drawing.ColorBlack)
	c.text(req.XLabel, (left+right)/2, c.h-int(2*req.Style.LabelFont), req.Style.LabelFont, drawing.ColorBlack)
	c.text(req.YLabel, left, top-int(req.Style.LabelFont), req.Style.LabelFont, drawing.ColorBlack)
	return c.save(w)
}

func goRose(req Request, provider chart.RendererProvider, w io.Writer) error {
	rose, err := RoseTable(req.X, req.Y, req.Style.Sectors, req.Style.Bins)
	if err != nil {
		return err
	}
	c, err := newCanvas(provider, req.Style)
	if err != nil {
		return err
	}
	n := len(rose.Sectors)
	cx, cy := c.w/2, c.h*55/100
	radius := 0.38 * float64(min(c.w, c.h))
	peak := 0.0
	for s := 0; s < n; s++ {
		peak = math.Max(peak, rose.SectorTotal(s))
	}
	if peak == 0 {
		peak = 1
	}
	at := func(r, deg float64) [2]int {
		rad := deg * math.Pi / 180
		return [2]int{cx + int(r*math.Sin(rad)), cy - int(r*math.Cos(rad))}
	}

	grey := drawing.Color{R: 200, G: 200, B: 200, A: 255}
	for _, frac := range []float64{1, 0.75, 0.5, 0.25} {
		var ring [][2]int
		for a := 0.0; a < 360; a += 5 {
			ring = append(ring, at(radius*frac, a))
		}
		c.polygon(ring, drawing.ColorWhite, grey)
		c.text(fmt.Sprintf("%.0f%%", peak*frac), at(radius*frac, 45)[0], at(radius*frac, 45)[1], req.Style.LabelFont*0.7, drawing.ColorBlack)
	}

	width := 360.0 / float64(n)
	half := width * 0.45
	bins := len(rose.Freq)
	for s := 0; s < n; s++ {
		centre := float64(s) * width
		inner := 0.0
		for b := 0; b < bins; b++ {
			f := rose.Freq[b][s]
			if f == 0 {
				continue
			}
			outer := inner + f
			var pts [][2]int
			for a := centre - half; a <= centre+half; a += half / 4 {
				pts = append(pts, at(radius*outer/peak, a))
			}
			for a := centre + half; a >= centre-half; a -= half / 4 {
				pts = append(pts, at(radius*inner/peak, a))
			}
			c.polygon(pts, chart.Viridis(float64(b), 0, float64(max(bins-1, 1))), drawing.ColorWhite)
			inner = outer
		}
		p := at(radius+2*req.Style.LabelFont, centre)
		c.text(rose.Sectors[s], p[0], p[1], req.Style.LabelFont, drawing.ColorBlack)
	}

	c.text(req.Title, c.w/2, int(2*req.Style.TitleFont), req.Style.TitleFont, drawing.ColorBlack)
	legendY := c.h - int(float64(bins+1)*1.5*req.Style.LabelFont)
	c.text(req.Legend, c.w/10, legendY, req.Style.LabelFont, drawing.ColorBlack)
	for b := 0; b < bins; b++ {
		y := legendY + int(float64(b+1)*1.5*req.Style.LabelFont)
		c.rect(c.w/40, y-int(req.Style.LabelFont), c.w/40+int(req.Style.LabelFont), y, chart.Viridis(float64(b), 0, float64(max(bins-1, 1))))
		c.text(fmt.Sprintf("[%s, %s)", tick(rose.SpeedEdge[b]), tick(rose.SpeedEdge[b+1])), c.w/10, y, req.Style.LabelFont*0.8, drawing.ColorBlack)
	}
	return c.save(w)
}
