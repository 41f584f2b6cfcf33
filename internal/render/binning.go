package render

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var errNoValues = errors.New("no values to bin")

// Edges returns n+1 equally spaced bin edges spanning values. A constant
// series is widened by half a unit on each side.
func Edges(values []float64, n int) ([]float64, error) {
	if len(values) == 0 {
		return nil, errNoValues
	}
	if n < 1 {
		return nil, fmt.Errorf("bin count %d must be positive", n)
	}
	lo, hi := slices.Min(values), slices.Max(values)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := make([]float64, n+1)
	step := (hi - lo) / float64(n)
	for i := range edges {
		edges[i] = lo + float64(i)*step
	}
	edges[n] = hi
	return edges, nil
}

// binIndex places v into edges; the last bin is closed on the right.
func binIndex(edges []float64, v float64) int {
	n := len(edges) - 1
	if v <= edges[0] {
		return 0
	}
	if v >= edges[n] {
		return n - 1
	}
	i := int((v - edges[0]) / (edges[n] - edges[0]) * float64(n))
	return max(0, min(i, n-1))
}

// Histogram1D counts values into n equal-width bins.
func Histogram1D(values []float64, n int) (edges []float64, counts []int, err error) {
	edges, err = Edges(values, n)
	if err != nil {
		return nil, nil, err
	}
	counts = make([]int, n)
	for _, v := range values {
		counts[binIndex(edges, v)]++
	}
	return edges, counts, nil
}

// Grid2D is a two-dimensional histogram. Counts is indexed [x][y].
type Grid2D struct {
	XEdges []float64
	YEdges []float64
	Counts [][]int
	Total  int
}

// Percent returns the share of all samples in cell (i, j), truncated to a whole percent.
func (g *Grid2D) Percent(i, j int) int {
	if g.Total == 0 {
		return 0
	}
	return 100 * g.Counts[i][j] / g.Total
}

// Histogram2D bins paired samples into an nx by ny grid.
func Histogram2D(xs, ys []float64, nx, ny int) (*Grid2D, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("x has %d values, y has %d", len(xs), len(ys))
	}
	xe, err := Edges(xs, nx)
	if err != nil {
		return nil, err
	}
	ye, err := Edges(ys, ny)
	if err != nil {
		return nil, err
	}
	g := &Grid2D{XEdges: xe, YEdges: ye, Counts: make([][]int, nx), Total: len(xs)}
	for i := range g.Counts {
		g.Counts[i] = make([]int, ny)
	}
	for k := range xs {
		g.Counts[binIndex(xe, xs[k])][binIndex(ye, ys[k])]++
	}
	return g, nil
}

// RoseTab is a directional frequency table: Freq[bin][sector] is the percentage
// of samples whose bearing falls in the sector and magnitude in the bin.
type RoseTab struct {
	Sectors   []string
	SpeedEdge []float64
	Freq      [][]float64
}

// SectorTotal returns the summed frequency of one sector across all bins.
func (r *RoseTab) SectorTotal(s int) float64 {
	var sum float64
	for b := range r.Freq {
		sum += r.Freq[b][s]
	}
	return sum
}

// RoseTable bins bearings (degrees clockwise from north) into sectors
// centred on north and magnitudes into equal-width bins.
func RoseTable(bearing, magnitude []float64, sectors, bins int) (*RoseTab, error) {
	if len(bearing) != len(magnitude) {
		return nil, fmt.Errorf("bearing has %d values, magnitude has %d", len(bearing), len(magnitude))
	}
	if sectors < 1 {
		return nil, fmt.Errorf("sector count %d must be positive", sectors)
	}
	edges, err := Edges(magnitude, bins)
	if err != nil {
		return nil, err
	}
	r := &RoseTab{Sectors: SectorLabels(sectors), SpeedEdge: edges, Freq: make([][]float64, bins)}
	for b := range r.Freq {
		r.Freq[b] = make([]float64, sectors)
	}
	width := 360.0 / float64(sectors)
	share := 100.0 / float64(len(bearing))
	for k, d := range bearing {
		s := int(math.Floor(math.Mod(math.Mod(d+width/2, 360)+360, 360) / width))
		s = min(s, sectors-1)
		r.Freq[binIndex(edges, magnitude[k])][s] += share
	}
	return r, nil
}

var compass16 = []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}

// SectorLabels names n sectors: compass points when n divides 16, else degrees.
func SectorLabels(n int) []string {
	labels := make([]string, n)
	if n > 0 && n <= 16 && 16%n == 0 {
		step := 16 / n
		for i := range labels {
			labels[i] = compass16[i*step]
		}
		return labels
	}
	for i := range labels {
		labels[i] = fmt.Sprintf("%g°", math.Round(float64(i)*360/float64(n)*10)/10)
	}
	return labels
}
