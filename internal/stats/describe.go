// Package stats computes descriptive statistics for loaded series and writes
// them as a semicolon-delimited report. Standard deviation and covariance are
// population statistics (divided by n).
package stats

import (
	"math"
	"slices"
)

// PercentilePoints are the percentiles reported for every series, in report order.
var PercentilePoints = [6]float64{10, 20, 40, 60, 80, 90}

// Summary describes one non-empty series.
type Summary struct {
	Mean        float64
	Min         float64
	Max         float64
	Median      float64
	Std         float64
	Percentiles [6]float64
	Count       int
}

// Describe summarises values. An empty series is a *DegenerateDataError.
func Describe(name string, values []float64) (Summary, error) {
	n := len(values)
	if n == 0 {
		return Summary{}, &DegenerateDataError{Series: name, Reason: "series is empty"}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)
	var sumSq float64
	for _, v := range sorted {
		d := v - mean
		sumSq += d * d
	}

	s := Summary{
		Mean:   mean,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Median: percentileSorted(sorted, 50),
		Std:    math.Sqrt(sumSq / float64(n)),
		Count:  n,
	}
	for i, p := range PercentilePoints {
		s.Percentiles[i] = percentileSorted(sorted, p)
	}
	return s, nil
}

// Percentile returns the p-th percentile (0..100) of values by linear
// interpolation between closest ranks. It returns NaN for an empty slice.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	p = max(0, min(p, 100))
	idx := p / 100 * float64(n-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= n {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// Covariance returns the 2x2 population covariance matrix of xs and ys.
func Covariance(name string, xs, ys []float64) ([2][2]float64, error) {
	var m [2][2]float64
	n := len(xs)
	if n != len(ys) {
		return m, &DegenerateDataError{Series: name, Reason: "components differ in length"}
	}
	if n == 0 {
		return m, &DegenerateDataError{Series: name, Reason: "series is empty"}
	}
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)
	var sxx, syy, sxy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	fn := float64(n)
	m[0][0], m[1][1] = sxx/fn, syy/fn
	m[0][1], m[1][0] = sxy/fn, sxy/fn
	return m, nil
}
