package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram1D(t *testing.T) {
	t.Parallel()
	edges, counts, err := Histogram1D([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 5)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 4, 6, 8, 10}, edges)
	assert.Equal(t, []int{2, 2, 2, 2, 3}, counts)

	sum := 0
	for _, c := range counts {
		sum += c
	}
	assert.Equal(t, 11, sum)
}

func TestHistogramConstantSeries(t *testing.T) {
	t.Parallel()
	edges, counts, err := Histogram1D([]float64{3, 3, 3}, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 3, 3.5}, edges)
	assert.Equal(t, 3, counts[0]+counts[1])
}

func TestHistogramRejectsEmpty(t *testing.T) {
	t.Parallel()
	_, _, err := Histogram1D(nil, 10)
	assert.Error(t, err)
	_, _, err = Histogram1D([]float64{1}, 0)
	assert.Error(t, err)
}

func TestHistogram2D(t *testing.T) {
	t.Parallel()
	g, err := Histogram2D([]float64{0, 0, 10, 10}, []float64{0, 10, 10, 10}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 1}, {0, 2}}, g.Counts)
	assert.Equal(t, 50, g.Percent(1, 1))
	assert.Equal(t, 0, g.Percent(1, 0))

	_, err = Histogram2D([]float64{1}, nil, 2, 2)
	assert.Error(t, err)
}

func TestRoseTable(t *testing.T) {
	t.Parallel()
	bearing := []float64{0, 359, 90, 180, 270, 44}
	mag := []float64{1, 1, 2, 2, 3, 3}

	r, err := RoseTable(bearing, mag, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"N", "E", "S", "W"}, r.Sectors)
	assert.InDelta(t, 50.0, r.SectorTotal(0), 1e-9)
	assert.InDelta(t, 100.0/6, r.SectorTotal(1), 1e-9)
	assert.InDelta(t, 100.0/6, r.SectorTotal(3), 1e-9)

	var total float64
	for s := range r.Sectors {
		total += r.SectorTotal(s)
	}
	assert.InDelta(t, 100.0, total, 1e-9)
}

func TestSectorLabels(t *testing.T) {
	t.Parallel()
	assert.Len(t, SectorLabels(16), 16)
	assert.Equal(t, "NNE", SectorLabels(16)[1])
	assert.Equal(t, []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}, SectorLabels(8))
	assert.Equal(t, []string{"0°", "120°", "240°"}, SectorLabels(3))
}
