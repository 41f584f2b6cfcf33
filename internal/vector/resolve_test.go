package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// angularDelta is the shortest distance between two bearings, so 0° and 359.99…° compare equal.
func angularDelta(a, b float64) float64 {
	d := math.Abs(a - b)
	return math.Min(d, 360-d)
}

func TestResolve_CardinalPoints(t *testing.T) {
	t.Parallel()

	mag, dir := Resolve(1, 0, Meteorological)
	assert.InDelta(t, 1.0, mag, 1e-12)
	assert.InDelta(t, 0.0, angularDelta(90.0, dir), 1e-9)

	mag, dir = Resolve(0, 1, Meteorological)
	assert.InDelta(t, 1.0, mag, 1e-12)
	assert.InDelta(t, 0.0, angularDelta(0.0, dir), 1e-9)

	_, dir = Resolve(-1, 0, Meteorological)
	assert.InDelta(t, 0.0, angularDelta(270.0, dir), 1e-9)

	_, dir = Resolve(0, -1, Meteorological)
	assert.InDelta(t, 0.0, angularDelta(180.0, dir), 1e-9)
}

func TestResolve_MathOrigin(t *testing.T) {
	t.Parallel()

	_, dir := Resolve(1, 0, MathOrigin)
	assert.InDelta(t, 0.0, angularDelta(270.0, dir), 1e-9)

	_, dir = Resolve(0, 1, MathOrigin)
	assert.InDelta(t, 0.0, angularDelta(180.0, dir), 1e-9)

	_, dir = Resolve(0, -1, MathOrigin)
	assert.InDelta(t, 0.0, angularDelta(0.0, dir), 1e-9)
}

func TestResolve_RangeAndRepeatability(t *testing.T) {
	t.Parallel()

	for _, c := range []Convention{Meteorological, MathOrigin} {
		for deg := -360.0; deg <= 360.0; deg += 7.5 {
			x := 3 * math.Cos(deg*math.Pi/180)
			y := 3 * math.Sin(deg*math.Pi/180)

			mag1, dir1 := Resolve(x, y, c)
			mag2, dir2 := Resolve(x, y, c)

			assert.Equal(t, mag1, mag2)
			assert.Equal(t, dir1, dir2)
			assert.GreaterOrEqual(t, dir1, 0.0, "convention %s at %v", c, deg)
			assert.Less(t, dir1, 360.0, "convention %s at %v", c, deg)
			assert.InDelta(t, 3.0, mag1, 1e-9)
		}
	}
}

func TestResolveSeries(t *testing.T) {
	t.Parallel()

	mag, dir, err := ResolveSeries([]float64{3, 0}, []float64{4, 2}, Meteorological)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 2}, mag)
	assert.InDelta(t, 0.0, angularDelta(0.0, dir[1]), 1e-9)

	_, _, err = ResolveSeries([]float64{1}, []float64{1, 2}, Meteorological)
	require.Error(t, err)
}

func TestConventionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "meteorological", Meteorological.String())
	assert.Equal(t, "math-origin", MathOrigin.String())
	assert.Equal(t, "convention(7)", Convention(7).String())
}
