// Package vector derives magnitude and bearing from orthogonal vector components.
package vector

import (
	"fmt"
	"math"
)

// Convention selects the zero reference and rotation used for bearings.
type Convention int

const (
	// Meteorological measures bearings clockwise from north: 90° − θ.
	Meteorological Convention = iota
	// MathOrigin reports the opposite reference: −90° − θ.
	MathOrigin
)

func (c Convention) String() string {
	switch c {
	case Meteorological:
		return "meteorological"
	case MathOrigin:
		return "math-origin"
	default:
		return fmt.Sprintf("convention(%d)", int(c))
	}
}

// Resolve returns the magnitude of (x, y) and its bearing in degrees within [0, 360).
func Resolve(x, y float64, c Convention) (magnitude, bearing float64) {
	magnitude = math.Hypot(x, y)
	theta := math.Atan2(y, x) * 180.0 / math.Pi
	if c == MathOrigin {
		bearing = -90.0 - theta
	} else {
		bearing = 90.0 - theta
	}
	if bearing < 0 {
		bearing += 360.0
	}
	if bearing >= 360.0 {
		bearing -= 360.0
	}
	return magnitude, bearing
}

// ResolveSeries applies Resolve element by element.
func ResolveSeries(xs, ys []float64, c Convention) (magnitude, bearing []float64, err error) {
	if len(xs) != len(ys) {
		return nil, nil, fmt.Errorf("component length mismatch: %d vs %d", len(xs), len(ys))
	}
	magnitude = make([]float64, len(xs))
	bearing = make([]float64, len(xs))
	for i := range xs {
		magnitude[i], bearing[i] = Resolve(xs[i], ys[i], c)
	}
	return magnitude, bearing, nil
}
