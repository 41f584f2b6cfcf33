// Package render draws chart requests into image and HTML files. Each output
// format is served by a Backend; a Registry picks the backend from the file
// extension.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/KaramelBytes/skiron-cli/internal/utils"
)

// Kind is the type of chart.
type Kind int

const (
	Histogram Kind = iota
	Scatter
	Heatmap
	Rose
	Timeseries
)

func (k Kind) String() string {
	switch k {
	case Histogram:
		return "histogram"
	case Scatter:
		return "scatter"
	case Heatmap:
		return "heatmap"
	case Rose:
		return "rose"
	case Timeseries:
		return "timeseries"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Decorations are the texts printed on a chart.
type Decorations struct {
	Title  string
	XLabel string
	YLabel string
	Legend string
}

// Style holds figure settings. Sizes are in inches.
type Style struct {
	DPI       float64
	Width     float64
	Height    float64
	TitleFont float64
	LabelFont float64
	Bins      int // histogram and rose speed bins
	Sectors   int // rose sectors
	HeatBins  int // heatmap bins per axis
}

// DefaultStyle is used for any zero field of a request's style.
var DefaultStyle = Style{DPI: 150, Width: 10, Height: 10, TitleFont: 14, LabelFont: 12, Bins: 10, Sectors: 16, HeatBins: 10}

// MaxPixels caps the area of a raster figure; larger figures are scaled down
// keeping their aspect ratio.
const MaxPixels = 6000 * 6000

// positive is false for zero, negative, NaN and infinite values.
func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }

func (s Style) withDefaults() Style {
	if !positive(s.DPI) {
		s.DPI = DefaultStyle.DPI
	}
	if !positive(s.Width) {
		s.Width = DefaultStyle.Width
	}
	if !positive(s.Height) {
		s.Height = DefaultStyle.Height
	}
	if !positive(s.TitleFont) {
		s.TitleFont = DefaultStyle.TitleFont
	}
	if !positive(s.LabelFont) {
		s.LabelFont = DefaultStyle.LabelFont
	}
	if s.Bins <= 0 {
		s.Bins = DefaultStyle.Bins
	}
	if s.Sectors <= 0 {
		s.Sectors = DefaultStyle.Sectors
	}
	if s.HeatBins <= 0 {
		s.HeatBins = DefaultStyle.HeatBins
	}
	return s
}

// Pixels returns the figure size in pixels, never more than MaxPixels in area.
func (s Style) Pixels() (int, int) {
	w, h := s.Width*s.DPI, s.Height*s.DPI
	if area := w * h; area > MaxPixels {
		k := math.Sqrt(MaxPixels / area)
		w, h = w*k, h*k
	}
	return max(1, int(w)), max(1, int(h))
}

// Request is one chart. The meaning of X and Y depends on Kind:
//
//	Histogram   X values
//	Scatter     X, Y components
//	Heatmap     X magnitude, Y bearing
//	Rose        X bearing, Y magnitude
//	Timeseries  X values, Times optional abscissa
type Request struct {
	Kind Kind
	Decorations
	Style Style
	X     []float64
	Y     []float64
	Times []time.Time
}

func (r Request) validate() error {
	if len(r.X) == 0 {
		return errors.New("no data to plot")
	}
	switch r.Kind {
	case Scatter, Heatmap, Rose:
		if len(r.Y) != len(r.X) {
			return fmt.Errorf("%s needs paired values, got %d and %d", r.Kind, len(r.X), len(r.Y))
		}
	case Timeseries:
		if r.Times != nil && len(r.Times) != len(r.X) {
			return fmt.Errorf("timeseries has %d values and %d timestamps", len(r.X), len(r.Times))
		}
	}
	return nil
}

// Backend renders requests in one or more formats.
type Backend interface {
	Formats() []string
	Render(req Request, format string, w io.Writer) error
}

// UnsupportedFormatError is returned for an output file whose extension no backend serves.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("no rendering backend for format %q", e.Format)
}

// Registry maps file formats to backends.
type Registry struct {
	backends map[string]Backend
}

// NewRegistry registers backends in order; a later backend wins a shared format.
func NewRegistry(backends ...Backend) *Registry {
	r := &Registry{backends: map[string]Backend{}}
	for _, b := range backends {
		r.Register(b)
	}
	return r
}

// DefaultRegistry serves png and svg through go-chart and html through go-echarts.
func DefaultRegistry() *Registry {
	return NewRegistry(GoChart{}, ECharts{})
}

// Register adds a backend for every format it reports.
func (r *Registry) Register(b Backend) {
	for _, f := range b.Formats() {
		r.backends[strings.ToLower(f)] = b
	}
}

// Formats lists the formats that have a backend, sorted.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.backends))
	for f := range r.backends {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Supports reports whether format has a backend.
func (r *Registry) Supports(format string) bool {
	_, ok := r.backends[strings.ToLower(format)]
	return ok
}

// Render draws req once per target path. The format is taken from each
// path's extension. Every path is attempted; failures are joined.
func (r *Registry) Render(req Request, paths []string) error {
	req.Style = req.Style.withDefaults()
	if err := req.validate(); err != nil {
		return err
	}
	var errs []error
	for _, p := range paths {
		format := strings.ToLower(strings.TrimPrefix(filepath.Ext(p), "."))
		b, ok := r.backends[format]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(p), &UnsupportedFormatError{Format: format}))
			continue
		}
		var buf bytes.Buffer
		if err := b.Render(req, format, &buf); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(p), err))
			continue
		}
		if err := utils.SafeWriteFile(p, buf.Bytes()); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(p), err))
		}
	}
	return errors.Join(errs...)
}
