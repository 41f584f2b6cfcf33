package chart

import (
	"maps"
	"slices"
	"strings"

	"github.com/KaramelBytes/skiron-cli/internal/render"
)

// Placeholders used when a code has no entry in the label tables.
const (
	UnknownText  = "unknown"
	UnknownLevel = "some level"
)

// Codes of the derived vector series.
const (
	CodeMagnitude = "mag"
	CodeDirection = "dir"
)

// Labels maps short field codes to display text. A Labels value is not
// modified after construction, so one table can serve any number of tasks.
type Labels struct {
	descriptions map[string]string
	units        map[string]string
	levels       map[string]string
	graphs       map[render.Kind]string
	levelCodes   []string // longest first
}

// NewLabels copies the given tables.
func NewLabels(descriptions, units, levels map[string]string, graphs map[render.Kind]string) *Labels {
	l := &Labels{
		descriptions: maps.Clone(descriptions),
		units:        maps.Clone(units),
		levels:       maps.Clone(levels),
		graphs:       maps.Clone(graphs),
	}
	l.levelCodes = slices.Collect(maps.Keys(l.levels))
	slices.SortFunc(l.levelCodes, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	return l
}

// DefaultLabels returns the built-in tables for meteorological model output.
func DefaultLabels() *Labels {
	return NewLabels(
		map[string]string{
			CodeMagnitude: "Wind speed",
			CodeDirection: "Wind direction",
			"u":           "Wind (x-comp)",
			"v":           "Wind (y-comp)",
			"aird":        "Air density",
			"p":           "Pressure",
			"t":           "Temperature",
			"q2":          "Humidity",
			"smll":        "unknown",
		},
		map[string]string{
			CodeMagnitude: "m/s",
			CodeDirection: "deg from North",
			"u":           "m/s",
			"v":           "m/s",
			"aird":        "kg/m^3",
			"p":           "Pa",
			"t":           "K",
			"q2":          "e",
			"smll":        "units",
		},
		map[string]string{
			"m1ll": "10 m",
			"m2ll": "40 m",
			"m3ll": "80 m",
			"m4ll": "120 m",
			"m5ll": "160 m",
		},
		map[render.Kind]string{
			render.Scatter:    "Components",
			render.Histogram:  "Histogram",
			render.Rose:       "Rose Chart",
			render.Heatmap:    "Heatmap",
			render.Timeseries: "Timeseries",
		},
	)
}

// Split separates a field name into its variable code and level text. The
// level tag may be a prefix or a suffix, optionally joined with '_' or '-'.
func (l *Labels) Split(field string) (code, level string) {
	name := strings.ToLower(field)
	for _, lc := range l.levelCodes {
		switch {
		case strings.HasSuffix(name, lc) && len(name) > len(lc):
			return strings.TrimRight(strings.TrimSuffix(name, lc), "_-"), l.levels[lc]
		case strings.HasPrefix(name, lc) && len(name) > len(lc):
			return strings.TrimLeft(strings.TrimPrefix(name, lc), "_-"), l.levels[lc]
		case name == lc:
			return name, l.levels[lc]
		}
	}
	return name, UnknownLevel
}

// Description returns the display name of a variable code.
func (l *Labels) Description(code string) string {
	if d, ok := l.descriptions[code]; ok {
		return d
	}
	return UnknownText
}

// Units returns the unit text of a variable code.
func (l *Labels) Units(code string) string {
	if u, ok := l.units[code]; ok {
		return u
	}
	return UnknownText
}

// Graph returns the display name of a chart kind.
func (l *Labels) Graph(k render.Kind) string {
	if g, ok := l.graphs[k]; ok {
		return g
	}
	return k.String()
}

func (l *Labels) axis(code string) string {
	return l.Description(code) + " [" + l.Units(code) + "]"
}

// Field decorates a chart of a single series. derived is CodeMagnitude or
// CodeDirection for the resolved series of a vector, else empty; field is
// then the vector's first component and only supplies the level.
func (l *Labels) Field(k render.Kind, field, derived string) render.Decorations {
	code, level := l.Split(field)
	if derived != "" {
		code = derived
	}
	d := render.Decorations{
		Title:  l.Graph(k) + ": " + l.Description(code) + " at " + level,
		Legend: field,
	}
	if derived != "" {
		d.Legend = derived
	}
	switch k {
	case render.Timeseries:
		d.XLabel = "Record"
		d.YLabel = l.axis(code)
	default:
		d.XLabel = l.axis(code)
		d.YLabel = "Frequency"
	}
	return d
}

// Pair decorates a chart of a vector pair.
func (l *Labels) Pair(k render.Kind, a, b string) render.Decorations {
	ca, level := l.Split(a)
	cb, _ := l.Split(b)
	d := render.Decorations{Legend: "(" + a + ", " + b + ")"}
	switch k {
	case render.Scatter:
		d.Title = l.Graph(k) + ": " + l.Description(ca) + " vs " + l.Description(cb) + " at " + level
		d.XLabel = l.axis(ca)
		d.YLabel = l.axis(cb)
	case render.Heatmap:
		d.Title = l.Graph(k) + ": " + l.Description(CodeMagnitude) + " by direction at " + level
		d.XLabel = l.axis(CodeMagnitude)
		d.YLabel = l.axis(CodeDirection)
	default:
		d.Title = l.Graph(k) + ": " + l.Description(CodeMagnitude) + " at " + level
		d.XLabel = l.axis(CodeDirection)
		d.YLabel = l.axis(CodeMagnitude)
		d.Legend = l.axis(CodeMagnitude)
	}
	return d
}
