package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KaramelBytes/skiron-cli/internal/render"
)

func TestSplitLevel(t *testing.T) {
	t.Parallel()
	l := DefaultLabels()

	tests := []struct {
		field, code, level string
	}{
		{"m1llu", "u", "10 m"},
		{"u_m3ll", "u", "80 m"},
		{"M5LL-t", "t", "160 m"},
		{"t", "t", UnknownLevel},
		{"m2ll", "m2ll", "40 m"},
	}
	for _, tt := range tests {
		code, level := l.Split(tt.field)
		assert.Equal(t, tt.code, code, tt.field)
		assert.Equal(t, tt.level, level, tt.field)
	}
}

func TestFieldDecorations(t *testing.T) {
	t.Parallel()
	l := DefaultLabels()

	d := l.Field(render.Histogram, "m1llu", "")
	assert.Equal(t, "Histogram: Wind (x-comp) at 10 m", d.Title)
	assert.Equal(t, "Wind (x-comp) [m/s]", d.XLabel)
	assert.Equal(t, "Frequency", d.YLabel)
	assert.Equal(t, "m1llu", d.Legend)

	d = l.Field(render.Timeseries, "m1llu", CodeDirection)
	assert.Equal(t, "Timeseries: Wind direction at 10 m", d.Title)
	assert.Equal(t, "Wind direction [deg from North]", d.YLabel)

	d = l.Field(render.Histogram, "xyz", "")
	assert.Equal(t, "Histogram: unknown at some level", d.Title)
	assert.Equal(t, "unknown [unknown]", d.XLabel)
}

func TestPairDecorations(t *testing.T) {
	t.Parallel()
	l := DefaultLabels()

	d := l.Pair(render.Scatter, "m2llu", "m2llv")
	assert.Equal(t, "Components: Wind (x-comp) vs Wind (y-comp) at 40 m", d.Title)
	assert.Equal(t, "Wind (y-comp) [m/s]", d.YLabel)
	assert.Equal(t, "(m2llu, m2llv)", d.Legend)

	d = l.Pair(render.Rose, "u", "v")
	assert.Equal(t, "Rose Chart: Wind speed at some level", d.Title)
	assert.Equal(t, "Wind speed [m/s]", d.Legend)
}

func TestCustomLabelsAreCopied(t *testing.T) {
	t.Parallel()
	desc := map[string]string{"t": "Temp"}
	l := NewLabels(desc, map[string]string{"t": "C"}, map[string]string{"h2": "2 m"}, nil)
	desc["t"] = "changed"

	assert.Equal(t, "Temp", l.Description("t"))
	assert.Equal(t, "histogram", l.Graph(render.Histogram))
	code, level := l.Split("t_h2")
	assert.Equal(t, "t", code)
	assert.Equal(t, "2 m", level)
}
