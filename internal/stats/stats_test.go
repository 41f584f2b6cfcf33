package stats

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/skiron-cli/internal/dataset"
	"github.com/KaramelBytes/skiron-cli/internal/task"
)

func TestDescribe(t *testing.T) {
	t.Parallel()
	s, err := Describe("x", []float64{10, 1, 9, 2, 8, 3, 7, 4, 6, 5})
	require.NoError(t, err)

	assert.InDelta(t, 5.5, s.Mean, 1e-12)
	assert.InDelta(t, 5.5, s.Median, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 10.0, s.Max)
	assert.InDelta(t, 2.8722813232690143, s.Std, 1e-12)
	assert.Equal(t, 10, s.Count)
	assert.InDelta(t, 1.9, s.Percentiles[0], 1e-12)
	assert.InDelta(t, 9.1, s.Percentiles[5], 1e-12)
	for i := 1; i < len(s.Percentiles); i++ {
		assert.LessOrEqual(t, s.Percentiles[i-1], s.Percentiles[i])
	}
}

func TestDescribeEmpty(t *testing.T) {
	t.Parallel()
	_, err := Describe("x", nil)
	var de *DegenerateDataError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "x", de.Series)
}

func TestPercentile(t *testing.T) {
	t.Parallel()
	vals := []float64{3, 1, 2}
	assert.Equal(t, 1.0, Percentile(vals, 0))
	assert.Equal(t, 2.0, Percentile(vals, 50))
	assert.Equal(t, 3.0, Percentile(vals, 100))
	assert.InDelta(t, 1.5, Percentile(vals, 25), 1e-12)
	assert.Equal(t, []float64{3, 1, 2}, vals)
	assert.Equal(t, 7.0, Percentile([]float64{7}, 90))
}

func TestCovarianceOfScaledSeries(t *testing.T) {
	t.Parallel()
	xs := []float64{1, 2, 3, 4}
	ys := []float64{2, 4, 6, 8}

	m, err := Covariance("p", xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, m[0][0], 1e-12)
	assert.InDelta(t, 5.0, m[1][1], 1e-12)
	assert.InDelta(t, 2.5, m[0][1], 1e-12)
	assert.Equal(t, m[0][1], m[1][0])

	_, err = Covariance("p", xs, ys[:2])
	assert.Error(t, err)
}

func sampleData() (*dataset.Data, *task.Spec) {
	p := task.Pair{A: "u", B: "v"}
	spec := &task.Spec{
		Scalars: []string{"t"},
		Vectors: []task.Pair{p},
		Want:    task.Want{Stats: true},
	}
	data := &dataset.Data{
		Valid:   3,
		Scalars: map[string][]float64{"t": {280, 281, 282}},
		Vectors: map[task.Pair]*dataset.VectorSeries{
			p: {Pair: p, X: []float64{1, 0, -1}, Y: []float64{0, 1, 0}, Magnitude: []float64{1, 1, 1}, Direction: []float64{270, 180, 90}},
		},
	}
	return data, spec
}

func TestComputeOrdersColumns(t *testing.T) {
	t.Parallel()
	data, spec := sampleData()

	res, err := Compute(data, spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"(u, v)", "u", "v", "u_v_mag", "u_v_dir", "t"}, res.Keys)

	pair := res.Records["(u, v)"]
	assert.Nil(t, pair.Summary)
	require.NotNil(t, pair.Covariance)
	assert.Equal(t, 3, pair.Count)
	assert.InDelta(t, 281.0, res.Records["t"].Summary.Mean, 1e-12)
}

func TestComputeSkippedAndDegenerate(t *testing.T) {
	t.Parallel()
	data, spec := sampleData()
	spec.Want.Stats = false
	_, err := Compute(data, spec)
	assert.True(t, errors.Is(err, ErrSkipped))

	data, spec = sampleData()
	data.Scalars["t"] = nil
	_, err = Compute(data, spec)
	var de *DegenerateDataError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "t", de.Series)
}

func TestReportLayout(t *testing.T) {
	t.Parallel()
	data, spec := sampleData()
	res, err := Compute(data, spec)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = BuildReport(res).WriteTo(&buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 14)
	assert.Equal(t, " ;(u, v);u;v;u_v_mag;u_v_dir;t;", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "mean;null;0;"))
	assert.Equal(t, "covariance;0;null;null;null;null;null;", lines[6])
	assert.True(t, strings.HasPrefix(lines[7], "10th pctile;null;"))
	assert.True(t, strings.HasPrefix(lines[12], "90th pctile;null;"))
	assert.Equal(t, "records;3;3;3;3;3;3;", lines[13])
	for _, l := range lines {
		assert.True(t, strings.HasSuffix(l, ";"), l)
	}
}

func TestReportRoundTrip(t *testing.T) {
	t.Parallel()
	data, spec := sampleData()
	res, err := Compute(data, spec)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = BuildReport(res).WriteTo(&buf)
	require.NoError(t, err)

	rep, err := ParseReport(&buf)
	require.NoError(t, err)
	assert.Equal(t, res.Keys, rep.Columns)

	v, ok := rep.Float(RowMax, "t")
	require.True(t, ok)
	assert.Equal(t, 282.0, v)
	_, ok = rep.Float(RowMean, "(u, v)")
	assert.False(t, ok)
	cell, ok := rep.Cell(RowMean, "(u, v)")
	require.True(t, ok)
	assert.Equal(t, NullCell, cell)
	v, ok = rep.Float(RowCovariance, "(u, v)")
	require.True(t, ok)
	assert.InDelta(t, res.Records["(u, v)"].Covariance[0][1], v, 1e-15)
}

func TestParseReportRejectsRaggedRows(t *testing.T) {
	t.Parallel()
	_, err := ParseReport(strings.NewReader(" ;a;b;\nmean;1;\n"))
	assert.Error(t, err)
	_, err = ParseReport(strings.NewReader("x;a;\n"))
	assert.Error(t, err)
	_, err = ParseReport(strings.NewReader(""))
	assert.Error(t, err)
}

func TestSaveReport(t *testing.T) {
	t.Parallel()
	data, spec := sampleData()
	res, err := Compute(data, spec)
	require.NoError(t, err)

	path, err := SaveReport(t.TempDir(), "", res)
	require.NoError(t, err)
	assert.Equal(t, DefaultReportName, path[len(path)-len(DefaultReportName):])

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rep, err := ParseReport(f)
	require.NoError(t, err)
	assert.Len(t, rep.Rows, 13)
}
