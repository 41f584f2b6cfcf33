package stats

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/skiron-cli/internal/utils"
)

// DefaultReportName is the file the report is saved to inside the output directory.
const DefaultReportName = "statistics.csv"

// NullCell marks a statistic that does not apply to a column.
const NullCell = "null"

const delim = ";"

// Row labels in report order.
const (
	RowMean       = "mean"
	RowMin        = "min"
	RowMax        = "max"
	RowMedian     = "median"
	RowStd        = "std"
	RowCovariance = "covariance"
	RowRecords    = "records"
)

// PercentileLabel is the row label of the i-th entry of PercentilePoints.
func PercentileLabel(i int) string {
	return strconv.FormatFloat(PercentilePoints[i], 'g', -1, 64) + "th pctile"
}

// Report is the tabular form of a Result: one column per key, one row per statistic.
type Report struct {
	Columns []string
	Rows    []Row
}

// Row is one statistic across all columns.
type Row struct {
	Label string
	Cells []string
}

// Cell returns the raw cell for a row label and column, or false if either is unknown.
func (r *Report) Cell(label, column string) (string, bool) {
	ci := -1
	for i, c := range r.Columns {
		if c == column {
			ci = i
			break
		}
	}
	if ci < 0 {
		return "", false
	}
	for _, row := range r.Rows {
		if row.Label == label {
			return row.Cells[ci], true
		}
	}
	return "", false
}

// Float returns a numeric cell. Null and unknown cells report false.
func (r *Report) Float(label, column string) (float64, bool) {
	s, ok := r.Cell(label, column)
	if !ok || s == NullCell {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// BuildReport lays a Result out as rows. The covariance row carries the
// off-diagonal entry of each pair's matrix.
func BuildReport(res *Result) *Report {
	rep := &Report{Columns: append([]string(nil), res.Keys...)}
	summaryRow := func(label string, get func(*Summary) float64) {
		row := Row{Label: label, Cells: make([]string, len(res.Keys))}
		for i, k := range res.Keys {
			rec := res.Records[k]
			if rec.Summary == nil {
				row.Cells[i] = NullCell
				continue
			}
			row.Cells[i] = formatFloat(get(rec.Summary))
		}
		rep.Rows = append(rep.Rows, row)
	}

	summaryRow(RowMean, func(s *Summary) float64 { return s.Mean })
	summaryRow(RowMin, func(s *Summary) float64 { return s.Min })
	summaryRow(RowMax, func(s *Summary) float64 { return s.Max })
	summaryRow(RowMedian, func(s *Summary) float64 { return s.Median })
	summaryRow(RowStd, func(s *Summary) float64 { return s.Std })

	cov := Row{Label: RowCovariance, Cells: make([]string, len(res.Keys))}
	for i, k := range res.Keys {
		if m := res.Records[k].Covariance; m != nil {
			cov.Cells[i] = formatFloat(m[0][1])
		} else {
			cov.Cells[i] = NullCell
		}
	}
	rep.Rows = append(rep.Rows, cov)

	for pi := range PercentilePoints {
		summaryRow(PercentileLabel(pi), func(s *Summary) float64 { return s.Percentiles[pi] })
	}

	records := Row{Label: RowRecords, Cells: make([]string, len(res.Keys))}
	for i, k := range res.Keys {
		records.Cells[i] = strconv.Itoa(res.Records[k].Count)
	}
	rep.Rows = append(rep.Rows, records)
	return rep
}

// WriteTo writes the report with a trailing delimiter after every cell.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString(" " + delim)
	for _, c := range r.Columns {
		b.WriteString(c + delim)
	}
	b.WriteString("\n")
	for _, row := range r.Rows {
		b.WriteString(row.Label + delim)
		for _, c := range row.Cells {
			b.WriteString(c + delim)
		}
		b.WriteString("\n")
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// ParseReport reads a report written by WriteTo.
func ParseReport(r io.Reader) (*Report, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read report header: %w", err)
		}
		return nil, fmt.Errorf("report is empty")
	}
	header := splitRow(sc.Text())
	if len(header) == 0 || strings.TrimSpace(header[0]) != "" {
		return nil, fmt.Errorf("report header must start with an empty label cell")
	}
	rep := &Report{Columns: header[1:]}
	line := 1
	for sc.Scan() {
		line++
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		cells := splitRow(sc.Text())
		if len(cells)-1 != len(rep.Columns) {
			return nil, fmt.Errorf("report line %d: %d cells, want %d", line, len(cells)-1, len(rep.Columns))
		}
		rep.Rows = append(rep.Rows, Row{Label: cells[0], Cells: cells[1:]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return rep, nil
}

func splitRow(line string) []string {
	return strings.Split(strings.TrimSuffix(strings.TrimRight(line, "\r"), delim), delim)
}

// SaveReport writes the report for res into dir and returns the file path.
func SaveReport(dir, name string, res *Result) (string, error) {
	if name == "" {
		name = DefaultReportName
	}
	var buf bytes.Buffer
	if _, err := BuildReport(res).WriteTo(&buf); err != nil {
		return "", fmt.Errorf("format report: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}
