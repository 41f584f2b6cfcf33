// Package dataset loads the requested columns of a data file into aligned
// series, dropping every row in which any requested cell fails to convert.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/skiron-cli/internal/task"
	"github.com/KaramelBytes/skiron-cli/internal/vector"
)

// VectorSeries holds the components of a vector pair and the values resolved from them.
type VectorSeries struct {
	Pair      task.Pair
	X         []float64
	Y         []float64
	Magnitude []float64
	Direction []float64
}

// Data is the loaded content of one task. It is not modified after Load returns.
type Data struct {
	Path     string
	Scalars  map[string][]float64
	Vectors  map[task.Pair]*VectorSeries
	Times    []time.Time // set only when a datetime column is configured
	Total    int         // data rows in the file, header excluded
	Valid    int         // rows kept
	Filtered int         // rows outside the time window
	Rejected []RowConversionError

	columns map[string][]float64
}

// Column returns the loaded values of any requested column, scalar or vector component.
func (d *Data) Column(name string) ([]float64, bool) {
	v, ok := d.columns[name]
	return v, ok
}

// RowConversionError records a data row dropped because a cell did not convert.
// Row is 1-based and counts data rows only.
type RowConversionError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *RowConversionError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d, column %s: cannot convert %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *RowConversionError) Unwrap() error { return e.Err }

var (
	errNoData     = errors.New("no-data marker")
	errNonFinite  = errors.New("value is not finite")
	errMissing    = errors.New("cell missing")
	errBadTime    = errors.New("unparseable timestamp")
	errFileChange = errors.New("data file changed between passes")
)

// Load reads spec.DataFile in two passes: the first counts rows, the second
// fills buffers sized by that count. A row is written at the cursor and the
// cursor only advances when every requested cell converted, so rejected rows
// are overwritten by the next one.
func Load(spec *task.Spec, logger *slog.Logger) (*Data, error) {
	total, err := CountRows(spec.DataFile)
	if err != nil {
		return nil, err
	}

	cols := spec.Columns()
	index, err := columnIndex(spec, cols)
	if err != nil {
		return nil, err
	}
	timeIdx := -1
	if spec.DateTime != "" {
		timeIdx = slices.Index(spec.Headers, spec.DateTime)
	}

	buf := make([][]float64, len(cols))
	for i := range buf {
		buf[i] = make([]float64, total)
	}
	var times []time.Time
	if timeIdx >= 0 {
		times = make([]time.Time, total)
	}

	f, err := os.Open(spec.DataFile)
	if err != nil {
		return nil, &task.DataFileError{Path: spec.DataFile, Err: err}
	}
	defer f.Close()

	r := task.NewCSVReader(f)
	if _, err := r.Read(); err != nil {
		return nil, &task.DataFileError{Path: spec.DataFile, Err: fmt.Errorf("read header: %w", err)}
	}

	data := &Data{Path: spec.DataFile, Total: total}
	cursor, row := 0, 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				data.Rejected = append(data.Rejected, RowConversionError{Row: row, Err: err})
				continue
			}
			return nil, &task.DataFileError{Path: spec.DataFile, Err: err}
		}
		if cursor >= total {
			return nil, &task.DataFileError{Path: spec.DataFile, Err: errFileChange}
		}

		if timeIdx >= 0 {
			ts, rerr := convertTime(rec, timeIdx)
			if rerr != nil {
				rerr.Row, rerr.Column = row, spec.DateTime
				data.Rejected = append(data.Rejected, *rerr)
				continue
			}
			if outside(ts, spec.TimeFrom, spec.TimeTo) {
				data.Filtered++
				continue
			}
			times[cursor] = ts
		}

		ok := true
		for i, c := range index {
			v, rerr := convert(rec, c, spec.NoData)
			if rerr != nil {
				rerr.Row, rerr.Column = row, cols[i]
				data.Rejected = append(data.Rejected, *rerr)
				ok = false
				break
			}
			buf[i][cursor] = v
		}
		if ok {
			cursor++
		}
	}

	data.Valid = cursor
	if len(data.Rejected) > 0 {
		logger.Warn("rows dropped during conversion", "count", len(data.Rejected), "first", data.Rejected[0].Error())
		for _, rj := range data.Rejected {
			logger.Debug("row dropped", "row", rj.Row, "column", rj.Column, "value", rj.Value)
		}
	}
	if data.Filtered > 0 {
		logger.Info("rows outside the time window", "count", data.Filtered)
	}

	data.columns = make(map[string][]float64, len(cols))
	for i, c := range cols {
		data.columns[c] = buf[i][:cursor:cursor]
	}
	if times != nil {
		data.Times = times[:cursor:cursor]
	}
	data.Scalars = make(map[string][]float64, len(spec.Scalars))
	for _, s := range spec.Scalars {
		data.Scalars[s] = slices.Clone(data.columns[s])
	}
	data.Vectors = make(map[task.Pair]*VectorSeries, len(spec.Vectors))
	for _, p := range spec.Vectors {
		vs := &VectorSeries{
			Pair: p,
			X:    slices.Clone(data.columns[p.A]),
			Y:    slices.Clone(data.columns[p.B]),
		}
		vs.Magnitude, vs.Direction, err = vector.ResolveSeries(vs.X, vs.Y, spec.Convention)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p.Key(), err)
		}
		data.Vectors[p] = vs
	}
	return data, nil
}

// CountRows counts data rows, header excluded. Malformed rows are counted so
// buffers always have room for every row the second pass can see.
func CountRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &task.DataFileError{Path: path, Err: err}
	}
	defer f.Close()

	r := task.NewCSVReader(f)
	n := 0
	for {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return 0, &task.DataFileError{Path: path, Err: err}
			}
		}
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return n - 1, nil
}

func columnIndex(spec *task.Spec, cols []string) ([]int, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = slices.Index(spec.Headers, c)
		if idx[i] < 0 {
			return nil, &task.DataFileError{Path: spec.DataFile, Err: fmt.Errorf("column %q not in header", c)}
		}
	}
	return idx, nil
}

func convert(rec []string, idx int, noData []string) (float64, *RowConversionError) {
	if idx >= len(rec) {
		return 0, &RowConversionError{Err: errMissing}
	}
	cell := strings.TrimSpace(rec[idx])
	for _, nd := range noData {
		if strings.EqualFold(cell, nd) {
			return 0, &RowConversionError{Value: cell, Err: errNoData}
		}
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, &RowConversionError{Value: cell, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &RowConversionError{Value: cell, Err: errNonFinite}
	}
	return v, nil
}

func convertTime(rec []string, idx int) (time.Time, *RowConversionError) {
	if idx >= len(rec) {
		return time.Time{}, &RowConversionError{Err: errMissing}
	}
	ts, ok := task.ParseTime(rec[idx])
	if !ok {
		return time.Time{}, &RowConversionError{Value: rec[idx], Err: errBadTime}
	}
	return ts, nil
}

func outside(ts time.Time, from, to *time.Time) bool {
	if from != nil && ts.Before(*from) {
		return true
	}
	if to != nil && ts.After(*to) {
		return true
	}
	return false
}
