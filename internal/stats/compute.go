package stats

import (
	"github.com/KaramelBytes/skiron-cli/internal/dataset"
	"github.com/KaramelBytes/skiron-cli/internal/task"
)

// Record holds the statistics of one report column. Summary is nil for a
// vector pair column, Covariance is nil for everything else.
type Record struct {
	Summary    *Summary
	Covariance *[2][2]float64
	Count      int
}

// Result is the ordered set of report columns for one task.
type Result struct {
	Keys    []string
	Records map[string]Record
}

func (r *Result) add(key string, rec Record) {
	if _, dup := r.Records[key]; dup {
		return
	}
	r.Keys = append(r.Keys, key)
	r.Records[key] = rec
}

// MagnitudeKey and DirectionKey name the derived columns of a vector pair.
func MagnitudeKey(p task.Pair) string { return p.Slug() + "_mag" }

func DirectionKey(p task.Pair) string { return p.Slug() + "_dir" }

// Compute describes every requested series. Columns are ordered per vector
// pair (pair, x, y, magnitude, direction) followed by the scalars.
func Compute(data *dataset.Data, spec *task.Spec) (*Result, error) {
	if !spec.Want.Stats {
		return nil, ErrSkipped
	}
	res := &Result{Records: map[string]Record{}}

	describe := func(key string, values []float64) error {
		s, err := Describe(key, values)
		if err != nil {
			return err
		}
		res.add(key, Record{Summary: &s, Count: s.Count})
		return nil
	}

	for _, p := range spec.Vectors {
		vs, ok := data.Vectors[p]
		if !ok {
			return nil, &DegenerateDataError{Series: p.Key(), Reason: "vector pair was not loaded"}
		}
		cov, err := Covariance(p.Key(), vs.X, vs.Y)
		if err != nil {
			return nil, err
		}
		res.add(p.Key(), Record{Covariance: &cov, Count: len(vs.X)})
		if err := describe(p.A, vs.X); err != nil {
			return nil, err
		}
		if err := describe(p.B, vs.Y); err != nil {
			return nil, err
		}
		if err := describe(MagnitudeKey(p), vs.Magnitude); err != nil {
			return nil, err
		}
		if err := describe(DirectionKey(p), vs.Direction); err != nil {
			return nil, err
		}
	}
	for _, s := range spec.Scalars {
		if err := describe(s, data.Scalars[s]); err != nil {
			return nil, err
		}
	}
	return res, nil
}
