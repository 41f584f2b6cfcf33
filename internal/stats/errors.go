package stats

import (
	"errors"
	"fmt"
)

// ErrSkipped is returned by Compute when statistics were not requested.
var ErrSkipped = errors.New("statistics not requested")

// DegenerateDataError means a series had no usable values.
type DegenerateDataError struct {
	Series string
	Reason string
}

func (e *DegenerateDataError) Error() string {
	return fmt.Sprintf("cannot describe %s: %s", e.Series, e.Reason)
}
