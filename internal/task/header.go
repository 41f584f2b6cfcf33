package task

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// NewCSVReader returns a reader configured the way every pass over a data file reads it.
func NewCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// ReadHeader returns the lowercase, trimmed column names of a data file.
func ReadHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataFileError{Path: path, Err: err}
	}
	defer f.Close()

	rec, err := NewCSVReader(f).Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DataFileError{Path: path, Err: errors.New("file is empty, no header row")}
		}
		return nil, &DataFileError{Path: path, Err: fmt.Errorf("read header: %w", err)}
	}
	headers := make([]string, len(rec))
	for i, h := range rec {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return headers, nil
}
