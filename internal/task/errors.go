package task

import "fmt"

// ConfigError indicates a missing or malformed task file, or a task that
// failed validation (no usable fields, nothing requested, output directory
// cannot be created).
type ConfigError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task config %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("task config %s: %s", e.Path, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DataFileError indicates the data file is missing or its header is unreadable.
type DataFileError struct {
	Path string
	Err  error
}

func (e *DataFileError) Error() string {
	return fmt.Sprintf("data file %s: %v", e.Path, e.Err)
}

func (e *DataFileError) Unwrap() error { return e.Err }
