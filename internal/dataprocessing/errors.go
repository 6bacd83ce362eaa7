package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// Pipeline errors. All of them are fatal for the request that triggered the
// run; nothing is retried.
var (
	// ErrDatasetUnavailable means the dataset file is missing or unreadable
	ErrDatasetUnavailable = errors.New("dataset unavailable")

	// ErrDatasetMalformed means the file could be read but not parsed as a table
	ErrDatasetMalformed = errors.New("dataset malformed")

	// ErrCoercion means a field could not be converted to its declared type
	ErrCoercion = errors.New("type coercion failed")

	// ErrMissingColumn means a required column is absent from the header
	ErrMissingColumn = errors.New("missing column")

	// ErrUnknownStatistic is returned for an unsupported statistic selector
	ErrUnknownStatistic = errors.New("unknown statistic")
)

// CoercionError reports the first field that failed type conversion
type CoercionError struct {
	// Row is the 1-based position of the record in the source file, header excluded
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("row %d column %q: cannot convert %q: %v", e.Row, e.Column, e.Value, e.Err)
}

// Unwrap exposes both the sentinel and the underlying parse error
func (e *CoercionError) Unwrap() []error {
	return []error{ErrCoercion, e.Err}
}

// MissingColumnError lists the required columns absent from the dataset header
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column(s): %s", strings.Join(e.Columns, ", "))
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}
