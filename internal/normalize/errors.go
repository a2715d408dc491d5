package normalize

import (
	"errors"
	"fmt"
)

var (
	// ErrParse indicates the input is not well-formed CSV.
	ErrParse = errors.New("malformed csv")
	// ErrEmptyInput indicates a header row with no data rows.
	ErrEmptyInput = errors.New("csv has no data rows")
	// ErrCoercion indicates a cell could not be represented in the numeric form it claims.
	ErrCoercion = errors.New("cell coercion failed")
)

// ParseError carries the input line where parsing stopped.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %v", ErrParse, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrParse, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// CoercionError names the cell that failed. It aborts the whole table.
type CoercionError struct {
	Line   int
	Column string
	Text   string
	Err    error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("line %d column %q: cannot coerce %q: %v", e.Line, e.Column, e.Text, e.Err)
}

func (e *CoercionError) Unwrap() []error { return []error{ErrCoercion, e.Err} }
