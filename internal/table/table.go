// Package table persists normalized records into a schemaless key-value
// table and reads them back.
package table

import (
	"context"
	"errors"

	"github.com/yourorg/csv-loader/internal/normalize"
)

var (
	// ErrMissingKey indicates a record lacks the table's key attribute.
	ErrMissingKey = errors.New("record missing key attribute")
	// ErrStopScan can be returned from a scan callback to end the scan early.
	ErrStopScan = errors.New("stop scan")
)

// Writer upserts one record at a time. Puts are independent: a failed put
// leaves earlier puts in place.
type Writer interface {
	Put(ctx context.Context, rec normalize.Record) error
}

// Scanner visits every stored record.
type Scanner interface {
	Scan(ctx context.Context, fn func(normalize.Record) error) error
}

type Table interface {
	Writer
	Scanner
	Name() string
}
