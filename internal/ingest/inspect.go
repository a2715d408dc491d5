package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/yourorg/csv-loader/internal/normalize"
	"github.com/yourorg/csv-loader/internal/table"
)

// Inspector reads a table back, one JSON object per record.
type Inspector struct {
	table table.Scanner
	log   *zap.Logger
}

func NewInspector(tbl table.Scanner, log *zap.Logger) *Inspector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Inspector{table: tbl, log: log}
}

// Dump writes up to limit records to w (all of them when limit <= 0) and
// returns how many it wrote.
func (i *Inspector) Dump(ctx context.Context, w io.Writer, limit int) (int, error) {
	enc := json.NewEncoder(w)
	n := 0
	err := i.table.Scan(ctx, func(rec normalize.Record) error {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		n++
		if limit > 0 && n >= limit {
			return table.ErrStopScan
		}
		return nil
	})
	if err != nil {
		i.log.Error("scan failed", zap.Error(err), zap.Int("records", n))
		return n, err
	}
	i.log.Debug("scan completed", zap.Int("records", n))
	return n, nil
}
