// Package ingest drives one CSV object from the object store through the
// normalizer into a table, and reads tables back for inspection.
package ingest

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/yourorg/csv-loader/internal/metrics"
	"github.com/yourorg/csv-loader/internal/normalize"
	"github.com/yourorg/csv-loader/internal/storage"
	"github.com/yourorg/csv-loader/internal/table"
)

type Ingester struct {
	objects storage.ObjectStore
	table   table.Writer
	norm    normalize.Normalizer
	log     *zap.Logger
}

func NewIngester(objects storage.ObjectStore, tbl table.Writer, norm normalize.Normalizer, log *zap.Logger) *Ingester {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingester{objects: objects, table: tbl, norm: norm, log: log}
}

// Run loads bucket/key into the table. It stops at the first failed put;
// records written before it stay written.
func (in *Ingester) Run(ctx context.Context, bucket, key string) Outcome {
	o := in.run(ctx, bucket, key)
	o.Bucket, o.Key = bucket, key
	metrics.Outcomes.WithLabelValues(string(o.Kind)).Inc()
	return o
}

func (in *Ingester) run(ctx context.Context, bucket, key string) Outcome {
	log := in.log.With(zap.String("bucket", bucket), zap.String("key", key))
	log.Info("processing file")

	body, err := in.objects.Read(ctx, bucket, key)
	if err != nil {
		log.Error("get object failed", zap.Error(err))
		return failed(KindReadFailed, err, "Error getting object %s from bucket %s: %v", key, bucket, err)
	}

	res, err := in.norm.Normalize(string(body))
	switch {
	case errors.Is(err, normalize.ErrEmptyInput):
		log.Warn("csv file is empty", zap.Strings("columns", res.Columns))
		return failed(KindEmptyInput, err, "CSV file is empty")
	case err != nil:
		log.Error("reading csv data failed", zap.Error(err))
		return failed(KindMalformedInput, err, "Error reading CSV data: %v", err)
	}

	metrics.RowsRead.Add(float64(res.Rows))
	metrics.RowsDropped.Add(float64(len(res.Dropped)))
	for _, line := range res.Dropped {
		log.Debug("row dropped", zap.Int("line", line))
	}
	if len(res.Dropped) > 0 {
		log.Warn("rows with missing or infinite values dropped",
			zap.Int("dropped", len(res.Dropped)), zap.Int("rows", res.Rows))
	}

	written := 0
	for _, rec := range res.Records {
		if err := in.table.Put(ctx, rec); err != nil {
			log.Error("put item failed", zap.Error(err), zap.Int("written", written))
			o := failed(KindStorageRejected, err, "Error adding item: %v", err)
			o.Rows, o.Dropped, o.Written = res.Rows, len(res.Dropped), written
			return o
		}
		written++
		metrics.RecordsWritten.Inc()
		log.Info("item added", zap.Any("item", rec))
	}

	log.Info("items processing completed",
		zap.Int("rows", res.Rows), zap.Int("dropped", len(res.Dropped)), zap.Int("written", written))
	o := completed("Items processing completed successfully")
	o.Rows, o.Dropped, o.Written = res.Rows, len(res.Dropped), written
	return o
}
