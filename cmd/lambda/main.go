package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/yourorg/csv-loader/internal/config"
	"github.com/yourorg/csv-loader/internal/ingest"
	"github.com/yourorg/csv-loader/internal/logging"
	"github.com/yourorg/csv-loader/internal/normalize"
	"github.com/yourorg/csv-loader/internal/storage"
	"github.com/yourorg/csv-loader/internal/table"
)

func main() {
	ctx := context.Background()
	cfg := config.FromEnv()
	zl := logging.New(cfg.LogLevel)
	defer zl.Sync()

	h, err := newHandler(ctx, cfg, zl)
	if err != nil {
		// Report the misconfiguration on every invocation instead of failing init.
		zl.Error("handler init failed", zap.Error(err))
		lambda.Start(func(context.Context, events.S3Event) (ingest.Outcome, error) {
			return ingest.Misconfigured(err), nil
		})
		return
	}
	lambda.Start(h.HandleS3Event)
}

func newHandler(ctx context.Context, cfg config.Config, zl *zap.Logger) (*ingest.Ingester, error) {
	// Lambda has no durable local disk, so the table is always remote here.
	cfg.Backend = config.BackendDynamo
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	objects, err := storage.NewS3(ctx, cfg.S3Options())
	if err != nil {
		return nil, err
	}
	tbl, _, err := table.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	norm := normalize.Normalizer{NumericColumns: cfg.NumericColumns}
	return ingest.NewIngester(objects, tbl, norm, zl), nil
}
