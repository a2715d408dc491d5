package main

import (
	"context"
	"log"

	tactivity "go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/yourorg/csv-loader/internal/activities"
	"github.com/yourorg/csv-loader/internal/config"
	"github.com/yourorg/csv-loader/internal/ingest"
	"github.com/yourorg/csv-loader/internal/logging"
	"github.com/yourorg/csv-loader/internal/metrics"
	"github.com/yourorg/csv-loader/internal/normalize"
	"github.com/yourorg/csv-loader/internal/storage"
	"github.com/yourorg/csv-loader/internal/table"
	"github.com/yourorg/csv-loader/internal/workflow"
)

func main() {
	ctx := context.Background()
	if err := config.LoadEnvFile(config.EnvFile()); err != nil {
		log.Fatal(err)
	}
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal("config: ", err)
	}

	// Structured logger (zap)
	zl := logging.New(cfg.LogLevel)
	defer zl.Sync()

	// Metrics server
	metrics.Init()
	addr := cfg.MetricsAddr
	if addr == "" {
		addr = metrics.AddrFromEnv()
	}
	metrics.ServeBackground(addr, zl)

	objects, err := storage.NewS3(ctx, cfg.S3Options())
	if err != nil {
		log.Fatal("s3 init: ", err)
	}
	tbl, closeTbl, err := table.Open(ctx, cfg)
	if err != nil {
		log.Fatal("table: ", err)
	}
	defer closeTbl()

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalHost, Namespace: cfg.TemporalNamespace})
	if err != nil {
		log.Fatal("temporal client: ", err)
	}
	defer c.Close()

	ing := ingest.NewIngester(objects, tbl, normalize.Normalizer{NumericColumns: cfg.NumericColumns}, zl)
	acts := activities.New(ing)

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	w.RegisterActivityWithOptions(acts.IngestObject, tactivity.RegisterOptions{Name: workflow.IngestActivityName})
	w.RegisterWorkflow(workflow.IngestWorkflow)

	zl.Info("worker started",
		zap.String("namespace", cfg.TemporalNamespace),
		zap.String("taskQueue", cfg.TemporalTaskQueue),
		zap.String("table", tbl.Name()),
		zap.String("backend", cfg.Backend))
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal("worker failed: ", err)
	}
}
