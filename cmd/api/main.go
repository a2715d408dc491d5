package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/yourorg/csv-loader/internal/api"
	"github.com/yourorg/csv-loader/internal/config"
	"github.com/yourorg/csv-loader/internal/ingest"
	"github.com/yourorg/csv-loader/internal/logging"
	"github.com/yourorg/csv-loader/internal/metrics"
	"github.com/yourorg/csv-loader/internal/normalize"
	"github.com/yourorg/csv-loader/internal/storage"
	"github.com/yourorg/csv-loader/internal/table"
)

func main() {
	ctx := context.Background()
	if err := config.LoadEnvFile(config.EnvFile()); err != nil {
		log.Fatal(err)
	}
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	zl := logging.New(cfg.LogLevel)
	defer zl.Sync()

	if cfg.MetricsAddr != "" {
		metrics.Init()
		metrics.ServeBackground(cfg.MetricsAddr, zl)
	}

	objects, err := storage.NewS3(ctx, cfg.S3Options())
	if err != nil {
		log.Fatalf("s3 init: %v", err)
	}
	tbl, closeTbl, err := table.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("table: %v", err)
	}
	defer closeTbl()

	temporalClient, err := client.Dial(client.Options{HostPort: cfg.TemporalHost, Namespace: cfg.TemporalNamespace})
	if err != nil {
		zl.Warn("temporal unavailable, workflow routes disabled", zap.Error(err))
	}
	if temporalClient != nil {
		defer temporalClient.Close()
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	ing := ingest.NewIngester(objects, tbl, normalize.Normalizer{NumericColumns: cfg.NumericColumns}, zl)
	api.Register(r, api.NewHandler(ing, ingest.NewInspector(tbl, zl)), temporalClient, cfg.TemporalTaskQueue)

	zl.Info("api listening", zap.String("port", cfg.Port), zap.String("table", tbl.Name()))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
