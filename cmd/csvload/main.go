package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourorg/csv-loader/internal/config"
	"github.com/yourorg/csv-loader/internal/ingest"
	"github.com/yourorg/csv-loader/internal/logging"
	"github.com/yourorg/csv-loader/internal/normalize"
	"github.com/yourorg/csv-loader/internal/storage"
	"github.com/yourorg/csv-loader/internal/table"
)

// flags override the matching environment values when set.
type flags struct {
	envFile   string
	tableName string
	backend   string
	badgerDir string
	tableKey  string
	region    string
	logLevel  string
	limit     int
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:          "csvload",
		Short:        "Load CSV objects into a key-value table",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.envFile, "env-file", config.EnvFile(), "dotenv file loaded before reading the environment")
	pf.StringVar(&f.tableName, "table", "", "table name (TABLE_NAME)")
	pf.StringVar(&f.backend, "backend", "", "table backend: dynamodb or badger (TABLE_BACKEND)")
	pf.StringVar(&f.badgerDir, "badger-dir", "", "badger data directory (BADGER_DIR)")
	pf.StringVar(&f.tableKey, "table-key", "", "key attribute for the badger backend (TABLE_KEY)")
	pf.StringVar(&f.region, "region", "", "AWS region (AWS_REGION)")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (LOG_LEVEL)")

	root.AddCommand(newIngestCmd(f), newInspectCmd(f))
	return root
}

func newIngestCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [s3://bucket/key | file:///path]",
		Short: "Normalize one CSV object and put every record into the table",
		Long: `Reads the object named by the argument, or by BUCKET and FILENAME when no
argument is given, and writes one item per fully defined row. Rows with a
missing or infinite cell are skipped. The run stops at the first rejected write.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, zl, err := setup(f)
			if err != nil {
				return err
			}
			defer zl.Sync()

			loc := storage.Location{Scheme: "s3", Bucket: cfg.Bucket, Key: cfg.Key}
			if len(args) == 1 {
				if loc, err = storage.ParseLocation(args[0]); err != nil {
					return err
				}
			} else if err := cfg.ValidateObject(); err != nil {
				return err
			}

			var objects storage.ObjectStore = storage.DirStore{}
			if loc.Scheme == "s3" {
				if objects, err = storage.NewS3(ctx, cfg.S3Options()); err != nil {
					return err
				}
			}
			tbl, closeTbl, err := table.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeTbl()

			norm := normalize.Normalizer{NumericColumns: cfg.NumericColumns}
			o := ingest.NewIngester(objects, tbl, norm, zl).Run(ctx, loc.Bucket, loc.Key)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: rows=%d dropped=%d written=%d\n", o, o.Rows, o.Dropped, o.Written)
			if !o.OK() {
				return fmt.Errorf("ingest %s: %s", loc, o.Kind)
			}
			return nil
		},
	}
}

func newInspectCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print every record in the table as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, zl, err := setup(f)
			if err != nil {
				return err
			}
			defer zl.Sync()
			tbl, closeTbl, err := table.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeTbl()
			_, err = ingest.NewInspector(tbl, zl).Dump(cmd.Context(), cmd.OutOrStdout(), f.limit)
			return err
		},
	}
	cmd.Flags().IntVar(&f.limit, "limit", 0, "stop after this many records (0 for all)")
	return cmd
}

func setup(f *flags) (config.Config, *zap.Logger, error) {
	if err := config.LoadEnvFile(f.envFile); err != nil {
		return config.Config{}, nil, err
	}
	cfg := config.FromEnv()
	override(&cfg.TableName, f.tableName)
	override(&cfg.Backend, strings.ToLower(f.backend))
	override(&cfg.BadgerDir, f.badgerDir)
	override(&cfg.TableKey, f.tableKey)
	override(&cfg.Region, f.region)
	override(&cfg.LogLevel, f.logLevel)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	return cfg, logging.New(cfg.LogLevel), nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
